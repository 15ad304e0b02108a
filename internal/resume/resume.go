package resume

import "strings"

// Label is the kind of an entity span produced by an entity extractor.
type Label string

const (
	LabelPerson        Label = "PERSON"
	LabelSkill         Label = "SKILL"
	LabelEducation     Label = "EDUCATION"
	LabelCompany       Label = "COMPANY"
	LabelJobTitle      Label = "JOB_TITLE"
	LabelProject       Label = "PROJECT"
	LabelCertification Label = "CERTIFICATION"
)

// Labels lists every label an extractor may emit.
var Labels = []Label{
	LabelPerson,
	LabelSkill,
	LabelEducation,
	LabelCompany,
	LabelJobTitle,
	LabelProject,
	LabelCertification,
}

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLabel maps a loosely written label ("job title", "Skill") onto a known one.
func ParseLabel(s string) (Label, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	l := Label(normalized)
	return l, l.Valid()
}

// EntitySpan is a labeled substring of the resume text. Start and End are byte offsets.
type EntitySpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Record is one section line split on commas. Fields are kept verbatim.
type Record []string

// Profile is the structured result of parsing one resume.
type Profile struct {
	Name                 string   `json:"name" yaml:"name"`
	Email                string   `json:"email" yaml:"email"`
	Phone                string   `json:"phone" yaml:"phone"`
	Skills               []string `json:"skills" yaml:"skills"`
	Education            []Record `json:"education" yaml:"education"`
	Experience           []Record `json:"experience" yaml:"experience"`
	JobTitles            []string `json:"job_titles" yaml:"job_titles"`
	Companies            []string `json:"companies" yaml:"companies"`
	Projects             []Record `json:"projects" yaml:"projects"`
	Certifications       []Record `json:"certifications" yaml:"certifications"`
	URLs                 []string `json:"urls" yaml:"urls"`
	TotalExperienceYears float64  `json:"total_experience" yaml:"total_experience"`
	Score                float64  `json:"score" yaml:"score"`
}

// NewProfile returns a profile with every list initialized, so it renders as [] rather than null.
func NewProfile() *Profile {
	return &Profile{
		Skills:         []string{},
		Education:      []Record{},
		Experience:     []Record{},
		JobTitles:      []string{},
		Companies:      []string{},
		Projects:       []Record{},
		Certifications: []Record{},
		URLs:           []string{},
	}
}

// NormalizeText trims every line and drops blank ones, producing the raw document form
// the parser expects.
func NormalizeText(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// SplitRecords splits section content on newlines, then each entry on commas.
// Blank entries are dropped.
func SplitRecords(content string) []Record {
	records := make([]Record, 0)
	for _, entry := range strings.Split(content, "\n") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		records = append(records, Record(strings.Split(entry, ",")))
	}
	return records
}
