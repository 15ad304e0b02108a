package sections

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/resume-ats/internal/resume"
)

const (
	Experience     = "EXPERIENCE"
	Projects       = "PROJECTS"
	Education      = "EDUCATION"
	Certifications = "CERTIFICATIONS"
	Skills         = "SKILLS"
)

// DefaultHeaders maps every canonical section onto the header spellings that open it.
func DefaultHeaders() map[string][]string {
	return map[string][]string{
		Experience:     {"EXPERIENCE", "WORK EXPERIENCE", "EMPLOYMENT"},
		Projects:       {"PROJECTS", "KEY PROJECTS", "PROJECT EXPERIENCE"},
		Education:      {"EDUCATION", "ACADEMIC BACKGROUND", "QUALIFICATIONS", "DEGREE"},
		Certifications: {"CERTIFICATIONS", "LICENSES", "CREDENTIALS", "ACHIEVEMENTS"},
		Skills:         {"SKILLS", "TECHNICAL SKILLS", "PROFESSIONAL SKILLS"},
	}
}

// Segmenter splits a normalized resume into canonical sections by header lines.
// It is immutable after New and safe for concurrent use.
type Segmenter struct {
	aliases map[string]string
}

// New builds a segmenter from canonical -> aliases. An alias claimed by two canonicals
// is a configuration error.
func New(headers map[string][]string) (*Segmenter, error) {
	if len(headers) == 0 {
		return nil, resume.NewConfigError("sections", "no section headers configured")
	}

	canonicals := make([]string, 0, len(headers))
	for canonical := range headers {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	aliases := make(map[string]string)
	for _, canonical := range canonicals {
		name := strings.TrimSpace(canonical)
		if name == "" {
			return nil, resume.NewConfigError("sections", "empty canonical section name")
		}
		for _, alias := range headers[canonical] {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				continue
			}
			if owner, ok := aliases[key]; ok && owner != name {
				return nil, resume.NewConfigError("sections",
					fmt.Sprintf("alias %q is claimed by both %s and %s", alias, owner, name))
			}
			aliases[key] = name
		}
	}

	return &Segmenter{aliases: aliases}, nil
}

// Header returns the canonical section a line opens, if it is a header line.
// A header equals an alias case-insensitively, ignoring one trailing ':' or '-'.
func (s *Segmenter) Header(line string) (string, bool) {
	key := strings.TrimSpace(line)
	if strings.HasSuffix(key, ":") || strings.HasSuffix(key, "-") {
		key = strings.TrimSpace(key[:len(key)-1])
	}
	canonical, ok := s.aliases[strings.ToLower(key)]
	return canonical, ok
}

// Segment returns canonical name -> single-spaced content. Lines before the first header
// are dropped and canonicals with no content are absent.
func (s *Segmenter) Segment(text string) map[string]string {
	buckets := make(map[string][]string)
	current := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if canonical, ok := s.Header(line); ok {
			current = canonical
			if _, exists := buckets[current]; !exists {
				buckets[current] = nil
			}
			continue
		}
		if current != "" {
			buckets[current] = append(buckets[current], line)
		}
	}

	result := make(map[string]string, len(buckets))
	for canonical, lines := range buckets {
		content := strings.TrimSpace(strings.Join(lines, " "))
		if content != "" {
			result[canonical] = content
		}
	}

	return result
}
