package parser

import (
	"context"

	"github.com/spigell/resume-ats/internal/contact"
	"github.com/spigell/resume-ats/internal/experience"
	"github.com/spigell/resume-ats/internal/resume"
	"github.com/spigell/resume-ats/internal/scoring"
	"github.com/spigell/resume-ats/internal/sections"
)

// build merges every source into a profile:
//   - name is the first PERSON span, email, phone and urls always come from the text;
//   - skills come from SKILL spans, or the vocabulary when there are none;
//   - education, projects and certifications come from spans, or their section when there are none;
//   - companies and job titles come from spans only;
//   - experience and its total always come from the EXPERIENCE section.
func (p *Parser) build(ctx context.Context, text string, sectionMap map[string]string, details contact.Details, spans []resume.EntitySpan) (*resume.Profile, error) {
	byLabel := groupSpans(spans)
	profile := resume.NewProfile()

	if names := byLabel[resume.LabelPerson]; len(names) > 0 {
		profile.Name = names[0]
	}
	profile.Email = details.Email
	profile.Phone = details.Phone
	profile.URLs = append(profile.URLs, details.URLs...)

	if found := byLabel[resume.LabelSkill]; len(found) > 0 {
		profile.Skills = unique(found)
	} else {
		resolved, err := p.resolver.Resolve(ctx, sectionMap, text)
		if err != nil {
			return nil, err
		}
		profile.Skills = append(profile.Skills, resolved...)
	}

	// Education is append-only, repeated degrees are kept.
	profile.Education = recordsOrSection(byLabel[resume.LabelEducation], sectionMap[sections.Education])
	profile.Projects = recordsOrSection(unique(byLabel[resume.LabelProject]), sectionMap[sections.Projects])
	profile.Certifications = recordsOrSection(unique(byLabel[resume.LabelCertification]), sectionMap[sections.Certifications])

	profile.Companies = unique(byLabel[resume.LabelCompany])
	profile.JobTitles = unique(byLabel[resume.LabelJobTitle])

	profile.Experience = experience.Records(sectionMap[sections.Experience])
	years, err := p.aggregator.TotalYears(ctx, profile.Experience)
	if err != nil {
		return nil, err
	}
	profile.TotalExperienceYears = years

	profile.Score = p.weights.Compute(scoring.InputsOf(profile))
	return profile, nil
}

func groupSpans(spans []resume.EntitySpan) map[resume.Label][]string {
	grouped := make(map[resume.Label][]string)
	for _, span := range spans {
		grouped[span.Label] = append(grouped[span.Label], span.Text)
	}
	return grouped
}

// unique drops exact duplicates, keeping first-seen order.
func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func recordsOrSection(values []string, section string) []resume.Record {
	if len(values) == 0 {
		return resume.SplitRecords(section)
	}
	records := make([]resume.Record, 0, len(values))
	for _, v := range values {
		records = append(records, resume.Record{v})
	}
	return records
}
