package jobs

import (
	"sort"
	"strings"
)

// DefaultLimit is the number of matches returned when no limit is configured.
const DefaultLimit = 10

// Match is a posting ranked against a candidate.
type Match struct {
	JobID         int      `json:"job_id" yaml:"job_id"`
	JobTitle      string   `json:"job_title" yaml:"job_title"`
	Category      string   `json:"category" yaml:"category"`
	MatchScore    float64  `json:"match_score" yaml:"match_score"`
	MatchedSkills []string `json:"matched_skills" yaml:"matched_skills"`
	TotalSkills   int      `json:"total_skills" yaml:"total_skills"`
}

// Matcher ranks postings by the share of their skills the candidate has.
type Matcher struct {
	limit int
}

// NewMatcher returns a matcher keeping at most limit results. Non-positive limits use DefaultLimit.
func NewMatcher(limit int) *Matcher {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Matcher{limit: limit}
}

// Match scores every posting as |job ∩ candidate| / |job|, keeps the positive ones and
// returns the best, highest first. Equal scores keep corpus order. Postings without
// skills never match.
func (m *Matcher) Match(skills []string, corpus *Corpus) []Match {
	candidate := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		candidate[strings.ToLower(strings.TrimSpace(skill))] = struct{}{}
	}

	matches := make([]Match, 0)
	if corpus == nil {
		return matches
	}

	for _, p := range corpus.Items {
		if len(p.Skills) == 0 {
			continue
		}

		matched := make([]string, 0, len(p.Skills))
		for _, skill := range p.Skills {
			if _, ok := candidate[strings.ToLower(skill)]; ok {
				matched = append(matched, skill)
			}
		}
		if len(matched) == 0 {
			continue
		}

		matches = append(matches, Match{
			JobID:         p.ID,
			JobTitle:      p.Title,
			Category:      p.Category,
			MatchScore:    float64(len(matched)) / float64(len(p.Skills)),
			MatchedSkills: matched,
			TotalSkills:   len(p.Skills),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if len(matches) > m.limit {
		matches = matches[:m.limit]
	}
	return matches
}
