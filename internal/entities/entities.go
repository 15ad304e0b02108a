// Package entities defines the entity extraction capability and its rule-based backends.
package entities

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/resume-ats/internal/resume"
)

// Extractor returns labeled spans found in resume text, ordered by position.
// Implementations must be safe for concurrent use or be allocated per worker.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]resume.EntitySpan, error)
}

// Nop never finds anything, which sends every field down its fallback path.
type Nop struct{}

func (Nop) Extract(context.Context, string) ([]resume.EntitySpan, error) {
	return nil, nil
}

// Dictionary is a gazetteer backend: every configured term is looked up case-insensitively
// on word boundaries. It is immutable after construction.
type Dictionary struct {
	terms []dictionaryTerm
}

type dictionaryTerm struct {
	label resume.Label
	re    *regexp.Regexp
}

// NewDictionary compiles terms per label. Blank terms are ignored.
func NewDictionary(terms map[resume.Label][]string) *Dictionary {
	d := &Dictionary{}
	for _, label := range resume.Labels {
		for _, term := range terms[label] {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			d.terms = append(d.terms, dictionaryTerm{
				label: label,
				re:    regexp.MustCompile(`(?i)` + boundary(term[0]) + regexp.QuoteMeta(term) + boundary(term[len(term)-1])),
			})
		}
	}
	return d
}

// Extract returns every term occurrence with the text as written in the document.
// Overlapping hits keep the earliest, then the longest.
func (d *Dictionary) Extract(ctx context.Context, text string) ([]resume.EntitySpan, error) {
	var spans []resume.EntitySpan
	for _, term := range d.terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, loc := range term.re.FindAllStringIndex(text, -1) {
			spans = append(spans, resume.EntitySpan{
				Start: loc[0],
				End:   loc[1],
				Label: term.label,
				Text:  text[loc[0]:loc[1]],
			})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	result := spans[:0]
	end := -1
	for _, span := range spans {
		if span.Start < end {
			continue
		}
		result = append(result, span)
		end = span.End
	}

	return result, nil
}

// boundary anchors a term edge on a word boundary only when that edge is a word character,
// so terms like "c++" still match.
func boundary(b byte) string {
	if b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') {
		return `\b`
	}
	return ""
}
