// Package skills resolves skills from a vocabulary when the entity extractor found none.
package skills

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/resume"
	"github.com/spigell/resume-ats/internal/sections"
)

var errNoVocabulary = errors.New("no skill vocabulary configured")

// Resolver matches vocabulary entries against the SKILLS section, or the whole document
// when that section is missing.
type Resolver struct {
	vocabulary Vocabulary
	chunker    Chunker
	logger     *zap.Logger
}

// NewResolver returns a resolver. A nil chunker uses PhraseChunker.
func NewResolver(vocabulary Vocabulary, chunker Chunker, logger *zap.Logger) *Resolver {
	if chunker == nil {
		chunker = PhraseChunker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{vocabulary: vocabulary, chunker: chunker, logger: logger}
}

// Resolve returns vocabulary skills found in the candidate text, sorted lexicographically.
// A vocabulary that cannot be loaded fails the call with resume.ErrResourceUnavailable.
func (r *Resolver) Resolve(ctx context.Context, sectionMap map[string]string, text string) ([]string, error) {
	if r.vocabulary == nil {
		return nil, resume.NewResourceError("skills", "skill vocabulary", errNoVocabulary)
	}

	candidate := strings.ToLower(sectionMap[sections.Skills])
	source := "skills_section"
	if candidate == "" {
		candidate = strings.ToLower(text)
		source = "document"
	}

	vocabulary, err := r.vocabulary.Skills(ctx)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{})
	known := make(map[string]struct{}, len(vocabulary))
	for _, skill := range vocabulary {
		if err := ctx.Err(); err != nil {
			return nil, resume.NewTimeoutError("skills", err)
		}
		known[skill] = struct{}{}
		if containsWord(candidate, skill) {
			found[skill] = struct{}{}
		}
	}

	for _, phrase := range r.chunker.Chunk(candidate) {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if _, ok := known[phrase]; ok {
			found[phrase] = struct{}{}
		}
	}

	result := make([]string, 0, len(found))
	for skill := range found {
		result = append(result, skill)
	}
	sort.Strings(result)

	r.logger.Debug("resolved skills from vocabulary",
		zap.String("source", source),
		zap.Int("vocabulary_size", len(vocabulary)),
		zap.Int("found", len(result)),
	)

	return result, nil
}

// containsWord reports whether skill occurs in text delimited by word boundaries.
func containsWord(text, skill string) bool {
	if skill == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(skill) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
