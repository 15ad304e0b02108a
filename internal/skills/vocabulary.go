package skills

import (
	"context"
	"os"
	"strings"

	"github.com/spigell/resume-ats/internal/resume"
)

// Vocabulary supplies the known skill list used by the fallback resolver.
type Vocabulary interface {
	Skills(ctx context.Context) ([]string, error)
}

// FileVocabulary reads a flat comma-separated skill list from disk on every call.
type FileVocabulary struct {
	Path string
}

func (v FileVocabulary) Skills(_ context.Context) ([]string, error) {
	path := strings.TrimSpace(v.Path)
	if path == "" {
		return nil, resume.NewResourceError("skills", "skill vocabulary", os.ErrNotExist)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, resume.NewResourceError("skills", path, err)
	}

	return ParseVocabulary(string(data)), nil
}

// StaticVocabulary is an in-memory skill list.
type StaticVocabulary []string

func (v StaticVocabulary) Skills(_ context.Context) ([]string, error) {
	return ParseVocabulary(strings.Join(v, ",")), nil
}

// ParseVocabulary splits comma and newline separated skills, lower-casing and dropping blanks.
// The first occurrence of a skill wins.
func ParseVocabulary(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' })
	seen := make(map[string]struct{}, len(parts))
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		skill := strings.ToLower(strings.TrimSpace(part))
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		skills = append(skills, skill)
	}
	return skills
}
