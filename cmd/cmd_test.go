package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/entities"
	"github.com/spigell/resume-ats/internal/jobs"
	"github.com/spigell/resume-ats/internal/parser"
	"github.com/spigell/resume-ats/internal/resume"
	"github.com/spigell/resume-ats/internal/skills"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseFilesKeepsInputOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.txt", "  Alice  \n\nSKILLS\nGo, SQL\n"),
		writeFile(t, dir, "b.txt", "Bob\nSKILLS\nPython\n"),
		writeFile(t, dir, "c.txt", "Carol\nTECHNICAL SKILLS:\nDocker\n"),
	}

	p, err := parser.New(parser.Options{Vocabulary: skills.StaticVocabulary{"go", "sql", "python", "docker"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := parseFiles(context.Background(), p, paths, 2, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{{"go", "sql"}, {"python"}, {"docker"}}
	for i, result := range results {
		if result.Source != paths[i] {
			t.Fatalf("result %d: expected source %s, got %s", i, paths[i], result.Source)
		}
		if strings.Join(result.Profile.Skills, ",") != strings.Join(want[i], ",") {
			t.Fatalf("result %d: expected skills %v, got %v", i, want[i], result.Profile.Skills)
		}
	}
}

func TestParseFilesFailsOnMissingFile(t *testing.T) {
	t.Parallel()

	p, err := parser.New(parser.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = parseFiles(context.Background(), p, []string{filepath.Join(t.TempDir(), "missing.txt")}, 0, zap.NewNop())
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewExtractor(t *testing.T) {
	t.Parallel()

	ex, err := newExtractor(context.Background(), &ExtractorConfig{Provider: providerNone}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ex.(entities.Nop); !ok {
		t.Fatalf("expected nop extractor, got %T", ex)
	}

	ex, err = newExtractor(context.Background(), &ExtractorConfig{
		Provider:   providerDictionary,
		Dictionary: map[string][]string{"skill": {"Go"}, "job_title": {"Engineer"}},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spans, err := ex.Extract(context.Background(), "Engineer writing Go")
	if err != nil || len(spans) != 2 || spans[0].Label != resume.LabelJobTitle || spans[1].Label != resume.LabelSkill {
		t.Fatalf("unexpected spans: %+v %v", spans, err)
	}

	cases := []*ExtractorConfig{
		{Provider: providerDictionary, Dictionary: map[string][]string{"hobby": {"chess"}}},
		{Provider: "spacy"},
	}
	for _, cfg := range cases {
		if _, err := newExtractor(context.Background(), cfg, zap.NewNop()); !errors.Is(err, resume.ErrInvalidConfig) {
			t.Fatalf("expected config error for %+v, got %v", cfg, err)
		}
	}
}

func TestNewExtractorGeminiRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := newExtractor(context.Background(), &ExtractorConfig{Provider: providerGemini, Gemini: &GeminiConfig{}}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "gemini api key is not configured") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestConfigNormalize(t *testing.T) {
	t.Parallel()

	c := &Config{
		Sections:  map[string][]string{"education": {"EDUCATION", "Academic Background"}},
		Extractor: &ExtractorConfig{Provider: " Gemini "},
	}
	c.normalize()

	if _, ok := c.Sections["EDUCATION"]; !ok || len(c.Sections) != 1 {
		t.Fatalf("expected upper-case section names, got %v", c.Sections)
	}
	if c.Extractor.Provider != providerGemini || c.Extractor.Gemini == nil || c.Skills == nil || c.Jobs == nil {
		t.Fatalf("unexpected normalized config: %+v", c)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	matches := []jobs.Match{{JobID: 2, JobTitle: "B", MatchScore: 1, MatchedSkills: []string{"python"}, TotalSkills: 1}}

	var out bytes.Buffer
	if err := render(&out, outputYAML, matches); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "job_id: 2") || !strings.Contains(out.String(), "match_score: 1") {
		t.Fatalf("unexpected yaml: %s", out.String())
	}

	out.Reset()
	if err := render(&out, outputJSON, resume.NewProfile()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), `"skills": []`) || !strings.Contains(out.String(), `"total_experience": 0`) {
		t.Fatalf("unexpected json: %s", out.String())
	}

	if err := render(&out, "xml", matches); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestWriteJobsTable(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	corpus := &jobs.Corpus{Items: []*jobs.Posting{{ID: 7, Category: "Data", Title: "Analyst", Skills: []string{"sql"}}}}
	if err := writeJobsTable(&out, corpus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "7") || !strings.Contains(lines[1], "Analyst") {
		t.Fatalf("unexpected table: %q", out.String())
	}
}

func TestMatchedPostings(t *testing.T) {
	t.Parallel()

	corpus := &jobs.Corpus{Items: []*jobs.Posting{{ID: 1}, {ID: 2}, {ID: 3}}}
	matched := matchedPostings(corpus, []jobs.Match{{JobID: 3}, {JobID: 1}, {JobID: 42}})
	if matched.Len() != 2 || matched.Items[0].ID != 3 || matched.Items[1].ID != 1 {
		t.Fatalf("unexpected postings: %+v", matched.Items)
	}
}
