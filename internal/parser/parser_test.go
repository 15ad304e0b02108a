package parser

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-ats/internal/resume"
	"github.com/spigell/resume-ats/internal/skills"
)

const sampleResume = `Jane Doe
jane@example.com | +1 (555) 123-4567 | https://github.com/jane
SKILLS
Go, Docker, SQL
EXPERIENCE
Engineer, Acme, Jan 2020 - Dec 2020
EDUCATION
MIT, BS CS
PROJECTS
Resume parser, Go
CERTIFICATIONS
CKA`

type recordingExtractor struct {
	spans []resume.EntitySpan
	calls atomic.Int32
}

func (r *recordingExtractor) Extract(_ context.Context, _ string) ([]resume.EntitySpan, error) {
	r.calls.Add(1)
	return r.spans, nil
}

type countingVocabulary struct {
	skills []string
	calls  atomic.Int32
}

func (v *countingVocabulary) Skills(context.Context) ([]string, error) {
	v.calls.Add(1)
	return v.skills, nil
}

type countingChunker struct {
	calls atomic.Int32
}

func (c *countingChunker) Chunk(string) []string {
	c.calls.Add(1)
	return nil
}

type extractorFunc func(ctx context.Context, text string) ([]resume.EntitySpan, error)

func (f extractorFunc) Extract(ctx context.Context, text string) ([]resume.EntitySpan, error) {
	return f(ctx, text)
}

func jan2021() time.Time {
	return time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC)
}

func span(label resume.Label, text string) resume.EntitySpan {
	return resume.EntitySpan{Label: label, Text: text}
}

func TestParseFusesEntitiesWithSections(t *testing.T) {
	t.Parallel()

	extractor := &recordingExtractor{spans: []resume.EntitySpan{
		span(resume.LabelPerson, "Jane Doe"),
		span(resume.LabelSkill, "Go"),
		span(resume.LabelSkill, "SQL"),
		span(resume.LabelSkill, "Go"),
		span(resume.LabelJobTitle, "Engineer"),
		span(resume.LabelCompany, "Acme"),
		span(resume.LabelCompany, "Acme"),
		span(resume.LabelEducation, "MIT"),
		span(resume.LabelEducation, "MIT"),
		span(resume.LabelPerson, "John Referee"),
	}}
	vocabulary := &countingVocabulary{skills: []string{"docker"}}
	chunker := &countingChunker{}

	p, err := New(Options{Extractor: extractor, Vocabulary: vocabulary, Chunker: chunker, Clock: jan2021})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := p.Parse(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if extractor.calls.Load() != 1 {
		t.Fatalf("expected a single extractor call, got %d", extractor.calls.Load())
	}
	if vocabulary.calls.Load() != 0 || chunker.calls.Load() != 0 {
		t.Fatalf("fallback must be bypassed when skills were extracted")
	}

	expect := &resume.Profile{
		Name:                 "Jane Doe",
		Email:                "jane@example.com",
		Phone:                "+1 (555) 123-4567",
		Skills:               []string{"Go", "SQL"},
		Education:            []resume.Record{{"MIT"}, {"MIT"}},
		Experience:           []resume.Record{{"Engineer", " Acme", " Jan 2020 - Dec 2020"}},
		JobTitles:            []string{"Engineer"},
		Companies:            []string{"Acme"},
		Projects:             []resume.Record{{"Resume parser", " Go"}},
		Certifications:       []resume.Record{{"CKA"}},
		URLs:                 []string{"https://github.com/jane"},
		TotalExperienceYears: 1,
		Score:                1.6,
	}

	if !reflect.DeepEqual(profile, expect) {
		t.Fatalf("unexpected profile:\n got: %+v\nwant: %+v", profile, expect)
	}
}

func TestParseFallsBackToVocabulary(t *testing.T) {
	t.Parallel()

	vocabulary := &countingVocabulary{skills: []string{"sql", "go", "docker", "rust"}}
	p, err := New(Options{Vocabulary: vocabulary, Clock: jan2021})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := p.Parse(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"docker", "go", "sql"}; !reflect.DeepEqual(profile.Skills, want) {
		t.Fatalf("expected %v, got %v", want, profile.Skills)
	}
	if vocabulary.calls.Load() != 1 {
		t.Fatalf("expected vocabulary to be read once, got %d", vocabulary.calls.Load())
	}
	if want := []resume.Record{{"MIT", " BS CS"}}; !reflect.DeepEqual(profile.Education, want) {
		t.Fatalf("expected education from section, got %v", profile.Education)
	}
	if profile.Name != "" || len(profile.Companies) != 0 || len(profile.JobTitles) != 0 {
		t.Fatalf("expected span-only fields to stay empty: %+v", profile)
	}
}

func TestParseMissingVocabulary(t *testing.T) {
	t.Parallel()

	p, err := New(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := p.Parse(context.Background(), sampleResume); !errors.Is(err, resume.ErrResourceUnavailable) {
		t.Fatalf("expected resource error on fallback, got %v", err)
	}

	p, err = New(Options{Extractor: &recordingExtractor{spans: []resume.EntitySpan{span(resume.LabelSkill, "Go")}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Parse(context.Background(), sampleResume); err != nil {
		t.Fatalf("vocabulary must not be required when skills were extracted: %v", err)
	}
}

func TestParseDegradesGracefully(t *testing.T) {
	t.Parallel()

	p, err := New(Options{Vocabulary: skills.StaticVocabulary{"go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := p.Parse(context.Background(), "no headers here\nworked from sometime - whenever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Email != "" || profile.Phone != "" || len(profile.URLs) != 0 {
		t.Fatalf("expected empty contact details: %+v", profile)
	}
	if len(profile.Skills) != 0 || profile.TotalExperienceYears != 0 || profile.Score != 0 {
		t.Fatalf("expected empty profile: %+v", profile)
	}
}

func TestParseLogsMissingContactDetails(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	p, err := New(Options{Vocabulary: skills.StaticVocabulary{"go"}, Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := p.Parse(context.Background(), "no headers here\nworked from sometime - whenever"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, msg := range []string{"no section header matched", "no email found", "no phone found"} {
		if observed.FilterMessage(msg).Len() != 1 {
			t.Fatalf("expected %q to be logged once, got %v", msg, observed.All())
		}
	}

	core, observed = observer.New(zapcore.DebugLevel)
	p, err = New(Options{Vocabulary: skills.StaticVocabulary{"go"}, Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Parse(context.Background(), sampleResume); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observed.FilterMessage("no email found").Len() != 0 || observed.FilterMessage("no phone found").Len() != 0 {
		t.Fatalf("unexpected contact warnings: %v", observed.All())
	}
}

func TestParseIsIdempotent(t *testing.T) {
	t.Parallel()

	p, err := New(Options{Vocabulary: skills.StaticVocabulary{"go", "sql", "docker"}, Clock: jan2021})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := p.Parse(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Parse(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical profiles:\n%+v\n%+v", first, second)
	}
}

func TestParseConcurrently(t *testing.T) {
	t.Parallel()

	p, err := New(Options{Vocabulary: skills.StaticVocabulary{"go", "sql", "docker"}, Clock: jan2021})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reference, err := p.Parse(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := make([]*resume.Profile, 16)
	g, ctx := errgroup.WithContext(context.Background())
	for i := range results {
		g.Go(func() error {
			profile, err := p.Parse(ctx, sampleResume)
			results[i] = profile
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, profile := range results {
		if !reflect.DeepEqual(profile, reference) {
			t.Fatalf("profile %d differs from reference", i)
		}
	}
}

func TestParseTimeout(t *testing.T) {
	t.Parallel()

	blocking := extractorFunc(func(ctx context.Context, _ string) ([]resume.EntitySpan, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	p, err := New(Options{Extractor: blocking, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = p.Parse(context.Background(), sampleResume)
	if !errors.Is(err, resume.ErrExtractionTimeout) {
		t.Fatalf("expected extraction timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Parse(ctx, sampleResume); !errors.Is(err, resume.ErrExtractionTimeout) {
		t.Fatalf("expected extraction timeout for cancelled context, got %v", err)
	}
}

func TestParseExtractorFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("model offline")
	failing := extractorFunc(func(context.Context, string) ([]resume.EntitySpan, error) {
		return nil, boom
	})

	p, err := New(Options{Extractor: failing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = p.Parse(context.Background(), sampleResume)
	if !errors.Is(err, resume.ErrExtractorFailed) || !errors.Is(err, boom) {
		t.Fatalf("expected extractor failure wrapping cause, got %v", err)
	}
	if errors.Is(err, resume.ErrExtractionTimeout) {
		t.Fatalf("extractor failure must not look like a timeout")
	}
}

func TestNewRejectsAmbiguousHeaders(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Headers: map[string][]string{
		"EDUCATION": {"EDUCATION", "TRAINING"},
		"SKILLS":    {"SKILLS", "training"},
	}})
	if !errors.Is(err, resume.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
