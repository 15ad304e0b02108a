package entities

import (
	"context"
	"testing"

	"github.com/spigell/resume-ats/internal/resume"
)

func TestDictionaryExtract(t *testing.T) {
	t.Parallel()

	d := NewDictionary(map[resume.Label][]string{
		resume.LabelSkill:    {"Go", "machine learning", "learning"},
		resume.LabelCompany:  {"Acme"},
		resume.LabelJobTitle: {"software engineer", " "},
	})

	text := "Software Engineer at ACME\nGo, Machine Learning, Google"
	spans, err := d.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := []resume.EntitySpan{
		{Start: 0, End: 17, Label: resume.LabelJobTitle, Text: "Software Engineer"},
		{Start: 21, End: 25, Label: resume.LabelCompany, Text: "ACME"},
		{Start: 26, End: 28, Label: resume.LabelSkill, Text: "Go"},
		{Start: 30, End: 46, Label: resume.LabelSkill, Text: "Machine Learning"},
	}

	if len(spans) != len(expect) {
		t.Fatalf("expected %d spans, got %d: %+v", len(expect), len(spans), spans)
	}
	for i := range expect {
		if spans[i] != expect[i] {
			t.Fatalf("span %d: expected %+v, got %+v", i, expect[i], spans[i])
		}
	}
}

func TestDictionaryHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDictionary(map[resume.Label][]string{resume.LabelSkill: {"go"}})
	if _, err := d.Extract(ctx, "go"); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	spans, err := Nop{}.Extract(context.Background(), "anything")
	if err != nil || len(spans) != 0 {
		t.Fatalf("expected no spans and no error, got %v %v", spans, err)
	}
}
