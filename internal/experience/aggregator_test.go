package experience

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ats/internal/resume"
)

func fixedClock(year int, month time.Month) Clock {
	return func() time.Time {
		return time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
	}
}

func TestTotalYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		section string
		expect  float64
	}{
		{name: "closed range", section: "Jan 2020 - Dec 2020", expect: 1.0},
		{name: "closed range among fields", section: "Acme, Engineer, Jan 2020 - Jun 2020", expect: 0.5},
		{name: "same month", section: "Mar 2020 - Mar 2020", expect: 0.08},
		{name: "present uses clock", section: "Acme, Jan 2020 - Present", expect: 1.0},
		{name: "full month names", section: "January 2019 - June 2019", expect: 0.5},
		{name: "malformed dates", section: "Foo 2020 - Bar 2021", expect: 0},
		{name: "negative range clamps to zero", section: "Dec 2021 - Jan 2020", expect: 0},
		{name: "overlaps are summed", section: "A, Jan 2020 - Dec 2020, B, Jun 2020 - May 2021", expect: 2.0},
		{name: "no ranges", section: "Acme, Engineer", expect: 0},
		{name: "five digit year is not a range", section: "Jan 2020 - Dec 20201", expect: 0},
		{name: "five digit start year is not a range", section: "Jan 20201 - Dec 2020", expect: 0},
		{name: "empty section", section: "", expect: 0},
	}

	agg := New(fixedClock(2021, time.January), zap.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := agg.TotalYears(context.Background(), Records(tt.section))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %v years, got %v", tt.expect, got)
			}
		})
	}
}

func TestTotalMonths(t *testing.T) {
	t.Parallel()

	agg := New(fixedClock(2021, time.January), nil)
	tests := []struct {
		section string
		expect  int
	}{
		{section: "Jan 2020 - Dec 2020", expect: 12},
		{section: "Jan 2020 - Present", expect: 12},
		{section: "Jan 2020 - present", expect: 12},
		{section: "Nov 2019 – Feb 2020", expect: 4},
		{section: "Jan 2020 - Someday 2020", expect: 12},
	}

	for _, tt := range tests {
		got, err := agg.TotalMonths(context.Background(), Records(tt.section))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.expect {
			t.Fatalf("%q: expected %d months, got %d", tt.section, tt.expect, got)
		}
	}
}

func TestRecordsKeepFieldsVerbatim(t *testing.T) {
	t.Parallel()

	records := Records("Acme Corp, Senior Engineer , Jan 2020 - Present")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(records[0]) != 3 || records[0][1] != " Senior Engineer " {
		t.Fatalf("unexpected fields: %q", records[0])
	}
}

func TestUnparseableRangeIsLogged(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	agg := New(fixedClock(2021, time.January), zap.New(core))

	if _, err := agg.TotalYears(context.Background(), Records("Foo 2020 - Dec 2020")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if observed.FilterMessage("skipping unparseable date range").Len() != 1 {
		t.Fatalf("expected the skipped range to be logged, got %v", observed.All())
	}
}

func TestTotalYearsHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := New(nil, nil)
	_, err := agg.TotalYears(ctx, Records("Jan 2020 - Dec 2020"))
	if !errors.Is(err, resume.ErrExtractionTimeout) {
		t.Fatalf("expected ErrExtractionTimeout, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the context error to be wrapped, got %v", err)
	}
}
