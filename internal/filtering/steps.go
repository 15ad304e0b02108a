package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/jobs"
)

type withoutSkillsFilter struct {
	disabled bool
	reason   string
}

// NewWithoutSkills creates a filter that removes postings with an empty skill set. They can never match.
func NewWithoutSkills() Filter {
	return &withoutSkillsFilter{}
}

func (f *withoutSkillsFilter) Name() string { return "without_skills" }

func (f *withoutSkillsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *withoutSkillsFilter) IsEnabled() bool { return !f.disabled }

func (f *withoutSkillsFilter) Validate(*Config) error { return nil }

func (f *withoutSkillsFilter) Apply(_ context.Context, deps Deps, c *jobs.Corpus) (*jobs.Corpus, Step, error) {
	initial := c.Len()
	removed := c.Retain(func(p *jobs.Posting) bool { return len(p.Skills) > 0 })
	if len(removed) > 0 {
		deps.Logger.Debug("excluding jobs without skills",
			zap.Ints("excluded_jobs", removed),
			zap.Int("jobs_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *withoutSkillsFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type categoriesFilter struct {
	categories []string
}

// NewCategories creates a filter that keeps only postings of the configured categories.
// With no categories configured every posting is kept.
func NewCategories() Filter {
	return &categoriesFilter{}
}

func (f *categoriesFilter) Name() string { return "categories" }

func (f *categoriesFilter) Disable(string) {}

func (f *categoriesFilter) IsEnabled() bool { return true }

func (f *categoriesFilter) Validate(cfg *Config) error {
	f.categories = nil
	if cfg == nil {
		return nil
	}
	for _, category := range cfg.Categories {
		category = strings.TrimSpace(category)
		if category == "" {
			return fmt.Errorf("empty category in allow-list")
		}
		f.categories = append(f.categories, category)
	}
	return nil
}

func (f *categoriesFilter) Apply(_ context.Context, deps Deps, c *jobs.Corpus) (*jobs.Corpus, Step, error) {
	initial := c.Len()
	if len(f.categories) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	removed := c.Retain(func(p *jobs.Posting) bool {
		for _, category := range f.categories {
			if strings.EqualFold(p.Category, category) {
				return true
			}
		}
		return false
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding jobs outside categories",
			zap.Strings("categories", f.categories),
			zap.Int("excluded_jobs", len(removed)),
			zap.Int("jobs_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *categoriesFilter) Status() Status {
	details := map[string]string{}
	if len(f.categories) > 0 {
		details["categories"] = strings.Join(f.categories, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
