package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/jobs"
)

// ExcludedJobs is the content of an exclude file: jobs already reviewed by the user.
type ExcludedJobs struct {
	Items []*ExcludedJob
}

// ExcludedJob is one reviewed job.
type ExcludedJob struct {
	ID         int
	Title      string
	Category   string
	ExcludedAt time.Time
}

// ToExcluded converts the postings of c into exclude file entries stamped with now.
func ToExcluded(c *jobs.Corpus, now time.Time) *ExcludedJobs {
	excluded := &ExcludedJobs{}
	if c == nil {
		return excluded
	}
	for _, p := range c.Items {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			ID:         p.ID,
			Title:      p.Title,
			Category:   p.Category,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// ReadExcludeFile loads an exclude file. A missing or empty file yields no entries.
func ReadExcludeFile(path string) (*ExcludedJobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedJobs{}, nil
		}
		return nil, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return &ExcludedJobs{}, nil
	}

	var excluded ExcludedJobs
	if err := json.Unmarshal(data, &excluded); err != nil {
		return nil, fmt.Errorf("decoding exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

// Append adds the entries of s, skipping ids already present.
func (e *ExcludedJobs) Append(s *ExcludedJobs) {
	known := make(map[int]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

// IDs returns the excluded job ids.
func (e *ExcludedJobs) IDs() []int {
	ids := make([]int, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// ToFile overwrites path with the entries as indented JSON.
func (e *ExcludedJobs) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes jobs listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *jobs.Corpus) (*jobs.Corpus, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded, err := ReadExcludeFile(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	removed := c.Exclude(excluded.IDs())
	if len(removed) > 0 {
		deps.Logger.Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Ints("excluded_jobs", removed),
			zap.Int("jobs_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
