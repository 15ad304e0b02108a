// Package jobs holds the job corpus and ranks it against a candidate's skills.
package jobs

import (
	"encoding/json"
	"os"
	"strings"
)

// Posting is one job of the corpus. Skills are lower-cased, trimmed and unique.
type Posting struct {
	ID          int      `json:"job_id" yaml:"job_id"`
	Category    string   `json:"category" yaml:"category"`
	Title       string   `json:"job_title" yaml:"job_title"`
	Description string   `json:"job_description" yaml:"job_description"`
	Skills      []string `json:"job_skill_set" yaml:"job_skill_set"`
}

// Corpus is an ordered collection of postings. Order is the load order and
// decides ties when ranking.
type Corpus struct {
	Items []*Posting `json:"items" yaml:"items"`
}

// Len returns the number of postings.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// FindByID returns the posting with the given id, or nil.
func (c *Corpus) FindByID(id int) *Posting {
	if c == nil {
		return nil
	}
	for _, p := range c.Items {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Categories returns the distinct categories in corpus order.
func (c *Corpus) Categories() []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	if c == nil {
		return categories
	}
	for _, p := range c.Items {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// Retain keeps the postings keep returns true for and returns the ids of the removed ones.
func (c *Corpus) Retain(keep func(*Posting) bool) []int {
	removed := make([]int, 0)
	if c == nil {
		return removed
	}
	kept := c.Items[:0]
	for _, p := range c.Items {
		if keep(p) {
			kept = append(kept, p)
			continue
		}
		removed = append(removed, p.ID)
	}
	for i := len(kept); i < len(c.Items); i++ {
		c.Items[i] = nil
	}
	c.Items = kept
	return removed
}

// Exclude drops the postings with the given ids and returns the ids actually removed.
func (c *Corpus) Exclude(ids []int) []int {
	targets := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}
	return c.Retain(func(p *Posting) bool {
		_, drop := targets[p.ID]
		return !drop
	})
}

// DumpToTmpFile writes the corpus as indented JSON to a new temporary file.
func (c *Corpus) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		result = append(result, skill)
	}
	return result
}
