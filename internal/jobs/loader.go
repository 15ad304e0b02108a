package jobs

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/spigell/resume-ats/internal/resume"
)

const (
	ColumnID          = "job_id"
	ColumnCategory    = "category"
	ColumnTitle       = "job_title"
	ColumnDescription = "job_description"
	ColumnSkills      = "job_skill_set"
)

var requiredColumns = []string{ColumnID, ColumnCategory, ColumnTitle, ColumnDescription, ColumnSkills}

var errEmptySkillSet = errors.New("skill set is empty, use [] for a job without skills")

// LoadCorpus reads a corpus file. The format follows the extension: .json, .yaml/.yml, anything else is CSV.
func LoadCorpus(path string) (*Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, resume.NewResourceError("jobs", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(file)
	case ".yaml", ".yml":
		return ReadYAML(file)
	default:
		return ReadCSV(file)
	}
}

// ReadCSV reads a corpus with a header row naming at least the job_id, category, job_title,
// job_description and job_skill_set columns. Each skill set is a list literal such as
// ["Python", "SQL"] or ['Python', 'SQL'].
func ReadCSV(r io.Reader) (*Corpus, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Corpus{Items: []*Posting{}}, nil
		}
		return nil, resume.NewCorpusError("read csv", "header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, resume.NewCorpusError("read csv", "missing columns "+strings.Join(missing, ","), nil)
	}

	corpus := &Corpus{Items: make([]*Posting, 0)}
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, resume.NewCorpusError("read csv", fmt.Sprintf("row %d", row), err)
		}

		item := make(map[string]any, len(header))
		for i, column := range header {
			if i < len(record) {
				item[column] = record[i]
			}
		}

		posting, err := decodePosting(item)
		if err != nil {
			return nil, resume.NewCorpusError("read csv", fmt.Sprintf("row %d", row), err)
		}
		corpus.Items = append(corpus.Items, posting)
	}

	return corpus, nil
}

// ReadJSON reads a corpus stored as a JSON array of objects keyed like the CSV columns.
func ReadJSON(r io.Reader) (*Corpus, error) {
	var items []map[string]any
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, resume.NewCorpusError("read json", "document", err)
	}
	return decodeItems("read json", items)
}

// ReadYAML reads a corpus stored as a YAML sequence of mappings keyed like the CSV columns.
func ReadYAML(r io.Reader) (*Corpus, error) {
	var items []map[string]any
	if err := yaml.NewDecoder(r).Decode(&items); err != nil && !errors.Is(err, io.EOF) {
		return nil, resume.NewCorpusError("read yaml", "document", err)
	}
	return decodeItems("read yaml", items)
}

func decodeItems(op string, items []map[string]any) (*Corpus, error) {
	corpus := &Corpus{Items: make([]*Posting, 0, len(items))}
	for i, item := range items {
		if missing := missingKeys(item); len(missing) > 0 {
			return nil, resume.NewCorpusError(op, fmt.Sprintf("item %d: missing keys %s", i, strings.Join(missing, ",")), nil)
		}
		posting, err := decodePosting(item)
		if err != nil {
			return nil, resume.NewCorpusError(op, fmt.Sprintf("item %d", i), err)
		}
		corpus.Items = append(corpus.Items, posting)
	}
	return corpus, nil
}

func decodePosting(item map[string]any) (*Posting, error) {
	if id, ok := item[ColumnID].(string); ok && strings.TrimSpace(id) == "" {
		return nil, errors.New("job id is empty")
	}
	if item[ColumnSkills] == nil {
		return nil, errEmptySkillSet
	}

	var posting Posting
	cfg := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(jobIDHook, skillSetHook),
		Result:     &posting,
		TagName:    "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(item); err != nil {
		return nil, err
	}

	posting.Category = strings.TrimSpace(posting.Category)
	posting.Title = strings.TrimSpace(posting.Title)
	posting.Skills = normalizeSkills(posting.Skills)
	return &posting, nil
}

// jobIDHook accepts integers, integral numbers and numeric strings as a job id.
func jobIDHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}

	switch from.Kind() {
	case reflect.String:
		id, err := strconv.Atoi(strings.TrimSpace(data.(string)))
		if err != nil {
			return nil, fmt.Errorf("job id %q is not an integer", data)
		}
		return id, nil
	case reflect.Float32, reflect.Float64:
		v := reflect.ValueOf(data).Float()
		if math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, fmt.Errorf("job id %v is not an integer", v)
		}
		return int(v), nil
	default:
		return data, nil
	}
}

// skillSetHook turns a textual list literal into a string slice. It parses the literal as a
// YAML flow sequence, which covers both JSON arrays and single-quoted lists. Anything that is
// not a list is an error, never an empty skill set.
func skillSetHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf([]string{}) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Slice, reflect.Array:
		return data, nil
	case reflect.String:
	default:
		return nil, fmt.Errorf("skill set must be a list, got %s", from.Kind())
	}

	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return nil, errEmptySkillSet
	}

	var skills []string
	if err := yaml.Unmarshal([]byte(raw), &skills); err != nil {
		return nil, fmt.Errorf("parse skill set %q: %w", raw, err)
	}
	if skills == nil {
		skills = []string{}
	}
	return skills, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, column := range header {
		present[column] = struct{}{}
	}
	missing := make([]string, 0)
	for _, column := range requiredColumns {
		if _, ok := present[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

func missingKeys(item map[string]any) []string {
	missing := make([]string, 0)
	for _, key := range []string{ColumnID, ColumnSkills} {
		if _, ok := item[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
