// Package gemini is a model-based entity extractor backed by Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/logger"
	"github.com/spigell/resume-ats/internal/resume"
	"github.com/spigell/resume-ats/internal/utils"
)

const (
	provider            = "gemini"
	defaultMaxLogLength = 200
	systemInstruction   = "You are a precise resume entity tagger. Answer with JSON only."
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Extractor asks the model to label entities, then anchors each one back onto the text.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewExtractor returns an Extractor. maxLogLength bounds prompt/response previews in debug logs.
func NewExtractor(generator contentGenerator, maxLogLength int, log *zap.Logger) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	model := ""
	if generator != nil {
		model = generator.Model()
	}

	return &Extractor{
		generator: generator,
		logger:    logger.WithCommonFields(log, provider, model),
		maxLogLen: maxLogLength,
	}
}

type entityPayload struct {
	Entities []struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	} `json:"entities"`
}

// Extract implements entities.Extractor.
func (e *Extractor) Extract(ctx context.Context, text string) ([]resume.EntitySpan, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("gemini generator is not configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	prompt := buildPrompt(text)
	e.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	payload, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	return e.anchor(text, payload), nil
}

// anchor locates each returned entity in text. Repeated entities are matched to successive
// occurrences; entities the model made up are dropped.
func (e *Extractor) anchor(text string, payload *entityPayload) []resume.EntitySpan {
	lower := strings.ToLower(text)
	next := make(map[string]int)
	spans := make([]resume.EntitySpan, 0, len(payload.Entities))

	for _, ent := range payload.Entities {
		label, ok := resume.ParseLabel(ent.Label)
		if !ok {
			e.logger.Debug("skipping entity with unknown label", zap.String("label", ent.Label))
			continue
		}

		needle := strings.TrimSpace(ent.Text)
		if needle == "" {
			continue
		}

		key := string(label) + "\x00" + needle
		from := next[key]
		start := indexFrom(text, needle, from)
		if start < 0 && len(lower) == len(text) {
			start = indexFrom(lower, strings.ToLower(needle), from)
		}
		if start < 0 {
			e.logger.Debug("skipping entity not found in text",
				zap.String("label", string(label)),
				zap.String("text", utils.TruncateForLog(needle, e.maxLogLen)),
			)
			continue
		}

		end := start + len(needle)
		next[key] = end
		spans = append(spans, resume.EntitySpan{
			Start: start,
			End:   end,
			Label: label,
			Text:  text[start:end],
		})
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

func indexFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}

func buildPrompt(text string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{RESUME_TEXT}}", text)
}

func parseResponse(raw string) (*entityPayload, error) {
	cleaned := extractJSON(raw)

	var payload entityPayload
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &payload.Entities); err != nil {
			return nil, fmt.Errorf("parse gemini response: %w", err)
		}
		return &payload, nil
	}

	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return &payload, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
