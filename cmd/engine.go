package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/entities"
	"github.com/spigell/resume-ats/internal/entities/gemini"
	"github.com/spigell/resume-ats/internal/parser"
	"github.com/spigell/resume-ats/internal/resume"
	"github.com/spigell/resume-ats/internal/secrets"
	"github.com/spigell/resume-ats/internal/skills"
)

const (
	providerNone       = "none"
	providerDictionary = "dictionary"
	providerGemini     = "gemini"
)

func newParser(ctx context.Context, config *Config, logger *zap.Logger) (*parser.Parser, error) {
	extractor, err := newExtractor(ctx, config.Extractor, logger)
	if err != nil {
		return nil, err
	}

	opts := parser.Options{
		Headers:   config.Sections,
		Extractor: extractor,
		Timeout:   config.ParseTimeout,
		Logger:    logger,
	}
	if path := strings.TrimSpace(config.Skills.VocabularyFile); path != "" {
		opts.Vocabulary = skills.FileVocabulary{Path: path}
	}

	return parser.New(opts)
}

func newExtractor(ctx context.Context, cfg *ExtractorConfig, logger *zap.Logger) (entities.Extractor, error) {
	switch cfg.Provider {
	case "", providerNone:
		return entities.Nop{}, nil
	case providerDictionary:
		terms := make(map[resume.Label][]string, len(cfg.Dictionary))
		for name, values := range cfg.Dictionary {
			label, ok := resume.ParseLabel(name)
			if !ok {
				return nil, resume.NewConfigError("extractor", fmt.Sprintf("unknown dictionary label %q", name))
			}
			terms[label] = append(terms[label], values...)
		}
		return entities.NewDictionary(terms), nil
	case providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   []string{"GEMINI_API_KEY"},
		})
		if err != nil {
			return nil, err
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini: %w", err)
		}
		return gemini.NewExtractor(generator, cfg.Gemini.MaxLogLength, logger), nil
	default:
		return nil, resume.NewConfigError("extractor", fmt.Sprintf("unsupported provider %q", cfg.Provider))
	}
}

// readResume loads a plain-text resume and normalizes it. "-" reads stdin.
func readResume(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading resume %q: %w", path, err)
	}
	return resume.NormalizeText(string(data)), nil
}
