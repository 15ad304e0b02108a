// Package parser turns normalized resume text into a scored profile.
package parser

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/contact"
	"github.com/spigell/resume-ats/internal/entities"
	"github.com/spigell/resume-ats/internal/experience"
	"github.com/spigell/resume-ats/internal/resume"
	"github.com/spigell/resume-ats/internal/scoring"
	"github.com/spigell/resume-ats/internal/sections"
	"github.com/spigell/resume-ats/internal/skills"
)

// DefaultTimeout bounds a single Parse call when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Options configures a Parser. Every field is optional.
type Options struct {
	// Headers maps canonical sections to header aliases. Defaults to sections.DefaultHeaders.
	Headers map[string][]string
	// Extractor supplies entity spans. Defaults to entities.Nop.
	Extractor entities.Extractor
	// Vocabulary is only read when the extractor finds no skills.
	Vocabulary skills.Vocabulary
	Chunker    skills.Chunker
	// Clock is the reference time for open-ended date ranges.
	Clock   experience.Clock
	Weights scoring.Weights
	// Timeout bounds each Parse call. Negative disables the bound.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Parser is immutable after New and safe for concurrent use as long as its
// extractor, vocabulary and chunker are.
type Parser struct {
	segmenter  *sections.Segmenter
	extractor  entities.Extractor
	resolver   *skills.Resolver
	aggregator *experience.Aggregator
	weights    scoring.Weights
	timeout    time.Duration
	logger     *zap.Logger
}

func New(opts Options) (*Parser, error) {
	headers := opts.Headers
	if len(headers) == 0 {
		headers = sections.DefaultHeaders()
	}

	segmenter, err := sections.New(headers)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = entities.Nop{}
	}

	weights := opts.Weights
	if weights == (scoring.Weights{}) {
		weights = scoring.DefaultWeights()
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Parser{
		segmenter:  segmenter,
		extractor:  extractor,
		resolver:   skills.NewResolver(opts.Vocabulary, opts.Chunker, logger),
		aggregator: experience.New(opts.Clock, logger),
		weights:    weights,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Parse extracts a profile from normalized text (see resume.NormalizeText).
//
// Cancellation or the parse deadline yields resume.ErrExtractionTimeout, a failing
// extractor resume.ErrExtractorFailed and a missing skill vocabulary, when it is
// actually needed, resume.ErrResourceUnavailable. Missing contact details, sections
// or date ranges only leave the matching fields empty.
func (p *Parser) Parse(ctx context.Context, text string) (*resume.Profile, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := checkpoint(ctx, "segment"); err != nil {
		return nil, err
	}
	sectionMap := p.segmenter.Segment(text)
	if len(sectionMap) == 0 {
		p.logger.Debug("no section header matched")
	}

	if err := checkpoint(ctx, "contact"); err != nil {
		return nil, err
	}
	details := contact.Extract(text)
	if details.Email == "" {
		p.logger.Debug("no email found")
	}
	if details.Phone == "" {
		p.logger.Debug("no phone found")
	}

	spans, err := p.extractor.Extract(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, resume.NewTimeoutError("extract entities", err)
		}
		return nil, &resume.Error{Op: "extract entities", Kind: resume.ErrExtractorFailed, Err: err}
	}

	profile, err := p.build(ctx, text, sectionMap, details, spans)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("resume parsed",
		zap.Int("sections", len(sectionMap)),
		zap.Int("entities", len(spans)),
		zap.Int("skills", len(profile.Skills)),
		zap.Float64("total_experience", profile.TotalExperienceYears),
		zap.Float64("score", profile.Score),
	)

	return profile, nil
}

func checkpoint(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return resume.NewTimeoutError(op, err)
	}
	return nil
}
