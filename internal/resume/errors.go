package resume

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionTimeout is reported when a parse is cancelled or runs past its deadline.
	ErrExtractionTimeout = errors.New("extraction timeout")
	// ErrResourceUnavailable is reported when a required resource (skill vocabulary) cannot be loaded.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrInvalidConfig is reported for configuration errors such as ambiguous header aliases.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMalformedCorpus is reported when a job corpus entry fails to parse.
	ErrMalformedCorpus = errors.New("malformed job corpus")
	// ErrExtractorFailed is reported when the entity extractor returns an error.
	ErrExtractorFailed = errors.New("entity extraction failed")
)

// Error carries the failed operation next to one of the sentinel kinds above.
type Error struct {
	Op     string
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewTimeoutError wraps a context error as an extraction timeout.
func NewTimeoutError(op string, err error) error {
	return &Error{Op: op, Kind: ErrExtractionTimeout, Err: err}
}

// NewResourceError reports that the named resource could not be loaded.
func NewResourceError(op, resource string, err error) error {
	return &Error{Op: op, Kind: ErrResourceUnavailable, Detail: resource, Err: err}
}

// NewConfigError reports a configuration problem.
func NewConfigError(op, detail string) error {
	return &Error{Op: op, Kind: ErrInvalidConfig, Detail: detail}
}

// NewCorpusError reports a job corpus entry that could not be decoded.
func NewCorpusError(op, detail string, err error) error {
	return &Error{Op: op, Kind: ErrMalformedCorpus, Detail: detail, Err: err}
}
