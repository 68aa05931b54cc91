package config

import "errors"

// Validation errors returned by Config.Validate and by the transports
// before invoking the core.
//
// Design decision: package-level sentinel errors rather than fresh error
// instances so callers can branch with errors.Is while still getting a
// human-readable message.
var (
	// ErrEmptySeedURL is returned when no seed URL is supplied or one of
	// the supplied seeds is the empty string.
	ErrEmptySeedURL = errors.New("empty seed URL: provide at least one URL to crawl")

	// ErrInvalidMaxPages is returned when the page budget is outside
	// [MinPages, MaxPagesLimit]. The crawl engine also clamps defensively,
	// but callers should reject bad values up front.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be between 1 and 50")

	// ErrEmptyPrompt is returned when a query is attempted with an empty
	// or whitespace-only prompt.
	ErrEmptyPrompt = errors.New("empty prompt: provide a non-empty query")

	// ErrInvalidTimeout is returned when the per-request timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the politeness delay is
	// negative. Use 0 for no delay.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is
	// negative. Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch concurrency is not
	// positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
