package model

import "time"

// QueryReport accumulates the result of one crawl-and-answer run.
// Pipeline steps fill it in sequence: the crawl step populates Pages,
// the answer step populates Answer, and the save step persists it.
type QueryReport struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// Prompt is the natural-language query, empty for pure site-map runs.
	Prompt string `json:"prompt,omitempty"`

	// Pages are the crawled pages in breadth-first discovery order.
	Pages []*Page `json:"pages,omitempty"`

	// Answer is the heuristic answer text produced from Pages and Prompt.
	Answer string `json:"answer,omitempty"`

	// PagesCrawled is len(Pages), stored separately so it survives
	// serializations that drop the page list.
	PagesCrawled int `json:"pages_crawled"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total crawl plus answer duration.
	Elapsed time.Duration `json:"elapsed"`

	// TimedOut records whether the run was cut short by context
	// cancellation. Pages collected before the cutoff are kept.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error holds the first fatal error encountered, if any.
	// Fetch failures for individual URLs are not fatal and never land here.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewQueryReport creates an empty report for the given seed and prompt.
func NewQueryReport(seed, prompt string) *QueryReport {
	return &QueryReport{
		Seed:      seed,
		Prompt:    prompt,
		StartedAt: time.Now(),
	}
}

// SiteMap returns the report's pages wrapped in the serializable
// site-map envelope.
func (r *QueryReport) SiteMap() *SiteMap {
	return NewSiteMap(r.Seed, r.Pages)
}
