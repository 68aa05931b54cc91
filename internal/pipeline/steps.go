package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sitequery/sitequery/internal/answer"
	"github.com/sitequery/sitequery/internal/config"
	"github.com/sitequery/sitequery/internal/crawler"
	"github.com/sitequery/sitequery/internal/database"
	"github.com/sitequery/sitequery/internal/model"
)

// CrawlStep performs the bounded breadth-first crawl of the seed's host.
// It populates the report with the fetched pages and their link graphs.
//
// Design decision: Crawling is its own step because:
// 1. It has its own configuration (page budget, politeness delay)
// 2. Later steps consume its output without needing HTTP access
// 3. Crawl-only runs simply build a pipeline with nothing after it
type CrawlStep struct {
	// client is the HTTP client used for page fetches.
	client *http.Client

	// maxPages bounds the number of pages fetched.
	maxPages int

	// delay is the politeness pause after each successful fetch.
	delay time.Duration

	// userAgent identifies the crawler to servers.
	userAgent string

	// headers are extra request headers, e.g. from per-host config.
	headers map[string]string

	// maxBodySize limits the response body size.
	maxBodySize int64

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxPages sets the page budget for the crawl.
func WithCrawlMaxPages(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = n
	}
}

// WithCrawlDelay sets the politeness delay between successful fetches.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlUserAgent sets the User-Agent header for page fetches.
func WithCrawlUserAgent(ua string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.userAgent = ua
	}
}

// WithCrawlHeaders sets extra request headers for page fetches.
func WithCrawlHeaders(headers map[string]string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.headers = headers
	}
}

// WithCrawlMaxBodySize sets the maximum body size for page fetches.
func WithCrawlMaxBodySize(size int64) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxBodySize = size
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step using the given HTTP client.
func NewCrawlStep(client *http.Client, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		client:      client,
		maxPages:    config.DefaultMaxPages,
		delay:       config.DefaultCrawlDelay,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
// A crawl cut short by the context keeps its partial pages and marks the
// report as timed out instead of failing the pipeline.
func (s *CrawlStep) Do(ctx context.Context, report *model.QueryReport) error {
	fetcher := crawler.NewFetcher(
		s.client,
		crawler.WithUserAgent(s.userAgent),
		crawler.WithHeaders(s.headers),
		crawler.WithMaxBodySize(s.maxBodySize),
		crawler.WithFetcherLogger(s.logger),
	)
	spider := crawler.NewSpider(
		fetcher,
		crawler.WithMaxPages(s.maxPages),
		crawler.WithDelay(s.delay),
		crawler.WithSpiderLogger(s.logger),
	)

	pages, err := spider.Crawl(ctx, report.Seed)
	report.Pages = pages
	report.PagesCrawled = len(pages)
	report.Elapsed = time.Since(report.StartedAt)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			report.TimedOut = true
			s.logger.Warn("crawl cut short",
				"seed", report.Seed,
				"pages", len(pages),
			)
			return nil
		}
		return err
	}

	return nil
}

// AnswerStep runs the heuristic answer engine over the crawled pages.
// It is a no-op for crawl-only reports that carry no prompt.
type AnswerStep struct {
	// engine produces the answer text.
	engine *answer.Engine

	// logger for structured logging.
	logger *slog.Logger
}

// AnswerStepOption configures an AnswerStep.
type AnswerStepOption func(*AnswerStep)

// WithAnswerLogger sets a custom logger for the answer step.
func WithAnswerLogger(logger *slog.Logger) AnswerStepOption {
	return func(s *AnswerStep) {
		s.logger = logger
	}
}

// NewAnswerStep creates a new answer step.
func NewAnswerStep(opts ...AnswerStepOption) *AnswerStep {
	s := &AnswerStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.engine = answer.NewEngine(answer.WithEngineLogger(s.logger))
	return s
}

// Name returns the step name.
func (s *AnswerStep) Name() string {
	return "answer"
}

// Do executes the answer step.
func (s *AnswerStep) Do(_ context.Context, report *model.QueryReport) error {
	if report.Prompt == "" {
		s.logger.Debug("no prompt, skipping answer", "seed", report.Seed)
		return nil
	}

	report.Answer = s.engine.Answer(report.Pages, report.Prompt)
	report.Elapsed = time.Since(report.StartedAt)
	return nil
}

// SaveStep persists the completed report in the history database.
//
// Design decision: Persistence is the last step and never blocks the
// answer: a failed save is logged and recorded but the pipeline can be
// configured to continue, since the user already has the result in hand.
type SaveStep struct {
	// db is the history database.
	db *database.HistoryDB

	// logger for structured logging.
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a new save step backed by the given database.
func NewSaveStep(db *database.HistoryDB, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, report *model.QueryReport) error {
	id, err := s.db.SaveQueryReport(ctx, report)
	if err != nil {
		return err
	}

	s.logger.Debug("report saved",
		"seed", report.Seed,
		"id", id,
	)
	return nil
}
