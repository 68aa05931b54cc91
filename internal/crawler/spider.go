package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sitequery/sitequery/internal/config"
	"github.com/sitequery/sitequery/internal/model"
)

// Spider crawls one site breadth-first from a seed URL, bounded by a page
// budget and a same-host filter. It composes the Fetcher and the parser
// into an ordered page corpus.
//
// A Spider holds only configuration; all traversal state (frontier,
// visited set) is local to one Crawl call. Independent crawls therefore
// share nothing and may run concurrently, while a single crawl is
// strictly sequential; the sequential walk is what bounds the outbound
// request rate.
type Spider struct {
	// fetcher retrieves page markup.
	fetcher *Fetcher

	// maxPages limits the number of pages collected per crawl.
	// Clamped into [config.MinPages, config.MaxPagesLimit].
	maxPages int

	// delay is the politeness delay after each successful fetch.
	delay time.Duration

	// logger records skipped URLs and crawl progress.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the page budget. Values outside [1, 50] are clamped
// at crawl time.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the politeness delay between successful fetches.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithSpiderLogger sets a custom logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that fetches through the given Fetcher.
func NewSpider(fetcher *Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		maxPages: config.DefaultMaxPages,
		delay:    config.DefaultCrawlDelay,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl walks the site breadth-first from startURL and returns the
// successfully fetched pages in discovery order.
//
// Fetch failures are not errors: the URL is skipped, its out-links are
// never discovered, and the crawl continues. Only an unusable start URL
// or context cancellation produces a non-nil error; on cancellation the
// pages collected so far are returned alongside ctx.Err().
func (s *Spider) Crawl(ctx context.Context, startURL string) ([]*model.Page, error) {
	if strings.TrimSpace(startURL) == "" {
		return nil, config.ErrEmptySeedURL
	}

	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %q: %w", startURL, err)
	}
	if start.Host == "" {
		return nil, fmt.Errorf("start URL %q has no host: %w", startURL, config.ErrEmptySeedURL)
	}

	maxPages := clampMaxPages(s.maxPages)

	// Frontier and visited set are created fresh here and discarded on
	// return: no crawl state survives the call.
	//
	// The visited set is keyed by the exact URL string, deliberately
	// without normalization: trailing-slash, query, and fragment variants
	// count as distinct resources. Collapsing them would merge genuinely
	// different pages on sites that use them meaningfully.
	frontier := []string{startURL}
	visited := make(map[string]bool)
	pages := make([]*model.Page, 0, maxPages)

	for len(frontier) > 0 && len(pages) < maxPages {
		select {
		case <-ctx.Done():
			return pages, ctx.Err()
		default:
		}

		pageURL := frontier[0]
		frontier = frontier[1:]

		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		markup, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			// Skip the URL and everything only reachable through it.
			s.logger.Warn("fetch failed, skipping", "url", pageURL, "error", err)
			continue
		}

		text, links := ParsePage(pageURL, markup)
		pages = append(pages, &model.Page{
			URL:   pageURL,
			Text:  text,
			Links: links,
		})

		// Off-host links stay recorded on the page but are never enqueued.
		for _, link := range links {
			if sameHost(link.Href, start.Host) && !visited[link.Href] {
				frontier = append(frontier, link.Href)
			}
		}

		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return pages, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	return pages, nil
}

// clampMaxPages bounds the page budget into [MinPages, MaxPagesLimit].
func clampMaxPages(n int) int {
	if n < config.MinPages {
		return config.MinPages
	}
	if n > config.MaxPagesLimit {
		return config.MaxPagesLimit
	}
	return n
}

// sameHost reports whether target's network location exactly equals host.
// Comparison is on the host[:port] as given: scheme differences do not
// matter, a differing port does.
func sameHost(target, host string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Host == host
}
