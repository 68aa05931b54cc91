// Package crawler provides bounded breadth-first crawling of a single
// site: fetch a page, extract its visible text and link graph, and follow
// only links that stay on the seed URL's host.
//
// # Components
//
//   - Fetcher: single-attempt, timeout-bounded HTTP GET with a content
//     type gate (HTML only, with a ".html" suffix escape hatch)
//   - ParsePage: single-pass token-level extraction of text lines and
//     absolute links, tolerant of malformed markup
//   - Spider: the breadth-first traversal, page budget, dedup, and
//     politeness delay
//
// # Traversal invariants
//
//   - the frontier and visited set live only for one Crawl call
//   - the visited set uses exact URL string equality, no normalization
//   - off-host links are recorded on pages but never enqueued
//   - a failed fetch removes the URL and its undiscovered children from
//     the crawl without failing it
//   - traversal is strictly sequential; the politeness delay after each
//     successful fetch bounds the request rate
//
// # Usage
//
//	fetcher := crawler.NewFetcher(httpClient)
//	spider := crawler.NewSpider(fetcher, crawler.WithMaxPages(12))
//	pages, err := spider.Crawl(ctx, "https://example.com/")
package crawler
