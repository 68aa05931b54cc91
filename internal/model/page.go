package model

import "strings"

// Page represents a single crawled web page: its URL, the visible text
// extracted from its markup, and every outbound link discovered on it.
// A Page is built once by the crawl engine and never mutated afterwards.
//
// Design decision: We keep both the text lines and the link graph because:
// 1. The answer engine classifies citation-like lines from the text
// 2. Link discovery (e.g., Google Scholar) works on the link graph
// 3. The site-map serialization only needs URL + links
type Page struct {
	// URL is the absolute URL this page was fetched from.
	URL string `json:"url"`

	// Text holds the visible character data of the page, one entry per
	// contiguous non-empty chunk in document order, each whitespace-trimmed.
	// Excluded from JSON: the site-map serialization exposes only the URL
	// and link graph, the text is consumed internally by the answer engine.
	Text []string `json:"-"`

	// Links contains every anchor discovered on the page, in document
	// order. Hrefs are always absolute (resolved against the page URL).
	// Off-host links are recorded here even though they are never crawled.
	Links []Link `json:"links"`
}

// Link is a single outbound anchor: its resolved absolute href and the
// anchor's joined text content.
type Link struct {
	// Href is the absolute link target.
	Href string `json:"href"`

	// Text is the anchor text with inner whitespace chunks joined by
	// single spaces. May be empty.
	Text string `json:"text"`
}

// SiteMap is the serializable result of one crawl: the seed URL and the
// pages in breadth-first discovery order.
type SiteMap struct {
	// Base is the seed URL the crawl started from.
	Base string `json:"base"`

	// Pages are the successfully fetched pages in crawl order.
	Pages []*Page `json:"pages"`
}

// NewSiteMap builds a SiteMap from a crawl result.
func NewSiteMap(base string, pages []*Page) *SiteMap {
	return &SiteMap{Base: base, Pages: pages}
}

// JoinedText returns the page text as a single newline-joined string.
// Useful for display and for storing a text snapshot.
func (p *Page) JoinedText() string {
	return strings.Join(p.Text, "\n")
}

// Snippet returns the first n characters of the page text with all
// whitespace collapsed to single spaces. Used by the generic answer
// fallback to summarize a page in one line. Truncation counts runes,
// not bytes, so multi-byte text is never cut mid-character.
func (p *Page) Snippet(n int) string {
	collapsed := strings.Join(strings.Fields(strings.Join(p.Text, " ")), " ")
	runes := []rune(collapsed)
	if len(runes) > n {
		return string(runes[:n])
	}
	return collapsed
}
