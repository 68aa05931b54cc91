package answer

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sitequery/sitequery/internal/model"
)

const (
	// maxPublications bounds the numbered publication list.
	maxPublications = 20
	// maxSummaryPages bounds the generic fallback summary.
	maxSummaryPages = 8
	// snippetLength is the per-page snippet size in the fallback summary.
	snippetLength = 200
)

// yearRE matches a plausible publication year (1900-2099) on word boundaries.
var yearRE = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// handlerFunc produces an answer from the crawled pages. The prompt passed
// in is already lowercased and trimmed.
type handlerFunc func(pages []*model.Page, prompt string) string

// rule pairs a prompt predicate with the handler that answers it.
type rule struct {
	name    string
	matches func(prompt string) bool
	answer  handlerFunc
}

// Engine answers free-form prompts about a set of crawled pages using an
// ordered rule table. Rules are evaluated top to bottom and the first
// matching rule wins; the final rule matches everything, so Answer always
// produces a result.
type Engine struct {
	rules  []rule
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger used to trace rule dispatch.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an answer engine with the built-in rule table:
// Google Scholar link discovery, heuristic publication extraction, and a
// generic page-summary fallback.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.Default(),
	}
	e.rules = []rule{
		{
			name: "scholar",
			matches: func(p string) bool {
				return strings.Contains(p, "scholar")
			},
			answer: answerScholar,
		},
		{
			name: "publications",
			matches: func(p string) bool {
				return strings.Contains(p, "publication") ||
					strings.Contains(p, "paper") ||
					strings.Contains(p, "article")
			},
			answer: answerPublications,
		},
		{
			name: "fallback",
			matches: func(string) bool {
				return true
			},
			answer: answerSummaries,
		},
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer routes the prompt through the rule table and returns the first
// matching rule's answer. Routing is case-insensitive and ignores leading
// and trailing whitespace.
func (e *Engine) Answer(pages []*model.Page, prompt string) string {
	p := strings.ToLower(strings.TrimSpace(prompt))
	for _, r := range e.rules {
		if r.matches(p) {
			e.logger.Debug("answering prompt", "rule", r.name, "pages", len(pages))
			return r.answer(pages, p)
		}
	}
	// Unreachable: the fallback rule matches every prompt.
	return ""
}

// scholarLink is one discovered Google Scholar (or scholar-adjacent) link.
type scholarLink struct {
	source string
	href   string
	text   string
}

// findScholarLink scans the link graph for a Google Scholar profile link.
// The primary pass matches "scholar.google" in the href or "google scholar"
// in the anchor text; a weaker second pass accepts any anchor whose text
// mentions "scholar".
func findScholarLink(pages []*model.Page) (scholarLink, bool) {
	for _, page := range pages {
		for _, l := range page.Links {
			if strings.Contains(strings.ToLower(l.Href), "scholar.google") ||
				strings.Contains(strings.ToLower(l.Text), "google scholar") {
				text := l.Text
				if text == "" {
					text = "Google Scholar"
				}
				return scholarLink{source: page.URL, href: l.Href, text: text}, true
			}
		}
	}
	for _, page := range pages {
		for _, l := range page.Links {
			if strings.Contains(strings.ToLower(l.Text), "scholar") {
				return scholarLink{source: page.URL, href: l.Href, text: l.Text}, true
			}
		}
	}
	return scholarLink{}, false
}

func answerScholar(pages []*model.Page, _ string) string {
	link, ok := findScholarLink(pages)
	if !ok {
		return "No Google Scholar link found within crawled pages."
	}
	return fmt.Sprintf(
		"Google Scholar link found:\n- Link: %s\n- Anchor Text: %s\n- Found on: %s",
		link.href, link.text, link.source,
	)
}

// publication is one citation-like line and the page it came from.
type publication struct {
	source string
	line   string
}

// extractPublications collects citation-like lines from the page texts.
// A line qualifies when it contains a year and at least two punctuation
// marks from ",.;:" (authors and titles are punctuation-heavy). Pages that
// mention "publication" anywhere are treated as publication lists, so every
// year-bearing line on them is also collected. Duplicates are removed by
// exact line text, keeping the first occurrence.
func extractPublications(pages []*model.Page) []publication {
	var results []publication
	for _, page := range pages {
		lines := pageLines(page)
		for _, ln := range lines {
			if yearRE.MatchString(ln) && countPunctuation(ln) >= 2 {
				results = append(results, publication{source: page.URL, line: ln})
			}
		}
		if mentionsPublications(lines) {
			for _, ln := range lines {
				if yearRE.MatchString(ln) {
					results = append(results, publication{source: page.URL, line: ln})
				}
			}
		}
	}

	seen := make(map[string]bool, len(results))
	deduped := make([]publication, 0, len(results))
	for _, pub := range results {
		if seen[pub.line] {
			continue
		}
		seen[pub.line] = true
		deduped = append(deduped, pub)
	}
	return deduped
}

// pageLines splits the page's text chunks into individual physical lines.
// Markup can put a newline inside one text node, and the heuristics judge
// each line on its own: a qualifying citation must not drag neighboring
// prose into the publication entry.
func pageLines(page *model.Page) []string {
	var lines []string
	for _, chunk := range page.Text {
		for _, ln := range strings.Split(chunk, "\n") {
			ln = strings.TrimSpace(ln)
			if ln != "" {
				lines = append(lines, ln)
			}
		}
	}
	return lines
}

func mentionsPublications(lines []string) bool {
	for _, ln := range lines {
		if strings.Contains(strings.ToLower(ln), "publication") {
			return true
		}
	}
	return false
}

func countPunctuation(s string) int {
	n := 0
	for _, c := range s {
		switch c {
		case ',', '.', ';', ':':
			n++
		}
	}
	return n
}

func answerPublications(pages []*model.Page, _ string) string {
	pubs := extractPublications(pages)
	if len(pubs) == 0 {
		return "No publications detected via heuristics."
	}

	var b strings.Builder
	b.WriteString("Publications (heuristic extraction):")
	limit := min(len(pubs), maxPublications)
	for i, pub := range pubs[:limit] {
		fmt.Fprintf(&b, "\n%d. %s\n   Source: %s", i+1, pub.line, pub.source)
	}
	if len(pubs) > maxPublications {
		fmt.Fprintf(&b, "\n(+%d more omitted)", len(pubs)-maxPublications)
	}
	return b.String()
}

func answerSummaries(pages []*model.Page, _ string) string {
	var b strings.Builder
	b.WriteString("Query not recognized; returning crawled page summaries:")
	for _, page := range pages[:min(len(pages), maxSummaryPages)] {
		fmt.Fprintf(&b, "\n- %s: %s...", page.URL, page.Snippet(snippetLength))
	}
	return b.String()
}
