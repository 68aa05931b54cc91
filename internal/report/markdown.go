package report

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sitequery/sitequery/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// titleCaser renders status words ("complete", "timed out") as titles.
	titleCaser cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titleCaser: cases.Title(language.English),
	}
}

// Write outputs the full query report in Markdown format.
func (w *MarkdownWriter) Write(report *model.QueryReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAnswer(md, report)
	w.writePages(md, report.SiteMap())
	w.writeLinkChart(md, report.SiteMap())
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSiteMap outputs the site map in Markdown format.
func (w *MarkdownWriter) WriteSiteMap(siteMap *model.SiteMap) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Site Map")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + siteMap.Base + "`"},
			{"Pages Crawled", strconv.Itoa(len(siteMap.Pages))},
		},
	})
	md.PlainText("")

	w.writePages(md, siteMap)
	w.writeLinkChart(md, siteMap)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.QueryReport) {
	md.H1("Site Query Report")
	md.PlainText("")

	pagesCrawled := report.PagesCrawled
	if pagesCrawled == 0 {
		pagesCrawled = len(report.Pages)
	}

	rows := [][]string{
		{"Seed", "`" + report.Seed + "`"},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
		{"Pages Crawled", strconv.Itoa(pagesCrawled)},
		{"Status", w.statusText(report)},
	}
	if report.Prompt != "" {
		rows = append(rows, []string{"Prompt", report.Prompt})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *model.QueryReport) string {
	switch {
	case report.TimedOut:
		return "⚠️ " + w.titleCaser.String("timed out") + " (partial results)"
	case report.Error != nil:
		return "❌ Error - " + report.Error.Error()
	case report.ErrorMessage != "":
		return "❌ Error - " + report.ErrorMessage
	default:
		return "✅ " + w.titleCaser.String("complete")
	}
}

// writeAnswer writes the heuristic answer section.
func (w *MarkdownWriter) writeAnswer(md *markdown.Markdown, report *model.QueryReport) {
	if report.Prompt == "" {
		return
	}

	md.H2("Answer")
	md.PlainText("")
	if report.Answer == "" {
		md.Note("No answer was produced for this prompt.")
		md.PlainText("")
		return
	}
	md.CodeBlocks(markdown.SyntaxHighlightText, report.Answer)
	md.PlainText("")
}

// writePages writes the crawled pages table with per-page link counts.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, siteMap *model.SiteMap) {
	md.H2("Crawled Pages")
	md.PlainText("")

	if len(siteMap.Pages) == 0 {
		md.PlainText("No pages were crawled.")
		md.PlainText("")
		return
	}

	host := seedHost(siteMap.Base)
	rows := make([][]string, len(siteMap.Pages))
	for i, p := range siteMap.Pages {
		internal, external := splitLinks(p, host)
		rows[i] = []string{
			strconv.Itoa(i + 1),
			"`" + truncateString(p.URL, 60) + "`",
			strconv.Itoa(internal),
			strconv.Itoa(external),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Internal Links", "External Links"},
		Rows:   rows,
	})
	md.PlainText("")

	// Full link lists are collapsed so big crawls stay readable.
	for _, p := range siteMap.Pages {
		if len(p.Links) == 0 {
			continue
		}
		md.Details(p.URL, linkList(p))
	}
	md.PlainText("")
}

// writeLinkChart writes a mermaid pie chart of the link distribution.
func (w *MarkdownWriter) writeLinkChart(md *markdown.Markdown, siteMap *model.SiteMap) {
	host := seedHost(siteMap.Base)
	var internal, external int
	for _, p := range siteMap.Pages {
		i, e := splitLinks(p, host)
		internal += i
		external += e
	}
	if internal == 0 && external == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Distribution"),
		piechart.WithShowData(true),
	)
	if internal > 0 {
		chart.LabelAndIntValue("Same host", uint64(internal))
	}
	if external > 0 {
		chart.LabelAndIntValue("External", uint64(external))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitequery](https://github.com/sitequery/sitequery)*")
}

// seedHost extracts the host component from the seed URL.
// Returns an empty string for unparseable seeds.
func seedHost(seed string) string {
	u, err := url.Parse(seed)
	if err != nil {
		return ""
	}
	return u.Host
}

// splitLinks counts a page's links by whether they stay on the seed host.
func splitLinks(p *model.Page, host string) (internal, external int) {
	for _, l := range p.Links {
		u, err := url.Parse(l.Href)
		if err == nil && host != "" && u.Host == host {
			internal++
			continue
		}
		external++
	}
	return internal, external
}

// linkList renders a page's links as one line per link.
func linkList(p *model.Page) string {
	s := ""
	for _, l := range p.Links {
		text := l.Text
		if text == "" {
			text = "-"
		}
		s += fmt.Sprintf("- %s (%s)\n", l.Href, text)
	}
	return s
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
