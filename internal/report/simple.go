package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sitequery/sitequery/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showLinks controls whether per-page link lists are printed.
	showLinks bool

	// verbose enables additional detail in the output.
	verbose bool

	// upperCaser renders section banners in upper case.
	upperCaser cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowLinks configures the writer to print every discovered link.
func WithShowLinks(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showLinks = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showLinks:  false,
		verbose:    false,
		upperCaser: cases.Upper(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full query report in human-readable format.
func (w *SimpleWriter) Write(report *model.QueryReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeAnswer(&sb, report)
	w.writePages(&sb, report.SiteMap())
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteSiteMap outputs the site map in human-readable format.
func (w *SimpleWriter) WriteSiteMap(siteMap *model.SiteMap) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(w.center(w.upperCaser.String("site map")))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Seed:          %s\n", siteMap.Base))
	sb.WriteString(fmt.Sprintf("Pages Crawled: %d\n\n", len(siteMap.Pages)))

	w.writePages(&sb, siteMap)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.QueryReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(w.center(w.upperCaser.String("site query report")))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	pagesCrawled := report.PagesCrawled
	if pagesCrawled == 0 {
		pagesCrawled = len(report.Pages)
	}

	sb.WriteString(fmt.Sprintf("Seed:          %s\n", report.Seed))
	if report.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Prompt:        %s\n", report.Prompt))
	}
	sb.WriteString(fmt.Sprintf("Started:       %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:       %s\n", report.Elapsed.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Pages Crawled: %d\n", pagesCrawled))

	switch {
	case report.TimedOut:
		sb.WriteString("Status:        TIMED OUT (partial results)\n")
	case report.Error != nil:
		sb.WriteString(fmt.Sprintf("Status:        ERROR - %s\n", report.Error))
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:        ERROR - %s\n", report.ErrorMessage))
	default:
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeAnswer writes the heuristic answer section.
func (w *SimpleWriter) writeAnswer(sb *strings.Builder, report *model.QueryReport) {
	if report.Prompt == "" {
		return
	}

	w.writeBanner(sb, "answer")
	if report.Answer == "" {
		sb.WriteString("  No answer was produced for this prompt.\n\n")
		return
	}
	for _, line := range strings.Split(report.Answer, "\n") {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writePages writes the crawled pages section.
func (w *SimpleWriter) writePages(sb *strings.Builder, siteMap *model.SiteMap) {
	w.writeBanner(sb, "crawled pages")

	if len(siteMap.Pages) == 0 {
		sb.WriteString("  No pages were crawled\n\n")
		return
	}

	for _, p := range siteMap.Pages {
		sb.WriteString(fmt.Sprintf("  [+] %s (%d links)\n", p.URL, len(p.Links)))
		if !w.showLinks && !w.verbose {
			continue
		}
		for _, l := range p.Links {
			if l.Text != "" {
				sb.WriteString(fmt.Sprintf("      -> %s (%s)\n", l.Href, l.Text))
			} else {
				sb.WriteString(fmt.Sprintf("      -> %s\n", l.Href))
			}
		}
	}
	sb.WriteString("\n")
}

// writeBanner writes a dashed section banner with an upper-cased title.
func (w *SimpleWriter) writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(w.upperCaser.String(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// center centers a banner line within the 70-column header.
func (w *SimpleWriter) center(s string) string {
	pad := (70 - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s + "\n"
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitequery\n")
	sb.WriteString("https://github.com/sitequery/sitequery\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
