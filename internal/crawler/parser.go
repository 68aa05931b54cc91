package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/sitequery/sitequery/internal/model"
)

// ParsePage extracts visible text and outbound links from raw markup in a
// single streaming pass over the token stream.
//
// Design decision: we use x/net/html's Tokenizer rather than building a
// document tree because:
//  1. One pass is all the answer heuristics need
//  2. The tokenizer degrades gracefully on malformed markup
//  3. Text must be captured as flat chunks in document order anyway
//
// Extraction rules:
//   - character data inside script/style elements is discarded
//   - character data inside an anchor accumulates into that anchor's text,
//     joined with single spaces when the anchor closes
//   - anchors with an absent or empty href produce no link
//   - hrefs are resolved against baseURL with standard relative resolution
//   - every non-whitespace chunk of character data (anchors included)
//     becomes one trimmed text line, in document order
//
// ParsePage never fails: malformed markup yields whatever was extracted
// before the tokenizer stopped, worst case nothing.
func ParsePage(baseURL, markup string) ([]string, []model.Link) {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var (
		text  []string
		links []model.Link

		inScriptStyle bool
		inAnchor      bool
		anchorHref    string
		anchorChunks  []string
	)

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way, done.
			return text, links

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "script", "style":
				inScriptStyle = true
			case "a":
				inAnchor = true
				anchorHref = ""
				anchorChunks = anchorChunks[:0]
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "href" {
						anchorHref = string(val)
					}
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				inScriptStyle = false
			case "a":
				if inAnchor && anchorHref != "" {
					if resolved := resolveHref(base, anchorHref); resolved != "" {
						links = append(links, model.Link{
							Href: resolved,
							Text: joinChunks(anchorChunks),
						})
					}
				}
				inAnchor = false
				anchorHref = ""
				anchorChunks = anchorChunks[:0]
			}

		case html.TextToken:
			if inScriptStyle {
				continue
			}
			data := string(z.Text())
			if inAnchor {
				anchorChunks = append(anchorChunks, data)
			}
			if trimmed := strings.TrimSpace(data); trimmed != "" {
				text = append(text, trimmed)
			}
		}
	}
}

// joinChunks joins the trimmed non-empty chunks of anchor character data
// with single spaces.
func joinChunks(chunks []string) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if t := strings.TrimSpace(c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// resolveHref resolves href against base. Unparseable hrefs are dropped;
// with no usable base the href is kept only if already absolute.
func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}
