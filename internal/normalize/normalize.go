// Package normalize holds the named extraction rules that turn raw adapter
// text into canonical posting fields. Every rule is deterministic: the same
// input always yields byte-identical output, which the dedup ids depend on.
package normalize

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Textual month-day-year token, e.g. "Sep 19, 2025" or "September 9 2025".
	dateTokenRe = regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`)

	// HTML anchor with an href attribute; group 1 is the target, group 2 the label.
	htmlAnchorRe = regexp.MustCompile(`(?is)<a\s[^>]*href\s*=\s*["']([^"']+)["'][^>]*>(.*?)</a>`)

	// Markdown link; group 1 is the label, group 2 the target.
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)

	// Bare URL inside arbitrary cell text.
	bareURLRe = regexp.MustCompile(`https?://[^\s|<>"')\]]+`)

	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
)

// CleanText collapses all whitespace runs (including NBSP) to single spaces
// and trims the ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ExtractDate finds the first textual month-day-year token in a title and
// returns the title with the token removed, plus the token itself. The token
// is empty when no date is present; that is not an error.
func ExtractDate(title string) (body, token string) {
	loc := dateTokenRe.FindStringIndex(title)
	if loc == nil {
		return CleanText(title), ""
	}
	token = CleanText(title[loc[0]:loc[1]])
	body = CleanText(title[:loc[0]] + " " + title[loc[1]:])
	return body, token
}

// StripLink reduces a table cell to its human-readable label: markdown links
// are replaced by their label, HTML is unescaped and stripped of tags, and
// whitespace is collapsed.
func StripLink(cell string) string {
	cell = markdownLinkRe.ReplaceAllString(cell, "$1")
	cell = html.UnescapeString(cell)
	cell = htmlTagRe.ReplaceAllString(cell, " ")
	return CleanText(cell)
}

// CellURL resolves the URL carried by a table cell, checking in order: an
// HTML anchor href, a markdown link target, then a bare URL. Returns the
// empty string when the cell carries no usable link.
func CellURL(cell string) string {
	if m := htmlAnchorRe.FindStringSubmatch(cell); m != nil {
		return strings.TrimSpace(html.UnescapeString(m[1]))
	}
	if m := markdownLinkRe.FindStringSubmatch(cell); m != nil {
		return strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(bareURLRe.FindString(cell))
}

// ResolveURL makes an href absolute against the source's known origin.
// Absolute http(s) hrefs pass through, root-relative hrefs are joined to the
// origin, and anything else (mailto:, javascript:, fragments) resolves to "".
func ResolveURL(origin, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return strings.TrimSuffix(origin, "/") + href
	default:
		return ""
	}
}

// PostingID composes the canonical posting id: the source name, a colon, and
// the natural key parts joined with "|". Namespacing by source guarantees two
// sources can never collide.
func PostingID(source string, keyParts ...string) string {
	return source + ":" + strings.Join(keyParts, "|")
}
