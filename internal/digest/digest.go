// Package digest formats the grouped notification message for one run.
// It is pure formatting: truncation here never affects what gets committed
// to the seen state.
package digest

import (
	"fmt"
	"strings"

	"internwatch/internal/model"
)

// Section holds the new postings of one source, in fetch order.
type Section struct {
	Source   string
	Postings []model.Posting
}

// Build renders one plain-text message: a header line, then one labeled
// section per source. At most limit postings are rendered per source; the rest
// are summarized in a trailing count so the message stays bounded.
func Build(sections []Section, limit int) string {
	var b strings.Builder
	b.WriteString("🆕 New internship postings:")

	for _, sec := range sections {
		if len(sec.Postings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\n%s (%d new):", sec.Source, len(sec.Postings))

		shown := sec.Postings
		if limit > 0 && len(shown) > limit {
			shown = shown[:limit]
		}
		for _, p := range shown {
			fmt.Fprintf(&b, "\n- %s\n  %s", p.Title, p.Link)
		}
		if hidden := len(sec.Postings) - len(shown); hidden > 0 {
			fmt.Fprintf(&b, "\n… and %d more", hidden)
		}
	}

	return b.String()
}
