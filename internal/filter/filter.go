package filter

import (
	"strings"

	"internwatch/internal/model"
)

// Ensure AgeFilter implements model.FreshnessFilter.
var _ model.FreshnessFilter = (*AgeFilter)(nil)

// AgeFilter restricts "new" to postings whose age bucket is in a configured
// whitelist (e.g. ["0d", "1d"]). An empty whitelist passes everything,
// including postings that carry no age at all.
type AgeFilter struct {
	allowed map[string]bool
}

// NewAgeFilter returns a freshness filter over the given age buckets.
// Matching is case-insensitive.
func NewAgeFilter(ages []string) *AgeFilter {
	allowed := make(map[string]bool, len(ages))
	for _, a := range ages {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			allowed[a] = true
		}
	}
	return &AgeFilter{allowed: allowed}
}

// Fresh reports whether the posting is recent enough to announce. With a
// non-empty whitelist, a posting with no age bucket is not fresh.
func (f *AgeFilter) Fresh(p model.Posting) bool {
	if len(f.allowed) == 0 {
		return true
	}
	return f.allowed[strings.ToLower(strings.TrimSpace(p.Age))]
}
