package model

import "context"

// Posting is the canonical representation of a single listing from any source.
type Posting struct {
	ID       string // "<source>:<natural-key>", deterministic for identical raw input
	Title    string // display text, whitespace-normalized
	Link     string // absolute URL
	Source   string // source name from config
	Company  string // table source only
	Role     string // table source only
	Location string // table source only
	Age      string // raw age bucket, e.g. "2d" (table source only)
	Posted   string // date token found in the raw title (html source only)
}

// SourceAdapter turns one source's raw document into canonical postings.
// Implementations own their fetch, structural filtering, and normalization;
// the pipeline never branches on the concrete source shape.
type SourceAdapter interface {
	Name() string
	FetchAndParse(ctx context.Context) ([]Posting, error)
}

// StateStore persists the set of posting ids already seen.
// Load is called once at run start; Commit replaces the durable set in full
// and must be atomic from the caller's perspective.
type StateStore interface {
	Load() (map[string]bool, error)
	Commit(ids map[string]bool) error
	Close() error
}

// Notifier delivers one formatted message. Failures must propagate so the
// caller can skip the state commit.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// FreshnessFilter decides whether a posting is recent enough to announce.
type FreshnessFilter interface {
	Fresh(p Posting) bool
}
