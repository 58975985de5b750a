// Package engine owns the run pipeline: fetch all sources, diff against the
// persisted seen-set, notify once for the union of new postings, then commit.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"internwatch/internal/digest"
	"internwatch/internal/model"
)

// Source pairs an adapter with its freshness predicate. The predicate is
// configured per source, never hardcoded per source identity.
type Source struct {
	Adapter model.SourceAdapter
	Fresh   model.FreshnessFilter
}

// Engine runs one watch cycle over a fixed set of sources.
type Engine struct {
	sources    []Source
	store      model.StateStore
	notifier   model.Notifier
	displayCap int
	dryRun     bool
	logger     *slog.Logger
}

// New creates an engine wired with all its dependencies. With dryRun set,
// bootstrap priming is disabled and nothing is ever committed.
func New(
	sources []Source,
	store model.StateStore,
	notifier model.Notifier,
	displayCap int,
	dryRun bool,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		sources:    sources,
		store:      store,
		notifier:   notifier,
		displayCap: displayCap,
		dryRun:     dryRun,
		logger:     logger,
	}
}

type fetchResult struct {
	postings []model.Posting
	err      error
}

// Run executes one cycle: fetch and parse every source, compute the new-item
// delta, send one grouped notification, and commit the updated seen-set only
// after the notification succeeded.
//
// With an empty seen-set the run bootstraps instead: every fetched posting is
// recorded silently so the first invocation against a populated source does
// not announce its entire history.
func (e *Engine) Run(ctx context.Context) error {
	seen, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	bootstrap := len(seen) == 0 && !e.dryRun

	// Fetches are independent and parsing is pure, so sources run in
	// parallel. A failed source is isolated: it contributes zero candidates
	// and must not abort the run, so errors stay in the result slot.
	results := make([]fetchResult, len(e.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range e.sources {
		i, src := i, src
		g.Go(func() error {
			postings, err := src.Adapter.FetchAndParse(gctx)
			results[i] = fetchResult{postings: postings, err: err}
			return nil
		})
	}
	g.Wait()

	var sections []digest.Section
	totalNew := 0
	for i, src := range e.sources {
		name := src.Adapter.Name()
		res := results[i]
		if res.err != nil {
			e.logger.Warn("source failed, treating as zero postings", "source", name, "error", res.err)
			e.logger.Info("source summary", "source", name, "parsed", 0, "new", 0)
			continue
		}

		var fresh []model.Posting
		for _, p := range res.postings {
			if seen[p.ID] {
				continue
			}
			if bootstrap {
				// Prime silently; freshness does not apply, so stale
				// postings can never resurface as "new" later.
				seen[p.ID] = true
				continue
			}
			if src.Fresh != nil && !src.Fresh.Fresh(p) {
				continue
			}
			fresh = append(fresh, p)
		}

		e.logger.Info("source summary", "source", name, "parsed", len(res.postings), "new", len(fresh))
		if len(fresh) > 0 {
			sections = append(sections, digest.Section{Source: name, Postings: fresh})
			totalNew += len(fresh)
		}
	}

	if bootstrap {
		if len(seen) == 0 {
			e.logger.Info("bootstrap: no postings fetched, nothing to prime")
			return nil
		}
		if err := e.store.Commit(seen); err != nil {
			return fmt.Errorf("committing bootstrap state: %w", err)
		}
		e.logger.Info("bootstrap: primed state silently", "postings", len(seen))
		return nil
	}

	// Nothing changed: exact no-op, no notify and no commit.
	if totalNew == 0 {
		e.logger.Info("nothing new")
		return nil
	}

	msg := digest.Build(sections, e.displayCap)
	if err := e.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("notifying: %w", err)
	}

	if e.dryRun {
		e.logger.Info("dry run: state not committed", "new", totalNew)
		return nil
	}

	// Mark ALL new postings seen, not only the ones the digest displayed,
	// so display truncation cannot cause re-notification.
	for _, sec := range sections {
		for _, p := range sec.Postings {
			seen[p.ID] = true
		}
	}
	if err := e.store.Commit(seen); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}

	e.logger.Info("run complete", "new", totalNew, "seen_total", len(seen))
	return nil
}
