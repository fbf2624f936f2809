// Package crawl orchestrates scrape runs: config resolution, adapter
// dispatch, run lifecycle, persistence, and eventing.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/gearlore/gearlore/engine/adapter"
	"github.com/gearlore/gearlore/engine/forum"
	"github.com/gearlore/gearlore/pkg/metrics"
	"github.com/gearlore/gearlore/pkg/natsutil"
)

// ErrSourceInactive means the persisted record has the source switched off.
// Like a missing adapter, this is a configuration error and fails the run
// before any work happens.
var ErrSourceInactive = errors.New("crawl: forum source inactive")

// Store is the persistence surface the orchestrator needs. engine/graph
// satisfies it; tests substitute fakes.
type Store interface {
	GetSource(ctx context.Context, slug string) (forum.ForumSource, error)
	CreateRun(ctx context.Context, run forum.ScrapeRun) error
	StartRun(ctx context.Context, runID string, at time.Time) error
	CompleteRun(ctx context.Context, runID string, found, saved, posts int, at time.Time) error
	FailRun(ctx context.Context, runID, errMsg string, at time.Time) error
	UpsertThread(ctx context.Context, t forum.ScrapedThread) error
	UpdateSourceAfterRun(ctx context.Context, slug string, threadsSaved int, at time.Time) error
}

// Options narrows one scrape invocation.
type Options struct {
	DryRun        bool
	Backfill      bool // re-walk the full configured page depth
	MaxThreads    int
	Subforums     []string
	TargetURLs    []string
	TargetCarSlug string
}

// RunResult is the outcome of one scrape: the run record plus what happened
// to each thread.
type RunResult struct {
	Run     forum.ScrapeRun
	Results []PersistenceResult
}

// Orchestrator drives scrape runs end to end.
type Orchestrator struct {
	store    Store
	adapters *adapter.Registry
	nc       *nats.Conn
	reg      *metrics.Registry
	log      *slog.Logger
	now      func() time.Time
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithNATS enables thread-saved event publishing. A nil conn disables it.
func WithNATS(nc *nats.Conn) Option {
	return func(o *Orchestrator) { o.nc = nc }
}

// WithMetrics wires a metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(o *Orchestrator) { o.reg = reg }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator over a store and an adapter registry.
func New(store Store, adapters *adapter.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		adapters: adapters,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Scrape runs one crawl against the named forum. Dry runs bypass the store
// entirely: nothing is written and nothing is published.
func (o *Orchestrator) Scrape(ctx context.Context, forumSlug string, opts Options) (RunResult, error) {
	local, err := forum.Profile(forumSlug)
	if err != nil {
		return RunResult{}, err
	}

	var persisted *forum.ForumSource
	if !opts.DryRun {
		rec, err := o.store.GetSource(ctx, forumSlug)
		if err != nil {
			o.log.Warn("no persisted source record, using local profile",
				"forum", forumSlug, "error", err)
		} else {
			persisted = &rec
		}
	}
	src := forum.ResolveConfig(local, persisted)
	if persisted != nil && !src.Active {
		return RunResult{}, fmt.Errorf("%w: %q", ErrSourceInactive, forumSlug)
	}

	ad, err := o.adapters.Lookup(src.Slug, src.Platform)
	if err != nil {
		return RunResult{}, err
	}

	run := forum.ScrapeRun{
		ID:            uuid.NewString(),
		ForumSlug:     src.Slug,
		Type:          runType(opts),
		TargetCarSlug: opts.TargetCarSlug,
		TargetURLs:    opts.TargetURLs,
		Status:        forum.RunPending,
	}
	if opts.DryRun {
		run.ID = "dry-" + uuid.NewString()
	}

	if !opts.DryRun {
		if err := o.store.CreateRun(ctx, run); err != nil {
			return RunResult{}, fmt.Errorf("crawl: create run: %w", err)
		}
	}

	started := o.now().UTC()
	run.StartedAt = started
	run.Status = forum.RunRunning
	if !opts.DryRun {
		if err := o.store.StartRun(ctx, run.ID, started); err != nil {
			return RunResult{}, fmt.Errorf("crawl: start run: %w", err)
		}
	}

	o.log.Info("scrape run started",
		"run", run.ID, "forum", src.Slug, "type", run.Type, "dry_run", opts.DryRun)

	var results []PersistenceResult
	sink := o.sink(&run, opts, &results)

	stats, scrapeErr := ad.Scrape(ctx, src, &run, adapter.Options{
		MaxThreads: opts.MaxThreads,
		Subforums:  opts.Subforums,
		TargetURLs: opts.TargetURLs,
		Backfill:   opts.Backfill,
	}, sink)

	run.ThreadsFound = stats.ThreadsFound
	run.ThreadsSaved = len(results)
	run.PostsScraped = stats.PostsScraped
	run.FinishedAt = o.now().UTC()

	if o.reg != nil {
		o.reg.Counter(metrics.WithLabels("crawler_threads_found_total", "forum", src.Slug),
			"Threads seen on list pages").Add(int64(stats.ThreadsFound))
		o.reg.Histogram("crawler_run_duration_seconds", "Scrape run wall time", nil).
			Observe(run.FinishedAt.Sub(started).Seconds())
	}

	if scrapeErr != nil {
		run.Status = forum.RunFailed
		run.Error = scrapeErr.Error()
		if !opts.DryRun {
			// The persisted record keeps the message plus the stack at the
			// point of failure.
			trace := run.Error + "\n" + string(debug.Stack())
			if err := o.store.FailRun(ctx, run.ID, trace, run.FinishedAt); err != nil {
				o.log.Error("record run failure", "run", run.ID, "error", err)
			}
		}
		return RunResult{Run: run, Results: results}, fmt.Errorf("crawl: run %s: %w", run.ID, scrapeErr)
	}

	if opts.DryRun {
		run.Status = forum.RunPreviewed
		o.log.Info("dry run finished", "run", run.ID,
			"found", run.ThreadsFound, "previewed", len(results))
		return RunResult{Run: run, Results: results}, nil
	}

	run.Status = forum.RunCompleted
	if err := o.store.CompleteRun(ctx, run.ID, run.ThreadsFound, run.ThreadsSaved, run.PostsScraped, run.FinishedAt); err != nil {
		return RunResult{Run: run, Results: results}, fmt.Errorf("crawl: complete run: %w", err)
	}
	if err := o.store.UpdateSourceAfterRun(ctx, src.Slug, run.ThreadsSaved, run.FinishedAt); err != nil {
		o.log.Error("update source counters", "forum", src.Slug, "error", err)
	}

	o.log.Info("scrape run completed", "run", run.ID,
		"found", run.ThreadsFound, "saved", run.ThreadsSaved, "posts", run.PostsScraped)
	return RunResult{Run: run, Results: results}, nil
}

// sink builds the per-thread callback handed to the adapter. Dry runs
// accumulate previews; real runs upsert, count, and publish.
func (o *Orchestrator) sink(run *forum.ScrapeRun, opts Options, results *[]PersistenceResult) adapter.Sink {
	if opts.DryRun {
		return func(_ context.Context, t forum.ScrapedThread) error {
			*results = append(*results, Previewed{Preview: Preview{
				ThreadURL:   t.URL,
				ThreadTitle: t.Title,
				Relevance:   t.Relevance,
				Replies:     t.Replies,
				Views:       t.Views,
				PostCount:   len(t.Posts),
				CarSlugs:    t.CarSlugs,
			}})
			return nil
		}
	}
	return func(ctx context.Context, t forum.ScrapedThread) error {
		if err := o.store.UpsertThread(ctx, t); err != nil {
			return fmt.Errorf("crawl: save thread %s: %w", t.URL, err)
		}
		*results = append(*results, Saved{Thread: t})
		if o.reg != nil {
			o.reg.Counter(metrics.WithLabels("crawler_threads_saved_total", "forum", t.ForumSlug),
				"Threads persisted").Inc()
		}
		if o.nc != nil {
			evt := ThreadSavedEvent{
				RunID:     run.ID,
				ForumSlug: t.ForumSlug,
				URL:       t.URL,
				Title:     t.Title,
				Relevance: t.Relevance,
				CarSlugs:  t.CarSlugs,
				SavedAt:   o.now().UTC(),
			}
			if err := natsutil.Publish(ctx, o.nc, SubjectThreadSaved, evt); err != nil {
				o.log.Warn("publish thread saved event", "url", t.URL, "error", err)
			}
		}
		return nil
	}
}

func runType(opts Options) forum.RunType {
	if len(opts.TargetURLs) > 0 {
		return forum.RunTargeted
	}
	if opts.Backfill {
		return forum.RunBackfill
	}
	return forum.RunDiscovery
}
