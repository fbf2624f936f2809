package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/gearlore/gearlore/engine/forum"
)

// Stats aggregates what one scrape pass produced.
type Stats struct {
	ThreadsFound   int
	ThreadsScraped int
	PostsScraped   int
}

// Options narrows a scrape invocation.
type Options struct {
	MaxThreads int      // 0 means unbounded
	Subforums  []string // subset of configured subforum paths
	TargetURLs []string // explicit thread URLs, skips list discovery
	Backfill   bool     // ignore the per-run page cap, walk the full depth
}

// Sink receives each structured thread. Returning an error fails that
// thread only; the adapter moves on to the next one.
type Sink func(ctx context.Context, t forum.ScrapedThread) error

// ForumAdapter scrapes one platform family.
type ForumAdapter interface {
	Scrape(ctx context.Context, src forum.ForumSource, run *forum.ScrapeRun, opts Options, sink Sink) (Stats, error)
}

// ErrNoAdapter means neither a per-forum override nor a platform-family
// adapter is registered. This is a configuration error and fails the run.
var ErrNoAdapter = errors.New("adapter: no adapter registered")

// Registry resolves which adapter handles a source. Per-forum overrides win
// over the platform-family default.
type Registry struct {
	byPlatform map[forum.Platform]ForumAdapter
	bySlug     map[string]ForumAdapter
}

// NewRegistry returns a registry with the stock platform adapters wired.
func NewRegistry() *Registry {
	r := &Registry{
		byPlatform: make(map[forum.Platform]ForumAdapter),
		bySlug:     make(map[string]ForumAdapter),
	}
	r.RegisterPlatform(forum.PlatformXenForo, NewXenForo(nil))
	r.RegisterPlatform(forum.PlatformVBulletin, NewVBulletin(nil))
	return r
}

// RegisterPlatform sets the default adapter for a platform family.
func (r *Registry) RegisterPlatform(p forum.Platform, a ForumAdapter) {
	r.byPlatform[p] = a
}

// RegisterForum sets a per-forum override.
func (r *Registry) RegisterForum(slug string, a ForumAdapter) {
	r.bySlug[slug] = a
}

// Lookup finds the adapter for a source: forum override first, then
// platform family.
func (r *Registry) Lookup(slug string, p forum.Platform) (ForumAdapter, error) {
	if a, ok := r.bySlug[slug]; ok {
		return a, nil
	}
	if a, ok := r.byPlatform[p]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w for forum %q (platform %q)", ErrNoAdapter, slug, p)
}
