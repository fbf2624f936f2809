package crawl

import "github.com/gearlore/gearlore/engine/forum"

// PersistenceResult is what happened to one scraped thread: persisted to the
// graph, or previewed in memory during a dry run.
type PersistenceResult interface {
	URL() string
	Title() string
}

// Saved means the thread was written to the graph store.
type Saved struct {
	Thread forum.ScrapedThread
}

func (s Saved) URL() string   { return s.Thread.URL }
func (s Saved) Title() string { return s.Thread.Title }

// Preview is the dry-run summary of a thread that would have been saved.
type Preview struct {
	ThreadURL   string   `json:"url"`
	ThreadTitle string   `json:"title"`
	Relevance   float64  `json:"relevance"`
	Replies     int      `json:"replies"`
	Views       int      `json:"views"`
	PostCount   int      `json:"post_count"`
	CarSlugs    []string `json:"car_slugs,omitempty"`
}

// Previewed means the thread was held in memory and never persisted.
type Previewed struct {
	Preview Preview
}

func (p Previewed) URL() string   { return p.Preview.ThreadURL }
func (p Previewed) Title() string { return p.Preview.ThreadTitle }
