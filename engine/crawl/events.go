package crawl

import "time"

// SubjectThreadSaved is the NATS subject for thread persistence events.
const SubjectThreadSaved = "gearlore.crawl.thread_saved"

// ThreadSavedEvent is published after each successful thread save. Dry runs
// never publish.
type ThreadSavedEvent struct {
	RunID     string    `json:"run_id"`
	ForumSlug string    `json:"forum_slug"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Relevance float64   `json:"relevance"`
	CarSlugs  []string  `json:"car_slugs,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}
