// Package forum defines the data model and configuration for forum sources,
// scrape runs, and scraped threads.
package forum

import "time"

// Platform identifies the forum software family a source runs on.
type Platform string

const (
	PlatformXenForo   Platform = "xenforo"
	PlatformVBulletin Platform = "vbulletin"
)

// RunType classifies what a scrape run is trying to do.
type RunType string

const (
	RunDiscovery RunType = "discovery" // walk configured subforums
	RunTargeted  RunType = "targeted"  // fetch explicit thread URLs
	RunBackfill  RunType = "backfill"  // re-walk older pages
)

// RunStatus is the lifecycle state of a ScrapeRun.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	// RunPreviewed is the terminal status of a dry run. Dry runs are never
	// persisted, so this status only ever appears on in-memory records.
	RunPreviewed RunStatus = "previewed"
)

// ProcessingStatus tracks whether a thread has been through insight
// extraction. It only advances pending -> {completed, failed}.
type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// ForumSource is one external forum site to crawl.
type ForumSource struct {
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	BaseURL       string    `json:"base_url"`
	Platform      Platform  `json:"platform"`
	CarBrands     []string  `json:"car_brands,omitempty"`
	CarSlugs      []string  `json:"car_slugs,omitempty"` // vehicle-slug allowlist
	Active        bool      `json:"active"`
	Priority      int       `json:"priority"`
	ThreadsTotal  int64     `json:"threads_total"`
	LastScrapedAt time.Time `json:"last_scraped_at"`

	Config ScrapeConfig `json:"scrape_config"`
}

// ScrapeConfig holds the per-forum crawl tuning: politeness, selectors,
// subforum map, and thread filters.
type ScrapeConfig struct {
	RateLimitMs    int                 `json:"rate_limit_ms"`
	MaxPagesPerRun int                 `json:"max_pages_per_run"`
	Subforums      map[string][]string `json:"subforums,omitempty"` // path -> car slugs
	ThreadList     ListSelectors       `json:"thread_list_selectors"`
	ThreadContent  ContentSelectors    `json:"thread_content_selectors"`
	Filters        ThreadFilters       `json:"thread_filters"`
	Pagination     Pagination          `json:"pagination"`
}

// ListSelectors are the CSS selectors used on thread-list pages.
type ListSelectors struct {
	Row      string `json:"row"`
	Title    string `json:"title"`
	Replies  string `json:"replies"`
	Views    string `json:"views"`
	LastPost string `json:"last_post"`
	Sticky   string `json:"sticky"`
}

// ContentSelectors are the CSS selectors used on thread-detail pages.
type ContentSelectors struct {
	Post       string `json:"post"`
	Author     string `json:"author"`
	AuthorMeta string `json:"author_meta"`
	Timestamp  string `json:"timestamp"`
	Body       string `json:"body"`
}

// ThreadFilters gate which listed threads get a detail fetch.
type ThreadFilters struct {
	MinReplies   int      `json:"min_replies"`
	MinViews     int      `json:"min_views"`
	TitleInclude []string `json:"title_include,omitempty"`
	TitleExclude []string `json:"title_exclude,omitempty"`
}

// Pagination bounds list-page walking.
type Pagination struct {
	MaxPages int `json:"max_pages"`
}

// ScrapeRun is one crawler invocation against a ForumSource.
type ScrapeRun struct {
	ID            string    `json:"id"`
	ForumSlug     string    `json:"forum_slug"`
	Type          RunType   `json:"run_type"`
	TargetCarSlug string    `json:"target_car_slug,omitempty"`
	TargetURLs    []string  `json:"target_urls,omitempty"`
	Status        RunStatus `json:"status"`
	ThreadsFound  int       `json:"threads_found"`
	ThreadsSaved  int       `json:"threads_saved"`
	PostsScraped  int       `json:"posts_scraped"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// ScrapedThread is one discussion thread. URL is the identity key: scraping
// the same thread twice refreshes the record, it never duplicates it.
type ScrapedThread struct {
	URL              string           `json:"url"`
	ForumSlug        string           `json:"forum_slug"`
	Title            string           `json:"title"`
	Subforum         string           `json:"subforum,omitempty"`
	PostedAt         time.Time        `json:"posted_at"`
	LastPostAt       time.Time        `json:"last_post_at"`
	Replies          int              `json:"replies"`
	Views            int              `json:"views"`
	Posts            []Post           `json:"posts,omitempty"`
	Relevance        float64          `json:"relevance"`
	CarSlugs         []string         `json:"car_slugs,omitempty"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	ScrapedAt        time.Time        `json:"scraped_at"`
}

// Post is one message within a thread. Immutable once scraped.
type Post struct {
	Number          int       `json:"number"`
	Author          string    `json:"author"`
	AuthorJoined    string    `json:"author_joined,omitempty"`
	AuthorPostCount int       `json:"author_post_count,omitempty"`
	PostedAt        time.Time `json:"posted_at"`
	Content         string    `json:"content"`
	IsOriginal      bool      `json:"is_original"`
}
