package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gearlore/gearlore/engine/forum"
	"github.com/gearlore/gearlore/pkg/vehiclenlp"
)

// minPostChars drops near-empty posts ("+1", "bump") during detail scrape.
const minPostChars = 20

// htmlAdapter is the shared list-page/detail-page scraping flow. Platform
// adapters supply the pagination URL scheme; everything else is driven by
// the per-forum selector configuration.
type htmlAdapter struct {
	pageURL  func(baseURL, path string, page int) string
	log      *slog.Logger
	detector *vehiclenlp.Detector
	scoreCfg ScoreConfig

	// newFetcher is swapped in tests to shrink retry waits.
	newFetcher func(rateLimitMs int, log *slog.Logger) *Fetcher
}

func newHTMLAdapter(pageURL func(string, string, int) string, log *slog.Logger) *htmlAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &htmlAdapter{
		pageURL:    pageURL,
		log:        log,
		detector:   vehiclenlp.NewDetector(),
		scoreCfg:   DefaultScoreConfig(),
		newFetcher: NewFetcher,
	}
}

// Scrape walks the configured subforums (or the explicit target URLs) and
// hands each structured thread to sink. Per-thread failures are isolated.
func (a *htmlAdapter) Scrape(ctx context.Context, src forum.ForumSource, run *forum.ScrapeRun, opts Options, sink Sink) (Stats, error) {
	fetch := a.newFetcher(src.Config.RateLimitMs, a.log)
	stats := Stats{}

	targets := opts.TargetURLs
	if len(targets) == 0 {
		targets = run.TargetURLs
	}
	if len(targets) > 0 {
		a.scrapeTargets(ctx, fetch, src, targets, sink, &stats)
		return stats, nil
	}

	maxPages := src.Config.Pagination.MaxPages
	// Backfill runs re-walk older pages, so the per-run cap does not apply.
	if !opts.Backfill && src.Config.MaxPagesPerRun > 0 && src.Config.MaxPagesPerRun < maxPages {
		maxPages = src.Config.MaxPagesPerRun
	}
	if maxPages <= 0 {
		maxPages = 1
	}

	paths := make([]string, 0, len(src.Config.Subforums))
	for path := range src.Config.Subforums {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if len(opts.Subforums) > 0 && !contains(opts.Subforums, path) {
			continue
		}
		allow := src.Config.Subforums[path]
		if len(allow) == 0 {
			allow = src.CarSlugs
		}

		for page := 1; page <= maxPages; page++ {
			if opts.MaxThreads > 0 && stats.ThreadsScraped >= opts.MaxThreads {
				break
			}

			listURL := a.pageURL(src.BaseURL, path, page)
			html, err := fetch.Get(ctx, listURL)
			if err != nil {
				a.log.Warn("list page fetch failed", "url", listURL, "error", err)
				break
			}

			rows := a.parseList(src, path, html)
			if len(rows) == 0 {
				break // empty page terminates pagination
			}

			for _, row := range rows {
				stats.ThreadsFound++
				if opts.MaxThreads > 0 && stats.ThreadsScraped >= opts.MaxThreads {
					break
				}
				if !a.passesFilters(row, src.Config.Filters) {
					continue
				}
				a.scrapeOne(ctx, fetch, src, row, allow, sink, &stats)
			}
		}
	}
	return stats, nil
}

// listedThread is one row parsed off a thread-list page.
type listedThread struct {
	URL       string
	Title     string
	Subforum  string
	Replies   int
	Views     int
	LastPost  string
	Relevance float64
}

func (a *htmlAdapter) parseList(src forum.ForumSource, path, html string) []listedThread {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		a.log.Warn("list page parse failed", "path", path, "error", err)
		return nil
	}

	sel := src.Config.ThreadList
	var rows []listedThread
	doc.Find(sel.Row).Each(func(_ int, row *goquery.Selection) {
		if sel.Sticky != "" && row.Is(sel.Sticky) {
			return // pinned threads carry no discussion value
		}
		link := row.Find(sel.Title).First()
		href, ok := link.Attr("href")
		title := CleanText(link.Text())
		if !ok || title == "" {
			return
		}

		replies := ParseCount(row.Find(sel.Replies).First().Text())
		views := ParseCount(row.Find(sel.Views).First().Text())

		rows = append(rows, listedThread{
			URL:       NormalizeURL(src.BaseURL, href),
			Title:     title,
			Subforum:  path,
			Replies:   replies,
			Views:     views,
			LastPost:  strings.TrimSpace(row.Find(sel.LastPost).First().Text()),
			Relevance: Score(title, replies, views, src.Config.Filters, a.scoreCfg),
		})
	})
	return rows
}

func (a *htmlAdapter) passesFilters(row listedThread, f forum.ThreadFilters) bool {
	if row.Replies < f.MinReplies {
		return false
	}
	if row.Views < f.MinViews {
		return false
	}
	return row.Relevance >= RelevanceFloor
}

func (a *htmlAdapter) scrapeOne(ctx context.Context, fetch *Fetcher, src forum.ForumSource, row listedThread, allow []string, sink Sink, stats *Stats) {
	thread, err := a.scrapeThread(ctx, fetch, src, row, allow)
	if err != nil {
		a.log.Warn("thread scrape failed", "url", row.URL, "error", err)
		return
	}
	if err := sink(ctx, thread); err != nil {
		a.log.Warn("thread persist failed", "url", row.URL, "error", err)
		return
	}
	stats.ThreadsScraped++
	stats.PostsScraped += len(thread.Posts)
}

func (a *htmlAdapter) scrapeTargets(ctx context.Context, fetch *Fetcher, src forum.ForumSource, urls []string, sink Sink, stats *Stats) {
	for _, u := range urls {
		stats.ThreadsFound++
		row := listedThread{URL: NormalizeURL(src.BaseURL, u)}
		a.scrapeOne(ctx, fetch, src, row, src.CarSlugs, sink, stats)
	}
}

// scrapeThread fetches the detail page and builds the full thread record.
// Relevance and vehicle detection are re-derived from the complete content,
// which beats a title-only estimate.
func (a *htmlAdapter) scrapeThread(ctx context.Context, fetch *Fetcher, src forum.ForumSource, row listedThread, allow []string) (forum.ScrapedThread, error) {
	html, err := fetch.Get(ctx, row.URL)
	if err != nil {
		return forum.ScrapedThread{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return forum.ScrapedThread{}, fmt.Errorf("parse thread page: %w", err)
	}

	sel := src.Config.ThreadContent
	var posts []forum.Post
	doc.Find(sel.Post).Each(func(i int, p *goquery.Selection) {
		content := CleanSelection(p.Find(sel.Body).First())
		if len(content) < minPostChars {
			return
		}
		post := forum.Post{
			Number:     len(posts) + 1,
			Author:     CleanText(p.Find(sel.Author).First().Text()),
			Content:    content,
			IsOriginal: i == 0,
		}
		if ts := strings.TrimSpace(p.Find(sel.Timestamp).First().Text()); ts != "" {
			post.PostedAt = ParseDate(ts, nowUTC())
		}
		if meta := p.Find(sel.AuthorMeta).First(); meta.Length() > 0 {
			post.AuthorJoined = CleanText(meta.Text())
		}
		posts = append(posts, post)
	})

	title := row.Title
	if title == "" {
		title = CleanText(doc.Find("h1").First().Text())
	}

	var full strings.Builder
	full.WriteString(title)
	for _, p := range posts {
		full.WriteByte(' ')
		full.WriteString(p.Content)
	}
	fullText := full.String()

	thread := forum.ScrapedThread{
		URL:              row.URL,
		ForumSlug:        src.Slug,
		Title:            title,
		Subforum:         row.Subforum,
		Replies:          row.Replies,
		Views:            row.Views,
		Posts:            posts,
		Relevance:        Score(fullText, row.Replies, row.Views, src.Config.Filters, a.scoreCfg),
		CarSlugs:         a.detector.Detect(fullText, allow),
		ProcessingStatus: forum.ProcessingPending,
		ScrapedAt:        nowUTC(),
	}
	if row.LastPost != "" {
		thread.LastPostAt = ParseDate(row.LastPost, nowUTC())
	}
	if len(posts) > 0 && !posts[0].PostedAt.IsZero() {
		thread.PostedAt = posts[0].PostedAt
	}
	return thread, nil
}

func nowUTC() time.Time { return time.Now().UTC() }

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}
