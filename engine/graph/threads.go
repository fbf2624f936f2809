package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/gearlore/gearlore/engine/forum"
)

// UpsertThread writes a thread keyed on URL. Re-submitting the same URL
// refreshes the node; MERGE is the store's native conflict resolution, so
// concurrent writers converge on one row without application locking.
func (s *Store) UpsertThread(ctx context.Context, t forum.ScrapedThread) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	posts, err := json.Marshal(t.Posts)
	if err != nil {
		return fmt.Errorf("graph: marshal posts: %w", err)
	}

	cypher := `MERGE (t:ScrapedThread {url: $url})
		ON CREATE SET t.processing_status = $status, t.first_seen_at = $now
		SET t.forum_slug = $forum_slug, t.title = $title, t.subforum = $subforum,
		    t.replies = $replies, t.views = $views, t.relevance = $relevance,
		    t.car_slugs = $car_slugs, t.posts = $posts,
		    t.posted_at = $posted_at, t.last_post_at = $last_post_at,
		    t.scraped_at = $now`
	_, err = sess.Run(ctx, cypher, map[string]any{
		"url":          t.URL,
		"status":       string(forum.ProcessingPending),
		"forum_slug":   t.ForumSlug,
		"title":        t.Title,
		"subforum":     t.Subforum,
		"replies":      t.Replies,
		"views":        t.Views,
		"relevance":    t.Relevance,
		"car_slugs":    toAnySlice(t.CarSlugs),
		"posts":        string(posts),
		"posted_at":    unixOrZero(t.PostedAt),
		"last_post_at": unixOrZero(t.LastPostAt),
		"now":          time.Now().UTC().Unix(),
	})
	return err
}

// GetPendingThreads returns unprocessed threads, best candidates first.
func (s *Store) GetPendingThreads(ctx context.Context, limit int) ([]forum.ScrapedThread, error) {
	if limit <= 0 {
		limit = 10
	}
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (t:ScrapedThread {processing_status: $status})
		RETURN t ORDER BY t.relevance DESC LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{
		"status": string(forum.ProcessingPending),
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}
	return collectThreads(ctx, result)
}

// UpdateThreadStatus advances a thread's processing status. The pending
// guard keeps the transition monotonic: completed/failed threads are never
// pulled back or flipped.
func (s *Store) UpdateThreadStatus(ctx context.Context, url string, status forum.ProcessingStatus) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (t:ScrapedThread {url: $url})
		WHERE t.processing_status = 'pending'
		SET t.processing_status = $status, t.processed_at = $now`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"url":    url,
		"status": string(status),
		"now":    time.Now().UTC().Unix(),
	})
	return err
}

func collectThreads(ctx context.Context, result CypherResult) ([]forum.ScrapedThread, error) {
	var threads []forum.ScrapedThread
	for result.Next(ctx) {
		nVal, ok := result.Record().Get("t")
		if !ok {
			continue
		}
		node, ok := nVal.(dbtype.Node)
		if !ok {
			continue
		}
		threads = append(threads, threadFromProps(node.Props))
	}
	return threads, nil
}

func threadFromProps(p map[string]any) forum.ScrapedThread {
	t := forum.ScrapedThread{
		URL:              strProp(p, "url"),
		ForumSlug:        strProp(p, "forum_slug"),
		Title:            strProp(p, "title"),
		Subforum:         strProp(p, "subforum"),
		Replies:          intProp(p, "replies"),
		Views:            intProp(p, "views"),
		Relevance:        floatProp(p, "relevance"),
		CarSlugs:         strSliceProp(p, "car_slugs"),
		ProcessingStatus: forum.ProcessingStatus(strProp(p, "processing_status")),
	}
	if raw := strProp(p, "posts"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &t.Posts)
	}
	if ts := intProp(p, "posted_at"); ts > 0 {
		t.PostedAt = time.Unix(int64(ts), 0).UTC()
	}
	if ts := intProp(p, "last_post_at"); ts > 0 {
		t.LastPostAt = time.Unix(int64(ts), 0).UTC()
	}
	if ts := intProp(p, "scraped_at"); ts > 0 {
		t.ScrapedAt = time.Unix(int64(ts), 0).UTC()
	}
	return t
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
