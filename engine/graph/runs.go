package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/gearlore/gearlore/engine/forum"
)

// CreateRun persists a new pending ScrapeRun.
func (s *Store) CreateRun(ctx context.Context, run forum.ScrapeRun) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `CREATE (r:ScrapeRun {
		id: $id, forum_slug: $forum_slug, run_type: $run_type,
		target_car_slug: $target_car_slug, status: $status,
		threads_found: 0, threads_saved: 0, posts_scraped: 0,
		created_at: $created_at})`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":              run.ID,
		"forum_slug":      run.ForumSlug,
		"run_type":        string(run.Type),
		"target_car_slug": run.TargetCarSlug,
		"status":          string(forum.RunPending),
		"created_at":      time.Now().UTC().Unix(),
	})
	return err
}

// StartRun transitions a run to running.
func (s *Store) StartRun(ctx context.Context, runID string, at time.Time) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (r:ScrapeRun {id: $id})
		SET r.status = $status, r.started_at = $at`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":     runID,
		"status": string(forum.RunRunning),
		"at":     at.Unix(),
	})
	return err
}

// CompleteRun records terminal success with aggregated counts.
func (s *Store) CompleteRun(ctx context.Context, runID string, found, saved, posts int, at time.Time) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (r:ScrapeRun {id: $id})
		SET r.status = $status, r.threads_found = $found,
		    r.threads_saved = $saved, r.posts_scraped = $posts,
		    r.finished_at = $at`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":     runID,
		"status": string(forum.RunCompleted),
		"found":  found,
		"saved":  saved,
		"posts":  posts,
		"at":     at.Unix(),
	})
	return err
}

// FailRun records terminal failure with the error detail.
func (s *Store) FailRun(ctx context.Context, runID, errMsg string, at time.Time) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (r:ScrapeRun {id: $id})
		SET r.status = $status, r.error = $error, r.finished_at = $at`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":     runID,
		"status": string(forum.RunFailed),
		"error":  errMsg,
		"at":     at.Unix(),
	})
	return err
}

// RunStats aggregates run and thread counts for operational visibility.
type RunStats struct {
	RunsByStatus    map[string]int
	ThreadsByStatus map[string]int
	ThreadsByForum  map[string]int
	TotalRuns       int
	TotalThreads    int
}

// Stats returns aggregate counts across runs and threads.
func (s *Store) Stats(ctx context.Context) (RunStats, error) {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	stats := RunStats{
		RunsByStatus:    make(map[string]int),
		ThreadsByStatus: make(map[string]int),
		ThreadsByForum:  make(map[string]int),
	}

	result, err := sess.Run(ctx, `MATCH (r:ScrapeRun) RETURN r.status AS k, count(r) AS cnt`, nil)
	if err != nil {
		return stats, err
	}
	for result.Next(ctx) {
		k, cnt := keyCount(result.Record())
		stats.RunsByStatus[k] = cnt
		stats.TotalRuns += cnt
	}

	result, err = sess.Run(ctx, `MATCH (t:ScrapedThread) RETURN t.processing_status AS k, count(t) AS cnt`, nil)
	if err != nil {
		return stats, err
	}
	for result.Next(ctx) {
		k, cnt := keyCount(result.Record())
		stats.ThreadsByStatus[k] = cnt
		stats.TotalThreads += cnt
	}

	result, err = sess.Run(ctx, `MATCH (t:ScrapedThread) RETURN t.forum_slug AS k, count(t) AS cnt`, nil)
	if err != nil {
		return stats, err
	}
	for result.Next(ctx) {
		k, cnt := keyCount(result.Record())
		stats.ThreadsByForum[k] = cnt
	}

	return stats, nil
}

func keyCount(rec *neo4j.Record) (string, int) {
	kVal, _ := rec.Get("k")
	cntVal, _ := rec.Get("cnt")
	k, _ := kVal.(string)
	cnt, _ := cntVal.(int64)
	return k, int(cnt)
}
