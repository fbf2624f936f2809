package graph

import (
	"context"
	"time"

	"github.com/gearlore/gearlore/engine/forum"
)

// SaveInsight persists an insight node and its provenance edge to the
// source thread in one write transaction. Insight rows are append-only.
func (s *Store) SaveInsight(ctx context.Context, in forum.Insight, src forum.InsightSource) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		cypher := `CREATE (i:Insight {
			id: $id, type: $type, title: $title, summary: $summary,
			details: $details, tags: $tags, source_quotes: $quotes,
			car_slugs: $car_slugs, primary_car_slug: $primary,
			confidence: $confidence, consensus: $consensus,
			source_count: $source_count, forum_slug: $forum_slug,
			source_urls: $source_urls, active: $active, verified: $verified,
			created_at: $created_at})`
		if _, err := tx.Run(ctx, cypher, map[string]any{
			"id":           in.ID,
			"type":         string(in.Type),
			"title":        in.Title,
			"summary":      in.Summary,
			"details":      in.Details,
			"tags":         toAnySlice(in.Tags),
			"quotes":       toAnySlice(in.SourceQuotes),
			"car_slugs":    toAnySlice(in.CarSlugs),
			"primary":      in.PrimaryCarSlug,
			"confidence":   in.Confidence,
			"consensus":    in.Consensus,
			"source_count": in.SourceCount,
			"forum_slug":   in.ForumSlug,
			"source_urls":  toAnySlice(in.SourceURLs),
			"active":       in.Active,
			"verified":     in.Verified,
			"created_at":   time.Now().UTC().Unix(),
		}); err != nil {
			return nil, err
		}

		edge := `MATCH (i:Insight {id: $id}), (t:ScrapedThread {url: $url})
			MERGE (i)-[r:EXTRACTED_FROM]->(t)
			SET r.forum_slug = $forum_slug, r.relevance = $relevance,
			    r.quotes = $quotes`
		if _, err := tx.Run(ctx, edge, map[string]any{
			"id":         src.InsightID,
			"url":        src.ThreadURL,
			"forum_slug": src.ForumSlug,
			"relevance":  src.Relevance,
			"quotes":     toAnySlice(src.Quotes),
		}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
