package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/gearlore/gearlore/engine/forum"
	"github.com/gearlore/gearlore/pkg/fn"
	"github.com/gearlore/gearlore/pkg/repo"
)

// Store provides graph operations for the crawl and extraction pipeline.
type Store struct {
	opener  SessionOpener
	sources *repo.Neo4jRepo[forum.ForumSource, string]
}

// New creates a Store backed by a neo4j driver.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{
		opener:  &driverOpener{driver: driver},
		sources: newSourceRepo(driver),
	}
}

// NewWithOpener creates a Store with a custom session opener. The generic
// source repository is unavailable in this mode; tests use it with fakes.
func NewWithOpener(opener SessionOpener) *Store {
	return &Store{opener: opener}
}

// Sources exposes CRUD on ForumSource records.
func (s *Store) Sources() repo.Repository[forum.ForumSource, string] {
	return s.sources
}

// GetSource loads the persisted ForumSource record by slug.
func (s *Store) GetSource(ctx context.Context, slug string) (forum.ForumSource, error) {
	if s.sources == nil {
		return forum.ForumSource{}, fmt.Errorf("graph: source repository unavailable")
	}
	return s.sources.Get(ctx, slug)
}

func newSourceRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[forum.ForumSource, string] {
	return repo.NewNeo4jRepo[forum.ForumSource, string](
		driver, "ForumSource",
		sourceToMap,
		sourceFromRecord,
		repo.WithIDKey[forum.ForumSource, string]("slug"),
	)
}

func sourceToMap(f forum.ForumSource) map[string]any {
	m := map[string]any{
		"slug":          f.Slug,
		"name":          f.Name,
		"base_url":      f.BaseURL,
		"platform":      string(f.Platform),
		"active":        f.Active,
		"priority":      f.Priority,
		"threads_total": f.ThreadsTotal,
		"car_slugs":     toAnySlice(f.CarSlugs),
		"car_brands":    toAnySlice(f.CarBrands),
	}
	if !f.LastScrapedAt.IsZero() {
		m["last_scraped_at"] = f.LastScrapedAt.Unix()
	}
	return m
}

func sourceFromRecord(rec *neo4j.Record) (forum.ForumSource, error) {
	nVal, ok := rec.Get("n")
	if !ok {
		return forum.ForumSource{}, fmt.Errorf("graph: record missing node")
	}
	node, ok := nVal.(dbtype.Node)
	if !ok {
		return forum.ForumSource{}, fmt.Errorf("graph: unexpected node type %T", nVal)
	}
	return sourceFromProps(node.Props), nil
}

func sourceFromProps(p map[string]any) forum.ForumSource {
	f := forum.ForumSource{
		Slug:      strProp(p, "slug"),
		Name:      strProp(p, "name"),
		BaseURL:   strProp(p, "base_url"),
		Platform:  forum.Platform(strProp(p, "platform")),
		CarSlugs:  strSliceProp(p, "car_slugs"),
		CarBrands: strSliceProp(p, "car_brands"),
	}
	if v, ok := p["active"].(bool); ok {
		f.Active = v
	}
	f.Priority = intProp(p, "priority")
	f.ThreadsTotal = int64(intProp(p, "threads_total"))
	if ts := intProp(p, "last_scraped_at"); ts > 0 {
		f.LastScrapedAt = time.Unix(int64(ts), 0).UTC()
	}
	return f
}

// UpdateSourceAfterRun bumps the source's cumulative thread counter and
// last-scraped timestamp. Called on successful runs only.
func (s *Store) UpdateSourceAfterRun(ctx context.Context, slug string, threadsSaved int, at time.Time) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (f:ForumSource {slug: $slug})
		SET f.threads_total = coalesce(f.threads_total, 0) + $saved,
		    f.last_scraped_at = $at`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"slug":  slug,
		"saved": threadsSaved,
		"at":    at.Unix(),
	})
	return err
}

func strProp(p map[string]any, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func intProp(p map[string]any, key string) int {
	switch v := p[key].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func floatProp(p map[string]any, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func strSliceProp(p map[string]any, key string) []string {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toAnySlice(ss []string) []any {
	return fn.Map(ss, func(s string) any { return s })
}
