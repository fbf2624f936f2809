// Command crawler runs forum scrape runs: one-shot against a named forum,
// or a poll loop over all active sources ordered by priority.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/gearlore/gearlore/engine/adapter"
	"github.com/gearlore/gearlore/engine/crawl"
	"github.com/gearlore/gearlore/engine/forum"
	"github.com/gearlore/gearlore/engine/graph"
	"github.com/gearlore/gearlore/pkg/fn"
	"github.com/gearlore/gearlore/pkg/metrics"
	"github.com/gearlore/gearlore/pkg/mid"
)

func main() {
	forumSlug := flag.String("forum", "", "forum slug to scrape (empty = all active, by priority)")
	dryRun := flag.Bool("dry-run", false, "preview without writing or publishing")
	backfill := flag.Bool("backfill", false, "re-walk the full configured page depth")
	maxThreads := flag.Int("max-threads", 0, "cap threads per run (0 = unbounded)")
	subforums := flag.String("subforums", "", "comma-separated subforum paths (subset of configured)")
	targetURLs := flag.String("urls", "", "comma-separated explicit thread URLs")
	interval := flag.Duration("interval", 0, "polling interval (0 = one-shot)")
	status := flag.Bool("status", false, "print run/thread statistics and exit")
	neo4jURL := flag.String("neo4j-url", envOr("NEO4J_URL", "neo4j://localhost:7687"), "Neo4j URL")
	neo4jUser := flag.String("neo4j-user", envOr("NEO4J_USER", "neo4j"), "Neo4j username")
	neo4jPass := flag.String("neo4j-pass", envOr("NEO4J_PASS", "password"), "Neo4j password")
	natsURL := flag.String("nats", os.Getenv("NATS_URL"), "NATS URL (empty = no events)")
	metricsPort := flag.Int("metrics-port", 9093, "ops HTTP port (/metrics, /healthz)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.Default()
	met := metrics.New()
	go met.CollectRuntime(ctx, "gearlore_crawler", 15*time.Second)
	serveOps(logger, met, *metricsPort)

	var store *graph.Store
	if !*dryRun || *status {
		driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
		if err != nil {
			log.Fatalf("neo4j connect: %v", err)
		}
		defer driver.Close(ctx)
		store = graph.New(driver)
	}

	if *status {
		stats, err := store.Stats(ctx)
		if err != nil {
			log.Fatalf("stats: %v", err)
		}
		out, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(out))
		return
	}

	var nc *nats.Conn
	if *natsURL != "" && !*dryRun {
		var err error
		nc, err = nats.Connect(*natsURL)
		if err != nil {
			log.Fatalf("nats connect: %v", err)
		}
		defer nc.Close()
	}

	orch := crawl.New(store, adapter.NewRegistry(),
		crawl.WithNATS(nc),
		crawl.WithMetrics(met),
		crawl.WithLogger(logger))

	opts := crawl.Options{
		DryRun:     *dryRun,
		Backfill:   *backfill,
		MaxThreads: *maxThreads,
		Subforums:  splitCSV(*subforums),
		TargetURLs: splitCSV(*targetURLs),
	}

	for {
		if err := runOnce(ctx, orch, store, *forumSlug, opts); err != nil {
			log.Printf("crawl: %v", err)
		}
		if *interval <= 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(*interval):
		}
	}
}

// runOnce scrapes either the named forum or every active source, highest
// priority first.
func runOnce(ctx context.Context, orch *crawl.Orchestrator, store *graph.Store, slug string, opts crawl.Options) error {
	if slug != "" {
		res, err := orch.Scrape(ctx, slug, opts)
		if err != nil {
			return err
		}
		report(res)
		return nil
	}

	sources := activeSources(ctx, store, opts.DryRun)
	if len(sources) == 0 {
		return fmt.Errorf("no active forum sources")
	}
	for _, src := range sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := orch.Scrape(ctx, src.Slug, opts)
		if err != nil {
			log.Printf("crawl %s: %v", src.Slug, err)
			continue
		}
		report(res)
	}
	return nil
}

// activeSources lists sources to walk: persisted records when available
// (operators flip active/priority there), static profiles otherwise.
func activeSources(ctx context.Context, store *graph.Store, dryRun bool) []forum.ForumSource {
	sources := forum.Profiles()
	if !dryRun {
		sources = fn.FilterMap(sources, func(src forum.ForumSource) (forum.ForumSource, bool) {
			if rec, err := store.GetSource(ctx, src.Slug); err == nil {
				src = forum.ResolveConfig(src, &rec)
			}
			return src, src.Active
		})
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority > sources[j].Priority
	})
	return sources
}

func report(res crawl.RunResult) {
	log.Printf("run %s [%s] %s: found=%d saved=%d posts=%d",
		res.Run.ID, res.Run.Status, res.Run.ForumSlug,
		res.Run.ThreadsFound, res.Run.ThreadsSaved, res.Run.PostsScraped)
	if res.Run.Status == forum.RunPreviewed {
		for _, r := range res.Results {
			log.Printf("  would save: %s (%s)", r.Title(), r.URL())
		}
	}
}

func serveOps(logger *slog.Logger, met *metrics.Registry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	h := mid.Chain(mux, mid.Recover(logger), mid.Logger(logger), mid.OTel("gearlore-crawler"))
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), h); err != nil {
			log.Printf("ops server on port %d: %v", port, err)
		}
	}()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
