// Command extractor pulls pending scraped threads and extracts insights
// from them with a language model, on an interval or one-shot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/gearlore/gearlore/engine/graph"
	"github.com/gearlore/gearlore/engine/insight"
	"github.com/gearlore/gearlore/engine/semantic"
	"github.com/gearlore/gearlore/pkg/llm"
	"github.com/gearlore/gearlore/pkg/metrics"
	"github.com/gearlore/gearlore/pkg/mid"
	"github.com/gearlore/gearlore/pkg/ollama"
	"github.com/gearlore/gearlore/pkg/resilience"
)

func main() {
	batchLimit := flag.Int("batch", 10, "threads per extraction batch")
	interval := flag.Duration("interval", 0, "polling interval (0 = one-shot)")
	model := flag.String("model", envOr("LLM_MODEL", "claude-sonnet-4-20250514"), "language model")
	apiKey := flag.String("api-key", os.Getenv("ANTHROPIC_API_KEY"), "messages API key")
	apiBase := flag.String("api-base", os.Getenv("LLM_BASE_URL"), "messages API base URL override")
	embedURL := flag.String("embed-url", envOr("OLLAMA_URL", "http://localhost:11434"), "ollama base URL (empty = no embeddings)")
	embedModel := flag.String("embed-model", envOr("EMBED_MODEL", "nomic-embed-text"), "embedding model")
	embedDims := flag.Int("embed-dims", 768, "embedding vector size")
	qdrantAddr := flag.String("qdrant", os.Getenv("QDRANT_URL"), "qdrant gRPC address (empty = no vector store)")
	neo4jURL := flag.String("neo4j-url", envOr("NEO4J_URL", "neo4j://localhost:7687"), "Neo4j URL")
	neo4jUser := flag.String("neo4j-user", envOr("NEO4J_USER", "neo4j"), "Neo4j username")
	neo4jPass := flag.String("neo4j-pass", envOr("NEO4J_PASS", "password"), "Neo4j password")
	natsURL := flag.String("nats", os.Getenv("NATS_URL"), "NATS URL (empty = no events)")
	rps := flag.Float64("ai-rps", 0.5, "max AI requests per second")
	metricsPort := flag.Int("metrics-port", 9094, "ops HTTP port (/metrics, /healthz)")
	flag.Parse()

	if *apiKey == "" {
		log.Fatal("api key required (-api-key or ANTHROPIC_API_KEY)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.Default()
	met := metrics.New()
	go met.CollectRuntime(ctx, "gearlore_extractor", 15*time.Second)
	serveOps(logger, met, *metricsPort)

	driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
	if err != nil {
		log.Fatalf("neo4j connect: %v", err)
	}
	defer driver.Close(ctx)
	store := graph.New(driver)

	var llmOpts []llm.Option
	if *apiBase != "" {
		llmOpts = append(llmOpts, llm.WithBaseURL(*apiBase))
	}
	ai := llm.New(*apiKey, *model, llmOpts...)

	cfg := insight.DefaultConfig()
	cfg.BatchLimit = *batchLimit

	opts := []insight.Option{
		insight.WithLogger(logger),
		insight.WithMetrics(met),
		insight.WithLimiter(resilience.NewLimiter(resilience.LimiterOpts{
			Rate:  *rps,
			Burst: 1,
		})),
	}

	if *embedURL != "" {
		opts = append(opts, insight.WithEmbedder(ollama.NewEmbedClient(*embedURL, *embedModel)))
	}

	if *qdrantAddr != "" {
		vectors, err := semantic.New(*qdrantAddr, "insights")
		if err != nil {
			log.Fatalf("qdrant connect: %v", err)
		}
		defer vectors.Close()
		if err := vectors.EnsureCollection(ctx, *embedDims); err != nil {
			log.Fatalf("qdrant collection: %v", err)
		}
		opts = append(opts, insight.WithVectors(vectors))
	}

	if *natsURL != "" {
		nc, err := nats.Connect(*natsURL)
		if err != nil {
			log.Fatalf("nats connect: %v", err)
		}
		defer nc.Close()
		opts = append(opts, insight.WithNATS(nc))
	}

	x := insight.New(store, ai, cfg, opts...)

	for {
		stats, err := x.ProcessPending(ctx)
		if err != nil {
			log.Printf("extraction batch: %v", err)
		} else {
			log.Printf("batch done: processed=%d failed=%d insights=%d rejected=%d tokens=%d/%d cost=$%.4f",
				stats.ThreadsProcessed, stats.ThreadsFailed,
				stats.InsightsExtracted, stats.InsightsRejected,
				stats.InputTokens, stats.OutputTokens, stats.CostUSD)
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

func serveOps(logger *slog.Logger, met *metrics.Registry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	h := mid.Chain(mux, mid.Recover(logger), mid.Logger(logger), mid.OTel("gearlore-extractor"))
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
