// Package insight turns pending scraped threads into validated, embedded,
// persisted insights via a language model.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/gearlore/gearlore/engine/forum"
	"github.com/gearlore/gearlore/pkg/fn"
	"github.com/gearlore/gearlore/pkg/llm"
	"github.com/gearlore/gearlore/pkg/metrics"
	"github.com/gearlore/gearlore/pkg/natsutil"
	"github.com/gearlore/gearlore/pkg/resilience"
)

// AI is the language-model surface the extractor needs. *llm.Client
// satisfies it.
type AI interface {
	Complete(ctx context.Context, system, user string) (string, llm.Usage, error)
}

// Embedder produces embedding vectors. *ollama.EmbedClient satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the persistence surface the extractor needs. engine/graph
// satisfies it.
type Store interface {
	GetPendingThreads(ctx context.Context, limit int) ([]forum.ScrapedThread, error)
	SaveInsight(ctx context.Context, in forum.Insight, src forum.InsightSource) error
	UpdateThreadStatus(ctx context.Context, url string, status forum.ProcessingStatus) error
}

// Vectors mirrors semantic.VectorStore. Vector writes are best effort.
type Vectors interface {
	UpsertInsight(ctx context.Context, in forum.Insight) error
}

// Config tunes the batch loop and cost accounting.
type Config struct {
	BatchLimit        int
	MaxAttempts       int           // per-thread extraction attempts
	RateLimitCooldown time.Duration // fixed wait after a provider rate limit
	InitialBackoff    time.Duration // base for non-rate-limit retry backoff
	InputPricePerMTok float64       // USD per million input tokens
	OutputPricePerMTok float64      // USD per million output tokens
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		BatchLimit:        10,
		MaxAttempts:       3,
		RateLimitCooldown: 30 * time.Second,
		InitialBackoff:    2 * time.Second,
		InputPricePerMTok: 3.0,
		OutputPricePerMTok: 15.0,
	}
}

// Extractor runs insight extraction against pending threads.
type Extractor struct {
	store   Store
	ai      AI
	embed   Embedder
	vectors Vectors
	nc      *nats.Conn
	reg     *metrics.Registry
	log     *slog.Logger
	cfg     Config

	breaker *resilience.Breaker
	limiter *resilience.Limiter
}

// Option configures the extractor.
type Option func(*Extractor)

// WithEmbedder enables embedding of accepted insights.
func WithEmbedder(e Embedder) Option { return func(x *Extractor) { x.embed = e } }

// WithVectors enables vector persistence.
func WithVectors(v Vectors) Option { return func(x *Extractor) { x.vectors = v } }

// WithNATS enables insight-extracted event publishing.
func WithNATS(nc *nats.Conn) Option { return func(x *Extractor) { x.nc = nc } }

// WithMetrics wires a metrics registry.
func WithMetrics(reg *metrics.Registry) Option { return func(x *Extractor) { x.reg = reg } }

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option { return func(x *Extractor) { x.log = log } }

// WithLimiter caps the request rate against the AI provider.
func WithLimiter(l *resilience.Limiter) Option { return func(x *Extractor) { x.limiter = l } }

// New creates an extractor. The circuit breaker on AI calls is always on,
// so a dead provider trips fast instead of burning the retry budget.
func New(store Store, ai AI, cfg Config, opts ...Option) *Extractor {
	x := &Extractor{
		store:   store,
		ai:      ai,
		cfg:     cfg,
		log:     slog.Default(),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}
	for _, o := range opts {
		o(x)
	}
	return x
}

// ThreadResult is what one thread's extraction produced.
type ThreadResult struct {
	Insights    []forum.Insight
	Rejected    int
	Usage       llm.Usage
	PromptChars int
}

// extraction carries one thread through the complete/parse/persist stages.
type extraction struct {
	thread forum.ScrapedThread
	prompt string
	text   string
	raws   []RawInsight
	result ThreadResult
}

// ExtractFromThread runs the full per-thread pipeline: prompt, AI call,
// parse, validate, embed, persist, publish. A thread with zero posts yields
// zero insights without touching the AI provider.
func (x *Extractor) ExtractFromThread(ctx context.Context, t forum.ScrapedThread) (ThreadResult, error) {
	if len(t.Posts) == 0 {
		return ThreadResult{}, nil
	}

	e := &extraction{thread: t, prompt: BuildPrompt(t)}
	e.result.PromptChars = len(e.prompt)

	pipe := fn.Pipeline(
		fn.TracedStage("insight.complete", x.completeStage()),
		fn.TracedStage("insight.parse", x.parseStage()),
		fn.TracedStage("insight.persist", x.persistStage()),
	)
	if _, err := pipe(ctx, e).Unwrap(); err != nil {
		return e.result, err
	}
	return e.result, nil
}

// completeStage calls the model behind the limiter, the breaker, and the
// per-thread retry policy. Retries happen here and nowhere else: a flaky
// provider is retried before anything is parsed, so persistence runs at
// most once per thread and a transient store failure never re-bills the AI
// or duplicates saved insights. A provider rate limit waits the fixed
// cool-down; other errors back off exponentially; an open circuit ends the
// attempt budget early.
func (x *Extractor) completeStage() fn.Stage[*extraction, *extraction] {
	call := fn.Stage[*extraction, *extraction](func(ctx context.Context, e *extraction) fn.Result[*extraction] {
		if x.limiter != nil {
			if err := x.limiter.Wait(ctx); err != nil {
				return fn.Err[*extraction](err)
			}
		}
		r := resilience.CallResult(x.breaker, ctx, func(ctx context.Context) fn.Result[*extraction] {
			text, usage, err := x.ai.Complete(ctx, systemPrompt, e.prompt)
			if err != nil {
				return fn.Err[*extraction](err)
			}
			e.text = text
			e.result.Usage = usage
			return fn.Ok(e)
		})
		if _, err := r.Unwrap(); err != nil {
			if errors.Is(err, llm.ErrRateLimited) {
				err = &fn.RetryAfterError{Wait: x.cfg.RateLimitCooldown, Err: err}
			}
			return fn.Err[*extraction](fmt.Errorf("insight: extract from %s: %w", e.thread.URL, err))
		}
		return fn.Ok(e)
	})
	return fn.RetryStage(fn.RetryOpts{
		MaxAttempts: x.cfg.MaxAttempts,
		InitialWait: x.cfg.InitialBackoff,
		MaxWait:     time.Minute,
		Jitter:      true,
		Retryable: func(err error) bool {
			return !errors.Is(err, resilience.ErrCircuitOpen)
		},
	}, call)
}

// parseStage parses the completion and drops insights failing the
// validation gate, counting the rejects.
func (x *Extractor) parseStage() fn.Stage[*extraction, *extraction] {
	return fn.MapStage(func(e *extraction) *extraction {
		e.raws = fn.Filter(ParseInsights(e.text), func(raw RawInsight) bool {
			if verr := Validate(raw); verr != nil {
				e.result.Rejected++
				x.log.Debug("insight rejected", "thread", e.thread.URL, "error", verr)
				return false
			}
			return true
		})
		return e
	})
}

// persistStage embeds, saves, and publishes each validated insight.
// Embedding and vector writes are best effort; a store failure is fatal
// for the thread but already-saved insights stay saved.
func (x *Extractor) persistStage() fn.Stage[*extraction, *extraction] {
	return func(ctx context.Context, e *extraction) fn.Result[*extraction] {
		for _, raw := range e.raws {
			in := x.buildInsight(raw, e.thread)
			if x.embed != nil {
				vec, eerr := x.embed.Embed(ctx, EmbeddingInput(in))
				if eerr != nil {
					// Non-fatal: the insight survives without a vector.
					x.log.Warn("embed insight", "insight", in.ID, "error", eerr)
				} else {
					in.Embedding = vec
				}
			}

			src := forum.InsightSource{
				InsightID: in.ID,
				ThreadURL: e.thread.URL,
				ForumSlug: e.thread.ForumSlug,
				Relevance: e.thread.Relevance,
				Quotes:    raw.SourceQuotes,
			}
			if err := x.store.SaveInsight(ctx, in, src); err != nil {
				return fn.Err[*extraction](fmt.Errorf("insight: save %s: %w", in.ID, err))
			}
			if x.vectors != nil && len(in.Embedding) > 0 {
				if verr := x.vectors.UpsertInsight(ctx, in); verr != nil {
					x.log.Warn("upsert insight vector", "insight", in.ID, "error", verr)
				}
			}
			x.publish(ctx, in, e.thread)
			e.result.Insights = append(e.result.Insights, in)
		}
		return fn.Ok(e)
	}
}

func (x *Extractor) buildInsight(raw RawInsight, t forum.ScrapedThread) forum.Insight {
	in := forum.Insight{
		ID:           uuid.NewString(),
		Type:         forum.InsightType(raw.Type),
		Title:        raw.Title,
		Summary:      raw.Summary,
		Details:      raw.Details,
		Tags:         fn.Unique(raw.Tags),
		SourceQuotes: raw.SourceQuotes,
		CarSlugs:     fn.Unique(raw.RelatedCars),
		Confidence:   ConfidenceScore(raw.Confidence),
		SourceCount:  1,
		ForumSlug:    t.ForumSlug,
		SourceURLs:   []string{t.URL},
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	in.PrimaryCarSlug = primarySlug(raw.RelatedCars, t.CarSlugs)
	return in
}

// primarySlug picks the insight's headline vehicle: first related slug from
// the model, else first slug detected on the thread, else a generic bucket.
func primarySlug(related, detected []string) string {
	if len(related) > 0 {
		return related[0]
	}
	if len(detected) > 0 {
		return detected[0]
	}
	return "general"
}

func (x *Extractor) publish(ctx context.Context, in forum.Insight, t forum.ScrapedThread) {
	if x.nc == nil {
		return
	}
	evt := InsightExtractedEvent{
		InsightID:   in.ID,
		ThreadURL:   t.URL,
		ForumSlug:   t.ForumSlug,
		Type:        string(in.Type),
		Title:       in.Title,
		Confidence:  in.Confidence,
		ExtractedAt: time.Now().UTC(),
	}
	if err := natsutil.Publish(ctx, x.nc, SubjectInsightExtracted, evt); err != nil {
		x.log.Warn("publish insight event", "insight", in.ID, "error", err)
	}
}
