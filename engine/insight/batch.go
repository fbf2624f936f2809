package insight

import (
	"context"

	"github.com/gearlore/gearlore/engine/forum"
)

// BatchStats aggregates one ProcessPending pass.
type BatchStats struct {
	ThreadsProcessed  int
	ThreadsFailed     int
	InsightsExtracted int
	InsightsRejected  int
	InputTokens       int
	OutputTokens      int
	CostUSD           float64
}

// approxTokens estimates tokens when the provider omits usage. Four chars
// per token is close enough for cost tracking.
func approxTokens(chars int) int {
	return chars / 4
}

// ProcessPending pulls pending threads by descending relevance and extracts
// insights from each. Per-thread failures are isolated: the thread is marked
// failed and the loop continues. Only the initial store read can fail the
// batch.
func (x *Extractor) ProcessPending(ctx context.Context) (BatchStats, error) {
	var stats BatchStats

	threads, err := x.store.GetPendingThreads(ctx, x.cfg.BatchLimit)
	if err != nil {
		return stats, err
	}
	x.log.Info("extraction batch started", "threads", len(threads))

	for _, t := range threads {
		res, err := x.ExtractFromThread(ctx, t)

		stats.InsightsRejected += res.Rejected
		in, out := res.Usage.InputTokens, res.Usage.OutputTokens
		if in == 0 && out == 0 && res.PromptChars > 0 {
			in = approxTokens(res.PromptChars)
		}
		stats.InputTokens += in
		stats.OutputTokens += out
		stats.CostUSD += float64(in)*x.cfg.InputPricePerMTok/1e6 +
			float64(out)*x.cfg.OutputPricePerMTok/1e6

		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.ThreadsFailed++
			x.log.Error("thread extraction failed", "thread", t.URL, "error", err)
			if serr := x.store.UpdateThreadStatus(ctx, t.URL, forum.ProcessingFailed); serr != nil {
				x.log.Error("mark thread failed", "thread", t.URL, "error", serr)
			}
			continue
		}

		stats.ThreadsProcessed++
		stats.InsightsExtracted += len(res.Insights)
		if serr := x.store.UpdateThreadStatus(ctx, t.URL, forum.ProcessingCompleted); serr != nil {
			x.log.Error("mark thread completed", "thread", t.URL, "error", serr)
		}
		x.log.Info("thread extracted", "thread", t.URL,
			"insights", len(res.Insights), "rejected", res.Rejected)
	}

	x.record(stats)
	x.log.Info("extraction batch finished",
		"processed", stats.ThreadsProcessed, "failed", stats.ThreadsFailed,
		"insights", stats.InsightsExtracted, "rejected", stats.InsightsRejected,
		"cost_usd", stats.CostUSD)
	return stats, nil
}

func (x *Extractor) record(stats BatchStats) {
	if x.reg == nil {
		return
	}
	x.reg.Counter("extractor_threads_processed_total", "Threads fully extracted").
		Add(int64(stats.ThreadsProcessed))
	x.reg.Counter("extractor_threads_failed_total", "Threads that exhausted extraction retries").
		Add(int64(stats.ThreadsFailed))
	x.reg.Counter("extractor_insights_total", "Insights persisted").
		Add(int64(stats.InsightsExtracted))
	x.reg.Counter("extractor_insights_rejected_total", "Insights dropped by validation").
		Add(int64(stats.InsightsRejected))
	x.reg.Counter("extractor_input_tokens_total", "Input tokens consumed").
		Add(int64(stats.InputTokens))
	x.reg.Counter("extractor_output_tokens_total", "Output tokens consumed").
		Add(int64(stats.OutputTokens))
	x.reg.Counter("extractor_cost_microusd_total", "Accumulated provider cost in micro-USD").
		Add(int64(stats.CostUSD * 1e6))
}
