package insight

import "time"

// SubjectInsightExtracted is the NATS subject for persisted insights.
const SubjectInsightExtracted = "gearlore.insight.extracted"

// InsightExtractedEvent is published after each insight is persisted.
type InsightExtractedEvent struct {
	InsightID   string    `json:"insight_id"`
	ThreadURL   string    `json:"thread_url"`
	ForumSlug   string    `json:"forum_slug"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Confidence  float64   `json:"confidence"`
	ExtractedAt time.Time `json:"extracted_at"`
}
