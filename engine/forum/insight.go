package forum

import "time"

// InsightType is the closed set of insight categories the extractor may
// produce. Anything outside this enum fails validation.
type InsightType string

const (
	InsightKnownIssue          InsightType = "known_issue"
	InsightMaintenanceTip      InsightType = "maintenance_tip"
	InsightModification        InsightType = "modification"
	InsightBuyingAdvice        InsightType = "buying_advice"
	InsightReliabilityReport   InsightType = "reliability_report"
	InsightCostEstimate        InsightType = "cost_estimate"
	InsightComparison          InsightType = "comparison"
	InsightDIYGuide            InsightType = "diy_guide"
	InsightOwnershipExperience InsightType = "ownership_experience"
)

// ValidInsightType reports whether t is in the allowed enum.
func ValidInsightType(t InsightType) bool {
	switch t {
	case InsightKnownIssue, InsightMaintenanceTip, InsightModification,
		InsightBuyingAdvice, InsightReliabilityReport, InsightCostEstimate,
		InsightComparison, InsightDIYGuide, InsightOwnershipExperience:
		return true
	}
	return false
}

// Insight is one validated fact or claim extracted from forum discussion.
type Insight struct {
	ID             string      `json:"id"`
	Type           InsightType `json:"type"`
	Title          string      `json:"title"`
	Summary        string      `json:"summary"`
	Details        string      `json:"details,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	SourceQuotes   []string    `json:"source_quotes,omitempty"`
	CarSlugs       []string    `json:"car_slugs,omitempty"`
	PrimaryCarSlug string      `json:"primary_car_slug"`
	Confidence     float64     `json:"confidence"`
	Consensus      string      `json:"consensus,omitempty"`
	SourceCount    int         `json:"source_count"`
	ForumSlug      string      `json:"forum_slug"`
	SourceURLs     []string    `json:"source_urls,omitempty"`
	Embedding      []float32   `json:"-"`
	Active         bool        `json:"active"`
	Verified       bool        `json:"verified"`
	CreatedAt      time.Time   `json:"created_at"`
}

// InsightSource is the provenance link from an insight back to the thread
// it came from. One row per (insight, thread) pair.
type InsightSource struct {
	InsightID string   `json:"insight_id"`
	ThreadURL string   `json:"thread_url"`
	ForumSlug string   `json:"forum_slug"`
	Relevance float64  `json:"relevance"`
	Quotes    []string `json:"quotes,omitempty"`
}
