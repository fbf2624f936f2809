package insight

import (
	"github.com/gearlore/gearlore/engine/forum"
)

// Minimum content lengths for an insight to be worth keeping. Anything
// shorter is model filler, not a usable fact.
const (
	MinTitleLen   = 10
	MinSummaryLen = 20
)

// RawInsight is the JSON shape the language model returns, before
// validation. Confidence is categorical here; it is never persisted as-is.
type RawInsight struct {
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Details      string   `json:"details"`
	Confidence   string   `json:"confidence"`
	SourceQuotes []string `json:"source_quotes"`
	RelatedCars  []string `json:"related_cars"`
	Tags         []string `json:"tags"`
}

// Validate applies the hard acceptance gate: type must be in the closed
// enum, title and summary must meet minimum lengths. Rejects are dropped by
// the caller, never retried.
func Validate(raw RawInsight) error {
	if !forum.ValidInsightType(forum.InsightType(raw.Type)) {
		return NewValidationError("type", raw.Type, ErrInvalidType)
	}
	if len(raw.Title) < MinTitleLen {
		return NewValidationError("title", raw.Title, ErrTitleTooShort)
	}
	if len(raw.Summary) < MinSummaryLen {
		return NewValidationError("summary", raw.Summary, ErrSummaryTooShort)
	}
	return nil
}

// ConfidenceScore maps the model's categorical confidence to the stored
// numeric value. Unrecognized labels get the medium default.
func ConfidenceScore(label string) float64 {
	switch label {
	case "high":
		return 0.9
	case "medium":
		return 0.7
	case "low":
		return 0.5
	default:
		return 0.7
	}
}
