package adapter

import (
	"strings"

	"github.com/gearlore/gearlore/engine/forum"
)

// RelevanceFloor is the minimum score a thread needs for a detail fetch.
// Unlike the bonus constants it is not per-forum tunable.
const RelevanceFloor = 0.15

// ScoreConfig holds the relevance-score tuning values. These are product
// tuning, not structural invariants, so they live in configuration.
type ScoreConfig struct {
	PatternIncrement float64
	TwoMatchBonus    float64
	ThreeMatchBonus  float64

	// engagement tiers, checked highest first
	RepliesHigh, RepliesMid, RepliesLow float64 // >100, >20, >5
	ViewsHigh, ViewsMid, ViewsLow       float64 // >10000, >1000, >100

	HighValueBonus   float64
	HighValuePhrases []string
}

// DefaultScoreConfig returns the stock tuning.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		PatternIncrement: 0.15,
		TwoMatchBonus:    0.10,
		ThreeMatchBonus:  0.15,
		RepliesHigh:      0.20,
		RepliesMid:       0.10,
		RepliesLow:       0.05,
		ViewsHigh:        0.15,
		ViewsMid:         0.10,
		ViewsLow:         0.05,
		HighValueBonus:   0.20,
		HighValuePhrases: []string{
			"complete guide", "definitive guide", "buyer's guide",
			"buying guide", "checklist", "long term review",
			"long-term review", "what to look for", "lessons learned",
			"everything you need to know",
		},
	}
}

// Score estimates how valuable a thread is from its title and engagement
// numbers. Any exclude-pattern match short-circuits to 0; otherwise include
// matches, reply/view tiers, and high-value phrases accumulate, clamped to
// [0, 1].
func Score(title string, replies, views int, filters forum.ThreadFilters, cfg ScoreConfig) float64 {
	lower := strings.ToLower(title)

	for _, p := range filters.TitleExclude {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return 0
		}
	}

	score := 0.0
	matches := 0
	for _, p := range filters.TitleInclude {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			matches++
			score += cfg.PatternIncrement
		}
	}
	switch {
	case matches >= 3:
		score += cfg.ThreeMatchBonus
	case matches == 2:
		score += cfg.TwoMatchBonus
	}

	switch {
	case replies > 100:
		score += cfg.RepliesHigh
	case replies > 20:
		score += cfg.RepliesMid
	case replies > 5:
		score += cfg.RepliesLow
	}

	switch {
	case views > 10000:
		score += cfg.ViewsHigh
	case views > 1000:
		score += cfg.ViewsMid
	case views > 100:
		score += cfg.ViewsLow
	}

	for _, p := range cfg.HighValuePhrases {
		if strings.Contains(lower, p) {
			score += cfg.HighValueBonus
			break
		}
	}

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
