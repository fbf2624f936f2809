package insight

import (
	"fmt"
	"strings"

	"github.com/gearlore/gearlore/engine/forum"
)

// PromptCharLimit bounds the user prompt. Threads longer than this are cut
// with an explicit marker so the model knows content is missing.
const PromptCharLimit = 80000

const truncationMarker = "\n[thread truncated]"

const systemPrompt = `You are an automotive knowledge analyst. You read enthusiast forum threads and extract discrete, verifiable insights about specific vehicles.

Return ONLY a JSON array. Each element must have this shape:
{"type": "...", "title": "...", "summary": "...", "details": "...", "confidence": "high|medium|low", "source_quotes": ["..."], "related_cars": ["make-model-slug"], "tags": ["..."]}

Allowed values for "type": known_issue, maintenance_tip, modification, buying_advice, reliability_report, cost_estimate, comparison, diy_guide, ownership_experience.

Rules:
- Only extract claims supported by the thread text; quote the supporting post verbatim in source_quotes.
- title must be a specific statement, not a topic. summary must stand alone without the thread.
- Use lowercase make-model slugs (e.g. honda-civic) in related_cars.
- If the thread contains no extractable insight, return [].`

// BuildPrompt serializes a thread into the user prompt, bounded by
// PromptCharLimit.
func BuildPrompt(t forum.ScrapedThread) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Forum: %s\nThread: %s\nURL: %s\n", t.ForumSlug, t.Title, t.URL)
	if len(t.CarSlugs) > 0 {
		fmt.Fprintf(&b, "Detected vehicles: %s\n", strings.Join(t.CarSlugs, ", "))
	}
	fmt.Fprintf(&b, "Replies: %d  Views: %d\n\n", t.Replies, t.Views)

	for _, p := range t.Posts {
		role := "reply"
		if p.IsOriginal {
			role = "original post"
		}
		fmt.Fprintf(&b, "--- Post #%d by %s (%s) ---\n%s\n\n", p.Number, p.Author, role, p.Content)
		if b.Len() > PromptCharLimit {
			break
		}
	}

	s := b.String()
	if len(s) > PromptCharLimit {
		s = s[:PromptCharLimit-len(truncationMarker)] + truncationMarker
	}
	return s
}

// EmbeddingInput builds the text embedded for an insight: title, summary,
// details, tags, and related slugs. The embedding client applies its own
// input ceiling.
func EmbeddingInput(in forum.Insight) string {
	parts := []string{in.Title, in.Summary}
	if in.Details != "" {
		parts = append(parts, in.Details)
	}
	if len(in.Tags) > 0 {
		parts = append(parts, strings.Join(in.Tags, " "))
	}
	if len(in.CarSlugs) > 0 {
		parts = append(parts, strings.Join(in.CarSlugs, " "))
	}
	return strings.Join(parts, "\n")
}
