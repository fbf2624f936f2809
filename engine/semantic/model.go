package semantic

import "github.com/google/uuid"

// insightNamespace seeds deterministic point IDs, so re-upserting the same
// insight overwrites its point instead of accumulating duplicates.
var insightNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// PointID derives the stable Qdrant point UUID for an insight ID.
func PointID(insightID string) string {
	return uuid.NewSHA1(insightNamespace, []byte(insightID)).String()
}

// VectorRecord is a single embedding point with its payload.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any // insight_id, type, title, primary_car_slug, forum_slug, confidence
}
