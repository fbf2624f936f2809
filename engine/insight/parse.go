package insight

import (
	"encoding/json"
	"regexp"
)

var (
	fencedArrayRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\[.*?\\])\\s*\\n?```")
	bareArrayRe   = regexp.MustCompile(`(?s)(\[.*\])`)
)

// ParseInsights pulls the JSON insight array out of a model response that
// may wrap it in prose or a markdown fence. No array, or an array that does
// not decode, means zero insights rather than an error.
func ParseInsights(text string) []RawInsight {
	jsonText := ""
	if m := fencedArrayRe.FindStringSubmatch(text); m != nil {
		jsonText = m[1]
	} else if m := bareArrayRe.FindStringSubmatch(text); m != nil {
		jsonText = m[1]
	}
	if jsonText == "" {
		return nil
	}

	var raws []RawInsight
	if err := json.Unmarshal([]byte(jsonText), &raws); err != nil {
		return nil
	}
	return raws
}
