package adapter

import (
	"strconv"
	"strings"
	"time"
)

// ParseCount reads forum-style counts: "1,234", "1.2K", "3M", "12". Returns
// 0 when nothing numeric is found.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// strip a leading label like "Replies:" or "Views:"
	if idx := strings.LastIndexByte(s, ':'); idx >= 0 {
		s = strings.TrimSpace(s[idx+1:])
	}
	s = strings.ReplaceAll(s, ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		mult, s = 1e3, s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		mult, s = 1e6, s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(v * mult)
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006 at 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-01-2006, 15:04",
	"01-02-2006, 03:04 PM",
	"2 Jan 2006",
}

// ParseDate reads forum timestamps across ISO, locale, and relative forms
// ("today", "yesterday"). The zero time signals failure; callers treat
// missing dates as absent rather than erroring.
func ParseDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "today"):
		return now.Truncate(24 * time.Hour)
	case strings.HasPrefix(lower, "yesterday"):
		return now.Truncate(24 * time.Hour).AddDate(0, 0, -1)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
