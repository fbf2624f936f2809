package adapter

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// /threads/some-title.12345/ (XenForo)
	xenforoThreadIDRe = regexp.MustCompile(`\.(\d+)/?$`)
	// showthread.php?t=12345 (vBulletin)
	vbulletinThreadIDRe = regexp.MustCompile(`[?&]t=(\d+)`)
)

// NormalizeURL resolves href against base and strips fragments and common
// tracking parameters, so the same thread always yields the same URL.
func NormalizeURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	resolved := b.ResolveReference(u)
	resolved.Fragment = ""

	q := resolved.Query()
	for key := range q {
		if strings.HasPrefix(key, "utm_") || key == "ref" || key == "s" {
			q.Del(key)
		}
	}
	resolved.RawQuery = q.Encode()
	return resolved.String()
}

// ThreadID extracts the numeric thread identifier from a thread URL.
// Returns "" when no recognizable pattern is present.
func ThreadID(threadURL string) string {
	if m := vbulletinThreadIDRe.FindStringSubmatch(threadURL); m != nil {
		return m[1]
	}
	u, err := url.Parse(threadURL)
	if err != nil {
		return ""
	}
	if m := xenforoThreadIDRe.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	return ""
}
