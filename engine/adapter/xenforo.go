package adapter

import (
	"fmt"
	"log/slog"
	"strings"
)

// XenForo scrapes XenForo-family forums. List pages paginate as
// /forums/name.12/page-2.
type XenForo struct {
	*htmlAdapter
}

// NewXenForo builds the XenForo platform adapter.
func NewXenForo(log *slog.Logger) *XenForo {
	return &XenForo{htmlAdapter: newHTMLAdapter(xenforoPageURL, log)}
}

func xenforoPageURL(baseURL, path string, page int) string {
	u := strings.TrimSuffix(baseURL, "/") + path
	if page <= 1 {
		return u
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return fmt.Sprintf("%spage-%d", u, page)
}
