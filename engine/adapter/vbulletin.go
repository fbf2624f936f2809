package adapter

import (
	"fmt"
	"log/slog"
	"strings"
)

// VBulletin scrapes vBulletin-family forums. List pages paginate as
// forumdisplay.php?f=42&page=2.
type VBulletin struct {
	*htmlAdapter
}

// NewVBulletin builds the vBulletin platform adapter.
func NewVBulletin(log *slog.Logger) *VBulletin {
	return &VBulletin{htmlAdapter: newHTMLAdapter(vbulletinPageURL, log)}
}

func vbulletinPageURL(baseURL, path string, page int) string {
	u := strings.TrimSuffix(baseURL, "/") + path
	if page <= 1 {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", u, sep, page)
}
