package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/gearlore/gearlore/engine/forum"
)

type stubAdapter struct{ name string }

func (s *stubAdapter) Scrape(_ context.Context, _ forum.ForumSource, _ *forum.ScrapeRun, _ Options, _ Sink) (Stats, error) {
	return Stats{}, nil
}

func TestRegistryPlatformLookup(t *testing.T) {
	r := NewRegistry()
	a, err := r.Lookup("anyforum", forum.PlatformXenForo)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.(*XenForo); !ok {
		t.Fatalf("expected XenForo adapter, got %T", a)
	}
	a, err = r.Lookup("anyforum", forum.PlatformVBulletin)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.(*VBulletin); !ok {
		t.Fatalf("expected VBulletin adapter, got %T", a)
	}
}

func TestRegistryForumOverrideWins(t *testing.T) {
	r := NewRegistry()
	custom := &stubAdapter{name: "custom"}
	r.RegisterForum("weirdforum", custom)

	a, err := r.Lookup("weirdforum", forum.PlatformXenForo)
	if err != nil {
		t.Fatal(err)
	}
	if a != custom {
		t.Fatalf("forum override must win, got %T", a)
	}
}

func TestRegistryMissingAdapter(t *testing.T) {
	r := &Registry{
		byPlatform: map[forum.Platform]ForumAdapter{},
		bySlug:     map[string]ForumAdapter{},
	}
	_, err := r.Lookup("x", forum.Platform("phpbb"))
	if !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("expected ErrNoAdapter, got %v", err)
	}
}

func TestVBulletinPageURL(t *testing.T) {
	cases := []struct {
		path string
		page int
		want string
	}{
		{"/forumdisplay.php?f=42", 1, "https://f.example/forumdisplay.php?f=42"},
		{"/forumdisplay.php?f=42", 2, "https://f.example/forumdisplay.php?f=42&page=2"},
		{"/archive/", 3, "https://f.example/archive/?page=3"},
	}
	for _, c := range cases {
		if got := vbulletinPageURL("https://f.example", c.path, c.page); got != c.want {
			t.Errorf("page %d: got %q want %q", c.page, got, c.want)
		}
	}
}

func TestXenForoPageURL(t *testing.T) {
	cases := []struct {
		path string
		page int
		want string
	}{
		{"/forums/issues.10/", 1, "https://f.example/forums/issues.10/"},
		{"/forums/issues.10/", 2, "https://f.example/forums/issues.10/page-2"},
		{"/forums/issues.10", 4, "https://f.example/forums/issues.10/page-4"},
	}
	for _, c := range cases {
		if got := xenforoPageURL("https://f.example", c.path, c.page); got != c.want {
			t.Errorf("page %d: got %q want %q", c.page, got, c.want)
		}
	}
}
