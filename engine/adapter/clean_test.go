package adapter

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func selFromHTML(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc.Find("div.post").First()
}

func TestCleanSelectionStripsJunk(t *testing.T) {
	html := `<div class="post">
		<blockquote>quoted stuff that must go</blockquote>
		<script>alert(1)</script>
		<img src="x.jpg">
		<div class="signature">my sig</div>
		Real    content
		stays   here.
	</div>`
	got := CleanSelection(selFromHTML(t, html))
	if got != "Real content stays here." {
		t.Fatalf("got %q", got)
	}
}

func TestCleanSelectionStripsBBCodeQuotes(t *testing.T) {
	html := `<div class="post"><div class="bbCodeBlock">nested quote</div>useful answer follows</div>`
	got := CleanSelection(selFromHTML(t, html))
	if got != "useful answer follows" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanTextBoilerplate(t *testing.T) {
	got := CleanText("Quote: something Click to expand... the real text")
	if got != "something the real text" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanTextMobileSignature(t *testing.T) {
	got := CleanText("Good advice here. Sent from my iPhone using Tapatalk")
	if got != "Good advice here." {
		t.Fatalf("got %q", got)
	}
}
