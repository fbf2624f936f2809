package adapter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// junkSelectors are stripped from post bodies before text extraction.
var junkSelectors = []string{
	"blockquote",
	"div.bbCodeBlock",
	"script",
	"style",
	"img",
	"div.signature",
	"div.attachments",
	"div.message-signature",
	"div.message-attachments",
	"div.ad", "div.ads", "ins.adsbygoogle",
}

// boilerplate phrases left behind by forum markup after tag stripping.
var boilerplate = []string{
	"Quote:",
	"Click to expand...",
	"Click to expand…",
	"Originally Posted by",
}

// CleanSelection strips quotes, signatures, ads, scripts, and attachments
// from a post-body selection and returns whitespace-collapsed text.
func CleanSelection(sel *goquery.Selection) string {
	clone := sel.Clone()
	for _, js := range junkSelectors {
		clone.Find(js).Remove()
	}
	return CleanText(clone.Text())
}

// CleanText collapses whitespace and removes common forum boilerplate from
// already-extracted text. "Sent from my ..." mobile signatures are cut at
// the marker.
func CleanText(text string) string {
	for _, b := range boilerplate {
		text = strings.ReplaceAll(text, b, " ")
	}
	if idx := strings.Index(text, "Sent from my "); idx >= 0 {
		text = text[:idx]
	}
	return strings.Join(strings.Fields(text), " ")
}
