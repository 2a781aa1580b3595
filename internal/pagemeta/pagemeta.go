// Package pagemeta pulls presentation metadata out of captured page HTML.
package pagemeta

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Meta is the displayable metadata of a captured page.
type Meta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Extract parses html and returns its title and description. The <title>
// element wins; OpenGraph tags are the fallback for pages that only carry
// social metadata.
func Extract(html string) (Meta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Meta{}, err
	}

	var m Meta
	m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if m.Title == "" {
		m.Title = metaContent(doc, `meta[property="og:title"]`)
	}

	m.Description = metaContent(doc, `meta[name="description"]`)
	if m.Description == "" {
		m.Description = metaContent(doc, `meta[property="og:description"]`)
	}
	return m, nil
}

// Title returns just the page title, empty on any parse failure. Capture
// treats metadata as best-effort, so there is no error to propagate.
func Title(html string) string {
	m, err := Extract(html)
	if err != nil {
		return ""
	}
	return m.Title
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
