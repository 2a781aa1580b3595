package pagemeta_test

import (
	"testing"

	"github.com/raysh454/webshot/internal/pagemeta"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		html string
		want pagemeta.Meta
	}{
		{
			name: "title and description",
			html: `<html><head>
				<title> Example Domain </title>
				<meta name="description" content="An example page">
			</head><body></body></html>`,
			want: pagemeta.Meta{Title: "Example Domain", Description: "An example page"},
		},
		{
			name: "opengraph fallback",
			html: `<html><head>
				<meta property="og:title" content="OG Title">
				<meta property="og:description" content="OG description">
			</head><body></body></html>`,
			want: pagemeta.Meta{Title: "OG Title", Description: "OG description"},
		},
		{
			name: "title element wins over og",
			html: `<html><head>
				<title>Real Title</title>
				<meta property="og:title" content="OG Title">
			</head><body></body></html>`,
			want: pagemeta.Meta{Title: "Real Title"},
		},
		{
			name: "no metadata",
			html: `<html><body><h1>Nothing here</h1></body></html>`,
			want: pagemeta.Meta{},
		},
		{
			name: "empty input",
			html: "",
			want: pagemeta.Meta{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := pagemeta.Extract(tc.html)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tc.want {
				t.Errorf("Extract = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestTitle_MalformedHTMLIsBestEffort(t *testing.T) {
	t.Parallel()
	// html.Parse repairs most damage; Title must never panic and should
	// still find the element when one exists.
	got := pagemeta.Title("<title>Broken</title><div><p>unclosed")
	if got != "Broken" {
		t.Errorf("Title = %q, want Broken", got)
	}
}
