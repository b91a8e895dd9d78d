package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":              "hello-world",
		"  Go -- Generics  in 2024 ": "go-generics-in-2024",
		"Café Déjà Vu":               "cafe-deja-vu",
		"Łódź Guide":                 "lodz-guide",
		"Straße Notes":               "strasse-notes",
		"Ørsted Wind":                "orsted-wind",
		"Ελληνικά":                   "ελληνικα",
		"Crème brûlée, naïve":        "creme-brulee-naive",
		"!!!":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
	assert.LessOrEqual(t, len(Slugify(strings.Repeat("word ", 60))), maxSlugLen)
	assert.LessOrEqual(t, utf8.RuneCountInString(Slugify(strings.Repeat("λέξη ", 60))), maxSlugLen)
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime(""))
	assert.Equal(t, 1, ReadingTime("<p>short post</p>"))
	assert.Equal(t, 3, ReadingTime(strings.Repeat("word ", 650)))
}

func TestExcerpt(t *testing.T) {
	content := "<h1>Title</h1><p>This **post** covers building a portfolio API in Go with a document store.</p>"
	got := Excerpt(content, 40)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "*")
	assert.Equal(t, "short", Excerpt("short", 40))
}
