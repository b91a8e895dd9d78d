// Package textutil derives slugs, excerpts and reading times from content.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugLen     = 100
	wordsPerMinute = 200
)

var (
	htmlTag    = regexp.MustCompile(`<[^>]*>`)
	slugStrip  = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
	slugDashes = regexp.MustCompile(`[\s-]+`)
	mdSyntax   = regexp.MustCompile("[#*_`>\\[\\]]")
)

// Slugify lower-cases title, folds accented letters to their base letter
// and joins the words with hyphens. Letters with no Latin base, such as
// Greek or Cyrillic, are kept as they are.
func Slugify(title string) string {
	slug := foldAccents(strings.ToLower(title))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if r := []rune(slug); len(r) > maxSlugLen {
		slug = strings.Trim(string(r[:maxSlugLen]), "-")
	}
	return slug
}

func StripHTML(text string) string {
	return htmlTag.ReplaceAllString(text, "")
}

// PlainText removes HTML tags and common markdown markers.
func PlainText(text string) string {
	return strings.Join(strings.Fields(mdSyntax.ReplaceAllString(StripHTML(text), "")), " ")
}

// ReadingTime estimates minutes at 200 words per minute, at least 1.
func ReadingTime(content string) int {
	minutes := len(strings.Fields(StripHTML(content))) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Truncate shortens text to maxLength runes, breaking at a word boundary
// when one is near, and appends an ellipsis.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	truncated := string(runes[:maxLength])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}
	return strings.TrimRightFunc(truncated, unicode.IsPunct) + "..."
}

// Excerpt builds a plain-text summary of content.
func Excerpt(content string, maxLength int) string {
	return Truncate(PlainText(content), maxLength)
}

// Lower-case letters that have no canonical decomposition.
var letterFold = strings.NewReplacer(
	"ß", "ss", "ø", "o", "ł", "l", "đ", "d", "ħ", "h",
	"æ", "ae", "œ", "oe", "þ", "th", "ð", "d", "ı", "i",
)

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return letterFold.Replace(folded)
}
