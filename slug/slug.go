package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonTagChars      = regexp.MustCompile("[^a-z0-9-]+")
	repeatedHyphens  = regexp.MustCompile("-+")
	nonCategoryChars = regexp.MustCompile("[^A-Z0-9_]+")
)

// Tag normalizes a free-form string into a tag: lowercase, unicode
// transliterated to ASCII, spaces and underscores hyphenated, everything
// else stripped.
func Tag(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = transliterate(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonTagChars.ReplaceAllString(s, "")
	s = repeatedHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > 100 {
		s = strings.TrimRight(s[:100], "-")
	}

	return s
}

// CategoryName normalizes a category name into UPPER_SNAKE form, e.g.
// "web tools" becomes "WEB_TOOLS".
func CategoryName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = transliterate(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = nonCategoryChars.ReplaceAllString(s, "")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// transliterate converts unicode characters to ASCII equivalents by
// decomposing and dropping nonspacing marks.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
