package explorer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// entityReplacer resolves the common named entities by exact substring
// replacement. &#39; is included here because it shows up in og: tags far
// more often than any other decimal entity.
var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&nbsp;", " ",
	"&apos;", "'",
	"&#39;", "'",
)

var (
	decimalEntityRe = regexp.MustCompile(`&#(\d+);`)
	hexEntityRe     = regexp.MustCompile(`&#x([0-9A-Fa-f]+);`)
)

// decodeEntities decodes named, decimal, and hexadecimal HTML character
// entities in extracted text. Decimal entities address UTF-16 code units;
// hexadecimal entities address full Unicode code points, so values above
// the basic multilingual plane (emoji) decode to a single rune rather than
// a garbled surrogate pair. Idempotent on text with no remaining entities.
func decodeEntities(text string) string {
	if text == "" {
		return text
	}

	decoded := entityReplacer.Replace(text)

	decoded = decimalEntityRe.ReplaceAllStringFunc(decoded, func(m string) string {
		v, err := strconv.ParseUint(m[2:len(m)-1], 10, 32)
		if err != nil {
			return m
		}
		return string(rune(uint16(v)))
	})

	decoded = hexEntityRe.ReplaceAllStringFunc(decoded, func(m string) string {
		v, err := strconv.ParseUint(m[3:len(m)-1], 16, 32)
		if err != nil || v > uint64(unicode.MaxRune) {
			return m
		}
		return string(rune(v))
	})

	return decoded
}
