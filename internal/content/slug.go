package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after canonical decomposition, so
// "Ångström" slugifies to "angstrom" rather than dropping the letters.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL-safe slug from a filename stem or title.
//
// Diacritics are stripped, everything is lowercased, and any run of
// non-alphanumeric characters collapses into a single hyphen.
func Slugify(raw string) string {
	folded, _, err := transform.String(stripMarks, raw)
	if err != nil {
		// Transform failure leaves the input usable as-is; fall through
		// to the character filter below.
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
