// Package textutils provides text normalization and keyword scanning used by
// the transaction recognizer: accent folding, nearest-keyword search, and
// printable-density measurement.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases text and strips combining accent marks, so that
// "Depósito" and "deposito" compare equal. Keyword matching against folded
// text is therefore case- and accent-insensitive.
func Fold(s string) string {
	folded, _, err := transform.String(deaccent, s)
	if err != nil {
		// Fall back to plain lowercasing on malformed input.
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// KeywordHit is one keyword occurrence found near a value.
type KeywordHit struct {
	Keyword  string
	Index    int
	Distance int
}

// Overlaps reports whether the two occurrences share any characters, as a
// prefix keyword and its longer form do when matched at the same position.
func (h KeywordHit) Overlaps(other KeywordHit) bool {
	return h.Index < other.Index+len(other.Keyword) &&
		other.Index < h.Index+len(h.Keyword)
}

// NearestKeyword finds the occurrence of any keyword in text that is closest,
// in character distance, to the span [spanStart, spanEnd). Both text and
// keywords must already be folded. Distance is measured between the nearest
// edges of the keyword occurrence and the span; overlaps count as zero.
// On equal distance the earlier occurrence in the text wins; at the same
// position the longer keyword wins, so a hit always reports the most
// specific keyword matched there.
func NearestKeyword(text string, keywords []string, spanStart, spanEnd int) (KeywordHit, bool) {
	best := KeywordHit{Distance: -1}

	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		offset := 0
		for {
			i := strings.Index(text[offset:], kw)
			if i < 0 {
				break
			}
			start := offset + i
			end := start + len(kw)

			d := 0
			switch {
			case end <= spanStart:
				d = spanStart - end
			case start >= spanEnd:
				d = start - spanEnd
			}

			if best.Distance < 0 || d < best.Distance ||
				(d == best.Distance && start < best.Index) ||
				(d == best.Distance && start == best.Index && len(kw) > len(best.Keyword)) {
				best = KeywordHit{Keyword: kw, Index: start, Distance: d}
			}
			offset = start + 1
		}
	}

	return best, best.Distance >= 0
}

// ContainsAny reports whether any of the folded keywords occurs in the
// folded text.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// PrintableDensity returns the fraction of runes that are letters, digits,
// spaces, or common statement punctuation. Binary garbage from a failed
// text-layer extraction scores low and gets rejected by the plausibility
// check.
func PrintableDensity(s string) float64 {
	total := 0
	printable := 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(`.,-/:;()'"$%&@#!?+=*`, r) {
			printable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(printable) / float64(total)
}
