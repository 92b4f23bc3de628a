// Package bankprofile holds the per-institution pattern and keyword sets the
// recognizer runs against. Behavior differences between banks are entirely
// data: adding a bank means adding one profile entry (or a banks.yaml record),
// never touching the recognition algorithm.
package bankprofile

import (
	"regexp"

	"fmoura/extrato-csv/internal/textutils"
)

// DatePattern is one date regular expression of a profile, tagged with the
// family it belongs to. Date patterns are ordered most specific first; once a
// family produces a match in a document, the recognizer stops trying the
// less specific families for consistency.
type DatePattern struct {
	// Family groups equivalent specificity levels ("line-full", "any-short"...).
	Family string
	// Regexp captures (day, month) or (day, month, year). Year may be two or
	// four digits.
	Regexp *regexp.Regexp
	// HasYear reports whether the third capture group is present.
	HasYear bool
}

// Profile identifies an institution and owns its pattern set. Immutable
// after registration.
type Profile struct {
	ID   string
	Name string
	Code string

	DatePatterns []DatePattern
	ValuePattern *regexp.Regexp

	// Keyword sets are stored folded (lowercase, accents stripped) so the
	// recognizer can match them against folded text directly.
	CreditKeywords []string
	DebitKeywords  []string
}

func foldAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, textutils.Fold(kw))
	}
	return out
}

// brlDatePatterns builds the standard Brazilian date pattern set, most
// specific family first: dates anchored at the start of a line beat dates
// floating anywhere in the text, and full dates beat day/month pairs.
func brlDatePatterns() []DatePattern {
	return []DatePattern{
		{
			Family:  "line-full",
			Regexp:  regexp.MustCompile(`(?m)^[ \t]*(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})\b`),
			HasYear: true,
		},
		{
			Family: "line-short",
			Regexp: regexp.MustCompile(`(?m)^[ \t]*(\d{1,2})/(\d{1,2})(?:[ \t]|$)`),
		},
		{
			Family:  "any-full",
			Regexp:  regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})\b`),
			HasYear: true,
		},
		{
			Family: "any-short",
			Regexp: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`),
		},
	}
}

// brlValuePattern matches Brazilian monetary values: optional R$ prefix,
// optional thousands dots, mandatory two decimal digits after a comma, and
// an optional leading or trailing minus. The recognizer rejects matches
// embedded in longer digit runs.
var brlValuePattern = regexp.MustCompile(`(?i)-?(?:R\$[ \t]*)?\d+(?:\.\d{3})*,\d{2}-?`)
