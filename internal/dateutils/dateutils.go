// Package dateutils provides date parsing and statement-year inference for
// Brazilian bank statements, where dates appear as DD/MM/YYYY, DD/MM/YY or
// bare DD/MM with the year implied by the statement header.
package dateutils

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

// DateLayoutBR is the display layout used on Brazilian statements.
const DateLayoutBR = "02/01/2006"

// Years outside this window are treated as noise (document codes, account
// numbers) rather than statement dates.
const (
	MinStatementYear = 2000
	MaxStatementYear = 2100
)

// Header patterns that carry the statement's year, tried most reliable first.
var headerYearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)per[ií]odo\D{0,10}\d{1,2}/\d{1,2}/(\d{4})`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/(\d{4})\s*a\s*\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`(?i)extrato\D{0,40}(\d{4})`),
	regexp.MustCompile(`(?i)movimenta[çc][ãa]o\D{0,40}(\d{4})`),
	regexp.MustCompile(`(\d{4})\s*-\s*\d{1,2}\b`),
}

var fullDateRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

// NewDate builds a calendar day in UTC after validating it exists
// (rejecting 31/02 and the like).
func NewDate(day, month, year int) (time.Time, bool) {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

// ExpandTwoDigitYear maps a two-digit year to 20XX for values up to 50 and
// 19XX above, matching how recent statements abbreviate years.
func ExpandTwoDigitYear(yy int) int {
	if yy <= 50 {
		return 2000 + yy
	}
	return 1900 + yy
}

// InferStatementYear determines the year a statement covers from its text.
// Header patterns win; otherwise the most frequent year among full dates is
// used, preferring the more recent year on a frequency tie. Returns false
// when the text carries no usable year at all.
func InferStatementYear(text string) (int, bool) {
	for _, re := range headerYearPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			year, err := strconv.Atoi(m[len(m)-1])
			if err == nil && year >= MinStatementYear && year <= MaxStatementYear {
				return year, true
			}
		}
	}

	freq := map[int]int{}
	for _, m := range fullDateRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < MinStatementYear || year > MaxStatementYear {
			continue
		}
		if _, ok := NewDate(day, month, year); ok {
			freq[year]++
		}
	}
	if len(freq) == 0 {
		return 0, false
	}

	years := make([]int, 0, len(freq))
	for y := range freq {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool {
		if freq[years[i]] != freq[years[j]] {
			return freq[years[i]] > freq[years[j]]
		}
		return years[i] > years[j]
	})
	return years[0], true
}

// FormatBR renders a date in the DD/MM/YYYY layout statements use.
func FormatBR(date time.Time) string {
	return date.Format(DateLayoutBR)
}
