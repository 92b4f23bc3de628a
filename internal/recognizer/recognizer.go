// Package recognizer turns raw page text plus a bank profile into an ordered
// sequence of transactions. It never fails on malformed input: spans that
// match nothing simply produce no transactions.
package recognizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fmoura/extrato-csv/internal/amountutils"
	"fmoura/extrato-csv/internal/bankprofile"
	"fmoura/extrato-csv/internal/dateutils"
	"fmoura/extrato-csv/internal/logging"
	"fmoura/extrato-csv/internal/models"
	"fmoura/extrato-csv/internal/textutils"
)

// Value magnitudes outside this range are treated as stray codes (page
// numbers, document references) rather than money.
var (
	minPlausibleAmount = decimal.NewFromInt(1)
	maxPlausibleAmount = decimal.NewFromInt(50_000_000)
)

// Lines matching any of these are statement furniture, not transactions.
// Patterns are written against folded (lowercase, accent-stripped) text.
var noiseLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`pagina?\s*[:.]?\s*\d+`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^\d+/\d+$`),
	regexp.MustCompile(`^banco\s`),
	regexp.MustCompile(`^extrato\s`),
	regexp.MustCompile(`conta\s+corrente`),
	regexp.MustCompile(`saldo\s+(anterior|atual|final|do\s+dia|disponivel)`),
	regexp.MustCompile(`^total\s`),
	regexp.MustCompile(`^\s*[-=]+\s*$`),
	regexp.MustCompile(`agencia\s*[:.]?\s*\d+`),
	regexp.MustCompile(`cpf\s*[:.]?\s*\d`),
	regexp.MustCompile(`cnpj\s*[:.]?\s*\d`),
	regexp.MustCompile(`\d{12,}`),
}

// Recognizer scans text for dated transaction windows. It is stateful and
// scoped to a single document run: the first date-pattern family that
// matches anywhere in the document locks out the less specific families for
// all later pages, keeping recognition consistent across the whole run.
type Recognizer struct {
	logger  logging.Logger
	profile *bankprofile.Profile

	statementYear int
	yearKnown     bool

	lockedFamily string
}

// New builds a recognizer for one document run. statementYear is the year
// inferred from the document header (see dateutils.InferStatementYear);
// yearKnown=false makes short dates use the sentinel models.UnknownYear.
func New(logger logging.Logger, profile *bankprofile.Profile, statementYear int, yearKnown bool) *Recognizer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Recognizer{
		logger:        logger,
		profile:       profile,
		statementYear: statementYear,
		yearKnown:     yearKnown,
	}
}

// dateAnchor is one valid date match: it opens a capture window that runs
// until the next anchor or the end of the page.
type dateAnchor struct {
	start        int
	date         time.Time
	yearInferred bool
}

// Recognize scans one page's text and returns its transactions in document
// order. page tags the source page index on each emitted transaction.
func (r *Recognizer) Recognize(text string, page int) []models.Transaction {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	anchors := r.findDates(text)
	if len(anchors) == 0 {
		return nil
	}

	var transactions []models.Transaction
	for i, a := range anchors {
		end := len(text)
		if i+1 < len(anchors) {
			end = anchors[i+1].start
		}
		window := text[a.start:end]
		transactions = append(transactions,
			r.recognizeWindow(window, a.date, a.yearInferred, page)...)
	}

	r.logger.Debug("Recognized transactions on page",
		logging.Field{Key: logging.FieldPage, Value: page},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	return transactions
}

// findDates locates all valid date matches using the locked pattern family,
// locking one if none is locked yet. Matches that do not form a real
// calendar date are ignored and do not open windows.
func (r *Recognizer) findDates(text string) []dateAnchor {
	for _, dp := range r.profile.DatePatterns {
		if r.lockedFamily != "" && dp.Family != r.lockedFamily {
			continue
		}

		matches := dp.Regexp.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		var anchors []dateAnchor
		for _, m := range matches {
			date, inferred, ok := r.buildDate(text, m, dp.HasYear)
			if !ok {
				continue
			}
			anchors = append(anchors, dateAnchor{
				start:        m[0],
				date:         date,
				yearInferred: inferred,
			})
		}
		if len(anchors) == 0 {
			continue
		}

		if r.lockedFamily == "" {
			r.lockedFamily = dp.Family
			r.logger.Debug("Locked date pattern family for document",
				logging.Field{Key: "family", Value: dp.Family})
		}
		return anchors
	}
	return nil
}

// buildDate turns a submatch index set into a validated calendar day.
// The bool results are (yearInferred, ok).
func (r *Recognizer) buildDate(text string, m []int, hasYear bool) (time.Time, bool, bool) {
	group := func(i int) string {
		if 2*i+1 >= len(m) || m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}

	day, err := strconv.Atoi(group(1))
	if err != nil {
		return time.Time{}, false, false
	}
	month, err := strconv.Atoi(group(2))
	if err != nil {
		return time.Time{}, false, false
	}

	year := 0
	inferred := false
	switch {
	case hasYear:
		y, err := strconv.Atoi(group(3))
		if err != nil {
			return time.Time{}, false, false
		}
		if len(group(3)) == 2 {
			y = dateutils.ExpandTwoDigitYear(y)
		}
		// A year wildly off the inferred statement year is a misread code;
		// the statement year is more trustworthy.
		if r.yearKnown && abs(y-r.statementYear) > 1 {
			y = r.statementYear
		}
		year = y
	case r.yearKnown:
		year = r.statementYear
		inferred = true
	default:
		year = models.UnknownYear
		inferred = true
	}

	date, ok := dateutils.NewDate(day, month, year)
	if !ok {
		return time.Time{}, false, false
	}
	return date, inferred, true
}

// recognizeWindow extracts every (value, direction) pair inside one date
// window. Values are judged line by line so that noise filters and keyword
// classification stay local to the statement row the value sits on.
func (r *Recognizer) recognizeWindow(window string, date time.Time, yearInferred bool, page int) []models.Transaction {
	var transactions []models.Transaction

	for _, m := range r.profile.ValuePattern.FindAllStringIndex(window, -1) {
		start, end := m[0], m[1]
		if embeddedInDigits(window, start, end) {
			continue
		}

		lineStart := strings.LastIndexByte(window[:start], '\n') + 1
		lineEnd := end + strings.IndexByte(window[end:], '\n')
		if lineEnd < end {
			lineEnd = len(window)
		}
		line := window[lineStart:lineEnd]

		foldedLine := textutils.Fold(line)
		if isNoiseLine(foldedLine) {
			continue
		}

		amount, err := amountutils.ParseBRL(window[start:end])
		if err != nil {
			continue
		}
		magnitude := amount.Abs()
		if magnitude.LessThan(minPlausibleAmount) || magnitude.GreaterThan(maxPlausibleAmount) {
			continue
		}

		// Re-locate the value span in folded coordinates: folding can change
		// byte lengths where accents are stripped, so positions are recomputed
		// from folded prefixes.
		foldedValStart := len(textutils.Fold(window[lineStart:start]))
		foldedValEnd := foldedValStart + len(textutils.Fold(window[start:end]))

		direction, confidence := r.classify(foldedLine, foldedValStart, foldedValEnd, amount)

		transactions = append(transactions, models.Transaction{
			Date:         date,
			YearInferred: yearInferred,
			Amount:       magnitude,
			Direction:    direction,
			Description:  strings.Join(strings.Fields(line), " "),
			Page:         page,
			Confidence:   confidence,
		})
	}

	return transactions
}

// classify resolves a value's direction. The keyword closest in character
// distance to the value wins; an exact tie goes to debit so ambiguous
// entries never inflate totals, unless the tied hits overlap, in which case
// one keyword is a fragment of the other and the longer match decides. With
// no keyword in reach, the canonical value's sign decides, at low confidence.
func (r *Recognizer) classify(foldedLine string, valStart, valEnd int, amount decimal.Decimal) (models.Direction, models.Confidence) {
	credit, creditOK := textutils.NearestKeyword(foldedLine, r.profile.CreditKeywords, valStart, valEnd)
	debit, debitOK := textutils.NearestKeyword(foldedLine, r.profile.DebitKeywords, valStart, valEnd)

	switch {
	case creditOK && debitOK:
		if credit.Distance < debit.Distance {
			return models.DirectionCredit, models.ConfidenceHigh
		}
		if debit.Distance < credit.Distance {
			return models.DirectionDebit, models.ConfidenceHigh
		}
		// Equal distances from overlapping occurrences mean the debit
		// keyword is a prefix of the credit one ("dinheiro guardado" inside
		// "dinheiro guardado resgatado") or vice versa; the longer, more
		// specific match is the real entry type.
		if credit.Overlaps(debit) && len(credit.Keyword) > len(debit.Keyword) {
			return models.DirectionCredit, models.ConfidenceHigh
		}
		return models.DirectionDebit, models.ConfidenceHigh
	case creditOK:
		return models.DirectionCredit, models.ConfidenceHigh
	case debitOK:
		return models.DirectionDebit, models.ConfidenceHigh
	}

	if amountutils.IsNegative(amount) {
		return models.DirectionDebit, models.ConfidenceLow
	}
	return models.DirectionCredit, models.ConfidenceLow
}

// embeddedInDigits rejects value matches that are fragments of a longer
// digit run, such as the tail of an account number.
func embeddedInDigits(text string, start, end int) bool {
	if start > 0 {
		c := text[start-1]
		if c >= '0' && c <= '9' {
			return true
		}
	}
	if end < len(text) {
		c := text[end]
		if c >= '0' && c <= '9' {
			return true
		}
	}
	return false
}

func isNoiseLine(foldedLine string) bool {
	for _, re := range noiseLinePatterns {
		if re.MatchString(foldedLine) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
