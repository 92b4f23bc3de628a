// Package amountutils normalizes Brazilian-formatted monetary text to
// canonical decimal values.
package amountutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyRe   = regexp.MustCompile(`(?i)R\$|\s|\x{00A0}`)
	parenWrapRe  = regexp.MustCompile(`^\((.+)\)$`)
	trailingNegRe = regexp.MustCompile(`^(.+?)-$`)
)

// ParseBRL parses a Brazilian-formatted amount string ("R$ 1.234,56",
// "1.234,56-", "(123,45)", "-200,00") into a canonical decimal.
// Thousands dots are stripped, the decimal comma becomes a point, and a
// leading minus, trailing minus, or wrapping parentheses mark the value
// negative.
func ParseBRL(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, fmt.Errorf("empty amount string")
	}

	standardized := Standardize(amountStr)

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// Standardize converts Brazilian currency text to a form that
// decimal.NewFromString accepts. It does not validate that the result
// parses; ParseBRL does that.
func Standardize(amountStr string) string {
	s := currencyRe.ReplaceAllString(amountStr, "")

	negative := false
	if m := parenWrapRe.FindStringSubmatch(s); m != nil {
		negative = true
		s = m[1]
	}
	if m := trailingNegRe.FindStringSubmatch(s); m != nil {
		negative = true
		s = m[1]
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	if strings.Contains(s, ",") {
		// Brazilian format: dot is a thousands separator, comma is decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	if negative {
		s = "-" + s
	}
	return s
}

// FormatBRL renders a canonical decimal back in Brazilian notation with two
// decimal places ("1234.56" -> "1.234,56").
func FormatBRL(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := strings.Join(groups, ".") + "," + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

// IsNegative reports whether an amount is below zero.
func IsNegative(amount decimal.Decimal) bool {
	return amount.LessThan(decimal.Zero)
}
