// Package money renders bill amounts for display: a Taka currency string
// and the amount spelled out in English words for printed invoices.
//
// All functions are pure and safe for concurrent use.
package money

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Taka is the only currency bills are issued in.
var Taka = currency.MustParseISO("BDT")

const (
	// CurrencySeparator is a no-break space so the code never wraps away
	// from its digits.
	CurrencySeparator = "\u00a0"

	zeroWords  = "Zero Taka Only"
	wordSuffix = " Taka Only"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders amount as whole Taka with English digit grouping,
// e.g. "BDT 1,250". Fractions are rounded half away from zero. NaN and
// infinities have no sensible rendering and are shown as zero.
//
// Examples:
//   FormatCurrency(250)     -> "BDT 250"
//   FormatCurrency(1234.5)  -> "BDT 1,235"
//   FormatCurrency(-250)    -> "-BDT 250"
func FormatCurrency(amount float64) string {
	n := roundWhole(amount)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + Taka.String() + CurrencySeparator + printer.Sprintf("%d", n)
}

// AmountToWords spells amount for the invoice footer, e.g.
// "Two hundred fifty Taka Only". Zero, NaN and infinities give
// "Zero Taka Only". Fractions are truncated toward zero before spelling.
func AmountToWords(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return zeroWords
	}
	n := clamp(math.Trunc(amount))
	if n == 0 {
		return zeroWords
	}
	return capitalize(Words(n)) + wordSuffix
}

func roundWhole(amount float64) int64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	d := decimal.NewFromFloat(amount).Round(0)
	f, _ := d.Float64()
	return clamp(f)
}

// clamp converts f to int64, saturating at the int64 bounds.
func clamp(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64 + 1
	}
	return int64(f)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
