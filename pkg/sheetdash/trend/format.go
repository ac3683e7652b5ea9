package trend

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// CurrencySymbol is the standard symbol for Australian dollars.
	CurrencySymbol = "A$"
	// NarrowCurrencySymbol is used in compact figures.
	NarrowCurrencySymbol = "$"
)

var compactSuffixes = []string{"", "K", "M", "B", "T"}

var printer = message.NewPrinter(language.English)

// FormatCompact renders v with three significant digits and a K/M/B/T suffix,
// e.g. 1234 -> "1.23K", 999999 -> "1M".
func FormatCompact(v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	idx := 0
	for v >= 1000 && idx < len(compactSuffixes)-1 {
		v /= 1000
		idx++
	}
	v = roundSignificant(v, 3)
	if v >= 1000 && idx < len(compactSuffixes)-1 {
		v = roundSignificant(v/1000, 3)
		idx++
	}

	return sign + strconv.FormatFloat(v, 'f', -1, 64) + compactSuffixes[idx]
}

// FormatCompactCurrency renders v as a compact dollar figure, e.g. "$1.23M".
func FormatCompactCurrency(v float64) string {
	s := FormatCompact(v)
	if v < 0 {
		return "-" + NarrowCurrencySymbol + s[1:]
	}
	return NarrowCurrencySymbol + s
}

// FormatCurrency renders v in Australian dollars. Amounts of a million or
// more are shown compact ("A$1.23M"), smaller ones with two decimals and
// thousands grouping ("A$1,234.50").
func FormatCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	abs := math.Abs(v)
	if abs >= 1_000_000 {
		return sign + CurrencySymbol + FormatCompact(abs)
	}
	return sign + CurrencySymbol + printer.Sprintf("%.2f", abs)
}

// roundSignificant rounds v (> 0) to n significant digits.
func roundSignificant(v float64, n int) float64 {
	if v == 0 {
		return 0
	}
	digits := n - int(math.Floor(math.Log10(v))) - 1
	factor := math.Pow(10, float64(digits))
	return math.Round(v*factor) / factor
}
