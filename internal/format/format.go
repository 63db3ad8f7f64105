// Package format renders money, dates and measurements for display.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Currency renders integer cents as US dollars, e.g. 123456 -> "$1,234.56".
func Currency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}

// OptionalCurrency renders a nullable amount, using "—" when absent.
func OptionalCurrency(cents *int64) string {
	if cents == nil {
		return "—"
	}
	return Currency(*cents)
}

// CompactCurrency renders whole dollars with a K/M/B/T suffix, e.g. 250000000 -> "$2.5M".
func CompactCurrency(cents int64) string {
	dollars := float64(cents) / 100
	sign := ""
	if dollars < 0 {
		sign = "-"
		dollars = -dollars
	}
	if dollars < 1000 {
		return sign + "$" + humanize.FtoaWithDigits(dollars, 2)
	}
	v, prefix := humanize.ComputeSI(dollars)
	return sign + "$" + humanize.FtoaWithDigits(v, 1) + moneySuffix(prefix)
}

// moneySuffix maps SI prefixes to the K/M/B/T used for money.
func moneySuffix(prefix string) string {
	if prefix == "G" {
		return "B"
	}
	return strings.ToUpper(prefix)
}

// Date renders a calendar date, e.g. "Mar 5, 2026".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// DateTime renders a date with clock time, e.g. "Mar 5, 2026 3:04 PM".
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// Relative renders t relative to now, e.g. "3 days ago".
func Relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// Height renders inches as feet and inches, e.g. 74 -> 6'2".
func Height(inches int) string {
	if inches <= 0 {
		return ""
	}
	return fmt.Sprintf(`%d'%d"`, inches/12, inches%12)
}

// Weight renders pounds, e.g. 215 -> "215 lbs".
func Weight(lbs int) string {
	if lbs <= 0 {
		return ""
	}
	return humanize.Comma(int64(lbs)) + " lbs"
}
