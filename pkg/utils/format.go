// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatCurrency formats an amount as USD with comma grouping.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	result := s[n-3:]
	s = s[:n-3]
	for len(s) > 3 {
		result = s[len(s)-3:] + "," + result
		s = s[:len(s)-3]
	}
	return s + "," + result
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatCurrency(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatQuantity formats a quantity with comma grouping, trimming a trailing
// fractional part when the quantity is whole.
func FormatQuantity(qty float64) string {
	if qty == float64(int64(qty)) {
		return groupThousands(fmt.Sprintf("%d", int64(qty)))
	}
	return fmt.Sprintf("%.4f", qty)
}

// FormatDate formats a date for display.
func FormatDate(t time.Time) string {
	return t.Format("02-Jan-2006")
}

// FormatTime formats a timestamp for display.
func FormatTime(t time.Time) string {
	return t.Format("02-Jan-2006 15:04")
}
