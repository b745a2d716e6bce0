// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency formats amount with two decimals, thousands separators and
// the given currency symbol, e.g. "-$1,234.50".
func FormatCurrency(amount float64, symbol string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	// Format with 2 decimal places
	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")

	result := symbol + GroupThousands(parts[0]) + "." + parts[1]
	if negative && str != "0.00" {
		result = "-" + result
	}
	return result
}

// GroupThousands inserts commas every three digits from the right of an
// unsigned integer string.
func GroupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatSigned formats a money amount with an explicit + for gains.
func FormatSigned(amount float64, symbol string) string {
	formatted := FormatCurrency(amount, symbol)
	if amount > 0 && math.Abs(amount) >= 0.005 {
		return "+" + formatted
	}
	return formatted
}
