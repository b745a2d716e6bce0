package cli

import (
	"fmt"
	"strings"
	"time"

	"trading-journal/pkg/utils"
)

// FormatMoney formats an amount in the configured currency.
func FormatMoney(amount float64, currency string) string {
	return utils.FormatCurrency(amount, currency)
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64, currency string) string {
	return utils.FormatSigned(pnl, currency)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	return utils.FormatPercent(value)
}

// FormatPips formats a pip count with sign and one decimal.
func FormatPips(pips float64) string {
	sign := ""
	if pips > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f", sign, pips)
}

// FormatR formats an R-multiple; nil means no stop was set.
func FormatR(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fR", *r)
}

// FormatPrice formats a price with enough decimals for FX quotes.
func FormatPrice(price float64) string {
	if price >= 100 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.5f", price)
}

// FormatDate formats a trade date in loc.
func FormatDate(t time.Time, loc *time.Location, layout string) string {
	if loc != nil {
		t = t.In(loc)
	}
	if layout == "" {
		layout = "2006-01-02"
	}
	return t.Format(layout)
}

// FormatScore renders a 0-100 score as "72/100".
func FormatScore(score int) string {
	return fmt.Sprintf("%d/100", score)
}

// ProgressBar renders pct (0-100) as a fixed-width bar.
func ProgressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
