package cli

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any amount, FormatMoney should:
// 1. Start with the currency symbol (or - and the symbol when negative)
// 2. Have exactly 2 decimal places
// 3. Group the integer part in threes
// 4. Preserve the value to the cent when parsed back
func TestProperty_CurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	grouped := regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)

	properties.Property("FormatMoney produces grouped two-decimal output", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatMoney(amount, "$")

			body := strings.TrimPrefix(formatted, "-")
			if !strings.HasPrefix(body, "$") {
				t.Logf("Expected $ prefix for %f, got %s", amount, formatted)
				return false
			}
			if strings.HasPrefix(formatted, "-") && amount >= 0 {
				t.Logf("Unexpected sign for %f, got %s", amount, formatted)
				return false
			}

			parts := strings.Split(strings.TrimPrefix(body, "$"), ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}
			if !grouped.MatchString(parts[0]) {
				t.Logf("Invalid grouping for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatMoney preserves value", prop.ForAll(
		func(amount float64) bool {
			parsed := parseMoney(FormatMoney(amount, "$"))
			rounded := math.Round(amount*100) / 100
			if math.Abs(parsed-rounded) > 0.01 {
				t.Logf("Value not preserved: original=%f, parsed=%f", amount, parsed)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatPnL marks gains with +", prop.ForAll(
		func(pnl float64) bool {
			formatted := FormatPnL(pnl, "€")
			if pnl >= 0.005 {
				return strings.HasPrefix(formatted, "+€")
			}
			return !strings.HasPrefix(formatted, "+")
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("FormatPercent produces correct format", prop.ForAll(
		func(value float64) bool {
			formatted := FormatPercent(value)
			if !strings.HasSuffix(formatted, "%") {
				t.Logf("Expected %% suffix for %f, got %s", value, formatted)
				return false
			}
			if value > 0 && !strings.HasPrefix(formatted, "+") {
				t.Logf("Expected + prefix for positive %f, got %s", value, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-100, 100),
	))

	properties.Property("ProgressBar has fixed width", prop.ForAll(
		func(pct int) bool {
			return len([]rune(ProgressBar(pct, 20))) == 20
		},
		gen.IntRange(-50, 150),
	))

	properties.TestingRun(t)
}

// parseMoney parses FormatMoney output back to float64.
func parseMoney(s string) float64 {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	if negative {
		v = -v
	}
	return v
}

func TestCurrencyFormatExamples(t *testing.T) {
	testCases := []struct {
		amount   float64
		expected string
	}{
		{0, "$0.00"},
		{1, "$1.00"},
		{100, "$100.00"},
		{1000, "$1,000.00"},
		{100000, "$100,000.00"},
		{10000000, "$10,000,000.00"},
		{-1234.56, "-$1,234.56"},
		{-0.001, "$0.00"},
		{12345678.90, "$12,345,678.90"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatMoney(tc.amount, "$")
			if result != tc.expected {
				t.Errorf("FormatMoney(%f) = %s, want %s", tc.amount, result, tc.expected)
			}
		})
	}
}

func TestFormatPercentExamples(t *testing.T) {
	testCases := []struct {
		value    float64
		expected string
	}{
		{0, "0.00%"},
		{1.5, "+1.50%"},
		{-2.5, "-2.50%"},
		{100, "+100.00%"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatPercent(tc.value)
			if result != tc.expected {
				t.Errorf("FormatPercent(%f) = %s, want %s", tc.value, result, tc.expected)
			}
		})
	}
}

func TestFormatRAndPips(t *testing.T) {
	r := 1.5
	if got := FormatR(&r); got != "1.50R" {
		t.Errorf("FormatR = %s", got)
	}
	if got := FormatR(nil); got != "-" {
		t.Errorf("FormatR(nil) = %s", got)
	}
	if got := FormatPips(-20); got != "-20.0" {
		t.Errorf("FormatPips = %s", got)
	}
}
