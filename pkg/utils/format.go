// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatWon formats a won amount with digit grouping, e.g. 49500 -> "49,500".
// Fractional parts are dropped; Korean equity prices are whole won.
func FormatWon(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.0f", amount)
	result := groupThousands(str)
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var sb strings.Builder
	lead := n % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// FormatSignedPercent formats a percentage with an explicit sign,
// e.g. 5 -> "+5.00%", -3.2 -> "-3.20%".
func FormatSignedPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatNetAmount abbreviates a won amount using Korean units:
// 100,000,000 and above in eok ("1.5억"), 10,000 and above in man
// ("3500만"), smaller values with digit grouping.
func FormatNetAmount(amount float64) string {
	negative := amount < 0
	abs := math.Abs(amount)

	var result string
	switch {
	case abs >= 100_000_000:
		result = fmt.Sprintf("%.1f억", abs/100_000_000)
	case abs >= 10_000:
		result = fmt.Sprintf("%.0f만", abs/10_000)
	default:
		result = groupThousands(fmt.Sprintf("%.0f", abs))
	}

	if negative {
		result = "-" + result
	}
	return result
}
