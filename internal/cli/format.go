package cli

import (
	"fmt"
	"math"
	"strconv"

	"echoplan/internal/money"
)

// FormatAmount formats minor units for a table cell, e.g. "1,234.50".
func FormatAmount(minor int64, currency string) string {
	return money.FormatGrouped(minor, currency)
}

// FormatPercent formats a percentage with at most one decimal, e.g. "112.5%".
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "-"
	}
	if p == math.Trunc(p) {
		return strconv.FormatFloat(p, 'f', 0, 64) + "%"
	}
	return fmt.Sprintf("%.1f%%", p)
}
