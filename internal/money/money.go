// Package money converts between integer minor units and decimal major
// amounts for display and user input.
package money

import (
	"strings"

	apperrors "echoplan/internal/errors"

	"github.com/shopspring/decimal"
)

// exponents lists currencies whose minor unit is not 1/100 of the major unit.
var exponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

var maxMinor = decimal.New(1, 18)

// Exponent returns the number of decimal places of the currency's minor unit.
func Exponent(currency string) int32 {
	if exp, ok := exponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return 2
}

// ToMajor converts minor units to a decimal amount in major units.
func ToMajor(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Exponent(currency))
}

// Format renders minor units as a plain major-unit string, e.g. "1234.50".
func Format(minor int64, currency string) string {
	return ToMajor(minor, currency).StringFixed(Exponent(currency))
}

// FormatGrouped renders minor units with thousands separators, e.g. "1,234.50".
func FormatGrouped(minor int64, currency string) string {
	s := Format(minor, currency)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}

// Display renders minor units grouped and followed by the currency code,
// e.g. "1,234.50 USD".
func Display(minor int64, currency string) string {
	if currency == "" {
		return FormatGrouped(minor, currency)
	}
	return FormatGrouped(minor, currency) + " " + strings.ToUpper(currency)
}

// Parse converts a user-entered major amount into minor units. Thousands
// separators are accepted; negative amounts and excess precision are rejected.
func Parse(s, currency string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, apperrors.Validationf("amount is required")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrValidation, "invalid amount "+s), err)
	}
	if d.IsNegative() {
		return 0, apperrors.ErrNegativeAmount
	}
	exp := Exponent(currency)
	minor := d.Shift(exp)
	if !minor.IsInteger() {
		return 0, apperrors.Validationf("amount " + s + " has more precision than " + strings.ToUpper(currency) + " allows")
	}
	if minor.GreaterThan(maxMinor) {
		return 0, apperrors.Validationf("amount " + s + " is out of range")
	}
	return minor.IntPart(), nil
}
