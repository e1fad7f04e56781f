package money

import (
	"testing"

	"echoplan/internal/testutil"
)

func TestExponent(t *testing.T) {
	tests := []struct {
		currency string
		want     int32
	}{
		{"USD", 2},
		{"usd", 2},
		{"JPY", 0},
		{"KRW", 0},
		{"KWD", 3},
		{"", 2},
	}
	for _, tt := range tests {
		if got := Exponent(tt.currency); got != tt.want {
			t.Errorf("Exponent(%q) = %d, want %d", tt.currency, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	t.Run("two_decimals", func(t *testing.T) {
		if got := Format(123450, "USD"); got != "1234.50" {
			t.Errorf("expected 1234.50, got %s", got)
		}
	})

	t.Run("zero_decimals", func(t *testing.T) {
		if got := Format(1500, "JPY"); got != "1500" {
			t.Errorf("expected 1500, got %s", got)
		}
	})

	t.Run("three_decimals", func(t *testing.T) {
		if got := Format(1005, "BHD"); got != "1.005" {
			t.Errorf("expected 1.005, got %s", got)
		}
	})

	t.Run("zero", func(t *testing.T) {
		if got := Format(0, "USD"); got != "0.00" {
			t.Errorf("expected 0.00, got %s", got)
		}
	})
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		minor    int64
		currency string
		want     string
	}{
		{"grouped", 123456789, "USD", "1,234,567.89 USD"},
		{"small", 5, "USD", "0.05 USD"},
		{"yen", 1234567, "JPY", "1,234,567 JPY"},
		{"negative", -250000, "EUR", "-2,500.00 EUR"},
		{"no_code", 100000, "", "1,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Display(tt.minor, tt.currency); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("valid_amounts", func(t *testing.T) {
		tests := []struct {
			in       string
			currency string
			want     int64
		}{
			{"1234.5", "USD", 123450},
			{"1,234.56", "USD", 123456},
			{" 40 ", "USD", 4000},
			{"0", "USD", 0},
			{"1500", "JPY", 1500},
			{"1.005", "KWD", 1005},
		}
		for _, tt := range tests {
			got, err := Parse(tt.in, tt.currency)
			testutil.AssertNoError(t, err)
			if got != tt.want {
				t.Errorf("Parse(%q, %s) = %d, want %d", tt.in, tt.currency, got, tt.want)
			}
		}
	})

	t.Run("negative_rejected", func(t *testing.T) {
		_, err := Parse("-1.00", "USD")
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")
	})

	t.Run("excess_precision_rejected", func(t *testing.T) {
		_, err := Parse("1.5", "JPY")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		_, err = Parse("1.234", "USD")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("garbage_rejected", func(t *testing.T) {
		_, err := Parse("abc", "USD")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		_, err = Parse("", "USD")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("out_of_range", func(t *testing.T) {
		_, err := Parse("100000000000000000000", "USD")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("round_trip", func(t *testing.T) {
		got, err := Parse(Format(987654, "EUR"), "EUR")
		testutil.AssertNoError(t, err)
		if got != 987654 {
			t.Errorf("expected 987654, got %d", got)
		}
	})
}

func TestFormatGrouped(t *testing.T) {
	if got := FormatGrouped(123456789, "USD"); got != "1,234,567.89" {
		t.Errorf("expected 1,234,567.89, got %s", got)
	}
	if got := FormatGrouped(999, "JPY"); got != "999" {
		t.Errorf("expected 999, got %s", got)
	}
}
