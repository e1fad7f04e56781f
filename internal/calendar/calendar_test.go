package calendar_test

import (
	"testing"
	"time"

	"echoplan/internal/calendar"
	"echoplan/internal/testutil"
)

func TestNextMonth(t *testing.T) {
	t.Run("within_year", func(t *testing.T) {
		y, m := calendar.NextMonth(2025, 3)
		if y != 2025 || m != 4 {
			t.Errorf("expected (2025, 4), got (%d, %d)", y, m)
		}
	})

	t.Run("december_rolls_over", func(t *testing.T) {
		y, m := calendar.NextMonth(2025, 12)
		if y != 2026 || m != 1 {
			t.Errorf("expected (2026, 1), got (%d, %d)", y, m)
		}
	})

	t.Run("out_of_range_month_is_normalised", func(t *testing.T) {
		y, m := calendar.NextMonth(2025, 13)
		if y != 2026 || m != 2 {
			t.Errorf("expected (2026, 2), got (%d, %d)", y, m)
		}
	})
}

func TestPreviousMonth(t *testing.T) {
	t.Run("within_year", func(t *testing.T) {
		y, m := calendar.PreviousMonth(2025, 3)
		if y != 2025 || m != 2 {
			t.Errorf("expected (2025, 2), got (%d, %d)", y, m)
		}
	})

	t.Run("january_rolls_back", func(t *testing.T) {
		y, m := calendar.PreviousMonth(2025, 1)
		if y != 2024 || m != 12 {
			t.Errorf("expected (2024, 12), got (%d, %d)", y, m)
		}
	})

	t.Run("zero_month_is_normalised", func(t *testing.T) {
		y, m := calendar.PreviousMonth(2025, 0)
		if y != 2024 || m != 11 {
			t.Errorf("expected (2024, 11), got (%d, %d)", y, m)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	for year := 1999; year <= 2031; year++ {
		for month := 1; month <= 12; month++ {
			ny, nm := calendar.NextMonth(year, month)
			py, pm := calendar.PreviousMonth(ny, nm)
			if py != year || pm != month {
				t.Fatalf("previous(next(%d, %d)) = (%d, %d)", year, month, py, pm)
			}
			if nm < 1 || nm > 12 || pm < 1 || pm > 12 {
				t.Fatalf("invalid month produced for (%d, %d)", year, month)
			}
		}
	}
}

func TestRangeEdges(t *testing.T) {
	t.Run("next_saturates_at_max_year", func(t *testing.T) {
		y, m := calendar.NextMonth(calendar.MaxYear, 12)
		if y != calendar.MaxYear || m != 12 {
			t.Errorf("expected (%d, 12), got (%d, %d)", calendar.MaxYear, y, m)
		}
		_, err := calendar.New(y, m)
		testutil.AssertNoError(t, err)
	})

	t.Run("previous_saturates_at_min_year", func(t *testing.T) {
		y, m := calendar.PreviousMonth(calendar.MinYear, 1)
		if y != calendar.MinYear || m != 1 {
			t.Errorf("expected (%d, 1), got (%d, %d)", calendar.MinYear, y, m)
		}
		_, err := calendar.New(y, m)
		testutil.AssertNoError(t, err)
	})

	t.Run("round_trip_inside_range", func(t *testing.T) {
		y, m := calendar.PreviousMonth(calendar.NextMonth(calendar.MaxYear, 11))
		if y != calendar.MaxYear || m != 11 {
			t.Errorf("expected (%d, 11), got (%d, %d)", calendar.MaxYear, y, m)
		}
	})

	t.Run("columns_stop_at_max_year", func(t *testing.T) {
		cols := calendar.Columns(calendar.YearMonth{Year: calendar.MaxYear, Month: 12}, 2)
		if len(cols) != 1 || cols[0] != "9999-12" {
			t.Fatalf("expected only 9999-12, got %v", cols)
		}
		for _, c := range cols {
			_, err := calendar.ParseToken(c)
			testutil.AssertNoError(t, err)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ym, err := calendar.New(2025, 3)
		testutil.AssertNoError(t, err)
		if ym.Token() != "2025-03" {
			t.Errorf("expected token 2025-03, got %s", ym.Token())
		}
	})

	t.Run("month_out_of_range", func(t *testing.T) {
		_, err := calendar.New(2025, 13)
		testutil.AssertAppError(t, err, "INVALID_MONTH")
	})

	t.Run("year_out_of_range", func(t *testing.T) {
		_, err := calendar.New(0, 1)
		testutil.AssertAppError(t, err, "INVALID_MONTH")
	})
}

func TestParseToken(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ym, err := calendar.ParseToken("2024-12")
		testutil.AssertNoError(t, err)
		if ym.Year != 2024 || ym.Month != 12 {
			t.Errorf("expected 2024-12, got %+v", ym)
		}
	})

	for _, token := range []string{"", "2024-13", "2024/01", "24-01", "2024-1x"} {
		token := token
		t.Run("invalid_"+token, func(t *testing.T) {
			_, err := calendar.ParseToken(token)
			testutil.AssertAppError(t, err, "INVALID_MONTH")
		})
	}
}

func TestColumns(t *testing.T) {
	t.Run("wraps_year_boundary", func(t *testing.T) {
		cols := calendar.Columns(calendar.YearMonth{Year: 2025, Month: 11}, 4)
		expected := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
		if len(cols) != len(expected) {
			t.Fatalf("expected %d columns, got %d", len(expected), len(cols))
		}
		for i := range expected {
			if cols[i] != expected[i] {
				t.Errorf("column %d: expected %s, got %s", i, expected[i], cols[i])
			}
		}
	})

	t.Run("zero_count", func(t *testing.T) {
		if cols := calendar.Columns(calendar.YearMonth{Year: 2025, Month: 1}, 0); len(cols) != 0 {
			t.Errorf("expected no columns, got %v", cols)
		}
	})
}

func TestYearMonthHelpers(t *testing.T) {
	ym := calendar.FromTime(time.Date(2025, time.March, 17, 10, 0, 0, 0, time.UTC))
	if ym != (calendar.YearMonth{Year: 2025, Month: 3}) {
		t.Errorf("unexpected month %+v", ym)
	}
	if !ym.Before(ym.Next()) || ym.Next().Before(ym) {
		t.Error("expected Before to order months")
	}
	if ym.Start().Day() != 1 {
		t.Errorf("expected start on day 1, got %d", ym.Start().Day())
	}
}
