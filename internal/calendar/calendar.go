// Package calendar implements the month arithmetic shared by the period manager
// and the grid projection. Every value it returns is a valid (year, month) pair.
package calendar

import (
	"fmt"
	"time"

	apperrors "echoplan/internal/errors"
)

const (
	MinYear = 1
	MaxYear = 9999

	tokenLayout = "2006-01"
)

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// New validates year and month and returns the pair.
func New(year, month int) (YearMonth, error) {
	ym := YearMonth{Year: year, Month: month}
	if err := ym.Validate(); err != nil {
		return YearMonth{}, err
	}
	return ym, nil
}

// FromTime returns the month containing t.
func FromTime(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Validate checks the month range and the supported year range.
func (ym YearMonth) Validate() error {
	if ym.Month < 1 || ym.Month > 12 {
		return apperrors.WithMessage(apperrors.ErrInvalidMonth,
			fmt.Sprintf("month %d is out of range: must be between 1 and 12", ym.Month))
	}
	if ym.Year < MinYear || ym.Year > MaxYear {
		return apperrors.WithMessage(apperrors.ErrInvalidMonth,
			fmt.Sprintf("year %d is out of range: must be between %d and %d", ym.Year, MinYear, MaxYear))
	}
	return nil
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	y, m := NextMonth(ym.Year, ym.Month)
	return YearMonth{Year: y, Month: m}
}

// Previous returns the preceding month.
func (ym YearMonth) Previous() YearMonth {
	y, m := PreviousMonth(ym.Year, ym.Month)
	return YearMonth{Year: y, Month: m}
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Token returns the "YYYY-MM" column token for ym.
func (ym YearMonth) Token() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// String implements fmt.Stringer.
func (ym YearMonth) String() string { return ym.Token() }

// Start returns midnight UTC on the first day of the month.
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the month after (year, month). Out-of-range months are
// normalised first. The result saturates at MaxYear-12, so it is always a
// valid pair.
func NextMonth(year, month int) (int, int) {
	year, month = normalize(year, month)
	if month == 12 {
		year, month = year+1, 1
	} else {
		month++
	}
	return clamp(year, month)
}

// PreviousMonth returns the month before (year, month). The result saturates
// at MinYear-01.
func PreviousMonth(year, month int) (int, int) {
	year, month = normalize(year, month)
	if month == 1 {
		year, month = year-1, 12
	} else {
		month--
	}
	return clamp(year, month)
}

func clamp(year, month int) (int, int) {
	switch {
	case year > MaxYear:
		return MaxYear, 12
	case year < MinYear:
		return MinYear, 1
	}
	return year, month
}

// normalize folds an out-of-range month into the year, e.g. (2025, 13) -> (2026, 1).
func normalize(year, month int) (int, int) {
	m := month - 1
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	return year, m + 1
}

// ParseToken parses a "YYYY-MM" month token.
func ParseToken(token string) (YearMonth, error) {
	t, err := time.Parse(tokenLayout, token)
	if err != nil {
		return YearMonth{}, apperrors.WithMessage(apperrors.ErrInvalidMonth,
			fmt.Sprintf("invalid month token %q: expected YYYY-MM", token))
	}
	ym := FromTime(t)
	if err := ym.Validate(); err != nil {
		return YearMonth{}, err
	}
	return ym, nil
}

// Columns returns count sequential month tokens starting at start. The
// sequence stops early at the end of the supported year range.
func Columns(start YearMonth, count int) []string {
	if count <= 0 {
		return []string{}
	}
	cols := make([]string, 0, count)
	cur := start
	for i := 0; i < count; i++ {
		cols = append(cols, cur.Token())
		next := cur.Next()
		if next == cur {
			break
		}
		cur = next
	}
	return cols
}
