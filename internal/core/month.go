package core

import (
	"fmt"
	"strconv"
	"strings"
)

// YearMonth is a calendar month. The zero value means "absent".
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// InvalidDateError reports a month outside [1,12] or an unparseable year-month.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid year-month %q: %s", e.Input, e.Reason)
}

func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidMonth
}

// NewYearMonth validates and builds a YearMonth.
func NewYearMonth(year, month int) (YearMonth, error) {
	if month < 1 || month > 12 {
		return YearMonth{}, &InvalidDateError{
			Input:  fmt.Sprintf("%d-%d", year, month),
			Reason: "month out of range",
		}
	}
	return YearMonth{Year: year, Month: month}, nil
}

// MustYearMonth is NewYearMonth for literals known to be valid.
func MustYearMonth(year, month int) YearMonth {
	ym, err := NewYearMonth(year, month)
	if err != nil {
		panic(err)
	}
	return ym
}

// ParseYearMonth accepts "YYYY-MM" and the unpadded "YYYY-M".
func ParseYearMonth(s string) (YearMonth, error) {
	raw := s
	s = strings.TrimSpace(s)
	y, m, ok := strings.Cut(s, "-")
	if !ok || y == "" || m == "" {
		return YearMonth{}, &InvalidDateError{Input: raw, Reason: "expected YYYY-MM"}
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return YearMonth{}, &InvalidDateError{Input: raw, Reason: "year is not a number"}
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return YearMonth{}, &InvalidDateError{Input: raw, Reason: "month is not a number"}
	}
	if month < 1 || month > 12 {
		return YearMonth{}, &InvalidDateError{Input: raw, Reason: "month out of range"}
	}
	return YearMonth{Year: year, Month: month}, nil
}

// ParseOptionalYearMonth maps an empty string to the absent value.
func ParseOptionalYearMonth(s string) (YearMonth, error) {
	if strings.TrimSpace(s) == "" {
		return YearMonth{}, nil
	}
	return ParseYearMonth(s)
}

// IsZero reports whether the value is absent.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

func (ym YearMonth) Validate() error {
	if ym.Month < 1 || ym.Month > 12 {
		return &InvalidDateError{Input: ym.raw(), Reason: "month out of range"}
	}
	return nil
}

// String renders YYYY-MM, or "" when absent.
func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

func (ym YearMonth) raw() string {
	return fmt.Sprintf("%d-%d", ym.Year, ym.Month)
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(b []byte) error {
	parsed, err := ParseOptionalYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// MonthIndex maps a calendar month onto a comparable integer: year*12 + (month-1).
func MonthIndex(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, &InvalidDateError{
			Input:  fmt.Sprintf("%d-%d", year, month),
			Reason: "month out of range",
		}
	}
	return year*12 + (month - 1), nil
}

// Index is MonthIndex for ym.
func (ym YearMonth) Index() (int, error) {
	return MonthIndex(ym.Year, ym.Month)
}

// MonthsBetween returns index(a) - index(b). Zero means the same month.
func MonthsBetween(a, b YearMonth) (int, error) {
	ia, err := a.Index()
	if err != nil {
		return 0, err
	}
	ib, err := b.Index()
	if err != nil {
		return 0, err
	}
	return ia - ib, nil
}

// Advance returns the month delta months after ym. Negative deltas go back in time.
func Advance(ym YearMonth, delta int) (YearMonth, error) {
	idx, err := ym.Index()
	if err != nil {
		return YearMonth{}, err
	}
	return fromIndex(idx + delta), nil
}

// fromIndex inverts MonthIndex using floor division so negative indexes work.
func fromIndex(idx int) YearMonth {
	year := idx / 12
	rem := idx % 12
	if rem < 0 {
		rem += 12
		year--
	}
	return YearMonth{Year: year, Month: rem + 1}
}
