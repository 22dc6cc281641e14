// Package date validates and parses deadlines written as DD/MM/YYYY.
//
// February has 29 days when the year is divisible by 4 and 28 otherwise.
// April, June, September and November have 30 days; every other month has 31.
// The same rule is used for validation, editing and deadline ordering.
package date

import (
	"errors"
	"fmt"
)

// Layout is the only accepted textual form.
const Layout = "DD/MM/YYYY"

// ErrFormat reports text that is not a valid DD/MM/YYYY date.
var ErrFormat = errors.New("invalid date format")

// Date is a calendar day. The zero value is not a valid date.
type Date struct {
	Day   int
	Month int
	Year  int
}

// Validate reports whether s is a valid date. It never fails loudly.
func Validate(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse converts s into a Date or returns an error wrapping ErrFormat.
func Parse(s string) (Date, error) {
	if len(s) != len(Layout) {
		return Date{}, fmt.Errorf("%w: %q must be %d characters", ErrFormat, s, len(Layout))
	}
	for i := 0; i < len(s); i++ {
		if i == 2 || i == 5 {
			if s[i] != '/' {
				return Date{}, fmt.Errorf("%w: %q expects '/' at position %d", ErrFormat, s, i)
			}
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return Date{}, fmt.Errorf("%w: %q expects a digit at position %d", ErrFormat, s, i)
		}
	}

	d := Date{
		Day:   digits(s[0:2]),
		Month: digits(s[3:5]),
		Year:  digits(s[6:10]),
	}
	if d.Month < 1 || d.Month > 12 {
		return Date{}, fmt.Errorf("%w: month %d out of range", ErrFormat, d.Month)
	}
	if d.Year < 1 {
		return Date{}, fmt.Errorf("%w: year must be positive", ErrFormat)
	}
	if d.Day < 1 || d.Day > DaysIn(d.Month, d.Year) {
		return Date{}, fmt.Errorf("%w: day %d out of range for month %d", ErrFormat, d.Day, d.Month)
	}
	return d, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsLeap reports whether February of year has 29 days.
func IsLeap(year int) bool {
	return year%4 == 0
}

// DaysIn returns the number of days in month for year.
func DaysIn(month, year int) int {
	switch month {
	case 2:
		if IsLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// String formats the date back into DD/MM/YYYY.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// Compare orders dates by year, then month, then day.
func Compare(a, b Date) int {
	switch {
	case a.Year != b.Year:
		return cmpInt(a.Year, b.Year)
	case a.Month != b.Month:
		return cmpInt(a.Month, b.Month)
	default:
		return cmpInt(a.Day, b.Day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func digits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
