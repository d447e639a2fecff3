// Package civildate provides an opaque civil-calendar date string used to
// order and filter ledger entries. Dates are stored and compared as
// "YYYY-MM-DD" strings, which sort lexicographically in chronological order.
package civildate

import (
	"errors"
	"time"
)

// Layout is the wire format for civil dates.
const Layout = "2006-01-02"

// ErrInvalidDate indicates a date string that is not a valid YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

// Date is a civil-calendar day without a time zone.
type Date string

// Parse validates s and returns it as a Date.
func Parse(s string) (Date, error) {
	if _, err := time.Parse(Layout, s); err != nil {
		return "", ErrInvalidDate
	}
	return Date(s), nil
}

// Today returns the current date in the local time zone.
func Today() Date {
	return FromTime(time.Now())
}

// FromTime truncates t to its civil date.
func FromTime(t time.Time) Date {
	return Date(t.Format(Layout))
}

// IsValid reports whether d holds a well-formed date.
func (d Date) IsValid() bool {
	_, err := time.Parse(Layout, string(d))
	return err == nil
}

// String returns the YYYY-MM-DD representation.
func (d Date) String() string {
	return string(d)
}

// Before reports whether d is strictly earlier than other. Because the
// format is fixed-width, string comparison is chronological comparison.
func (d Date) Before(other Date) bool {
	return d < other
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d > other
}

// Time returns the date at midnight UTC. The zero time is returned for
// malformed dates.
func (d Date) Time() time.Time {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddMonths shifts d by the given number of months, preserving the day of
// month when the target month has it and clamping to the last day otherwise.
// This differs from time.Time.AddDate, which normalizes overflow into the
// next month (Mar 31 - 1 month = Mar 3).
func (d Date) AddMonths(months int) Date {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return d
	}

	y, m, day := t.Date()
	m += time.Month(months)
	for m > 12 {
		m -= 12
		y++
	}
	for m < 1 {
		m += 12
		y--
	}

	if last := daysIn(y, m); day > last {
		day = last
	}
	return FromTime(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
