// Package calendar provides Jalali (Solar Hijri) dates and the Persian week used
// by the booking pages.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// DefaultTimezone is the shop's local time zone.
const DefaultTimezone = "Asia/Tehran"

// ErrInvalidDate is returned when a value is not a real Jalali date.
var ErrInvalidDate = errors.New("calendar: invalid date")

// Persian weekday names in week order. The week starts on Saturday.
var weekdayNames = [7]string{
	"شنبه",
	"یکشنبه",
	"دوشنبه",
	"سه‌شنبه",
	"چهارشنبه",
	"پنجشنبه",
	"جمعه",
}

// WeekdayNames returns the seven weekday names, Saturday first.
func WeekdayNames() []string {
	out := make([]string, len(weekdayNames))
	copy(out, weekdayNames[:])
	return out
}

// WeekdayPosition reports the position of name in the week, or -1.
func WeekdayPosition(name string) int {
	for i, candidate := range weekdayNames {
		if candidate == name {
			return i
		}
	}
	return -1
}

// IsWeekdayName reports whether name is one of the seven weekday names.
func IsWeekdayName(name string) bool {
	return WeekdayPosition(name) >= 0
}

// WeekdayIndex maps a Go weekday onto the Persian week (Saturday = 0).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 1) % 7
}

// WeekdayName returns the Persian name of the day t falls on.
func WeekdayName(t time.Time) string {
	return weekdayNames[WeekdayIndex(t)]
}

// Date is a calendar day in the Jalali calendar.
type Date struct {
	Year  int
	Month int
	Day   int
}

// FromTime converts an instant to the Jalali day it falls on in t's location.
func FromTime(t time.Time) Date {
	pt := ptime.New(t)
	return Date{Year: pt.Year(), Month: int(pt.Month()), Day: pt.Day()}
}

// ParseDate accepts YYYY/MM/DD or YYYY-MM-DD.
func ParseDate(value string) (Date, error) {
	value = NormalizeDigits(strings.TrimSpace(value))
	parts := strings.Split(strings.ReplaceAll(value, "-", "/"), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || part == "" || n <= 0 {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
		}
		nums[i] = n
	}

	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// NormalizeDigits maps Persian (U+06F0..) and Arabic-Indic (U+0660..) digits
// to ASCII. Other runes are kept as they are.
func NormalizeDigits(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		}
		return r
	}, value)
}

// Validate checks month and day ranges, including Esfand 30 in leap years.
func (d Date) Validate() error {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return fmt.Errorf("%w: %s", ErrInvalidDate, d)
	}
	limit := 31
	switch {
	case d.Month > 6 && d.Month < 12:
		limit = 30
	case d.Month == 12:
		limit = 30
	}
	if d.Day > limit {
		return fmt.Errorf("%w: %s", ErrInvalidDate, d)
	}
	if d.Month == 12 && d.Day == 30 && FromTime(d.Time(time.UTC)) != d {
		return fmt.Errorf("%w: %s is not a leap year", ErrInvalidDate, d)
	}
	return nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// String formats the date as YYYY/MM/DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Time returns noon of the day in loc. Noon keeps day arithmetic clear of
// offset changes.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return ptime.Date(d.Year, ptime.Month(d.Month), d.Day, 12, 0, 0, 0, loc).Time()
}

// AddDays moves the date by n days.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time(time.UTC).AddDate(0, 0, n))
}

// WeekdayName returns the Persian weekday of the date.
func (d Date) WeekdayName() string {
	return WeekdayName(d.Time(time.UTC))
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}
