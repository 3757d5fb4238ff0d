package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/tartampluch/go-lifeweeks/internal/config"
)

// ErrInvalidDate is returned by ParseDate for anything that is not a real calendar date.
var ErrInvalidDate = errors.New(config.ErrDateParse)

const secondsPerDay = int64(config.Day / time.Second)

// DateOf returns the calendar date of t as a UTC midnight.
// All arithmetic in this package runs on such values so that day differences are
// exact multiples of 24h regardless of the local daylight saving rules.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a calendar date. The canonical form is YYYY-MM-DD; the basic
// and RFC 3339 forms found in vCard BDAY fields are accepted too.
// Impossible dates such as 2023-02-30 are rejected rather than rolled over.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}

	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders a date in the canonical YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format(config.DateFormatFullDash)
}

// daysBetween counts whole days from a to b. Both must be UTC midnights.
// Unix seconds are used instead of Sub, which saturates past ~292 years.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

// weeksBetween is floor((b - a) / 7 days), negative when b precedes a.
func weeksBetween(a, b time.Time) int {
	return floorDiv(daysBetween(a, b), config.DaysPerWeek)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// WeekStart returns the first day of the given week-index.
func WeekStart(birth time.Time, index int) time.Time {
	return DateOf(birth).AddDate(0, 0, index*config.DaysPerWeek)
}

// WeekRange returns the first and last day of the given week-index.
func WeekRange(birth time.Time, index int) (time.Time, time.Time) {
	start := WeekStart(birth, index)
	return start, start.AddDate(0, 0, config.DaysPerWeek-1)
}

// AgeAtWeek splits a week-index into grid rows (years) and columns (weeks).
func AgeAtWeek(index int) (years, weeks int) {
	return index / config.WeeksPerRow, index % config.WeeksPerRow
}
