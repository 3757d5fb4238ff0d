package engine

import "time"

// nextBirthday returns the next occurrence of the birthday on or after today,
// and the number of days until it (0 when today is the birthday).
// Both arguments must be UTC midnights.
//
// time.Date normalizes Feb 29 to March 1st in non-leap years.
func nextBirthday(birth, today time.Time) (time.Time, int) {
	candidate := time.Date(today.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		candidate = time.Date(today.Year()+1, birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	}
	return candidate, daysBetween(today, candidate)
}
