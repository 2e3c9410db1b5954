// Package validations provide validation functions
package validations

import (
	"time"
	"unicode"
)

// IsSearchText checks that a free-text search value carries no control
// characters (newlines, tabs, NUL and the like).
// val: the string to be validated.
// returns: a boolean indicating whether the string is usable as search text.
func IsSearchText(val string) bool {
	for _, r := range val {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// CalendarYearAge returns the difference between the calendar year of now
// and the calendar year of birthDate.
//
// It does not check whether the birthday has already passed this year, so a
// person born on 1995-10-14 is reported as now.Year()-1995 for the whole year.
// Clients of the customer listing depend on this arithmetic.
//
// Parameters:
// - birthDate: the birth date; only its year is used.
// - now: the reference time; only its year is used.
//
// Returns: the year difference as an integer.
func CalendarYearAge(birthDate, now time.Time) int {
	return now.Year() - birthDate.Year()
}
