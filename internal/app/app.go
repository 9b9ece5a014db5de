// Package app is the root package of all domain related packages.
//
// All entity types are defined in this package.
package app

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default formats
const (
	DateFormat      = "2006-01-02"
	DateTimeFormat  = "2006-01-02 15:04"
	TimeOfDayFormat = "15:04"
)

// Titler converts a string into a title for english language.
var Titler = cases.Title(language.English)

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) string {
	return t.Format(DateFormat)
}

// StartOfDay returns the first instant of the day of t in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
