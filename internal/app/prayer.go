package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// Prayer identifies a prayer time window.
type Prayer uint

const (
	Fajr Prayer = iota
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Isha
)

var prayerNames = map[Prayer]string{
	Fajr:    "fajr",
	Sunrise: "sunrise",
	Dhuhr:   "dhuhr",
	Asr:     "asr",
	Maghrib: "maghrib",
	Isha:    "isha",
}

// Prayers returns the five daily prayers in chronological order.
func Prayers() []Prayer {
	return []Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha}
}

func (p Prayer) String() string {
	s, ok := prayerNames[p]
	if !ok {
		return "?"
	}
	return s
}

// Display returns the name for showing to users.
func (p Prayer) Display() string {
	return Titler.String(p.String())
}

// PrayerTimes is the record of prayer times for one calendar day.
type PrayerTimes struct {
	Date     string `json:"date"`
	Fajr     string `json:"fajr"`
	Sunrise  string `json:"sunrise"`
	Dhuhr    string `json:"dhuhr"`
	Asr      string `json:"asr"`
	Maghrib  string `json:"maghrib"`
	Isha     string `json:"isha"`
	Location string `json:"location,omitempty"`
}

// Time returns the time string for a prayer.
func (pt PrayerTimes) Time(p Prayer) string {
	switch p {
	case Fajr:
		return pt.Fajr
	case Sunrise:
		return pt.Sunrise
	case Dhuhr:
		return pt.Dhuhr
	case Asr:
		return pt.Asr
	case Maghrib:
		return pt.Maghrib
	case Isha:
		return pt.Isha
	}
	return ""
}

// TimeOfDay returns the parsed time for a prayer.
func (pt PrayerTimes) TimeOfDay(p Prayer) (TimeOfDay, error) {
	return ParseTimeOfDay(pt.Time(p))
}

// Next returns the first prayer after now and when it starts.
// It reports false when all prayers of this record have passed or the record is for another day.
func (pt PrayerTimes) Next(now time.Time) (Prayer, time.Time, bool) {
	if pt.Date != DateOf(now) {
		return 0, time.Time{}, false
	}
	for _, p := range Prayers() {
		tod, err := pt.TimeOfDay(p)
		if err != nil {
			continue
		}
		t := tod.On(now)
		if t.After(now) {
			return p, t, true
		}
	}
	return 0, time.Time{}, false
}

// TimeOfDay is a local wall clock time without date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a time in the format "HH:MM".
// Trailing annotations like " (CET)" are ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%q: %w", s, ErrInvalidTimeOfDay)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%q: %w", s, ErrInvalidTimeOfDay)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// On returns the instant of this time of day on the date of t in t's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
