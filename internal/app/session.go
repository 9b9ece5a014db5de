package app

import "time"

// Session is a completed tasbeeh counting session.
type Session struct {
	ID          int64
	Count       int
	Dhikr       string
	CompletedAt time.Time
}

// DailyTotal is the sum of all sessions of one day.
type DailyTotal struct {
	Date     string
	Count    int
	Sessions int
}
