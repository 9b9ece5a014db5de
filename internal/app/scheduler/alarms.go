package scheduler

import (
	"sync"
	"time"
)

// Alarms is a facility for firing callbacks at a time.
// Setting an alarm for a key replaces any pending alarm with the same key.
type Alarms interface {
	// CanScheduleExact reports whether exact alarms are available.
	CanScheduleExact() bool
	// SetExact arms a one-shot alarm.
	SetExact(key string, at time.Time, f func())
	// SetInexactRepeating arms an alarm which first fires at first and then repeats every interval.
	SetInexactRepeating(key string, first time.Time, interval time.Duration, f func())
	// Cancel removes a pending alarm. Canceling an unknown key does nothing.
	Cancel(key string)
}

// TimerAlarms is an in-process implementation of Alarms based on timers.
// Alarms do not survive a restart of the process.
type TimerAlarms struct {
	Inexact bool // when true exact alarms are reported as not available

	mu     sync.Mutex
	timers map[string]*alarm
}

type alarm struct {
	at        time.Time
	timer     *time.Timer
	cancelled bool
}

var _ Alarms = (*TimerAlarms)(nil)

// NewTimerAlarms returns a new TimerAlarms.
func NewTimerAlarms() *TimerAlarms {
	return &TimerAlarms{timers: make(map[string]*alarm)}
}

func (ta *TimerAlarms) CanScheduleExact() bool {
	return !ta.Inexact
}

func (ta *TimerAlarms) SetExact(key string, at time.Time, f func()) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.cancel(key)
	a := &alarm{at: at}
	a.timer = time.AfterFunc(time.Until(at), func() {
		ta.mu.Lock()
		if a.cancelled {
			ta.mu.Unlock()
			return
		}
		if ta.timers[key] == a {
			delete(ta.timers, key)
		}
		ta.mu.Unlock()
		f()
	})
	ta.set(key, a)
}

func (ta *TimerAlarms) SetInexactRepeating(key string, first time.Time, interval time.Duration, f func()) {
	if interval <= 0 {
		panic("scheduler: interval must be positive")
	}
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.cancel(key)
	a := &alarm{at: first}
	var fire func()
	fire = func() {
		ta.mu.Lock()
		if a.cancelled {
			ta.mu.Unlock()
			return
		}
		a.at = time.Now().Add(interval)
		a.timer = time.AfterFunc(interval, fire)
		ta.mu.Unlock()
		f()
	}
	a.timer = time.AfterFunc(time.Until(first), fire)
	ta.set(key, a)
}

func (ta *TimerAlarms) Cancel(key string) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.cancel(key)
}

// Pending returns the number of pending alarms.
func (ta *TimerAlarms) Pending() int {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	return len(ta.timers)
}

// At returns when the pending alarm for key fires next and reports whether it exists.
func (ta *TimerAlarms) At(key string) (time.Time, bool) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	a, ok := ta.timers[key]
	if !ok {
		return time.Time{}, false
	}
	return a.at, true
}

func (ta *TimerAlarms) set(key string, a *alarm) {
	if ta.timers == nil {
		ta.timers = make(map[string]*alarm)
	}
	ta.timers[key] = a
}

// cancel cancels the alarm for key. The caller must hold the lock.
func (ta *TimerAlarms) cancel(key string) {
	a, ok := ta.timers[key]
	if !ok {
		return
	}
	a.cancelled = true
	a.timer.Stop()
	delete(ta.timers, key)
}
