// Package scheduler arms daily alarms for reminders and the missed tasbeeh check.
package scheduler

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
)

// repeatInterval is the interval for inexact repeating alarms.
const repeatInterval = 24 * time.Hour

// NextFire returns the next instant strictly after now
// at the local time of day tod plus offset.
func NextFire(now time.Time, tod app.TimeOfDay, offset time.Duration) time.Time {
	day := now
	for range 3 {
		t := tod.On(day).Add(offset)
		if t.After(now) {
			return t
		}
		day = day.AddDate(0, 0, 1)
	}
	return tod.On(day).Add(offset)
}

// Task is a repeating task.
type Task struct {
	// Key identifies the task. Arming a task replaces a task with the same key.
	Key string
	// Next returns the next time the task should run after now.
	Next func(now time.Time) time.Time
	// Run is called when the task is due.
	Run func()
}

// Scheduler runs tasks repeatedly with the help of an alarm facility.
//
// With exact alarms each task is re-armed for its next occurrence after it has run.
// Otherwise tasks are armed once as inexact alarms which repeat daily.
type Scheduler struct {
	alarms Alarms
	now    func() time.Time

	mu    sync.Mutex
	tasks map[string]uint64 // key to generation
	gen   uint64
}

// New returns a new Scheduler.
func New(alarms Alarms) *Scheduler {
	s := &Scheduler{
		alarms: alarms,
		now:    time.Now,
		tasks:  make(map[string]uint64),
	}
	return s
}

// Arm arms a task for its next occurrence.
func (s *Scheduler) Arm(t Task) {
	s.mu.Lock()
	s.gen++
	g := s.gen
	s.tasks[t.Key] = g
	s.mu.Unlock()
	s.arm(t, g)
}

func (s *Scheduler) arm(t Task, g uint64) {
	at := t.Next(s.now())
	if !s.alarms.CanScheduleExact() {
		s.alarms.SetInexactRepeating(t.Key, at, repeatInterval, func() {
			defer recoverTask(t.Key)
			t.Run()
		})
		slog.Info("Inexact alarm armed", "key", t.Key, "at", at)
		return
	}
	s.alarms.SetExact(t.Key, at, func() {
		defer func() {
			if s.isCurrent(t.Key, g) {
				s.arm(t, g)
			}
		}()
		defer recoverTask(t.Key)
		t.Run()
	})
	slog.Debug("Exact alarm armed", "key", t.Key, "at", at)
}

func recoverTask(key string) {
	if r := recover(); r != nil {
		slog.Error("Task failed", "key", key, "error", r)
	}
}

func (s *Scheduler) isCurrent(key string, g uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[key] == g
}

// Cancel cancels the task with key. It is safe to cancel unknown keys.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	delete(s.tasks, key)
	s.mu.Unlock()
	s.alarms.Cancel(key)
	slog.Debug("Alarm canceled", "key", key)
}

// CancelAll cancels all tasks.
func (s *Scheduler) CancelAll() {
	for _, k := range s.Keys() {
		s.Cancel(k)
	}
}

// Keys returns the keys of all armed tasks in sorted order.
func (s *Scheduler) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.tasks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
