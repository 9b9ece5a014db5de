package scheduler_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/scheduler"
)

type fakeAlarm struct {
	at        time.Time
	interval  time.Duration
	repeating bool
	f         func()
}

// fakeAlarms records alarms, which are fired manually.
type fakeAlarms struct {
	inexact bool

	mu       sync.Mutex
	alarms   map[string]fakeAlarm
	canceled []string
}

func newFakeAlarms() *fakeAlarms {
	return &fakeAlarms{alarms: make(map[string]fakeAlarm)}
}

func (fa *fakeAlarms) CanScheduleExact() bool {
	return !fa.inexact
}

func (fa *fakeAlarms) SetExact(key string, at time.Time, f func()) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.alarms[key] = fakeAlarm{at: at, f: f}
}

func (fa *fakeAlarms) SetInexactRepeating(key string, first time.Time, interval time.Duration, f func()) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.alarms[key] = fakeAlarm{at: first, interval: interval, repeating: true, f: f}
}

func (fa *fakeAlarms) Cancel(key string) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	delete(fa.alarms, key)
	fa.canceled = append(fa.canceled, key)
}

func (fa *fakeAlarms) get(key string) (fakeAlarm, bool) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	a, ok := fa.alarms[key]
	return a, ok
}

// fire fires the alarm for key like a platform would.
func (fa *fakeAlarms) fire(key string) {
	fa.mu.Lock()
	a, ok := fa.alarms[key]
	if ok && !a.repeating {
		delete(fa.alarms, key)
	}
	fa.mu.Unlock()
	if ok {
		a.f()
	}
}

func TestNextFire(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		name   string
		now    time.Time
		tod    app.TimeOfDay
		offset time.Duration
		want   time.Time
	}{
		{
			"later today",
			time.Date(2024, 1, 1, 10, 0, 0, 0, loc),
			app.TimeOfDay{Hour: 20},
			0,
			time.Date(2024, 1, 1, 20, 0, 0, 0, loc),
		},
		{
			"passed today",
			time.Date(2024, 1, 1, 21, 0, 0, 0, loc),
			app.TimeOfDay{Hour: 20},
			0,
			time.Date(2024, 1, 2, 20, 0, 0, 0, loc),
		},
		{
			"exactly now is next day",
			time.Date(2024, 1, 1, 20, 0, 0, 0, loc),
			app.TimeOfDay{Hour: 20},
			0,
			time.Date(2024, 1, 2, 20, 0, 0, 0, loc),
		},
		{
			"with offset",
			time.Date(2024, 1, 1, 5, 2, 0, 0, loc),
			app.TimeOfDay{Hour: 5},
			5 * time.Minute,
			time.Date(2024, 1, 1, 5, 5, 0, 0, loc),
		},
		{
			"offset crossing midnight",
			time.Date(2024, 1, 1, 23, 0, 0, 0, loc),
			app.TimeOfDay{Hour: 23, Minute: 58},
			5 * time.Minute,
			time.Date(2024, 1, 2, 0, 3, 0, 0, loc),
		},
		{
			"end of month",
			time.Date(2024, 1, 31, 22, 0, 0, 0, loc),
			app.TimeOfDay{Hour: 5, Minute: 30},
			0,
			time.Date(2024, 2, 1, 5, 30, 0, 0, loc),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scheduler.NextFire(tc.now, tc.tod, tc.offset)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.After(tc.now))
		})
	}
}

func TestScheduler(t *testing.T) {
	next := func(time.Time) time.Time {
		return time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	}
	t.Run("should re-arm exact alarm after it has run", func(t *testing.T) {
		// given
		fa := newFakeAlarms()
		s := scheduler.New(fa)
		var runs int
		s.Arm(scheduler.Task{Key: "alpha", Next: next, Run: func() { runs++ }})
		// when
		fa.fire("alpha")
		fa.fire("alpha")
		// then
		assert.Equal(t, 2, runs)
		_, ok := fa.get("alpha")
		assert.True(t, ok)
	})
	t.Run("should re-arm exact alarm when task panics", func(t *testing.T) {
		fa := newFakeAlarms()
		s := scheduler.New(fa)
		s.Arm(scheduler.Task{Key: "alpha", Next: next, Run: func() { panic("boom") }})
		fa.fire("alpha")
		_, ok := fa.get("alpha")
		assert.True(t, ok)
	})
	t.Run("should arm inexact repeating alarm when exact alarms are not available", func(t *testing.T) {
		fa := newFakeAlarms()
		fa.inexact = true
		s := scheduler.New(fa)
		s.Arm(scheduler.Task{Key: "alpha", Next: next, Run: func() {}})
		a, ok := fa.get("alpha")
		require.True(t, ok)
		assert.True(t, a.repeating)
		assert.Equal(t, 24*time.Hour, a.interval)
		assert.Equal(t, next(time.Time{}), a.at)
	})
	t.Run("should not re-arm after cancel from inside task", func(t *testing.T) {
		fa := newFakeAlarms()
		s := scheduler.New(fa)
		s.Arm(scheduler.Task{Key: "alpha", Next: next, Run: func() { s.Cancel("alpha") }})
		fa.fire("alpha")
		_, ok := fa.get("alpha")
		assert.False(t, ok)
		assert.Empty(t, s.Keys())
	})
	t.Run("cancel should be idempotent", func(t *testing.T) {
		fa := newFakeAlarms()
		s := scheduler.New(fa)
		s.Arm(scheduler.Task{Key: "alpha", Next: next, Run: func() {}})
		s.Cancel("alpha")
		s.Cancel("alpha")
		s.Cancel("unknown")
		_, ok := fa.get("alpha")
		assert.False(t, ok)
		assert.Empty(t, s.Keys())
	})
	t.Run("should cancel all tasks", func(t *testing.T) {
		fa := newFakeAlarms()
		s := scheduler.New(fa)
		s.Arm(scheduler.Task{Key: "alpha", Next: next, Run: func() {}})
		s.Arm(scheduler.Task{Key: "bravo", Next: next, Run: func() {}})
		assert.Equal(t, []string{"alpha", "bravo"}, s.Keys())
		s.CancelAll()
		s.CancelAll()
		assert.Empty(t, s.Keys())
		assert.ElementsMatch(t, []string{"alpha", "bravo"}, fa.canceled)
	})
}

func TestTimerAlarms(t *testing.T) {
	t.Run("should fire exact alarm", func(t *testing.T) {
		ta := scheduler.NewTimerAlarms()
		done := make(chan struct{})
		ta.SetExact("alpha", time.Now().Add(10*time.Millisecond), func() { close(done) })
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("alarm did not fire")
		}
		assert.Equal(t, 0, ta.Pending())
	})
	t.Run("should not fire canceled alarm", func(t *testing.T) {
		ta := scheduler.NewTimerAlarms()
		fired := make(chan struct{}, 1)
		ta.SetExact("alpha", time.Now().Add(20*time.Millisecond), func() { fired <- struct{}{} })
		ta.Cancel("alpha")
		ta.Cancel("alpha")
		select {
		case <-fired:
			t.Fatal("canceled alarm fired")
		case <-time.After(100 * time.Millisecond):
		}
		assert.Equal(t, 0, ta.Pending())
	})
	t.Run("should replace alarm with same key", func(t *testing.T) {
		ta := scheduler.NewTimerAlarms()
		ch := make(chan string, 2)
		ta.SetExact("alpha", time.Now().Add(20*time.Millisecond), func() { ch <- "first" })
		ta.SetExact("alpha", time.Now().Add(30*time.Millisecond), func() { ch <- "second" })
		select {
		case got := <-ch:
			assert.Equal(t, "second", got)
		case <-time.After(time.Second):
			t.Fatal("alarm did not fire")
		}
	})
	t.Run("should repeat inexact alarm until canceled", func(t *testing.T) {
		ta := scheduler.NewTimerAlarms()
		ch := make(chan struct{}, 10)
		ta.SetInexactRepeating("alpha", time.Now(), 10*time.Millisecond, func() { ch <- struct{}{} })
		for range 3 {
			select {
			case <-ch:
			case <-time.After(time.Second):
				t.Fatal("alarm did not repeat")
			}
		}
		ta.Cancel("alpha")
		assert.Equal(t, 0, ta.Pending())
	})
	t.Run("should report when a pending alarm fires", func(t *testing.T) {
		// given
		ta := scheduler.NewTimerAlarms()
		at := time.Now().Add(time.Hour)
		ta.SetExact("alpha", at, func() {})
		defer ta.Cancel("alpha")
		// when
		got, ok := ta.At("alpha")
		// then
		require.True(t, ok)
		assert.Equal(t, at, got)
		_, ok = ta.At("bravo")
		assert.False(t, ok)
	})
	t.Run("should report exact alarms as available by default", func(t *testing.T) {
		ta := scheduler.NewTimerAlarms()
		assert.True(t, ta.CanScheduleExact())
		ta.Inexact = true
		assert.False(t, ta.CanScheduleExact())
	})
}
