// Package tasbeeh provides the services for counting dhikr.
package tasbeeh

import (
	"time"

	"github.com/maniartech/signals"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
)

const keyLastActivity = "last_activity"

// Events are the app events emitted by the tasbeeh services.
type Events struct {
	// CounterChanged is emitted with the new count when a counter changes.
	CounterChanged signals.Signal[int]
	// DhikrCompleted is emitted when a dhikr reaches its target.
	DhikrCompleted signals.Signal[app.Dhikr]
}

func NewEvents() *Events {
	return &Events{
		CounterChanged: signals.New[int](),
		DhikrCompleted: signals.New[app.Dhikr](),
	}
}

// Activity tracks the time of the last tasbeeh activity.
type Activity struct {
	store kvstore.Store
	now   func() time.Time
}

// NewActivity returns a new Activity which is stored in store.
func NewActivity(store kvstore.Store) *Activity {
	return &Activity{store: store, now: time.Now}
}

// Touch records the current time as last activity.
func (a *Activity) Touch() {
	kvstore.SetTime(a.store, keyLastActivity, a.now())
}

// LastActivity returns the time of the last activity and reports whether there was any.
func (a *Activity) LastActivity() (time.Time, bool) {
	return kvstore.Time(a.store, keyLastActivity)
}
