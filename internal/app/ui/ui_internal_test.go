package ui

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/scheduler"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/settings"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/storage"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/storage/testutil"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/tasbeeh"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/optional"
)

// FakePrayerTimes is a prayer time provider which returns a fixed record.
type FakePrayerTimes struct {
	mu        sync.Mutex
	PT        optional.Optional[app.PrayerTimes]
	Refreshed int
}

func (f *FakePrayerTimes) TodayPrayerTimes(context.Context) optional.Optional[app.PrayerTimes] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PT
}

func (f *FakePrayerTimes) Refresh(context.Context) optional.Optional[app.PrayerTimes] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Refreshed++
	return f.PT
}

func (f *FakePrayerTimes) CachedFor(date string) (app.PrayerTimes, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pt, ok := f.PT.Value()
	if !ok || pt.Date != date {
		return app.PrayerTimes{}, false
	}
	return pt, true
}

// FakeNotifier records notifications.
type FakeNotifier struct {
	mu       sync.Mutex
	Messages []string
}

func (f *FakeNotifier) Notify(title, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, title)
}

// FakePlayer counts how often it was played.
type FakePlayer struct {
	mu     sync.Mutex
	Played int
}

func (f *FakePlayer) Play(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Played++
	return "fake", nil
}

func (f *FakePlayer) Stop() {}

func (f *FakePlayer) played() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Played
}

// FakeCache is a cache which counts how often it was cleared.
type FakeCache struct {
	Cleared atomic.Int32
}

func (f *FakeCache) Clear() {
	f.Cleared.Add(1)
}

// MakeFakeBaseUI returns a new BaseUI with services for tests.
func MakeFakeBaseUI(st *storage.Storage, fyneApp fyne.App, pt *FakePrayerTimes) *BaseUI {
	store := kvstore.NewPreferences(fyneApp.Preferences())
	events := tasbeeh.NewEvents()
	tasbeehStore := kvstore.Namespace(store, "TasbeehPrefs")
	activity := tasbeeh.NewActivity(tasbeehStore)
	history := tasbeeh.NewHistoryService(st)
	dhikrs, err := tasbeeh.NewDhikrService(kvstore.Namespace(store, tasbeeh.DhikrNamespace), events)
	if err != nil {
		panic(err)
	}
	s := settings.New(store)
	reminders := scheduler.NewService(scheduler.Params{
		Activity:    activity,
		Alarms:      scheduler.NewTimerAlarms(),
		Notifier:    &FakeNotifier{},
		PrayerTimes: pt,
		Settings:    s,
	})
	return NewBaseUI(Params{
		App:         fyneApp,
		Cache:       &FakeCache{},
		Counter:     tasbeeh.NewCounter(activity, history, events),
		Dhikrs:      dhikrs,
		Events:      events,
		History:     history,
		Player:      &FakePlayer{},
		PrayerTimes: pt,
		Reminders:   reminders,
		Settings:    s,
		DataPaths:   map[string]string{"db": "/tmp/db"},
	})
}

func makeUI(t *testing.T) (*BaseUI, *FakePrayerTimes, testutil.Factory) {
	db, st, factory := testutil.NewDBOnDisk(t)
	t.Cleanup(func() {
		db.Close()
	})
	pt := &FakePrayerTimes{}
	u := MakeFakeBaseUI(st, test.NewTempApp(t), pt)
	return u, pt, factory
}

func TestCounterPage(t *testing.T) {
	t.Run("should not count while stopped", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.counterPage
		// when
		test.Tap(a.increment)
		// then
		assert.Equal(t, "0", a.count.Text)
		assert.Equal(t, 0, u.counter.Count())
		assert.Equal(t, counterStatusOff, a.status.Text)
	})
	t.Run("should count while running", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.counterPage
		// when
		test.Tap(a.startStop)
		for range 3 {
			test.Tap(a.increment)
		}
		// then
		assert.Equal(t, "3", a.count.Text)
		assert.Equal(t, 3, u.counter.Count())
		assert.Equal(t, counterStatusOn, a.status.Text)
		assert.Equal(t, "Stop", a.startStop.Text)
	})
	t.Run("should stop counting when stopped again", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.counterPage
		test.Tap(a.startStop)
		test.Tap(a.increment)
		// when
		test.Tap(a.startStop)
		test.Tap(a.increment)
		// then
		assert.Equal(t, 1, u.counter.Count())
		assert.True(t, a.increment.Disabled())
	})
	t.Run("should record session on reset", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.counterPage
		test.Tap(a.startStop)
		test.Tap(a.increment)
		test.Tap(a.increment)
		// when
		test.Tap(a.reset)
		// then
		assert.Equal(t, "0", a.count.Text)
		assert.False(t, u.counter.IsRunning())
		sessions, err := u.history.Recent(context.Background())
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, 2, sessions[0].Count)
	})
	t.Run("should count selected dhikr in checklist", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.counterPage
		d, err := u.dhikrs.Get("subhanallah")
		require.NoError(t, err)
		a.dhikr.SetSelected(dhikrLabel(d))
		test.Tap(a.startStop)
		// when
		test.Tap(a.increment)
		// then
		d, err = u.dhikrs.Get("subhanallah")
		require.NoError(t, err)
		assert.Equal(t, 1, d.Current)
	})
}

func TestDhikrList(t *testing.T) {
	t.Run("should show all dhikr", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.dhikrList
		// when
		a.update()
		// then
		assert.Len(t, a.items, len(u.dhikrs.List()))
		assert.Equal(t, fmt.Sprintf("0 / %d complete", len(a.items)), a.top.Text)
	})
	t.Run("should increment item", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.dhikrList
		a.update()
		// when
		a.incrementItem("subhanallah")
		// then
		d, err := u.dhikrs.Get("subhanallah")
		require.NoError(t, err)
		assert.Equal(t, 1, d.Current)
	})
	t.Run("should offer custom dhikr in counter", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		_, err := u.dhikrs.AddCustom("سبحان الله", "Custom", 7)
		require.NoError(t, err)
		// when
		u.dhikrList.update()
		// then
		assert.Contains(t, u.counterPage.dhikr.Options, "Custom")
	})
}

// dhikrRowIncrement returns the increment button of a dhikr list row.
func dhikrRowIncrement(row fyne.CanvasObject) *ttwidget.Button {
	buttons := row.(*fyne.Container).Objects[2].(*fyne.Container).Objects
	return buttons[0].(*ttwidget.Button)
}

func TestDhikrListCap(t *testing.T) {
	// given
	u, _, _ := makeUI(t)
	d, err := u.dhikrs.AddCustom("الحمد لله", "Twice", 2)
	require.NoError(t, err)
	a := u.dhikrList
	a.update()
	idx := slices.IndexFunc(a.items, func(x app.Dhikr) bool {
		return x.ID == d.ID
	})
	require.GreaterOrEqual(t, idx, 0)
	row := a.list.CreateItem()
	a.list.UpdateItem(idx, row)
	require.False(t, dhikrRowIncrement(row).Disabled())
	t.Run("should disable increment when target is reached", func(t *testing.T) {
		// when
		a.incrementItem(d.ID)
		a.incrementItem(d.ID)
		a.list.UpdateItem(idx, row)
		// then
		assert.True(t, dhikrRowIncrement(row).Disabled())
	})
	t.Run("should not count beyond target", func(t *testing.T) {
		// when
		a.incrementItem(d.ID)
		// then
		got, err := u.dhikrs.Get(d.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Current)
	})
	t.Run("should enable increment again after reset", func(t *testing.T) {
		// when
		_, err := u.dhikrs.Reset(d.ID)
		require.NoError(t, err)
		a.update()
		a.list.UpdateItem(idx, row)
		// then
		assert.False(t, dhikrRowIncrement(row).Disabled())
	})
}

func TestHistoryPage(t *testing.T) {
	t.Run("should show recent sessions", func(t *testing.T) {
		// given
		u, _, factory := makeUI(t)
		factory.CreateTasbeehSession(storage.CreateTasbeehSessionParams{Count: 33, CompletedAt: time.Now()})
		factory.CreateTasbeehSession(storage.CreateTasbeehSessionParams{Count: 10, CompletedAt: time.Now()})
		a := u.historyPage
		// when
		a.update()
		// then
		assert.Len(t, a.sessions, 2)
		assert.Equal(t, "Last 7 days: 43", a.top.Text)
	})
	t.Run("should show placeholder without sessions", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.historyPage
		// when
		a.update()
		// then
		require.Len(t, a.totals.Objects, 1)
		assert.Equal(t, "No sessions recorded", a.totals.Objects[0].(*widget.Label).Text)
	})
}

func TestPrayerTimesPage(t *testing.T) {
	now := time.Date(2024, 1, 2, 13, 0, 0, 0, time.Local)
	record := app.PrayerTimes{
		Date:     "2024-01-02",
		Fajr:     "05:00",
		Sunrise:  "06:30",
		Dhuhr:    "12:30",
		Asr:      "15:30",
		Maghrib:  "18:00",
		Isha:     "19:30",
		Location: "Makkah",
	}
	t.Run("should show prayer times and next prayer", func(t *testing.T) {
		// given
		u, pt, _ := makeUI(t)
		pt.PT = optional.From(record)
		a := u.prayerPage
		a.update()
		// when
		a.redraw(now)
		// then
		assert.Len(t, a.grid.Objects, 2*len(prayerRows))
		assert.Equal(t, "Makkah", a.location.Text)
		assert.Equal(t, "Asr in 2h 30m", a.next.Text)
		assert.Equal(t, "", a.status.Text)
	})
	t.Run("should show when prayer times are from another day", func(t *testing.T) {
		// given
		u, pt, _ := makeUI(t)
		pt.PT = optional.From(record)
		a := u.prayerPage
		a.update()
		// when
		a.redraw(now.AddDate(0, 0, 1))
		// then
		assert.Equal(t, "Showing prayer times from 2024-01-02", a.status.Text)
		assert.Equal(t, "", a.next.Text)
	})
	t.Run("should show hint when no prayer times available", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.prayerPage
		// when
		a.update()
		// then
		assert.Empty(t, a.grid.Objects)
		assert.Contains(t, a.status.Text, "No prayer times available")
	})
}

func TestLoadData(t *testing.T) {
	t.Run("should arm reminders with prayer times loaded at startup", func(t *testing.T) {
		// given
		u, pt, _ := makeUI(t)
		alarms := scheduler.NewTimerAlarms()
		u.reminders = scheduler.NewService(scheduler.Params{
			Activity:    tasbeeh.NewActivity(kvstore.NewMemory()),
			Alarms:      alarms,
			Notifier:    &FakeNotifier{},
			PrayerTimes: pt,
			Settings:    u.settings,
		})
		t.Cleanup(u.reminders.CancelAll)
		u.reminders.Start()
		now := time.Now()
		defaultAt, ok := alarms.At("fajr")
		require.True(t, ok)
		require.Equal(t, scheduler.NextFire(now, scheduler.DefaultPrayerTimes[app.Fajr], scheduler.ReminderOffset), defaultAt)
		pt.PT = optional.From(app.PrayerTimes{
			Date:    app.DateOf(now),
			Fajr:    "04:17",
			Sunrise: "05:49",
			Dhuhr:   "12:08",
			Asr:     "15:21",
			Maghrib: "18:02",
			Isha:    "19:26",
		})
		// when
		u.loadData()
		// then
		got, ok := alarms.At("fajr")
		require.True(t, ok)
		want := scheduler.NextFire(time.Now(), app.TimeOfDay{Hour: 4, Minute: 17}, scheduler.ReminderOffset)
		assert.Equal(t, want, got)
		assert.True(t, u.IsStartupCompleted())
	})
}

func TestUserSettings(t *testing.T) {
	t.Run("should cancel reminders when notifications are disabled", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		u.reminders.Start()
		require.NotEmpty(t, u.reminders.Armed())
		// when
		u.settingsPage.updateReminders(false)
		// then
		assert.Empty(t, u.reminders.Armed())
	})
	t.Run("should arm reminders when notifications are enabled", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		// when
		u.settingsPage.updateReminders(true)
		// then
		assert.ElementsMatch(t, []string{"asr", "dhuhr", "fajr", "isha", "maghrib", "reset"}, u.reminders.Armed())
		u.reminders.CancelAll()
	})
	t.Run("should clear cache", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		c := u.cache.(*FakeCache)
		// when
		u.settingsPage.clearCache()
		// then
		assert.Eventually(t, func() bool {
			return c.Cleared.Load() == 1
		}, time.Second, 10*time.Millisecond)
	})
	t.Run("should switch theme", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		// when
		u.setColorTheme(true)
		// then
		th := u.App().Settings().Theme().(myTheme)
		assert.True(t, th.isDark)
	})
}

func TestQiblaPage(t *testing.T) {
	t.Run("should show hint when device has no sensors", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.qiblaPage
		// when
		a.start()
		// then
		assert.Contains(t, a.hint.Text, "no compass")
		assert.Equal(t, "Qibla 0°", a.heading.Text)
	})
	t.Run("should tell how to turn", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.qiblaPage
		// when
		a.show(90, 0)
		// then
		assert.Equal(t, "Heading 90°. Turn 90° left", a.hint.Text)
	})
	t.Run("should report when facing the Qibla", func(t *testing.T) {
		// given
		u, _, _ := makeUI(t)
		a := u.qiblaPage
		// when
		a.show(358, 0)
		// then
		assert.Equal(t, "Heading 358°. You are facing the Qibla", a.hint.Text)
	})
}

func TestPlayCueOnCompletion(t *testing.T) {
	// given
	u, _, _ := makeUI(t)
	p := u.player.(*FakePlayer)
	_, err := u.dhikrs.AddCustom("الله أكبر", "Short", 1)
	require.NoError(t, err)
	u.dhikrList.update()
	items := u.dhikrs.List()
	id := items[len(items)-1].ID
	// when
	u.dhikrList.incrementItem(id)
	// then
	assert.Eventually(t, func() bool {
		return p.played() == 1
	}, time.Second, 10*time.Millisecond)
}
