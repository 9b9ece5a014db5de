package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxmodal "github.com/ErikKalkoken/fyne-kx/modal"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/humanize"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/optional"
)

var prayerRows = []app.Prayer{app.Fajr, app.Sunrise, app.Dhuhr, app.Asr, app.Maghrib, app.Isha}

// prayerTimesPage is the screen showing today's prayer times.
type prayerTimesPage struct {
	widget.BaseWidget

	grid     *fyne.Container
	location *widget.Label
	next     *widget.Label
	refresh  *widget.Button
	status   *widget.Label
	u        *BaseUI

	mu      sync.Mutex
	current optional.Optional[app.PrayerTimes]
}

func newPrayerTimesPage(u *BaseUI) *prayerTimesPage {
	status := widget.NewLabel("Loading...")
	status.Importance = widget.LowImportance
	status.Wrapping = fyne.TextWrapWord
	next := widget.NewLabel("")
	next.TextStyle.Bold = true
	a := &prayerTimesPage{
		grid:     container.New(layout.NewFormLayout()),
		location: widget.NewLabel(""),
		next:     next,
		status:   status,
		u:        u,
	}
	a.ExtendBaseWidget(a)
	a.refresh = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		a.doRefresh()
	})
	if u.isOffline {
		a.refresh.Disable()
	}
	return a
}

func (a *prayerTimesPage) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewBorder(
		container.NewVBox(
			container.NewHBox(a.location, layout.NewSpacer(), a.refresh),
			a.next,
		),
		a.status,
		nil,
		nil,
		container.NewVScroll(a.grid),
	)
	return widget.NewSimpleRenderer(c)
}

// update loads today's prayer times and shows them. It can be called from any goroutine.
func (a *prayerTimesPage) update() {
	ctx, cancel := context.WithTimeout(context.Background(), prayerFetchTimeout)
	defer cancel()
	pt := a.u.prayerTimes.TodayPrayerTimes(ctx)
	a.set(pt)
}

func (a *prayerTimesPage) doRefresh() {
	var pt optional.Optional[app.PrayerTimes]
	m := kxmodal.NewProgressInfinite("Prayer times", "Fetching prayer times...", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), prayerFetchTimeout)
		defer cancel()
		pt = a.u.prayerTimes.Refresh(ctx)
		return nil
	}, a.u.MainWindow())
	m.OnSuccess = func() {
		a.set(pt)
		if a.u.reminders != nil {
			a.u.reminders.ArmPrayerReminders()
		}
	}
	m.OnError = func(err error) {
		a.u.reportError("Failed to refresh prayer times", err)
	}
	m.Start()
}

func (a *prayerTimesPage) set(pt optional.Optional[app.PrayerTimes]) {
	a.mu.Lock()
	a.current = pt
	a.mu.Unlock()
	fyne.Do(func() {
		a.redraw(time.Now())
	})
}

// refreshNext updates the countdown to the next prayer. Must be called on the UI thread.
func (a *prayerTimesPage) refreshNext() {
	a.redraw(time.Now())
}

func (a *prayerTimesPage) redraw(now time.Time) {
	a.mu.Lock()
	o := a.current
	a.mu.Unlock()
	a.grid.RemoveAll()
	pt, ok := o.Value()
	if !ok {
		a.location.SetText("")
		a.next.SetText("")
		a.status.SetText("No prayer times available. Connect to the internet and refresh.")
		return
	}
	next, nextAt, hasNext := pt.Next(now)
	for _, p := range prayerRows {
		name := widget.NewLabel(p.Display())
		t := pt.Time(p)
		if t == "" {
			t = "-"
		}
		value := widget.NewLabel(t)
		if hasNext && p == next {
			name.TextStyle.Bold = true
			name.Importance = widget.HighImportance
			value.TextStyle.Bold = true
			value.Importance = widget.HighImportance
		}
		a.grid.Add(name)
		a.grid.Add(value)
	}
	a.grid.Refresh()
	if pt.Location != "" {
		a.location.SetText(pt.Location)
	} else {
		a.location.SetText(app.UnknownPlace)
	}
	if hasNext {
		a.next.SetText(fmt.Sprintf("%s %s", next.Display(), humanize.Countdown(now, nextAt)))
	} else {
		a.next.SetText("")
	}
	if pt.Date == app.DateOf(now) {
		a.status.SetText("")
	} else {
		a.status.SetText(fmt.Sprintf("Showing prayer times from %s", pt.Date))
	}
}
