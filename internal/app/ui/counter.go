package ui

import (
	"context"
	"image/color"
	"log/slog"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
)

const (
	counterTextSize  = 96
	counterPulseTime = 150 * time.Millisecond
	counterFreeLabel = "Free count"
	counterStatusOn  = "Counting"
	counterStatusOff = "Stopped"
)

// counterPage is the screen with the tasbeeh counter.
type counterPage struct {
	widget.BaseWidget

	count     *canvas.Text
	dhikr     *widget.Select
	dhikrIDs  map[string]string // label to ID
	increment *widget.Button
	reset     *ttwidget.Button
	startStop *ttwidget.Button
	status    *widget.Label
	u         *BaseUI
}

func newCounterPage(u *BaseUI) *counterPage {
	count := canvas.NewText("0", theme.Color(colorNameCounter))
	count.TextSize = counterTextSize
	count.TextStyle.Bold = true
	count.Alignment = fyne.TextAlignCenter
	a := &counterPage{
		count:    count,
		dhikrIDs: make(map[string]string),
		status:   widget.NewLabel(counterStatusOff),
		u:        u,
	}
	a.ExtendBaseWidget(a)
	a.dhikr = widget.NewSelect(nil, func(s string) {
		if s == counterFreeLabel {
			s = ""
		}
		a.u.counter.SetDhikr(s)
	})
	a.dhikr.PlaceHolder = counterFreeLabel
	a.increment = widget.NewButtonWithIcon("Count", theme.ContentAddIcon(), func() {
		a.doIncrement()
	})
	a.increment.Importance = widget.HighImportance
	a.startStop = ttwidget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		a.toggleRunning()
	})
	a.reset = ttwidget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), func() {
		a.doReset()
	})
	a.reset.SetToolTip("Save the current count to the history and start over")
	a.updateDhikrOptions()
	a.updateControls()
	return a
}

func (a *counterPage) CreateRenderer() fyne.WidgetRenderer {
	tapArea := container.NewGridWrap(fyne.NewSize(240, 80), a.increment)
	c := container.NewBorder(
		container.NewVBox(a.dhikr, container.NewCenter(a.status)),
		container.NewHBox(layout.NewSpacer(), a.startStop, a.reset, layout.NewSpacer()),
		nil,
		nil,
		container.NewVBox(
			layout.NewSpacer(),
			a.count,
			container.NewCenter(tapArea),
			layout.NewSpacer(),
		),
	)
	return widget.NewSimpleRenderer(container.NewPadded(c))
}

// setCount shows the count n.
func (a *counterPage) setCount(n int) {
	a.count.Text = strconv.Itoa(n)
	a.count.Refresh()
}

// updateDhikrOptions refreshes the list of selectable dhikr.
func (a *counterPage) updateDhikrOptions() {
	options := []string{counterFreeLabel}
	clear(a.dhikrIDs)
	for _, d := range a.u.dhikrs.List() {
		l := dhikrLabel(d)
		options = append(options, l)
		a.dhikrIDs[l] = d.ID
	}
	a.dhikr.SetOptions(options)
}

func (a *counterPage) toggleRunning() {
	c := a.u.counter
	if c.IsRunning() {
		c.Stop()
	} else {
		c.Start()
	}
	a.updateControls()
}

func (a *counterPage) doIncrement() {
	if !a.u.counter.IsRunning() {
		return
	}
	n := a.u.counter.Increment(context.Background())
	a.setCount(n)
	if id, ok := a.dhikrIDs[a.u.counter.Dhikr()]; ok {
		if _, err := a.u.dhikrs.Increment(context.Background(), id); err != nil {
			slog.Warn("Failed to increment dhikr", "id", id, "error", err)
		}
	}
	if a.u.settings.Vibration() {
		a.pulse()
	}
}

func (a *counterPage) doReset() {
	ctx := context.Background()
	if err := a.u.counter.Reset(ctx); err != nil {
		a.u.reportError("Failed to save session", err)
	} else {
		go a.u.historyPage.update()
	}
	a.setCount(0)
	a.updateControls()
}

func (a *counterPage) updateControls() {
	if a.u.counter.IsRunning() {
		a.startStop.SetText("Stop")
		a.startStop.SetIcon(theme.MediaPauseIcon())
		a.startStop.SetToolTip("Pause counting")
		a.status.SetText(counterStatusOn)
		a.increment.Enable()
	} else {
		a.startStop.SetText("Start")
		a.startStop.SetIcon(theme.MediaPlayIcon())
		a.startStop.SetToolTip("Start counting")
		a.status.SetText(counterStatusOff)
		a.increment.Disable()
	}
}

// pulse gives feedback for a count. It replaces the vibration of mobile devices.
func (a *counterPage) pulse() {
	from := theme.Color(colorNameComplete)
	to := theme.Color(colorNameCounter)
	anim := canvas.NewColorRGBAAnimation(from, to, counterPulseTime, func(c color.Color) {
		a.count.Color = c
		a.count.Refresh()
	})
	anim.Start()
}

// dhikrLabel returns the label for a dhikr in lists.
func dhikrLabel(d app.Dhikr) string {
	if d.Translation == "" {
		return d.Arabic
	}
	return d.Translation
}
