package ui

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxlayout "github.com/ErikKalkoken/fyne-kx/layout"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/tasbeeh"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/humanize"
)

const historyDateWidth = 120

// historyPage is the screen with the tasbeeh sessions of the last days.
type historyPage struct {
	widget.BaseWidget

	sessionList *widget.List
	top         *widget.Label
	totals      *fyne.Container
	u           *BaseUI

	mu       sync.Mutex
	sessions []app.Session
}

func newHistoryPage(u *BaseUI) *historyPage {
	top := widget.NewLabel("")
	top.TextStyle.Bold = true
	a := &historyPage{
		top:    top,
		totals: container.NewVBox(),
		u:      u,
	}
	a.ExtendBaseWidget(a)
	a.sessionList = a.makeSessionList()
	return a
}

func (a *historyPage) CreateRenderer() fyne.WidgetRenderer {
	clearButton := widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), func() {
		a.u.showConfirmDialog(
			"Clear history",
			"Do you want to delete all recorded sessions?",
			"Clear",
			func(confirmed bool) {
				if !confirmed {
					return
				}
				go func() {
					if err := a.u.history.Clear(context.Background()); err != nil {
						a.u.reportError("Failed to clear history", err)
						return
					}
					a.update()
				}()
			})
	})
	sessionsTitle := widget.NewLabel("Sessions")
	sessionsTitle.TextStyle.Bold = true
	c := container.NewBorder(
		container.NewVBox(
			container.NewHBox(a.top, layout.NewSpacer(), clearButton),
			a.totals,
			widget.NewSeparator(),
			sessionsTitle,
		),
		nil,
		nil,
		nil,
		a.sessionList,
	)
	return widget.NewSimpleRenderer(c)
}

func (a *historyPage) makeSessionList() *widget.List {
	l := widget.NewList(
		func() int {
			a.mu.Lock()
			defer a.mu.Unlock()
			return len(a.sessions)
		},
		func() fyne.CanvasObject {
			when := widget.NewLabel("Template")
			when.Truncation = fyne.TextTruncateEllipsis
			dhikr := widget.NewLabel("Template")
			dhikr.Truncation = fyne.TextTruncateEllipsis
			count := widget.NewLabel("Template")
			count.TextStyle.Bold = true
			return container.NewBorder(nil, nil, nil, count, container.New(kxlayout.NewColumns(historyDateWidth), when, dhikr))
		},
		func(id widget.ListItemID, co fyne.CanvasObject) {
			a.mu.Lock()
			if id >= len(a.sessions) {
				a.mu.Unlock()
				return
			}
			s := a.sessions[id]
			a.mu.Unlock()
			border := co.(*fyne.Container).Objects
			columns := border[0].(*fyne.Container).Objects
			columns[0].(*widget.Label).SetText(humanize.TimeWithFallback(s.CompletedAt, "?"))
			d := s.Dhikr
			if d == "" {
				d = counterFreeLabel
			}
			columns[1].(*widget.Label).SetText(d)
			border[1].(*widget.Label).SetText(humanize.Comma(s.Count))
		},
	)
	l.OnSelected = func(id widget.ListItemID) {
		l.UnselectAll()
	}
	return l
}

// update reloads the history. It can be called from any goroutine.
func (a *historyPage) update() {
	ctx := context.Background()
	sessions, err := a.u.history.Recent(ctx)
	if err != nil {
		a.u.reportError("Failed to load history", err)
		return
	}
	totals, err := a.u.history.DailyTotals(ctx)
	if err != nil {
		a.u.reportError("Failed to load history", err)
		return
	}
	a.mu.Lock()
	a.sessions = sessions
	a.mu.Unlock()
	var sum int
	for _, t := range totals {
		sum += t.Count
	}
	fyne.Do(func() {
		a.top.SetText(fmt.Sprintf("Last %d days: %s", tasbeeh.HistoryDays, humanize.Comma(sum)))
		a.totals.RemoveAll()
		for _, t := range totals {
			date := widget.NewLabel(t.Date)
			count := widget.NewLabel(fmt.Sprintf("%s in %s", humanize.Comma(t.Count), sessionsText(t.Sessions)))
			a.totals.Add(container.New(kxlayout.NewColumns(historyDateWidth), date, count))
		}
		if len(totals) == 0 {
			a.totals.Add(widget.NewLabel("No sessions recorded"))
		}
		a.totals.Refresh()
		a.sessionList.Refresh()
	})
}

func sessionsText(n int) string {
	if n == 1 {
		return "1 session"
	}
	return fmt.Sprintf("%d sessions", n)
}
