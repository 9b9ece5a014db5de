package ui

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxdialog "github.com/ErikKalkoken/fyne-kx/dialog"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/humanize"
)

// dhikrList is the screen with the dhikr checklist.
type dhikrList struct {
	widget.BaseWidget

	items []app.Dhikr
	list  *widget.List
	top   *widget.Label
	u     *BaseUI
}

func newDhikrList(u *BaseUI) *dhikrList {
	a := &dhikrList{
		top: widget.NewLabel(""),
		u:   u,
	}
	a.ExtendBaseWidget(a)
	a.list = a.makeList()
	return a
}

func (a *dhikrList) CreateRenderer() fyne.WidgetRenderer {
	add := widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), func() {
		a.showAddDialog()
	})
	resetAll := widget.NewButtonWithIcon("Reset all", theme.MediaReplayIcon(), func() {
		a.u.showConfirmDialog(
			"Reset all",
			"Do you want to reset the progress of all dhikr?",
			"Reset",
			func(confirmed bool) {
				if !confirmed {
					return
				}
				if err := a.u.dhikrs.ResetAll(); err != nil {
					a.u.reportError("Failed to reset dhikr", err)
				}
				a.update()
			})
	})
	c := container.NewBorder(
		container.NewHBox(a.top, layout.NewSpacer(), add, resetAll),
		nil,
		nil,
		nil,
		a.list,
	)
	return widget.NewSimpleRenderer(c)
}

func (a *dhikrList) makeList() *widget.List {
	l := widget.NewList(
		func() int {
			return len(a.items)
		},
		func() fyne.CanvasObject {
			arabic := widget.NewLabel("Template")
			arabic.TextStyle.Bold = true
			arabic.Truncation = fyne.TextTruncateEllipsis
			translation := widget.NewLabel("Template")
			translation.SizeName = theme.SizeNameCaptionText
			translation.Truncation = fyne.TextTruncateEllipsis
			progress := widget.NewProgressBar()
			increment := ttwidget.NewButtonWithIcon("", theme.ContentAddIcon(), nil)
			increment.SetToolTip("Count one")
			reset := ttwidget.NewButtonWithIcon("", theme.MediaReplayIcon(), nil)
			reset.SetToolTip("Reset progress")
			remove := ttwidget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			remove.SetToolTip("Delete custom dhikr")
			return container.NewBorder(
				nil,
				progress,
				nil,
				container.NewHBox(increment, reset, remove),
				container.NewVBox(arabic, translation),
			)
		},
		func(id widget.ListItemID, co fyne.CanvasObject) {
			if id >= len(a.items) {
				return
			}
			d := a.items[id]
			border := co.(*fyne.Container).Objects
			texts := border[0].(*fyne.Container).Objects
			texts[0].(*widget.Label).SetText(d.Arabic)
			texts[1].(*widget.Label).SetText(d.Translation)
			progress := border[1].(*widget.ProgressBar)
			progress.TextFormatter = func() string {
				return humanize.Progress(d.Current, d.Target)
			}
			progress.SetValue(d.Progress())
			buttons := border[2].(*fyne.Container).Objects
			increment := buttons[0].(*ttwidget.Button)
			increment.OnTapped = func() {
				a.incrementItem(d.ID)
			}
			if d.IsComplete() {
				increment.Disable()
			} else {
				increment.Enable()
			}
			reset := buttons[1].(*ttwidget.Button)
			reset.OnTapped = func() {
				if _, err := a.u.dhikrs.Reset(d.ID); err != nil {
					a.u.reportError("Failed to reset dhikr", err)
				}
				a.update()
			}
			remove := buttons[2].(*ttwidget.Button)
			if d.IsCustom {
				remove.OnTapped = func() {
					a.deleteItem(d)
				}
				remove.Show()
			} else {
				remove.Hide()
			}
		},
	)
	l.OnSelected = func(id widget.ListItemID) {
		l.UnselectAll()
	}
	return l
}

// update refreshes the list from the dhikr service. Must be called on the UI thread.
func (a *dhikrList) update() {
	a.items = a.u.dhikrs.List()
	var done int
	for _, d := range a.items {
		if d.IsComplete() {
			done++
		}
	}
	a.top.SetText(humanize.Progress(done, len(a.items)) + " complete")
	a.list.Refresh()
	a.u.counterPage.updateDhikrOptions()
}

func (a *dhikrList) incrementItem(id string) {
	if _, err := a.u.dhikrs.Increment(context.Background(), id); err != nil {
		a.u.reportError("Failed to count dhikr", err)
	}
	a.update()
}

func (a *dhikrList) deleteItem(d app.Dhikr) {
	a.u.showConfirmDialog(
		"Delete dhikr",
		"Do you want to delete \""+dhikrLabel(d)+"\"?",
		"Delete",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			if err := a.u.dhikrs.DeleteCustom(d.ID); err != nil {
				a.u.reportError("Failed to delete dhikr", err)
				return
			}
			slog.Info("Custom dhikr deleted", "id", d.ID)
			a.update()
		})
}

func (a *dhikrList) showAddDialog() {
	arabic := widget.NewEntry()
	arabic.Validator = func(s string) error {
		if s == "" {
			return errors.New("can not be empty")
		}
		return nil
	}
	translation := widget.NewEntry()
	target := widget.NewEntry()
	target.SetText("33")
	target.Validator = func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return errors.New("must be a positive number")
		}
		return nil
	}
	items := []*widget.FormItem{
		widget.NewFormItem("Arabic", arabic),
		widget.NewFormItem("Translation", translation),
		widget.NewFormItem("Target", target),
	}
	w := a.u.MainWindow()
	d := dialog.NewForm("Add dhikr", "Add", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		n, _ := strconv.Atoi(target.Text)
		x, err := a.u.dhikrs.AddCustom(arabic.Text, translation.Text, n)
		if err != nil {
			a.u.reportError("Failed to add dhikr", err)
			return
		}
		slog.Info("Custom dhikr added", "id", x.ID)
		a.update()
	}, w)
	kxdialog.AddDialogKeyHandler(d, w)
	_, s := w.Canvas().InteractiveArea()
	d.Resize(fyne.NewSize(s.Width*dialogWidthScale, dialogHeightMin))
	d.Show()
}
