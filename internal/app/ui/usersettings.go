package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	kxdialog "github.com/ErikKalkoken/fyne-kx/dialog"
	kxmodal "github.com/ErikKalkoken/fyne-kx/modal"
	kxwidget "github.com/ErikKalkoken/fyne-kx/widget"
	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
)

// userSettings is the screen for changing the user settings.
type userSettings struct {
	widget.BaseWidget

	actions *kxwidget.IconButton
	list    *SettingList
	u       *BaseUI
}

func newUserSettings(u *BaseUI) *userSettings {
	a := &userSettings{u: u}
	a.ExtendBaseWidget(a)
	a.list, a.actions = a.makeSettings()
	return a
}

func (a *userSettings) CreateRenderer() fyne.WidgetRenderer {
	title := widget.NewLabel("Settings")
	title.TextStyle.Bold = true
	c := container.NewBorder(
		container.NewHBox(title, layout.NewSpacer(), a.actions),
		nil,
		nil,
		nil,
		a.list,
	)
	return widget.NewSimpleRenderer(c)
}

func (a *userSettings) makeSettings() (*SettingList, *kxwidget.IconButton) {
	s := a.u.settings
	w := a.u.MainWindow()
	darkMode := NewSettingItemSwitch(SettingItemSwitch{
		label:  "Dark mode",
		hint:   "Use a dark color scheme",
		getter: s.DarkMode,
		onChanged: func(on bool) {
			s.SetDarkMode(on)
			a.u.setColorTheme(on)
		},
	})
	vibration := NewSettingItemSwitch(SettingItemSwitch{
		defaultValue: true,
		label:        "Vibration",
		hint:         "Give feedback for every count",
		getter:       s.Vibration,
		onChanged:    s.SetVibration,
	})
	logLevel := NewSettingItemOptions(SettingItemOptions{
		label:        "Log level",
		hint:         "Set current log level",
		options:      s.LogLevelNames(),
		defaultValue: s.LogLevelDefault(),
		getter:       s.LogLevel,
		setter: func(v string) {
			s.SetLogLevel(v)
			slog.SetLogLoggerLevel(s.LogLevelSlog())
		},
		isMobile: a.u.isMobile,
		window:   w,
	})
	autoLocation := NewSettingItemSwitch(SettingItemSwitch{
		defaultValue: true,
		label:        "Automatic location",
		hint:         "Find the location for prayer times automatically",
		getter:       s.AutoLocation,
		onChanged:    s.SetAutoLocation,
	})
	manualLocation := NewSettingItemCustom(SettingItemCustom{
		label: "Manual location",
		hint:  "Location used when automatic location is off",
		getter: func() any {
			loc, ok := s.ManualLocation()
			if !ok {
				return "Not set"
			}
			return loc.String()
		},
		onSelected: func(it SettingItem, refresh func()) {
			a.showManualLocationDialog(refresh)
		},
	})
	notifications := NewSettingItemSwitch(SettingItemSwitch{
		defaultValue: true,
		label:        "Notifications",
		hint:         "Remind about prayers and missed tasbeeh",
		getter:       s.NotificationsEnabled,
		onChanged: func(on bool) {
			s.SetNotificationsEnabled(on)
			a.updateReminders(on)
		},
	})
	reminderPrayers := NewSettingItemCustom(SettingItemCustom{
		label: "Prayer reminders",
		hint:  "Prayers with a reminder 5 minutes after they begin",
		getter: func() any {
			return s.ReminderPrayers()
		},
		formatter: func(v any) string {
			prayers := v.(set.Set[app.Prayer])
			if prayers.Size() == 0 {
				return "None"
			}
			if prayers.Size() == len(app.Prayers()) {
				return "All"
			}
			return strconv.Itoa(prayers.Size())
		},
		onSelected: func(it SettingItem, refresh func()) {
			a.showReminderPrayersDialog(refresh)
		},
	})
	items := []SettingItem{
		NewSettingItemHeading("General"),
		darkMode,
		vibration,
		logLevel,
		NewSettingItemHeading("Location"),
		autoLocation,
		manualLocation,
		NewSettingItemHeading("Notifications"),
		notifications,
		reminderPrayers,
	}
	list := NewSettingList(items)

	reset := settingAction{
		Label: "Reset to defaults",
		Action: func() {
			for _, it := range []SettingItem{darkMode, vibration, logLevel, autoLocation, notifications} {
				it.Reset()
			}
			s.SetReminderPrayers(set.Of(app.Prayers()...))
			a.updateReminders(s.NotificationsEnabled())
			list.Refresh()
		},
	}
	testNotification := settingAction{
		Label: "Send test notification",
		Action: func() {
			a.u.App().SendNotification(fyne.NewNotification("Test", "This is a test notification from "+a.u.appName()))
		},
	}
	testSound := settingAction{
		Label: "Play completion sound",
		Action: func() {
			a.u.playCue()
		},
	}
	clearCache := settingAction{
		Label: "Clear cache",
		Action: func() {
			a.u.showConfirmDialog(
				"Clear cache",
				"Are you sure you want to clear the cache?",
				"Clear",
				func(confirmed bool) {
					if !confirmed {
						return
					}
					a.clearCache()
				})
		},
	}
	showDirs := settingAction{
		Label: "Show data folders",
		Action: func() {
			a.showDataPaths()
		},
	}
	actions := []settingAction{reset, testNotification, testSound}
	if a.u.cache != nil {
		actions = append(actions, clearCache)
	}
	if len(a.u.dataPaths) > 0 {
		actions = append(actions, showDirs)
	}
	actions = append(actions, settingAction{Label: "About", Action: a.u.showAboutDialog})
	return list, makeIconButtonFromActions(actions)
}

func (a *userSettings) updateReminders(enabled bool) {
	r := a.u.reminders
	if r == nil {
		return
	}
	if enabled {
		r.Start()
	} else {
		r.CancelAll()
	}
}

func (a *userSettings) clearCache() {
	m := kxmodal.NewProgressInfinite("Clearing cache...", "", func() error {
		a.u.cache.Clear()
		return nil
	}, a.u.MainWindow())
	m.OnSuccess = func() {
		slog.Info("Cleared cache")
		a.u.snackbar.Show("Cache cleared")
	}
	m.OnError = func(err error) {
		a.u.reportError("Failed to clear cache", err)
	}
	m.Start()
}

func (a *userSettings) showManualLocationDialog(refresh func()) {
	s := a.u.settings
	current, _ := s.ManualLocation()
	validateCoordinate := func(limit float64) func(string) error {
		return func(v string) error {
			x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return errors.New("not a number")
			}
			if x < -limit || x > limit {
				return fmt.Errorf("must be between %.0f and %.0f", -limit, limit)
			}
			return nil
		}
	}
	lat := widget.NewEntry()
	lat.Validator = validateCoordinate(90)
	lon := widget.NewEntry()
	lon.Validator = validateCoordinate(180)
	name := widget.NewEntry()
	name.PlaceHolder = "Optional"
	if !current.IsZero() {
		lat.SetText(strconv.FormatFloat(current.Latitude, 'f', -1, 64))
		lon.SetText(strconv.FormatFloat(current.Longitude, 'f', -1, 64))
		name.SetText(current.Name)
	}
	items := []*widget.FormItem{
		widget.NewFormItem("Latitude", lat),
		widget.NewFormItem("Longitude", lon),
		widget.NewFormItem("Name", name),
	}
	w := a.u.MainWindow()
	d := dialog.NewForm("Manual location", "Save", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		x, _ := strconv.ParseFloat(strings.TrimSpace(lat.Text), 64)
		y, _ := strconv.ParseFloat(strings.TrimSpace(lon.Text), 64)
		loc := app.Location{Latitude: x, Longitude: y, Name: strings.TrimSpace(name.Text)}
		if loc.IsZero() {
			s.ResetManualLocation()
		} else {
			s.SetManualLocation(loc)
		}
		slog.Info("Manual location updated", "location", loc)
		refresh()
	}, w)
	kxdialog.AddDialogKeyHandler(d, w)
	_, size := w.Canvas().InteractiveArea()
	d.Resize(fyne.NewSize(size.Width*dialogWidthScale, dialogHeightMin))
	d.Show()
}

func (a *userSettings) showReminderPrayersDialog(refresh func()) {
	s := a.u.settings
	name2prayer := make(map[string]app.Prayer)
	for _, p := range app.Prayers() {
		name2prayer[p.Display()] = p
	}
	var options, selected []string
	enabled := s.ReminderPrayers()
	for _, p := range app.Prayers() {
		options = append(options, p.Display())
		if enabled.Contains(p) {
			selected = append(selected, p.Display())
		}
	}
	check := widget.NewCheckGroup(options, func(names []string) {
		var prayers set.Set[app.Prayer]
		for _, n := range names {
			prayers.Add(name2prayer[n])
		}
		s.SetReminderPrayers(prayers)
		if a.u.reminders != nil && s.NotificationsEnabled() {
			a.u.reminders.ArmPrayerReminders()
		}
	})
	check.Selected = selected
	d := makeSettingDialog(makeSettingDialogParams{
		setting:  check,
		label:    "Prayer reminders",
		hint:     "Choose the prayers to be reminded of",
		isMobile: a.u.isMobile,
		reset: func() {
			check.SetSelected(slices.Sorted(maps.Keys(name2prayer)))
		},
		refresh: refresh,
		window:  a.u.MainWindow(),
	})
	d.Show()
}

func (a *userSettings) showDataPaths() {
	f := widget.NewForm()
	for _, k := range slices.Sorted(maps.Keys(a.u.dataPaths)) {
		v := widget.NewLabel(a.u.dataPaths[k])
		v.Wrapping = fyne.TextWrapBreak
		f.Append(k, v)
	}
	w := a.u.MainWindow()
	d := dialog.NewCustom("Data folders", "Close", f, w)
	kxdialog.AddDialogKeyHandler(d, w)
	d.Show()
}
