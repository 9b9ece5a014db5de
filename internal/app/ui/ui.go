// Package ui contains the user interface.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	kxdialog "github.com/ErikKalkoken/fyne-kx/dialog"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/prayertimes"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/qibla"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/scheduler"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/settings"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/tasbeeh"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/humanize"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/optional"
)

const (
	appNameDefault     = "Tasbeeh Buddy"
	clockTickInterval  = 30 * time.Second
	prayerFetchTimeout = 30 * time.Second
)

// Player plays and stops the audio cue.
type Player interface {
	Play(ctx context.Context) (string, error)
	Stop()
}

// PrayerTimesProvider provides prayer times.
type PrayerTimesProvider interface {
	TodayPrayerTimes(ctx context.Context) optional.Optional[app.PrayerTimes]
	Refresh(ctx context.Context) optional.Optional[app.PrayerTimes]
}

// CacheClearer clears caches.
type CacheClearer interface {
	Clear()
}

// Params are the parameters for creating a new UI.
type Params struct {
	App         fyne.App
	Cache       CacheClearer
	Counter     *tasbeeh.Counter
	Dhikrs      *tasbeeh.DhikrService
	Events      *tasbeeh.Events
	History     *tasbeeh.HistoryService
	Player      Player
	PrayerTimes PrayerTimesProvider
	Reminders   *scheduler.Service
	Sensors     qibla.Sensors
	Settings    *settings.Settings
	// optional
	DataPaths    map[string]string
	IsMobile     bool
	IsOffline    bool
	LastLocation func() (app.Location, bool)
}

// BaseUI is the root of the user interface.
type BaseUI struct {
	cache        CacheClearer
	counter      *tasbeeh.Counter
	dataPaths    map[string]string
	dhikrs       *tasbeeh.DhikrService
	events       *tasbeeh.Events
	fyneApp      fyne.App
	history      *tasbeeh.HistoryService
	isMobile     bool
	isOffline    bool
	lastLocation func() (app.Location, bool)
	player       Player
	prayerTimes  PrayerTimesProvider
	reminders    *scheduler.Service
	sensors      qibla.Sensors
	settings     *settings.Settings
	window       fyne.Window

	counterPage  *counterPage
	dhikrList    *dhikrList
	historyPage  *historyPage
	prayerPage   *prayerTimesPage
	qiblaPage    *qiblaPage
	settingsPage *userSettings
	snackbar     *snackbar
	tabs         *container.AppTabs

	isStartupCompleted atomic.Bool
}

// NewBaseUI returns a new BaseUI.
func NewBaseUI(arg Params) *BaseUI {
	if arg.App == nil || arg.Counter == nil || arg.Dhikrs == nil || arg.Events == nil || arg.History == nil ||
		arg.PrayerTimes == nil || arg.Settings == nil {
		panic("ui: missing parameters")
	}
	u := &BaseUI{
		cache:        arg.Cache,
		counter:      arg.Counter,
		dataPaths:    arg.DataPaths,
		dhikrs:       arg.Dhikrs,
		events:       arg.Events,
		fyneApp:      arg.App,
		history:      arg.History,
		isMobile:     arg.IsMobile,
		isOffline:    arg.IsOffline,
		lastLocation: arg.LastLocation,
		player:       arg.Player,
		prayerTimes:  arg.PrayerTimes,
		reminders:    arg.Reminders,
		sensors:      arg.Sensors,
		settings:     arg.Settings,
	}
	if u.sensors == nil {
		u.sensors = qibla.NoSensors{}
	}
	u.window = u.fyneApp.NewWindow(u.appName())
	u.setColorTheme(u.settings.DarkMode())
	u.snackbar = newSnackbar(u.window)

	u.counterPage = newCounterPage(u)
	u.dhikrList = newDhikrList(u)
	u.historyPage = newHistoryPage(u)
	u.prayerPage = newPrayerTimesPage(u)
	u.qiblaPage = newQiblaPage(u)
	u.settingsPage = newUserSettings(u)

	u.tabs = container.NewAppTabs(
		container.NewTabItemWithIcon("Counter", theme.ContentAddIcon(), u.counterPage),
		container.NewTabItemWithIcon("Dhikr", theme.ListIcon(), u.dhikrList),
		container.NewTabItemWithIcon("Prayer times", theme.HistoryIcon(), u.prayerPage),
		container.NewTabItemWithIcon("Qibla", theme.NavigateNextIcon(), u.qiblaPage),
		container.NewTabItemWithIcon("History", theme.DocumentIcon(), u.historyPage),
		container.NewTabItemWithIcon("Settings", theme.SettingsIcon(), u.settingsPage),
	)
	u.tabs.OnSelected = func(ti *container.TabItem) {
		switch ti.Content {
		case u.historyPage:
			go u.historyPage.update()
		case u.dhikrList:
			u.dhikrList.update()
		}
	}
	if u.isMobile {
		u.tabs.SetTabLocation(container.TabLocationBottom)
	} else {
		u.tabs.SetTabLocation(container.TabLocationLeading)
	}
	u.window.SetContent(fynetooltip.AddWindowToolTipLayer(u.tabs, u.window.Canvas()))
	u.window.Resize(fyne.NewSize(800, 600))
	u.window.SetMaster()

	u.events.DhikrCompleted.AddListener(func(_ context.Context, d app.Dhikr) {
		u.playCue()
		fyne.Do(func() {
			u.dhikrList.update()
		})
	}, "ui-dhikr-completed")
	u.events.CounterChanged.AddListener(func(_ context.Context, n int) {
		fyne.Do(func() {
			u.counterPage.setCount(n)
		})
	}, "ui-counter-changed")
	return u
}

func (u *BaseUI) appName() string {
	info := u.fyneApp.Metadata()
	name := info.Name
	if name == "" {
		return appNameDefault
	}
	return name
}

// App returns the fyne app.
func (u *BaseUI) App() fyne.App {
	return u.fyneApp
}

// MainWindow returns the main window.
func (u *BaseUI) MainWindow() fyne.Window {
	return u.window
}

// IsStartupCompleted reports whether the startup process has completed.
func (u *BaseUI) IsStartupCompleted() bool {
	return u.isStartupCompleted.Load()
}

// ShowAndRun shows the UI and runs the app. This function blocks.
func (u *BaseUI) ShowAndRun() {
	u.fyneApp.Lifecycle().SetOnStarted(func() {
		slog.Info("App started")
		u.snackbar.Start()
		if u.isOffline {
			slog.Info("Started in offline mode")
		}
		if u.reminders != nil {
			u.reminders.Start()
		}
		go u.loadData()
		go u.qiblaPage.start()
		go u.startClockTicker()
	})
	u.fyneApp.Lifecycle().SetOnStopped(func() {
		if u.player != nil {
			u.player.Stop()
		}
		u.qiblaPage.stop()
		u.snackbar.Stop()
		slog.Info("App shut down complete")
	})
	u.window.SetCloseIntercept(func() {
		u.window.Close()
		fynetooltip.DestroyWindowToolTipLayer(u.window.Canvas())
	})
	u.window.ShowAndRun()
}

// loadData loads the data shown on all pages.
// Prayer reminders are armed again once the prayer times of today are known.
func (u *BaseUI) loadData() {
	u.prayerPage.update()
	if u.reminders != nil {
		u.reminders.ArmPrayerReminders()
	}
	u.historyPage.update()
	fyne.Do(func() {
		u.dhikrList.update()
	})
	u.isStartupCompleted.Store(true)
}

// startClockTicker keeps time dependent information current.
func (u *BaseUI) startClockTicker() {
	ticker := time.NewTicker(clockTickInterval)
	defer ticker.Stop()
	day := app.DateOf(time.Now())
	for range ticker.C {
		if d := app.DateOf(time.Now()); d != day {
			day = d
			u.prayerPage.update()
			if u.reminders != nil {
				u.reminders.ArmPrayerReminders()
			}
			continue
		}
		fyne.Do(func() {
			u.prayerPage.refreshNext()
		})
	}
}

// playCue plays the audio cue when available.
func (u *BaseUI) playCue() {
	if u.player == nil {
		return
	}
	go func() {
		stage, err := u.player.Play(context.Background())
		if err != nil {
			slog.Warn("Failed to play audio cue", "error", err)
			return
		}
		slog.Debug("Audio cue played", "stage", stage)
	}()
}

func (u *BaseUI) setColorTheme(dark bool) {
	u.fyneApp.Settings().SetTheme(myTheme{isDark: dark})
}

// reportError logs an error and shows a short note to the user.
func (u *BaseUI) reportError(message string, err error) {
	slog.Error(message, "error", err)
	u.snackbar.Show(fmt.Sprintf("%s: %s", message, humanize.Error(err)))
}

func (u *BaseUI) showConfirmDialog(title, message, confirm string, callback func(bool)) {
	d := dialog.NewConfirm(title, message, callback, u.window)
	d.SetConfirmText(confirm)
	d.SetDismissText("Cancel")
	kxdialog.AddDialogKeyHandler(d, u.window)
	d.Show()
}
