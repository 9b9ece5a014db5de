// Tasbeeh Buddy is a tasbeeh counter with prayer times, Qibla direction and reminders.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/juju/mutex/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/audio"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/location"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/pcache"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/prayertimes"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/qibla"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/scheduler"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/settings"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/storage"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/tasbeeh"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/ui"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/appdirs"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/httpclient"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
)

const (
	appID               = "io.github.erikkalkoken.tasbeehbuddy"
	appName             = "tasbeehbuddy"
	cacheCleanUpTimeout = time.Hour
	httpCacheTimeout    = 24 * time.Hour
	logMaxBackups       = 3
	logMaxSizeMB        = 20
	mutexDelay          = 50 * time.Millisecond
	mutexTimeout        = 250 * time.Millisecond
	userAgent           = "TasbeehBuddy/1.0 (+https://github.com/ErikKalkoken/tasbeehbuddy)"
)

// defined flags
var (
	levelFlag    logLevelFlag
	logFileFlag  = flag.Bool("logfile", true, "Write logs to a file instead of the console")
	offlineFlag  = flag.Bool("offline", false, "Start app in offline mode")
	showDirsFlag = flag.Bool("show-dirs", false, "Show directories where user data is stored")
)

func init() {
	flag.Var(&levelFlag, "loglevel", "set log level")
}

func main() {
	flag.Parse()
	fyneApp := fyneapp.NewWithID(appID)
	ad, err := appdirs.New(appName)
	if err != nil {
		log.Fatal(err)
	}
	if *showDirsFlag {
		fmt.Printf("Database: %s\n", ad.DBPath())
		fmt.Printf("Logs: %s\n", ad.Log)
		return
	}
	if *logFileFlag {
		log.SetOutput(&lumberjack.Logger{
			Filename:   ad.LogPath(),
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
		})
	}

	store := kvstore.NewPreferences(fyneApp.Preferences())
	s := settings.New(store)
	if levelFlag.isSet {
		slog.SetLogLoggerLevel(levelFlag.value)
	} else {
		slog.SetLogLoggerLevel(s.LogLevelSlog())
	}
	slog.Info("Starting app", "version", fyneApp.Metadata().Version, "os", runtime.GOOS)

	r, err := acquireInstance()
	if errors.Is(err, mutex.ErrTimeout) {
		slog.Warn("Another instance is already running. Exiting")
		fmt.Fprintln(os.Stderr, "Tasbeeh Buddy is already running")
		os.Exit(1)
	} else if err != nil {
		log.Fatalf("Failed to acquire instance lock: %s", err)
	}
	defer r.Release()

	db, err := storage.InitDB("file:" + ad.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize database %s: %s", ad.DBPath(), err)
	}
	defer db.Close()
	st := storage.New(db)
	pc := pcache.New(st, cacheCleanUpTimeout)
	defer pc.Close()

	httpClient := httpclient.New(httpclient.Params{
		Cache:     httpclient.NewCacheAdapter(pc, "httpcache-", httpCacheTimeout),
		UserAgent: userAgent,
	})
	tasbeehStore := kvstore.Namespace(store, prayertimes.Namespace)
	resolver := location.NewResolver(location.NewIPDevice(httpClient, tasbeehStore, ""), s, tasbeehStore)
	var connectivity prayertimes.Connectivity
	if *offlineFlag {
		connectivity = prayertimes.Offline
	} else {
		// no retries for the probe
		connectivity = prayertimes.NewProbe(&http.Client{}, "")
	}
	provider := prayertimes.NewProvider(prayertimes.Params{
		Connectivity: connectivity,
		Geocoder:     location.NewGeocoder(httpClient, ""),
		Locator:      resolver,
		Store:        tasbeehStore,
		Timings:      prayertimes.NewClient(httpClient, ""),
	})

	speaker := audio.NewSpeaker()
	defer speaker.Close()
	player := audio.NewDefaultChain(speaker)

	events := tasbeeh.NewEvents()
	activity := tasbeeh.NewActivity(tasbeehStore)
	history := tasbeeh.NewHistoryService(st)
	dhikrs, err := tasbeeh.NewDhikrService(kvstore.Namespace(store, tasbeeh.DhikrNamespace), events)
	if err != nil {
		log.Fatal(err)
	}
	reminders := scheduler.NewService(scheduler.Params{
		Activity:    activity,
		Alarms:      scheduler.NewTimerAlarms(),
		Notifier:    ui.NewNotifier(fyneApp),
		Player:      player,
		PrayerTimes: provider,
		Settings:    s,
	})
	u := ui.NewBaseUI(ui.Params{
		App:         fyneApp,
		Cache:       pc,
		Counter:     tasbeeh.NewCounter(activity, history, events),
		Dhikrs:      dhikrs,
		Events:      events,
		History:     history,
		Player:      player,
		PrayerTimes: provider,
		Reminders:   reminders,
		Sensors:     qibla.NoSensors{},
		Settings:    s,
		DataPaths:   ad.Paths(),
		IsMobile:    fyneApp.Driver().Device().IsMobile(),
		IsOffline:   *offlineFlag,
		LastLocation: func() (app.Location, bool) {
			return location.Saved(tasbeehStore)
		},
	})
	u.ShowAndRun()
	reminders.CancelAll()
}

// acquireInstance makes sure only one instance of the app is running.
func acquireInstance() (mutex.Releaser, error) {
	return mutex.Acquire(mutex.Spec{
		Name:    appName,
		Clock:   realClock{},
		Delay:   mutexDelay,
		Timeout: mutexTimeout,
	})
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (realClock) Now() time.Time {
	return time.Now()
}
