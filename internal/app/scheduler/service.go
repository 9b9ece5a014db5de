package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
)

const (
	// KeyMissedTasbeeh is the task key of the missed tasbeeh check.
	KeyMissedTasbeeh = "reset"
	// MissedTasbeehGap is the time without activity after which a tasbeeh counts as missed.
	MissedTasbeehGap = 24 * time.Hour
	// ReminderOffset is the time after the start of a prayer when the reminder fires.
	ReminderOffset = 5 * time.Minute
	playTimeout    = 10 * time.Second
)

// MissedTasbeehCheckTime is the local time of the daily missed tasbeeh check.
var MissedTasbeehCheckTime = app.TimeOfDay{Hour: 20, Minute: 0}

// DefaultPrayerTimes are used for reminders when no prayer times are cached for today.
var DefaultPrayerTimes = map[app.Prayer]app.TimeOfDay{
	app.Fajr:    {Hour: 5, Minute: 0},
	app.Dhuhr:   {Hour: 12, Minute: 30},
	app.Asr:     {Hour: 15, Minute: 30},
	app.Maghrib: {Hour: 18, Minute: 0},
	app.Isha:    {Hour: 19, Minute: 30},
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(title, content string)
}

// Player plays an audio cue.
type Player interface {
	Play(ctx context.Context) (string, error)
}

// Activity provides the time of the last tasbeeh activity.
type Activity interface {
	LastActivity() (time.Time, bool)
}

// PrayerTimes provides cached prayer times.
type PrayerTimes interface {
	CachedFor(date string) (app.PrayerTimes, bool)
}

// Settings provides the settings relevant for reminders.
type Settings interface {
	NotificationsEnabled() bool
	ReminderPrayers() set.Set[app.Prayer]
}

// Service arms the app's reminders and the missed tasbeeh check.
type Service struct {
	activity    Activity
	notifier    Notifier
	player      Player
	prayerTimes PrayerTimes
	scheduler   *Scheduler
	settings    Settings

	now func() time.Time
}

type Params struct {
	Activity    Activity
	Alarms      Alarms
	Notifier    Notifier
	PrayerTimes PrayerTimes
	Settings    Settings
	// optional
	Player Player
	Now    func() time.Time
}

// NewService returns a new Service.
func NewService(arg Params) *Service {
	if arg.Activity == nil || arg.Alarms == nil || arg.Notifier == nil || arg.PrayerTimes == nil || arg.Settings == nil {
		panic("scheduler: missing parameters")
	}
	s := &Service{
		activity:    arg.Activity,
		notifier:    arg.Notifier,
		player:      arg.Player,
		prayerTimes: arg.PrayerTimes,
		scheduler:   New(arg.Alarms),
		settings:    arg.Settings,
		now:         arg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.scheduler.now = s.now
	return s
}

// Start arms the missed tasbeeh check and the enabled prayer reminders.
func (s *Service) Start() {
	s.ArmMissedTasbeehCheck()
	s.ArmPrayerReminders()
}

// ArmMissedTasbeehCheck arms the daily missed tasbeeh check.
func (s *Service) ArmMissedTasbeehCheck() {
	s.scheduler.Arm(Task{
		Key: KeyMissedTasbeeh,
		Next: func(now time.Time) time.Time {
			return NextFire(now, MissedTasbeehCheckTime, 0)
		},
		Run: s.runMissedTasbeehCheck,
	})
}

func (s *Service) runMissedTasbeehCheck() {
	if !s.settings.NotificationsEnabled() {
		return
	}
	if !s.IsTasbeehMissed() {
		return
	}
	s.notifier.Notify("Tasbeeh reminder", "You have not done your tasbeeh for more than a day.")
	slog.Info("Missed tasbeeh notification sent")
}

// IsTasbeehMissed reports whether the last activity is at least one day ago.
// It reports false when there was no activity yet.
func (s *Service) IsTasbeehMissed() bool {
	last, ok := s.activity.LastActivity()
	if !ok {
		return false
	}
	return s.now().Sub(last) >= MissedTasbeehGap
}

// ArmPrayerReminders arms the reminders for all enabled prayers and cancels the others.
func (s *Service) ArmPrayerReminders() {
	enabled := s.settings.ReminderPrayers()
	for _, p := range app.Prayers() {
		if !enabled.Contains(p) {
			s.scheduler.Cancel(p.String())
			continue
		}
		s.scheduler.Arm(Task{
			Key: p.String(),
			Next: func(now time.Time) time.Time {
				return NextFire(now, s.PrayerTime(now, p), ReminderOffset)
			},
			Run: func() {
				s.runPrayerReminder(p)
			},
		})
	}
}

// PrayerTime returns the time of a prayer on the day of now from the cached prayer times
// or the default time when not available.
func (s *Service) PrayerTime(now time.Time, p app.Prayer) app.TimeOfDay {
	pt, ok := s.prayerTimes.CachedFor(app.DateOf(now))
	if ok {
		tod, err := pt.TimeOfDay(p)
		if err == nil {
			return tod
		}
		slog.Warn("Invalid cached prayer time", "prayer", p, "error", err)
	}
	return DefaultPrayerTimes[p]
}

func (s *Service) runPrayerReminder(p app.Prayer) {
	if !s.settings.NotificationsEnabled() {
		return
	}
	s.notifier.Notify(p.Display(), fmt.Sprintf("It is time for %s prayer.", p.Display()))
	if s.player == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()
	if _, err := s.player.Play(ctx); err != nil {
		slog.Warn("Failed to play prayer reminder", "prayer", p, "error", err)
	}
}

// Cancel cancels the alarm for key.
func (s *Service) Cancel(key string) {
	s.scheduler.Cancel(key)
}

// CancelAll cancels all alarms.
func (s *Service) CancelAll() {
	s.scheduler.CancelAll()
}

// Armed returns the keys of all armed alarms.
func (s *Service) Armed() []string {
	return s.scheduler.Keys()
}
