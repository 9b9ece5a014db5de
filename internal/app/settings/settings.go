// Package settings provides typed access to the user settings.
package settings

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/ErikKalkoken/go-set"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
)

// Namespace is the key/value namespace for settings.
const Namespace = "Settings"

const (
	settingAutoLocation                = "auto_location"
	settingAutoLocationDefault         = true
	settingDarkMode                    = "dark_mode"
	settingDarkModeDefault             = false
	settingLogLevel                    = "log_level"
	settingLogLevelDefault             = "info"
	settingManualLatitude              = "manual_latitude"
	settingManualLongitude             = "manual_longitude"
	settingManualName                  = "manual_name"
	settingNotificationsEnabled        = "notifications"
	settingNotificationsEnabledDefault = true
	settingReminderPrayers             = "reminder_prayers"
	settingVibration                   = "vibration"
	settingVibrationDefault            = true
)

var logLevelName2Level = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"error":   slog.LevelError,
	"info":    slog.LevelInfo,
	"warning": slog.LevelWarn,
}

// Settings represents the user settings. All settings are stored individually.
type Settings struct {
	s kvstore.Store
}

// New returns a new Settings object which stores it's values in the settings namespace of s.
func New(s kvstore.Store) *Settings {
	return &Settings{s: kvstore.Namespace(s, Namespace)}
}

func (s *Settings) AutoLocation() bool {
	return kvstore.BoolWithFallback(s.s, settingAutoLocation, settingAutoLocationDefault)
}

func (s *Settings) SetAutoLocation(v bool) {
	kvstore.SetBool(s.s, settingAutoLocation, v)
}

func (s *Settings) DarkMode() bool {
	return kvstore.BoolWithFallback(s.s, settingDarkMode, settingDarkModeDefault)
}

func (s *Settings) SetDarkMode(v bool) {
	kvstore.SetBool(s.s, settingDarkMode, v)
}

func (s *Settings) NotificationsEnabled() bool {
	return kvstore.BoolWithFallback(s.s, settingNotificationsEnabled, settingNotificationsEnabledDefault)
}

func (s *Settings) SetNotificationsEnabled(v bool) {
	kvstore.SetBool(s.s, settingNotificationsEnabled, v)
}

func (s *Settings) Vibration() bool {
	return kvstore.BoolWithFallback(s.s, settingVibration, settingVibrationDefault)
}

func (s *Settings) SetVibration(v bool) {
	kvstore.SetBool(s.s, settingVibration, v)
}

func (s *Settings) LogLevel() string {
	v, ok := s.s.Get(settingLogLevel)
	if !ok {
		return settingLogLevelDefault
	}
	return v
}

func (s *Settings) LogLevelDefault() string {
	return settingLogLevelDefault
}

func (s *Settings) SetLogLevel(v string) {
	s.s.Set(settingLogLevel, v)
}

func (s *Settings) LogLevelNames() []string {
	x := slices.Collect(maps.Keys(logLevelName2Level))
	slices.Sort(x)
	return x
}

func (s *Settings) LogLevelSlog() slog.Level {
	l, ok := logLevelName2Level[s.LogLevel()]
	if !ok {
		return logLevelName2Level[settingLogLevelDefault]
	}
	return l
}

// ManualLocation returns the location entered by the user and reports whether it is set.
func (s *Settings) ManualLocation() (app.Location, bool) {
	loc := app.Location{
		Latitude:  kvstore.FloatWithFallback(s.s, settingManualLatitude, 0),
		Longitude: kvstore.FloatWithFallback(s.s, settingManualLongitude, 0),
	}
	if loc.IsZero() {
		return app.Location{}, false
	}
	loc.Name, _ = s.s.Get(settingManualName)
	return loc, true
}

func (s *Settings) SetManualLocation(loc app.Location) {
	kvstore.SetFloat(s.s, settingManualLatitude, loc.Latitude)
	kvstore.SetFloat(s.s, settingManualLongitude, loc.Longitude)
	s.s.Set(settingManualName, loc.Name)
}

func (s *Settings) ResetManualLocation() {
	s.s.Delete(settingManualLatitude)
	s.s.Delete(settingManualLongitude)
	s.s.Delete(settingManualName)
}

// ReminderPrayers returns the prayers with enabled reminders. By default all are enabled.
func (s *Settings) ReminderPrayers() set.Set[app.Prayer] {
	names, found, err := kvstore.GetJSON[[]string](s.s, settingReminderPrayers)
	if err != nil {
		slog.Warn("settings: invalid reminder prayers", "error", err)
	}
	if !found || err != nil {
		return set.Of(app.Prayers()...)
	}
	var r set.Set[app.Prayer]
	for _, p := range app.Prayers() {
		if slices.Contains(names, p.String()) {
			r.Add(p)
		}
	}
	return r
}

func (s *Settings) SetReminderPrayers(prayers set.Set[app.Prayer]) {
	var names []string
	for _, p := range app.Prayers() {
		if prayers.Contains(p) {
			names = append(names, p.String())
		}
	}
	if names == nil {
		names = []string{}
	}
	if err := kvstore.SetJSON(s.s, settingReminderPrayers, names); err != nil {
		slog.Error("settings: store reminder prayers", "error", err)
	}
}
