package main

import (
	"fmt"
	"log/slog"
	"strings"
)

var logLevelName2Level = map[string]slog.Level{
	"DEBUG": slog.LevelDebug,
	"INFO":  slog.LevelInfo,
	"WARN":  slog.LevelWarn,
	"ERROR": slog.LevelError,
}

// logLevelFlag is a command line flag for setting the log level.
// It overrides the log level from the settings when set.
type logLevelFlag struct {
	value slog.Level
	isSet bool
}

func (l logLevelFlag) String() string {
	return l.value.String()
}

func (l *logLevelFlag) Set(value string) error {
	v, ok := logLevelName2Level[strings.ToUpper(value)]
	if !ok {
		return fmt.Errorf("unknown log level: %s", value)
	}
	l.value = v
	l.isSet = true
	return nil
}
