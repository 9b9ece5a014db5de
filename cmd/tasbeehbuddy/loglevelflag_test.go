package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevelFlag(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"Warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var f logLevelFlag
			err := f.Set(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				assert.False(t, f.isSet)
				return
			}
			assert.NoError(t, err)
			assert.True(t, f.isSet)
			assert.Equal(t, tc.want, f.value)
			assert.Equal(t, tc.want.String(), f.String())
		})
	}
}
