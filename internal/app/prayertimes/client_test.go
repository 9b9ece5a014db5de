package prayertimes_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/prayertimes"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	day := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	t.Run("should return prayer times", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder(
			"GET",
			"https://api.aladhan.com/v1/timings/02-01-2024?latitude=52.52&longitude=13.4&method=2",
			httpmock.NewJsonResponderOrPanic(200, map[string]any{
				"code": 200,
				"data": map[string]any{
					"timings": map[string]string{
						"Fajr":     "06:25 (CET)",
						"Sunrise":  "08:17",
						"Dhuhr":    "12:13",
						"Asr":      "13:50",
						"Sunset":   "16:08",
						"Maghrib":  "16:08",
						"Isha":     "18:00",
						"Midnight": "00:13",
					},
				},
			}))
		c := prayertimes.NewClient(http.DefaultClient, "")
		// when
		got, err := c.Timings(ctx, day, 52.52, 13.4)
		// then
		require.NoError(t, err)
		want := app.PrayerTimes{
			Date:    "2024-01-02",
			Fajr:    "06:25",
			Sunrise: "08:17",
			Dhuhr:   "12:13",
			Asr:     "13:50",
			Maghrib: "16:08",
			Isha:    "18:00",
		}
		assert.Equal(t, want, got)
	})
	cases := []struct {
		name   string
		status int
		body   any
	}{
		{"http error", 500, map[string]any{}},
		{"api error", 200, map[string]any{"code": 400, "data": "Invalid date"}},
		{"missing prayer", 200, map[string]any{
			"code": 200, "data": map[string]any{"timings": map[string]string{"Fajr": "05:00"}},
		}},
		{"invalid time", 200, map[string]any{
			"code": 200, "data": map[string]any{"timings": map[string]string{
				"Fajr": "5am", "Dhuhr": "12:00", "Asr": "15:00", "Maghrib": "18:00", "Isha": "19:00",
			}},
		}},
	}
	for _, tc := range cases {
		t.Run("should report error for "+tc.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder(
				"GET",
				`=~^https://api\.aladhan\.com/v1/timings/`,
				httpmock.NewJsonResponderOrPanic(tc.status, tc.body),
			)
			c := prayertimes.NewClient(http.DefaultClient, "")
			_, err := c.Timings(ctx, day, 1, 2)
			assert.Error(t, err)
		})
	}
	t.Run("should report error for invalid json", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder(
			"GET",
			`=~^https://api\.aladhan\.com/v1/timings/`,
			httpmock.NewStringResponder(200, "<html>"),
		)
		c := prayertimes.NewClient(http.DefaultClient, "")
		_, err := c.Timings(ctx, day, 1, 2)
		assert.Error(t, err)
	})
}

func TestProbe(t *testing.T) {
	ctx := context.Background()
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	t.Run("should report online when host responds", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("HEAD", prayertimes.AladhanURL, httpmock.NewStringResponder(404, ""))
		p := prayertimes.NewProbe(http.DefaultClient, "")
		assert.True(t, p.Online(ctx))
	})
	t.Run("should report offline when host is not reachable", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterNoResponder(httpmock.ConnectionFailure)
		p := prayertimes.NewProbe(http.DefaultClient, "")
		assert.False(t, p.Online(ctx))
	})
	t.Run("offline should always report offline", func(t *testing.T) {
		assert.False(t, prayertimes.Offline.Online(ctx))
	})
}
