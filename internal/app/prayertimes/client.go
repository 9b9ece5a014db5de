package prayertimes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
)

const (
	AladhanURL = "https://api.aladhan.com/v1"
	// calculationMethod is the Aladhan calculation method (2 = Islamic Society of North America).
	calculationMethod = 2
	apiDateFormat     = "02-01-2006"
	apiTimeout        = 5 * time.Second
)

var ErrInvalidResponse = errors.New("invalid response")

// Client is a client for the Aladhan timings API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a new Client. baseURL defaults to [AladhanURL] when empty.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = AladhanURL
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type timingsResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

// Timings fetches the prayer times for a coordinate on the date of day.
// All times are returned in the format "HH:MM".
func (c *Client) Timings(ctx context.Context, day time.Time, lat, lon float64) (app.PrayerTimes, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	v.Set("method", strconv.Itoa(calculationMethod))
	u := fmt.Sprintf("%s/timings/%s?%s", c.baseURL, day.Format(apiDateFormat), v.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return app.PrayerTimes{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return app.PrayerTimes{}, fmt.Errorf("timings: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return app.PrayerTimes{}, fmt.Errorf("timings: %s", resp.Status)
	}
	var data timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return app.PrayerTimes{}, fmt.Errorf("timings: decode: %w", err)
	}
	if data.Code != http.StatusOK {
		return app.PrayerTimes{}, fmt.Errorf("timings: code %d: %w", data.Code, ErrInvalidResponse)
	}
	return parseTimings(app.DateOf(day), data.Data.Timings)
}

func parseTimings(date string, timings map[string]string) (app.PrayerTimes, error) {
	pt := app.PrayerTimes{Date: date}
	fields := []struct {
		name     string
		target   *string
		required bool
	}{
		{"Fajr", &pt.Fajr, true},
		{"Sunrise", &pt.Sunrise, false},
		{"Dhuhr", &pt.Dhuhr, true},
		{"Asr", &pt.Asr, true},
		{"Maghrib", &pt.Maghrib, true},
		{"Isha", &pt.Isha, true},
	}
	for _, f := range fields {
		s, ok := timings[f.name]
		if !ok {
			if f.required {
				return app.PrayerTimes{}, fmt.Errorf("timings: %s missing: %w", f.name, ErrInvalidResponse)
			}
			continue
		}
		tod, err := app.ParseTimeOfDay(s)
		if err != nil {
			return app.PrayerTimes{}, fmt.Errorf("timings: %s: %w", f.name, err)
		}
		*f.target = tod.String()
	}
	return pt, nil
}
