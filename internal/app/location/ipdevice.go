package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
)

const (
	IPLocationURL = "https://ipapi.co/json/"
	// ipAccuracy is the assumed accuracy of a position derived from an IP address in meters.
	ipAccuracy = 5000.0
)

// IPDevice is a Device for computers without location hardware.
// Fresh fixes are derived from the public IP address.
// The last fix is persisted in a key/value store.
type IPDevice struct {
	httpClient *http.Client
	store      kvstore.Store
	url        string
	now        func() time.Time
}

var _ Device = (*IPDevice)(nil)

// NewIPDevice returns a new IPDevice. url defaults to [IPLocationURL] when empty.
func NewIPDevice(httpClient *http.Client, store kvstore.Store, url string) *IPDevice {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if url == "" {
		url = IPLocationURL
	}
	return &IPDevice{httpClient: httpClient, store: store, url: url, now: time.Now}
}

func (d *IPDevice) LastKnown(context.Context) (app.Fix, error) {
	fix, found, err := kvstore.GetJSON[app.Fix](d.store, keyLastFix)
	if err != nil {
		return app.Fix{}, err
	}
	if !found {
		return app.Fix{}, ErrNoFix
	}
	return fix, nil
}

func (d *IPDevice) RequestFix(ctx context.Context) (app.Fix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return app.Fix{}, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return app.Fix{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return app.Fix{}, fmt.Errorf("ip location: %s", resp.Status)
	}
	var data struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Error     bool    `json:"error"`
		Reason    string  `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return app.Fix{}, fmt.Errorf("ip location: decode: %w", err)
	}
	if data.Error {
		return app.Fix{}, fmt.Errorf("ip location: %s", data.Reason)
	}
	fix := app.Fix{
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
		Accuracy:  ipAccuracy,
		Time:      d.now(),
	}
	if fix.IsZero() {
		return app.Fix{}, ErrNoFix
	}
	if err := kvstore.SetJSON(d.store, keyLastFix, fix); err != nil {
		return app.Fix{}, err
	}
	return fix, nil
}
