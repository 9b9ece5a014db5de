package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/xsync"
)

const (
	NominatimURL     = "https://nominatim.openstreetmap.org"
	geocodeTimeout   = 5 * time.Second
	geocodeRateLimit = time.Second
)

// addressFields are the address fields tried for a place name in order of preference.
var addressFields = []string{"city", "town", "village", "municipality", "county", "state"}

// Geocoder resolves place names from coordinates via a Nominatim reverse geocoding API.
//
// Results are memoized per coordinate bucket for the lifetime of the Geocoder.
// Requests are rate limited to one per second.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	memo       xsync.Map[string, string]
}

// NewGeocoder returns a new Geocoder. baseURL defaults to [NominatimURL] when empty.
func NewGeocoder(httpClient *http.Client, baseURL string) *Geocoder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = NominatimURL
	}
	g := &Geocoder{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(geocodeRateLimit), 1),
	}
	return g
}

// City returns the place name for a coordinate or [app.UnknownPlace] if it can not be resolved.
func (g *Geocoder) City(ctx context.Context, lat, lon float64) string {
	key := bucketKey(lat, lon)
	name, ok := g.memo.Load(key)
	if ok {
		return name
	}
	name, err := g.fetchCity(ctx, lat, lon)
	if err != nil {
		slog.Warn("Reverse geocoding failed", "latitude", lat, "longitude", lon, "error", err)
		return app.UnknownPlace
	}
	name, _ = g.memo.LoadOrStore(key, name)
	return name
}

func (g *Geocoder) fetchCity(ctx context.Context, lat, lon float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	v := url.Values{}
	v.Set("format", "jsonv2")
	v.Set("lat", fmt.Sprintf("%f", lat))
	v.Set("lon", fmt.Sprintf("%f", lon))
	v.Set("zoom", "10")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+v.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("reverse geocoding: %s", resp.Status)
	}
	var data struct {
		Address map[string]any `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("reverse geocoding: decode: %w", err)
	}
	return cityFromAddress(data.Address), nil
}

func cityFromAddress(address map[string]any) string {
	for _, f := range addressFields {
		s, ok := address[f].(string)
		if ok && s != "" {
			return s
		}
	}
	return app.UnknownPlace
}

// bucketKey returns the memoization key for a coordinate, rounded to 2 decimals (about 1 km).
func bucketKey(lat, lon float64) string {
	r := func(x float64) float64 {
		return math.Round(x*100) / 100
	}
	return fmt.Sprintf("%.2f,%.2f", r(lat), r(lon))
}
