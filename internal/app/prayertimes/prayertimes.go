// Package prayertimes provides the prayer times for today with an offline fallback.
package prayertimes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/location"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/optional"
)

// Namespace is the key/value namespace for prayer times and locations.
const Namespace = "TasbeehPrefs"

const (
	// MaxCached is the maximum number of cached records.
	MaxCached     = 3
	keyCache      = "prayer_times_cache"
	keyLastFetch  = "last_fetch_date"
	fetchDeadline = 15 * time.Second
)

var ErrNoCache = errors.New("no cached prayer times")

// Locator resolves the current location.
type Locator interface {
	Resolve(ctx context.Context) (app.Location, error)
}

// Geocoder resolves a place name from coordinates.
type Geocoder interface {
	City(ctx context.Context, lat, lon float64) string
}

// Timings fetches prayer times from an external source.
type Timings interface {
	Timings(ctx context.Context, day time.Time, lat, lon float64) (app.PrayerTimes, error)
}

// Provider provides the prayer times for today.
//
// Fetched records are kept in a cache of the most recent [MaxCached] dates,
// which serves as fallback when the network or an external service is not available.
type Provider struct {
	connectivity Connectivity
	geocoder     Geocoder
	locator      Locator
	store        kvstore.Store
	timings      Timings

	mu  sync.Mutex // guards cache updates
	now func() time.Time
	sfg singleflight.Group
}

type Params struct {
	Connectivity Connectivity
	Geocoder     Geocoder
	Locator      Locator
	Store        kvstore.Store // TasbeehPrefs namespace
	Timings      Timings
	// optional
	Now func() time.Time
}

// NewProvider returns a new Provider.
func NewProvider(arg Params) *Provider {
	if arg.Connectivity == nil || arg.Locator == nil || arg.Store == nil || arg.Timings == nil {
		panic("prayertimes: missing parameters")
	}
	p := &Provider{
		connectivity: arg.Connectivity,
		geocoder:     arg.Geocoder,
		locator:      arg.Locator,
		store:        arg.Store,
		timings:      arg.Timings,
		now:          arg.Now,
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// TodayPrayerTimes returns the best available prayer times for today.
//
// It returns the cached record for today when it exists.
// When a fetch was already done today or the network is not reachable
// it returns the newest cached record, which can be for a prior date.
// Otherwise it fetches the prayer times for the current location.
// All failures degrade to the newest cached record.
// The result is empty when nothing is available.
func (p *Provider) TodayPrayerTimes(ctx context.Context) (result optional.Optional[app.PrayerTimes]) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("prayer times: panic", "error", r)
			result = p.Latest()
		}
	}()
	now := p.now()
	today := app.DateOf(now)
	if pt, ok := p.CachedFor(today); ok {
		return optional.From(pt)
	}
	if p.LastFetchDate() == today {
		slog.Debug("prayer times: already fetched today")
		return p.Latest()
	}
	if !p.connectivity.Online(ctx) {
		slog.Info("prayer times: offline, using cache")
		return p.Latest()
	}
	return p.fetch(ctx, now)
}

// Refresh fetches the prayer times for today regardless of what is cached.
// Failures degrade to the newest cached record.
func (p *Provider) Refresh(ctx context.Context) (result optional.Optional[app.PrayerTimes]) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("prayer times: panic", "error", r)
			result = p.Latest()
		}
	}()
	return p.fetch(ctx, p.now())
}

func (p *Provider) fetch(ctx context.Context, now time.Time) optional.Optional[app.PrayerTimes] {
	today := app.DateOf(now)
	x, err, _ := p.sfg.Do(today, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchDeadline)
		defer cancel()
		return p.fetchAndStore(ctx, now)
	})
	if err != nil {
		slog.Warn("Failed to fetch prayer times", "date", today, "error", err)
		return p.Latest()
	}
	return optional.From(x.(app.PrayerTimes))
}

func (p *Provider) fetchAndStore(ctx context.Context, now time.Time) (app.PrayerTimes, error) {
	loc, err := p.locator.Resolve(ctx)
	if err != nil {
		return app.PrayerTimes{}, err
	}
	pt, err := p.timings.Timings(ctx, now, loc.Latitude, loc.Longitude)
	if err != nil {
		return app.PrayerTimes{}, err
	}
	if loc.Name == "" && p.geocoder != nil {
		loc.Name = p.geocoder.City(ctx, loc.Latitude, loc.Longitude)
	}
	pt.Location = loc.Name
	if err := p.addToCache(pt); err != nil {
		return app.PrayerTimes{}, err
	}
	p.store.Set(keyLastFetch, app.DateOf(now))
	location.Save(p.store, loc)
	slog.Info("Prayer times fetched", "date", pt.Date, "location", pt.Location)
	return pt, nil
}

// addToCache adds a record to the cache.
// A record for a date already in the cache replaces it in place.
// Otherwise it is appended and the oldest records are evicted.
func (p *Provider) addToCache(pt app.PrayerTimes) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cache := p.Cached()
	i := slices.IndexFunc(cache, func(x app.PrayerTimes) bool {
		return x.Date == pt.Date
	})
	if i >= 0 {
		cache[i] = pt
	} else {
		cache = append(cache, pt)
		if n := len(cache); n > MaxCached {
			cache = cache[n-MaxCached:]
		}
	}
	if err := kvstore.SetJSON(p.store, keyCache, cache); err != nil {
		return fmt.Errorf("update prayer times cache: %w", err)
	}
	return nil
}

// Cached returns the cached records, oldest first.
// Invalid cache data is reported as empty cache.
func (p *Provider) Cached() []app.PrayerTimes {
	cache, _, err := kvstore.GetJSON[[]app.PrayerTimes](p.store, keyCache)
	if err != nil {
		slog.Warn("Invalid prayer times cache", "error", err)
		return []app.PrayerTimes{}
	}
	if cache == nil {
		return []app.PrayerTimes{}
	}
	return cache
}

// CachedFor returns the cached record for a date in the format [app.DateFormat]
// and reports whether it was found.
func (p *Provider) CachedFor(date string) (app.PrayerTimes, bool) {
	for _, pt := range p.Cached() {
		if pt.Date == date {
			return pt, true
		}
	}
	return app.PrayerTimes{}, false
}

// Latest returns the most recently added cached record.
func (p *Provider) Latest() optional.Optional[app.PrayerTimes] {
	cache := p.Cached()
	if len(cache) == 0 {
		return optional.Empty[app.PrayerTimes]()
	}
	return optional.From(cache[len(cache)-1])
}

// LastFetchDate returns the date of the last successful fetch or an empty string.
func (p *Provider) LastFetchDate() string {
	s, _ := p.store.Get(keyLastFetch)
	return s
}
