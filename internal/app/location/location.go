// Package location resolves the device location for prayer time lookups.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/fallback"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
)

const (
	// PreciseAccuracy is the worst accuracy in meters for a last known fix to be used without a new fix.
	PreciseAccuracy = 500.0
	fixTimeout      = 5 * time.Second
	keyLastFix      = "last_fix"
	keySavedLoc     = "saved_location"
)

var (
	ErrNoFix      = errors.New("no location fix")
	ErrImprecise  = errors.New("location fix not precise enough")
	ErrNotDefined = errors.New("location not defined")
)

// Device provides positions of the current device.
type Device interface {
	// LastKnown returns the most recent fix without requesting a new one.
	LastKnown(ctx context.Context) (app.Fix, error)
	// RequestFix requests a fresh fix.
	RequestFix(ctx context.Context) (app.Fix, error)
}

// Settings provides the location related user settings.
type Settings interface {
	AutoLocation() bool
	ManualLocation() (app.Location, bool)
}

// Resolver resolves the current location through an ordered list of sources.
type Resolver struct {
	device   Device
	settings Settings
	store    kvstore.Store
}

// NewResolver returns a new Resolver. The saved location is kept in store.
func NewResolver(device Device, settings Settings, store kvstore.Store) *Resolver {
	return &Resolver{device: device, settings: settings, store: store}
}

// Resolve returns the best available location.
//
// With auto location enabled the sources are tried in this order:
// a precise last known fix, a fresh fix, any last known fix and finally the saved location.
// Otherwise the manual location from settings is used, then the saved location.
func (r *Resolver) Resolve(ctx context.Context) (app.Location, error) {
	var attempts []fallback.Attempt[app.Location]
	if r.settings.AutoLocation() {
		attempts = append(attempts,
			fallback.Step("last known precise", r.lastKnownPrecise),
			fallback.Step("fresh fix", r.freshFix),
			fallback.Step("last known", r.lastKnown),
		)
	} else {
		attempts = append(attempts, fallback.Step("manual", r.manual))
	}
	attempts = append(attempts, fallback.Step("saved", r.saved))
	loc, source, err := fallback.First(ctx, attempts...)
	if err != nil {
		return app.Location{}, fmt.Errorf("resolve location: %w", err)
	}
	slog.Info("Location resolved", "source", source, "latitude", loc.Latitude, "longitude", loc.Longitude)
	return loc, nil
}

func (r *Resolver) lastKnownPrecise(ctx context.Context) (app.Location, error) {
	fix, err := r.device.LastKnown(ctx)
	if err != nil {
		return app.Location{}, err
	}
	if fix.IsZero() {
		return app.Location{}, ErrNoFix
	}
	if fix.Accuracy > PreciseAccuracy {
		return app.Location{}, fmt.Errorf("accuracy %.0fm: %w", fix.Accuracy, ErrImprecise)
	}
	return fix.Location(), nil
}

func (r *Resolver) freshFix(ctx context.Context) (app.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, fixTimeout)
	defer cancel()
	fix, err := r.device.RequestFix(ctx)
	if err != nil {
		return app.Location{}, err
	}
	if fix.IsZero() {
		return app.Location{}, ErrNoFix
	}
	return fix.Location(), nil
}

func (r *Resolver) lastKnown(ctx context.Context) (app.Location, error) {
	fix, err := r.device.LastKnown(ctx)
	if err != nil {
		return app.Location{}, err
	}
	if fix.IsZero() {
		return app.Location{}, ErrNoFix
	}
	return fix.Location(), nil
}

func (r *Resolver) manual(context.Context) (app.Location, error) {
	loc, ok := r.settings.ManualLocation()
	if !ok {
		return app.Location{}, ErrNotDefined
	}
	return loc, nil
}

func (r *Resolver) saved(context.Context) (app.Location, error) {
	loc, ok := Saved(r.store)
	if !ok {
		return app.Location{}, ErrNotDefined
	}
	return loc, nil
}

// Saved returns the location saved in store and reports whether it exists.
func Saved(store kvstore.Store) (app.Location, bool) {
	loc, found, err := kvstore.GetJSON[app.Location](store, keySavedLoc)
	if err != nil {
		slog.Warn("Invalid saved location", "error", err)
		return app.Location{}, false
	}
	if !found || loc.IsZero() {
		return app.Location{}, false
	}
	return loc, true
}

// Save saves loc in store as fallback for later sessions.
func Save(store kvstore.Store, loc app.Location) {
	if err := kvstore.SetJSON(store, keySavedLoc, loc); err != nil {
		slog.Error("Failed to save location", "error", err)
	}
}
