package tasbeeh

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ErikKalkoken/go-set"
	"github.com/goccy/go-yaml"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
)

// DhikrNamespace is the key/value namespace for custom dhikr and progress.
const DhikrNamespace = "DhikrPrefs"

const (
	keyCustomDhikr   = "custom_dhikr"
	keyDhikrProgress = "dhikr_progress"
	customIDPrefix   = "custom-"
)

var (
	ErrNotFound     = errors.New("dhikr not found")
	ErrInvalidDhikr = errors.New("invalid dhikr")
	ErrBuiltin      = errors.New("built-in dhikr can not be deleted")
)

//go:embed builtin.yaml
var builtinYAML []byte

// LoadBuiltin returns the built-in dhikr.
func LoadBuiltin() ([]app.Dhikr, error) {
	var items []app.Dhikr
	if err := yaml.Unmarshal(builtinYAML, &items); err != nil {
		return nil, fmt.Errorf("load built-in dhikr: %w", err)
	}
	return items, nil
}

// DhikrService manages the dhikr checklist.
// Built-in dhikr are merged with the custom dhikr of the user.
type DhikrService struct {
	builtin []app.Dhikr
	events  *Events
	store   kvstore.Store

	mu sync.Mutex
}

// NewDhikrService returns a new DhikrService. events is optional.
func NewDhikrService(store kvstore.Store, events *Events) (*DhikrService, error) {
	builtin, err := LoadBuiltin()
	if err != nil {
		return nil, err
	}
	s := &DhikrService{
		builtin: builtin,
		events:  events,
		store:   store,
	}
	return s, nil
}

// List returns all dhikr with their current progress. Built-in dhikr come first.
func (s *DhikrService) List() []app.Dhikr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

func (s *DhikrService) list() []app.Dhikr {
	progress := s.progress()
	items := slices.Clone(s.builtin)
	items = append(items, s.customs()...)
	for i, d := range items {
		items[i].Current = min(max(progress[d.ID], 0), d.Target)
	}
	return items
}

// Get returns a dhikr.
func (s *DhikrService) Get(id string) (app.Dhikr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *DhikrService) get(id string) (app.Dhikr, error) {
	for _, d := range s.list() {
		if d.ID == id {
			return d, nil
		}
	}
	return app.Dhikr{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Increment increments the count of a dhikr and returns it.
// Incrementing a complete dhikr does nothing.
// An event is emitted when the dhikr reaches its target.
func (s *DhikrService) Increment(ctx context.Context, id string) (app.Dhikr, error) {
	s.mu.Lock()
	d, err := s.get(id)
	if err != nil {
		s.mu.Unlock()
		return app.Dhikr{}, err
	}
	changed := d.Increment()
	if changed {
		err = s.setProgress(d.ID, d.Current)
	}
	s.mu.Unlock()
	if err != nil {
		return app.Dhikr{}, err
	}
	if changed && d.IsComplete() {
		slog.Info("Dhikr completed", "id", d.ID)
		if s.events != nil {
			s.events.DhikrCompleted.Emit(ctx, d)
		}
	}
	return d, nil
}

// Reset sets the count of a dhikr to zero.
func (s *DhikrService) Reset(id string) (app.Dhikr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.get(id)
	if err != nil {
		return app.Dhikr{}, err
	}
	d.Reset()
	if err := s.setProgress(d.ID, 0); err != nil {
		return app.Dhikr{}, err
	}
	return d, nil
}

// ResetAll sets the counts of all dhikr to zero.
func (s *DhikrService) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kvstore.SetJSON(s.store, keyDhikrProgress, map[string]int{})
}

// AddCustom adds a new custom dhikr and returns it.
func (s *DhikrService) AddCustom(arabic, translation string, target int) (app.Dhikr, error) {
	arabic = strings.TrimSpace(arabic)
	translation = strings.TrimSpace(translation)
	if arabic == "" && translation == "" {
		return app.Dhikr{}, fmt.Errorf("text missing: %w", ErrInvalidDhikr)
	}
	if target <= 0 {
		return app.Dhikr{}, fmt.Errorf("target must be positive: %w", ErrInvalidDhikr)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	customs := s.customs()
	d := app.Dhikr{
		ID:          s.nextCustomID(customs),
		Arabic:      arabic,
		Translation: translation,
		Target:      target,
		IsCustom:    true,
	}
	customs = append(customs, d)
	if err := kvstore.SetJSON(s.store, keyCustomDhikr, customs); err != nil {
		return app.Dhikr{}, err
	}
	return d, nil
}

// DeleteCustom deletes a custom dhikr and its progress.
func (s *DhikrService) DeleteCustom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.builtin, func(x app.Dhikr) bool { return x.ID == id }) {
		return fmt.Errorf("%s: %w", id, ErrBuiltin)
	}
	customs := s.customs()
	n := len(customs)
	customs = slices.DeleteFunc(customs, func(x app.Dhikr) bool { return x.ID == id })
	if len(customs) == n {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err := kvstore.SetJSON(s.store, keyCustomDhikr, customs); err != nil {
		return err
	}
	progress := s.progress()
	delete(progress, id)
	return kvstore.SetJSON(s.store, keyDhikrProgress, progress)
}

// nextCustomID returns an ID which is not used by any dhikr.
func (s *DhikrService) nextCustomID(customs []app.Dhikr) string {
	var ids set.Set[string]
	for _, d := range s.builtin {
		ids.Add(d.ID)
	}
	for _, d := range customs {
		ids.Add(d.ID)
	}
	for i := ids.Size() + 1; ; i++ {
		id := customIDPrefix + strconv.Itoa(i)
		if !ids.Contains(id) {
			return id
		}
	}
}

func (s *DhikrService) customs() []app.Dhikr {
	customs, _, err := kvstore.GetJSON[[]app.Dhikr](s.store, keyCustomDhikr)
	if err != nil {
		slog.Warn("Invalid custom dhikr", "error", err)
		return []app.Dhikr{}
	}
	items := make([]app.Dhikr, 0, len(customs))
	for _, d := range customs {
		if d.ID == "" || d.Target <= 0 {
			continue
		}
		d.IsCustom = true
		d.Current = 0
		items = append(items, d)
	}
	return items
}

func (s *DhikrService) progress() map[string]int {
	progress, _, err := kvstore.GetJSON[map[string]int](s.store, keyDhikrProgress)
	if err != nil {
		slog.Warn("Invalid dhikr progress", "error", err)
	}
	if progress == nil {
		progress = make(map[string]int)
	}
	return progress
}

func (s *DhikrService) setProgress(id string, v int) error {
	progress := s.progress()
	if v == 0 {
		delete(progress, id)
	} else {
		progress[id] = v
	}
	return kvstore.SetJSON(s.store, keyDhikrProgress, progress)
}
