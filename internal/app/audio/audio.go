// Package audio plays the audio cue for completed prayers and dhikr.
//
// The cue is played by the first available stage of a chain:
// a bundled primary asset, a bundled fallback asset, a tone sequence and finally text-to-speech.
package audio

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/fallback"
)

const (
	PrimaryAsset  = "complete.wav"
	FallbackAsset = "chime.wav"
	Takbeer       = "Allahu Akbar"
)

var ErrUnavailable = errors.New("audio stage not available")

//go:embed assets
var assetsFS embed.FS

// Assets returns the bundled audio assets.
func Assets() fs.FS {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Playback is a running playback of a stage.
type Playback interface {
	// Stop stops the playback and releases its resources. It is safe to call Stop more than once.
	Stop()
}

// FailureNotifier is implemented by playbacks which can fail after they have started.
type FailureNotifier interface {
	// Failed returns a channel which receives the error when playback fails.
	// It is closed when playback has ended.
	Failed() <-chan error
}

// Stage is a way of playing the audio cue.
type Stage interface {
	Name() string
	// Start starts playback. It returns an error when the stage is not available or fails.
	Start(ctx context.Context) (Playback, error)
}

// Chain plays the audio cue with the first stage that succeeds.
// At most one playback is active at a time.
type Chain struct {
	stages []Stage

	mu     sync.Mutex
	active Playback
}

// NewChain returns a new chain for stages, which are tried in the given order.
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// NewDefaultChain returns the standard chain for output.
func NewDefaultChain(output Output) *Chain {
	assets := Assets()
	return NewChain(
		NewAssetStage(assets, PrimaryAsset, output),
		NewAssetStage(assets, FallbackAsset, output),
		NewToneStage(DefaultTones, output),
		NewTTSStage(Takbeer),
	)
}

// Play stops any active playback and starts the first available stage.
// It returns the name of the stage that is playing.
//
// When a playback fails after it has started, the remaining stages are tried.
func (c *Chain) Play(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop()
	return c.playFrom(ctx, 0)
}

// playFrom plays the first available stage starting at index start.
// The caller must hold the lock.
func (c *Chain) playFrom(ctx context.Context, start int) (string, error) {
	type started struct {
		p   Playback
		idx int
	}
	attempts := make([]fallback.Attempt[started], 0, len(c.stages)-start)
	for i := start; i < len(c.stages); i++ {
		s := c.stages[i]
		attempts = append(attempts, fallback.Step(s.Name(), func(ctx context.Context) (started, error) {
			p, err := s.Start(ctx)
			if err != nil {
				return started{}, err
			}
			return started{p: p, idx: i}, nil
		}))
	}
	r, name, err := fallback.First(ctx, attempts...)
	if err != nil {
		return "", fmt.Errorf("play audio: %w", err)
	}
	c.active = r.p
	if fn, ok := r.p.(FailureNotifier); ok {
		go c.watch(r.p, fn.Failed(), r.idx)
	}
	slog.Debug("Playing audio", "stage", name)
	return name, nil
}

// watch continues with the next stage when playback p fails.
func (c *Chain) watch(p Playback, failed <-chan error, idx int) {
	err, ok := <-failed
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != p {
		return
	}
	c.active = nil
	slog.Warn("Audio playback failed", "stage", c.stages[idx].Name(), "error", err)
	if idx+1 >= len(c.stages) {
		return
	}
	if _, err := c.playFrom(context.Background(), idx+1); err != nil {
		slog.Warn("Failed to continue audio playback", "error", err)
	}
}

// Stop stops the active playback if any.
func (c *Chain) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop()
}

func (c *Chain) stop() {
	if c.active == nil {
		return
	}
	c.active.Stop()
	c.active = nil
}
