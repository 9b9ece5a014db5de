package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// SampleRate is the sample rate of the speaker.
const SampleRate = beep.SampleRate(44100)

const resampleQuality = 4

// Output plays streams.
type Output interface {
	// Play stops whatever is playing and starts playing s.
	Play(s beep.Streamer, format beep.Format) error
	// Stop stops playback.
	Stop()
}

// Speaker is an Output for the system's speaker.
// The speaker is initialized on first use.
type Speaker struct {
	mu          sync.Mutex
	initialized bool
	initErr     error
}

var _ Output = (*Speaker)(nil)

func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (sp *Speaker) Play(s beep.Streamer, format beep.Format) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if err := sp.init(); err != nil {
		return err
	}
	if format.SampleRate != SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, SampleRate, s)
	}
	speaker.Clear()
	speaker.Play(s)
	return nil
}

func (sp *Speaker) Stop() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if !sp.initialized {
		return
	}
	speaker.Clear()
}

// init initializes the speaker. The caller must hold the lock.
func (sp *Speaker) init() error {
	if sp.initialized {
		return nil
	}
	if sp.initErr != nil {
		return sp.initErr
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		sp.initErr = fmt.Errorf("init speaker: %w: %w", ErrUnavailable, err)
		return sp.initErr
	}
	sp.initialized = true
	return nil
}

// Close closes the speaker.
func (sp *Speaker) Close() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if !sp.initialized {
		return
	}
	speaker.Close()
	sp.initialized = false
}
