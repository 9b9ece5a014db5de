package audio

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
)

// AssetStage plays a wav file from a file system.
type AssetStage struct {
	fsys   fs.FS
	name   string
	output Output
}

var _ Stage = (*AssetStage)(nil)

func NewAssetStage(fsys fs.FS, name string, output Output) *AssetStage {
	return &AssetStage{fsys: fsys, name: name, output: output}
}

func (s *AssetStage) Name() string {
	return "asset " + s.name
}

func (s *AssetStage) Start(context.Context) (Playback, error) {
	f, err := s.fsys.Open(s.name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", s.name, ErrUnavailable, err)
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: decode: %w", s.name, err)
	}
	p := newOutputPlayback(s.output, func() {
		if err := streamer.Close(); err != nil {
			slog.Warn("Failed to close audio stream", "name", s.name, "error", err)
		}
		f.Close()
	})
	done := beep.Callback(func() {
		err := streamer.Err()
		if err != nil {
			slog.Warn("Audio stream failed", "name", s.name, "error", err)
		}
		p.finish(err)
	})
	if err := s.output.Play(beep.Seq(streamer, done), format); err != nil {
		p.finish(nil)
		return nil, err
	}
	return p, nil
}

// outputPlayback is a playback on an Output.
// Its resources are released when the stream ends, fails or is stopped.
type outputPlayback struct {
	output  Output
	release func()

	once   sync.Once
	failed chan error
}

var _ FailureNotifier = (*outputPlayback)(nil)

func newOutputPlayback(output Output, release func()) *outputPlayback {
	return &outputPlayback{output: output, release: release, failed: make(chan error, 1)}
}

// finish releases the resources and reports err. Only the first call has an effect.
func (p *outputPlayback) finish(err error) {
	p.once.Do(func() {
		p.release()
		if err != nil {
			p.failed <- err
		}
		close(p.failed)
	})
}

func (p *outputPlayback) Failed() <-chan error {
	return p.failed
}

func (p *outputPlayback) Stop() {
	p.output.Stop()
	p.finish(nil)
}

// Tone is a sine tone. A tone with zero frequency is a pause.
type Tone struct {
	Frequency float64
	Duration  time.Duration
}

// DefaultTones is a short rising tone sequence.
var DefaultTones = []Tone{
	{Frequency: 523.25, Duration: 150 * time.Millisecond},
	{Duration: 50 * time.Millisecond},
	{Frequency: 659.25, Duration: 150 * time.Millisecond},
	{Duration: 50 * time.Millisecond},
	{Frequency: 783.99, Duration: 300 * time.Millisecond},
}

// ToneStage plays a sequence of tones.
type ToneStage struct {
	tones  []Tone
	output Output
}

var _ Stage = (*ToneStage)(nil)

func NewToneStage(tones []Tone, output Output) *ToneStage {
	return &ToneStage{tones: tones, output: output}
}

func (s *ToneStage) Name() string {
	return "tones"
}

func (s *ToneStage) Start(context.Context) (Playback, error) {
	if len(s.tones) == 0 {
		return nil, fmt.Errorf("no tones: %w", ErrUnavailable)
	}
	streamers := make([]beep.Streamer, 0, len(s.tones)+1)
	for _, t := range s.tones {
		n := SampleRate.N(t.Duration)
		if t.Frequency == 0 {
			streamers = append(streamers, silence(n))
			continue
		}
		tone, err := generators.SineTone(SampleRate, t.Frequency)
		if err != nil {
			return nil, fmt.Errorf("tone %.0f Hz: %w", t.Frequency, err)
		}
		streamers = append(streamers, beep.Take(n, tone))
	}
	p := newOutputPlayback(s.output, func() {})
	streamers = append(streamers, beep.Callback(func() {
		p.finish(nil)
	}))
	format := beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}
	if err := s.output.Play(beep.Seq(streamers...), format); err != nil {
		p.finish(nil)
		return nil, err
	}
	return p, nil
}

// silence returns a streamer with n samples of silence.
func silence(n int) beep.Streamer {
	return beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		clear(samples)
		return len(samples), true
	}))
}

// speechCommands are the supported speech synthesizers in order of preference.
var speechCommands = map[string][][]string{
	"darwin":  {{"say"}},
	"linux":   {{"espeak-ng"}, {"espeak"}, {"spd-say", "--wait"}},
	"windows": {{"powershell", "-Command", "Add-Type -AssemblyName System.Speech; (New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak($args[0])"}},
}

// TTSStage speaks a text with the system's speech synthesizer.
type TTSStage struct {
	text     string
	lookPath func(string) (string, error)
}

var _ Stage = (*TTSStage)(nil)

func NewTTSStage(text string) *TTSStage {
	return &TTSStage{text: text, lookPath: exec.LookPath}
}

func (s *TTSStage) Name() string {
	return "text-to-speech"
}

func (s *TTSStage) Start(context.Context) (Playback, error) {
	args, err := s.command()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(args[0], append(args[1:], s.text)...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("text-to-speech: %w", err)
	}
	p := &processPlayback{cmd: cmd, done: make(chan struct{})}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("text-to-speech ended", "error", err)
		}
		close(p.done)
	}()
	return p, nil
}

// command returns the speech command for the current system.
func (s *TTSStage) command() ([]string, error) {
	for _, c := range speechCommands[runtime.GOOS] {
		if _, err := s.lookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no speech synthesizer found: %w", ErrUnavailable)
}

// processPlayback is a playback by an external process.
type processPlayback struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *processPlayback) Stop() {
	select {
	case <-p.done:
		return
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil {
		slog.Debug("text-to-speech: kill", "error", err)
	}
	<-p.done
}
