// Package capture records fixed-duration microphone buffers for
// analysis. It is the only part of the tuner that touches hardware;
// everything downstream works on plain AudioFrames.
package capture

import (
	"context"
	"fmt"

	"guitar-tuner/tuner"

	"github.com/gordonklaus/portaudio"
)

// Config holds the capture parameters. They are passed in explicitly
// rather than read from globals so analysis stays reproducible.
type Config struct {
	SampleRate      int
	Seconds         float64
	FramesPerBuffer int
}

// DefaultConfig returns the standard one-shot capture: a 2-second
// mono buffer at 44100 Hz.
func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		Seconds:         2,
		FramesPerBuffer: 1024,
	}
}

// Recorder owns the portaudio context. Create one per process and
// Close it when done; individual recordings open and close their own
// stream.
type Recorder struct {
	cfg Config
}

// NewRecorder initializes portaudio and validates the configuration.
func NewRecorder(cfg Config) (*Recorder, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.Seconds <= 0 {
		return nil, fmt.Errorf("capture duration must be positive, got %g", cfg.Seconds)
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = DefaultConfig().FramesPerBuffer
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %v", err)
	}

	return &Recorder{cfg: cfg}, nil
}

// Close releases the portaudio context.
func (r *Recorder) Close() error {
	return portaudio.Terminate()
}

// Record captures one fixed-duration mono buffer from the default
// input device. Cancelling the context stops the recording between
// buffer reads and returns ctx.Err().
func (r *Recorder) Record(ctx context.Context) (tuner.AudioFrame, error) {
	total := int(r.cfg.Seconds * float64(r.cfg.SampleRate))

	in := make([]float32, r.cfg.FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.cfg.SampleRate), len(in), in)
	if err != nil {
		return tuner.AudioFrame{}, fmt.Errorf("failed to open input stream: %v", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return tuner.AudioFrame{}, fmt.Errorf("failed to start input stream: %v", err)
	}
	defer stream.Stop()

	samples := make([]float64, 0, total)
	for len(samples) < total {
		if err := ctx.Err(); err != nil {
			return tuner.AudioFrame{}, err
		}
		if err := stream.Read(); err != nil {
			return tuner.AudioFrame{}, fmt.Errorf("failed to read from input stream: %v", err)
		}
		for _, s := range in {
			samples = append(samples, float64(s))
			if len(samples) == total {
				break
			}
		}
	}

	return tuner.AudioFrame{Samples: samples, SampleRate: r.cfg.SampleRate}, nil
}
