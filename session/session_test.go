package session

import (
	"context"
	"math"
	"testing"
	"time"

	"guitar-tuner/tuner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toneSource replays the same synthetic buffer every cycle.
type toneSource struct {
	freq       float64
	sampleRate int
	n          int
}

func (s *toneSource) Record(ctx context.Context) (tuner.AudioFrame, error) {
	if err := ctx.Err(); err != nil {
		return tuner.AudioFrame{}, err
	}
	samples := make([]float64, s.n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * s.freq * float64(i) / float64(s.sampleRate))
	}
	return tuner.AudioFrame{Samples: samples, SampleRate: s.sampleRate}, nil
}

type silentSource struct {
	n          int
	sampleRate int
}

func (s *silentSource) Record(ctx context.Context) (tuner.AudioFrame, error) {
	if err := ctx.Err(); err != nil {
		return tuner.AudioFrame{}, err
	}
	return tuner.AudioFrame{Samples: make([]float64, s.n), SampleRate: s.sampleRate}, nil
}

func TestNewRejectsUnknownNote(t *testing.T) {
	_, err := New("Z9")
	assert.ErrorIs(t, err, tuner.ErrUnknownNote)
}

func TestSelectNote(t *testing.T) {
	s, err := New("E2")
	require.NoError(t, err)
	assert.Equal(t, "E2", s.Note())

	require.NoError(t, s.SelectNote("B3"))
	assert.Equal(t, "B3", s.Note())

	assert.ErrorIs(t, s.SelectNote("H4"), tuner.ErrUnknownNote)
	assert.Equal(t, "B3", s.Note(), "failed selection must not change state")
}

func TestRunRendersTuningUpdates(t *testing.T) {
	s, err := New("A2")
	require.NoError(t, err)
	assert.False(t, s.Recording())

	src := &toneSource{freq: 110.0, sampleRate: 8192, n: 8192}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make([]Update, 0, 4)
	runErr := make(chan error, 1)

	go func() {
		runErr <- s.Run(ctx, src, func(u Update) {
			updates = append(updates, u)
			if len(updates) == 3 {
				cancel()
			}
		})
	}()

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("session did not stop after cancellation")
	}

	assert.False(t, s.Recording(), "session must return to idle")
	require.GreaterOrEqual(t, len(updates), 3)

	u := updates[0]
	assert.Equal(t, "A2", u.Note)
	require.NotNil(t, u.Result)
	assert.Equal(t, 110.0, u.Result.TargetFreq)
	assert.Equal(t, tuner.BandPerfect, u.Result.Band)
	assert.InDelta(t, 110.0, u.Frequency, 1.0)
}

func TestRunReportsSilenceWithoutComparing(t *testing.T) {
	s, err := New("E2")
	require.NoError(t, err)

	src := &silentSource{n: 4096, sampleRate: 44100}

	ctx, cancel := context.WithCancel(context.Background())
	var got *Update
	runErr := make(chan error, 1)

	go func() {
		runErr <- s.Run(ctx, src, func(u Update) {
			if got == nil {
				u := u
				got = &u
				cancel()
			}
		})
	}()

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("session did not stop after cancellation")
	}

	require.NotNil(t, got)
	assert.Equal(t, 0.0, got.Frequency)
	assert.Nil(t, got.Result, "silence must not produce a comparison")
}
