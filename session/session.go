// Package session drives the capture-analyze-render loop of the
// tuner. The loop state is explicit: a session is idle until Run is
// called, recording while the loop spins, and idle again once the
// context is cancelled.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"guitar-tuner/tuner"
)

// Source supplies one audio buffer per capture cycle. The microphone
// recorder implements it; tests substitute synthetic signals.
type Source interface {
	Record(ctx context.Context) (tuner.AudioFrame, error)
}

// Update is what the renderer receives after each cycle. Result is nil
// when no pitch was detected (the DC bin dominated), in which case
// Frequency is 0.
type Update struct {
	Note      string
	Frequency float64
	Result    *tuner.TuningResult
}

// RenderFunc consumes one Update per analyzed buffer.
type RenderFunc func(Update)

// Session holds the user-facing tuner state: the selected target note
// and whether the loop is currently recording.
type Session struct {
	mu        sync.Mutex
	note      string
	recording bool
}

// New creates a session targeting the given note.
func New(note string) (*Session, error) {
	if _, ok := tuner.NoteFrequency(note); !ok {
		return nil, fmt.Errorf("%w: %q", tuner.ErrUnknownNote, note)
	}
	return &Session{note: note}, nil
}

// SelectNote switches the target note. Safe to call while the loop is
// running; the next cycle picks it up.
func (s *Session) SelectNote(note string) error {
	if _, ok := tuner.NoteFrequency(note); !ok {
		return fmt.Errorf("%w: %q", tuner.ErrUnknownNote, note)
	}
	s.mu.Lock()
	s.note = note
	s.mu.Unlock()
	return nil
}

// Note returns the current target note.
func (s *Session) Note() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note
}

// Recording reports whether the loop is active.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

func (s *Session) setRecording(v bool) {
	s.mu.Lock()
	s.recording = v
	s.mu.Unlock()
}

// Run records, analyzes and renders until the context is cancelled.
// Cancellation is only observed between buffer captures; the current
// buffer always produces its result first. A cancelled context is a
// clean stop, not an error.
func (s *Session) Run(ctx context.Context, src Source, render RenderFunc) error {
	s.setRecording(true)
	defer s.setRecording(false)

	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := src.Record(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("capture failed: %w", err)
		}

		freq, err := tuner.Estimate(frame)
		if err != nil {
			return fmt.Errorf("pitch estimation failed: %w", err)
		}

		note := s.Note()

		if freq == 0 {
			// silence: report it but never feed 0 Hz into Compare
			render(Update{Note: note})
			continue
		}

		result, err := tuner.Compare(freq, note)
		if err != nil {
			return fmt.Errorf("tuning comparison failed: %w", err)
		}

		render(Update{Note: note, Frequency: freq, Result: &result})
	}
}
