package tuner

import (
	"fmt"
	"math"
)

// Band classifies how far a detected pitch sits from its target.
type Band int

const (
	BandPerfect Band = iota
	BandClose
	BandOff
)

// Classification thresholds in cents, inclusive toward the tighter
// band. MeterRangeCents bounds the visual meter only; classification
// always works on the unclamped deviation.
const (
	PerfectThresholdCents = 5.0
	CloseThresholdCents   = 15.0
	MeterRangeCents       = 50.0
)

func (b Band) String() string {
	switch b {
	case BandPerfect:
		return "perfect"
	case BandClose:
		return "close"
	default:
		return "off"
	}
}

// MarshalText lets Band serialize as its lowercase name in JSON.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText parses the lowercase band name.
func (b *Band) UnmarshalText(text []byte) error {
	switch string(text) {
	case "perfect":
		*b = BandPerfect
	case "close":
		*b = BandClose
	case "off":
		*b = BandOff
	default:
		return fmt.Errorf("invalid band %q", text)
	}
	return nil
}

// TuningResult is the outcome of comparing a detected frequency
// against a target note. Cents is signed: positive means sharp,
// negative means flat. 100 cents is one equal-tempered semitone.
type TuningResult struct {
	TargetFreq float64 `json:"targetFrequency"`
	Cents      float64 `json:"centsOff"`
	Band       Band    `json:"band"`
}

// Compare measures the deviation of frequency from the reference pitch
// of the named note and classifies it. frequency must be positive
// (log2 of a non-positive ratio is undefined), so the Estimate silence
// case must be guarded by the caller first.
func Compare(frequency float64, note string) (TuningResult, error) {
	if frequency <= 0 {
		return TuningResult{}, fmt.Errorf("%w: frequency must be positive, got %g", ErrInvalidInput, frequency)
	}

	target, ok := NoteFrequency(note)
	if !ok {
		return TuningResult{}, fmt.Errorf("%w: %q", ErrUnknownNote, note)
	}

	cents := 1200 * math.Log2(frequency/target)

	return TuningResult{
		TargetFreq: target,
		Cents:      cents,
		Band:       Classify(cents),
	}, nil
}

// Classify maps a signed cents deviation to its quality band. The 5
// and 15 cent boundaries count toward the tighter band.
func Classify(cents float64) Band {
	abs := math.Abs(cents)
	switch {
	case abs <= PerfectThresholdCents:
		return BandPerfect
	case abs <= CloseThresholdCents:
		return BandClose
	default:
		return BandOff
	}
}

// ClampToMeter bounds a cents value to the meter's display range
// without touching the value used for classification.
func ClampToMeter(cents float64) float64 {
	if cents > MeterRangeCents {
		return MeterRangeCents
	}
	if cents < -MeterRangeCents {
		return -MeterRangeCents
	}
	return cents
}
