package tuner

import "errors"

var (
	// ErrInvalidInput reports a precondition violation: a buffer too
	// short to carry frequency information, or a non-positive
	// frequency or sample rate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownNote reports a target note that is not part of the
	// standard tuning table.
	ErrUnknownNote = errors.New("unknown note")
)
