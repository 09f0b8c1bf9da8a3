package orbitplane

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDegenerateBasis is returned when the seed vectors of a frame are linearly dependent,
	// so the basis matrix cannot be inverted.
	ErrDegenerateBasis = errors.New("degenerate basis")
	// ErrConfig is returned for invalid configuration or options.
	ErrConfig = errors.New("invalid configuration")
)

// MissingFieldError is returned when an ephemeris record lacks a required key.
type MissingFieldError struct {
	Record int
	Key    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d: missing field %s", e.Record, e.Key)
}

// MalformedValueError is returned when the value of a key is not a usable float.
type MalformedValueError struct {
	Record int
	Key    string
	Raw    string
	Reason string
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("record %d: malformed value %q for %s: %s", e.Record, e.Raw, e.Key, e.Reason)
}
