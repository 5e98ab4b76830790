package notation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTempo is returned when tempo is zero or negative.
	ErrInvalidTempo = errors.New("tempo must be positive")

	// ErrMalformedEvent marks note events the pipeline refuses to quantize.
	ErrMalformedEvent = errors.New("malformed note event")

	// ErrNotImplemented is returned by declared-but-unimplemented strategies.
	ErrNotImplemented = errors.New("not implemented")
)

// MalformedEventError identifies the first offending input event. The
// pipeline fails fast before any quantization, so callers never see partial
// output alongside one of these.
type MalformedEventError struct {
	Index  int
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("note event %d: %s", e.Index, e.Reason)
}

func (e *MalformedEventError) Is(target error) bool {
	return target == ErrMalformedEvent
}
