// Package notation converts detected note events into quantized, bar-
// structured ABC text. The pipeline is pure and stateless: events are
// snapped to an eighth-note grid, clustered into chords, padded with rests,
// segmented into measures and rendered, all in a single synchronous pass.
// Concurrent calls over independent inputs need no locking.
package notation

import (
	"fmt"
)

// Strategy is the quantization seam: one entry point producing a complete
// encoded stream, so alternative quantizers can be substituted without
// changing callers.
type Strategy interface {
	EncodeStream(events []NoteEvent, tempo float64) (*EncodedStream, error)
}

// Strategy kinds selectable by configuration.
const (
	StrategyDefault         = "default"
	StrategyReferenceGuided = "reference"
)

// NewStrategy builds a strategy by configured kind.
func NewStrategy(kind, referencePath string) (Strategy, error) {
	switch kind {
	case "", StrategyDefault:
		return &DefaultStrategy{}, nil
	case StrategyReferenceGuided:
		return &ReferenceGuidedStrategy{ReferencePath: referencePath}, nil
	default:
		return nil, fmt.Errorf("unknown quantization strategy %q", kind)
	}
}

// DefaultStrategy quantizes against the plain eighth-note grid.
type DefaultStrategy struct{}

// EncodeStream runs the full pipeline. It either returns a complete,
// internally consistent stream or an error identifying the first offending
// input; there is no partial output. Empty input is not an error and yields
// a header-only stream.
func (s *DefaultStrategy) EncodeStream(events []NoteEvent, tempo float64) (*EncodedStream, error) {
	if tempo <= 0 {
		return nil, ErrInvalidTempo
	}

	for i, ev := range events {
		if ev.Onset < 0 {
			return nil, &MalformedEventError{Index: i, Reason: "negative onset"}
		}
		if ev.Duration <= 0 {
			return nil, &MalformedEventError{Index: i, Reason: "non-positive duration"}
		}
	}

	chords, skipped, err := groupChords(events, tempo)
	if err != nil {
		return nil, err
	}

	stream := fillRests(chords)
	measures := segmentMeasures(stream, BarUnits)

	return &EncodedStream{
		Tempo:        tempo,
		Meter:        "4/4",
		UnitLength:   "1/8",
		Key:          "C",
		Measures:     measures,
		SkippedNotes: skipped,
	}, nil
}

// ReferenceGuidedStrategy will snap onsets and durations to the rhythmic
// grid of an externally supplied reference score instead of the plain
// eighth-note grid. Declared as an extension point; selecting it fails
// until the alignment is built.
type ReferenceGuidedStrategy struct {
	ReferencePath string
}

func (s *ReferenceGuidedStrategy) EncodeStream(events []NoteEvent, tempo float64) (*EncodedStream, error) {
	return nil, fmt.Errorf("reference-guided quantization: %w", ErrNotImplemented)
}
