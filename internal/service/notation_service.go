package service

import (
	"fmt"
	"math"

	"github.com/pianoscribe/api/internal/config"
	"github.com/pianoscribe/api/internal/model"
	"github.com/pianoscribe/api/internal/notation"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// MidiPitchToName converts a MIDI pitch number to a human-readable note
// name, middle C (60) being "C4".
func MidiPitchToName(pitch int) string {
	octave := pitch/12 - 1
	return fmt.Sprintf("%s%d", noteNames[pitch%12], octave)
}

// NotationService encodes note events into ABC text without going through
// the job queue
type NotationService struct {
	defaults config.TranscribeConfig
}

func NewNotationService(defaults config.TranscribeConfig) *NotationService {
	return &NotationService{defaults: defaults}
}

// Encode quantizes the request's events and renders ABC notation
func (s *NotationService) Encode(req *model.NotationEncodeRequest) (*model.NotationEncodeResponse, error) {
	tempo := req.Tempo
	if tempo == 0 {
		tempo = s.defaults.DefaultTempo
	}

	strategyKind := string(req.Strategy)
	if strategyKind == "" {
		strategyKind = notation.StrategyDefault
	}

	strategy, err := notation.NewStrategy(strategyKind, s.defaults.ReferencePath)
	if err != nil {
		return nil, err
	}

	stream, err := strategy.EncodeStream(req.Events, tempo)
	if err != nil {
		return nil, err
	}

	return &model.NotationEncodeResponse{
		ABC:          stream.Text(),
		Tempo:        tempo,
		Measures:     len(stream.Measures),
		SkippedNotes: stream.SkippedNotes,
	}, nil
}

// BuildSummary digests note events into counts, pitch range, and time span
func BuildSummary(events []model.NoteEvent) model.NoteSummary {
	if len(events) == 0 {
		return model.NoteSummary{
			PitchRange: []string{},
			TimeSpan:   []float64{},
		}
	}

	minStart := math.Inf(1)
	maxEnd := math.Inf(-1)
	lowest, highest := events[0].Pitch, events[0].Pitch

	for _, ev := range events {
		if ev.Onset < minStart {
			minStart = ev.Onset
		}
		if end := ev.Onset + ev.Duration; end > maxEnd {
			maxEnd = end
		}
		if ev.Pitch < lowest {
			lowest = ev.Pitch
		}
		if ev.Pitch > highest {
			highest = ev.Pitch
		}
	}

	round2 := func(v float64) float64 { return math.Round(v*100) / 100 }

	return model.NoteSummary{
		NumNotes:        len(events),
		DurationSeconds: round2(maxEnd - minStart),
		PitchRange:      []string{MidiPitchToName(lowest), MidiPitchToName(highest)},
		TimeSpan:        []float64{round2(minStart), round2(maxEnd)},
	}
}
