package notation

import (
	"math"
	"sort"
)

// Encodable pitch range: scientific octaves 0 through 8. Below C0 or above
// B8 the ABC octave marks stop being useful, so those events are skipped
// and counted rather than encoded.
const (
	MinPitch = 12
	MaxPitch = 119
)

// groupChords quantizes every event onto the unit grid and clusters events
// with an identical integer onset into chords. Pitches are deduplicated
// within a chord; the chord duration is the longest member's quantized
// duration (shorter members' early release is not represented in the
// single-voice stream). Returns chords sorted by onset and the number of
// events skipped for being out of pitch range.
func groupChords(events []NoteEvent, tempo float64) ([]Token, int, error) {
	type cluster struct {
		pitches map[int]bool
		dur     Duration
	}

	clusters := make(map[int]*cluster)
	skipped := 0

	for _, ev := range events {
		if ev.Pitch < MinPitch || ev.Pitch > MaxPitch {
			skipped++
			continue
		}

		onsetUnits, err := ToUnits(ev.Onset, tempo)
		if err != nil {
			return nil, 0, err
		}
		durUnits, err := ToUnits(ev.Duration, tempo)
		if err != nil {
			return nil, 0, err
		}

		// Onsets snap to the nearest integer unit; durations snap to the
		// canonical vocabulary. Each event is quantized independently, no
		// drift correction across calls.
		onset := int(math.Round(onsetUnits))
		dur := Quantize(durUnits)

		c, ok := clusters[onset]
		if !ok {
			c = &cluster{pitches: make(map[int]bool)}
			clusters[onset] = c
		}
		c.pitches[ev.Pitch] = true
		if dur > c.dur {
			c.dur = dur
		}
	}

	onsets := make([]int, 0, len(clusters))
	for onset := range clusters {
		onsets = append(onsets, onset)
	}
	sort.Ints(onsets)

	chords := make([]Token, 0, len(clusters))
	for _, onset := range onsets {
		c := clusters[onset]
		pitches := make([]int, 0, len(c.pitches))
		for p := range c.pitches {
			pitches = append(pitches, p)
		}
		sort.Ints(pitches)
		chords = append(chords, Token{
			Pitches:  pitches,
			Duration: c.dur,
			Start:    onset,
		})
	}

	return chords, skipped, nil
}

// fillRests interleaves rest tokens between chords so the stream is
// contiguous: every token starts exactly where the previous one ended.
// Silence before the first chord is filled from offset zero. When a chord's
// quantized duration would overrun the next chord's onset it is capped to
// the largest canonical value that fits the available span (the span is at
// least one unit since grouped onsets are distinct integers); leftover span
// becomes rests.
func fillRests(chords []Token) []Token {
	var stream []Token
	cursor := 0

	for i, chord := range chords {
		for _, d := range DecomposeGap(float64(chord.Start - cursor)) {
			stream = append(stream, Token{Duration: d, Start: cursor})
			cursor += int(d)
		}

		dur := chord.Duration
		if i+1 < len(chords) {
			span := chords[i+1].Start - chord.Start
			if int(dur) > span {
				dur = largestCanonical(float64(span))
			}
		}

		stream = append(stream, Token{
			Pitches:  chord.Pitches,
			Duration: dur,
			Start:    cursor,
		})
		cursor += int(dur)
	}

	return stream
}
