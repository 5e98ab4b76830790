package notation

import "math"

// Duration is a rhythmic value measured in eighth-note units. Only the
// canonical values below are ever emitted; the ABC grammar depends on every
// duration suffix being one of these integers so that a greedy digit scan
// can never misread a token.
type Duration int

// Canonical duration vocabulary, ascending. 1 = eighth note, 2 = quarter,
// 8 = whole bar in 4/4 at eighth resolution, 32 = four tied whole notes.
var canonicalDurations = [...]Duration{1, 2, 3, 4, 6, 8, 12, 16, 24, 32}

// BarUnits is the measure length in eighth-note units (4/4 time).
const BarUnits = 8

// IsCanonical reports whether d belongs to the canonical vocabulary.
func (d Duration) IsCanonical() bool {
	for _, c := range canonicalDurations {
		if d == c {
			return true
		}
	}
	return false
}

// ToUnits converts a time in seconds to eighth-note units at the given
// tempo. One unit is half a beat: 60/tempo/2 seconds.
func ToUnits(seconds, tempo float64) (float64, error) {
	if tempo <= 0 {
		return 0, ErrInvalidTempo
	}
	return seconds / (60.0 / tempo / 2.0), nil
}

// Quantize snaps a real-valued duration in units to the nearest canonical
// value. The tie-break is explicit: improvement must be strictly better, so
// an exact tie between two canonical values keeps the smaller one, biasing
// toward denser notation instead of lengthening into the next onset.
// Anything below half of the smallest unit clamps to 1 so no detected note
// is ever dropped.
func Quantize(units float64) Duration {
	if units < 0.5 {
		return canonicalDurations[0]
	}
	best := canonicalDurations[0]
	bestDiff := math.Abs(units - float64(best))
	for _, c := range canonicalDurations[1:] {
		diff := math.Abs(units - float64(c))
		if diff < bestDiff {
			best = c
			bestDiff = diff
		}
	}
	return best
}

// largestCanonical returns the biggest canonical value that fits in span.
// span must be >= 1.
func largestCanonical(span float64) Duration {
	best := canonicalDurations[0]
	for _, c := range canonicalDurations {
		if float64(c) <= span {
			best = c
		}
	}
	return best
}

// DecomposeGap breaks a silent gap (in units) into canonical rest durations,
// largest first. The gap is consumed until less than one unit remains; a
// remainder of half a unit or more rounds up to a final unit rest, anything
// smaller is absorbed. Largest-first is a deliberate choice, not a minimal
// token cover.
func DecomposeGap(units float64) []Duration {
	var rests []Duration
	remaining := units
	for remaining >= 1 {
		d := largestCanonical(remaining)
		rests = append(rests, d)
		remaining -= float64(d)
	}
	if remaining >= 0.5 {
		rests = append(rests, 1)
	}
	return rests
}
