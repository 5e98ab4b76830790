package notation

import (
	"fmt"
	"strconv"
	"strings"
)

// measuresPerLine controls how many bars are rendered on one body line.
const measuresPerLine = 4

// Sharp spellings for the twelve semitones; the key placeholder is C so
// accidentals are always written explicitly.
var pitchLetters = [12]string{"C", "^C", "D", "^D", "E", "F", "^F", "G", "^G", "A", "^A", "B"}

// abcPitch spells a MIDI pitch in ABC: middle C (60) is "C", the octave
// above is "c", higher octaves append apostrophes and lower octaves append
// commas after an uppercase letter.
func abcPitch(pitch int) string {
	name := pitchLetters[pitch%12]
	octave := pitch/12 - 1

	var accidental string
	if strings.HasPrefix(name, "^") {
		accidental = "^"
		name = name[1:]
	}

	switch {
	case octave <= 4:
		return accidental + name + strings.Repeat(",", 4-octave)
	default:
		return accidental + strings.ToLower(name) + strings.Repeat("'", octave-5)
	}
}

// abcDuration renders the duration suffix. The base unit (1) is implicit;
// everything else is a bare decimal integer from the canonical vocabulary,
// never a fraction, so downstream greedy digit scanning stays unambiguous.
func abcDuration(d Duration) string {
	if d == 1 {
		return ""
	}
	return strconv.Itoa(int(d))
}

// abcToken renders one stream token: a rest as "z" with the duration
// suffix, a chord as a bracketed pitch-sorted list with the suffix on each
// member note.
func abcToken(t Token) string {
	if t.IsRest() {
		return "z" + abcDuration(t.Duration)
	}
	var b strings.Builder
	b.WriteByte('[')
	for _, p := range t.Pitches {
		b.WriteString(abcPitch(p))
		b.WriteString(abcDuration(t.Duration))
	}
	b.WriteByte(']')
	return b.String()
}

// Text renders the stream as ABC notation: a fixed header block followed by
// the measures, four to a line. An empty stream renders header-only.
func (s *EncodedStream) Text() string {
	var b strings.Builder
	b.WriteString("X:1\n")
	b.WriteString("M:" + s.Meter + "\n")
	b.WriteString("L:" + s.UnitLength + "\n")
	fmt.Fprintf(&b, "Q:1/4=%g\n", s.Tempo)
	b.WriteString("K:" + s.Key + "\n")

	rendered := make([]string, len(s.Measures))
	for i, m := range s.Measures {
		tokens := make([]string, len(m.Tokens))
		for j, tok := range m.Tokens {
			tokens[j] = abcToken(tok)
		}
		rendered[i] = strings.Join(tokens, " ")
	}

	for start := 0; start < len(rendered); start += measuresPerLine {
		end := start + measuresPerLine
		if end > len(rendered) {
			end = len(rendered)
		}
		b.WriteString(strings.Join(rendered[start:end], " | "))
		if end == len(rendered) {
			b.WriteString(" |]\n")
		} else {
			b.WriteString(" |\n")
		}
	}

	return b.String()
}
