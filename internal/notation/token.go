package notation

// NoteEvent is a single note detected by the upstream model. The encoder
// treats it as immutable caller-owned input.
type NoteEvent struct {
	Pitch    int     `json:"pitch" validate:"min=0,max=127"`
	Onset    float64 `json:"onsetSeconds"`
	Duration float64 `json:"durationSeconds"`
	Velocity int     `json:"velocity" validate:"min=0,max=127"`
}

// Token is one element of the quantized stream: a chord (non-empty sorted
// pitch set) or a rest (empty pitch set). Tokens are contiguous by
// construction: each token starts where the previous one ended.
type Token struct {
	Pitches  []int
	Duration Duration
	Start    int
}

// IsRest reports whether the token is a rest.
func (t Token) IsRest() bool { return len(t.Pitches) == 0 }

// End returns the unit offset just past the token.
func (t Token) End() int { return t.Start + int(t.Duration) }

// Measure is a maximal run of tokens between bar boundaries. Units may
// exceed BarUnits when a long token straddles the boundary; tokens are
// never split to fit a bar.
type Measure struct {
	Tokens []Token
	Units  int
}

// EncodedStream is the sole output artifact of the encoder: header metadata
// plus the segmented token stream. SkippedNotes counts input events whose
// pitch fell outside the encodable octave range; callers can reconcile note
// counts instead of seeing an unexplained mismatch.
type EncodedStream struct {
	Tempo        float64
	Meter        string
	UnitLength   string
	Key          string
	Measures     []Measure
	SkippedNotes int
}
