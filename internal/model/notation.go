package model

// NotationEncodeRequest is the synchronous encode surface: caller-supplied
// note events plus a tempo, ABC text back. Tempo defaults to 120 when the
// upstream source carries no tempo metadata.
type NotationEncodeRequest struct {
	Events   []NoteEvent          `json:"events" validate:"dive"`
	Tempo    float64              `json:"tempo" validate:"omitempty,gt=0"`
	Strategy QuantizationStrategy `json:"strategy" validate:"omitempty,oneof=default reference"`
}

// NotationEncodeResponse carries the rendered notation
type NotationEncodeResponse struct {
	ABC          string  `json:"abc"`
	Tempo        float64 `json:"tempo"`
	Measures     int     `json:"measures"`
	SkippedNotes int     `json:"skippedNotes"`
}
