package model

import (
	"time"

	"github.com/pianoscribe/api/internal/notation"
)

// NoteEvent is the detector's output event, owned by the caller.
type NoteEvent = notation.NoteEvent

// TranscribeParams are the detector and encoder tuning knobs carried by a
// job. Zero values are replaced with configured defaults before queuing.
type TranscribeParams struct {
	OnsetThreshold  float64              `json:"onsetThreshold" validate:"omitempty,gt=0,lte=1"`
	FrameThreshold  float64              `json:"frameThreshold" validate:"omitempty,gt=0,lte=1"`
	MinNoteLengthMs float64              `json:"minNoteLengthMs" validate:"omitempty,gt=0"`
	Tempo           float64              `json:"tempo" validate:"omitempty,gt=0"`
	ABC             bool                 `json:"abc"`
	Strategy        QuantizationStrategy `json:"strategy" validate:"omitempty,oneof=default reference"`
}

// TranscribeStartResponse is returned when a job is queued
type TranscribeStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// TranscribeStatusResponse reports job progress
type TranscribeStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// TranscribeCancelResponse confirms a cancellation
type TranscribeCancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}

// NoteSummary is the human-facing digest of a transcription
type NoteSummary struct {
	NumNotes        int       `json:"numNotes"`
	DurationSeconds float64   `json:"durationSeconds"`
	PitchRange      []string  `json:"pitchRange"`
	TimeSpan        []float64 `json:"timeSpan"`
}

// TranscribeResultResponse is the completed job's artifact listing
type TranscribeResultResponse struct {
	ID           string      `json:"id"`
	MidiURL      string      `json:"midiUrl"`
	AbcURL       *string     `json:"abcUrl,omitempty"`
	Summary      NoteSummary `json:"summary"`
	SkippedNotes int         `json:"skippedNotes"`
	CreatedAt    time.Time   `json:"createdAt"`
}
