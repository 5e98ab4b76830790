package model

import "time"

// Job represents a background transcription job
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"payload,omitempty"`
	Result      []byte     `json:"result,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// Job types
const (
	JobTypeTranscribe = "transcribe"
)

// TranscribeJobPayload contains the data for a transcription job
type TranscribeJobPayload struct {
	UploadKey string           `json:"uploadKey"`
	Filename  string           `json:"filename"`
	Params    TranscribeParams `json:"params"`
}
