package model

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// Quantization strategies selectable per request
type QuantizationStrategy string

const (
	QuantizationDefault         QuantizationStrategy = "default"
	QuantizationReferenceGuided QuantizationStrategy = "reference"
)

// Output artifact formats
type OutputFormat string

const (
	OutputFormatMIDI OutputFormat = "mid"
	OutputFormatABC  OutputFormat = "abc"
)

// Audio container formats accepted for upload. The detector service decodes
// wav/flac/ogg natively and converts mp3/webm to wav before inference.
type AudioFormat string

const (
	AudioFormatWAV  AudioFormat = "wav"
	AudioFormatFLAC AudioFormat = "flac"
	AudioFormatOGG  AudioFormat = "ogg"
	AudioFormatMP3  AudioFormat = "mp3"
	AudioFormatWebM AudioFormat = "webm"
)

var SupportedAudioFormats = []AudioFormat{
	AudioFormatWAV, AudioFormatFLAC, AudioFormatOGG, AudioFormatMP3, AudioFormatWebM,
}
