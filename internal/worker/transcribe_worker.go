package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pianoscribe/api/internal/client"
	"github.com/pianoscribe/api/internal/config"
	"github.com/pianoscribe/api/internal/midi"
	"github.com/pianoscribe/api/internal/model"
	"github.com/pianoscribe/api/internal/notation"
	"github.com/pianoscribe/api/internal/service"
	"github.com/pianoscribe/api/internal/websocket"
)

// TranscribeWorker processes transcription jobs: fetch the uploaded audio,
// run note detection, write the MIDI artifact and optionally the ABC score,
// then publish artifact URLs on the job record.
type TranscribeWorker struct {
	transcribeService *service.TranscribeService
	detectorClient    *client.DetectorClient
	storage           *service.StorageService
	hub               *websocket.Hub
	encodeDefaults    config.TranscribeConfig
}

// NewTranscribeWorker creates a new transcription worker
func NewTranscribeWorker(transcribeService *service.TranscribeService, detectorClient *client.DetectorClient, storage *service.StorageService, hub *websocket.Hub, encodeDefaults config.TranscribeConfig) *TranscribeWorker {
	return &TranscribeWorker{
		transcribeService: transcribeService,
		detectorClient:    detectorClient,
		storage:           storage,
		hub:               hub,
		encodeDefaults:    encodeDefaults,
	}
}

// ProcessTask handles transcription task processing
func (w *TranscribeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := taskPayload.JobID
	log.Printf("Starting transcription job: %s", jobID)

	var payload model.TranscribeJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, "Invalid payload")
		return fmt.Errorf("failed to unmarshal transcription payload: %w", err)
	}

	if w.transcribeService.IsCanceled(ctx, jobID) {
		log.Printf("Transcription job %s canceled before start", jobID)
		return nil
	}

	var events []model.NoteEvent
	tempo := payload.Params.Tempo

	if w.detectorClient == nil || !w.detectorClient.IsConfigured() {
		events = mockNoteEvents()
		w.updateProgress(ctx, jobID, 40, "Detecting notes...")
	} else {
		w.updateProgress(ctx, jobID, 5, "Fetching audio...")
		audio, err := w.storage.FetchAudio(ctx, payload.UploadKey)
		if err != nil {
			w.failJob(ctx, jobID, fmt.Sprintf("Audio fetch failed: %v", err))
			return err
		}

		w.updateProgress(ctx, jobID, 15, "Detecting notes...")
		detected, err := w.detectorClient.Detect(ctx, payload.Filename, audio, payload.Params)
		audio.Close()
		if err != nil {
			w.failJob(ctx, jobID, fmt.Sprintf("Note detection failed: %v", err))
			return err
		}

		events = detected.Events
		if detected.Tempo > 0 {
			tempo = detected.Tempo
		}
	}

	if w.transcribeService.IsCanceled(ctx, jobID) {
		log.Printf("Transcription job %s canceled after detection", jobID)
		return nil
	}

	w.updateProgress(ctx, jobID, 50, "Writing MIDI...")
	midiBytes, err := midi.WriteEvents(events, tempo)
	if err != nil {
		w.failJob(ctx, jobID, fmt.Sprintf("MIDI rendering failed: %v", err))
		return err
	}

	midiURL, err := w.storage.StoreOutput(ctx, jobID, "transcription.mid", midiBytes, "audio/midi")
	if err != nil {
		w.failJob(ctx, jobID, fmt.Sprintf("Artifact upload failed: %v", err))
		return err
	}

	var abcURL *string
	var skipped int
	if payload.Params.ABC {
		w.updateProgress(ctx, jobID, 70, "Encoding notation...")

		strategy, err := notation.NewStrategy(string(payload.Params.Strategy), w.encodeDefaults.ReferencePath)
		if err != nil {
			w.failJob(ctx, jobID, fmt.Sprintf("Notation encoding failed: %v", err))
			return err
		}

		stream, err := strategy.EncodeStream(events, tempo)
		if err != nil {
			w.failJob(ctx, jobID, fmt.Sprintf("Notation encoding failed: %v", err))
			return err
		}
		skipped = stream.SkippedNotes

		url, err := w.storage.StoreOutput(ctx, jobID, "transcription.abc", []byte(stream.Text()), "text/plain")
		if err != nil {
			w.failJob(ctx, jobID, fmt.Sprintf("Artifact upload failed: %v", err))
			return err
		}
		abcURL = &url
	}

	w.updateProgress(ctx, jobID, 90, "Finalizing...")
	result := &model.TranscribeResultResponse{
		ID:           jobID,
		MidiURL:      midiURL,
		AbcURL:       abcURL,
		Summary:      service.BuildSummary(events),
		SkippedNotes: skipped,
		CreatedAt:    time.Now(),
	}

	if err := w.transcribeService.CompleteJob(ctx, jobID, result); err != nil {
		w.failJob(ctx, jobID, "Failed to save result")
		return err
	}

	// Uploaded audio is transient, the artifacts are what we keep
	if err := w.storage.DeleteUpload(ctx, payload.UploadKey); err != nil {
		log.Printf("Failed to delete upload %s: %v", payload.UploadKey, err)
	}

	w.hub.BroadcastComplete(jobID, result)
	log.Printf("Transcription job %s completed", jobID)
	return nil
}

func (w *TranscribeWorker) updateProgress(ctx context.Context, jobID string, progress int, step string) {
	if err := w.transcribeService.UpdateJobProgress(ctx, jobID, progress, step); err != nil {
		log.Printf("Failed to update progress: %v", err)
	}
	w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)
}

func (w *TranscribeWorker) failJob(ctx context.Context, jobID, errMsg string) {
	if err := w.transcribeService.FailJob(ctx, jobID, errMsg); err != nil {
		log.Printf("Failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "TRANSCRIBE_FAILED", errMsg)
}

// mockNoteEvents stands in for the detector during development: a rising
// C major arpeggio and back down, closed by a held chord.
func mockNoteEvents() []model.NoteEvent {
	pitches := []int{60, 64, 67, 72, 67, 64}
	events := make([]model.NoteEvent, 0, len(pitches)+3)
	for i, p := range pitches {
		events = append(events, model.NoteEvent{
			Pitch:    p,
			Onset:    float64(i) * 0.5,
			Duration: 0.5,
			Velocity: 80,
		})
	}
	for _, p := range []int{60, 64, 67} {
		events = append(events, model.NoteEvent{
			Pitch:    p,
			Onset:    3.0,
			Duration: 1.0,
			Velocity: 90,
		})
	}
	return events
}
