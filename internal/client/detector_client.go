package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/pianoscribe/api/internal/config"
	"github.com/pianoscribe/api/internal/model"
	"github.com/pianoscribe/api/internal/notation"
)

// NoteDetector defines the interface to the pretrained note-detection model
type NoteDetector interface {
	Detect(ctx context.Context, filename string, audio io.Reader, params model.TranscribeParams) (*DetectResult, error)
	HealthCheck(ctx context.Context) error
}

// DetectorClient implements NoteDetector for the inference microservice
type DetectorClient struct {
	httpClient *http.Client
	baseURL    string
}

// DetectResult is the detector's structured output: ordered note events and
// the tempo it discovered, zero when the audio carried no tempo metadata.
type DetectResult struct {
	Events []notation.NoteEvent
	Tempo  float64
}

// detectResponse is the microservice's wire format
type detectResponse struct {
	Notes []struct {
		Pitch     int     `json:"pitch"`
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
		Velocity  int     `json:"velocity"`
	} `json:"notes"`
	Tempo float64 `json:"tempo"`
}

// NewDetectorClient creates a new detection model client
func NewDetectorClient(cfg *config.DetectorConfig) *DetectorClient {
	return &DetectorClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.ServiceURL,
	}
}

// Detect uploads audio to the model service and returns detected events
func (c *DetectorClient) Detect(ctx context.Context, filename string, audio io.Reader, params model.TranscribeParams) (*DetectResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to buffer audio: %w", err)
	}

	_ = writer.WriteField("onset_threshold", strconv.FormatFloat(params.OnsetThreshold, 'f', -1, 64))
	_ = writer.WriteField("frame_threshold", strconv.FormatFloat(params.FrameThreshold, 'f', -1, 64))
	_ = writer.WriteField("min_note_length_ms", strconv.FormatFloat(params.MinNoteLengthMs, 'f', -1, 64))

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("detector service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed detectResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	result := &DetectResult{Tempo: parsed.Tempo}
	for _, n := range parsed.Notes {
		result.Events = append(result.Events, notation.NoteEvent{
			Pitch:    n.Pitch,
			Onset:    n.StartTime,
			Duration: n.EndTime - n.StartTime,
			Velocity: n.Velocity,
		})
	}

	return result, nil
}

// HealthCheck checks if the detector service is available
func (c *DetectorClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector service unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *DetectorClient) IsConfigured() bool {
	return c.baseURL != ""
}
