package e2e

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// multipartUpload builds a multipart body with an audio file and form fields.
func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write file content: %v", err)
	}

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func doUpload(t *testing.T, app *fiber.App, filename string, fields map[string]string) *http.Response {
	t.Helper()

	body, contentType := multipartUpload(t, filename, []byte("RIFF fake audio data"), fields)

	req, err := http.NewRequest(http.MethodPost, "/api/transcribe/start", body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+generateToken(t))

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestTranscribeStart_NoAuth(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/transcribe/start", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestTranscribeStart_MissingFile(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/transcribe/start", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestTranscribeStart_UnsupportedFormat(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "notes.txt", nil)
	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok || errObj["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", result)
	}
}

func TestTranscribeStart_BadTempo(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "take1.wav", map[string]string{"tempo": "-10"})
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestTranscribeStart_Queued(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "take1.wav", map[string]string{
		"tempo": "96",
		"abc":   "true",
	})
	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	jobID, ok := result["jobId"].(string)
	if !ok || jobID == "" {
		t.Fatalf("expected jobId in response, got %v", result)
	}
	if result["status"] != "queued" {
		t.Errorf("expected status queued, got %v", result["status"])
	}

	// Status should be retrievable right away
	statusResp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/transcribe/status/"+jobID, "")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	assertStatus(t, statusResp, http.StatusOK)

	statusBody := parseJSON(t, statusResp)
	if statusBody["jobId"] != jobID {
		t.Errorf("expected jobId %s, got %v", jobID, statusBody["jobId"])
	}
}

func TestTranscribeStatus_NotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/transcribe/status/nonexistent-job", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestTranscribeResult_NotCompleted(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "take2.flac", nil)
	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	jobID := result["jobId"].(string)

	// No worker is running in this test, so the job stays queued
	resultResp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/transcribe/result/"+jobID, "")
	if err != nil {
		t.Fatalf("result request failed: %v", err)
	}
	assertStatus(t, resultResp, http.StatusBadRequest)
}

func TestTranscribeCancel(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "take3.ogg", nil)
	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	jobID := result["jobId"].(string)

	cancelResp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/transcribe/cancel/"+jobID, "")
	if err != nil {
		t.Fatalf("cancel request failed: %v", err)
	}
	assertStatus(t, cancelResp, http.StatusOK)

	cancelBody := parseJSON(t, cancelResp)
	if cancelBody["status"] != "canceled" {
		t.Errorf("expected status canceled, got %v", cancelBody["status"])
	}

	// Canceling an already-canceled job is a no-op
	againResp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/transcribe/cancel/"+jobID, "")
	if err != nil {
		t.Fatalf("second cancel request failed: %v", err)
	}
	assertStatus(t, againResp, http.StatusOK)
}
