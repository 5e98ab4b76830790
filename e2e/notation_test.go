package e2e

import (
	"net/http"
	"strings"
	"testing"
)

func TestNotationEncode_NoAuth(t *testing.T) {
	ta := setupApp(t)

	body := `{"events":[],"tempo":120}`
	resp, err := doRequest(ta.app, http.MethodPost, "/api/notation/encode", body, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestNotationEncode_Chord(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"events": [
			{"pitch": 60, "onsetSeconds": 0, "durationSeconds": 0.5, "velocity": 80},
			{"pitch": 64, "onsetSeconds": 0, "durationSeconds": 0.5, "velocity": 80},
			{"pitch": 67, "onsetSeconds": 0, "durationSeconds": 0.5, "velocity": 80}
		],
		"tempo": 120
	}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/notation/encode", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	abc, ok := result["abc"].(string)
	if !ok || abc == "" {
		t.Fatalf("expected non-empty abc text, got %v", result["abc"])
	}
	if !strings.Contains(abc, "[C2E2G2]") {
		t.Errorf("expected chord token [C2E2G2] in abc output:\n%s", abc)
	}
	if result["tempo"] != float64(120) {
		t.Errorf("expected tempo 120, got %v", result["tempo"])
	}
	if result["measures"] != float64(1) {
		t.Errorf("expected 1 measure, got %v", result["measures"])
	}
}

func TestNotationEncode_EmptyEvents(t *testing.T) {
	ta := setupApp(t)

	body := `{"events":[],"tempo":100}`
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/notation/encode", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	abc, _ := result["abc"].(string)
	if !strings.Contains(abc, "X:1") || !strings.Contains(abc, "Q:1/4=100") {
		t.Errorf("expected header-only abc output, got:\n%s", abc)
	}
	if result["measures"] != float64(0) {
		t.Errorf("expected 0 measures, got %v", result["measures"])
	}
}

func TestNotationEncode_DefaultTempo(t *testing.T) {
	ta := setupApp(t)

	body := `{"events":[{"pitch": 69, "onsetSeconds": 0, "durationSeconds": 0.25, "velocity": 70}]}`
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/notation/encode", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["tempo"] != float64(120) {
		t.Errorf("expected default tempo 120, got %v", result["tempo"])
	}
}

func TestNotationEncode_MalformedEvent(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"events": [
			{"pitch": 60, "onsetSeconds": 0, "durationSeconds": 0.5, "velocity": 80},
			{"pitch": 64, "onsetSeconds": 1, "durationSeconds": -0.5, "velocity": 80}
		],
		"tempo": 120
	}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/notation/encode", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusUnprocessableEntity)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", result)
	}
	if errObj["code"] != "ENCODING_ERROR" {
		t.Errorf("expected ENCODING_ERROR, got %v", errObj["code"])
	}
	details, ok := errObj["details"].(map[string]interface{})
	if !ok || details["index"] != float64(1) {
		t.Errorf("expected offending event index 1, got %v", errObj["details"])
	}
}

func TestNotationEncode_InvalidStrategy(t *testing.T) {
	ta := setupApp(t)

	body := `{"events":[],"strategy":"neural"}`
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/notation/encode", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestNotationEncode_ReferenceStrategyNotImplemented(t *testing.T) {
	ta := setupApp(t)

	body := `{"events":[],"strategy":"reference"}`
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/notation/encode", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotImplemented)
}
