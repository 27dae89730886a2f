package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		data           interface{}
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "successful response with map",
			status:         http.StatusOK,
			data:           map[string]string{"status": "accepted"},
			expectedStatus: http.StatusOK,
			expectedType:   "application/json",
		},
		{
			name:           "error response",
			status:         http.StatusBadRequest,
			data:           map[string]string{"error": "bad request"},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "application/json",
		},
		{
			name:           "response with struct",
			status:         http.StatusOK,
			data:           struct{ ID string }{"PRJ-1"},
			expectedStatus: http.StatusOK,
			expectedType:   "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteJSON(w, tt.status, tt.data)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			contentType := w.Header().Get("Content-Type")
			if contentType != tt.expectedType {
				t.Errorf("expected content type %q, got %q", tt.expectedType, contentType)
			}

			var result interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
				t.Errorf("response is not valid JSON: %v", err)
			}
		})
	}
}

func TestWriteJSON_InvalidData(t *testing.T) {
	// Data that cannot be marshaled (a channel) must not panic.
	w := httptest.NewRecorder()
	invalidData := make(chan int)

	WriteJSON(w, http.StatusOK, invalidData)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type to be set")
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		message        string
		expectedStatus int
	}{
		{
			name:           "unauthorized",
			status:         http.StatusUnauthorized,
			message:        "invalid webhook token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "rate limited",
			status:         http.StatusTooManyRequests,
			message:        "rate limit exceeded",
			expectedStatus: http.StatusTooManyRequests,
		},
		{
			name:           "internal server error",
			status:         http.StatusInternalServerError,
			message:        "internal error",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.status, tt.message)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type application/json")
			}

			var response map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if response["error"] != tt.message {
				t.Errorf("expected error message %q, got %q", tt.message, response["error"])
			}
		})
	}
}
