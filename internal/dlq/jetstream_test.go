package dlq

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFailedWebhook_EntryShape(t *testing.T) {
	entry := FailedWebhook{
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload:   json.RawMessage(`{"eventType":"jira:project_created"}`),
		Error:     "malformed payload: missing eventType",
		Reason:    "malformed_payload",
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded FailedWebhook
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.Reason != "malformed_payload" {
		t.Errorf("Reason = %q, want %q", decoded.Reason, "malformed_payload")
	}
	if decoded.Error != entry.Error {
		t.Errorf("Error = %q, want %q", decoded.Error, entry.Error)
	}

	// The original payload survives byte for byte so operators can replay it.
	if string(decoded.Payload) != string(entry.Payload) {
		t.Errorf("Payload = %s, want %s", decoded.Payload, entry.Payload)
	}
}
