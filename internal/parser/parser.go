package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/syncforge/tracksync/internal/models"
)

// ErrMalformedPayload is returned when the request body is not a decodable
// webhook envelope or is missing mandatory identifying fields.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Parse decodes raw request bytes into a WebhookEnvelope. Unknown extra
// fields are tolerated for forward compatibility; a missing eventType or
// entity payload fails with ErrMalformedPayload. Parse has no side effects.
func Parse(raw []byte) (*models.WebhookEnvelope, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	var envelope models.WebhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if envelope.EventType == "" {
		return nil, fmt.Errorf("%w: missing eventType", ErrMalformedPayload)
	}
	if len(envelope.Payload) == 0 || string(envelope.Payload) == "null" {
		return nil, fmt.Errorf("%w: missing entityPayload", ErrMalformedPayload)
	}
	if envelope.Timestamp.IsZero() {
		envelope.Timestamp = models.EventTime{Time: time.Now().UTC()}
	}

	return &envelope, nil
}

// DecodeProject decodes the envelope payload as a project snapshot.
// The external id is mandatory for every project operation.
func DecodeProject(envelope *models.WebhookEnvelope) (*models.ProjectSnapshot, error) {
	var snapshot models.ProjectSnapshot
	if err := json.Unmarshal(envelope.Payload, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: project payload: %v", ErrMalformedPayload, err)
	}
	if snapshot.ID == "" {
		return nil, fmt.Errorf("%w: project payload missing id", ErrMalformedPayload)
	}
	return &snapshot, nil
}

// DecodeIssue decodes the envelope payload as an issue snapshot.
// The external id is mandatory for every issue operation.
func DecodeIssue(envelope *models.WebhookEnvelope) (*models.IssueSnapshot, error) {
	var snapshot models.IssueSnapshot
	if err := json.Unmarshal(envelope.Payload, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: issue payload: %v", ErrMalformedPayload, err)
	}
	if snapshot.ID == "" {
		return nil, fmt.Errorf("%w: issue payload missing id", ErrMalformedPayload)
	}
	return &snapshot, nil
}
