package models

import (
	"encoding/json"
	"time"
)

// Recognized event type tags, format "<domain>:<entity>_<operation>".
const (
	EventProjectCreated = "jira:project_created"
	EventProjectUpdated = "jira:project_updated"
	EventProjectDeleted = "jira:project_deleted"
	EventIssueCreated   = "jira:issue_created"
	EventIssueUpdated   = "jira:issue_updated"
	EventIssueDeleted   = "jira:issue_deleted"
)

// EventTime unmarshals both RFC3339 strings and Unix millisecond numbers.
// Jira webhooks mix the two depending on the field.
type EventTime struct {
	time.Time
}

func (t *EventTime) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		t.Time = time.Unix(0, ms*int64(time.Millisecond)).UTC()
		return nil
	}
	return json.Unmarshal(data, &t.Time)
}

func (t EventTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// WebhookEnvelope is one inbound notification. It is built once per request
// and discarded after dispatch; it is never persisted.
type WebhookEnvelope struct {
	EventType string          `json:"eventType"`
	Timestamp EventTime       `json:"timestamp"`
	Payload   json.RawMessage `json:"entityPayload"`
}

// ProjectSnapshot is the project entity as of the event.
type ProjectSnapshot struct {
	ID           string     `json:"id"`
	Key          string     `json:"key,omitempty"`
	Name         string     `json:"name,omitempty"`
	Description  string     `json:"description,omitempty"`
	LastModified *EventTime `json:"lastModified,omitempty"`
}

// IssueSnapshot is the issue entity as of the event. Project carries the
// external reference to the owning project, possibly just its id.
type IssueSnapshot struct {
	ID           string           `json:"id"`
	Key          string           `json:"key,omitempty"`
	Summary      string           `json:"summary,omitempty"`
	Status       string           `json:"status,omitempty"`
	Project      *ProjectSnapshot `json:"project,omitempty"`
	LastModified *EventTime       `json:"lastModified,omitempty"`
}

// ModifiedAt returns the snapshot's own modification time, falling back to
// the envelope timestamp when the payload carries none.
func (p *ProjectSnapshot) ModifiedAt(fallback time.Time) time.Time {
	if p.LastModified != nil && !p.LastModified.IsZero() {
		return p.LastModified.Time
	}
	return fallback
}

func (i *IssueSnapshot) ModifiedAt(fallback time.Time) time.Time {
	if i.LastModified != nil && !i.LastModified.IsZero() {
		return i.LastModified.Time
	}
	return fallback
}
