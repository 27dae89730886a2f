package models

import "time"

// EntityKind discriminates the two mirrored entity kinds.
type EntityKind string

const (
	KindProject EntityKind = "project"
	KindIssue   EntityKind = "issue"
)

// ExternalRef is the identity correlation key. The source system's id is the
// sole key for upserts; local record ids are never used for correlation.
type ExternalRef struct {
	SourceID string
	Kind     EntityKind
}

// ProjectRecord is the persisted mirror of a source-system project.
type ProjectRecord struct {
	ID                 string     `json:"id"`
	ExternalID         string     `json:"external_id"`
	Key                string     `json:"key"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Placeholder        bool       `json:"placeholder"`
	ExternalModifiedAt time.Time  `json:"external_modified_at"`
	LastSyncedAt       time.Time  `json:"last_synced_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

// IssueRecord is the persisted mirror of a source-system issue. ProjectID
// references the local id of the owning ProjectRecord.
type IssueRecord struct {
	ID                 string     `json:"id"`
	ExternalID         string     `json:"external_id"`
	Key                string     `json:"key"`
	Summary            string     `json:"summary"`
	Status             string     `json:"status"`
	ProjectID          string     `json:"project_id"`
	ExternalModifiedAt time.Time  `json:"external_modified_at"`
	LastSyncedAt       time.Time  `json:"last_synced_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

// UpsertOutcome is the result of resolving one event against the store.
type UpsertOutcome string

const (
	OutcomeInserted   UpsertOutcome = "inserted"
	OutcomeMerged     UpsertOutcome = "merged"
	OutcomeNoOpStale  UpsertOutcome = "noop_stale"
	OutcomeDeleted    UpsertOutcome = "deleted"
	OutcomeNoOpAbsent UpsertOutcome = "noop_absent"
)

// ResponseStatus is the result contract exposed to the endpoint adapter.
type ResponseStatus string

const (
	StatusAccepted ResponseStatus = "accepted"
	StatusRejected ResponseStatus = "rejected"
)

// WebhookResponse is returned to the delivering system.
type WebhookResponse struct {
	Status  ResponseStatus `json:"status"`
	Outcome UpsertOutcome  `json:"outcome,omitempty"`
	Reason  string         `json:"reason,omitempty"`
}

// SyncStats tracks ingestion totals, surfaced on the readiness endpoint.
type SyncStats struct {
	TotalEvents    int64     `json:"total_events"`
	TotalBytes     int64     `json:"total_bytes"`
	AcceptedEvents int64     `json:"accepted_events"`
	RejectedEvents int64     `json:"rejected_events"`
	StaleEvents    int64     `json:"stale_events"`
	LastEvent      time.Time `json:"last_event"`
}
