package logging

import "log/slog"

// Common field names for consistent logging across the pipeline.
const (
	FieldService    = "service"
	FieldEventType  = "event_type"
	FieldExternalID = "external_id"
	FieldEntityKind = "entity_kind"
	FieldOutcome    = "outcome"
	FieldIP         = "ip"
	FieldError      = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// EventType returns a slog attribute for the webhook event type tag.
func EventType(tag string) slog.Attr {
	return slog.String(FieldEventType, tag)
}

// ExternalID returns a slog attribute for a source-system entity id.
func ExternalID(id string) slog.Attr {
	return slog.String(FieldExternalID, id)
}

// EntityKind returns a slog attribute for the entity kind.
func EntityKind(kind string) slog.Attr {
	return slog.String(FieldEntityKind, kind)
}

// Outcome returns a slog attribute for an upsert outcome.
func Outcome(outcome string) slog.Attr {
	return slog.String(FieldOutcome, outcome)
}

// IP returns a slog attribute for the client IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
