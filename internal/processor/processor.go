// Package processor holds one processor per (entity kind, operation) pair.
// Each processor validates the snapshot for its operation and performs a
// single reconcile call; correctness of one processor is independent of the
// others.
package processor

import (
	"context"
	"errors"

	"github.com/syncforge/tracksync/internal/models"
)

// ErrValidation is returned when the payload is missing a field the
// operation requires. Non-retriable; surfaced as a rejected response.
var ErrValidation = errors.New("payload validation failed")

// Processor applies the semantic effect of one event type to the store.
type Processor interface {
	EventType() string
	Process(ctx context.Context, envelope *models.WebhookEnvelope) (models.UpsertOutcome, error)
}
