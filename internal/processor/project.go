package processor

import (
	"context"
	"fmt"

	"github.com/syncforge/tracksync/internal/models"
	"github.com/syncforge/tracksync/internal/parser"
	"github.com/syncforge/tracksync/internal/reconcile"
)

type projectCreated struct {
	reconciler *reconcile.Reconciler
}

func NewProjectCreated(r *reconcile.Reconciler) Processor {
	return &projectCreated{reconciler: r}
}

func (p *projectCreated) EventType() string { return models.EventProjectCreated }

func (p *projectCreated) Process(ctx context.Context, envelope *models.WebhookEnvelope) (models.UpsertOutcome, error) {
	snap, err := parser.DecodeProject(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if snap.Name == "" {
		return "", fmt.Errorf("%w: project_created requires name", ErrValidation)
	}
	// A duplicate delivery finds the record already present and merges.
	return p.reconciler.UpsertProject(ctx, snap, envelope.Timestamp.Time)
}

type projectUpdated struct {
	reconciler *reconcile.Reconciler
}

func NewProjectUpdated(r *reconcile.Reconciler) Processor {
	return &projectUpdated{reconciler: r}
}

func (p *projectUpdated) EventType() string { return models.EventProjectUpdated }

func (p *projectUpdated) Process(ctx context.Context, envelope *models.WebhookEnvelope) (models.UpsertOutcome, error) {
	snap, err := parser.DecodeProject(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	// Auto-create-on-update: an unseen id inserts rather than failing,
	// since delivery may race ahead of the Created notification.
	return p.reconciler.UpsertProject(ctx, snap, envelope.Timestamp.Time)
}

type projectDeleted struct {
	reconciler *reconcile.Reconciler
}

func NewProjectDeleted(r *reconcile.Reconciler) Processor {
	return &projectDeleted{reconciler: r}
}

func (p *projectDeleted) EventType() string { return models.EventProjectDeleted }

func (p *projectDeleted) Process(ctx context.Context, envelope *models.WebhookEnvelope) (models.UpsertOutcome, error) {
	snap, err := parser.DecodeProject(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return p.reconciler.DeleteProject(ctx, snap.ID)
}
