package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/syncforge/tracksync/internal/models"
	"github.com/syncforge/tracksync/internal/parser"
	"github.com/syncforge/tracksync/internal/reconcile"
)

type issueCreated struct {
	reconciler *reconcile.Reconciler
}

func NewIssueCreated(r *reconcile.Reconciler) Processor {
	return &issueCreated{reconciler: r}
}

func (p *issueCreated) EventType() string { return models.EventIssueCreated }

func (p *issueCreated) Process(ctx context.Context, envelope *models.WebhookEnvelope) (models.UpsertOutcome, error) {
	snap, err := parser.DecodeIssue(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if snap.Summary == "" {
		return "", fmt.Errorf("%w: issue_created requires summary", ErrValidation)
	}
	if snap.Project == nil || snap.Project.ID == "" {
		return "", fmt.Errorf("%w: issue_created requires project reference", ErrValidation)
	}
	return p.reconciler.UpsertIssue(ctx, snap, envelope.Timestamp.Time)
}

type issueUpdated struct {
	reconciler *reconcile.Reconciler
}

func NewIssueUpdated(r *reconcile.Reconciler) Processor {
	return &issueUpdated{reconciler: r}
}

func (p *issueUpdated) EventType() string { return models.EventIssueUpdated }

func (p *issueUpdated) Process(ctx context.Context, envelope *models.WebhookEnvelope) (models.UpsertOutcome, error) {
	snap, err := parser.DecodeIssue(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	outcome, err := p.reconciler.UpsertIssue(ctx, snap, envelope.Timestamp.Time)
	if errors.Is(err, reconcile.ErrMissingParent) {
		// Auto-create-on-update needs a parent to link against; without
		// any project reference there is nothing to build a placeholder
		// from.
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return outcome, err
}

type issueDeleted struct {
	reconciler *reconcile.Reconciler
}

func NewIssueDeleted(r *reconcile.Reconciler) Processor {
	return &issueDeleted{reconciler: r}
}

func (p *issueDeleted) EventType() string { return models.EventIssueDeleted }

func (p *issueDeleted) Process(ctx context.Context, envelope *models.WebhookEnvelope) (models.UpsertOutcome, error) {
	snap, err := parser.DecodeIssue(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return p.reconciler.DeleteIssue(ctx, snap.ID)
}
