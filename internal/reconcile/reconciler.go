// Package reconcile resolves incoming entity snapshots against the local
// store: identity lookup by external ref, staleness comparison, and exactly
// one insert, merge, or delete per event.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/syncforge/tracksync/internal/metrics"
	"github.com/syncforge/tracksync/internal/models"
	"github.com/syncforge/tracksync/internal/repository"
)

// ErrMissingParent is returned when an unseen issue arrives without any
// project reference to build a placeholder from.
var ErrMissingParent = errors.New("issue has no project reference and no local record")

type Reconciler struct {
	store      repository.Store
	softDelete bool
	locks      *keyedMutex
}

func New(store repository.Store, softDelete bool) *Reconciler {
	return &Reconciler{
		store:      store,
		softDelete: softDelete,
		locks:      newKeyedMutex(),
	}
}

func lockKey(kind models.EntityKind, externalID string) string {
	return string(kind) + ":" + externalID
}

// UpsertProject resolves a project snapshot. Created and Updated events both
// land here: a duplicate Created merges instead of inserting twice, and an
// Updated for an unseen id inserts (auto-create-on-update).
func (r *Reconciler) UpsertProject(ctx context.Context, snap *models.ProjectSnapshot, eventTime time.Time) (models.UpsertOutcome, error) {
	key := lockKey(models.KindProject, snap.ID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	return r.upsertProjectLocked(ctx, snap, eventTime, false)
}

func (r *Reconciler) upsertProjectLocked(ctx context.Context, snap *models.ProjectSnapshot, eventTime time.Time, placeholder bool) (models.UpsertOutcome, error) {
	modifiedAt := snap.ModifiedAt(eventTime)

	existing, err := r.store.FindProjectByExternalID(ctx, snap.ID)
	if errors.Is(err, repository.ErrNotFound) {
		rec := &models.ProjectRecord{
			ID:                 uuid.New().String(),
			ExternalID:         snap.ID,
			Key:                snap.Key,
			Name:               snap.Name,
			Description:        snap.Description,
			Placeholder:        placeholder,
			ExternalModifiedAt: modifiedAt,
			LastSyncedAt:       time.Now().UTC(),
		}
		insertErr := r.store.InsertProject(ctx, rec)
		if errors.Is(insertErr, repository.ErrConflict) {
			// Another instance inserted between our read and write.
			// Re-read and fall through to the merge path; idempotence
			// makes the retry safe.
			existing, err = r.store.FindProjectByExternalID(ctx, snap.ID)
			if err != nil {
				return "", insertErr
			}
		} else if insertErr != nil {
			return "", insertErr
		} else {
			return models.OutcomeInserted, nil
		}
	} else if err != nil {
		return "", err
	}

	if existing.ExternalModifiedAt.After(modifiedAt) {
		slog.Info("stale project event ignored",
			slog.String("external_id", snap.ID),
			slog.Time("incoming", modifiedAt),
			slog.Time("stored", existing.ExternalModifiedAt),
		)
		metrics.StaleEvents.WithLabelValues(string(models.KindProject)).Inc()
		return models.OutcomeNoOpStale, nil
	}

	merged := mergeProject(existing, snap, placeholder)
	merged.ExternalModifiedAt = modifiedAt
	merged.LastSyncedAt = time.Now().UTC()

	if err := r.store.UpdateProject(ctx, merged); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			metrics.StaleEvents.WithLabelValues(string(models.KindProject)).Inc()
			return models.OutcomeNoOpStale, nil
		}
		return "", err
	}
	return models.OutcomeMerged, nil
}

// mergeProject folds snapshot fields into the existing record. Fields the
// snapshot omits keep their stored value, so a minimal project reference on
// an issue event cannot blank out an enriched record.
func mergeProject(existing *models.ProjectRecord, snap *models.ProjectSnapshot, placeholder bool) *models.ProjectRecord {
	merged := *existing
	if snap.Key != "" {
		merged.Key = snap.Key
	}
	if snap.Name != "" {
		merged.Name = snap.Name
	}
	if snap.Description != "" {
		merged.Description = snap.Description
	}
	if !placeholder {
		// A genuine project event enriches a placeholder.
		merged.Placeholder = false
	}
	merged.DeletedAt = nil
	return &merged
}

// DeleteProject removes the local project mirror. Absent records are a
// successful no-op so duplicate deletes converge.
func (r *Reconciler) DeleteProject(ctx context.Context, externalID string) (models.UpsertOutcome, error) {
	key := lockKey(models.KindProject, externalID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	deleted, err := r.store.DeleteProject(ctx, externalID, r.softDelete)
	if err != nil {
		return "", err
	}
	if !deleted {
		return models.OutcomeNoOpAbsent, nil
	}
	return models.OutcomeDeleted, nil
}

// UpsertIssue resolves an issue snapshot. The owning project must exist
// locally first; an unknown parent is satisfied by a minimal placeholder
// record that later genuine project events enrich.
func (r *Reconciler) UpsertIssue(ctx context.Context, snap *models.IssueSnapshot, eventTime time.Time) (models.UpsertOutcome, error) {
	modifiedAt := snap.ModifiedAt(eventTime)

	var projectID string
	if snap.Project != nil && snap.Project.ID != "" {
		var err error
		projectID, err = r.ensureProject(ctx, snap.Project, eventTime)
		if err != nil {
			return "", err
		}
	}

	key := lockKey(models.KindIssue, snap.ID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.store.FindIssueByExternalID(ctx, snap.ID)
	if errors.Is(err, repository.ErrNotFound) {
		if projectID == "" {
			return "", fmt.Errorf("issue %s: %w", snap.ID, ErrMissingParent)
		}
		rec := &models.IssueRecord{
			ID:                 uuid.New().String(),
			ExternalID:         snap.ID,
			Key:                snap.Key,
			Summary:            snap.Summary,
			Status:             snap.Status,
			ProjectID:          projectID,
			ExternalModifiedAt: modifiedAt,
			LastSyncedAt:       time.Now().UTC(),
		}
		insertErr := r.store.InsertIssue(ctx, rec)
		if errors.Is(insertErr, repository.ErrConflict) {
			existing, err = r.store.FindIssueByExternalID(ctx, snap.ID)
			if err != nil {
				return "", insertErr
			}
		} else if insertErr != nil {
			return "", insertErr
		} else {
			return models.OutcomeInserted, nil
		}
	} else if err != nil {
		return "", err
	}

	if existing.ExternalModifiedAt.After(modifiedAt) {
		slog.Info("stale issue event ignored",
			slog.String("external_id", snap.ID),
			slog.Time("incoming", modifiedAt),
			slog.Time("stored", existing.ExternalModifiedAt),
		)
		metrics.StaleEvents.WithLabelValues(string(models.KindIssue)).Inc()
		return models.OutcomeNoOpStale, nil
	}

	merged := *existing
	if snap.Key != "" {
		merged.Key = snap.Key
	}
	if snap.Summary != "" {
		merged.Summary = snap.Summary
	}
	if snap.Status != "" {
		merged.Status = snap.Status
	}
	if projectID != "" {
		merged.ProjectID = projectID
	}
	merged.DeletedAt = nil
	merged.ExternalModifiedAt = modifiedAt
	merged.LastSyncedAt = time.Now().UTC()

	if err := r.store.UpdateIssue(ctx, &merged); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			metrics.StaleEvents.WithLabelValues(string(models.KindIssue)).Inc()
			return models.OutcomeNoOpStale, nil
		}
		return "", err
	}
	return models.OutcomeMerged, nil
}

// DeleteIssue removes the local issue mirror; absent is a successful no-op.
func (r *Reconciler) DeleteIssue(ctx context.Context, externalID string) (models.UpsertOutcome, error) {
	key := lockKey(models.KindIssue, externalID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	deleted, err := r.store.DeleteIssue(ctx, externalID, r.softDelete)
	if err != nil {
		return "", err
	}
	if !deleted {
		return models.OutcomeNoOpAbsent, nil
	}
	return models.OutcomeDeleted, nil
}

// ensureProject returns the local id of the referenced project, creating a
// placeholder when none exists yet. Placeholders carry a zero modification
// time so any later genuine snapshot wins the staleness comparison.
func (r *Reconciler) ensureProject(ctx context.Context, ref *models.ProjectSnapshot, eventTime time.Time) (string, error) {
	key := lockKey(models.KindProject, ref.ID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.store.FindProjectByExternalID(ctx, ref.ID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	rec := &models.ProjectRecord{
		ID:           uuid.New().String(),
		ExternalID:   ref.ID,
		Key:          ref.Key,
		Name:         ref.Name,
		Placeholder:  true,
		LastSyncedAt: time.Now().UTC(),
	}
	if err := r.store.InsertProject(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			existing, findErr := r.store.FindProjectByExternalID(ctx, ref.ID)
			if findErr != nil {
				return "", err
			}
			return existing.ID, nil
		}
		return "", err
	}

	slog.Info("created placeholder project for orphan issue",
		slog.String("project_external_id", ref.ID),
	)
	metrics.PlaceholderProjects.Inc()
	return rec.ID, nil
}
