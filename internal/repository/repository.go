package repository

import (
	"context"
	"errors"

	"github.com/syncforge/tracksync/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the external id.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned on a store-level constraint violation not
	// explainable by the staleness guard. Safe to retry: processing is
	// idempotent.
	ErrConflict = errors.New("persistence conflict")

	// ErrStaleWrite is returned when a guarded update matched the record
	// but the stored modification time was newer than the write's.
	ErrStaleWrite = errors.New("stale write rejected")
)

// Store is the persistent mirror of source-system projects and issues.
// All operations are atomic at single-record granularity. Finds return
// soft-deleted records (DeletedAt set) so callers can resurrect them.
type Store interface {
	FindProjectByExternalID(ctx context.Context, externalID string) (*models.ProjectRecord, error)
	InsertProject(ctx context.Context, rec *models.ProjectRecord) error
	UpdateProject(ctx context.Context, rec *models.ProjectRecord) error
	DeleteProject(ctx context.Context, externalID string, soft bool) (bool, error)

	FindIssueByExternalID(ctx context.Context, externalID string) (*models.IssueRecord, error)
	InsertIssue(ctx context.Context, rec *models.IssueRecord) error
	UpdateIssue(ctx context.Context, rec *models.IssueRecord) error
	DeleteIssue(ctx context.Context, externalID string, soft bool) (bool, error)

	Ping(ctx context.Context) error
	Close()
}
