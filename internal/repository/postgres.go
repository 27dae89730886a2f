package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/syncforge/tracksync/internal/models"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) FindProjectByExternalID(ctx context.Context, externalID string) (*models.ProjectRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, external_id, key, name, description, placeholder,
		       external_modified_at, last_synced_at, deleted_at
		FROM projects
		WHERE external_id = $1
	`

	var rec models.ProjectRecord
	err := s.pool.QueryRow(ctx, query, externalID).Scan(
		&rec.ID, &rec.ExternalID, &rec.Key, &rec.Name, &rec.Description,
		&rec.Placeholder, &rec.ExternalModifiedAt, &rec.LastSyncedAt, &rec.DeletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &rec, nil
}

func (s *PostgresStore) InsertProject(ctx context.Context, rec *models.ProjectRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO projects (id, external_id, key, name, description, placeholder,
		                      external_modified_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.ExternalID, rec.Key, rec.Name, rec.Description,
		rec.Placeholder, rec.ExternalModifiedAt, rec.LastSyncedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// UpdateProject applies a guarded write: the row is only touched when the
// stored modification time is not newer than the incoming one, so a slower
// instance replaying an older snapshot cannot regress state.
func (s *PostgresStore) UpdateProject(ctx context.Context, rec *models.ProjectRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE projects
		SET key = $2, name = $3, description = $4, placeholder = $5,
		    external_modified_at = $6, last_synced_at = $7, deleted_at = NULL
		WHERE external_id = $1 AND external_modified_at <= $6
	`

	result, err := s.pool.Exec(ctx, query,
		rec.ExternalID, rec.Key, rec.Name, rec.Description,
		rec.Placeholder, rec.ExternalModifiedAt, rec.LastSyncedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, findErr := s.FindProjectByExternalID(ctx, rec.ExternalID); findErr != nil {
			return findErr
		}
		return ErrStaleWrite
	}

	return nil
}

func (s *PostgresStore) DeleteProject(ctx context.Context, externalID string, soft bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var query string
	if soft {
		query = `UPDATE projects SET deleted_at = NOW() WHERE external_id = $1 AND deleted_at IS NULL`
	} else {
		query = `DELETE FROM projects WHERE external_id = $1`
	}

	result, err := s.pool.Exec(ctx, query, externalID)
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (s *PostgresStore) FindIssueByExternalID(ctx context.Context, externalID string) (*models.IssueRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, external_id, key, summary, status, project_id,
		       external_modified_at, last_synced_at, deleted_at
		FROM issues
		WHERE external_id = $1
	`

	var rec models.IssueRecord
	err := s.pool.QueryRow(ctx, query, externalID).Scan(
		&rec.ID, &rec.ExternalID, &rec.Key, &rec.Summary, &rec.Status,
		&rec.ProjectID, &rec.ExternalModifiedAt, &rec.LastSyncedAt, &rec.DeletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	return &rec, nil
}

func (s *PostgresStore) InsertIssue(ctx context.Context, rec *models.IssueRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO issues (id, external_id, key, summary, status, project_id,
		                    external_modified_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.ExternalID, rec.Key, rec.Summary, rec.Status,
		rec.ProjectID, rec.ExternalModifiedAt, rec.LastSyncedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert issue: %w", err)
	}

	return nil
}

func (s *PostgresStore) UpdateIssue(ctx context.Context, rec *models.IssueRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE issues
		SET key = $2, summary = $3, status = $4,
		    project_id = COALESCE(NULLIF($5, ''), project_id),
		    external_modified_at = $6, last_synced_at = $7, deleted_at = NULL
		WHERE external_id = $1 AND external_modified_at <= $6
	`

	result, err := s.pool.Exec(ctx, query,
		rec.ExternalID, rec.Key, rec.Summary, rec.Status,
		rec.ProjectID, rec.ExternalModifiedAt, rec.LastSyncedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, findErr := s.FindIssueByExternalID(ctx, rec.ExternalID); findErr != nil {
			return findErr
		}
		return ErrStaleWrite
	}

	return nil
}

func (s *PostgresStore) DeleteIssue(ctx context.Context, externalID string, soft bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var query string
	if soft {
		query = `UPDATE issues SET deleted_at = NOW() WHERE external_id = $1 AND deleted_at IS NULL`
	} else {
		query = `DELETE FROM issues WHERE external_id = $1`
	}

	result, err := s.pool.Exec(ctx, query, externalID)
	if err != nil {
		return false, fmt.Errorf("failed to delete issue: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
