package repository

import (
	"context"
	"sync"
	"time"

	"github.com/syncforge/tracksync/internal/models"
)

// InMemoryStore mirrors the Store contract without a database. Used by the
// memory driver and by tests.
type InMemoryStore struct {
	projects map[string]*models.ProjectRecord
	issues   map[string]*models.IssueRecord
	mu       sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		projects: make(map[string]*models.ProjectRecord),
		issues:   make(map[string]*models.IssueRecord),
	}
}

func (s *InMemoryStore) FindProjectByExternalID(ctx context.Context, externalID string) (*models.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.projects[externalID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *InMemoryStore) InsertProject(ctx context.Context, rec *models.ProjectRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[rec.ExternalID]; exists {
		return ErrConflict
	}
	copied := *rec
	s.projects[rec.ExternalID] = &copied
	return nil
}

func (s *InMemoryStore) UpdateProject(ctx context.Context, rec *models.ProjectRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.projects[rec.ExternalID]
	if !exists {
		return ErrNotFound
	}
	if existing.ExternalModifiedAt.After(rec.ExternalModifiedAt) {
		return ErrStaleWrite
	}
	copied := *rec
	copied.ID = existing.ID
	s.projects[rec.ExternalID] = &copied
	return nil
}

func (s *InMemoryStore) DeleteProject(ctx context.Context, externalID string, soft bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.projects[externalID]
	if !exists {
		return false, nil
	}
	if soft {
		if rec.DeletedAt != nil {
			return false, nil
		}
		now := time.Now().UTC()
		rec.DeletedAt = &now
		return true, nil
	}
	delete(s.projects, externalID)
	// Hard delete cascades to owned issues, matching the FK constraint.
	for id, issue := range s.issues {
		if issue.ProjectID == rec.ID {
			delete(s.issues, id)
		}
	}
	return true, nil
}

func (s *InMemoryStore) FindIssueByExternalID(ctx context.Context, externalID string) (*models.IssueRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.issues[externalID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *InMemoryStore) InsertIssue(ctx context.Context, rec *models.IssueRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.issues[rec.ExternalID]; exists {
		return ErrConflict
	}
	copied := *rec
	s.issues[rec.ExternalID] = &copied
	return nil
}

func (s *InMemoryStore) UpdateIssue(ctx context.Context, rec *models.IssueRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.issues[rec.ExternalID]
	if !exists {
		return ErrNotFound
	}
	if existing.ExternalModifiedAt.After(rec.ExternalModifiedAt) {
		return ErrStaleWrite
	}
	copied := *rec
	copied.ID = existing.ID
	if copied.ProjectID == "" {
		copied.ProjectID = existing.ProjectID
	}
	s.issues[rec.ExternalID] = &copied
	return nil
}

func (s *InMemoryStore) DeleteIssue(ctx context.Context, externalID string, soft bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.issues[externalID]
	if !exists {
		return false, nil
	}
	if soft {
		if rec.DeletedAt != nil {
			return false, nil
		}
		now := time.Now().UTC()
		rec.DeletedAt = &now
		return true, nil
	}
	delete(s.issues, externalID)
	return true, nil
}

func (s *InMemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *InMemoryStore) Close() {}
