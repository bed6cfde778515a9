package verification

import (
	"context"
	"sync"
	"time"

	"github.com/gatherly/backend/internal/models"
)

// NewMemoryStore returns a Store backed by an in-memory map.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.Verification)}
}

// MemoryStore implements Store for tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.Verification
}

// Upsert stores or replaces the account's verification record.
func (s *MemoryStore) Upsert(_ context.Context, verification models.Verification) error {
	s.mu.Lock()
	s.records[verification.UserID] = verification
	s.mu.Unlock()
	return nil
}

// Get retrieves the account's verification record.
func (s *MemoryStore) Get(_ context.Context, userID string) (models.Verification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	verification, ok := s.records[userID]
	if !ok {
		return models.Verification{}, ErrNoSubmission
	}
	return verification, nil
}

// SetStatus updates the review outcome for the account.
func (s *MemoryStore) SetStatus(_ context.Context, userID, status string, reviewedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	verification, ok := s.records[userID]
	if !ok {
		return ErrNoSubmission
	}
	verification.Status = status
	verification.ReviewedAt = &reviewedAt
	s.records[userID] = verification
	return nil
}

var _ Store = (*MemoryStore)(nil)
