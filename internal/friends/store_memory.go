package friends

import (
	"context"
	"sync"
	"time"

	"github.com/gatherly/backend/internal/models"
)

// NewMemoryStore returns a Store backed by in-memory maps.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:    make(map[string]models.FriendRequest),
		friendships: make(map[[2]string]time.Time),
	}
}

// MemoryStore implements Store for tests and local development.
type MemoryStore struct {
	mu          sync.Mutex
	requests    map[string]models.FriendRequest
	friendships map[[2]string]time.Time
}

func pairKey(a, b string) [2]string {
	a, b = OrderPair(a, b)
	return [2]string{a, b}
}

// CreateRequest stores a pending request, rejecting duplicates for the pair.
func (s *MemoryStore) CreateRequest(_ context.Context, request models.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(request.Requester, request.Receiver)
	for _, existing := range s.requests {
		if pairKey(existing.Requester, existing.Receiver) == key {
			return ErrDuplicateRequest
		}
	}
	s.requests[request.ID] = request
	return nil
}

// PendingBetween finds the pending request linking the pair in either direction.
func (s *MemoryStore) PendingBetween(_ context.Context, a, b string) (models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(a, b)
	for _, request := range s.requests {
		if pairKey(request.Requester, request.Receiver) == key {
			return request, nil
		}
	}
	return models.FriendRequest{}, ErrRequestNotFound
}

// DeleteRequest removes the pending request sent by requesterID to receiverID.
func (s *MemoryStore) DeleteRequest(_ context.Context, requesterID, receiverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteRequestLocked(requesterID, receiverID)
}

// PromoteRequest replaces the pending request with a friendship edge.
func (s *MemoryStore) PromoteRequest(_ context.Context, requesterID, receiverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteRequestLocked(requesterID, receiverID); err != nil {
		return err
	}

	key := pairKey(requesterID, receiverID)
	if _, ok := s.friendships[key]; ok {
		return ErrAlreadyFriends
	}
	s.friendships[key] = time.Now().UTC()
	return nil
}

// FriendshipExists reports whether the pair shares a friendship edge.
func (s *MemoryStore) FriendshipExists(_ context.Context, a, b string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.friendships[pairKey(a, b)]
	return ok, nil
}

// DeleteFriendship removes the friendship edge between the pair.
func (s *MemoryStore) DeleteFriendship(_ context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(a, b)
	if _, ok := s.friendships[key]; !ok {
		return ErrFriendshipNotFound
	}
	delete(s.friendships, key)
	return nil
}

// RequestsForUser returns pending requests involving the user.
func (s *MemoryStore) RequestsForUser(_ context.Context, userID string) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.Requester == userID || request.Receiver == userID {
			out = append(out, request)
		}
	}
	return out, nil
}

// FriendIDs returns the ids friended to the user.
func (s *MemoryStore) FriendIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for key := range s.friendships {
		switch userID {
		case key[0]:
			out = append(out, key[1])
		case key[1]:
			out = append(out, key[0])
		}
	}
	return out, nil
}

func (s *MemoryStore) deleteRequestLocked(requesterID, receiverID string) error {
	for id, request := range s.requests {
		if request.Requester == requesterID && request.Receiver == receiverID {
			delete(s.requests, id)
			return nil
		}
	}
	return ErrRequestNotFound
}

var _ Store = (*MemoryStore)(nil)
