package events

import (
	"context"
	"sync"

	"github.com/gatherly/backend/internal/models"
)

// NewMemoryStore returns a ParticipationStore backed by in-memory maps. It
// also keeps an event directory so EventsForUser can return full records.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:         make(map[string]models.Event),
		participations: make(map[[2]string]models.Participation),
	}
}

// MemoryStore implements ParticipationStore for tests and local development.
type MemoryStore struct {
	mu             sync.Mutex
	events         map[string]models.Event
	participations map[[2]string]models.Participation
}

// PutEvent registers an event so EventsForUser can resolve it.
func (s *MemoryStore) PutEvent(event models.Event) {
	s.mu.Lock()
	s.events[event.ID] = event
	s.mu.Unlock()
}

// Add stores a participation record, rejecting duplicates for the pair.
func (s *MemoryStore) Add(_ context.Context, participation models.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{participation.EventID, participation.UserID}
	if _, ok := s.participations[key]; ok {
		return ErrAlreadyJoined
	}
	s.participations[key] = participation
	return nil
}

// Remove deletes the participation record for the pair.
func (s *MemoryStore) Remove(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{eventID, userID}
	if _, ok := s.participations[key]; !ok {
		return ErrNotJoined
	}
	delete(s.participations, key)
	return nil
}

// ParticipantIDs returns the user ids joined to the event.
func (s *MemoryStore) ParticipantIDs(_ context.Context, eventID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for key := range s.participations {
		if key[0] == eventID {
			out = append(out, key[1])
		}
	}
	return out, nil
}

// EventsForUser returns the events the user has joined.
func (s *MemoryStore) EventsForUser(_ context.Context, userID string) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Event
	for key := range s.participations {
		if key[1] != userID {
			continue
		}
		if event, ok := s.events[key[0]]; ok {
			out = append(out, event)
		} else {
			out = append(out, models.Event{ID: key[0]})
		}
	}
	return out, nil
}

var _ ParticipationStore = (*MemoryStore)(nil)
