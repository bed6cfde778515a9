package events

import (
	"context"
	"errors"
	"time"

	"github.com/gatherly/backend/internal/models"
)

// ParticipationStore persists join records between accounts and events. The
// (event, user) pair is unique at the storage level, so concurrent identical
// joins resolve to exactly one record and one ErrAlreadyJoined.
type ParticipationStore interface {
	Add(ctx context.Context, participation models.Participation) error
	Remove(ctx context.Context, eventID, userID string) error
	ParticipantIDs(ctx context.Context, eventID string) ([]string, error)
	EventsForUser(ctx context.Context, userID string) ([]models.Event, error)
}

// Participation manages event membership. Callers are responsible for
// confirming the event exists before Join; the store only guards the pair
// uniqueness and lifecycle.
type Participation struct {
	store   ParticipationStore
	nowFunc func() time.Time
}

// NewParticipation constructs a Participation service over the provided store.
func NewParticipation(store ParticipationStore) *Participation {
	if store == nil {
		panic("events: participation store must not be nil")
	}
	return &Participation{store: store, nowFunc: func() time.Time { return time.Now().UTC() }}
}

// Join records the user's participation in the event. Joining an event twice
// fails with ErrAlreadyJoined.
func (p *Participation) Join(ctx context.Context, userID, eventID string) (models.Participation, error) {
	if userID == "" || eventID == "" {
		return models.Participation{}, errors.New("events: user and event ids must be provided")
	}

	participation := models.Participation{
		EventID:  eventID,
		UserID:   userID,
		JoinedAt: p.nowFunc(),
	}

	if err := p.store.Add(ctx, participation); err != nil {
		return models.Participation{}, err
	}

	return participation, nil
}

// Leave removes the user's participation record. Leaving an event never
// joined fails with ErrNotJoined rather than succeeding silently.
func (p *Participation) Leave(ctx context.Context, userID, eventID string) error {
	return p.store.Remove(ctx, eventID, userID)
}

// Participants returns the account ids joined to the event, unordered.
func (p *Participation) Participants(ctx context.Context, eventID string) ([]string, error) {
	return p.store.ParticipantIDs(ctx, eventID)
}

// EventsFor returns the events the user has joined.
func (p *Participation) EventsFor(ctx context.Context, userID string) ([]models.Event, error) {
	return p.store.EventsForUser(ctx, userID)
}
