package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatherly/backend/internal/models"
)

func newTestParticipation() (*Participation, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewParticipation(store)
	now := time.Date(2024, time.June, 1, 18, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }
	return svc, store
}

func TestJoinRecordsParticipation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestParticipation()

	participation, err := svc.Join(ctx, "user-5", "event-10")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if participation.UserID != "user-5" || participation.EventID != "event-10" {
		t.Fatalf("unexpected participation: %+v", participation)
	}
	if participation.JoinedAt.IsZero() {
		t.Fatal("expected joinedAt to be set")
	}

	ids, err := svc.Participants(ctx, "event-10")
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	if len(ids) != 1 || ids[0] != "user-5" {
		t.Fatalf("expected user-5 in participants, got %v", ids)
	}
}

func TestJoinTwiceFails(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestParticipation()

	if _, err := svc.Join(ctx, "user-5", "event-10"); err != nil {
		t.Fatalf("join: %v", err)
	}

	// The duplicate policy is an explicit error, consistently.
	for i := 0; i < 2; i++ {
		if _, err := svc.Join(ctx, "user-5", "event-10"); !errors.Is(err, ErrAlreadyJoined) {
			t.Fatalf("expected ErrAlreadyJoined on attempt %d, got %v", i+1, err)
		}
	}
}

func TestLeaveRemovesParticipation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestParticipation()

	if _, err := svc.Join(ctx, "user-5", "event-10"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.Leave(ctx, "user-5", "event-10"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	ids, err := svc.Participants(ctx, "event-10")
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty participants after leave, got %v", ids)
	}
}

func TestLeaveWithoutJoinFails(t *testing.T) {
	svc, _ := newTestParticipation()

	if err := svc.Leave(context.Background(), "user-5", "event-10"); !errors.Is(err, ErrNotJoined) {
		t.Fatalf("expected ErrNotJoined, got %v", err)
	}
}

func TestEventsForUser(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestParticipation()

	store.PutEvent(models.Event{ID: "event-10", Title: "Picnic"})
	store.PutEvent(models.Event{ID: "event-11", Title: "Hike"})

	if _, err := svc.Join(ctx, "user-5", "event-10"); err != nil {
		t.Fatalf("join: %v", err)
	}

	joined, err := svc.EventsFor(ctx, "user-5")
	if err != nil {
		t.Fatalf("events for user: %v", err)
	}
	if len(joined) != 1 || joined[0].ID != "event-10" {
		t.Fatalf("expected only event-10, got %+v", joined)
	}

	if err := svc.Leave(ctx, "user-5", "event-10"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	joined, err = svc.EventsFor(ctx, "user-5")
	if err != nil {
		t.Fatalf("events for user after leave: %v", err)
	}
	if len(joined) != 0 {
		t.Fatalf("expected no events after leave, got %+v", joined)
	}
}
