package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/repositories"
)

type inMemoryEventStore struct {
	events map[string]models.Event
}

func newInMemoryEventStore() *inMemoryEventStore {
	return &inMemoryEventStore{events: make(map[string]models.Event)}
}

func (s *inMemoryEventStore) Create(_ context.Context, event models.Event) error {
	s.events[event.ID] = event
	return nil
}

func (s *inMemoryEventStore) Get(_ context.Context, eventID string) (models.Event, error) {
	event, ok := s.events[eventID]
	if !ok {
		return models.Event{}, repositories.ErrNotFound
	}
	return event, nil
}

func (s *inMemoryEventStore) ListUpcoming(_ context.Context, after time.Time) ([]models.Event, error) {
	var out []models.Event
	for _, event := range s.events {
		if event.StartsAt.After(after) {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func newEventFixture() (EventHandler, *inMemoryEventStore, *events.MemoryStore) {
	store := newInMemoryEventStore()
	participations := events.NewMemoryStore()
	handler := EventHandler{
		Events:        store,
		Participation: events.NewParticipation(participations),
		Identity:      newStubDirectory(map[string]string{"alice": "user-1", "bob": "user-2"}),
		Sessions:      newStubSessions(map[string]string{"tok-alice": "user-1", "tok-bob": "user-2"}),
	}
	return handler, store, participations
}

func joinEvent(t *testing.T, handler EventHandler, token, eventID string) *httptest.ResponseRecorder {
	t.Helper()
	body := []byte(`{"eventId":"` + eventID + `"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/events/join", bytes.NewReader(body)), token)
	rec := httptest.NewRecorder()
	handler.Join(rec, req)
	return rec
}

func TestEventHandlerCreate(t *testing.T) {
	handler, store, _ := newEventFixture()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	handler.NowFunc = func() time.Time { return now }

	body := []byte(`{"title":"Picnic","description":"In the park","location":"Riverside","startsAt":"2026-04-01T10:00:00Z"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body)), "tok-alice")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}

	var resp struct {
		Event eventView `json:"event"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Event.Title != "Picnic" || resp.Event.ID == "" {
		t.Fatalf("unexpected event view: %+v", resp.Event)
	}

	stored, err := store.Get(context.Background(), resp.Event.ID)
	if err != nil {
		t.Fatalf("expected event to be stored: %v", err)
	}
	if stored.CreatorID != "user-1" {
		t.Fatalf("expected creator user-1 got %q", stored.CreatorID)
	}
	if !stored.CreatedAt.Equal(now) {
		t.Fatal("expected createdAt to use NowFunc")
	}
}

func TestEventHandlerCreateValidation(t *testing.T) {
	handler, _, _ := newEventFixture()

	cases := []struct {
		name string
		body string
	}{
		{"badJSON", `{`},
		{"missingTitle", `{"title":"","startsAt":"2026-04-01T10:00:00Z"}`},
		{"missingStartsAt", `{"title":"Picnic"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader([]byte(tc.body))), "tok-alice")
			rec := httptest.NewRecorder()
			handler.Handle(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected bad request got %d: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestEventHandlerListUpcoming(t *testing.T) {
	handler, store, _ := newEventFixture()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	handler.NowFunc = func() time.Time { return now }

	store.events["evt-past"] = models.Event{ID: "evt-past", Title: "Past", StartsAt: now.Add(-time.Hour)}
	store.events["evt-next"] = models.Event{ID: "evt-next", Title: "Next", StartsAt: now.Add(time.Hour)}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/events", nil), "tok-alice")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Events []eventView `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].ID != "evt-next" {
		t.Fatalf("expected only upcoming event, got %+v", resp.Events)
	}
}

func TestEventHandlerJoin(t *testing.T) {
	handler, store, _ := newEventFixture()
	store.events["evt-1"] = models.Event{ID: "evt-1", Title: "Picnic", StartsAt: time.Now().Add(time.Hour)}

	rec := joinEvent(t, handler, "tok-alice", "evt-1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}

	if rec := joinEvent(t, handler, "tok-alice", "evt-1"); rec.Code != http.StatusConflict {
		t.Fatalf("expected conflict on duplicate join got %d", rec.Code)
	}
}

func TestEventHandlerJoinUnknownEvent(t *testing.T) {
	handler, _, _ := newEventFixture()

	if rec := joinEvent(t, handler, "tok-alice", "evt-missing"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected not found got %d", rec.Code)
	}
}

func TestEventHandlerLeave(t *testing.T) {
	handler, store, _ := newEventFixture()
	store.events["evt-1"] = models.Event{ID: "evt-1", StartsAt: time.Now().Add(time.Hour)}
	joinEvent(t, handler, "tok-alice", "evt-1")

	body := []byte(`{"eventId":"evt-1"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/events/leave", bytes.NewReader(body)), "tok-alice")
	rec := httptest.NewRecorder()
	handler.Leave(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}

	// Leaving again reports the missing participation.
	req = asUser(httptest.NewRequest(http.MethodPost, "/api/v1/events/leave", bytes.NewReader(body)), "tok-alice")
	rec = httptest.NewRecorder()
	handler.Leave(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected not found got %d", rec.Code)
	}
}

func TestEventHandlerParticipants(t *testing.T) {
	handler, store, _ := newEventFixture()
	store.events["evt-1"] = models.Event{ID: "evt-1", StartsAt: time.Now().Add(time.Hour)}
	joinEvent(t, handler, "tok-alice", "evt-1")
	joinEvent(t, handler, "tok-bob", "evt-1")

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/events/participants?eventId=evt-1", nil), "tok-alice")
	rec := httptest.NewRecorder()
	handler.Participants(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Participants []string `json:"participants"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	sort.Strings(resp.Participants)
	if len(resp.Participants) != 2 || resp.Participants[0] != "alice" || resp.Participants[1] != "bob" {
		t.Fatalf("unexpected participants: %v", resp.Participants)
	}
}

func TestEventHandlerParticipantsUnknownEvent(t *testing.T) {
	handler, _, _ := newEventFixture()

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/events/participants?eventId=evt-missing", nil), "tok-alice")
	rec := httptest.NewRecorder()
	handler.Participants(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected not found got %d", rec.Code)
	}
}

func TestEventHandlerMine(t *testing.T) {
	handler, store, participations := newEventFixture()
	event := models.Event{ID: "evt-1", Title: "Picnic", StartsAt: time.Now().Add(time.Hour)}
	store.events["evt-1"] = event
	participations.PutEvent(event)
	joinEvent(t, handler, "tok-alice", "evt-1")

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/events/mine", nil), "tok-alice")
	rec := httptest.NewRecorder()
	handler.Mine(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Events []eventView `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Title != "Picnic" {
		t.Fatalf("unexpected joined events: %+v", resp.Events)
	}
}

func TestEventHandlerUnauthenticated(t *testing.T) {
	handler, _, _ := newEventFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized got %d", rec.Code)
	}
}
