package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/logging"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/repositories"
)

// EventHandler exposes the event directory and the join/leave lifecycle. The
// handler confirms event existence against the directory before touching the
// participation service; the service itself trusts that check.
type EventHandler struct {
	Events        EventStore
	Participation ParticipationService
	Identity      IdentityDirectory
	Sessions      SessionManager
	NowFunc       func() time.Time
}

type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
}

type eventParticipationRequest struct {
	EventID string `json:"eventId"`
}

type eventView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
}

// Handle serves POST (create) and GET (list upcoming) on /api/v1/events.
func (h EventHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h EventHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartsAt.IsZero() {
		respondError(ctx, w, http.StatusBadRequest, "startsAt is required")
		return
	}

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		CreatorID:   userID,
		StartsAt:    req.StartsAt.UTC(),
		CreatedAt:   h.now(),
	}

	if err := h.Events.Create(ctx, event); err != nil {
		logger.Error("create event", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create event")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"event": viewOfEvent(event)})
}

func (h EventHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := authenticate(w, r, h.Sessions); !ok {
		return
	}

	upcoming, err := h.Events.ListUpcoming(ctx, h.now())
	if err != nil {
		logger.Error("list upcoming events", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list events")
		return
	}

	views := make([]eventView, 0, len(upcoming))
	for _, event := range upcoming {
		views = append(views, viewOfEvent(event))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"events": views})
}

// Join handles POST /api/v1/events/join. Event existence is confirmed here,
// before the participation service is invoked.
func (h EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "events.join")
	defer span.End()
	logger := logging.FromContext(ctx)

	eventID, ok := h.decodeEventID(ctx, w, r)
	if !ok {
		return
	}

	if _, err := h.Events.Get(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "event not found")
			return
		}
		logger.Error("check event existence", "error", err, "eventId", eventID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to join event")
		return
	}

	participation, err := h.Participation.Join(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, events.ErrAlreadyJoined) {
			respondError(ctx, w, http.StatusConflict, "already joined")
			return
		}
		logger.Error("join event", "error", err, "eventId", eventID, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to join event")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{
		"eventId":  participation.EventID,
		"joinedAt": participation.JoinedAt,
	})
}

// Leave handles POST /api/v1/events/leave. Leaving an event never joined
// reports 404.
func (h EventHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	eventID, ok := h.decodeEventID(ctx, w, r)
	if !ok {
		return
	}

	if err := h.Participation.Leave(ctx, userID, eventID); err != nil {
		if errors.Is(err, events.ErrNotJoined) {
			respondError(ctx, w, http.StatusNotFound, "not joined to that event")
			return
		}
		logger.Error("leave event", "error", err, "eventId", eventID, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to leave event")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "left"})
}

// Participants handles GET /api/v1/events/participants?eventId=...: usernames
// of accounts joined to the event.
func (h EventHandler) Participants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := authenticate(w, r, h.Sessions); !ok {
		return
	}

	eventID := strings.TrimSpace(r.URL.Query().Get("eventId"))
	if eventID == "" {
		respondError(ctx, w, http.StatusBadRequest, "eventId is required")
		return
	}

	if _, err := h.Events.Get(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "event not found")
			return
		}
		logger.Error("check event existence", "error", err, "eventId", eventID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list participants")
		return
	}

	ids, err := h.Participation.Participants(ctx, eventID)
	if err != nil {
		logger.Error("list participants", "error", err, "eventId", eventID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list participants")
		return
	}

	names, err := h.Identity.Usernames(ctx, ids)
	if err != nil {
		logger.Error("resolve participant usernames", "error", err, "eventId", eventID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list participants")
		return
	}

	usernames := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			usernames = append(usernames, name)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"participants": usernames})
}

// Mine handles GET /api/v1/events/mine: the events the caller has joined.
func (h EventHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	joined, err := h.Participation.EventsFor(ctx, userID)
	if err != nil {
		logger.Error("list joined events", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list joined events")
		return
	}

	views := make([]eventView, 0, len(joined))
	for _, event := range joined {
		views = append(views, viewOfEvent(event))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"events": views})
}

func (h EventHandler) decodeEventID(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	var req eventParticipationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return "", false
	}

	req.EventID = strings.TrimSpace(req.EventID)
	if req.EventID == "" {
		respondError(ctx, w, http.StatusBadRequest, "eventId is required")
		return "", false
	}

	return req.EventID, true
}

func (h EventHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func viewOfEvent(event models.Event) eventView {
	return eventView{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartsAt:    event.StartsAt,
	}
}
