package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gatherly/backend/internal/friends"
	"github.com/gatherly/backend/internal/identity"
	"github.com/gatherly/backend/internal/logging"
	"github.com/gatherly/backend/internal/models"
)

// FriendHandler exposes the friend-request lifecycle. Inbound payloads name
// counterparties by username; every username is resolved to an account id
// through the identity directory before the friend service is invoked.
type FriendHandler struct {
	Friends  FriendService
	Identity IdentityDirectory
	Sessions SessionManager
}

const (
	friendActionAccept = "accept"
	friendActionReject = "reject"
)

type friendTargetRequest struct {
	Username string `json:"username"`
}

type respondFriendRequest struct {
	Username string `json:"username"`
	Action   string `json:"action"`
}

type friendRequestView struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Status    string `json:"status"`
	Incoming  bool   `json:"incoming"`
	CreatedAt string `json:"createdAt"`
}

// Request handles POST (send) and DELETE (cancel) on /api/v1/friends/request.
func (h FriendHandler) Request(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.send(w, r)
	case http.MethodDelete:
		h.cancel(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h FriendHandler) send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	request, err := h.Friends.SendRequest(ctx, userID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, friends.ErrSelfRequest):
			respondError(ctx, w, http.StatusBadRequest, "cannot send a friend request to yourself")
		case errors.Is(err, friends.ErrAlreadyFriends):
			respondError(ctx, w, http.StatusConflict, "already friends")
		case errors.Is(err, friends.ErrDuplicateRequest):
			respondError(ctx, w, http.StatusConflict, "a pending request already exists")
		default:
			logger.Error("send friend request", "error", err, "userId", userID)
			respondError(ctx, w, http.StatusInternalServerError, "failed to send friend request")
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"request": h.requestView(ctx, request, userID)})
}

func (h FriendHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	if err := h.Friends.CancelRequest(ctx, userID, targetID); err != nil {
		if errors.Is(err, friends.ErrRequestNotFound) {
			respondError(ctx, w, http.StatusNotFound, "no pending request to cancel")
			return
		}
		logger.Error("cancel friend request", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to cancel friend request")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Respond handles POST /api/v1/friends/respond: the authenticated receiver
// accepts or rejects a pending request from the named sender.
func (h FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "friends.respond")
	defer span.End()
	logger := logging.FromContext(ctx)

	var req respondFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Action != friendActionAccept && req.Action != friendActionReject {
		respondError(ctx, w, http.StatusBadRequest, "action must be accept or reject")
		return
	}

	senderID, err := h.Identity.Resolve(ctx, req.Username)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownUsername) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		logger.Error("resolve username", "error", err, "username", req.Username)
		respondError(ctx, w, http.StatusInternalServerError, "unable to resolve username")
		return
	}

	if req.Action == friendActionAccept {
		err = h.Friends.AcceptRequest(ctx, senderID, userID)
	} else {
		err = h.Friends.RejectRequest(ctx, senderID, userID)
	}
	if err != nil {
		if errors.Is(err, friends.ErrRequestNotFound) {
			respondError(ctx, w, http.StatusNotFound, "no pending request from that user")
			return
		}
		logger.Error("respond to friend request", "error", err, "action", req.Action, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to respond to friend request")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": req.Action + "ed"})
}

// Remove handles POST /api/v1/friends/remove. Removing an absent friendship
// reports 404 rather than succeeding silently.
func (h FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
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

	targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	if err := h.Friends.RemoveFriend(ctx, userID, targetID); err != nil {
		if errors.Is(err, friends.ErrFriendshipNotFound) {
			respondError(ctx, w, http.StatusNotFound, "not friends with that user")
			return
		}
		logger.Error("remove friend", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to remove friend")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}

// List handles GET /api/v1/friends: usernames of the caller's friends.
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
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

	ids, err := h.Friends.Friends(ctx, userID)
	if err != nil {
		logger.Error("list friends", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list friends")
		return
	}

	names, err := h.Identity.Usernames(ctx, ids)
	if err != nil {
		logger.Error("resolve friend usernames", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list friends")
		return
	}

	usernames := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			usernames = append(usernames, name)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"friends": usernames})
}

// Requests handles GET /api/v1/friends/requests: pending requests involving
// the caller, with ids mapped back to usernames for display.
func (h FriendHandler) Requests(w http.ResponseWriter, r *http.Request) {
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

	requests, err := h.Friends.Requests(ctx, userID)
	if err != nil {
		logger.Error("list friend requests", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list friend requests")
		return
	}

	views := make([]friendRequestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, h.requestView(ctx, request, userID))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"requests": views})
}

func (h FriendHandler) requestView(ctx context.Context, request models.FriendRequest, viewerID string) friendRequestView {
	names, err := h.Identity.Usernames(ctx, []string{request.Requester, request.Receiver})
	if err != nil {
		logging.FromContext(ctx).Warn("resolve request usernames", "error", err, "requestId", request.ID)
		names = map[string]string{}
	}

	return friendRequestView{
		ID:        request.ID,
		From:      names[request.Requester],
		To:        names[request.Receiver],
		Status:    request.Status,
		Incoming:  request.Receiver == viewerID,
		CreatedAt: request.CreatedAt.Format(time.RFC3339),
	}
}

func (h FriendHandler) resolveTarget(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()

	var req friendTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return "", false
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return "", false
	}

	id, err := h.Identity.Resolve(ctx, req.Username)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownUsername) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return "", false
		}
		logging.FromContext(ctx).Error("resolve username", "error", err, "username", req.Username)
		respondError(ctx, w, http.StatusInternalServerError, "unable to resolve username")
		return "", false
	}

	return id, true
}
