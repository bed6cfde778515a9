package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gatherly/backend/internal/identity"
	"github.com/gatherly/backend/internal/logging"
	"github.com/gatherly/backend/internal/verification"
)

// VerificationHandler exposes identity-verification submission and review.
type VerificationHandler struct {
	Verification VerificationService
	Identity     IdentityDirectory
	Sessions     SessionManager
	Limiter      RateLimiter
}

const maxDocumentBytes = 10 << 20 // 10 MiB

type reviewRequest struct {
	Username string `json:"username"`
	Action   string `json:"action"`
}

// Handle serves POST (submit document) and GET (own status) on /api/v1/verification.
func (h VerificationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.status(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h VerificationHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "verification") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many submissions, slow down")
		return
	}

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	document := http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	result, err := h.Verification.Submit(ctx, userID, document)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrAlreadyVerified):
			respondError(ctx, w, http.StatusConflict, "account already verified")
		case errors.Is(err, verification.ErrReviewPending):
			respondError(ctx, w, http.StatusConflict, "a submission is already awaiting review")
		default:
			logger.Error("submit verification document", "error", err, "userId", userID)
			respondError(ctx, w, http.StatusInternalServerError, "failed to submit document")
		}
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, map[string]any{
		"status":      result.Status,
		"submittedAt": result.SubmittedAt,
	})
}

func (h VerificationHandler) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	record, err := h.Verification.Status(ctx, userID)
	if err != nil {
		if errors.Is(err, verification.ErrNoSubmission) {
			respondJSON(ctx, w, http.StatusOK, map[string]any{"status": "unverified"})
			return
		}
		logger.Error("load verification status", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load verification status")
		return
	}

	payload := map[string]any{
		"status":      record.Status,
		"submittedAt": record.SubmittedAt,
	}
	if record.ReviewedAt != nil {
		payload["reviewedAt"] = record.ReviewedAt
	}

	respondJSON(ctx, w, http.StatusOK, payload)
}

// Review handles POST /api/v1/verification/review: approve or reject the
// named account's pending submission.
func (h VerificationHandler) Review(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := authenticate(w, r, h.Sessions); !ok {
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		respondError(ctx, w, http.StatusBadRequest, "action must be approve or reject")
		return
	}

	subjectID, err := h.Identity.Resolve(ctx, req.Username)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownUsername) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		logger.Error("resolve username", "error", err, "username", req.Username)
		respondError(ctx, w, http.StatusInternalServerError, "unable to resolve username")
		return
	}

	if err := h.Verification.Review(ctx, subjectID, req.Action == "approve"); err != nil {
		switch {
		case errors.Is(err, verification.ErrNoSubmission):
			respondError(ctx, w, http.StatusNotFound, "no submission to review")
		case errors.Is(err, verification.ErrReviewClosed):
			respondError(ctx, w, http.StatusConflict, "submission already reviewed")
		default:
			logger.Error("review verification", "error", err, "username", req.Username)
			respondError(ctx, w, http.StatusInternalServerError, "failed to review submission")
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": req.Action + "d"})
}
