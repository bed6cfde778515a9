package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/logging"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, map[string]string{"error": message})
}

// authenticate resolves the request's bearer access token to a user id. On
// failure it writes the 401 response and returns false.
func authenticate(w http.ResponseWriter, r *http.Request, sessions SessionManager) (string, bool) {
	ctx := r.Context()

	if sessions == nil {
		logging.FromContext(ctx).Error("session manager unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "session service unavailable")
		return "", false
	}

	token := bearerToken(r)
	if token == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return "", false
	}

	userID, err := sessions.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) || errors.Is(err, auth.ErrAccessTokenExpired) {
			respondError(ctx, w, http.StatusUnauthorized, "invalid or expired session")
			return "", false
		}
		logging.FromContext(ctx).Error("authenticate bearer token", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to authenticate request")
		return "", false
	}

	return userID, true
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
