package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/logging"
	"github.com/gatherly/backend/internal/models"
)

// PostHandler exposes post publishing and the feed. Publishing requires a
// verified identity: the handler consults the verification service before
// the post store is touched, keeping the cross-module rule out of both
// stores.
type PostHandler struct {
	Posts        PostStore
	Verification VerificationService
	Identity     IdentityDirectory
	Sessions     SessionManager
	NowFunc      func() time.Time
}

type createPostRequest struct {
	Body string `json:"body"`
}

type postView struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

const maxPostLength = 4000

// Create handles POST /api/v1/posts.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "posts.create")
	defer span.End()
	logger := logging.FromContext(ctx)

	verified, err := h.Verification.IsVerified(ctx, userID)
	if err != nil {
		logger.Error("check verification", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create post")
		return
	}
	if !verified {
		respondError(ctx, w, http.StatusForbidden, "identity verification required to post")
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		respondError(ctx, w, http.StatusBadRequest, "body is required")
		return
	}
	if len(req.Body) > maxPostLength {
		respondError(ctx, w, http.StatusBadRequest, "body exceeds maximum length")
		return
	}

	post := models.Post{
		ID:        uuid.NewString(),
		AuthorID:  userID,
		Body:      req.Body,
		CreatedAt: h.now(),
	}

	if err := h.Posts.Create(ctx, post); err != nil {
		logger.Error("create post", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create post")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"post": postView{
		ID:        post.ID,
		Body:      post.Body,
		CreatedAt: post.CreatedAt,
	}})
}

// Feed handles GET /api/v1/posts/feed: reverse chronological posts from the
// caller and their friends, with author ids mapped back to usernames.
func (h PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
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

	posts, err := h.Posts.ListFeed(ctx, userID)
	if err != nil {
		logger.Error("list feed", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load feed")
		return
	}

	ids := make([]string, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for _, post := range posts {
		if _, ok := seen[post.AuthorID]; ok {
			continue
		}
		seen[post.AuthorID] = struct{}{}
		ids = append(ids, post.AuthorID)
	}

	names, err := h.Identity.Usernames(ctx, ids)
	if err != nil {
		logger.Error("resolve author usernames", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load feed")
		return
	}

	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, postView{
			ID:        post.ID,
			Author:    names[post.AuthorID],
			Body:      post.Body,
			CreatedAt: post.CreatedAt,
		})
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"posts": views})
}

func (h PostHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
