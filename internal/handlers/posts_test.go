package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/verification"
)

type inMemoryPostStore struct {
	posts   []models.Post
	friends map[string][]string
}

func newInMemoryPostStore() *inMemoryPostStore {
	return &inMemoryPostStore{friends: make(map[string][]string)}
}

func (s *inMemoryPostStore) Create(_ context.Context, post models.Post) error {
	s.posts = append(s.posts, post)
	return nil
}

func (s *inMemoryPostStore) ListFeed(_ context.Context, userID string) ([]models.Post, error) {
	visible := map[string]struct{}{userID: {}}
	for _, id := range s.friends[userID] {
		visible[id] = struct{}{}
	}

	var out []models.Post
	for _, post := range s.posts {
		if _, ok := visible[post.AuthorID]; ok {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func newPostFixture(t *testing.T) (PostHandler, *inMemoryPostStore, *verification.Service) {
	t.Helper()
	store := newInMemoryPostStore()
	svc := verification.NewService(verification.NewMemoryStore(), discardStorage{})
	handler := PostHandler{
		Posts:        store,
		Verification: svc,
		Identity:     newStubDirectory(map[string]string{"alice": "user-1", "bob": "user-2"}),
		Sessions:     newStubSessions(map[string]string{"tok-alice": "user-1", "tok-bob": "user-2"}),
	}
	return handler, store, svc
}

func verifyUser(t *testing.T, svc *verification.Service, userID string) {
	t.Helper()
	if _, err := svc.Submit(context.Background(), userID, strings.NewReader("doc")); err != nil {
		t.Fatalf("submit document: %v", err)
	}
	if err := svc.Review(context.Background(), userID, true); err != nil {
		t.Fatalf("approve submission: %v", err)
	}
}

func TestPostHandlerCreate(t *testing.T) {
	handler, store, svc := newPostFixture(t)
	verifyUser(t, svc, "user-1")

	body := []byte(`{"body":"hello gatherly"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader(body)), "tok-alice")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}
	if len(store.posts) != 1 || store.posts[0].Body != "hello gatherly" {
		t.Fatalf("expected post to be stored: %+v", store.posts)
	}
	if store.posts[0].AuthorID != "user-1" {
		t.Fatalf("expected author user-1 got %q", store.posts[0].AuthorID)
	}
}

func TestPostHandlerCreateRequiresVerification(t *testing.T) {
	handler, store, _ := newPostFixture(t)

	body := []byte(`{"body":"hello"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader(body)), "tok-alice")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden got %d: %s", rec.Code, rec.Body)
	}
	if len(store.posts) != 0 {
		t.Fatalf("expected no post stored, got %+v", store.posts)
	}
}

func TestPostHandlerCreateValidation(t *testing.T) {
	handler, _, svc := newPostFixture(t)
	verifyUser(t, svc, "user-1")

	cases := []struct {
		name string
		body string
	}{
		{"badJSON", `{`},
		{"emptyBody", `{"body":"   "}`},
		{"tooLong", `{"body":"` + strings.Repeat("a", maxPostLength+1) + `"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader([]byte(tc.body))), "tok-alice")
			rec := httptest.NewRecorder()
			handler.Create(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected bad request got %d", rec.Code)
			}
		})
	}
}

func TestPostHandlerFeed(t *testing.T) {
	handler, store, _ := newPostFixture(t)
	store.friends["user-1"] = []string{"user-2"}

	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store.posts = []models.Post{
		{ID: "post-1", AuthorID: "user-1", Body: "mine", CreatedAt: base},
		{ID: "post-2", AuthorID: "user-2", Body: "from bob", CreatedAt: base.Add(time.Minute)},
		{ID: "post-3", AuthorID: "user-9", Body: "stranger", CreatedAt: base.Add(2 * time.Minute)},
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/posts/feed", nil), "tok-alice")
	rec := httptest.NewRecorder()
	handler.Feed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Posts []postView `json:"posts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Posts) != 2 {
		t.Fatalf("expected 2 feed posts got %d", len(resp.Posts))
	}
	if resp.Posts[0].ID != "post-2" || resp.Posts[0].Author != "bob" {
		t.Fatalf("expected newest friend post first: %+v", resp.Posts[0])
	}
	if resp.Posts[1].Author != "alice" {
		t.Fatalf("expected own post in feed: %+v", resp.Posts[1])
	}
}

func TestPostHandlerFeedUnauthenticated(t *testing.T) {
	handler, _, _ := newPostFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/feed", nil)
	rec := httptest.NewRecorder()
	handler.Feed(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized got %d", rec.Code)
	}
}
