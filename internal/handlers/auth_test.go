package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/repositories"
)

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func newAuthFixture() (AuthHandler, *inMemoryUserStore, *auth.Manager) {
	store := newInMemoryUserStore()
	manager := auth.NewManager(time.Minute, time.Hour, auth.NewInMemorySessionStore())
	return AuthHandler{Users: store, Sessions: manager}, store, manager
}

func TestAuthHandlerSignUp(t *testing.T) {
	handler, store, _ := newAuthFixture()

	body, err := json.Marshal(signUpRequest{Username: "tester", Email: "test@example.com", Password: "supersafe"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp.Tokens)
	}
	if resp.Username != "tester" {
		t.Fatalf("expected username in response, got %q", resp.Username)
	}

	stored, err := store.FindByEmail(context.Background(), "test@example.com")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if stored.Username != "tester" {
		t.Fatalf("expected username persisted, got %q", stored.Username)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("supersafe")) != nil {
		t.Fatal("stored password is not hashed")
	}
}

func TestAuthHandlerSignUpValidation(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"badJSON", `{`, http.StatusBadRequest},
		{"missingUsername", `{"email":"a@example.com","password":"supersafe"}`, http.StatusBadRequest},
		{"badUsername", `{"username":"x","email":"a@example.com","password":"supersafe"}`, http.StatusBadRequest},
		{"badEmail", `{"username":"tester","email":"nope","password":"supersafe"}`, http.StatusBadRequest},
		{"shortPassword", `{"username":"tester","email":"a@example.com","password":"short"}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, _, _ := newAuthFixture()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader([]byte(tc.body)))
			rec := httptest.NewRecorder()
			handler.SignUp(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d: %s", tc.wantStatus, rec.Code, rec.Body)
			}
		})
	}
}

func TestAuthHandlerSignUpConflicts(t *testing.T) {
	handler, store, _ := newAuthFixture()
	store.users["user-1"] = models.User{ID: "user-1", Username: "taken", Email: "taken@example.com"}

	cases := []struct {
		name string
		body string
	}{
		{"emailExists", `{"username":"fresh","email":"taken@example.com","password":"supersafe"}`},
		{"usernameTaken", `{"username":"taken","email":"fresh@example.com","password":"supersafe"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader([]byte(tc.body)))
			rec := httptest.NewRecorder()
			handler.SignUp(rec, req)
			if rec.Code != http.StatusConflict {
				t.Fatalf("expected conflict got %d: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	handler, store, _ := newAuthFixture()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store.users["user-1"] = models.User{ID: "user-1", Username: "login", Email: "login@example.com", Password: string(hashed)}

	body, err := json.Marshal(loginRequest{Email: "login@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp.Tokens)
	}
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	handler, store, _ := newAuthFixture()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	store.users["user-1"] = models.User{ID: "user-1", Email: "login@example.com", Password: string(hashed)}

	body := []byte(`{"email":"login@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized got %d", rec.Code)
	}
}

func TestAuthHandlerRefresh(t *testing.T) {
	handler, _, manager := newAuthFixture()

	tokens, err := manager.Issue(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Tokens.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected a new refresh token to be issued")
	}
}

func TestAuthHandlerLogout(t *testing.T) {
	handler, _, manager := newAuthFixture()

	tokens, err := manager.Issue(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	body, _ := json.Marshal(refreshRequest{RefreshToken: tokens.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err == nil {
		t.Fatal("expected refresh to fail after logout")
	}
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func TestAuthHandlerRateLimited(t *testing.T) {
	handler, _, _ := newAuthFixture()
	handler.Limiter = denyAllLimiter{}

	body := []byte(`{"email":"login@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected too many requests got %d", rec.Code)
	}
}
