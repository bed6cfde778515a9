package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/identity"
	"github.com/gatherly/backend/internal/models"
)

// stubSessions maps access tokens straight to user ids.
type stubSessions struct {
	byAccess map[string]string
}

func newStubSessions(byAccess map[string]string) *stubSessions {
	return &stubSessions{byAccess: byAccess}
}

func (s *stubSessions) Issue(context.Context, string) (models.SessionTokens, error) {
	return models.SessionTokens{}, errors.New("not implemented")
}

func (s *stubSessions) Refresh(context.Context, string) (models.SessionTokens, error) {
	return models.SessionTokens{}, errors.New("not implemented")
}

func (s *stubSessions) Authenticate(_ context.Context, accessToken string) (string, error) {
	userID, ok := s.byAccess[accessToken]
	if !ok {
		return "", auth.ErrSessionNotFound
	}
	return userID, nil
}

func (s *stubSessions) Revoke(context.Context, string) {}

// stubDirectory resolves usernames from a fixed map.
type stubDirectory struct {
	byName map[string]string
}

func newStubDirectory(byName map[string]string) *stubDirectory {
	return &stubDirectory{byName: byName}
}

func (d *stubDirectory) Resolve(_ context.Context, username string) (string, error) {
	id, ok := d.byName[username]
	if !ok {
		return "", identity.ErrUnknownUsername
	}
	return id, nil
}

func (d *stubDirectory) Usernames(_ context.Context, ids []string) (map[string]string, error) {
	byID := make(map[string]string, len(d.byName))
	for name, id := range d.byName {
		byID[id] = name
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// discardStorage consumes the document and returns its key unchanged.
type discardStorage struct{}

func (discardStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return name, err
}

func asUser(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
