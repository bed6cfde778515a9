package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gatherly/backend/internal/models"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// SessionManager issues, refreshes, and authenticates tokens for users.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Authenticate(ctx context.Context, accessToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string)
}

// IdentityDirectory resolves usernames to account ids and back. Handlers
// resolve every inbound username through it before touching a core store.
type IdentityDirectory interface {
	Resolve(ctx context.Context, username string) (string, error)
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
}

// FriendService captures the friend-request lifecycle operations required by
// the friend handlers.
type FriendService interface {
	SendRequest(ctx context.Context, from, to string) (models.FriendRequest, error)
	CancelRequest(ctx context.Context, from, to string) error
	AcceptRequest(ctx context.Context, from, to string) error
	RejectRequest(ctx context.Context, from, to string) error
	RemoveFriend(ctx context.Context, a, b string) error
	Requests(ctx context.Context, userID string) ([]models.FriendRequest, error)
	Friends(ctx context.Context, userID string) ([]string, error)
}

// EventStore captures persistence for the event directory.
type EventStore interface {
	Create(ctx context.Context, event models.Event) error
	Get(ctx context.Context, eventID string) (models.Event, error)
	ListUpcoming(ctx context.Context, after time.Time) ([]models.Event, error)
}

// ParticipationService captures the join/leave lifecycle for events.
type ParticipationService interface {
	Join(ctx context.Context, userID, eventID string) (models.Participation, error)
	Leave(ctx context.Context, userID, eventID string) error
	Participants(ctx context.Context, eventID string) ([]string, error)
	EventsFor(ctx context.Context, userID string) ([]models.Event, error)
}

// PostStore captures persistence for published posts.
type PostStore interface {
	Create(ctx context.Context, post models.Post) error
	ListFeed(ctx context.Context, userID string) ([]models.Post, error)
}

// VerificationService captures the identity-verification lifecycle.
type VerificationService interface {
	Submit(ctx context.Context, userID string, document io.Reader) (models.Verification, error)
	Review(ctx context.Context, userID string, approve bool) error
	Status(ctx context.Context, userID string) (models.Verification, error)
	IsVerified(ctx context.Context, userID string) (bool, error)
}
