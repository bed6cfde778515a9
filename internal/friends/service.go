package friends

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/models"
)

// Store persists friend requests and friendship edges. Implementations must
// back the pair-uniqueness invariants with storage-level constraints so that
// racing writers cannot persist duplicates; a losing writer observes
// ErrDuplicateRequest or ErrAlreadyFriends instead.
type Store interface {
	CreateRequest(ctx context.Context, request models.FriendRequest) error
	PendingBetween(ctx context.Context, a, b string) (models.FriendRequest, error)
	DeleteRequest(ctx context.Context, requesterID, receiverID string) error
	PromoteRequest(ctx context.Context, requesterID, receiverID string) error
	FriendshipExists(ctx context.Context, a, b string) (bool, error)
	DeleteFriendship(ctx context.Context, a, b string) error
	RequestsForUser(ctx context.Context, userID string) ([]models.FriendRequest, error)
	FriendIDs(ctx context.Context, userID string) ([]string, error)
}

// Service owns the friend-request lifecycle: send, cancel, accept, reject, and
// removal of the resulting friendship. All operations take opaque account
// identifiers; username resolution is the caller's concern.
type Service struct {
	store   Store
	nowFunc func() time.Time
}

// NewService constructs a Service over the provided store.
func NewService(store Store) *Service {
	if store == nil {
		panic("friends: store must not be nil")
	}
	return &Service{store: store, nowFunc: func() time.Time { return time.Now().UTC() }}
}

// SendRequest creates a pending request from one account to another. It fails
// when the request targets its sender, when the accounts are already friends,
// or when a pending request already links the pair in either direction.
func (s *Service) SendRequest(ctx context.Context, from, to string) (models.FriendRequest, error) {
	if from == "" || to == "" {
		return models.FriendRequest{}, errors.New("friends: account ids must be provided")
	}
	if from == to {
		return models.FriendRequest{}, ErrSelfRequest
	}

	exists, err := s.store.FriendshipExists(ctx, from, to)
	if err != nil {
		return models.FriendRequest{}, err
	}
	if exists {
		return models.FriendRequest{}, ErrAlreadyFriends
	}

	if _, err := s.store.PendingBetween(ctx, from, to); err == nil {
		return models.FriendRequest{}, ErrDuplicateRequest
	} else if !errors.Is(err, ErrRequestNotFound) {
		return models.FriendRequest{}, err
	}

	request := models.FriendRequest{
		ID:        uuid.NewString(),
		Requester: from,
		Receiver:  to,
		Status:    models.FriendRequestPending,
		CreatedAt: s.nowFunc(),
	}

	// The pair-unique index closes the gap between the checks above and this
	// insert: a concurrent duplicate surfaces as ErrDuplicateRequest here.
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return models.FriendRequest{}, err
	}

	return request, nil
}

// CancelRequest withdraws a pending request previously sent by from.
func (s *Service) CancelRequest(ctx context.Context, from, to string) error {
	return s.store.DeleteRequest(ctx, from, to)
}

// AcceptRequest resolves the pending request from → to by materializing the
// friendship edge and discarding the request record, atomically.
func (s *Service) AcceptRequest(ctx context.Context, from, to string) error {
	return s.store.PromoteRequest(ctx, from, to)
}

// RejectRequest discards the pending request from → to without creating a
// friendship.
func (s *Service) RejectRequest(ctx context.Context, from, to string) error {
	return s.store.DeleteRequest(ctx, from, to)
}

// RemoveFriend deletes the friendship edge between two accounts. Removing an
// absent edge is an error, not a no-op.
func (s *Service) RemoveFriend(ctx context.Context, a, b string) error {
	return s.store.DeleteFriendship(ctx, a, b)
}

// Requests returns pending requests where the user is sender or recipient.
func (s *Service) Requests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.store.RequestsForUser(ctx, userID)
}

// Friends returns the account ids with an active friendship to the user.
func (s *Service) Friends(ctx context.Context, userID string) ([]string, error) {
	return s.store.FriendIDs(ctx, userID)
}

// OrderPair returns the two ids in lexical order, the canonical form for a
// friendship edge.
func OrderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
