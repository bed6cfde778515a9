package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gatherly/backend/internal/db"
	"github.com/gatherly/backend/internal/friends"
	"github.com/gatherly/backend/internal/models"
)

// PostgresFriendStore provides PostgreSQL-backed persistence for friend
// requests and friendship edges. A partial unique index over the ordered pair
// keeps at most one pending request per pair; the friendship primary key
// (user_a < user_b) keeps at most one edge. Both constraints hold under
// concurrent writers, so check-then-insert races surface here as the typed
// duplicate errors instead of second rows.
type PostgresFriendStore struct {
	pool db.Pool
}

// NewPostgresFriendStore constructs a friend store backed by PostgreSQL.
func NewPostgresFriendStore(pool db.Pool) *PostgresFriendStore {
	return &PostgresFriendStore{pool: pool}
}

// CreateRequest persists a new pending friend request.
func (s *PostgresFriendStore) CreateRequest(ctx context.Context, request models.FriendRequest) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO friend_requests (id, requester_id, receiver_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, request.ID, request.Requester, request.Receiver, request.Status, request.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return friends.ErrDuplicateRequest
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert friend request: %w", err)
	}

	return nil
}

// PendingBetween returns the pending request linking the pair in either direction.
func (s *PostgresFriendStore) PendingBetween(ctx context.Context, a, b string) (models.FriendRequest, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, requester_id, receiver_id, status, created_at
        FROM friend_requests
        WHERE status = 'pending'
          AND ((requester_id = $1 AND receiver_id = $2) OR (requester_id = $2 AND receiver_id = $1))
    `, a, b)

	var request models.FriendRequest
	if err := row.Scan(&request.ID, &request.Requester, &request.Receiver, &request.Status, &request.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.FriendRequest{}, friends.ErrRequestNotFound
		}
		return models.FriendRequest{}, fmt.Errorf("select pending request: %w", err)
	}

	return request, nil
}

// DeleteRequest removes the pending request sent by requesterID to receiverID.
func (s *PostgresFriendStore) DeleteRequest(ctx context.Context, requesterID, receiverID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM friend_requests
        WHERE requester_id = $1 AND receiver_id = $2 AND status = 'pending'
    `, requesterID, receiverID)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return friends.ErrRequestNotFound
	}

	return nil
}

// PromoteRequest atomically replaces the pending request with a friendship
// edge. The request row and the edge change in one transaction, so a crash
// cannot leave an accepted request without its friendship or vice versa.
func (s *PostgresFriendStore) PromoteRequest(ctx context.Context, requesterID, receiverID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin promote transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        DELETE FROM friend_requests
        WHERE requester_id = $1 AND receiver_id = $2 AND status = 'pending'
    `, requesterID, receiverID)
	if err != nil {
		return fmt.Errorf("delete promoted request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return friends.ErrRequestNotFound
	}

	userA, userB := friends.OrderPair(requesterID, receiverID)
	_, err = tx.Exec(ctx, `
        INSERT INTO friendships (user_a, user_b, created_at)
        VALUES ($1, $2, NOW())
    `, userA, userB)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return friends.ErrAlreadyFriends
		}
		return fmt.Errorf("insert friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit promote transaction: %w", err)
	}

	return nil
}

// FriendshipExists reports whether the pair shares a friendship edge.
func (s *PostgresFriendStore) FriendshipExists(ctx context.Context, a, b string) (bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	userA, userB := friends.OrderPair(a, b)

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM friendships WHERE user_a = $1 AND user_b = $2)
    `, userA, userB).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("select friendship existence: %w", err)
	}

	return exists, nil
}

// DeleteFriendship removes the friendship edge between the pair.
func (s *PostgresFriendStore) DeleteFriendship(ctx context.Context, a, b string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	userA, userB := friends.OrderPair(a, b)

	tag, err := conn.Exec(ctx, `
        DELETE FROM friendships WHERE user_a = $1 AND user_b = $2
    `, userA, userB)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return friends.ErrFriendshipNotFound
	}

	return nil
}

// RequestsForUser returns pending requests where the user is sender or receiver.
func (s *PostgresFriendStore) RequestsForUser(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, requester_id, receiver_id, status, created_at
        FROM friend_requests
        WHERE status = 'pending' AND (requester_id = $1 OR receiver_id = $1)
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query friend requests: %w", err)
	}
	defer rows.Close()

	var requests []models.FriendRequest
	for rows.Next() {
		var request models.FriendRequest
		if err := rows.Scan(&request.ID, &request.Requester, &request.Receiver, &request.Status, &request.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend requests: %w", err)
	}

	return requests, nil
}

// FriendIDs returns the account ids sharing a friendship edge with the user.
func (s *PostgresFriendStore) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT CASE WHEN user_a = $1 THEN user_b ELSE user_a END
        FROM friendships
        WHERE user_a = $1 OR user_b = $1
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query friends: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan friend id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friends: %w", err)
	}

	return ids, nil
}

var _ friends.Store = (*PostgresFriendStore)(nil)
