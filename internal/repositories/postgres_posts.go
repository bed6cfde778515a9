package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gatherly/backend/internal/db"
	"github.com/gatherly/backend/internal/models"
)

// PostgresPostRepository provides PostgreSQL-backed persistence for posts.
type PostgresPostRepository struct {
	pool db.Pool
}

// NewPostgresPostRepository constructs a post repository backed by PostgreSQL.
func NewPostgresPostRepository(pool db.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

// Create stores a new post record.
func (r *PostgresPostRepository) Create(ctx context.Context, post models.Post) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO posts (id, author_id, body, created_at)
        VALUES ($1, $2, $3, $4)
    `, post.ID, post.AuthorID, post.Body, post.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// ListFeed returns a reverse chronological feed of the user's own posts and
// posts from accounts they share a friendship edge with.
func (r *PostgresPostRepository) ListFeed(ctx context.Context, userID string) ([]models.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        WITH friend_ids AS (
            SELECT CASE WHEN user_a = $1 THEN user_b ELSE user_a END AS friend_id
            FROM friendships
            WHERE user_a = $1 OR user_b = $1
        )
        SELECT id, author_id, body, created_at
        FROM posts
        WHERE author_id = $1 OR author_id IN (SELECT friend_id FROM friend_ids)
        ORDER BY created_at DESC
        LIMIT 100
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query post feed: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Body, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post feed: %w", err)
	}

	return posts, nil
}

var _ PostRepository = (*PostgresPostRepository)(nil)
