package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gatherly/backend/internal/db"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/verification"
)

// PostgresVerificationStore provides PostgreSQL-backed persistence for
// identity-verification records, one row per account.
type PostgresVerificationStore struct {
	pool db.Pool
}

// NewPostgresVerificationStore constructs a verification store backed by PostgreSQL.
func NewPostgresVerificationStore(pool db.Pool) *PostgresVerificationStore {
	return &PostgresVerificationStore{pool: pool}
}

// Upsert stores or replaces the account's verification record. Resubmission
// after a rejection overwrites the previous outcome.
func (s *PostgresVerificationStore) Upsert(ctx context.Context, v models.Verification) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO verifications (user_id, status, document_key, submitted_at, reviewed_at)
        VALUES ($1, $2, $3, $4, NULL)
        ON CONFLICT (user_id)
        DO UPDATE SET status = EXCLUDED.status,
                      document_key = EXCLUDED.document_key,
                      submitted_at = EXCLUDED.submitted_at,
                      reviewed_at = NULL
    `, v.UserID, v.Status, v.DocumentKey, v.SubmittedAt)
	if err != nil {
		return fmt.Errorf("upsert verification: %w", err)
	}

	return nil
}

// Get retrieves the account's verification record.
func (s *PostgresVerificationStore) Get(ctx context.Context, userID string) (models.Verification, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.Verification{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT user_id, status, document_key, submitted_at, reviewed_at
        FROM verifications
        WHERE user_id = $1
    `, userID)

	var (
		v          models.Verification
		reviewedAt sql.NullTime
	)
	if err := row.Scan(&v.UserID, &v.Status, &v.DocumentKey, &v.SubmittedAt, &reviewedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Verification{}, verification.ErrNoSubmission
		}
		return models.Verification{}, fmt.Errorf("select verification: %w", err)
	}

	if reviewedAt.Valid {
		t := reviewedAt.Time.UTC()
		v.ReviewedAt = &t
	}

	return v, nil
}

// SetStatus records the review outcome for the account.
func (s *PostgresVerificationStore) SetStatus(ctx context.Context, userID, status string, reviewedAt time.Time) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE verifications
        SET status = $2, reviewed_at = $3
        WHERE user_id = $1
    `, userID, status, reviewedAt)
	if err != nil {
		return fmt.Errorf("update verification status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return verification.ErrNoSubmission
	}

	return nil
}

var _ verification.Store = (*PostgresVerificationStore)(nil)
