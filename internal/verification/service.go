package verification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/models"
)

var (
	// ErrNoSubmission indicates the account never submitted a document.
	ErrNoSubmission = errors.New("no verification submission")
	// ErrAlreadyVerified indicates the account is already approved.
	ErrAlreadyVerified = errors.New("account already verified")
	// ErrReviewPending indicates a submission is awaiting review.
	ErrReviewPending = errors.New("verification review pending")
	// ErrReviewClosed indicates the submission was already reviewed.
	ErrReviewClosed = errors.New("verification already reviewed")
)

// Store persists one verification record per account.
type Store interface {
	Upsert(ctx context.Context, verification models.Verification) error
	Get(ctx context.Context, userID string) (models.Verification, error)
	SetStatus(ctx context.Context, userID, status string, reviewedAt time.Time) error
}

// DocumentStorage persists submitted identity documents.
type DocumentStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Service owns the identity-verification lifecycle: submit, review, and the
// verified check other modules consult before trusting an account.
type Service struct {
	store   Store
	docs    DocumentStorage
	nowFunc func() time.Time
}

// NewService constructs a verification service.
func NewService(store Store, docs DocumentStorage) *Service {
	if store == nil {
		panic("verification: store must not be nil")
	}
	return &Service{store: store, docs: docs, nowFunc: func() time.Time { return time.Now().UTC() }}
}

// Submit stores the identity document and records the submission for review.
// A rejected account may resubmit; an approved account or one with a pending
// review may not.
func (s *Service) Submit(ctx context.Context, userID string, document io.Reader) (models.Verification, error) {
	if userID == "" {
		return models.Verification{}, errors.New("verification: user id must be provided")
	}
	if s.docs == nil {
		return models.Verification{}, errors.New("verification: document storage unavailable")
	}

	existing, err := s.store.Get(ctx, userID)
	switch {
	case err == nil:
		switch existing.Status {
		case models.VerificationApproved:
			return models.Verification{}, ErrAlreadyVerified
		case models.VerificationSubmitted:
			return models.Verification{}, ErrReviewPending
		}
	case errors.Is(err, ErrNoSubmission):
	default:
		return models.Verification{}, err
	}

	key := path.Join("verifications", userID, uuid.NewString())
	location, err := s.docs.Save(ctx, key, document)
	if err != nil {
		return models.Verification{}, fmt.Errorf("store verification document: %w", err)
	}

	verification := models.Verification{
		UserID:      userID,
		Status:      models.VerificationSubmitted,
		DocumentKey: location,
		SubmittedAt: s.nowFunc(),
	}

	if err := s.store.Upsert(ctx, verification); err != nil {
		return models.Verification{}, err
	}

	return verification, nil
}

// Review resolves a pending submission to approved or rejected.
func (s *Service) Review(ctx context.Context, userID string, approve bool) error {
	existing, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if existing.Status != models.VerificationSubmitted {
		return ErrReviewClosed
	}

	status := models.VerificationRejected
	if approve {
		status = models.VerificationApproved
	}

	return s.store.SetStatus(ctx, userID, status, s.nowFunc())
}

// Status returns the account's verification record.
func (s *Service) Status(ctx context.Context, userID string) (models.Verification, error) {
	return s.store.Get(ctx, userID)
}

// IsVerified reports whether the account passed review. An account with no
// submission is simply unverified, not an error.
func (s *Service) IsVerified(ctx context.Context, userID string) (bool, error) {
	verification, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrNoSubmission) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return verification.Status == models.VerificationApproved, nil
}
