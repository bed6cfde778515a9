package repositories

import (
	"context"
	"time"

	"github.com/gatherly/backend/internal/models"
)

// EventRepository defines data access for the event directory. Get returning
// ErrNotFound doubles as the existence check callers perform before joining.
type EventRepository interface {
	Create(ctx context.Context, event models.Event) error
	Get(ctx context.Context, eventID string) (models.Event, error)
	ListUpcoming(ctx context.Context, after time.Time) ([]models.Event, error)
}

// PostRepository defines data access for published posts.
type PostRepository interface {
	Create(ctx context.Context, post models.Post) error
	ListFeed(ctx context.Context, userID string) ([]models.Post, error)
}
