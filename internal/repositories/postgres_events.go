package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gatherly/backend/internal/db"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/models"
)

// PostgresEventRepository provides PostgreSQL-backed persistence for the
// event directory.
type PostgresEventRepository struct {
	pool db.Pool
}

// NewPostgresEventRepository constructs an event repository backed by PostgreSQL.
func NewPostgresEventRepository(pool db.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Create persists a new event record.
func (r *PostgresEventRepository) Create(ctx context.Context, event models.Event) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO events (id, title, description, location, creator_id, starts_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, event.ID, event.Title, event.Description, event.Location, event.CreatorID, event.StartsAt, event.CreatedAt)
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
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// Get fetches an event by id. It returns ErrNotFound for unknown ids, which
// callers use as the existence check before joining.
func (r *PostgresEventRepository) Get(ctx context.Context, eventID string) (models.Event, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Event{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, title, description, location, creator_id, starts_at, created_at
        FROM events
        WHERE id = $1
    `, eventID)

	var event models.Event
	if err := row.Scan(&event.ID, &event.Title, &event.Description, &event.Location, &event.CreatorID, &event.StartsAt, &event.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, fmt.Errorf("select event: %w", err)
	}

	return event, nil
}

// ListUpcoming returns events starting after the provided time, soonest first.
func (r *PostgresEventRepository) ListUpcoming(ctx context.Context, after time.Time) ([]models.Event, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, title, description, location, creator_id, starts_at, created_at
        FROM events
        WHERE starts_at > $1
        ORDER BY starts_at ASC
        LIMIT 100
    `, after)
	if err != nil {
		return nil, fmt.Errorf("query upcoming events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// PostgresParticipationStore provides PostgreSQL-backed persistence for event
// participation. The (event_id, user_id) primary key enforces join uniqueness
// under concurrent writers.
type PostgresParticipationStore struct {
	pool db.Pool
}

// NewPostgresParticipationStore constructs a participation store backed by PostgreSQL.
func NewPostgresParticipationStore(pool db.Pool) *PostgresParticipationStore {
	return &PostgresParticipationStore{pool: pool}
}

// Add stores a participation record, rejecting duplicates for the pair.
func (s *PostgresParticipationStore) Add(ctx context.Context, participation models.Participation) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO event_participants (event_id, user_id, joined_at)
        VALUES ($1, $2, $3)
    `, participation.EventID, participation.UserID, participation.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return events.ErrAlreadyJoined
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert participation: %w", err)
	}

	return nil
}

// Remove deletes the participation record for the pair.
func (s *PostgresParticipationStore) Remove(ctx context.Context, eventID, userID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2
    `, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return events.ErrNotJoined
	}

	return nil
}

// ParticipantIDs returns the account ids joined to the event.
func (s *PostgresParticipationStore) ParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT user_id FROM event_participants WHERE event_id = $1
    `, eventID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	return ids, nil
}

// EventsForUser returns the events the user has joined, soonest first.
func (s *PostgresParticipationStore) EventsForUser(ctx context.Context, userID string) ([]models.Event, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT e.id, e.title, e.description, e.location, e.creator_id, e.starts_at, e.created_at
        FROM events e
        JOIN event_participants p ON p.event_id = e.id
        WHERE p.user_id = $1
        ORDER BY e.starts_at ASC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query joined events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]models.Event, error) {
	var out []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Title, &event.Description, &event.Location, &event.CreatorID, &event.StartsAt, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return out, nil
}

var _ EventRepository = (*PostgresEventRepository)(nil)
var _ events.ParticipationStore = (*PostgresParticipationStore)(nil)
