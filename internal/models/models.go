package models

import "time"

// User represents an account within the Gatherly platform. Username is the
// human-chosen handle; ID is the opaque identifier every other store keys on.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FriendRequest is a pending invitation between two accounts. Accepted and
// rejected requests are deleted rather than retained, so persisted rows are
// always pending.
type FriendRequest struct {
	ID        string
	Requester string
	Receiver  string
	Status    string
	CreatedAt time.Time
}

const FriendRequestPending = "pending"

// Friendship is the symmetric edge materialized when a request is accepted.
// UserA sorts before UserB so each unordered pair has exactly one row.
type Friendship struct {
	UserA     string
	UserB     string
	CreatedAt time.Time
}

// Event is an activity users may join.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	CreatorID   string
	StartsAt    time.Time
	CreatedAt   time.Time
}

// Participation links a user to an event they joined.
type Participation struct {
	EventID  string
	UserID   string
	JoinedAt time.Time
}

// Post is a piece of content published by a verified account.
type Post struct {
	ID        string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Verification tracks the identity-verification review for one account.
type Verification struct {
	UserID      string
	Status      string
	DocumentKey string
	SubmittedAt time.Time
	ReviewedAt  *time.Time
}

const (
	VerificationSubmitted = "submitted"
	VerificationApproved  = "approved"
	VerificationRejected  = "rejected"
)

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
