package friends

import "errors"

var (
	// ErrSelfRequest indicates a friend request targeted its own sender.
	ErrSelfRequest = errors.New("friend request cannot target its sender")
	// ErrDuplicateRequest indicates a pending request already links the pair.
	ErrDuplicateRequest = errors.New("pending friend request already exists")
	// ErrAlreadyFriends indicates a friendship edge already links the pair.
	ErrAlreadyFriends = errors.New("accounts are already friends")
	// ErrRequestNotFound indicates no pending request exists for the pair.
	ErrRequestNotFound = errors.New("friend request not found")
	// ErrFriendshipNotFound indicates no friendship edge exists for the pair.
	ErrFriendshipNotFound = errors.New("friendship not found")
)
