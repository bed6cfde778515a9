package events

import "errors"

var (
	// ErrAlreadyJoined indicates the user already holds a participation
	// record for the event. Repeat joins are an explicit error, never a
	// silent duplicate.
	ErrAlreadyJoined = errors.New("user already joined event")
	// ErrNotJoined indicates no participation record exists for the pair.
	ErrNotJoined = errors.New("user has not joined event")
)
