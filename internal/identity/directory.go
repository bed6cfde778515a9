package identity

import (
	"context"
	"errors"
)

// ErrUnknownUsername indicates no account owns the requested username.
var ErrUnknownUsername = errors.New("username not found")

// Directory maps human-chosen usernames to opaque account ids and back.
// Every inbound operation that names a user resolves through it before any
// core store is invoked; the stores themselves never see usernames.
type Directory interface {
	Resolve(ctx context.Context, username string) (string, error)
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
}
