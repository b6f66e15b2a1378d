package state

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("oauth2 state not found or expired")

// State correlates an authorization redirect with the user who started it.
type State struct {
	Token     string
	UserID    string
	CreatedAt int64
}

// Repo stores single-use states. Consume deletes the state it returns, so a second
// call for the same token reports ErrNotFound.
type Repo interface {
	Create(ctx context.Context, userID string) (string, error)
	Consume(ctx context.Context, stateToken string) (string, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}
