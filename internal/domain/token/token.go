package token

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("token pair not found")
	ErrDuplicateKey = errors.New("token pair already exists")
)

// Pair is the credential pair stored for one user. RefreshToken is empty when the
// authority did not issue one.
type Pair struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	UpdatedAt    int64
}

func (p Pair) HasRefreshToken() bool {
	return p.RefreshToken != ""
}

// Repo persists at most one Pair per user id. Insert reports ErrDuplicateKey when a
// row already exists; the update methods report ErrNotFound when none does.
type Repo interface {
	Insert(ctx context.Context, pair Pair) error
	UpdateTokens(ctx context.Context, userID, accessToken, refreshToken string) error
	UpdateAccessToken(ctx context.Context, userID, accessToken string) error
	Get(ctx context.Context, userID string) (*Pair, error)
	Delete(ctx context.Context, userID string) error
}
