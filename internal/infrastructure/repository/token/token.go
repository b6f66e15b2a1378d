package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	token_domain "github.com/IoTMirror/GoogleWebService/internal/domain/token"
	"github.com/IoTMirror/GoogleWebService/internal/infrastructure/db"
)

type tokenRepo struct {
	db  *sql.DB
	now func() time.Time
}

var _ token_domain.Repo = (*tokenRepo)(nil)

func NewTokenRepo(dbConn *sql.DB) token_domain.Repo {
	return &tokenRepo{
		db:  dbConn,
		now: time.Now,
	}
}

func (r *tokenRepo) Insert(ctx context.Context, pair token_domain.Pair) error {
	var refreshToken sql.NullString
	if pair.RefreshToken != "" {
		refreshToken = sql.NullString{String: pair.RefreshToken, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO google_access_tokens (user_id, access_token, refresh_token, updated_at) VALUES (?, ?, ?, ?)`,
		pair.UserID, pair.AccessToken, refreshToken, r.now().Unix(),
	)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return token_domain.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert tokens: %w", err)
	}

	return nil
}

func (r *tokenRepo) UpdateTokens(ctx context.Context, userID, accessToken, refreshToken string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE google_access_tokens SET access_token = ?, refresh_token = ?, updated_at = ? WHERE user_id = ?`,
		accessToken, refreshToken, r.now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	return r.requireRow(ctx, res, userID)
}

func (r *tokenRepo) UpdateAccessToken(ctx context.Context, userID, accessToken string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE google_access_tokens SET access_token = ?, updated_at = ? WHERE user_id = ?`,
		accessToken, r.now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update access token: %w", err)
	}
	return r.requireRow(ctx, res, userID)
}

func (r *tokenRepo) Get(ctx context.Context, userID string) (*token_domain.Pair, error) {
	var (
		pair         = token_domain.Pair{UserID: userID}
		refreshToken sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, updated_at FROM google_access_tokens WHERE user_id = ?`,
		userID,
	).Scan(&pair.AccessToken, &refreshToken, &pair.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, token_domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}
	if refreshToken.Valid {
		pair.RefreshToken = refreshToken.String
	}

	return &pair, nil
}

func (r *tokenRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM google_access_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	return nil
}

// requireRow turns an update that matched nothing into ErrNotFound. MySQL reports
// zero affected rows when the new values equal the old ones, so a zero count is
// confirmed with a lookup before giving up.
func (r *tokenRepo) requireRow(ctx context.Context, res sql.Result, userID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM google_access_tokens WHERE user_id = ?`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return token_domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check tokens: %w", err)
	}
	return nil
}
