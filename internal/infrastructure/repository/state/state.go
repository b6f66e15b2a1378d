package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	state_domain "github.com/IoTMirror/GoogleWebService/internal/domain/state"
)

const DefaultTTL = 15 * time.Minute

type stateRepo struct {
	db       *sql.DB
	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

var _ state_domain.Repo = (*stateRepo)(nil)

// NewStateRepo stores states in SQL. States older than ttl are reported as not
// found when consumed; a ttl of zero or less selects DefaultTTL.
func NewStateRepo(dbConn *sql.DB, ttl time.Duration) state_domain.Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &stateRepo{
		db:       dbConn,
		ttl:      ttl,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

func (r *stateRepo) Create(ctx context.Context, userID string) (string, error) {
	token := r.newToken()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO google_oauth2_states (state, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, r.now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert state: %w", err)
	}
	return token, nil
}

func (r *stateRepo) Consume(ctx context.Context, stateToken string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		userID    string
		createdAt int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, created_at FROM google_oauth2_states WHERE state = ?`,
		stateToken,
	).Scan(&userID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", state_domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to get state: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM google_oauth2_states WHERE state = ?`, stateToken)
	if err != nil {
		return "", fmt.Errorf("failed to delete state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read affected rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit state consumption: %w", err)
	}
	// a concurrent consumer deleted it first
	if affected == 0 {
		return "", state_domain.ErrNotFound
	}

	if r.now().Sub(time.Unix(createdAt, 0)) > r.ttl {
		return "", state_domain.ErrNotFound
	}
	return userID, nil
}

func (r *stateRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM google_oauth2_states WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user states: %w", err)
	}
	return nil
}
