package state

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	state_domain "github.com/IoTMirror/GoogleWebService/internal/domain/state"
	"github.com/IoTMirror/GoogleWebService/internal/infrastructure/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite, filepath.Join(t.TempDir(), "states.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.MigrateUp(conn, db.DriverSQLite))
	return conn
}

func TestStateRepo_CreateThenConsumeOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepo(newTestDB(t), 0)

	token, err := repo.Create(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := repo.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = repo.Consume(ctx, token)
	require.ErrorIs(t, err, state_domain.ErrNotFound)
}

func TestStateRepo_TokensAreUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepo(newTestDB(t), 0)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := repo.Create(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestStateRepo_ConsumeUnknownToken(t *testing.T) {
	repo := NewStateRepo(newTestDB(t), 0)
	_, err := repo.Consume(context.Background(), "missing")
	require.ErrorIs(t, err, state_domain.ErrNotFound)
}

func TestStateRepo_ExpiredStateIsNotFoundAndRemoved(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewStateRepo(conn, time.Minute).(*stateRepo)

	issued := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return issued }
	token, err := repo.Create(ctx, "u1")
	require.NoError(t, err)

	repo.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = repo.Consume(ctx, token)
	require.ErrorIs(t, err, state_domain.ErrNotFound)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM google_oauth2_states`).Scan(&count))
	assert.Zero(t, count)
}

func TestStateRepo_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepo(newTestDB(t), 0)

	token, err := repo.Create(ctx, "u1")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Consume(ctx, token); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestStateRepo_DeleteAllForUser(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepo(newTestDB(t), 0)

	a, err := repo.Create(ctx, "u1")
	require.NoError(t, err)
	b, err := repo.Create(ctx, "u1")
	require.NoError(t, err)
	other, err := repo.Create(ctx, "u2")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAllForUser(ctx, "u1"))

	_, err = repo.Consume(ctx, a)
	require.ErrorIs(t, err, state_domain.ErrNotFound)
	_, err = repo.Consume(ctx, b)
	require.ErrorIs(t, err, state_domain.ErrNotFound)

	userID, err := repo.Consume(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "u2", userID)
}
