package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	state_domain "github.com/IoTMirror/GoogleWebService/internal/domain/state"
)

const (
	stateKeyPrefix     = "oauth2_state:"
	userStateKeyPrefix = "oauth2_states:user:"
)

type redisStateRepo struct {
	client   redis.UniversalClient
	ttl      time.Duration
	newToken func() string
}

var _ state_domain.Repo = (*redisStateRepo)(nil)

// NewRedisStateRepo keeps each state under its own key with a TTL, plus a per-user
// set of tokens used for bulk deletion.
func NewRedisStateRepo(client redis.UniversalClient, ttl time.Duration) state_domain.Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStateRepo{
		client:   client,
		ttl:      ttl,
		newToken: uuid.NewString,
	}
}

func (r *redisStateRepo) Create(ctx context.Context, userID string) (string, error) {
	token := r.newToken()
	userKey := userStateKeyPrefix + userID

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, stateKeyPrefix+token, userID, r.ttl)
		pipe.SAdd(ctx, userKey, token)
		pipe.Expire(ctx, userKey, r.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	return token, nil
}

func (r *redisStateRepo) Consume(ctx context.Context, stateToken string) (string, error) {
	userID, err := r.client.GetDel(ctx, stateKeyPrefix+stateToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", state_domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to consume state: %w", err)
	}

	if err := r.client.SRem(ctx, userStateKeyPrefix+userID, stateToken).Err(); err != nil {
		return "", fmt.Errorf("failed to untrack state: %w", err)
	}
	return userID, nil
}

func (r *redisStateRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := userStateKeyPrefix + userID
	tokens, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list user states: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, stateKeyPrefix+token)
	}
	keys = append(keys, userKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete user states: %w", err)
	}
	return nil
}
