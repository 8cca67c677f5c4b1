package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the session under three keys sharing one prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) keys() (access, refresh, user string) {
	return r.prefix + ":access_token", r.prefix + ":refresh_token", r.prefix + ":user"
}

func (r *RedisStore) Load(ctx context.Context) (*domain.Session, error) {
	accessKey, refreshKey, userKey := r.keys()
	vals, err := r.client.MGet(ctx, accessKey, refreshKey, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s := &domain.Session{}
	if len(vals) != 3 {
		return s, nil
	}
	s.AccessToken, _ = vals[0].(string)
	s.RefreshToken, _ = vals[1].(string)
	if raw, ok := vals[2].(string); ok && raw != "" {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, fmt.Errorf("stored user is corrupt: %w", err)
		}
		s.User = &u
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *domain.Session) error {
	accessKey, refreshKey, userKey := r.keys()
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, accessKey, s.AccessToken, 0)
		pipe.Set(ctx, refreshKey, s.RefreshToken, 0)
		if s.User == nil {
			pipe.Del(ctx, userKey)
		} else {
			pipe.Set(ctx, userKey, user, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	accessKey, refreshKey, userKey := r.keys()
	if err := r.client.Del(ctx, accessKey, refreshKey, userKey).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
