package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"marketpulse/pkg/errors"
)

const commentaryKeyPrefix = "marketpulse:"

// CommentaryStore implements analysis.CommentaryStore on Redis
type CommentaryStore struct {
	client *redis.Client
}

// NewCommentaryStore creates a Redis-backed commentary store
func NewCommentaryStore(client *redis.Client) *CommentaryStore {
	return &CommentaryStore{client: client}
}

func (s *CommentaryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, commentaryKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to get commentary: key=%s", key)
	}
	return data, true, nil
}

func (s *CommentaryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, commentaryKeyPrefix+key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to set commentary: key=%s", key)
	}
	return nil
}

func (s *CommentaryStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, commentaryKeyPrefix+key).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete commentary: key=%s", key)
	}
	return nil
}
