package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stadslucht/pm25-extract/internal/airdata"
)

// RedisStore keeps window entries in redis under the same keys and JSON
// payloads as FileStore, with no TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]airdata.RawRecord, bool, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var records []airdata.RawRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return records, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, records []airdata.RawRecord) error {
	if records == nil {
		records = []airdata.RawRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, 0).Err()
}
