package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key holding the last-fix record.
const DefaultRedisKey = "fieldtrack:last_fix"

// RedisStore keeps the record as a JSON value under a single key, for
// deployments where several consumers read the device's last position.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection. A zero ttl
// keeps the record forever.
func NewRedisStore(ctx context.Context, addr, password, key string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, ttl: ttl}, nil
}

// Save overwrites the record under the store key.
func (s *RedisStore) Save(ctx context.Context, rec LastFixRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal last fix: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Load reads the record; a missing key means no record yet.
func (s *RedisStore) Load(ctx context.Context) (LastFixRecord, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return LastFixRecord{}, false, nil
	}
	if err != nil {
		return LastFixRecord{}, false, fmt.Errorf("redis get: %w", err)
	}
	var rec LastFixRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return LastFixRecord{}, false, fmt.Errorf("decode last fix: %w", err)
	}
	return rec, true, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }
