package backup

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

// RedisMirror keeps the latest snapshot document under one key per shop.
type RedisMirror struct {
	client *redis.Client
	key    string
}

func NewRedisMirror(addr string, password string, db int, storeID string) *RedisMirror {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisMirror{
		client: client,
		key:    fmt.Sprintf("superpos:snapshot:%s", storeID),
	}
}

func (m *RedisMirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

func (m *RedisMirror) Close() error {
	return m.client.Close()
}

func (m *RedisMirror) Push(ctx context.Context, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	// No TTL: the mirror holds the last committed document until the next
	// push overwrites it.
	return m.client.Set(ctx, m.key, payload, 0).Err()
}

func (m *RedisMirror) Pull(ctx context.Context) (domain.Snapshot, error) {
	val, err := m.client.Get(ctx, m.key).Result()
	if err == redis.Nil {
		return domain.Snapshot{}, fmt.Errorf("%w: no mirrored snapshot", store.ErrNotFound)
	}
	if err != nil {
		return domain.Snapshot{}, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}
