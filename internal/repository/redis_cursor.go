package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

const keyCursor = "fortunity:%s"

// RedisCursorStore keeps the backfill cursor in Redis.
type RedisCursorStore struct {
	logger *logger.Logger
	client *redis.Client
}

var _ models.CursorStore = (*RedisCursorStore)(nil)

func NewRedisCursorStore(addr, password string, db int, logger *logger.Logger) (*RedisCursorStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis ", addr)
	return &RedisCursorStore{client: client, logger: logger}, nil
}

// NewRedisCursorStoreWithClient wraps an existing client.
func NewRedisCursorStoreWithClient(client *redis.Client, logger *logger.Logger) *RedisCursorStore {
	return &RedisCursorStore{client: client, logger: logger}
}

func (r *RedisCursorStore) LoadCursor(ctx context.Context, name string) (uint64, bool, error) {
	value, err := r.client.Get(ctx, fmt.Sprintf(keyCursor, name)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load cursor: %w", err)
	}
	block, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cursor value %q: %w", value, err)
	}
	return block, true, nil
}

func (r *RedisCursorStore) SaveCursor(ctx context.Context, name string, block uint64) error {
	if err := r.client.Set(ctx, fmt.Sprintf(keyCursor, name), strconv.FormatUint(block, 10), 0).Err(); err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}

func (r *RedisCursorStore) Close() error {
	return r.client.Close()
}
