package repository

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

func exerciseCursorStore(t *testing.T, cursors models.CursorStore, name string) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := cursors.LoadCursor(ctx, name); err != nil || found {
		t.Fatalf("empty load = found %v, err %v", found, err)
	}
	for _, block := range []uint64{100, 10000, 25000} {
		if err := cursors.SaveCursor(ctx, name, block); err != nil {
			t.Fatalf("save %d: %v", block, err)
		}
		got, found, err := cursors.LoadCursor(ctx, name)
		if err != nil || !found {
			t.Fatalf("load = found %v, err %v", found, err)
		}
		if got != block {
			t.Fatalf("cursor = %d, want %d", got, block)
		}
	}
}

func TestSQLCursorStore(t *testing.T) {
	exerciseCursorStore(t, openTestStore(t), "cursor:cbtest")
}

func TestRedisCursorStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	name := "cursor:test-" + t.Name()
	t.Cleanup(func() {
		client.Del(context.Background(), "fortunity:"+name)
		client.Close()
	})

	exerciseCursorStore(t, NewRedisCursorStoreWithClient(client, logger.NewNop()), name)
}
