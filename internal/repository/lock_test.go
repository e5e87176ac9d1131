package repository

import (
	"context"
	"testing"
	"time"

	"github.com/core-coin/fortunity-sync/internal/models"
)

func TestAcquireLock(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ok, err := store.AcquireLock(ctx, models.IngestionLockName, "instance-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}

	// Renewal by the holder succeeds.
	ok, err = store.AcquireLock(ctx, models.IngestionLockName, "instance-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("renew = %v, %v", ok, err)
	}

	ok, err = store.AcquireLock(ctx, models.IngestionLockName, "instance-b", time.Minute)
	if err != nil {
		t.Fatalf("contended acquire: %v", err)
	}
	if ok {
		t.Fatal("second instance took a live lease")
	}

	if err := store.ReleaseLock(ctx, models.IngestionLockName, "instance-b"); err != nil {
		t.Fatalf("foreign release: %v", err)
	}
	ok, _ = store.AcquireLock(ctx, models.IngestionLockName, "instance-b", time.Minute)
	if ok {
		t.Fatal("release by a non-holder dropped the lease")
	}

	if err := store.ReleaseLock(ctx, models.IngestionLockName, "instance-a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = store.AcquireLock(ctx, models.IngestionLockName, "instance-b", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire after release = %v, %v", ok, err)
	}
}

func TestAcquireExpiredLock(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	expired := models.AppLock{
		LockName:   models.IngestionLockName,
		InstanceID: "crashed",
		AcquiredAt: time.Now().Add(-time.Hour).Unix(),
		ExpiresAt:  time.Now().Add(-time.Minute).Unix(),
	}
	if err := store.Conn.Create(&expired).Error; err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	ok, err := store.AcquireLock(ctx, models.IngestionLockName, "instance-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("takeover = %v, %v", ok, err)
	}

	var lock models.AppLock
	if err := store.Conn.Where("lock_name = ?", models.IngestionLockName).First(&lock).Error; err != nil {
		t.Fatalf("load lock: %v", err)
	}
	if lock.InstanceID != "instance-a" {
		t.Fatalf("holder = %q, want instance-a", lock.InstanceID)
	}
	if lock.Expired(time.Now().Unix()) {
		t.Fatal("renewed lock reports expired")
	}
}
