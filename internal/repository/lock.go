package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/core-coin/fortunity-sync/internal/models"
)

// AcquireLock takes or renews the named lease. The upsert only overwrites a
// row that belongs to instanceID or has expired.
func (s *Store) AcquireLock(ctx context.Context, name, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now().Unix()
	expires := time.Now().Add(ttl).Unix()

	lock := models.AppLock{
		LockName:   name,
		InstanceID: instanceID,
		AcquiredAt: now,
		ExpiresAt:  expires,
	}
	res := s.Conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "lock_name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"instance_id": instanceID,
				"acquired_at": now,
				"expires_at":  expires,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("app_locks.instance_id = ? OR app_locks.expires_at <= ?", instanceID, now),
			}},
		}).
		Create(&lock)
	if res.Error != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", name, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReleaseLock drops the lease if instanceID holds it.
func (s *Store) ReleaseLock(ctx context.Context, name, instanceID string) error {
	if err := s.Conn.WithContext(ctx).
		Where("lock_name = ? AND instance_id = ?", name, instanceID).
		Delete(&models.AppLock{}).Error; err != nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	return nil
}
