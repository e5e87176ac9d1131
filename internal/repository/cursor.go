package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/core-coin/fortunity-sync/internal/models"
)

// LoadCursor returns the persisted next block for the named cursor.
func (s *Store) LoadCursor(ctx context.Context, name string) (uint64, bool, error) {
	var cursor models.SyncCursor
	if err := s.Conn.WithContext(ctx).Where("name = ?", name).First(&cursor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to load cursor: %w", err)
	}
	return cursor.BlockNumber, true, nil
}

// SaveCursor upserts the named cursor.
func (s *Store) SaveCursor(ctx context.Context, name string, block uint64) error {
	now := time.Now().Unix()
	cursor := models.SyncCursor{Name: name, BlockNumber: block, UpdatedAt: now}
	if err := s.Conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"block_number": block,
				"updated_at":   now,
			}),
		}).
		Create(&cursor).Error; err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}
