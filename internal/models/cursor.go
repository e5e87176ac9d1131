package models

// SyncCursor stores the next block the backfill should fetch.
type SyncCursor struct {
	Name        string `gorm:"column:name;primaryKey;size:128"`
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	UpdatedAt   int64  `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for GORM
func (SyncCursor) TableName() string {
	return "sync_cursors"
}
