package models

// IngestionLockName is the lease guarding the projector: one writer per database.
const IngestionLockName = "ingestion"

// AppLock is a lease row. Whoever holds an unexpired row owns the named work.
type AppLock struct {
	LockName   string `gorm:"primaryKey;size:255"`
	InstanceID string `gorm:"size:255;not null"`
	AcquiredAt int64  `gorm:"not null;index"`
	ExpiresAt  int64  `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (AppLock) TableName() string {
	return "app_locks"
}

// Expired reports whether the lease lapsed at unix time now.
func (l *AppLock) Expired(now int64) bool {
	return l.ExpiresAt <= now
}
