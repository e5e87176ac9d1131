package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

// Store is the gorm-backed Ledger Store. It also persists the sync cursor and
// the ingestion lease.
type Store struct {
	logger *logger.Logger

	Conn *gorm.DB

	*ledger
}

var (
	_ models.Repository  = (*Store)(nil)
	_ models.CursorStore = (*Store)(nil)
	_ models.LockStore   = (*Store)(nil)
)

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (*Store, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		host, user, password, dbname, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	store, err := newStore(db, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return store, nil
}

// NewSQLiteDB opens a SQLite ledger. SQLite allows a single writer, so the pool
// is capped at one connection; ":memory:" gives a private in-memory database.
func NewSQLiteDB(path string, logger *logger.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	store, err := newStore(db, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("Successfully opened SQLite database ", path)
	return store, nil
}

func newStore(db *gorm.DB, logger *logger.Logger) (*Store, error) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserSlot{},
		&models.Slot{},
		&models.Transaction{},
		&models.Income{},
		&models.SyncCursor{},
		&models.AppLock{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	return &Store{Conn: db, logger: logger, ledger: &ledger{db: db}}, nil
}

// Configure GORM logger to suppress "record not found" messages
func newGormLogger() gormLogger.Interface {
	return gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

func (s *Store) Close() error {
	sqlDB, err := s.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// InTx runs fn inside a database transaction.
func (s *Store) InTx(ctx context.Context, fn func(store models.LedgerStore) error) error {
	return s.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledger{db: tx})
	})
}

// Leaderboard returns active users ordered by total earnings.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []*models.User
	if err := s.Conn.WithContext(ctx).
		Where("is_active = ? AND is_blocked = ?", true, false).
		Order("earnings_total DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return users, nil
}

// SeedSlots inserts catalogue entries that do not exist yet and returns how many were created.
func (s *Store) SeedSlots(ctx context.Context, slots []models.Slot) (int, error) {
	created := 0
	for i := range slots {
		slot := slots[i]
		if !models.ValidSlotNumber(slot.SlotNumber) {
			return created, fmt.Errorf("slot number %d out of range", slot.SlotNumber)
		}
		if !slot.SplitValid() {
			return created, fmt.Errorf("slot %d income split does not sum to 100", slot.SlotNumber)
		}
		res := s.Conn.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slot_number"}}, DoNothing: true}).
			Create(&slot)
		if res.Error != nil {
			return created, fmt.Errorf("failed to seed slot %d: %w", slot.SlotNumber, res.Error)
		}
		if res.RowsAffected > 0 {
			created++
			s.logger.Info("Created default slot ", slot.SlotNumber)
		}
	}
	return created, nil
}
