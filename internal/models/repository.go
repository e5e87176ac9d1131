package models

import (
	"context"
	"time"
)

// LedgerStore is the set of atomic primitives the projector composes.
// Every mutation is a single statement; none reads a row back to modify it.
type LedgerStore interface {
	FindUserByAddress(ctx context.Context, address string) (*User, error)
	FindUserByReferralCode(ctx context.Context, code string) (*User, error)
	FindSlot(ctx context.Context, slotNumber int) (*Slot, error)

	// InsertUserIfAbsent creates the user unless a row with the same address,
	// username or referral code exists. It reports whether a row was created.
	InsertUserIfAbsent(ctx context.Context, user *User) (bool, error)
	// IncrementTeamSize adds one direct referral to the user's team counters.
	IncrementTeamSize(ctx context.Context, userID int64) error

	// ActivateUserSlot adds the slot to the user's activated set; false if present.
	ActivateUserSlot(ctx context.Context, userID int64, slotNumber int, at int64) (bool, error)
	// RaiseCurrentSlot sets current_slot to slotNumber only when it is higher.
	RaiseCurrentSlot(ctx context.Context, userID int64, slotNumber int, at int64) (bool, error)
	// IncrementSlotPurchases bumps the slot purchase counter and its timestamp.
	IncrementSlotPurchases(ctx context.Context, slotNumber int, at int64) error
	// IncrementRebirth bumps the rebirth counter of an activated slot; false if
	// the user never activated it.
	IncrementRebirth(ctx context.Context, userID int64, slotNumber int, at int64) (bool, error)
	// IncrementEarnings adds amount to the category total and to the grand total.
	IncrementEarnings(ctx context.Context, userID int64, incomeType IncomeType, amount float64, at int64) error

	// InsertTransaction stores the row unless its hash is known; false means
	// the hash was already processed.
	InsertTransaction(ctx context.Context, tx *Transaction) (bool, error)
	InsertIncome(ctx context.Context, income *Income) error
}

// Repository is the Ledger Store.
type Repository interface {
	LedgerStore

	// InTx runs fn with a store whose writes commit or roll back together.
	InTx(ctx context.Context, fn func(store LedgerStore) error) error

	Leaderboard(ctx context.Context, limit int) ([]*User, error)
	SeedSlots(ctx context.Context, slots []Slot) (int, error)

	Close() error
}

// CursorStore persists the backfill position.
type CursorStore interface {
	LoadCursor(ctx context.Context, name string) (block uint64, found bool, err error)
	SaveCursor(ctx context.Context, name string, block uint64) error
}

// LockStore hands out expiring leases. Acquiring a lease you already hold renews it.
type LockStore interface {
	AcquireLock(ctx context.Context, name, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, instanceID string) error
}
