package models

import "errors"

var (
	// ErrNotFound is returned by lookups that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate marks an event whose transaction hash was already projected.
	ErrDuplicate = errors.New("transaction already processed")
	// ErrLockHeld is returned when another instance holds the ingestion lease.
	ErrLockHeld = errors.New("lock held by another instance")
)
