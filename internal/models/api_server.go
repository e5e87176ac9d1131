package models

import (
	"context"
)

// APIServer is the read-only operational HTTP surface.
type APIServer interface {
	Start()
	Shutdown() error
}

// LeaderboardReader lists the top earners.
type LeaderboardReader interface {
	Leaderboard(ctx context.Context, limit int) ([]*User, error)
}
