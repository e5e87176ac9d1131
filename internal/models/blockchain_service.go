package models

import (
	"context"

	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/core/types"
)

// Subscription is a live log feed. go-core subscriptions satisfy it.
type Subscription interface {
	Err() <-chan error
	Unsubscribe()
}

// BlockchainService represents the ledger node the scanner reads from.
type BlockchainService interface {
	LatestBlock(ctx context.Context) (uint64, error)
	// FilterLogs returns the contract logs in [from, to], both inclusive, in chain order.
	FilterLogs(ctx context.Context, from, to uint64) ([]types.Log, error)
	SubscribeLogs(ctx context.Context, ch chan<- types.Log) (Subscription, error)
	GasUsed(ctx context.Context, txHash common.Hash) (uint64, error)
}
