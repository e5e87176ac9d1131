package projector

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/core/types"

	"github.com/core-coin/fortunity-sync/internal/blockchain"
	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

// Outcome is what happened to one log.
type Outcome int

const (
	Applied Outcome = iota
	Duplicate
	Skipped
	Failed
	Unknown
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Duplicate:
		return "duplicate"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	case Unknown:
		return "unknown"
	case Invalid:
		return "invalid"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// errMissingRef marks an event whose user or slot has not been projected yet.
var errMissingRef = errors.New("referenced entity not projected")

// Notifier receives payouts after they are committed. Implementations must not block.
type Notifier interface {
	NotifyIncome(user *models.User, notification models.IncomeNotification)
}

type Config struct {
	ContractAddress string
	FetchGasUsed    bool
	Token           *models.Token
}

// Projector routes decoded events to the state transitions that apply them to
// the ledger. It never returns errors to the caller; every failure is logged
// and counted.
type Projector struct {
	logger   *logger.Logger
	repo     models.Repository
	chain    models.BlockchainService
	decoder  *blockchain.Decoder
	notifier Notifier
	config   Config

	applied    atomic.Uint64
	duplicates atomic.Uint64
	skipped    atomic.Uint64
	failed     atomic.Uint64
	unknown    atomic.Uint64
	invalid    atomic.Uint64
}

// New builds a projector. chain is only used for gas lookups and may be nil;
// notifier may be nil.
func New(repo models.Repository, chain models.BlockchainService, decoder *blockchain.Decoder, notifier Notifier, config Config, logger *logger.Logger) *Projector {
	if config.Token == nil {
		config.Token = models.NativeToken("", 18)
	}
	return &Projector{
		logger:   logger.Named("projector"),
		repo:     repo,
		chain:    chain,
		decoder:  decoder,
		notifier: notifier,
		config:   config,
	}
}

// Dispatch decodes and applies one raw log. The handler runs to completion even
// if ctx is cancelled while it is writing.
func (p *Projector) Dispatch(ctx context.Context, log types.Log) Outcome {
	if log.Removed {
		p.logger.Warnw("Skipping removed log", "tx", log.TxHash.Hex(), "block", log.BlockNumber, "log_index", log.Index)
		return p.count(Skipped)
	}

	event, err := p.decoder.Decode(log)
	switch {
	case blockchain.IsUnknownEvent(err):
		p.logger.Infow("Ignoring unknown event", "error", err, "tx", log.TxHash.Hex(), "block", log.BlockNumber)
		return p.count(Unknown)
	case err != nil:
		p.logger.Warnw("Dropping undecodable log", "error", err, "tx", log.TxHash.Hex(), "block", log.BlockNumber, "log_index", log.Index)
		return p.count(Invalid)
	}

	return p.Apply(context.WithoutCancel(ctx), event)
}

// Apply runs the handler for a decoded event.
func (p *Projector) Apply(ctx context.Context, event models.Event) (outcome Outcome) {
	meta := event.Meta()
	fields := []interface{}{
		"event", event.Kind(),
		"tx", meta.TxHash,
		"block", meta.BlockNumber,
		"log_index", meta.LogIndex,
		"args", event,
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorw("Recovered from panic in event handler", append(fields, "panic", r)...)
			outcome = p.count(Failed)
		}
	}()

	err := p.handle(ctx, event)
	switch {
	case err == nil:
		p.logger.Infow("Event applied", fields...)
		return p.count(Applied)
	case errors.Is(err, models.ErrDuplicate):
		p.logger.Debugw("Event already processed", fields...)
		return p.count(Duplicate)
	case errors.Is(err, errMissingRef):
		p.logger.Warnw("Event dropped", append(fields, "reason", err.Error())...)
		return p.count(Skipped)
	default:
		p.logger.Errorw("Event handler failed", append(fields, "error", err)...)
		return p.count(Failed)
	}
}

func (p *Projector) handle(ctx context.Context, event models.Event) error {
	switch ev := event.(type) {
	case models.UserRegistered:
		return p.userRegistered(ctx, ev)
	case models.SlotPurchased:
		return p.slotPurchased(ctx, ev)
	case models.MatrixIncomePaid:
		slot := ev.SlotNumber
		return p.income(ctx, ev.EventMeta, models.EventMatrixIncomePaid, models.IncomeMatrix, ev.Sender, ev.Receiver, ev.Amount, &slot, nil)
	case models.LevelIncomePaid:
		level := ev.LevelNumber
		return p.income(ctx, ev.EventMeta, models.EventLevelIncomePaid, models.IncomeLevel, ev.Sender, ev.Receiver, ev.Amount, nil, &level)
	case models.PoolIncomePaid:
		return p.income(ctx, ev.EventMeta, models.EventPoolIncomePaid, models.IncomePool, "", ev.Receiver, ev.Amount, nil, nil)
	case models.Rebirth:
		return p.rebirth(ctx, ev)
	case models.AdminFeePaid:
		return p.adminFee(ctx, ev)
	}
	return fmt.Errorf("no handler for %s", event.Kind())
}

// Stats returns the outcome counters.
func (p *Projector) Stats() models.ProjectionStats {
	return models.ProjectionStats{
		Applied:    p.applied.Load(),
		Duplicates: p.duplicates.Load(),
		Skipped:    p.skipped.Load(),
		Failed:     p.failed.Load(),
		Unknown:    p.unknown.Load(),
		Invalid:    p.invalid.Load(),
	}
}

func (p *Projector) count(o Outcome) Outcome {
	switch o {
	case Applied:
		p.applied.Add(1)
	case Duplicate:
		p.duplicates.Add(1)
	case Skipped:
		p.skipped.Add(1)
	case Failed:
		p.failed.Add(1)
	case Unknown:
		p.unknown.Add(1)
	case Invalid:
		p.invalid.Add(1)
	}
	return o
}

// gasUsed looks up the receipt outside the ledger transaction. Failures store 0.
func (p *Projector) gasUsed(ctx context.Context, meta models.EventMeta) uint64 {
	if !p.config.FetchGasUsed || p.chain == nil {
		return 0
	}
	gas, err := p.chain.GasUsed(ctx, common.HexToHash(meta.TxHash))
	if err != nil {
		p.logger.Warnw("Failed to fetch gas used", "tx", meta.TxHash, "error", err)
		return 0
	}
	return gas
}

func missing(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errMissingRef, fmt.Sprintf(format, args...))
}
