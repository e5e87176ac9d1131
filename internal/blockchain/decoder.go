package blockchain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/core-coin/go-core/v2/accounts/abi"
	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/core/types"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/validation"
)

// UnknownEventError is returned for logs that are not one of the projected events.
type UnknownEventError struct {
	Name string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %s", e.Name)
}

// InvalidEventError is returned when a known event carries malformed arguments.
type InvalidEventError struct {
	Kind models.EventKind
	Err  error
}

func (e *InvalidEventError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("invalid event: %v", e.Err)
	}
	return fmt.Sprintf("invalid %s event: %v", e.Kind, e.Err)
}

func (e *InvalidEventError) Unwrap() error { return e.Err }

// IsUnknownEvent reports whether err is an UnknownEventError.
func IsUnknownEvent(err error) bool {
	var target *UnknownEventError
	return errors.As(err, &target)
}

// IsInvalidEvent reports whether err is an InvalidEventError.
func IsInvalidEvent(err error) bool {
	var target *InvalidEventError
	return errors.As(err, &target)
}

// Decoder turns raw contract logs into typed events.
type Decoder struct {
	contractABI abi.ABI
	decimals    int
}

func NewDecoder(contractABI abi.ABI, decimals int) *Decoder {
	return &Decoder{contractABI: contractABI, decimals: decimals}
}

// Decode maps a log to its event. Arguments are taken in ABI input order.
func (d *Decoder) Decode(log types.Log) (models.Event, error) {
	if len(log.Topics) == 0 {
		return nil, &UnknownEventError{Name: "anonymous"}
	}
	event, err := d.contractABI.EventByID(log.Topics[0])
	if err != nil {
		return nil, &UnknownEventError{Name: log.Topics[0].Hex()}
	}
	if !models.IsKnownEvent(event.Name) {
		return nil, &UnknownEventError{Name: event.Name}
	}
	kind := models.EventKind(event.Name)

	args, err := positionalArgs(event, log)
	if err != nil {
		return nil, &InvalidEventError{Kind: kind, Err: err}
	}

	meta := models.EventMeta{
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		LogIndex:    log.Index,
	}
	decoded, err := d.build(kind, meta, args)
	if err != nil {
		return nil, &InvalidEventError{Kind: kind, Err: err}
	}
	return decoded, nil
}

func (d *Decoder) build(kind models.EventKind, meta models.EventMeta, a argList) (models.Event, error) {
	switch kind {
	case models.EventUserRegistered:
		if err := a.want(3); err != nil {
			return nil, err
		}
		wallet, err := a.address(0)
		if err != nil {
			return nil, err
		}
		username, err := a.text(1)
		if err != nil {
			return nil, err
		}
		code, err := a.text(2)
		if err != nil {
			return nil, err
		}
		return models.UserRegistered{EventMeta: meta, Wallet: wallet, Username: username, ReferralCode: code}, nil

	case models.EventSlotPurchased, models.EventRebirth:
		if err := a.want(2); err != nil {
			return nil, err
		}
		wallet, err := a.address(0)
		if err != nil {
			return nil, err
		}
		slot, err := a.slot(1)
		if err != nil {
			return nil, err
		}
		if kind == models.EventRebirth {
			return models.Rebirth{EventMeta: meta, Wallet: wallet, SlotNumber: slot}, nil
		}
		return models.SlotPurchased{EventMeta: meta, Wallet: wallet, SlotNumber: slot}, nil

	case models.EventMatrixIncomePaid, models.EventLevelIncomePaid:
		if err := a.want(4); err != nil {
			return nil, err
		}
		sender, err := a.address(0)
		if err != nil {
			return nil, err
		}
		receiver, err := a.address(1)
		if err != nil {
			return nil, err
		}
		amount, err := d.amount(a, 3)
		if err != nil {
			return nil, err
		}
		if kind == models.EventMatrixIncomePaid {
			slot, err := a.slot(2)
			if err != nil {
				return nil, err
			}
			return models.MatrixIncomePaid{EventMeta: meta, Sender: sender, Receiver: receiver, SlotNumber: slot, Amount: amount}, nil
		}
		level, err := a.smallInt(2)
		if err != nil {
			return nil, err
		}
		return models.LevelIncomePaid{EventMeta: meta, Sender: sender, Receiver: receiver, LevelNumber: level, Amount: amount}, nil

	case models.EventPoolIncomePaid, models.EventAdminFeePaid:
		if err := a.want(2); err != nil {
			return nil, err
		}
		receiver, err := a.address(0)
		if err != nil {
			return nil, err
		}
		amount, err := d.amount(a, 1)
		if err != nil {
			return nil, err
		}
		if kind == models.EventAdminFeePaid {
			return models.AdminFeePaid{EventMeta: meta, Receiver: receiver, Amount: amount}, nil
		}
		return models.PoolIncomePaid{EventMeta: meta, Receiver: receiver, Amount: amount}, nil
	}
	return nil, fmt.Errorf("no decoder for %s", kind)
}

func (d *Decoder) amount(a argList, i int) (models.Amount, error) {
	raw, err := a.bigInt(i)
	if err != nil {
		return models.Amount{}, err
	}
	if raw.Sign() < 0 {
		return models.Amount{}, fmt.Errorf("argument %d: negative amount", i)
	}
	return models.Amount{Raw: raw.String(), Value: ScaleAmount(raw, d.decimals)}, nil
}

// positionalArgs merges indexed topics and unpacked data back into ABI input order.
func positionalArgs(event *abi.Event, log types.Log) (argList, error) {
	data, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack data: %w", err)
	}

	args := make(argList, 0, len(event.Inputs))
	topic, field := 1, 0
	for _, input := range event.Inputs {
		if !input.Indexed {
			if field >= len(data) {
				return nil, fmt.Errorf("missing data field %s", input.Name)
			}
			args = append(args, data[field])
			field++
			continue
		}
		if topic >= len(log.Topics) {
			return nil, fmt.Errorf("missing topic for %s", input.Name)
		}
		args = append(args, topicValue(input.Type, log.Topics[topic]))
		topic++
	}
	return args, nil
}

func topicValue(t abi.Type, topic common.Hash) interface{} {
	switch t.T {
	case abi.AddressTy:
		return common.BytesToAddress(topic.Bytes())
	case abi.UintTy, abi.IntTy:
		return new(big.Int).SetBytes(topic.Bytes())
	}
	// Dynamic indexed values are only available as their hash.
	return topic.Hex()
}

type argList []interface{}

func (a argList) want(n int) error {
	if len(a) < n {
		return fmt.Errorf("expected %d arguments, got %d", n, len(a))
	}
	return nil
}

func (a argList) address(i int) (string, error) {
	addr, ok := a[i].(common.Address)
	if !ok {
		return "", fmt.Errorf("argument %d: expected address, got %T", i, a[i])
	}
	return validation.NormalizeAddress(addr.Hex()), nil
}

func (a argList) text(i int) (string, error) {
	s, ok := a[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d: expected string, got %T", i, a[i])
	}
	return s, nil
}

func (a argList) bigInt(i int) (*big.Int, error) {
	n, ok := a[i].(*big.Int)
	if !ok || n == nil {
		return nil, fmt.Errorf("argument %d: expected integer, got %T", i, a[i])
	}
	return n, nil
}

func (a argList) smallInt(i int) (int, error) {
	n, err := a.bigInt(i)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Int64() < 0 || n.Int64() > 1<<31-1 {
		return 0, fmt.Errorf("argument %d: %s out of range", i, n)
	}
	return int(n.Int64()), nil
}

func (a argList) slot(i int) (int, error) {
	n, err := a.smallInt(i)
	if err != nil {
		return 0, err
	}
	if !models.ValidSlotNumber(n) {
		return 0, fmt.Errorf("slot number %d out of range", n)
	}
	return n, nil
}
