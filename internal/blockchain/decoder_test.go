package blockchain

import (
	"math/big"
	"testing"

	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/core/types"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/validation"
)

var (
	alice = common.BytesToAddress([]byte{0xcb, 0x01, 0xaa})
	bob   = common.BytesToAddress([]byte{0xcb, 0x02, 0xbb})
)

func wei(tokens int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(tokens), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func encodeLog(t *testing.T, name string, indexed []common.Address, data ...interface{}) types.Log {
	t.Helper()
	parsed, err := LoadABI("")
	if err != nil {
		t.Fatalf("load abi: %v", err)
	}
	event, ok := parsed.Events[name]
	if !ok {
		t.Fatalf("event %s not in abi", name)
	}
	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		t.Fatalf("pack %s: %v", name, err)
	}
	topics := []common.Hash{event.ID}
	for _, addr := range indexed {
		topics = append(topics, common.BytesToHash(addr.Bytes()))
	}
	return types.Log{
		Topics:      topics,
		Data:        packed,
		BlockNumber: 120,
		TxHash:      common.BytesToHash([]byte(name)),
		Index:       4,
	}
}

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	parsed, err := LoadABI("")
	if err != nil {
		t.Fatalf("load abi: %v", err)
	}
	return NewDecoder(parsed, 18)
}

func TestDecodeKnownEvents(t *testing.T) {
	decoder := newTestDecoder(t)
	a := validation.NormalizeAddress(alice.Hex())
	b := validation.NormalizeAddress(bob.Hex())
	three := models.Amount{Raw: wei(3).String(), Value: 3}

	cases := []struct {
		name string
		log  types.Log
		want models.Event
	}{
		{
			name: "user registered",
			log:  encodeLog(t, "UserRegistered", []common.Address{alice}, "alice", "REF00001"),
			want: models.UserRegistered{Wallet: a, Username: "alice", ReferralCode: "REF00001"},
		},
		{
			name: "slot purchased",
			log:  encodeLog(t, "SlotPurchased", []common.Address{alice}, big.NewInt(3)),
			want: models.SlotPurchased{Wallet: a, SlotNumber: 3},
		},
		{
			name: "matrix income",
			log:  encodeLog(t, "MatrixIncomePaid", []common.Address{alice, bob}, big.NewInt(2), wei(3)),
			want: models.MatrixIncomePaid{Sender: a, Receiver: b, SlotNumber: 2, Amount: three},
		},
		{
			name: "level income",
			log:  encodeLog(t, "LevelIncomePaid", []common.Address{alice, bob}, big.NewInt(7), wei(3)),
			want: models.LevelIncomePaid{Sender: a, Receiver: b, LevelNumber: 7, Amount: three},
		},
		{
			name: "pool income",
			log:  encodeLog(t, "PoolIncomePaid", []common.Address{bob}, wei(3)),
			want: models.PoolIncomePaid{Receiver: b, Amount: three},
		},
		{
			name: "rebirth",
			log:  encodeLog(t, "Rebirth", []common.Address{alice}, big.NewInt(12)),
			want: models.Rebirth{Wallet: a, SlotNumber: 12},
		},
		{
			name: "admin fee",
			log:  encodeLog(t, "AdminFeePaid", []common.Address{bob}, wei(3)),
			want: models.AdminFeePaid{Receiver: b, Amount: three},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decoder.Decode(tc.log)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Kind() != tc.want.Kind() {
				t.Fatalf("kind = %s, want %s", got.Kind(), tc.want.Kind())
			}
			meta := got.Meta()
			if meta.TxHash != tc.log.TxHash.Hex() || meta.BlockNumber != 120 || meta.LogIndex != 4 {
				t.Fatalf("meta = %+v", meta)
			}
			if stripMeta(got) != tc.want {
				t.Fatalf("event = %+v, want %+v", got, tc.want)
			}
		})
	}
}

// stripMeta zeroes the location so payloads compare by value.
func stripMeta(ev models.Event) models.Event {
	switch e := ev.(type) {
	case models.UserRegistered:
		e.EventMeta = models.EventMeta{}
		return e
	case models.SlotPurchased:
		e.EventMeta = models.EventMeta{}
		return e
	case models.MatrixIncomePaid:
		e.EventMeta = models.EventMeta{}
		return e
	case models.LevelIncomePaid:
		e.EventMeta = models.EventMeta{}
		return e
	case models.PoolIncomePaid:
		e.EventMeta = models.EventMeta{}
		return e
	case models.Rebirth:
		e.EventMeta = models.EventMeta{}
		return e
	case models.AdminFeePaid:
		e.EventMeta = models.EventMeta{}
		return e
	}
	return ev
}

func TestDecodeScalesAmounts(t *testing.T) {
	decoder := newTestDecoder(t)
	raw, _ := new(big.Int).SetString("2500000000000000000", 10)

	ev, err := decoder.Decode(encodeLog(t, "PoolIncomePaid", []common.Address{bob}, raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	pool := ev.(models.PoolIncomePaid)
	if pool.Amount.Raw != "2500000000000000000" || pool.Amount.Value != 2.5 {
		t.Fatalf("amount = %+v", pool.Amount)
	}
}

func TestDecodeKeepsExactRawAmount(t *testing.T) {
	decoder := newTestDecoder(t)
	// 27 significant digits do not fit a float64 mantissa.
	raw, _ := new(big.Int).SetString("123456789012345678901234567", 10)

	ev, err := decoder.Decode(encodeLog(t, "PoolIncomePaid", []common.Address{bob}, raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	amount := ev.(models.PoolIncomePaid).Amount
	if amount.Raw != "123456789012345678901234567" {
		t.Fatalf("raw = %s, want exact input", amount.Raw)
	}
	back, ok := new(big.Int).SetString(amount.Raw, 10)
	if !ok || back.Cmp(raw) != 0 {
		t.Fatalf("raw does not round-trip: %s", amount.Raw)
	}
	if amount.Value < 123456789.01 || amount.Value > 123456789.02 {
		t.Fatalf("value = %v, want about 123456789.012", amount.Value)
	}
}

func TestDecodeRejects(t *testing.T) {
	decoder := newTestDecoder(t)

	unknown := types.Log{Topics: []common.Hash{common.BytesToHash([]byte("Transfer"))}}
	if _, err := decoder.Decode(unknown); !IsUnknownEvent(err) {
		t.Fatalf("unrecognised topic err = %v, want unknown event", err)
	}
	if _, err := decoder.Decode(types.Log{}); !IsUnknownEvent(err) {
		t.Fatalf("anonymous log err = %v, want unknown event", err)
	}

	badSlot := encodeLog(t, "SlotPurchased", []common.Address{alice}, big.NewInt(13))
	if _, err := decoder.Decode(badSlot); !IsInvalidEvent(err) {
		t.Fatalf("slot 13 err = %v, want invalid event", err)
	}

	missingTopic := encodeLog(t, "MatrixIncomePaid", []common.Address{alice}, big.NewInt(1), wei(1))
	if _, err := decoder.Decode(missingTopic); !IsInvalidEvent(err) {
		t.Fatalf("missing topic err = %v, want invalid event", err)
	}

	truncated := encodeLog(t, "PoolIncomePaid", []common.Address{bob}, wei(1))
	truncated.Data = truncated.Data[:10]
	if _, err := decoder.Decode(truncated); !IsInvalidEvent(err) {
		t.Fatalf("truncated data err = %v, want invalid event", err)
	}
}

func TestScaleAmount(t *testing.T) {
	cases := []struct {
		raw      *big.Int
		decimals int
		want     float64
	}{
		{nil, 18, 0},
		{big.NewInt(0), 18, 0},
		{wei(50), 18, 50},
		{big.NewInt(1250), 2, 12.5},
		{big.NewInt(7), 0, 7},
	}
	for _, tc := range cases {
		if got := ScaleAmount(tc.raw, tc.decimals); got != tc.want {
			t.Errorf("ScaleAmount(%v, %d) = %v, want %v", tc.raw, tc.decimals, got, tc.want)
		}
	}
}
