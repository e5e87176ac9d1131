package models

// EventKind names one of the contract events the engine projects.
type EventKind string

const (
	EventUserRegistered   EventKind = "UserRegistered"
	EventSlotPurchased    EventKind = "SlotPurchased"
	EventMatrixIncomePaid EventKind = "MatrixIncomePaid"
	EventLevelIncomePaid  EventKind = "LevelIncomePaid"
	EventPoolIncomePaid   EventKind = "PoolIncomePaid"
	EventRebirth          EventKind = "Rebirth"
	EventAdminFeePaid     EventKind = "AdminFeePaid"
)

// EventKinds lists every projected kind.
var EventKinds = []EventKind{
	EventUserRegistered,
	EventSlotPurchased,
	EventMatrixIncomePaid,
	EventLevelIncomePaid,
	EventPoolIncomePaid,
	EventRebirth,
	EventAdminFeePaid,
}

// IsKnownEvent reports whether name is one of the projected kinds.
func IsKnownEvent(name string) bool {
	for _, k := range EventKinds {
		if string(k) == name {
			return true
		}
	}
	return false
}

// EventMeta locates the log entry an event was decoded from.
type EventMeta struct {
	TxHash      string
	BlockNumber uint64
	BlockHash   string
	LogIndex    uint
}

func (m EventMeta) Meta() EventMeta { return m }

// Event is a decoded contract event.
type Event interface {
	Kind() EventKind
	Meta() EventMeta
}

// Amount is a token amount as emitted and scaled to token units.
// Raw is the exact base-unit integer in decimal and is the authoritative value.
// Value is a float64 convenience for earnings totals and may lose precision
// beyond about 15 significant digits.
type Amount struct {
	Raw   string
	Value float64
}

type UserRegistered struct {
	EventMeta
	Wallet       string
	Username     string
	ReferralCode string
}

type SlotPurchased struct {
	EventMeta
	Wallet     string
	SlotNumber int
}

type MatrixIncomePaid struct {
	EventMeta
	Sender     string
	Receiver   string
	SlotNumber int
	Amount     Amount
}

type LevelIncomePaid struct {
	EventMeta
	Sender      string
	Receiver    string
	LevelNumber int
	Amount      Amount
}

type PoolIncomePaid struct {
	EventMeta
	Receiver string
	Amount   Amount
}

type Rebirth struct {
	EventMeta
	Wallet     string
	SlotNumber int
}

type AdminFeePaid struct {
	EventMeta
	Receiver string
	Amount   Amount
}

func (UserRegistered) Kind() EventKind   { return EventUserRegistered }
func (SlotPurchased) Kind() EventKind    { return EventSlotPurchased }
func (MatrixIncomePaid) Kind() EventKind { return EventMatrixIncomePaid }
func (LevelIncomePaid) Kind() EventKind  { return EventLevelIncomePaid }
func (PoolIncomePaid) Kind() EventKind   { return EventPoolIncomePaid }
func (Rebirth) Kind() EventKind          { return EventRebirth }
func (AdminFeePaid) Kind() EventKind     { return EventAdminFeePaid }
