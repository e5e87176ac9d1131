package models

import (
	"context"
	"fmt"
)

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

type Webhook struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"data"`
}

// NotificationService delivers notifications. Callers treat every method as
// fire-and-forget; the error only feeds logging.
type NotificationService interface {
	SendEmail(ctx context.Context, email Email) error
	SendWebhook(ctx context.Context, hook Webhook) error
	SendAlert(ctx context.Context, message string) error
}

// IncomeNotification is the webhook payload for a payout.
type IncomeNotification struct {
	Event       EventKind  `json:"event"`
	User        string     `json:"user"`
	IncomeType  IncomeType `json:"income_type"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	SlotNumber  int        `json:"slot_number,omitempty"`
	LevelNumber int        `json:"level_number,omitempty"`
	TxHash      string     `json:"transaction_hash"`
	Timestamp   int64      `json:"timestamp"`
}

func (n IncomeNotification) String() string {
	switch {
	case n.SlotNumber > 0:
		return fmt.Sprintf("You received %g %s of %s income in slot %d.", n.Amount, n.Currency, n.IncomeType, n.SlotNumber)
	case n.LevelNumber > 0:
		return fmt.Sprintf("You received %g %s of %s income from level %d.", n.Amount, n.Currency, n.IncomeType, n.LevelNumber)
	}
	return fmt.Sprintf("You received %g %s of %s income.", n.Amount, n.Currency, n.IncomeType)
}
