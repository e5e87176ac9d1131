package notificator

import (
	"context"
	"errors"
	"fmt"
	"html"
	"runtime/debug"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

// Notificator fans notifications out to the configured channels. Any channel
// may be nil, in which case it is skipped.
type Notificator struct {
	logger *logger.Logger
	queue  *Queue

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
	WebhookNotificator  *WebhookNotificator
}

var _ models.NotificationService = (*Notificator)(nil)

func NewNotificator(logger *logger.Logger, queue *Queue, telNotif *TelegramNotificator, emailNotif *EmailNotificator, webhookNotif *WebhookNotificator) *Notificator {
	return &Notificator{
		logger:              logger,
		queue:               queue,
		TelegramNotificator: telNotif,
		EmailNotificator:    emailNotif,
		WebhookNotificator:  webhookNotif,
	}
}

// safeCall runs a function with panic recovery and turns the panic into an error.
func (n *Notificator) safeCall(fn func() error, context string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Errorw("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("%s panicked: %v", context, r)
		}
	}()
	return fn()
}

func (n *Notificator) SendEmail(ctx context.Context, email models.Email) error {
	if n.EmailNotificator == nil {
		return nil
	}
	return n.safeCall(func() error { return n.EmailNotificator.Send(ctx, email) }, "emailNotification")
}

func (n *Notificator) SendWebhook(ctx context.Context, hook models.Webhook) error {
	if n.WebhookNotificator == nil {
		return nil
	}
	return n.safeCall(func() error { return n.WebhookNotificator.Send(ctx, hook) }, "webhookNotification")
}

func (n *Notificator) SendAlert(ctx context.Context, message string) error {
	if n.TelegramNotificator == nil {
		n.logger.Warnw("Operator alert", "message", message)
		return nil
	}
	return n.safeCall(func() error { return n.TelegramNotificator.SendAlert(ctx, message) }, "telegramAlert")
}

// NotifyIncome queues the payout email and webhook. It never blocks.
func (n *Notificator) NotifyIncome(user *models.User, income models.IncomeNotification) {
	email := ""
	if user != nil {
		email = user.Email
	}
	n.queue.Enqueue("income:"+income.TxHash, func(ctx context.Context) error {
		var errs []error
		if email != "" {
			text := income.String()
			if err := n.SendEmail(ctx, models.Email{
				To:      email,
				Subject: "You received a payout",
				Text:    text,
				HTML:    "<p>" + html.EscapeString(text) + "</p>",
			}); err != nil {
				errs = append(errs, err)
			}
		}
		if err := n.SendWebhook(ctx, models.Webhook{Event: string(income.Event), Payload: income}); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
}

// Alert queues an operator alert.
func (n *Notificator) Alert(message string) {
	n.queue.Enqueue("alert", func(ctx context.Context) error {
		return n.SendAlert(ctx, message)
	})
}
