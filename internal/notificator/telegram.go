package notificator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

// TelegramNotificator sends operator alerts to one chat and answers /status there.
type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot
	chatID string

	mu     sync.RWMutex
	status models.StatusProvider
}

func NewTelegramNotificator(logger *logger.Logger, token, chatID string) (*TelegramNotificator, error) {
	provider := &TelegramNotificator{
		logger: logger,
		chatID: chatID,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	provider.bot = b

	return provider, nil
}

// Start polls for updates until ctx is done.
func (t *TelegramNotificator) Start(ctx context.Context) {
	t.bot.Start(ctx)
}

// SetStatusProvider enables the /status command.
func (t *TelegramNotificator) SetStatusProvider(status models.StatusProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

func (t *TelegramNotificator) SendNotification(ctx context.Context, chatID, message string) error {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	if _, err := t.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// SendAlert posts to the operator chat.
func (t *TelegramNotificator) SendAlert(ctx context.Context, message string) error {
	return t.SendNotification(ctx, t.chatID, message)
}

func (t *TelegramNotificator) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil {
		return
	}
	chatID := fmt.Sprint(update.Message.Chat.ID)
	if chatID != t.chatID {
		t.logger.Debug("Ignoring telegram message from chat ", chatID)
		return
	}

	if strings.TrimSpace(update.Message.Text) != "/status" {
		return
	}
	t.mu.RLock()
	status := t.status
	t.mu.RUnlock()
	if status == nil {
		return
	}
	if err := t.SendNotification(ctx, chatID, FormatStatus(status.Status())); err != nil {
		t.logger.Error("Failed to answer /status: ", err)
	}
}

// FormatStatus renders a status for a chat message.
func FormatStatus(s models.SyncStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "State: %s\n", s.State)
	fmt.Fprintf(&b, "Cursor: %d\n", s.Cursor)
	fmt.Fprintf(&b, "Last block: %d\n", s.LastBlock)
	fmt.Fprintf(&b, "Restarts: %d\n", s.Restarts)
	if s.StateChangedAt > 0 {
		fmt.Fprintf(&b, "Since: %s\n", time.Unix(s.StateChangedAt, 0).UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "Applied: %d, duplicates: %d, skipped: %d, failed: %d",
		s.Stats.Applied, s.Stats.Duplicates, s.Stats.Skipped, s.Stats.Failed)
	if s.LastError != "" {
		fmt.Fprintf(&b, "\nLast error: %s", s.LastError)
	}
	return b.String()
}
