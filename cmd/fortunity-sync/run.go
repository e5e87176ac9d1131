package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/core-coin/fortunity-sync/internal/blockchain"
	"github.com/core-coin/fortunity-sync/internal/config"
	"github.com/core-coin/fortunity-sync/internal/http_api"
	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/internal/notificator"
	"github.com/core-coin/fortunity-sync/internal/projector"
	"github.com/core-coin/fortunity-sync/internal/repository"
	"github.com/core-coin/fortunity-sync/internal/syncer"
	"github.com/core-coin/fortunity-sync/internal/wellknown"
	"github.com/core-coin/fortunity-sync/pkg/logger"
	"github.com/core-coin/fortunity-sync/pkg/validation"
)

const drainTimeout = 30 * time.Second

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	cursors, closeCursors, err := openCursorStore(cfg, store, log)
	if err != nil {
		return err
	}
	defer closeCursors()

	var locks models.LockStore
	if cfg.LockEnabled {
		locks = store
	}

	// Initialize blockchain service
	node, err := blockchain.NewGocore(cfg.BlockchainServiceURL, cfg.SmartContractAddress, log)
	if err != nil {
		return err
	}
	if err := node.Run(); err != nil {
		return err
	}
	defer node.Close()

	token := wellknown.NewWellKnownService(log, cfg, node).ResolvePayoutToken(ctx, cfg.PayoutTokenAddress)

	contractABI, err := blockchain.LoadABI(cfg.ContractABIPath)
	if err != nil {
		return err
	}
	decoder := blockchain.NewDecoder(contractABI, token.Decimals)
	scanner := blockchain.NewScanner(node, cfg.LogWindowSize, cfg.LogFetchRate, log)

	// Initialize notificator
	queue := notificator.NewQueue(cfg.NotificationConcurrency, log)
	notif, err := newNotificator(cfg, queue, log)
	if err != nil {
		return err
	}

	proj := projector.New(store, node, decoder, notif, projector.Config{
		ContractAddress: validation.NormalizeAddress(cfg.SmartContractAddress),
		FetchGasUsed:    cfg.FetchGasUsed,
		Token:           token,
	}, log)

	engine := syncer.NewSyncer(scanner, proj, cursors, locks, notif, syncer.Config{
		InstanceID:                 instanceID(),
		CursorName:                 cfg.CursorName(),
		StartBlock:                 cfg.StartBlock,
		HandoverOverlapBlocks:      cfg.HandoverOverlapBlocks,
		LiveReconnectDelay:         cfg.LiveReconnectDelay,
		HistoricalRetryInterval:    cfg.HistoricalRetryInterval,
		HistoricalRetryMaxInterval: cfg.HistoricalRetryMaxInterval,
		LockEnabled:                cfg.LockEnabled,
		LockTTL:                    cfg.LockTTL,
	}, log)

	if notif.TelegramNotificator != nil {
		notif.TelegramNotificator.SetStatusProvider(engine)
		go notif.TelegramNotificator.Start(ctx)
	}

	apiServer := http_api.NewHTTPServer(engine, store, cfg.APIPort, cfg.Development, log)
	go apiServer.Start()

	log.Infow("Fortunity sync started",
		"contract", cfg.SmartContractAddress,
		"network", cfg.GetNetworkName(),
		"token", token.Symbol,
		"cursor", cfg.CursorName(),
	)
	runErr := engine.Run(ctx)

	log.Info("Shutting down")
	if err := apiServer.Shutdown(); err != nil {
		log.Errorw("Failed to stop HTTP server", "error", err)
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := queue.Close(drainCtx); err != nil {
		log.Warnw("Notification queue not drained", "error", err, "pending", queue.Pending())
	}
	return runErr
}

// openCursorStore picks the cursor backend. The returned close func is never nil.
func openCursorStore(cfg *config.Config, store *repository.Store, log *logger.Logger) (models.CursorStore, func(), error) {
	switch cfg.CursorBackend {
	case config.CursorBackendNone:
		log.Warn("Cursor persistence disabled, every start replays from START_BLOCK")
		return nil, func() {}, nil
	case config.CursorBackendRedis:
		redisCursors, err := repository.NewRedisCursorStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return nil, nil, err
		}
		return redisCursors, func() { redisCursors.Close() }, nil
	}
	return store, func() {}, nil
}

func newNotificator(cfg *config.Config, queue *notificator.Queue, log *logger.Logger) (*notificator.Notificator, error) {
	var (
		email    *notificator.EmailNotificator
		webhook  *notificator.WebhookNotificator
		telegram *notificator.TelegramNotificator
	)
	if cfg.SMTPHost != "" {
		email = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender)
	}
	if cfg.WebhookURL != "" {
		webhook = notificator.NewWebhookNotificator(log, cfg.WebhookURL)
	}
	if cfg.TelegramBotToken != "" {
		var err error
		telegram, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramAlertChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram: %w", err)
		}
	}
	return notificator.NewNotificator(log, queue, telegram, email, webhook), nil
}

func instanceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return host + "-" + uuid.NewString()[:8]
}
