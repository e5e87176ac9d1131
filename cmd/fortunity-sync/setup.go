package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/core-coin/fortunity-sync/internal/config"
	"github.com/core-coin/fortunity-sync/internal/repository"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

// loadConfig reads the environment and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	if c.IsSet("db-driver") {
		cfg.DBDriver = c.String("db-driver")
	}
	if c.IsSet("sqlite-path") {
		cfg.SQLitePath = c.String("sqlite-path")
	}
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("blockchain-service-url") {
		cfg.BlockchainServiceURL = c.String("blockchain-service-url")
	}
	if c.IsSet("smart-contract-address") {
		cfg.SmartContractAddress = c.String("smart-contract-address")
	}
	if c.IsSet("start-block") {
		cfg.StartBlock = c.Uint64("start-block")
	}
	if c.IsSet("cursor-backend") {
		cfg.CursorBackend = c.String("cursor-backend")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.Config, log *logger.Logger) (*repository.Store, error) {
	var (
		store *repository.Store
		err   error
	)
	switch cfg.DBDriver {
	case config.DBDriverSQLite:
		store, err = repository.NewSQLiteDB(cfg.SQLitePath, log)
	default:
		store, err = repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	return store, nil
}
