package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

func seedSlots(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	inserted, err := store.SeedSlots(c.Context, models.DefaultSlots())
	if err != nil {
		return fmt.Errorf("failed to seed slots: %w", err)
	}
	log.Infow("Slot catalogue seeded", "inserted", inserted, "total", models.MaxSlotNumber)
	return nil
}
