package config

import (
	"strings"
	"testing"
	"time"
)

const testContract = "cb" + "00112233445566778899aabbccddeeff0011223344"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SMART_CONTRACT_ADDRESS", testContract)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogWindowSize != 10000 {
		t.Fatalf("LogWindowSize = %d, want 10000", cfg.LogWindowSize)
	}
	if cfg.LiveReconnectDelay != 60*time.Second {
		t.Fatalf("LiveReconnectDelay = %v, want 60s", cfg.LiveReconnectDelay)
	}
	if cfg.NotificationConcurrency != 2 {
		t.Fatalf("NotificationConcurrency = %d, want 2", cfg.NotificationConcurrency)
	}
	if cfg.CursorBackend != CursorBackendPostgres {
		t.Fatalf("CursorBackend = %q, want %q", cfg.CursorBackend, CursorBackendPostgres)
	}
	if cfg.GetNetworkName() != "xcb" {
		t.Fatalf("GetNetworkName = %q, want xcb", cfg.GetNetworkName())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SMART_CONTRACT_ADDRESS", "0x"+strings.ToUpper(testContract))
	t.Setenv("START_BLOCK", "1200")
	t.Setenv("LOG_WINDOW_SIZE", "500")
	t.Setenv("LIVE_RECONNECT_DELAY", "5s")
	t.Setenv("HISTORICAL_RETRY_INTERVAL", "2s")
	t.Setenv("CURSOR_BACKEND", "REDIS")
	t.Setenv("NETWORK_ID", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StartBlock != 1200 || cfg.LogWindowSize != 500 {
		t.Fatalf("blocks = %d/%d, want 1200/500", cfg.StartBlock, cfg.LogWindowSize)
	}
	if cfg.LiveReconnectDelay != 5*time.Second {
		t.Fatalf("LiveReconnectDelay = %v, want 5s", cfg.LiveReconnectDelay)
	}
	if cfg.HistoricalRetryInterval != 2*time.Second {
		t.Fatalf("HistoricalRetryInterval = %v, want 2s", cfg.HistoricalRetryInterval)
	}
	if cfg.CursorBackend != CursorBackendRedis {
		t.Fatalf("CursorBackend = %q, want redis", cfg.CursorBackend)
	}
	if cfg.CursorName() != "cursor:"+testContract {
		t.Fatalf("CursorName = %q", cfg.CursorName())
	}
	if cfg.GetNetworkName() != "xab" {
		t.Fatalf("GetNetworkName = %q, want xab", cfg.GetNetworkName())
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			SmartContractAddress:    testContract,
			BlockchainServiceURL:    "ws://localhost:8546",
			DBDriver:                DBDriverSQLite,
			SQLitePath:              "test.db",
			CursorBackend:           CursorBackendNone,
			LogWindowSize:           10,
			NotificationConcurrency: 2,
			AmountDecimals:          18,
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing contract", mutate: func(c *Config) { c.SmartContractAddress = "" }},
		{name: "bad contract", mutate: func(c *Config) { c.SmartContractAddress = "cb01" }},
		{name: "missing node url", mutate: func(c *Config) { c.BlockchainServiceURL = "" }},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mongo" }},
		{name: "unknown cursor backend", mutate: func(c *Config) { c.CursorBackend = "etcd" }},
		{name: "zero window", mutate: func(c *Config) { c.LogWindowSize = 0 }},
		{name: "zero concurrency", mutate: func(c *Config) { c.NotificationConcurrency = 0 }},
		{name: "short lock ttl", mutate: func(c *Config) { c.LockEnabled = true; c.LockTTL = time.Millisecond }},
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate = nil, want error")
			}
		})
	}
}
