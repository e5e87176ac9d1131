package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/core-coin/go-core/v2/common"
	"github.com/joho/godotenv"

	"github.com/core-coin/fortunity-sync/pkg/validation"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CursorBackendPostgres = "postgres"
	CursorBackendRedis    = "redis"
	CursorBackendNone     = "none"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int

	// Database configuration
	DBDriver         string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	SQLitePath       string

	// Blockchain configuration
	SmartContractAddress string
	BlockchainServiceURL string
	NetworkID            *big.Int
	ContractABIPath      string
	StartBlock           uint64
	LogWindowSize        uint64
	LogFetchRate         float64
	AmountDecimals       int
	FetchGasUsed         bool

	// Supervisor configuration
	LiveReconnectDelay         time.Duration
	HistoricalRetryInterval    time.Duration
	HistoricalRetryMaxInterval time.Duration
	HandoverOverlapBlocks      uint64

	// Cursor persistence
	CursorBackend string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Single-writer lease
	LockEnabled bool
	LockTTL     time.Duration

	// Notification configuration
	NotificationConcurrency int
	SMTPHost                string
	SMTPPort                int
	SMTPUser                string
	SMTPPassword            string
	SMTPSender              string
	WebhookURL              string
	TelegramBotToken        string
	TelegramAlertChatID     string

	// Well-known configuration
	WellKnownURL       string
	PayoutTokenAddress string
}

// GetNetworkName returns the network name for well-known API based on NetworkID
// NetworkID 1 = xcb (mainnet), NetworkID 3 = xab (devin testnet)
func (c *Config) GetNetworkName() string {
	if c.NetworkID.Cmp(big.NewInt(1)) == 0 {
		return "xcb"
	}
	return "xab"
}

// CursorName is the key under which the backfill cursor is persisted.
// It is scoped by contract so one database can serve several deployments.
func (c *Config) CursorName() string {
	return "cursor:" + validation.NormalizeAddress(c.SmartContractAddress)
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		DBDriver:         getEnv("DB_DRIVER", DBDriverPostgres),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "fortunity"),
		SQLitePath:       getEnv("SQLITE_PATH", "fortunity.db"),

		SmartContractAddress: getEnv("SMART_CONTRACT_ADDRESS", ""),
		BlockchainServiceURL: getEnv("BLOCKCHAIN_SERVICE_URL", "ws://localhost:8546"),
		NetworkID:            getEnvAsBigInt("NETWORK_ID", big.NewInt(1)), // Default to Mainnet ID
		ContractABIPath:      getEnv("CONTRACT_ABI_PATH", ""),
		StartBlock:           getEnvAsUint64("START_BLOCK", 0),
		LogWindowSize:        getEnvAsUint64("LOG_WINDOW_SIZE", 10000),
		LogFetchRate:         getEnvAsFloat("LOG_FETCH_RATE", 5),
		AmountDecimals:       getEnvAsInt("AMOUNT_DECIMALS", 18),
		FetchGasUsed:         getEnvAsBool("FETCH_GAS_USED", true),

		LiveReconnectDelay:         getEnvAsDuration("LIVE_RECONNECT_DELAY", 60*time.Second),
		HistoricalRetryInterval:    getEnvAsDuration("HISTORICAL_RETRY_INTERVAL", 500*time.Millisecond),
		HistoricalRetryMaxInterval: getEnvAsDuration("HISTORICAL_RETRY_MAX_INTERVAL", 5*time.Minute),
		HandoverOverlapBlocks:      getEnvAsUint64("HANDOVER_OVERLAP_BLOCKS", 5),

		CursorBackend: strings.ToLower(getEnv("CURSOR_BACKEND", CursorBackendPostgres)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		LockEnabled: getEnvAsBool("LOCK_ENABLED", true),
		LockTTL:     getEnvAsDuration("LOCK_TTL", 30*time.Second),

		NotificationConcurrency: getEnvAsInt("NOTIFICATION_CONCURRENCY", 2),
		SMTPHost:                getEnv("SMTP_HOST", ""),
		SMTPPort:                getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:                getEnv("SMTP_USER", ""),
		SMTPPassword:            getEnv("SMTP_PASSWORD", ""),
		SMTPSender:              getEnv("SMTP_SENDER", ""),
		WebhookURL:              getEnv("WEBHOOK_URL", ""),
		TelegramBotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAlertChatID:     getEnv("TELEGRAM_ALERT_CHAT_ID", ""),

		APIPort: getEnvAsInt("API_PORT", 6532),

		WellKnownURL:       getEnv("WELL_KNOWN_URL", "https://coreblockchain.net"),
		PayoutTokenAddress: getEnv("PAYOUT_TOKEN_ADDRESS", ""),
	}

	// Set default network ID before validation (required for address validation)
	common.DefaultNetworkID = common.NetworkID(cfg.NetworkID.Int64())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.SmartContractAddress == "" {
		return fmt.Errorf("SMART_CONTRACT_ADDRESS is required")
	}
	if err := validation.ValidateAddress(c.SmartContractAddress); err != nil {
		return fmt.Errorf("invalid SMART_CONTRACT_ADDRESS format: %w", err)
	}

	if c.BlockchainServiceURL == "" {
		return fmt.Errorf("BLOCKCHAIN_SERVICE_URL is required")
	}

	switch c.DBDriver {
	case DBDriverPostgres:
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	case DBDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.CursorBackend {
	case CursorBackendPostgres, CursorBackendNone:
	case CursorBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis cursor backend")
		}
	default:
		return fmt.Errorf("unsupported CURSOR_BACKEND %q", c.CursorBackend)
	}

	if c.LogWindowSize == 0 {
		return fmt.Errorf("LOG_WINDOW_SIZE must be greater than zero")
	}
	if c.NotificationConcurrency <= 0 {
		return fmt.Errorf("NOTIFICATION_CONCURRENCY must be greater than zero")
	}
	if c.AmountDecimals < 0 || c.AmountDecimals > 36 {
		return fmt.Errorf("AMOUNT_DECIMALS must be between 0 and 36")
	}
	if c.LockEnabled && c.LockTTL < time.Second {
		return fmt.Errorf("LOCK_TTL must be at least one second")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsUint64(name string, defaultValue uint64) uint64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseUint(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBigInt(name string, defaultValue *big.Int) *big.Int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, ok := new(big.Int).SetString(valueStr, 10); ok {
			return value
		}
	}
	return defaultValue
}
