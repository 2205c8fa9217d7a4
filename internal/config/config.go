package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Environment variable names for configuration that is re-read at request
// time (plan catalog, agent-free allowlist) rather than loaded once.
const (
	EnvPlanCatalogJSON  = "PLUM_PLAN_CATALOG_JSON"
	EnvAgentFreeWallets = "PLUM_AGENT_FREE_WALLETS"
)

// PlanCatalogSource reads the current plan catalog JSON from the environment.
func PlanCatalogSource() string {
	return os.Getenv(EnvPlanCatalogJSON)
}

// AgentFreeWalletsSource reads the current agent-free allowlist from the
// environment.
func AgentFreeWalletsSource() string {
	return os.Getenv(EnvAgentFreeWallets)
}

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Payment  PaymentConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration. An empty URL disables Redis and the
// nonce store falls back to the in-process map.
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// PaymentConfig holds on-chain payment verification settings. Verification is
// disabled when RPCURL or TreasuryAddress is empty.
type PaymentConfig struct {
	RPCURL           string
	TreasuryAddress  string
	ChainID          *int64
	MinConfirmations int
}

// Configured reports whether the essential payment fields are present
func (c PaymentConfig) Configured() bool {
	return c.RPCURL != "" && c.TreasuryAddress != ""
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "plumise"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Payment: LoadPayment(),
	}
}

// LoadPayment parses the payment environment. Values are trimmed; a treasury
// address that fails hex validation is dropped so verification stays disabled
// rather than comparing against garbage.
func LoadPayment() PaymentConfig {
	cfg := PaymentConfig{
		RPCURL:           strings.TrimSpace(os.Getenv("PLUM_CHAIN_RPC_URL")),
		TreasuryAddress:  normalizeAddress(os.Getenv("PLUM_PAYMENT_TREASURY")),
		MinConfirmations: 1,
	}

	if raw := strings.TrimSpace(os.Getenv("PLUM_CHAIN_ID")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.ChainID = &id
		}
	}

	if raw := strings.TrimSpace(os.Getenv("PLUM_PAYMENT_MIN_CONFIRMATIONS")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.MinConfirmations = n
		}
	}

	return cfg
}

// BootErrors validates the payment environment at startup. No payment env at
// all means billing is intentionally disabled and yields no errors; a partial
// configuration is reported so operators can fix it.
func (c PaymentConfig) BootErrors() []string {
	rawRPC := strings.TrimSpace(os.Getenv("PLUM_CHAIN_RPC_URL"))
	rawTreasury := strings.TrimSpace(os.Getenv("PLUM_PAYMENT_TREASURY"))
	rawChainID := strings.TrimSpace(os.Getenv("PLUM_CHAIN_ID"))

	if rawRPC == "" && rawTreasury == "" && rawChainID == "" {
		return nil
	}

	var errs []string
	if rawRPC == "" {
		errs = append(errs, "PLUM_CHAIN_RPC_URL is missing")
	}
	if rawTreasury == "" {
		errs = append(errs, "PLUM_PAYMENT_TREASURY is missing")
	} else if normalizeAddress(rawTreasury) == "" {
		errs = append(errs, "PLUM_PAYMENT_TREASURY is not a valid Ethereum address")
	}
	if rawChainID == "" {
		errs = append(errs, "PLUM_CHAIN_ID is missing")
	} else if _, err := strconv.ParseInt(rawChainID, 10, 64); err != nil {
		errs = append(errs, "PLUM_CHAIN_ID is not a valid number")
	}
	return errs
}

func normalizeAddress(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !common.IsHexAddress(trimmed) {
		return ""
	}
	return common.HexToAddress(trimmed).Hex()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
