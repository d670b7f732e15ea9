package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Withdrawal WithdrawalConfig `mapstructure:"withdrawal"`
	Rates      RatesConfig      `mapstructure:"rates"`
	Payout     PayoutConfig     `mapstructure:"payout"`
	Deposit    DepositConfig    `mapstructure:"deposit"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LedgerConfig holds the money-movement business parameters.
type LedgerConfig struct {
	// TransferFeeRate is the fraction of the sent amount charged to the
	// sender on top of the amount (e.g. "0.018" = 1.8%).
	TransferFeeRate string `mapstructure:"transfer_fee_rate"`
	// SwapSpread is the fraction shaved off the market rate on swaps.
	SwapSpread string `mapstructure:"swap_spread"`
}

type WithdrawalConfig struct {
	MinAmount string `mapstructure:"min_amount"`
	MaxAmount string `mapstructure:"max_amount"`
}

type RatesConfig struct {
	// URL of the live rate source; empty disables the live source and the
	// static fallback table serves every known pair.
	URL      string        `mapstructure:"url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type PayoutConfig struct {
	// URL of the blockchain RPC bridge that executes withdrawals.
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DepositConfig struct {
	// WebhookSecret is the shared secret used to verify deposit
	// notification signatures (HMAC-SHA256 of the raw body).
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type WorkerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BackoffBase  time.Duration `mapstructure:"backoff_base"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: LGR_.
// Nested keys use underscore: LGR_DATABASE_HOST, LGR_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "remit_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "remit-ledger")
	v.SetDefault("ledger.transfer_fee_rate", "0.018")
	v.SetDefault("ledger.swap_spread", "0.005")
	v.SetDefault("withdrawal.min_amount", "0.0001")
	v.SetDefault("withdrawal.max_amount", "10")
	v.SetDefault("rates.url", "")
	v.SetDefault("rates.timeout", "5s")
	v.SetDefault("rates.cache_ttl", "30s")
	v.SetDefault("payout.url", "http://localhost:9090")
	v.SetDefault("payout.timeout", "30s")
	v.SetDefault("deposit.webhook_secret", "")
	v.SetDefault("worker.poll_interval", "2s")
	v.SetDefault("worker.max_attempts", 5)
	v.SetDefault("worker.backoff_base", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: LGR_DATABASE_HOST -> database.host
	v.SetEnvPrefix("LGR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
