package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"slices"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

type Config struct {
	RunAddress  string `env:"RUN_ADDRESS" envDefault:"localhost:8084"`
	DatabaseURI string `env:"DATABASE_URI" envDefault:""`
	SecretKey   string `env:"KEY" envDefault:""`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	DefaultAsset    string          `env:"DEFAULT_ASSET" envDefault:"USDT"`
	SupportedAssets []string        `env:"SUPPORTED_ASSETS" envDefault:"USDT,TRX" envSeparator:","`
	MinWithdrawal   decimal.Decimal `env:"MIN_WITHDRAWAL" envDefault:"10"`
	MaxWithdrawal   decimal.Decimal `env:"MAX_WITHDRAWAL" envDefault:"10000"`
	WithdrawalFee   decimal.Decimal `env:"WITHDRAWAL_FEE_RATE" envDefault:"0.005"`
	AdminLogins     []string        `env:"ADMIN_LOGINS" envSeparator:","`

	BlockchainAddress string        `env:"BLOCKCHAIN_ADDRESS" envDefault:"http://localhost:8090"`
	BlockchainKey     string        `env:"BLOCKCHAIN_KEY" envDefault:""`
	HotWalletAddress  string        `env:"HOT_WALLET_ADDRESS" envDefault:""`
	SendTimeout       time.Duration `env:"SEND_TIMEOUT" envDefault:"30s"`

	SettlementStaleAfter time.Duration `env:"SETTLEMENT_STALE_AFTER" envDefault:"10m"`
	WatchInterval        time.Duration `env:"WATCH_INTERVAL" envDefault:"1m"`

	RateLimit float64 `env:"RATE_LIMIT" envDefault:"10"`
	RateBurst int     `env:"RATE_BURST" envDefault:"20"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) ParseFlags() {
	var (
		runAddress        string
		dbURI             string
		blockchainAddress string
		secretKey         string
		logLevel          string
	)

	flag.StringVar(&runAddress, "a", "", "address host:port")
	flag.StringVar(&dbURI, "d", "", "database dsn, empty keeps the in-memory store")
	flag.StringVar(&blockchainAddress, "b", "", "blockchain gateway url")
	flag.StringVar(&secretKey, "k", "", "secret key to sign tokens")
	flag.StringVar(&logLevel, "l", "", "log level")

	flag.Parse()

	if runAddress != "" {
		cfg.RunAddress = runAddress
	}

	if dbURI != "" {
		cfg.DatabaseURI = dbURI
	}

	if blockchainAddress != "" {
		cfg.BlockchainAddress = blockchainAddress
	}

	if secretKey != "" {
		cfg.SecretKey = secretKey
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

func (cfg *Config) Validate() error {
	host, port, err := net.SplitHostPort(cfg.RunAddress)
	if err != nil || !govalidator.IsPort(port) || (host != "" && !govalidator.IsHost(host)) {
		return fmt.Errorf("invalid run address %q", cfg.RunAddress)
	}

	if cfg.SecretKey == "" {
		return errors.New("secret key is required")
	}

	if !govalidator.IsURL(cfg.BlockchainAddress) {
		return fmt.Errorf("invalid blockchain address %q", cfg.BlockchainAddress)
	}

	if cfg.DefaultAsset == "" || !slices.Contains(cfg.SupportedAssets, cfg.DefaultAsset) {
		return fmt.Errorf("default asset %q is not supported", cfg.DefaultAsset)
	}

	if !cfg.MinWithdrawal.IsPositive() || cfg.MaxWithdrawal.LessThan(cfg.MinWithdrawal) {
		return fmt.Errorf("invalid withdrawal limits %s..%s", cfg.MinWithdrawal, cfg.MaxWithdrawal)
	}

	if cfg.WithdrawalFee.IsNegative() || cfg.WithdrawalFee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid withdrawal fee rate %s", cfg.WithdrawalFee)
	}

	if cfg.SendTimeout <= 0 || cfg.SettlementStaleAfter <= 0 || cfg.WatchInterval <= 0 {
		return errors.New("timeouts and intervals must be positive")
	}

	if cfg.SettlementStaleAfter <= cfg.SendTimeout {
		return errors.New("settlement stale timeout must exceed the send timeout")
	}

	return nil
}
