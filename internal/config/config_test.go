package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("KEY", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8084", cfg.RunAddress)
	assert.Equal(t, "USDT", cfg.DefaultAsset)
	assert.Equal(t, []string{"USDT", "TRX"}, cfg.SupportedAssets)
	assert.True(t, cfg.MinWithdrawal.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.MaxWithdrawal.Equal(decimal.NewFromInt(10000)))
	assert.True(t, cfg.WithdrawalFee.Equal(decimal.RequireFromString("0.005")))
	assert.Equal(t, 30*time.Second, cfg.SendTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("KEY", "secret")
	t.Setenv("MIN_WITHDRAWAL", "1.5")
	t.Setenv("ADMIN_LOGINS", "root,ops")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.MinWithdrawal.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, []string{"root", "ops"}, cfg.AdminLogins)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RunAddress:           ":8080",
			SecretKey:            "secret",
			DefaultAsset:         "USDT",
			SupportedAssets:      []string{"USDT"},
			MinWithdrawal:        decimal.NewFromInt(10),
			MaxWithdrawal:        decimal.NewFromInt(100),
			WithdrawalFee:        decimal.RequireFromString("0.005"),
			BlockchainAddress:    "http://localhost:8090",
			SendTimeout:          time.Second,
			SettlementStaleAfter: time.Minute,
			WatchInterval:        time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad run address", func(cfg *Config) { cfg.RunAddress = "nope" }, true},
		{"missing key", func(cfg *Config) { cfg.SecretKey = "" }, true},
		{"bad blockchain url", func(cfg *Config) { cfg.BlockchainAddress = "::" }, true},
		{"unsupported default asset", func(cfg *Config) { cfg.DefaultAsset = "BTC" }, true},
		{"min above max", func(cfg *Config) { cfg.MinWithdrawal = decimal.NewFromInt(1000) }, true},
		{"zero min", func(cfg *Config) { cfg.MinWithdrawal = decimal.Zero }, true},
		{"fee rate of one", func(cfg *Config) { cfg.WithdrawalFee = decimal.NewFromInt(1) }, true},
		{"zero send timeout", func(cfg *Config) { cfg.SendTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
