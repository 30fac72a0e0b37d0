package config

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type LedgerConfig struct {
	Asset          string
	AssetDecimals  int32
	DriftEpsilon   decimal.Decimal
	TxMaxAttempts  int
	TxRetryBackoff time.Duration
	HandleCacheTTL time.Duration
	AlertQueue     string
}

func LoadLedgerConfig() *LedgerConfig {
	viper.SetDefault("ledger.asset", "USDT")
	viper.SetDefault("ledger.asset_decimals", 6)
	viper.SetDefault("ledger.drift_epsilon", "0.000001")
	viper.SetDefault("ledger.tx_max_attempts", 5)
	viper.SetDefault("ledger.tx_retry_backoff", 50*time.Millisecond)
	viper.SetDefault("ledger.handle_cache_ttl", 24*time.Hour)
	viper.SetDefault("ledger.alert_queue", "reconciliation_alerts")

	epsilon, err := decimal.NewFromString(viper.GetString("ledger.drift_epsilon"))
	if err != nil || epsilon.IsNegative() {
		epsilon = decimal.New(1, -6)
	}

	attempts := viper.GetInt("ledger.tx_max_attempts")
	if attempts < 1 {
		attempts = 1
	}

	return &LedgerConfig{
		Asset:          viper.GetString("ledger.asset"),
		AssetDecimals:  viper.GetInt32("ledger.asset_decimals"),
		DriftEpsilon:   epsilon,
		TxMaxAttempts:  attempts,
		TxRetryBackoff: viper.GetDuration("ledger.tx_retry_backoff"),
		HandleCacheTTL: viper.GetDuration("ledger.handle_cache_ttl"),
		AlertQueue:     viper.GetString("ledger.alert_queue"),
	}
}

type TronConfig struct {
	APIURL       string
	APIKey       string
	USDTContract string
	Timeout      time.Duration
}

func LoadTronConfig() *TronConfig {
	viper.SetDefault("tron.api_url", "https://api.trongrid.io")
	viper.SetDefault("tron.usdt_contract", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t")
	viper.SetDefault("tron.timeout", 10*time.Second)

	return &TronConfig{
		APIURL:       viper.GetString("tron.api_url"),
		APIKey:       viper.GetString("tron.api_key"),
		USDTContract: viper.GetString("tron.usdt_contract"),
		Timeout:      viper.GetDuration("tron.timeout"),
	}
}
