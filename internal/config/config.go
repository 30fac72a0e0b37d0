package config

import (
	"github.com/spf13/viper"
	"github.com/zarwallet/backend/internal/logger"
)

// Init reads the .env file and binds every environment variable the service understands.
// Environment variables override values from the file.
func Init() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	bindings := map[string]string{
		"database.host":     "DATABASE_HOST",
		"database.port":     "DATABASE_PORT",
		"database.user":     "DATABASE_USER",
		"database.password": "DATABASE_PASSWORD",
		"database.name":     "DATABASE_NAME",
		"database.ssl_mode": "DATABASE_SSL_MODE",

		"redis.host":     "REDIS_HOST",
		"redis.port":     "REDIS_PORT",
		"redis.password": "REDIS_PASSWORD",
		"redis.db":       "REDIS_DB",

		"jwt.secret_key":     "JWT_SECRET_KEY",
		"store.driver":       "STORE_DRIVER",
		"store.auto_migrate": "STORE_AUTO_MIGRATE",
		"log.level":          "LOG_LEVEL",
		"log.json":           "LOG_JSON",
		"server.port":        "PORT",

		"ledger.asset":            "LEDGER_ASSET",
		"ledger.asset_decimals":   "LEDGER_ASSET_DECIMALS",
		"ledger.drift_epsilon":    "LEDGER_DRIFT_EPSILON",
		"ledger.tx_max_attempts":  "LEDGER_TX_MAX_ATTEMPTS",
		"ledger.tx_retry_backoff": "LEDGER_TX_RETRY_BACKOFF",
		"ledger.handle_cache_ttl": "LEDGER_HANDLE_CACHE_TTL",
		"ledger.alert_queue":      "LEDGER_ALERT_QUEUE",

		"tron.api_url":       "TRON_API_URL",
		"tron.api_key":       "TRON_API_KEY",
		"tron.usdt_contract": "TRON_USDT_CONTRACT",
		"tron.timeout":       "TRON_TIMEOUT",
	}
	for key, env := range bindings {
		viper.BindEnv(key, env)
	}

	viper.SetDefault("store.driver", "postgres")
	viper.SetDefault("store.auto_migrate", true)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.port", "8080")

	if err := viper.ReadInConfig(); err != nil {
		logger.Infof("[CONFIG] config file not found, using environment and defaults: %v", err)
	}

	logger.SetLevel(viper.GetString("log.level"))
	if viper.GetBool("log.json") {
		logger.SetJSON()
	}
}
