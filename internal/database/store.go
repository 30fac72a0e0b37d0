package database

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"github.com/zarwallet/backend/internal/logger"
	"github.com/zarwallet/backend/internal/store"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// OpenStore builds the ledger store selected by store.driver. With migrate set the
// Postgres schema is applied before returning.
func OpenStore(ctx context.Context, migrate bool) (store.Store, error) {
	driver := viper.GetString("store.driver")
	switch driver {
	case DriverMemory:
		logger.Warn("[DATABASE] using in-memory store; balances are lost on restart")
		return store.NewMemoryStore(), nil
	case DriverPostgres, "":
		db, err := InitDB(ctx, GetConfig())
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgresStore(db)
		if migrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
