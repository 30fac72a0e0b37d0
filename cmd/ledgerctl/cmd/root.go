package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zarwallet/backend/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operator tooling for the wallet ledger",
	Long: `ledgerctl runs ledger operations outside the HTTP API.

Subcommands:
  event-id   - Print the idempotency key for an external event
  reconcile  - Compare chain, stored and journal balances of an account
  correct    - Write a ledger_sync_correction entry for an account
  migrate    - Apply the Postgres schema
  token      - Mint an API token

Configuration is read from .env and the environment, the same as the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
