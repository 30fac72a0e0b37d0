package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zarwallet/backend/internal/chain"
	"github.com/zarwallet/backend/internal/config"
	"github.com/zarwallet/backend/internal/database"
	"github.com/zarwallet/backend/internal/services"
	"gopkg.in/yaml.v3"
)

// ErrDriftDetected is returned by reconcile when any balance view disagrees.
// main maps it to exit status 2.
var ErrDriftDetected = errors.New("drift detected")

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <account-id>",
	Short: "Compare chain, stored and journal balances of an account",
	Long: `Reads the on-chain balance of the account's deposit address and compares it
with the stored balance and the sum of the journal. Nothing is written to the
ledger. Exits with status 2 when drift is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

var (
	outputFormat string
	assetFlag    string
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&assetFlag, "asset", "", "asset code (defaults to LEDGER_ASSET)")
}

// openReconciliation wires the store, chain client and services the way the server does.
// The returned func releases the store.
func openReconciliation(cmd *cobra.Command) (*services.ReconciliationService, func(), error) {
	st, err := database.OpenStore(cmd.Context(), false)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	rdb := database.InitRedis()

	cfg := config.LoadLedgerConfig()
	ledger := services.NewLedgerService(st, cfg)
	svc := services.NewReconciliationService(st, chain.NewTronClient(config.LoadTronConfig()), ledger, rdb, cfg)

	return svc, func() {
		if rdb != nil {
			rdb.Close()
		}
		st.Close()
	}, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openReconciliation(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := svc.Reconcile(cmd.Context(), args[0], assetFlag)
	if err != nil {
		return err
	}
	if err := printResult(cmd.OutOrStdout(), outputFormat, report); err != nil {
		return err
	}
	if report.HasDrift {
		return ErrDriftDetected
	}
	return nil
}

func printResult(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
