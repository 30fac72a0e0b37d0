package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zarwallet/backend/internal/services"
)

var eventIDCmd = &cobra.Command{
	Use:   "event-id <external-tx-id> [log-index]",
	Short: "Print the idempotency key for an external event",
	Example: `  ledgerctl event-id 0x9f2c...e1 3
  ledgerctl event-id transfer:p2p-1 0`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEventID,
}

func init() {
	rootCmd.AddCommand(eventIDCmd)
}

func runEventID(cmd *cobra.Command, args []string) error {
	var idx *int
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("log index %q: %w", args[1], err)
		}
		idx = &n
	}

	id, err := services.EventID(args[0], idx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
