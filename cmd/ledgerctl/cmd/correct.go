package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var correctCmd = &cobra.Command{
	Use:   "correct <account-id>",
	Short: "Align the stored balance with the chain",
	Long: `Writes a single ledger_sync_correction entry for the difference between the
on-chain and stored balances. Refused when the stored balance and the journal
disagree. Re-running with the same --ref is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

var correctionRef string

func init() {
	rootCmd.AddCommand(correctCmd)
	correctCmd.Flags().StringVar(&correctionRef, "ref", "", "correction reference, used for idempotency")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	if correctionRef == "" {
		return errors.New("--ref is required")
	}

	svc, closeFn, err := openReconciliation(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := svc.ApplyCorrection(cmd.Context(), args[0], assetFlag, correctionRef)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), outputFormat, result)
}
