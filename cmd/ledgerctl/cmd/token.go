package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	mW "github.com/zarwallet/backend/internal/middleware"
)

var tokenCmd = &cobra.Command{
	Use:   "token <account-id>",
	Short: "Mint an API token signed with JWT_SECRET_KEY",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

var (
	tokenAdmin bool
	tokenTTL   time.Duration
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant the admin role")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	role := ""
	if tokenAdmin {
		role = mW.RoleAdmin
	}
	token, err := mW.IssueToken(args[0], role, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
