package main

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func newLedgerCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect experience ledgers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <user-id>",
		Short: "Print a user's level, experience and badges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := opts.container()
			if err != nil {
				return err
			}
			defer injector.Shutdown()

			accounts, err := do.Invoke[*service.AccountService](injector)
			if err != nil {
				return err
			}
			profile, err := accounts.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	})
	return cmd
}
