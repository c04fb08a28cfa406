package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func newBadgesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Inspect and evaluate badges",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the badge catalog of the active policy",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				injector, err := opts.container()
				if err != nil {
					return err
				}
				defer injector.Shutdown()

				progression, err := do.Invoke[*service.ProgressionService](injector)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), progression.BadgeCatalog())
			},
		},
		&cobra.Command{
			Use:   "evaluate <user-id>...",
			Short: "Unlock every badge the users qualify for",
			Long:  `Evaluates all badge rules against each user's counters. Use after changing the progression policy.`,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				injector, err := opts.container()
				if err != nil {
					return err
				}
				defer injector.Shutdown()

				progression, err := do.Invoke[*service.ProgressionService](injector)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, userID := range args {
					unlocked, err := progression.EvaluateBadges(cmd.Context(), userID)
					if err != nil {
						return fmt.Errorf("evaluate %s: %w", userID, err)
					}
					fmt.Fprintf(out, "%s: %d new badges\n", userID, len(unlocked))
					for _, u := range unlocked {
						fmt.Fprintf(out, "  %s\n", u.BadgeID)
					}
				}
				return nil
			},
		},
	)
	return cmd
}
