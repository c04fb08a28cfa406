package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/seohyun-lee/bookduck-backend/internal/di/providers"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func newReindexCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the notes search index from the database",
		Long:  `Drops the notes search index and writes every stored note to a fresh one.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			injector, err := opts.container()
			if err != nil {
				return err
			}
			defer injector.Shutdown()

			index, err := do.Invoke[*providers.SearchIndexHandle](injector)
			if err != nil {
				return err
			}
			archives, err := do.Invoke[*service.ArchiveService](injector)
			if err != nil {
				return err
			}

			if err := index.Rebuild(); err != nil {
				return fmt.Errorf("rebuild index: %w", err)
			}
			count, err := archives.Reindex(cmd.Context())
			if err != nil {
				return fmt.Errorf("reindex after %d notes: %w", count, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d notes\n", count)
			return nil
		},
	}
}
