package main

import (
	"encoding/json"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/seohyun-lee/bookduck-backend/internal/config"
	"github.com/seohyun-lee/bookduck-backend/internal/di"
)

type globalOptions struct {
	dataPath string
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "bookductl",
		Short:         "Operate on a bookduck data directory",
		Long:          `Maintenance commands that run against the server's database and search index directly. Stop the server first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataPath, "data-path", "", "Data directory (default: DATA_PATH or ~/.bookduck)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to .env file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newReindexCmd(opts),
		newBadgesCmd(opts),
		newLedgerCmd(opts),
	)
	return root
}

// container loads the server configuration and returns a DI container.
// The caller must shut it down.
func (o *globalOptions) container() (*do.RootScope, error) {
	args := []string{"-env-file", o.envFile, "-log-level", o.logLevel}
	if o.dataPath != "" {
		args = append(args, "-data-path", o.dataPath)
	}
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, err
	}
	return di.NewContainer(cfg), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
