// Command permanode runs the permanode daemon.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"permanode/bootstrap"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "permanode",
		Short:         "Store every message of a ledger network permanently",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap.Run(cmd.Context(), bootstrap.Options{
				ConfigPath: configPath,
				Version:    version,
			})
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "config file (default is $CONFIG_PATH or ./config.yaml)")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
