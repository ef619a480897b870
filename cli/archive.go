package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"permanode/cli/output"
	"permanode/config"
	"permanode/domain"
	"permanode/driver"
	"permanode/gateway"
	"permanode/usecase"
)

const importProgressEvery = 1000

func (a *app) newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Work with milestone archive files",
	}
	cmd.AddCommand(a.newArchiveImportCmd())
	return cmd
}

func (a *app) newArchiveImportCmd() *cobra.Command {
	var (
		dir      string
		rangeArg string
		keyspace string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import .log.zst archives into storage",
		Long: `Read every finished archive in --directory and write its milestones
into storage, marking them synced and logged. The daemon does not need to
run, the storage cluster does.`,
		Example: `  permanode-cli archive import --directory ./logs
  permanode-cli archive import --directory ./logs --range 1000..2000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return &output.CLIError{Summary: "no archive directory given", Suggestion: "Pass --directory", ExitCode: output.ExitUsageError}
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return &output.CLIError{Summary: "archive directory not found", Detail: dir, ExitCode: output.ExitUsageError}
			}
			r := domain.DefaultSyncRange()
			if rangeArg != "" {
				var err error
				if r, err = domain.ParseSyncRange(rangeArg); err != nil {
					return &output.CLIError{Summary: "invalid range", Detail: err.Error(), ExitCode: output.ExitUsageError}
				}
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if keyspace == "" {
				keyspace = cfg.DefaultKeyspaceName()
			}
			return a.importArchives(cmd.Context(), cfg, keyspace, dir, r)
		},
	}
	cmd.Flags().StringVar(&dir, "directory", "", "directory holding the archive files")
	cmd.Flags().StringVar(&rangeArg, "range", "", "milestone range from..to, to exclusive")
	cmd.Flags().StringVar(&keyspace, "keyspace", "", "target keyspace (default is the first configured)")
	return cmd
}

func (a *app) importArchives(ctx context.Context, cfg *config.Config, keyspace, dir string, r domain.SyncRange) error {
	scylla, err := driver.NewScyllaDriver(cfg.Storage)
	if err != nil {
		return &output.CLIError{Summary: "cannot connect to storage", Detail: err.Error(), ExitCode: output.ExitGeneral}
	}
	defer scylla.Close()
	if err := scylla.EnsureSchema(ctx); err != nil {
		return err
	}

	storage, err := gateway.NewStorageGateway(scylla, cfg.KeyspaceNames(), cfg.Storage.CacheSize)
	if err != nil {
		return err
	}
	store, err := storage.ForKeyspace(keyspace)
	if err != nil {
		return &output.CLIError{Summary: "unknown keyspace", Detail: keyspace, ExitCode: output.ExitUsageError}
	}

	a.printer.Info("importing %s into %s (milestones %s)", dir, keyspace, domain.Range{Start: r.From, End: r.To})
	imported := 0
	result, err := usecase.NewArchiveImportUsecase(driver.NewArchiveFiles(), store).
		Import(ctx, dir, r, func(index uint32) {
			imported++
			if imported%importProgressEvery == 0 {
				a.printer.Print("  %d milestones imported, at %d", imported, index)
			}
		})
	if result != nil {
		table := output.NewTable(a.printer.Out(), "Files", "Milestones", "Messages")
		table.AddRow(fmt.Sprint(result.Files), fmt.Sprint(result.Milestones), fmt.Sprint(result.Messages))
		if renderErr := table.Render(); renderErr != nil && err == nil {
			err = renderErr
		}
	}
	if err != nil {
		return &output.CLIError{Summary: "archive import failed", Detail: err.Error(), ExitCode: output.ExitGeneral}
	}
	a.printer.Success("archive import finished")
	return nil
}
