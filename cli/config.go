package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"permanode/admin"
	"permanode/cli/output"
	"permanode/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	var (
		printCfg   bool
		rollback   bool
		path       bool
		jsonOutput bool
		skipConn   bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or roll back the configuration",
		Long: `Print the configuration file, show its path, or roll it back to the
copy saved before the last change.

--rollback asks the running daemon to restore and apply the previous file.
With --skip-connection the file is restored without touching the daemon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path {
				a.printer.Print("%s", a.configPath())
			}
			if rollback {
				if err := a.rollback(cmd, skipConn); err != nil {
					return err
				}
			}
			if printCfg || (!path && !rollback) {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				return a.printConfig(cfg, jsonOutput)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printCfg, "print", false, "print the configuration")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "restore the previous configuration")
	cmd.Flags().BoolVar(&path, "path", false, "print the configuration file path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print as JSON instead of YAML")
	cmd.Flags().BoolVar(&skipConn, "skip-connection", false, "restore the file without contacting the daemon")
	return cmd
}

func (a *app) rollback(cmd *cobra.Command, skipConn bool) error {
	if skipConn {
		if _, err := config.Rollback(a.configPath()); err != nil {
			return &output.CLIError{Summary: "rollback failed", Detail: err.Error(), ExitCode: output.ExitConfigError}
		}
		a.printer.Success("configuration rolled back")
		return nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if _, err := a.send(cmd.Context(), cfg, admin.Rollback()); err != nil {
		return err
	}
	a.printer.Success("configuration rolled back and applied")
	return nil
}

func (a *app) printConfig(cfg *config.Config, asJSON bool) error {
	redacted := *cfg
	if redacted.Storage.Password != "" {
		redacted.Storage.Password = "********"
	}
	if redacted.Websocket.AuthSecret != "" {
		redacted.Websocket.AuthSecret = "********"
	}

	if asJSON {
		enc := json.NewEncoder(a.printer.Out())
		enc.SetIndent("", "  ")
		return enc.Encode(redacted)
	}
	enc := yaml.NewEncoder(a.printer.Out())
	enc.SetIndent(2)
	if err := enc.Encode(redacted); err != nil {
		return err
	}
	return enc.Close()
}
