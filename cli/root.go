// Package cli implements permanode-cli, the operator command line for the
// permanode daemon.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"permanode/admin"
	"permanode/cli/output"
	"permanode/config"
)

const defaultTimeout = 10 * time.Second

// app is the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	version string
	printer *output.Printer
}

// Execute runs permanode-cli and returns the process exit code.
func Execute(version string) int {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		mode, _ := output.ParseColorMode(os.Getenv("PERMANODE_CLI_COLOR"))
		output.NewPrinter(os.Stdout, os.Stderr, mode).FormatError(err)
		return output.ExitCode(err)
	}
	return output.ExitSuccess
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{v: viper.New(), version: version}

	root := &cobra.Command{
		Use:   "permanode-cli",
		Short: "Control a permanode daemon",
		Long: `permanode-cli starts and controls a permanode daemon.

Commands that change a running daemon talk to its admin websocket channel.
Pass --skip-connection to edit the configuration file instead.

Example usage:
  permanode-cli start --service             # Start the daemon in the background
  permanode-cli nodes --add 10.0.0.2:9042   # Add a storage node
  permanode-cli brokers add --mqtt-address tcp://node:1883
  permanode-cli status                      # Show the broker status
  permanode-cli stop                        # Stop the daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode, err := output.ParseColorMode(a.v.GetString("color"))
			if err != nil {
				return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
			}
			a.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $CONFIG_PATH or ./config.yaml)")
	flags.String("color", "auto", "color output: auto, always or never")
	flags.Duration("timeout", defaultTimeout, "timeout for admin channel requests")

	a.v.SetEnvPrefix("PERMANODE_CLI")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("color", flags.Lookup("color"))
	_ = a.v.BindPFlag("timeout", flags.Lookup("timeout"))

	root.AddCommand(
		a.newStartCmd(),
		a.newStopCmd(),
		a.newRebuildCmd(),
		a.newStatusCmd(),
		a.newConfigCmd(),
		a.newNodesCmd(),
		a.newBrokersCmd(),
		a.newArchiveCmd(),
		a.newVersionCmd(),
	)
	return root
}

func (a *app) configPath() string {
	return config.ResolvePath(a.v.GetString("config"))
}

func (a *app) loadConfig() (*config.Config, error) {
	path := a.configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, &output.CLIError{
			Summary:    "cannot load configuration",
			Detail:     err.Error(),
			Suggestion: fmt.Sprintf("Check %s or pass --config", path),
			ExitCode:   output.ExitConfigError,
		}
	}
	return cfg, nil
}

func (a *app) saveConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return &output.CLIError{Summary: "refusing to save an invalid configuration", Detail: err.Error(), ExitCode: output.ExitConfigError}
	}
	if err := cfg.Save(a.configPath()); err != nil {
		return &output.CLIError{Summary: "cannot save configuration", Detail: err.Error(), ExitCode: output.ExitConfigError}
	}
	return nil
}

// send delivers cmds in order over one admin connection and stops at the
// first rejected command.
func (a *app) send(ctx context.Context, cfg *config.Config, cmds ...admin.Command) ([]admin.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, a.v.GetDuration("timeout"))
	defer cancel()

	url := "ws://" + cfg.Websocket.Address + "/"
	client, err := admin.Dial(ctx, url, cfg.Websocket.AuthSecret)
	if err != nil {
		return nil, &output.CLIError{
			Summary:    "cannot reach the permanode daemon",
			Detail:     err.Error(),
			Suggestion: "Start it with 'permanode-cli start' or pass --skip-connection",
			ExitCode:   output.ExitDaemonError,
		}
	}
	defer client.Close()

	replies := make([]admin.Reply, 0, len(cmds))
	for _, cmd := range cmds {
		reply, err := client.Send(ctx, cmd)
		if err != nil {
			return replies, &output.CLIError{Summary: fmt.Sprintf("%s failed", cmd), Detail: err.Error(), ExitCode: output.ExitDaemonError}
		}
		if !reply.OK {
			return replies, &output.CLIError{Summary: fmt.Sprintf("daemon rejected %s", cmd), Detail: reply.Error, ExitCode: output.ExitDaemonError}
		}
		replies = append(replies, reply)
	}
	return replies, nil
}
