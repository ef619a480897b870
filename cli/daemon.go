package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"permanode/admin"
	"permanode/broker"
	"permanode/cli/output"
)

const daemonName = "permanode"

// daemonPath finds the permanode executable next to the running CLI.
func daemonPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	name := daemonName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(filepath.Dir(exe), name)
	if _, err := os.Stat(path); err != nil {
		return "", &output.CLIError{
			Summary:    "permanode executable not found",
			Detail:     err.Error(),
			Suggestion: "Install permanode next to permanode-cli or pass --daemon",
			ExitCode:   output.ExitGeneral,
		}
	}
	return path, nil
}

func (a *app) newStartCmd() *cobra.Command {
	var (
		service bool
		noExit  bool
		daemon  string
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the permanode daemon",
		Long: `Start the permanode daemon found next to this executable.

By default the daemon runs in the foreground until it exits. With --service
it is started in the background and the command returns at once. With
--noexit the command keeps running after a foreground daemon exits so its
output stays visible until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if daemon == "" {
				path, err := daemonPath()
				if err != nil {
					return err
				}
				daemon = path
			}

			proc := exec.CommandContext(cmd.Context(), daemon, "--config", a.configPath())
			if service {
				if err := proc.Start(); err != nil {
					return fmt.Errorf("starting %s: %w", daemon, err)
				}
				a.printer.Success("permanode started in the background (pid %d)", proc.Process.Pid)
				return proc.Process.Release()
			}

			proc.Stdin = os.Stdin
			proc.Stdout = cmd.OutOrStdout()
			proc.Stderr = cmd.ErrOrStderr()
			runErr := proc.Run()
			if runErr != nil {
				a.printer.Warning("permanode exited: %v", runErr)
			} else {
				a.printer.Info("permanode exited")
			}
			if noExit {
				a.printer.Info("press Ctrl-C to close")
				waitForInterrupt(cmd.Context())
			}
			var exitErr *exec.ExitError
			if errors.As(runErr, &exitErr) {
				return &output.CLIError{Summary: "permanode exited with an error", Detail: exitErr.Error(), ExitCode: output.ExitDaemonError}
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&service, "service", false, "run the daemon in the background")
	cmd.Flags().BoolVar(&noExit, "noexit", false, "keep running after the daemon exits")
	cmd.Flags().StringVar(&daemon, "daemon", "", "path of the permanode executable")
	return cmd
}

func waitForInterrupt(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}

func (a *app) newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if _, err := a.send(cmd.Context(), cfg, admin.BrokerExit()); err != nil {
				return err
			}
			a.printer.Success("permanode is shutting down")
			return nil
		},
	}
}

func (a *app) newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the storage ring from the configured nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if _, err := a.send(cmd.Context(), cfg, admin.ScyllaRebuildRing()); err != nil {
				return err
			}
			a.printer.Success("storage ring rebuilt")
			return nil
		},
	}
}

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the broker status of the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			replies, err := a.send(cmd.Context(), cfg, admin.BrokerStatus())
			if err != nil {
				return err
			}
			status := replies[0].Status
			if status == nil {
				return errors.New("daemon returned no status")
			}

			a.printer.Print("%s %s", status.Name, a.printer.StatusBadge(string(status.Status)))
			table := output.NewTable(a.printer.Out(), "Service", "Status")
			for _, child := range status.Children {
				table.AddRow(child.Name, a.printer.StatusBadge(string(child.Status)))
			}
			return table.Render()
		},
	}
}

// feedServices returns the feed children of a broker status snapshot.
func feedServices(status *broker.Service) []broker.Service {
	if status == nil {
		return nil
	}
	var feeds []broker.Service
	for _, child := range status.Children {
		if isFeedName(child.Name) {
			feeds = append(feeds, child)
		}
	}
	return feeds
}

func isFeedName(name string) bool {
	return strings.HasPrefix(name, "MqttMessages")
}
