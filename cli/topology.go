package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"permanode/admin"
	"permanode/broker"
	"permanode/cli/output"
	"permanode/config"
	"permanode/domain"
)

func (a *app) newNodesCmd() *cobra.Command {
	var (
		add      string
		remove   string
		list     bool
		skipConn bool
	)
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Add, remove or list storage nodes",
		Example: `  permanode-cli nodes --add 10.0.0.2:9042
  permanode-cli nodes --remove 10.0.0.1:9042 --skip-connection
  permanode-cli nodes --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if add == "" && remove == "" && !list {
				return &output.CLIError{Summary: "nothing to do", Suggestion: "Pass --add, --remove or --list", ExitCode: output.ExitUsageError}
			}
			for _, addr := range []string{add, remove} {
				if addr == "" {
					continue
				}
				if err := config.ValidateNodeAddress(addr); err != nil {
					return &output.CLIError{Summary: "invalid node address", Detail: err.Error(), ExitCode: output.ExitUsageError}
				}
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			if skipConn {
				changed := false
				if add != "" {
					changed = cfg.AddNode(add) || changed
				}
				if remove != "" {
					changed = cfg.RemoveNode(remove) || changed
				}
				if changed {
					if err := a.saveConfig(cfg); err != nil {
						return err
					}
					a.printer.Success("configuration updated, restart or rebuild the daemon to apply")
				}
			} else {
				var cmds []admin.Command
				if add != "" {
					cmds = append(cmds, admin.ScyllaAddNode(add))
				}
				if remove != "" {
					cmds = append(cmds, admin.ScyllaRemoveNode(remove))
				}
				if len(cmds) > 0 {
					if _, err := a.send(cmd.Context(), cfg, cmds...); err != nil {
						return err
					}
					a.printer.Success("storage nodes updated")
					if cfg, err = a.loadConfig(); err != nil {
						return err
					}
				}
			}

			if list {
				table := output.NewTable(a.printer.Out(), "Node")
				for _, n := range cfg.Storage.Nodes {
					table.AddRow(n)
				}
				return table.Render()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&add, "add", "", "storage node to add (host:port)")
	cmd.Flags().StringVar(&remove, "remove", "", "storage node to remove (host:port)")
	cmd.Flags().BoolVar(&list, "list", false, "list the configured storage nodes")
	cmd.Flags().BoolVar(&skipConn, "skip-connection", false, "edit the configuration file without contacting the daemon")
	return cmd
}

func (a *app) newBrokersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brokers",
		Short: "Manage the MQTT feeds",
	}
	cmd.PersistentFlags().Bool("skip-connection", false, "edit the configuration file without contacting the daemon")
	cmd.AddCommand(
		a.newBrokersChangeCmd(true),
		a.newBrokersChangeCmd(false),
		a.newBrokersListCmd(),
	)
	return cmd
}

func validateMqttURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "ws", "wss", "mqtt", "mqtts":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// newBrokersChangeCmd builds "brokers add" or "brokers remove". Each URL is
// applied to both feed types.
func (a *app) newBrokersChangeCmd(add bool) *cobra.Command {
	var urls []string
	use, short := "remove", "Remove MQTT feeds"
	if add {
		use, short = "add", "Add MQTT feeds"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(urls) == 0 {
				return &output.CLIError{Summary: "no MQTT address given", Suggestion: "Pass --mqtt-address", ExitCode: output.ExitUsageError}
			}
			for _, u := range urls {
				if err := validateMqttURL(u); err != nil {
					return &output.CLIError{Summary: "invalid MQTT address", Detail: err.Error(), ExitCode: output.ExitUsageError}
				}
			}
			skipConn, _ := cmd.Flags().GetBool("skip-connection")

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			if skipConn {
				kinds := []domain.MqttType{domain.MqttMessages, domain.MqttMessagesReferenced}
				for _, u := range urls {
					for _, kind := range kinds {
						if add {
							cfg.Broker.MqttBrokers.Add(kind, u)
						} else {
							cfg.Broker.MqttBrokers.Remove(kind, u)
						}
					}
				}
				if err := a.saveConfig(cfg); err != nil {
					return err
				}
				a.printer.Success("configuration updated, restart the daemon to apply")
				return nil
			}

			messages, referenced := broker.RemoveMqttMessages, broker.RemoveMqttMessagesReferenced
			if add {
				messages, referenced = broker.AddMqttMessages, broker.AddMqttMessagesReferenced
			}
			cmds := make([]admin.Command, 0, 2*len(urls))
			for _, u := range urls {
				cmds = append(cmds, admin.BrokerTopology(messages, u), admin.BrokerTopology(referenced, u))
			}
			if _, err := a.send(cmd.Context(), cfg, cmds...); err != nil {
				return err
			}
			a.printer.Success("MQTT feeds updated")
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&urls, "mqtt-address", nil, "MQTT broker URL, repeatable (tcp://host:1883)")
	return cmd
}

func (a *app) newBrokersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the MQTT feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			skipConn, _ := cmd.Flags().GetBool("skip-connection")
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			if skipConn {
				table := output.NewTable(a.printer.Out(), "Type", "URL")
				for _, kind := range []domain.MqttType{domain.MqttMessages, domain.MqttMessagesReferenced} {
					for _, u := range cfg.Broker.MqttBrokers.For(kind) {
						table.AddRow(string(kind), u)
					}
				}
				return table.Render()
			}

			replies, err := a.send(cmd.Context(), cfg, admin.BrokerStatus())
			if err != nil {
				return err
			}
			table := output.NewTable(a.printer.Out(), "Feed", "Status")
			for _, feed := range feedServices(replies[0].Status) {
				table.AddRow(feed.Name, a.printer.StatusBadge(string(feed.Status)))
			}
			return table.Render()
		},
	}
}
