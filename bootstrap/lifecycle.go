// Package bootstrap wires the permanode daemon together and runs it.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"permanode/config"
	"permanode/logger"
	"permanode/utils/otel"
)

// Options are the command line inputs of the daemon.
type Options struct {
	ConfigPath string
	Version    string
}

// Run is the daemon entry point. It loads the configuration, connects
// storage, then runs the broker, the query API and the admin channel until
// SIGINT, SIGTERM or an ExitProgram command.
func Run(ctx context.Context, opts Options) error {
	path := config.ResolvePath(opts.ConfigPath)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	otelCfg := otel.FromAppConfig(cfg.OTel, opts.Version)
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shutdown OpenTelemetry: %v\n", err)
		}
	}()

	log := logger.Init(logger.Options{Level: cfg.Logging.Level, EnableOTel: otelCfg.Enabled})
	log.Info("Starting permanode",
		"version", opts.Version,
		"config", path,
		"keyspaces", cfg.KeyspaceNames(),
		"otel_enabled", otelCfg.Enabled)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, exit := context.WithCancel(ctx)
	defer exit()

	deps, cleanup, err := BuildDependencies(ctx, NewConfigStore(path, cfg), log, exit)
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}
	defer cleanup()

	e := NewHTTPServer(cfg.API, deps.Query, deps.Scylla.Ping, log, otelCfg.Enabled, otelCfg.ServiceName)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return deps.Broker.Run(gctx) })
	g.Go(func() error { return serveHTTP(gctx, e, cfg.API.Address, log) })
	g.Go(func() error { return deps.Admin.Run(gctx) })

	log.Info("permanode started",
		"api", cfg.API.Address,
		"admin", cfg.Websocket.Address)

	err = g.Wait()
	log.Info("permanode stopped", "error", err)
	return err
}
