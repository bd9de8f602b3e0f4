// Command rcongate serves an HTTP API, WebSocket event streams, and
// Prometheus metrics over a set of configured RCON targets.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/brakken/rconctl/internal/config"
	"github.com/brakken/rconctl/internal/console"
	"github.com/brakken/rconctl/internal/logging"
	"github.com/brakken/rconctl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rcongate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "rconctl.toml", "path to the configuration file")
	listenAddr := flag.String("listen", "", "listen address override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *listenAddr != "" {
		cfg.Gateway.ListenAddr = *listenAddr
	}

	logging.Apply(profileFromConfig(cfg.Logging))
	logger := observability.InitLogger("rcongate")

	mgr, err := console.NewManager(cfg.Targets, console.ManagerOptions{
		Logger:       logger,
		HistoryLimit: cfg.Gateway.HistoryLimit,
	})
	if err != nil {
		return err
	}
	defer mgr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Int("targets", len(cfg.Targets)).
		Str("config", *configPath).
		Msg("rcongate starting")

	server := console.NewServer(cfg.Gateway, mgr, logger)
	return server.Run(ctx)
}

// profileFromConfig folds file-level logging settings into the runtime
// profile; the environment still wins inside logging.Apply.
func profileFromConfig(lc config.Logging) logging.Profile {
	profile := logging.ProfileRuntime()
	if lvl, err := zerolog.ParseLevel(lc.Level); err == nil && lc.Level != "" {
		profile.Level = lvl
	}
	if lc.Format == logging.FormatConsole || lc.Format == logging.FormatJSON {
		profile.Format = lc.Format
	}
	return profile
}
