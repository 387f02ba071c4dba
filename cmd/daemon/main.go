// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/sessiond/internal/adapter/wsbridge"
	"github.com/ManuGH/sessiond/internal/api"
	"github.com/ManuGH/sessiond/internal/config"
	"github.com/ManuGH/sessiond/internal/credstore"
	"github.com/ManuGH/sessiond/internal/daemon"
	"github.com/ManuGH/sessiond/internal/domain/session/manager"
	"github.com/ManuGH/sessiond/internal/health"
	xglog "github.com/ManuGH/sessiond/internal/log"
	"github.com/ManuGH/sessiond/internal/qr"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg := config.Load()

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: "sessiond",
		Version: version,
	})
	logger := xglog.WithComponent("daemon")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.invalid").
			Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := credstore.New(filepath.Join(cfg.DataDir, "sessions"))
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "credstore.init_failed").
			Str("path", cfg.DataDir).
			Msg("failed to initialize credential store")
	}

	factory, err := wsbridge.NewFactory(cfg.BridgeURL, xglog.WithComponent("wsbridge"))
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "bridge.config_invalid").
			Msg("invalid bridge URL")
	}

	sessions := manager.New(manager.Config{
		CreateTimeout:        cfg.CreateTimeout,
		LogoutTimeout:        cfg.LogoutTimeout,
		ShutdownTimeout:      cfg.ShutdownTimeout,
		ReconnectMaxRetries:  cfg.ReconnectMaxRetries,
		ReconnectMaxInterval: cfg.ReconnectMaxInterval,
	}, store, factory, qr.NewRenderer(), xglog.WithComponent("sessions"))

	healthMgr := health.NewManager(version)
	healthMgr.RegisterChecker(health.DataDirChecker{Dir: store.Dir()})
	healthMgr.RegisterChecker(health.RegistryChecker{Registry: sessions})

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.ListenAddr).
		Msg("starting sessiond")
	logger.Info().Msgf("→ Bridge: %s", cfg.BridgeURL)
	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)
	logger.Info().Msgf("→ Create timeout: %s", cfg.CreateTimeout)

	// Restore sessions that survived the last restart.
	sessions.Resume(ctx)

	srv := api.New(cfg, sessions, healthMgr)
	mux := http.NewServeMux()
	mux.Handle("/", srv.Handler())
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	if err := daemon.Run(ctx, daemon.Deps{
		Logger:   logger,
		Config:   cfg,
		Handler:  mux,
		Sessions: sessions,
	}); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon exited with error")
	}

	logger.Info().Str("event", "shutdown.complete").Msg("sessiond stopped")
}
