// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/portico-shell/portico/lib/config"
	"github.com/portico-shell/portico/lib/logging"
	"github.com/portico-shell/portico/lib/manifest"
	"github.com/portico-shell/portico/lib/process"
	"github.com/portico-shell/portico/lib/shell"
	"github.com/portico-shell/portico/lib/ui"
	"github.com/portico-shell/portico/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath string
		devMode    bool
		prodMode   bool
		headless   bool
		debugLogs  bool
	)

	// Handle --version before flag parsing so it works regardless of
	// other flags.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("portico")
		return nil
	}

	flagSet := pflag.NewFlagSet("portico", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to portico.yaml (default: PORTICO_CONFIG, then built-in defaults)")
	flagSet.BoolVar(&devMode, "dev", false, "development mode: load the window from the frontend dev server")
	flagSet.BoolVar(&prodMode, "prod", false, "production mode: serve the built frontend from the static server")
	flagSet.BoolVar(&headless, "headless", false, "supervise the backend without opening a window")
	flagSet.BoolVar(&debugLogs, "log-debug", false, "set log level to debug")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if devMode && prodMode {
		return fmt.Errorf("--dev and --prod are mutually exclusive")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if devMode {
		cfg.Environment = config.Development
	}
	if prodMode {
		cfg.Environment = config.Production
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	level := slog.LevelInfo
	if debugLogs {
		level = slog.LevelDebug
	}
	logger, closeLog, err := logging.Setup(logging.Options{
		Level:    level,
		FilePath: filepath.Join(cfg.Paths.Data, "portico.log"),
		Journal:  runtime.GOOS == "linux",
	})
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("portico starting",
		"version", version.Info(),
		"environment", cfg.Environment,
		"headless", headless,
	)

	appManifest, err := manifest.Load(cfg.Static.Dir)
	if err != nil {
		return fmt.Errorf("loading app manifest: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator := shell.New(cfg, appManifest, buildUI(headless, logger), logger)
	defer orchestrator.Shutdown()

	if err := orchestrator.Run(ctx); err != nil {
		// The orchestrator has already shown the fatal dialog; the
		// deferred Shutdown tears down whatever was started.
		return err
	}

	// Ready. Stay resident until the user quits or the backend dies
	// underneath us.
	select {
	case <-ctx.Done():
		logger.Info("exit signal received")
		return nil
	case exitCode := <-orchestrator.BackendExited():
		if exitCode != 0 {
			return fmt.Errorf("backend exited unexpectedly with code %d", exitCode)
		}
		logger.Info("backend exited, shutting down")
		return nil
	}
}

// buildUI selects the window layer. A native toolkit binding attaches
// here in packaged desktop builds; this tree ships the browser-backed
// fallback, and --headless suppresses the window entirely.
func buildUI(headless bool, logger *slog.Logger) ui.UI {
	if headless {
		return &ui.Headless{Logger: logger}
	}
	return &ui.Browser{Logger: logger}
}
