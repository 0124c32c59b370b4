// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package shell sequences Portico's startup and shutdown. Startup is
// strictly ordered: static asset server (production only), backend
// spawn, readiness gate, window creation — the window must never appear
// before the backend is confirmed healthy. Any failure along the way is
// fatal: one user-visible dialog, then the caller exits the process.
// There is no degraded or partial-UI mode.
package shell

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/portico-shell/portico/lib/config"
	"github.com/portico-shell/portico/lib/manifest"
	"github.com/portico-shell/portico/lib/noderuntime"
	"github.com/portico-shell/portico/lib/readiness"
	"github.com/portico-shell/portico/lib/staticsite"
	"github.com/portico-shell/portico/lib/supervisor"
	"github.com/portico-shell/portico/lib/ui"
)

// fatalHint is appended to every fatal startup dialog. The overwhelming
// majority of field failures are a missing or broken runtime install.
const fatalHint = "Verify that Node.js is installed and reachable, then start the application again."

// backendSupervisor is the slice of *supervisor.Supervisor the
// orchestrator uses, extracted for tests.
type backendSupervisor interface {
	Start(spec supervisor.StartSpec) (*supervisor.Handle, error)
	Stop()
}

// readinessGate is the slice of *readiness.Gate the orchestrator uses.
type readinessGate interface {
	Wait(ctx context.Context, healthURL string) error
}

// staticServer is the handle the orchestrator keeps on the static asset
// server. Only teardown flows through it; the window URL is derived
// from configuration.
type staticServer interface {
	Close() error
}

// Orchestrator owns the startup state machine and the two runtime
// handles (backend child, static server). It is constructed once at
// process start; there is no package-level state.
type Orchestrator struct {
	cfg      *config.Config
	manifest manifest.Manifest
	logger   *slog.Logger
	ui       ui.UI

	resolveRuntime func() string
	supervisor     backendSupervisor
	gate           readinessGate
	listenStatic   func(root string, port int) (staticServer, error)
	environ        func() []string

	mu     sync.Mutex
	state  State
	static staticServer

	shutdownOnce  sync.Once
	backendExited chan int
}

// New wires an Orchestrator to the real resolver, supervisor, gate, and
// static server.
func New(cfg *config.Config, m manifest.Manifest, userInterface ui.UI, logger *slog.Logger) *Orchestrator {
	resolver := noderuntime.NewResolver(logger)
	return &Orchestrator{
		cfg:            cfg,
		manifest:       m,
		logger:         logger,
		ui:             userInterface,
		resolveRuntime: resolver.Resolve,
		supervisor:     supervisor.New(logger),
		gate:           readiness.New(logger),
		listenStatic: func(root string, port int) (staticServer, error) {
			return staticsite.Listen(root, port, logger)
		},
		environ:       os.Environ,
		backendExited: make(chan int, 1),
	}
}

// State returns the current startup state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// BackendExited delivers the backend's exit code if it exits on its
// own. The main loop treats that as a shutdown trigger: a shell without
// its backend has nothing left to present.
func (o *Orchestrator) BackendExited() <-chan int {
	return o.backendExited
}

// Run drives the startup sequence to Ready or Failed. On failure it
// shows the single fatal dialog and returns the error; the caller is
// expected to call Shutdown (usually deferred) and exit.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.cfg.Environment == config.Production {
		o.setState(StateStaticServerStarting)
		server, err := o.listenStatic(o.cfg.Static.Dir, o.cfg.Static.Port)
		if err != nil {
			return o.fail(fmt.Errorf("starting static server: %w", err))
		}
		o.mu.Lock()
		o.static = server
		o.mu.Unlock()
	}

	o.setState(StateBackendStarting)
	executable := o.resolveRuntime()

	entry := o.cfg.Backend.Entry
	if o.manifest.BackendEntry != "" {
		entry = o.manifest.BackendEntry
	}
	entryPath := filepath.Join(o.cfg.Paths.Resources, entry)

	_, err := o.supervisor.Start(supervisor.StartSpec{
		Executable:       executable,
		Args:             append([]string{entryPath}, o.cfg.Backend.Args...),
		Env:              buildEnvironment(o.environ(), o.cfg, executable),
		WorkingDirectory: o.cfg.Paths.Resources,
		OnExit: func(exitCode int) {
			select {
			case o.backendExited <- exitCode:
			default:
			}
		},
	})
	if err != nil {
		return o.fail(fmt.Errorf("starting backend: %w", err))
	}

	o.setState(StateAwaitingReady)
	if err := o.gate.Wait(ctx, o.cfg.BackendHealthURL()); err != nil {
		return o.fail(fmt.Errorf("backend health check: %w", err))
	}

	options := ui.WindowOptions{
		Title:  o.manifest.Name,
		Width:  o.manifest.Window.Width,
		Height: o.manifest.Window.Height,
	}
	if err := o.ui.CreateWindow(o.cfg.WindowURL(), options); err != nil {
		return o.fail(fmt.Errorf("creating window: %w", err))
	}

	o.setState(StateReady)
	return nil
}

// Shutdown tears down both runtime resources. Idempotent, and each
// resource is handled independently so a failure on one never skips the
// other. Errors are logged and swallowed; shutdown never propagates
// failure.
func (o *Orchestrator) Shutdown() {
	o.shutdownOnce.Do(func() {
		o.supervisor.Stop()

		o.mu.Lock()
		server := o.static
		o.static = nil
		o.mu.Unlock()
		if server != nil {
			if err := server.Close(); err != nil {
				o.logger.Warn("closing static server", "error", err)
			}
		}

		o.logger.Info("shutdown complete")
	})
}

// fail marks the terminal Failed state, shows the single fatal dialog,
// and passes the error back up.
func (o *Orchestrator) fail(err error) error {
	o.setState(StateFailed)
	o.logger.Error("startup failed", "error", err)
	o.ui.ShowFatalDialog(fmt.Sprintf("%v\n\n%s", err, fatalHint))
	return err
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	previous := o.state
	o.state = state
	o.mu.Unlock()
	o.logger.Info("startup state", "from", previous.String(), "to", state.String())
}
