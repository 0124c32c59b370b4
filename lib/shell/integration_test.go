// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/portico-shell/portico/lib/config"
	"github.com/portico-shell/portico/lib/manifest"
	"github.com/portico-shell/portico/lib/readiness"
	"github.com/portico-shell/portico/lib/staticsite"
)

// TestEndToEndProductionStartup wires a real static server and a real
// readiness gate against an HTTP backend that becomes healthy on the
// third probe. Only the child process itself is faked.
func TestEndToEndProductionStartup(t *testing.T) {
	var probes atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		if probes.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()
	backendPort := serverPort(t, backend)

	buildDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(buildDir, "index.html"), []byte("<html>shell</html>"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Environment = config.Production
	cfg.Backend.Port = backendPort
	cfg.Static.Dir = buildDir
	cfg.Paths.Resources = buildDir

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := readiness.New(logger)
	gate.Interval = 5 * time.Millisecond
	gate.AttemptTimeout = time.Second

	fakeSup := &fakeSupervisor{}
	userInterface := &recordingUI{}
	var static *staticsite.Server
	o := &Orchestrator{
		cfg:            cfg,
		manifest:       manifest.Default(),
		logger:         logger,
		ui:             userInterface,
		resolveRuntime: func() string { return "node" },
		supervisor:     fakeSup,
		gate:           gate,
		listenStatic: func(root string, port int) (staticServer, error) {
			// Port 0 keeps the test free of port conflicts.
			server, err := staticsite.Listen(root, 0, logger)
			static = server
			return server, err
		},
		environ:       func() []string { return nil },
		backendExited: make(chan int, 1),
	}
	defer o.Shutdown()

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := o.State(); got != StateReady {
		t.Fatalf("state = %s, want ready", got)
	}
	if got := probes.Load(); got != 3 {
		t.Errorf("backend saw %d probes, want 3", got)
	}
	if len(userInterface.windows) != 1 {
		t.Fatalf("CreateWindow called %d times, want exactly 1", len(userInterface.windows))
	}
	if len(fakeSup.specs) != 1 {
		t.Fatalf("backend spawned %d times, want 1", len(fakeSup.specs))
	}

	// The static server must actually be serving the SPA fallback.
	response, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/dashboard", static.Port()))
	if err != nil {
		t.Fatalf("GET static server: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusOK || string(body) != "<html>shell</html>" {
		t.Errorf("static response %d %q", response.StatusCode, body)
	}

	o.Shutdown()
	if fakeSup.stops != 1 {
		t.Errorf("supervisor stopped %d times, want 1", fakeSup.stops)
	}

	env := environmentMap(t, fakeSup.specs[0].Env)
	if env["PORT"] != fmt.Sprint(backendPort) {
		t.Errorf("PORT = %q, want %d", env["PORT"], backendPort)
	}
}

func serverPort(t *testing.T, server *httptest.Server) int {
	t.Helper()
	_, portString, err := net.SplitHostPort(server.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	var port int
	if _, err := fmt.Sscanf(portString, "%d", &port); err != nil {
		t.Fatal(err)
	}
	return port
}
