// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package staticsite serves the pre-built frontend during production
// startup. It is deliberately minimal: every request is treated as a
// GET-like lookup, unknown routes fall back to the application shell
// (index.html) so client-side routing can take over, and there are no
// caching headers, range requests, or directory listings. It exists to
// serve exactly one single-page application to exactly one local
// window, not as a general-purpose file server.
package staticsite

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrAssetsMissing indicates the frontend build directory or its root
// index.html does not exist. Startup treats this as fatal before the
// backend is ever spawned.
var ErrAssetsMissing = errors.New("static assets missing")

// contentTypes maps file extensions to MIME types. Unknown extensions
// are served as application/octet-stream.
var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".json":  "application/json",
	".map":   "application/json",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".wasm":  "application/wasm",
	".txt":   "text/plain; charset=utf-8",
}

// Server serves one frontend build directory over loopback HTTP.
type Server struct {
	listener net.Listener
	server   *http.Server
	logger   *slog.Logger
}

// Listen validates the build directory and starts serving it on the
// loopback interface at the given port (0 picks a free port, used by
// tests). A missing directory or missing root index.html returns
// ErrAssetsMissing; a bind failure (port in use) returns the listen
// error.
func Listen(root string, port int, logger *slog.Logger) (*Server, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: frontend build directory %s not found", ErrAssetsMissing, root)
	}
	if _, err := os.Stat(filepath.Join(root, "index.html")); err != nil {
		return nil, fmt.Errorf("%w: %s has no index.html", ErrAssetsMissing, root)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("binding static server port %d: %w", port, err)
	}

	s := &Server{
		listener: listener,
		server:   &http.Server{Handler: Handler(root, logger)},
		logger:   logger,
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("static server stopped", "error", err)
		}
	}()

	logger.Info("static server listening", "addr", listener.Addr().String(), "root", root)
	return s, nil
}

// Port returns the bound port.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Close shuts the listening socket and any open connections. Safe to
// call more than once.
func (s *Server) Close() error {
	err := s.server.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Handler returns the request handler for a build directory. Split out
// from Listen so tests can drive it through httptest.
func Handler(root string, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// r.URL.Path is already stripped of the query string.
		requestPath := path.Clean(r.URL.Path)

		relative := requestPath
		switch {
		case strings.HasSuffix(r.URL.Path, "/"):
			relative = path.Join(requestPath, "index.html")
		case path.Ext(requestPath) == "":
			relative += ".html"
		}

		target := filepath.Join(root, filepath.FromSlash(relative))
		// path.Clean above removes ".." segments relative to the root,
		// but keep the containment check as the final word.
		if !strings.HasPrefix(target, filepath.Clean(root)+string(filepath.Separator)) {
			target = filepath.Join(root, "index.html")
		}

		info, err := os.Stat(target)
		if err != nil || !info.Mode().IsRegular() {
			// SPA fallback: unknown routes resolve to the app shell.
			target = filepath.Join(root, "index.html")
		}

		data, err := os.ReadFile(target)
		if err != nil {
			logger.Error("reading static asset", "path", target, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		contentType, ok := contentTypes[strings.ToLower(filepath.Ext(target))]
		if !ok {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	})
}
