// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package ui is the boundary to the windowing toolkit. The orchestrator
// talks to it through the UI interface and never touches platform APIs
// directly, so the whole startup sequence is testable headless and the
// toolkit binding lives in its own build.
package ui

import "log/slog"

// UI is what the startup orchestrator needs from the window layer.
type UI interface {
	// CreateWindow opens the application window on the given URL. The
	// orchestrator calls this exactly once, only after the backend is
	// confirmed healthy.
	CreateWindow(url string, options WindowOptions) error

	// ShowFatalDialog presents a blocking, user-visible error dialog.
	// Called at most once, on fatal startup failure, before the
	// process exits.
	ShowFatalDialog(message string)

	// OpenExternal opens a URL in the user's default browser.
	OpenExternal(url string) error
}

// WindowOptions carries the presentation hints from the app manifest.
type WindowOptions struct {
	Title  string
	Width  int
	Height int
}

// Headless is a UI that logs instead of rendering. Used in tests and
// under --headless, where the shell supervises the backend without a
// window.
type Headless struct {
	Logger *slog.Logger
}

func (h *Headless) CreateWindow(url string, options WindowOptions) error {
	h.Logger.Info("window creation skipped (headless)",
		"url", url,
		"title", options.Title,
		"width", options.Width,
		"height", options.Height,
	)
	return nil
}

func (h *Headless) ShowFatalDialog(message string) {
	h.Logger.Error("fatal startup failure", "message", message)
}

func (h *Headless) OpenExternal(url string) error {
	h.Logger.Info("external link open skipped (headless)", "url", url)
	return nil
}
