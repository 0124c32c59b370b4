// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Browser is the fallback window layer used when no native toolkit
// binding is compiled in: the "window" is the user's default browser
// pointed at the frontend. Fatal dialogs are best-effort native alerts
// with a stderr fallback.
type Browser struct {
	Logger *slog.Logger
}

func (b *Browser) CreateWindow(url string, options WindowOptions) error {
	b.Logger.Info("opening application in default browser",
		"url", url,
		"title", options.Title,
	)
	return b.OpenExternal(url)
}

func (b *Browser) OpenExternal(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	// The opener is fire-and-forget; reap it in the background so it
	// never lingers as a zombie.
	go cmd.Wait()
	return nil
}

func (b *Browser) ShowFatalDialog(message string) {
	b.Logger.Error("fatal startup failure", "message", message)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("osascript", "-e",
			fmt.Sprintf("display dialog %q with title \"Portico\" buttons {\"OK\"} with icon stop", message))
	case "windows":
		return
	default:
		cmd = exec.Command("zenity", "--error", "--title", "Portico", "--text", message)
	}
	// Best-effort: a missing dialog helper must not mask the logged
	// error or block shutdown.
	cmd.Run()
}
