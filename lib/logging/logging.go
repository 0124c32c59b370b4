// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the shell's slog logger. Records fan out to up
// to three sinks: stderr (human-readable text on a terminal, JSON
// otherwise), a JSON log file under the data directory, and the systemd
// journal when journald is reachable. Missing sinks degrade quietly —
// a desktop shell must keep running when there is no journal and the
// data directory is not writable yet.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
	"golang.org/x/term"
)

// Options controls logger construction.
type Options struct {
	// Level is the minimum level across all sinks.
	Level slog.Level

	// FilePath, when non-empty, adds a JSON file sink. The parent
	// directory is created if needed.
	FilePath string

	// Journal, when true, attempts to add a systemd journal sink.
	// Failure to reach journald is not an error.
	Journal bool
}

// Setup builds the logger. The returned close function flushes and
// closes the file sink; call it on shutdown.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	handlerOptions := &slog.HandlerOptions{Level: opts.Level}

	var handlers []slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, handlerOptions))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(os.Stderr, handlerOptions))
	}

	closeFile := func() error { return nil }
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		file, err := os.OpenFile(opts.FilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, handlerOptions))
		closeFile = file.Close
	}

	var journalError error
	if opts.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			ReplaceGroup: func(key string) string { return journalKey(key) },
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			journalError = err
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	logger := slog.New(slogmulti.Fanout(handlers...))
	if journalError != nil {
		logger.Warn("systemd journal unavailable", "error", journalError)
	}
	return logger, closeFile, nil
}

// journalKey converts a slog attribute key to the character set
// journald accepts: uppercase ASCII letters, digits, and underscores.
func journalKey(key string) string {
	key = strings.ToUpper(key)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, key)
}
