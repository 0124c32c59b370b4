// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package readiness polls the backend's health endpoint until it
// answers, with a bounded attempt budget. This is the shell's only
// mechanism for detecting "backend is usable": the application window
// is never created before the gate opens, so the frontend never loads
// against a backend that is still binding its listener.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/portico-shell/portico/lib/clock"
)

// Defaults used by the orchestrator: 30 attempts, 500ms apart, each
// bounded at 1s — roughly 15 seconds before giving up.
const (
	DefaultMaxAttempts    = 30
	DefaultInterval       = 500 * time.Millisecond
	DefaultAttemptTimeout = time.Second
)

// ErrTimeout is returned when the attempt budget is exhausted without a
// healthy response.
var ErrTimeout = errors.New("backend did not become ready")

// Gate polls a health URL. The zero value is not usable; construct with
// New and adjust the exported fields before the first Wait.
type Gate struct {
	// Client issues the probe requests. Per-attempt timeouts are
	// applied via request contexts, not the client's Timeout field.
	Client *http.Client

	// MaxAttempts is the probe budget.
	MaxAttempts int

	// Interval is the pause between a failed attempt and the next.
	Interval time.Duration

	// AttemptTimeout bounds each individual probe. A timed-out attempt
	// counts as failed and consumes one unit of budget.
	AttemptTimeout time.Duration

	// Clock paces the inter-attempt pauses. Tests inject a fake.
	Clock clock.Clock

	logger *slog.Logger
}

// New returns a Gate with the default budget and the real clock.
func New(logger *slog.Logger) *Gate {
	return &Gate{
		Client:         &http.Client{},
		MaxAttempts:    DefaultMaxAttempts,
		Interval:       DefaultInterval,
		AttemptTimeout: DefaultAttemptTimeout,
		Clock:          clock.Real(),
		logger:         logger,
	}
}

// Wait blocks until healthURL answers 200, the attempt budget runs out
// (ErrTimeout), or ctx is canceled. Any connection error, non-200
// status, or per-attempt timeout is a failed attempt; the budget is the
// only retry mechanism.
func (g *Gate) Wait(ctx context.Context, healthURL string) error {
	for attempt := 1; attempt <= g.MaxAttempts; attempt++ {
		err := g.probe(ctx, healthURL)
		if err == nil {
			g.logger.Info("backend ready", "attempt", attempt, "url", healthURL)
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("waiting for backend: %w", ctx.Err())
		}
		g.logger.Debug("backend not ready yet",
			"attempt", attempt,
			"max_attempts", g.MaxAttempts,
			"error", err,
		)

		if attempt == g.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for backend: %w", ctx.Err())
		case <-g.Clock.After(g.Interval):
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrTimeout, g.MaxAttempts)
}

// probe performs one health request, bounded by AttemptTimeout.
func (g *Gate) probe(ctx context.Context, healthURL string) error {
	attemptCtx, cancel := context.WithTimeout(ctx, g.AttemptTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, healthURL, nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}
	response, err := g.Client.Do(request)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", response.StatusCode)
	}
	return nil
}
