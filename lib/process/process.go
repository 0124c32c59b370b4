// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the Portico
// shell. It centralizes the raw stderr I/O that happens before the
// structured logger exists: fatal error reporting in main() for errors
// from run(). Everything after logger initialization goes through slog.
package process

import (
	"fmt"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized yet.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
