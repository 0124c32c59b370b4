// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest reads the application manifest shipped inside the
// built frontend directory. The manifest is JSONC (JSON with comments
// and trailing commas) so frontend builds can annotate it; it carries
// window presentation hints and optional backend overrides.
//
// The manifest is advisory: a missing file yields the defaults, because
// the shell must be able to launch a build that predates the manifest.
// A present-but-unparseable file is an error — that is a broken build,
// not an old one.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Filename is the manifest's name inside the frontend build directory.
const Filename = "app.jsonc"

// Manifest carries application presentation hints for the shell.
type Manifest struct {
	// Name is the application name shown in the window title.
	Name string `json:"name"`

	// Window configures initial window geometry.
	Window Window `json:"window"`

	// BackendEntry, when non-empty, overrides the configured backend
	// entry script (relative to the resources directory).
	BackendEntry string `json:"backend_entry,omitempty"`
}

// Window is the initial window geometry.
type Window struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Default returns the manifest used when the build ships none.
func Default() Manifest {
	return Manifest{
		Name:   "Portico",
		Window: Window{Width: 1280, Height: 800},
	}
}

// Load reads the manifest from the given frontend build directory.
// A missing file returns Default() and no error.
func Load(frontendDir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(frontendDir, Filename))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Manifest{}, fmt.Errorf("reading app manifest: %w", err)
	}

	m := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing app manifest: %w", err)
	}
	if m.Window.Width <= 0 || m.Window.Height <= 0 {
		return Manifest{}, fmt.Errorf("app manifest: window size %dx%d is not positive", m.Window.Width, m.Window.Height)
	}
	return m, nil
}
