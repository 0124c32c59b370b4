// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/portico-shell/portico/lib/config"
)

// buildEnvironment assembles the backend's environment: the inherited
// process environment with the service port, data directory, module
// resolution path, and workspace directory overlaid. When the runtime
// resolved to a concrete install (an absolute path), its directory is
// prepended to PATH so anything the backend itself spawns (npm, npx)
// uses the same install.
//
// The result is built fresh per spawn; a restarted backend never sees a
// stale environment.
func buildEnvironment(base []string, cfg *config.Config, executable string) []string {
	overrides := map[string]string{
		"PORT":                  strconv.Itoa(cfg.Backend.Port),
		"PORTICO_DATA_DIR":      cfg.Paths.Data,
		"NODE_PATH":             cfg.Paths.Modules,
		"PORTICO_WORKSPACE_DIR": cfg.Paths.Workspace,
	}

	pathValue := ""
	environment := make([]string, 0, len(base)+len(overrides))
	for _, entry := range base {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if key == "PATH" {
			pathValue = value
			continue
		}
		if _, overridden := overrides[key]; overridden {
			continue
		}
		environment = append(environment, entry)
	}

	if filepath.IsAbs(executable) {
		runtimeDir := filepath.Dir(executable)
		if pathValue == "" {
			pathValue = runtimeDir
		} else {
			pathValue = runtimeDir + string(filepath.ListSeparator) + pathValue
		}
	}
	if pathValue != "" {
		environment = append(environment, "PATH="+pathValue)
	}

	for key, value := range overrides {
		environment = append(environment, key+"="+value)
	}
	return environment
}
