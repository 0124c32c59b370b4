// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the Portico shell.
//
// Configuration is loaded from a single YAML file specified by:
//   - the --config flag passed to the shell, or
//   - the PORTICO_CONFIG environment variable.
//
// When neither is set the built-in defaults apply, so a packaged build
// runs with no config file at all. The config file may contain
// environment-specific sections (development, production) that override
// base values when the environment matches.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment represents the run mode of the shell.
type Environment string

const (
	// Development loads the window from the frontend dev server and
	// does not start the static asset server.
	Development Environment = "development"
	// Production serves the pre-built frontend from the static asset
	// server and loads the window from it.
	Production Environment = "production"
)

// Config is the master configuration for the Portico shell.
type Config struct {
	// Environment selects development or production startup.
	Environment Environment `yaml:"environment"`

	// Backend configures the supervised backend service process.
	Backend BackendConfig `yaml:"backend"`

	// Static configures the static asset server and the dev server URL.
	Static StaticConfig `yaml:"static"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Per-environment overrides, applied after the base config loads.
	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains the fields that can be overridden per environment.
type Overrides struct {
	Backend *BackendConfig `yaml:"backend,omitempty"`
	Static  *StaticConfig  `yaml:"static,omitempty"`
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
}

// BackendConfig configures the backend service process.
type BackendConfig struct {
	// Port is the TCP port the backend is told to bind via its
	// environment. The health probe targets this port.
	// Default: 3001
	Port int `yaml:"port"`

	// Entry is the script passed to the resolved runtime, relative to
	// the resources directory.
	// Default: server/index.js
	Entry string `yaml:"entry"`

	// Args are extra arguments appended after the entry script.
	Args []string `yaml:"args,omitempty"`

	// HealthPath is the readiness probe path on the backend.
	// Default: /api/health
	HealthPath string `yaml:"health_path"`
}

// StaticConfig configures where the frontend is served from.
type StaticConfig struct {
	// Port is the static asset server's listen port (production only).
	// Default: 8080
	Port int `yaml:"port"`

	// Dir is the pre-built frontend directory (production only).
	// Default: <resources>/frontend/dist
	Dir string `yaml:"dir"`

	// DevURL is the frontend dev server URL the window loads in
	// development mode.
	// Default: http://localhost:5173
	DevURL string `yaml:"dev_url"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Resources is the application resource directory holding the
	// backend entry script and the built frontend. Defaults to the
	// directory containing the shell binary.
	Resources string `yaml:"resources"`

	// Data is where the backend stores its data and where the shell
	// writes its log file.
	// Default: ~/.local/share/portico
	Data string `yaml:"data"`

	// Workspace is the user-facing project directory passed to the
	// backend. Default: <documents>/Portico under the user's home.
	Workspace string `yaml:"workspace"`

	// Modules is the module resolution path passed to the backend via
	// NODE_PATH. Default: <resources>/node_modules
	Modules string `yaml:"modules"`
}

// Default returns the default configuration. A packaged build runs on
// these values alone; the config file exists for development setups and
// unusual installs.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	executablePath, _ := os.Executable()
	resources := filepath.Dir(executablePath)

	return &Config{
		Environment: Production,
		Backend: BackendConfig{
			Port:       3001,
			Entry:      filepath.Join("server", "index.js"),
			HealthPath: "/api/health",
		},
		Static: StaticConfig{
			Port:   8080,
			Dir:    filepath.Join(resources, "frontend", "dist"),
			DevURL: "http://localhost:5173",
		},
		Paths: PathsConfig{
			Resources: resources,
			Data:      filepath.Join(homeDir, ".local", "share", "portico"),
			Workspace: filepath.Join(homeDir, "Documents", "Portico"),
			Modules:   filepath.Join(resources, "node_modules"),
		},
	}
}

// Load loads configuration from the given path. When path is empty it
// falls back to the PORTICO_CONFIG environment variable, and when that
// is also unset it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("PORTICO_CONFIG")
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. File values
// are merged over the defaults, then the matching environment override
// section is applied.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// startup failures.
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Production:
	default:
		return fmt.Errorf("unknown environment %q (want development or production)", c.Environment)
	}
	if c.Backend.Port <= 0 || c.Backend.Port > 65535 {
		return fmt.Errorf("backend port %d out of range", c.Backend.Port)
	}
	if c.Static.Port <= 0 || c.Static.Port > 65535 {
		return fmt.Errorf("static port %d out of range", c.Static.Port)
	}
	if c.Backend.Port == c.Static.Port {
		return fmt.Errorf("backend and static server cannot share port %d", c.Backend.Port)
	}
	return nil
}

// applyEnvironmentOverrides applies the matching per-environment
// override section onto the base config.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Backend != nil {
		if overrides.Backend.Port != 0 {
			c.Backend.Port = overrides.Backend.Port
		}
		if overrides.Backend.Entry != "" {
			c.Backend.Entry = overrides.Backend.Entry
		}
		if overrides.Backend.Args != nil {
			c.Backend.Args = overrides.Backend.Args
		}
		if overrides.Backend.HealthPath != "" {
			c.Backend.HealthPath = overrides.Backend.HealthPath
		}
	}

	if overrides.Static != nil {
		if overrides.Static.Port != 0 {
			c.Static.Port = overrides.Static.Port
		}
		if overrides.Static.Dir != "" {
			c.Static.Dir = overrides.Static.Dir
		}
		if overrides.Static.DevURL != "" {
			c.Static.DevURL = overrides.Static.DevURL
		}
	}

	if overrides.Paths != nil {
		if overrides.Paths.Resources != "" {
			c.Paths.Resources = overrides.Paths.Resources
		}
		if overrides.Paths.Data != "" {
			c.Paths.Data = overrides.Paths.Data
		}
		if overrides.Paths.Workspace != "" {
			c.Paths.Workspace = overrides.Paths.Workspace
		}
		if overrides.Paths.Modules != "" {
			c.Paths.Modules = overrides.Paths.Modules
		}
	}
}

// BackendHealthURL returns the readiness probe URL for the configured
// backend port.
func (c *Config) BackendHealthURL() string {
	return fmt.Sprintf("http://localhost:%d%s", c.Backend.Port, c.Backend.HealthPath)
}

// WindowURL returns the URL the application window loads once the
// backend is healthy: the static server in production, the frontend dev
// server in development.
func (c *Config) WindowURL() string {
	if c.Environment == Production {
		return fmt.Sprintf("http://localhost:%d/", c.Static.Port)
	}
	return c.Static.DevURL
}
