// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package noderuntime locates a Node.js executable for the backend
// service. Desktop launchers inherit a near-empty PATH on macOS and on
// Linux desktop sessions, so PATH lookup alone is unreliable: the
// resolver probes version-manager installs and well-known locations
// directly and only falls back to the ambient PATH as a last resort.
package noderuntime

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Command is the bare runtime command name used when no concrete
// install can be found. Spawning it relies on PATH resolution at exec
// time.
const Command = "node"

// Resolver finds a runnable Node.js executable. Resolve never fails:
// when every probe comes up empty it returns the bare command name.
//
// Candidate priority, highest first: newest version-manager install
// (nvm, then fnm), the PORTICO_NODE environment hint, fixed per-platform
// install locations, a synchronous shell `which` query, and finally the
// bare command name.
//
// The zero value is not usable; construct with NewResolver. The hook
// fields exist so tests can resolve against a fake filesystem.
type Resolver struct {
	// HomeDir anchors the version-manager directory probes.
	HomeDir string

	// EnvHint is an explicit executable path from PORTICO_NODE.
	EnvHint string

	// GOOS selects the platform candidate table.
	GOOS string

	// Exists reports whether a path exists and is not a directory.
	Exists func(path string) bool

	// ListDir returns the entry names of a directory. Errors are
	// treated as "no versions installed", never as fatal.
	ListDir func(path string) ([]string, error)

	// ShellQuery asks the ambient environment where a command lives
	// (which/where). Returns an error when the command is unknown.
	ShellQuery func(command string) (string, error)

	logger *slog.Logger
}

// NewResolver returns a Resolver wired to the real filesystem and
// environment.
func NewResolver(logger *slog.Logger) *Resolver {
	homeDir, _ := os.UserHomeDir()
	return &Resolver{
		HomeDir:    homeDir,
		EnvHint:    os.Getenv("PORTICO_NODE"),
		GOOS:       runtime.GOOS,
		Exists:     fileExists,
		ListDir:    listDir,
		ShellQuery: shellQuery,
		logger:     logger,
	}
}

// Resolve returns a path to a Node.js executable, or the bare command
// name when no install could be located. The caller finds out whether
// the bare name actually resolves when it spawns the process.
func (r *Resolver) Resolve() string {
	candidates := r.versionManagerCandidates()
	if r.EnvHint != "" {
		candidates = append(candidates, r.EnvHint)
	}
	candidates = append(candidates, fixedCandidates(r.GOOS)...)

	for _, candidate := range candidates {
		if r.Exists(candidate) {
			r.logger.Info("resolved node runtime", "path", candidate)
			return candidate
		}
	}

	if path, err := r.ShellQuery(Command); err == nil && path != "" && r.Exists(path) {
		r.logger.Info("resolved node runtime via shell lookup", "path", path)
		return path
	}

	r.logger.Warn("no node install found, falling back to bare command name",
		"command", Command,
	)
	return Command
}

// versionManagerCandidates probes the nvm and fnm directory layouts and
// returns the newest installed binary of each, nvm first. Unreadable
// directories contribute nothing.
func (r *Resolver) versionManagerCandidates() []string {
	binary := Command
	if r.GOOS == "windows" {
		binary = Command + ".exe"
	}

	managers := []struct {
		versionsDir string
		relative    []string
	}{
		{
			versionsDir: filepath.Join(r.HomeDir, ".nvm", "versions", "node"),
			relative:    []string{"bin", binary},
		},
		{
			versionsDir: filepath.Join(r.HomeDir, ".local", "share", "fnm", "node-versions"),
			relative:    []string{"installation", "bin", binary},
		},
	}

	var candidates []string
	for _, manager := range managers {
		versions, err := r.ListDir(manager.versionsDir)
		if err != nil {
			continue
		}
		sortVersionsDescending(versions)
		for _, version := range versions {
			parts := append([]string{manager.versionsDir, version}, manager.relative...)
			candidate := filepath.Join(parts...)
			if r.Exists(candidate) {
				candidates = append(candidates, candidate)
				break
			}
		}
	}
	return candidates
}

// fixedCandidates returns the well-known install locations for the
// platform, in probe order.
func fixedCandidates(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/opt/homebrew/bin/node",
			"/usr/local/bin/node",
			"/usr/bin/node",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramFiles"), "nodejs", "node.exe"),
			filepath.Join(os.Getenv("LocalAppData"), "Programs", "nodejs", "node.exe"),
		}
	default:
		return []string{
			"/usr/local/bin/node",
			"/usr/bin/node",
			"/snap/bin/node",
		}
	}
}

// sortVersionsDescending orders version directory names newest first
// using numeric-aware comparison, so "v8.10.0" sorts above "v8.9.0" and
// "10" above "9". Non-numeric segments fall back to string comparison.
func sortVersionsDescending(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) > 0
	})
}

// compareVersions returns >0 when a is newer than b, <0 when older,
// 0 when equal.
func compareVersions(a, b string) int {
	aSegments := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bSegments := strings.Split(strings.TrimPrefix(b, "v"), ".")

	for i := 0; i < len(aSegments) || i < len(bSegments); i++ {
		var aSegment, bSegment string
		if i < len(aSegments) {
			aSegment = aSegments[i]
		}
		if i < len(bSegments) {
			bSegment = bSegments[i]
		}
		aNumber, aErr := strconv.Atoi(aSegment)
		bNumber, bErr := strconv.Atoi(bSegment)
		switch {
		case aErr == nil && bErr == nil:
			if aNumber != bNumber {
				return aNumber - bNumber
			}
		default:
			if c := strings.Compare(aSegment, bSegment); c != 0 {
				return c
			}
		}
	}
	return 0
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func listDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// shellQuery resolves a command through the ambient search path via
// which (where on Windows).
func shellQuery(command string) (string, error) {
	lookup := "which"
	if runtime.GOOS == "windows" {
		lookup = "where"
	}
	output, err := exec.Command(lookup, command).Output()
	if err != nil {
		return "", err
	}
	// `where` can print multiple matches; take the first line.
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimFunc(line, unicode.IsSpace), nil
}
