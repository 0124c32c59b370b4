// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package contextfile manages per-feature context notes for a project:
// markdown files under the project's context directory that the
// frontend reads and appends to. Plain file I/O with no locking — the
// single-window shell is the only writer.
package contextfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirName is the context directory inside a project.
const DirName = "context"

// ErrNotFound indicates the requested feature has no context file.
var ErrNotFound = errors.New("context file not found")

// Preview summarizes one context file for directory listings.
type Preview struct {
	// FeatureID is the file name without the .md extension.
	FeatureID string

	// FirstLine is the file's first line, trimmed.
	FirstLine string

	// Size is the file size in bytes.
	Size int64
}

// Write appends content to the feature's context file, creating the
// file and the context directory as needed. A trailing newline is added
// when content lacks one so successive appends stay line-separated.
func Write(projectPath, featureID, content string) error {
	path, err := featurePath(projectPath, featureID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating context directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening context file: %w", err)
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return fmt.Errorf("writing context file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing context file: %w", err)
	}
	return nil
}

// Read returns the feature's context file contents. A missing file
// returns ErrNotFound.
func Read(projectPath, featureID string) (string, error) {
	path, err := featurePath(projectPath, featureID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, featureID)
		}
		return "", fmt.Errorf("reading context file: %w", err)
	}
	return string(data), nil
}

// Delete removes the feature's context file. Already absent is success.
func Delete(projectPath, featureID string) error {
	path, err := featurePath(projectPath, featureID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing context file: %w", err)
	}
	return nil
}

// List returns previews of every context file in the project, sorted by
// feature ID. A missing context directory yields an empty list.
func List(projectPath string) ([]Preview, error) {
	dir := filepath.Join(projectPath, DirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing context directory: %w", err)
	}

	var previews []Preview
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		previews = append(previews, Preview{
			FeatureID: strings.TrimSuffix(name, ".md"),
			FirstLine: firstLine(filepath.Join(dir, name)),
			Size:      info.Size(),
		})
	}
	sort.Slice(previews, func(i, j int) bool {
		return previews[i].FeatureID < previews[j].FeatureID
	})
	return previews, nil
}

// featurePath validates the feature ID and returns its file path.
// Separators and relative segments are rejected so a feature ID can
// never name a file outside the context directory.
func featurePath(projectPath, featureID string) (string, error) {
	if featureID == "" ||
		featureID != filepath.Base(featureID) ||
		featureID == "." || featureID == ".." ||
		strings.ContainsAny(featureID, `/\`) {
		return "", fmt.Errorf("invalid feature ID %q", featureID)
	}
	return filepath.Join(projectPath, DirName, featureID+".md"), nil
}

func firstLine(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
