// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package distrib owns the file-system lifecycle around a build: clearing
stale build state beforehand and assembling the distribution folder
afterwards.

Both operations work on explicit paths and are exercised against temp
directories in tests; no process execution is involved.
*/
package distrib

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CacheDirName is the interpreter's bytecode cache directory, removed
// wherever it appears under the project tree.
const CacheDirName = "__pycache__"

// -----------------------------------------------------------------------------
// Cleaner
// -----------------------------------------------------------------------------

// CleanResult reports what a clean pass removed.
type CleanResult struct {
	// Removed lists the paths actually deleted, project-relative.
	Removed []string
}

// Cleaner removes stale build state so every build starts fresh.
type Cleaner interface {
	// Clean removes the configured build trees and all bytecode caches.
	//
	// Absent targets are skipped silently; running Clean twice in a row
	// is a no-op the second time.
	Clean(ctx context.Context) (*CleanResult, error)
}

// DefaultCleaner implements Cleaner for the project at root.
type DefaultCleaner struct {
	root   string
	dirs   []string
	output io.Writer
}

// NewDefaultCleaner creates a Cleaner that removes the named top-level
// dirs plus every bytecode cache under root. A nil output discards
// progress lines.
func NewDefaultCleaner(root string, dirs []string, output io.Writer) *DefaultCleaner {
	if output == nil {
		output = io.Discard
	}
	return &DefaultCleaner{root: root, dirs: dirs, output: output}
}

// Clean removes the configured build trees and all bytecode caches.
func (c *DefaultCleaner) Clean(ctx context.Context) (*CleanResult, error) {
	fmt.Fprintf(c.output, "Cleaning previous build state...\n")
	result := &CleanResult{}

	for _, dir := range c.dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(c.root, dir)
		removed, err := removeIfPresent(path)
		if err != nil {
			return nil, fmt.Errorf("removing %s: %w", dir, err)
		}
		if removed {
			fmt.Fprintf(c.output, "  Removed %s/\n", dir)
			result.Removed = append(result.Removed, dir)
		}
	}

	if err := c.removeCacheDirs(ctx, result); err != nil {
		return nil, err
	}

	if len(result.Removed) == 0 {
		fmt.Fprintf(c.output, "  Nothing to clean\n")
	}
	return result, nil
}

// removeCacheDirs walks the remaining tree and deletes every bytecode
// cache directory. Removed caches are not descended into.
func (c *DefaultCleaner) removeCacheDirs(ctx context.Context, result *CleanResult) error {
	return filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The entry may have been removed by an earlier pass.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() || d.Name() != CacheDirName {
			return nil
		}

		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(c.root, path)
		if relErr != nil {
			rel = path
		}
		fmt.Fprintf(c.output, "  Removed %s/\n", rel)
		result.Removed = append(result.Removed, rel)
		return filepath.SkipDir
	})
}

// removeIfPresent deletes path if it exists. Returns whether anything
// was removed.
func removeIfPresent(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := os.RemoveAll(path); err != nil {
		return false, err
	}
	return true, nil
}

// Compile-time interface compliance check.
var _ Cleaner = (*DefaultCleaner)(nil)
