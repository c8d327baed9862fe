// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package distrib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadmeName is the instructions file written into every distribution.
const ReadmeName = "README.txt"

// ErrArtifactCopy indicates the built artifact could not be placed into
// the distribution folder.
var ErrArtifactCopy = errors.New("artifact copy failed")

// -----------------------------------------------------------------------------
// Assembler
// -----------------------------------------------------------------------------

// AssembleOptions configures one distribution assembly.
type AssembleOptions struct {
	// ArtifactPath is the built artifact to ship.
	ArtifactPath string

	// ArtifactIsBundle selects recursive copy for directory artifacts.
	ArtifactIsBundle bool

	// WeightsPath is the model weights directory to bundle. Empty or
	// absent paths degrade to an advisory, not a failure.
	WeightsPath string

	// ReadmeText is the rendered user instructions content.
	ReadmeText string
}

// AssembleResult reports a completed assembly.
type AssembleResult struct {
	// Dir is the distribution folder, rebuilt from scratch.
	Dir string

	// ArtifactDest is where the artifact landed inside Dir.
	ArtifactDest string

	// WeightsBundled is true when model weights were shipped.
	WeightsBundled bool

	// Advisories lists non-fatal degradations (currently only missing
	// weights).
	Advisories []string
}

// Assembler builds the self-contained distribution folder.
type Assembler interface {
	// Assemble rebuilds the distribution folder from scratch: artifact,
	// model weights when available, and user instructions.
	Assemble(ctx context.Context, opts AssembleOptions) (*AssembleResult, error)
}

// DefaultAssembler implements Assembler for the project at root.
type DefaultAssembler struct {
	root    string
	distDir string
	output  io.Writer
}

// NewDefaultAssembler creates an Assembler writing to distDir under
// root. A nil output discards progress lines.
func NewDefaultAssembler(root, distDir string, output io.Writer) *DefaultAssembler {
	if output == nil {
		output = io.Discard
	}
	return &DefaultAssembler{root: root, distDir: distDir, output: output}
}

// Assemble rebuilds the distribution folder from scratch.
//
// Any existing folder is removed first so stale files from earlier
// builds can never ride along.
func (a *DefaultAssembler) Assemble(ctx context.Context, opts AssembleOptions) (*AssembleResult, error) {
	fmt.Fprintf(a.output, "Assembling distribution folder...\n")

	dir := filepath.Join(a.root, a.distDir)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", a.distDir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", a.distDir, err)
	}

	result := &AssembleResult{Dir: dir}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := a.placeArtifact(opts, result); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := a.placeWeights(opts, result); err != nil {
		return nil, err
	}

	readmePath := filepath.Join(dir, ReadmeName)
	if err := os.WriteFile(readmePath, []byte(opts.ReadmeText), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", ReadmeName, err)
	}
	fmt.Fprintf(a.output, "  Wrote %s\n", ReadmeName)

	return result, nil
}

// placeArtifact copies the built artifact into the distribution folder.
// Bundles copy recursively; single binaries keep mode and mtime.
func (a *DefaultAssembler) placeArtifact(opts AssembleOptions, result *AssembleResult) error {
	dest := filepath.Join(result.Dir, filepath.Base(opts.ArtifactPath))

	var err error
	if opts.ArtifactIsBundle {
		err = copyTree(opts.ArtifactPath, dest)
	} else {
		err = copyFile(opts.ArtifactPath, dest)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactCopy, err)
	}

	result.ArtifactDest = dest
	fmt.Fprintf(a.output, "  Copied %s\n", filepath.Base(dest))
	return nil
}

// placeWeights bundles the model weights when present. Absence is an
// advisory: the app can download or be pointed at weights later. A
// weights tree that exists but cannot be copied is a real I/O problem
// and fails the assembly.
func (a *DefaultAssembler) placeWeights(opts AssembleOptions, result *AssembleResult) error {
	if opts.WeightsPath == "" {
		return nil
	}
	if _, err := os.Stat(opts.WeightsPath); err != nil {
		advisory := fmt.Sprintf("model weights not found at %s; the app will need weights installed separately",
			filepath.Base(opts.WeightsPath))
		result.Advisories = append(result.Advisories, advisory)
		fmt.Fprintf(a.output, "  Warning: %s\n", advisory)
		return nil
	}

	dest := filepath.Join(result.Dir, filepath.Base(opts.WeightsPath))
	if err := copyTree(opts.WeightsPath, dest); err != nil {
		return fmt.Errorf("copying weights: %w", err)
	}

	result.WeightsBundled = true
	fmt.Fprintf(a.output, "  Copied %s/\n", filepath.Base(dest))
	return nil
}

// Compile-time interface compliance check.
var _ Assembler = (*DefaultAssembler)(nil)
