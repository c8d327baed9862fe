// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package packager ensures the packaging tool is present and drives the
build that turns the application source into a platform artifact.

The packaging tool is PyInstaller. A failed install attempt here is an
advisory, not an abort: the build stage fails loudly on its own when
the tool is genuinely absent, and its diagnostics name the real cause.
*/
package packager

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/clearframe/packsmith/cmd/packsmith/internal/proc"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/toolchain"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/util"
)

const (
	// Tool is the packager's console command.
	Tool = "pyinstaller"

	// ToolModule is the packager's import name for presence probes.
	ToolModule = "PyInstaller"

	// ToolPackage is the name handed to the installer when absent.
	ToolPackage = "pyinstaller"
)

// -----------------------------------------------------------------------------
// Installer
// -----------------------------------------------------------------------------

// EnsureResult reports how the packaging tool became available.
type EnsureResult struct {
	// AlreadyPresent is true when the probe found the tool installed.
	AlreadyPresent bool

	// Installed is true when an install ran and succeeded.
	Installed bool

	// Advisories lists non-fatal problems, such as a failed install.
	Advisories []string
}

// Installer guarantees the packaging tool is importable before a build.
type Installer interface {
	// Ensure probes for the tool and installs it when absent.
	//
	// # Outputs
	//
	//   - *EnsureResult: Whether the tool was found or freshly
	//     installed; a failed install lands in Advisories
	//   - error: Non-nil only for cancellation
	Ensure(ctx context.Context) (*EnsureResult, error)
}

// DefaultInstaller implements Installer through the process runner.
type DefaultInstaller struct {
	runner proc.Runner
	inv    toolchain.Invocations
	root   string
	output io.Writer
}

// NewDefaultInstaller creates an Installer for the project at root.
// A nil output discards progress lines.
func NewDefaultInstaller(runner proc.Runner, inv toolchain.Invocations, root string, output io.Writer) *DefaultInstaller {
	if output == nil {
		output = io.Discard
	}
	return &DefaultInstaller{runner: runner, inv: inv, root: root, output: output}
}

// Ensure probes for the tool and installs it when absent.
func (i *DefaultInstaller) Ensure(ctx context.Context) (*EnsureResult, error) {
	fmt.Fprintf(i.output, "Checking packaging tool...\n")

	res, err := i.runner.Run(ctx, i.inv.Probe(ToolModule, i.root))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Interpreter unusable; the install attempt below will say why.
		slog.Debug("Packaging tool probe could not run", "error", err)
	} else if res.Success() {
		fmt.Fprintf(i.output, "  %s already installed\n", ToolModule)
		return &EnsureResult{AlreadyPresent: true}, nil
	}

	fmt.Fprintf(i.output, "  Installing %s via %s...\n", ToolPackage, i.inv.Toolchain.DisplayName())

	cmd := i.inv.Install([]string{ToolPackage}, i.root)
	res, err = i.runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		advisory := fmt.Sprintf("packaging tool install could not run: %v", err)
		fmt.Fprintf(i.output, "  Warning: %s\n", advisory)
		return &EnsureResult{Advisories: []string{advisory}}, nil
	}
	if !res.Success() {
		cmdErr := util.NewCommandError(cmd.String(), res.ExitCode, res.Stderr, nil)
		advisory := fmt.Sprintf("packaging tool install failed: %v", cmdErr)
		fmt.Fprintf(i.output, "  Warning: %s\n", advisory)
		return &EnsureResult{Advisories: []string{advisory}}, nil
	}

	fmt.Fprintf(i.output, "  %s installed\n", ToolModule)
	slog.Info("Installed packaging tool", "package", ToolPackage)
	return &EnsureResult{Installed: true}, nil
}

// Compile-time interface compliance check.
var _ Installer = (*DefaultInstaller)(nil)
