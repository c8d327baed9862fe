// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package resolve verifies and installs the application's runtime
dependencies before packaging.

# Problem Statement

PyInstaller silently produces a broken bundle when a runtime library is
absent at build time. Users then discover the problem at app launch,
far from the cause. This component verifies every dependency up front
and remediates automatically.

# Solution

Resolution has two paths, tried in order:

 1. Declarative: when uv is the active toolchain and the project carries
    a pyproject.toml manifest, a single "uv sync" brings the whole
    environment in line with the lockfile. If sync succeeds nothing else
    runs: no probes, no installs.

 2. Imperative: each dependency is probed for presence on the
    interpreter's module search path (a locate-only check that never
    imports the library). Probing is free of side effects, so the probe
    pass always runs to completion; the missing subset is then handed to
    the toolchain's installer in one batch invocation.

# Graceful Degradation

A failed sync falls back to the imperative path with a warning. A failed
batch install is recorded as an advisory rather than aborting the run:
the packaging stage gives the definitive verdict on whether the
environment is actually usable, with far better diagnostics than a pip
resolution trace.
*/
package resolve

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/clearframe/packsmith/cmd/packsmith/config"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/proc"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/toolchain"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/util"
)

// ManifestName is the dependency manifest that enables declarative sync.
const ManifestName = "pyproject.toml"

// -----------------------------------------------------------------------------
// Result Types
// -----------------------------------------------------------------------------

// Status records the probe outcome for a single dependency.
type Status struct {
	// Name is the installer-facing package name.
	Name string

	// Module is the probed import name.
	Module string

	// Present is true when the module was found on the search path.
	Present bool
}

// Result aggregates a resolution pass.
type Result struct {
	// Synced is true when declarative sync satisfied the environment.
	// When set, Statuses and Missing are empty: nothing was probed.
	Synced bool

	// Statuses holds per-dependency probe outcomes, in configured order.
	Statuses []Status

	// Missing lists package names that were absent, in configured order.
	Missing []string

	// Installed is true when a batch install ran and exited zero.
	Installed bool

	// Advisories lists non-fatal degradations encountered.
	Advisories []string
}

// -----------------------------------------------------------------------------
// Interface Definition
// -----------------------------------------------------------------------------

// Resolver brings the project's runtime dependencies in line before a
// build.
type Resolver interface {
	// Resolve verifies dependencies and installs what is missing.
	//
	// # Outputs
	//
	//   - *Result: What was checked, what was missing, what was done
	//   - error: Non-nil only for cancellation; degradations are
	//     reported through Result.Advisories
	Resolve(ctx context.Context) (*Result, error)
}

// -----------------------------------------------------------------------------
// Implementation
// -----------------------------------------------------------------------------

// DefaultResolver implements Resolver against a real project tree.
type DefaultResolver struct {
	runner proc.Runner
	inv    toolchain.Invocations
	root   string
	deps   []config.Dependency
	output io.Writer
}

// NewDefaultResolver creates a resolver for the project at root.
// A nil output discards progress lines.
func NewDefaultResolver(runner proc.Runner, inv toolchain.Invocations, root string, deps []config.Dependency, output io.Writer) *DefaultResolver {
	if output == nil {
		output = io.Discard
	}
	return &DefaultResolver{
		runner: runner,
		inv:    inv,
		root:   root,
		deps:   deps,
		output: output,
	}
}

// Resolve verifies dependencies and installs what is missing.
func (r *DefaultResolver) Resolve(ctx context.Context) (*Result, error) {
	result := &Result{}

	// Declarative path first: one sync replaces all per-package work.
	if r.inv.Toolchain == toolchain.UV && r.hasManifest() {
		synced, err := r.syncEnvironment(ctx, result)
		if err != nil {
			return nil, err
		}
		if synced {
			result.Synced = true
			return result, nil
		}
	}

	// Imperative path: probe everything, install the missing subset.
	if err := r.probeAll(ctx, result); err != nil {
		return nil, err
	}

	if len(result.Missing) == 0 {
		fmt.Fprintf(r.output, "  All %d dependencies present\n", len(r.deps))
		return result, nil
	}

	if err := r.installMissing(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// hasManifest reports whether the project carries a dependency manifest.
func (r *DefaultResolver) hasManifest() bool {
	_, err := os.Stat(filepath.Join(r.root, ManifestName))
	return err == nil
}

// syncEnvironment runs the declarative sync. Returns true when the
// environment is fully satisfied. Failures demote to the imperative
// path and are never fatal; only cancellation propagates as an error.
func (r *DefaultResolver) syncEnvironment(ctx context.Context, result *Result) (bool, error) {
	fmt.Fprintf(r.output, "Syncing environment from %s...\n", ManifestName)

	cmd := r.inv.Sync(r.root)
	res, err := r.runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		advisory := fmt.Sprintf("environment sync could not run (%v), falling back to direct checks", err)
		result.Advisories = append(result.Advisories, advisory)
		fmt.Fprintf(r.output, "  Warning: %s\n", advisory)
		return false, nil
	}

	if res.Success() {
		fmt.Fprintf(r.output, "  Environment synchronized\n")
		slog.Debug("Declarative sync satisfied dependencies", "command", cmd.String())
		return true, nil
	}

	cmdErr := util.NewCommandError(cmd.String(), res.ExitCode, res.Stderr, nil)
	advisory := fmt.Sprintf("environment sync failed (%v), falling back to direct checks", cmdErr)
	result.Advisories = append(result.Advisories, advisory)
	fmt.Fprintf(r.output, "  Warning: %s\n", advisory)
	return false, nil
}

// probeAll checks every dependency on the module search path and fills
// result.Statuses and result.Missing in configured order.
func (r *DefaultResolver) probeAll(ctx context.Context, result *Result) error {
	fmt.Fprintf(r.output, "Checking %d dependencies...\n", len(r.deps))

	for _, dep := range r.deps {
		if err := ctx.Err(); err != nil {
			return err
		}

		status := Status{Name: dep.Name, Module: dep.ImportName()}
		res, err := r.runner.Run(ctx, r.inv.Probe(status.Module, r.root))
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			// Interpreter itself unusable. Count the dependency as
			// missing; the install step surfaces the real problem.
			slog.Debug("Dependency probe could not run", "module", status.Module, "error", err)
		case res.Success():
			status.Present = true
		}

		result.Statuses = append(result.Statuses, status)
		if !status.Present {
			result.Missing = append(result.Missing, dep.Name)
		}
	}

	if len(result.Missing) > 0 {
		fmt.Fprintf(r.output, "  Missing: %s\n", strings.Join(result.Missing, ", "))
	}
	return nil
}

// installMissing issues one batch install for the missing subset.
// Install failure is an advisory, not an abort.
func (r *DefaultResolver) installMissing(ctx context.Context, result *Result) error {
	fmt.Fprintf(r.output, "  Installing %d packages via %s...\n",
		len(result.Missing), r.inv.Toolchain.DisplayName())

	cmd := r.inv.Install(result.Missing, r.root)
	res, err := r.runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		advisory := fmt.Sprintf("dependency install could not run: %v", err)
		result.Advisories = append(result.Advisories, advisory)
		fmt.Fprintf(r.output, "  Warning: %s\n", advisory)
		return nil
	}

	if !res.Success() {
		cmdErr := util.NewCommandError(cmd.String(), res.ExitCode, res.Stderr, nil)
		advisory := fmt.Sprintf("dependency install failed: %v", cmdErr)
		result.Advisories = append(result.Advisories, advisory)
		fmt.Fprintf(r.output, "  Warning: %s\n", advisory)
		return nil
	}

	result.Installed = true
	fmt.Fprintf(r.output, "  Installed: %s\n", strings.Join(result.Missing, ", "))
	slog.Info("Installed missing dependencies", "packages", result.Missing)
	return nil
}

// Compile-time interface compliance check.
var _ Resolver = (*DefaultResolver)(nil)
