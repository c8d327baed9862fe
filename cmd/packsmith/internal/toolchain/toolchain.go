// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package toolchain selects the Python dependency toolchain and builds the
command lines for it.

Two backends exist: uv, the fast lockfile-aware manager, and the stock
pip fallback that every Python install carries. The selection is probed
once per run and carried in the build context so every later stage sees
the same answer.
*/
package toolchain

import (
	"context"
	"fmt"

	"github.com/clearframe/packsmith/cmd/packsmith/internal/proc"
)

// Toolchain identifies the dependency backend for a run.
type Toolchain string

const (
	// UV is the fast, lockfile-aware backend.
	UV Toolchain = "uv"

	// Pip is the generic fallback available with every interpreter.
	Pip Toolchain = "pip"
)

// DisplayName returns the backend name for status output.
func (t Toolchain) DisplayName() string {
	return string(t)
}

// -----------------------------------------------------------------------------
// Selection
// -----------------------------------------------------------------------------

// Selector probes the host for the preferred toolchain.
type Selector struct {
	runner proc.Runner
}

// NewSelector creates a Selector backed by the given process runner.
func NewSelector(runner proc.Runner) *Selector {
	return &Selector{runner: runner}
}

// Select probes for uv and falls back to pip.
//
// The probe runs "uv --version" with output captured and discarded; only
// the exit status matters. Any failure whatsoever (binary missing, probe
// exits nonzero) selects pip. Selection is never fatal.
func (s *Selector) Select(ctx context.Context) Toolchain {
	res, err := s.runner.Run(ctx, proc.Command{Name: "uv", Args: []string{"--version"}})
	if err != nil || !res.Success() {
		return Pip
	}
	return UV
}

// -----------------------------------------------------------------------------
// Command Construction
// -----------------------------------------------------------------------------

// Invocations builds the command lines for a chosen toolchain.
//
// Python is the interpreter binary used for pip-module invocations and
// import probes. The zero value is not usable; construct with the
// toolchain chosen by Select and the interpreter from configuration.
type Invocations struct {
	Toolchain Toolchain
	Python    string
}

// Install returns the batch install command for the given packages.
// uv: "uv pip install PKG...". pip: "PYTHON -m pip install PKG...".
func (i Invocations) Install(pkgs []string, dir string) proc.Command {
	if i.Toolchain == UV {
		return proc.Command{
			Name: "uv",
			Args: append([]string{"pip", "install"}, pkgs...),
			Dir:  dir,
		}
	}
	return proc.Command{
		Name: i.Python,
		Args: append([]string{"-m", "pip", "install"}, pkgs...),
		Dir:  dir,
	}
}

// Sync returns the declarative environment sync command. Only meaningful
// for uv; callers gate on the toolchain before using it.
func (i Invocations) Sync(dir string) proc.Command {
	return proc.Command{Name: "uv", Args: []string{"sync"}, Dir: dir}
}

// Probe returns a side-effect-free check for a module on the interpreter's
// search path. The payload only locates the module spec, it does not
// import it, so probing heavyweight libraries stays cheap.
func (i Invocations) Probe(module, dir string) proc.Command {
	payload := fmt.Sprintf(
		"import importlib.util, sys; sys.exit(0 if importlib.util.find_spec(%q) else 1)",
		module,
	)
	return proc.Command{Name: i.Python, Args: []string{"-c", payload}, Dir: dir}
}

// Tool returns the invocation for an installed console tool. Under uv the
// tool runs inside the managed environment via "uv run"; under pip it is
// expected on PATH.
func (i Invocations) Tool(name string, args []string, dir string) proc.Command {
	if i.Toolchain == UV {
		return proc.Command{
			Name: "uv",
			Args: append([]string{"run", name}, args...),
			Dir:  dir,
		}
	}
	return proc.Command{Name: name, Args: args, Dir: dir}
}
