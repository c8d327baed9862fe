// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package proc abstracts external process execution behind a small interface.

Every tool invocation in the build pipeline (uv, pip, the Python
interpreter, pyinstaller) goes through Runner so that unit tests can
substitute a mock instead of executing real processes.

# Design Rationale

Direct calls to exec.Command are not testable because they execute real
processes. Putting them behind an interface lets tests:
  - Simulate success/failure/missing-binary scenarios
  - Capture and verify the exact command lines issued
  - Run without Python, uv, or PyInstaller installed
*/
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Command and Result Types
// -----------------------------------------------------------------------------

// Command describes a single external tool invocation.
type Command struct {
	// Name is the executable name or path.
	Name string

	// Args are the command arguments.
	Args []string

	// Dir is the working directory for the process. Empty means the
	// current directory.
	Dir string
}

// String returns the command in shell-like form for error messages and logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the outcome of a completed process.
//
// A Result is returned whenever the process actually ran, including runs
// that exited nonzero. Spawn failures (binary not found, permission
// denied) and context cancellation are reported as errors instead.
type Result struct {
	// ExitCode is the process exit code.
	ExitCode int

	// Stdout is the captured standard output (empty for streamed runs).
	Stdout string

	// Stderr is the captured standard error (empty for streamed runs).
	Stderr string

	// Duration is the wall-clock run time.
	Duration time.Duration
}

// Success reports whether the process exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// -----------------------------------------------------------------------------
// Interface Definition
// -----------------------------------------------------------------------------

// Runner executes external processes.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use from multiple goroutines.
//
// # Context Handling
//
// Both methods accept a context.Context. Cancellation kills the child
// process and surfaces ctx.Err() so callers can distinguish an interrupt
// from a tool failure.
type Runner interface {
	// Run executes a command and captures its output.
	//
	// # Description
	//
	// Waits for the command to complete. A nonzero exit is NOT an error:
	// the Result carries the exit code and captured stderr so callers can
	// decide. Errors are reserved for processes that never ran (spawn
	// failure) or were cancelled.
	//
	// # Outputs
	//
	//   - *Result: Populated whenever the process ran (any exit code)
	//   - error: Non-nil only for spawn failure or context cancellation
	//
	// # Examples
	//
	//	res, err := runner.Run(ctx, proc.Command{Name: "uv", Args: []string{"--version"}})
	//	if err == nil && res.Success() {
	//	    // uv is available
	//	}
	Run(ctx context.Context, cmd Command) (*Result, error)

	// Stream executes a command with output wired to the given writers.
	//
	// # Description
	//
	// Used for long-running tool invocations whose progress the operator
	// should see live (the packaging step). Stdout/Stderr of the Result
	// are empty; output goes to the writers as it is produced.
	//
	// # Examples
	//
	//	res, err := runner.Stream(ctx, cmd, os.Stdout, os.Stderr)
	Stream(ctx context.Context, cmd Command, stdout, stderr io.Writer) (*Result, error)
}

// -----------------------------------------------------------------------------
// Implementation
// -----------------------------------------------------------------------------

// DefaultRunner implements Runner using os/exec.
//
// This is the production implementation that executes real processes.
// Use MockRunner in tests instead.
type DefaultRunner struct{}

// NewDefaultRunner creates a Runner that executes real processes.
func NewDefaultRunner() *DefaultRunner {
	return &DefaultRunner{}
}

// Run executes a command and captures its output.
func (r *DefaultRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// A nonzero exit still produced a usable result.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Duration: elapsed,
			}, nil
		}
		return nil, fmt.Errorf("starting %s: %w", cmd.Name, err)
	}

	return &Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}, nil
}

// Stream executes a command with output wired to the given writers.
func (r *DefaultRunner) Stream(ctx context.Context, cmd Command, stdout, stderr io.Writer) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = stdout
	c.Stderr = stderr

	start := time.Now()
	err := c.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{ExitCode: exitErr.ExitCode(), Duration: elapsed}, nil
		}
		return nil, fmt.Errorf("starting %s: %w", cmd.Name, err)
	}

	return &Result{ExitCode: 0, Duration: elapsed}, nil
}

// Compile-time interface compliance check.
var _ Runner = (*DefaultRunner)(nil)
