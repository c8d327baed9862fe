// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package util

import (
	"fmt"
	"strings"
)

// =============================================================================
// Command Error Type
// =============================================================================

// CommandError wraps a subprocess failure with stderr context.
//
// # Description
//
// Provides rich error context for failed tool invocations (pip, uv,
// pyinstaller), including the command line that failed, its exit code,
// and captured stderr. Implements the error interface and supports
// unwrapping via errors.Is/As.
//
// # Thread Safety
//
// CommandError is immutable after creation and safe for concurrent reads.
//
// # Example
//
//	err := NewCommandError("uv sync", 2, "no virtual environment found", execErr)
//	fmt.Println(err.Error()) // "uv sync (exit 2): no virtual environment found"
//
//	var cmdErr *CommandError
//	if errors.As(err, &cmdErr) {
//	    fmt.Println(cmdErr.Stderr)
//	}
//
// # Limitations
//
//   - Stderr is stored as a single string, not streamed
type CommandError struct {
	// Command is the command line that was executed.
	Command string

	// ExitCode is the process exit code (-1 if unknown).
	ExitCode int

	// Stderr contains the captured standard error output (trimmed).
	Stderr string

	// Wrapped is the underlying error (may be nil).
	Wrapped error
}

// Error returns a human-readable message. Stderr takes priority over the
// wrapped error when both are present; only its first line is shown so
// the message stays a single line. ExtractStderr exposes the full capture.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s (exit %d): %s", e.Command, e.ExitCode, firstLine(e.Stderr))
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.Command, e.ExitCode, e.Wrapped)
	}
	return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error so errors.Is/As can walk the chain.
func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

// HasStderr reports whether any stderr output was captured.
func (e *CommandError) HasStderr() bool {
	return e.Stderr != ""
}

// Compile-time interface satisfaction check
var _ error = (*CommandError)(nil)

// firstLine truncates multi-line text to its first line.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// =============================================================================
// Constructor Functions
// =============================================================================

// NewCommandError creates a CommandError with full context.
//
// # Description
//
// Stderr is trimmed of leading/trailing whitespace to normalize output
// from the various tools this program shells out to.
//
// # Inputs
//
//   - cmd: The command line that was executed (e.g., "uv pip install torch")
//   - exitCode: Process exit code (-1 if unknown)
//   - stderr: Captured standard error output (will be trimmed)
//   - wrapped: Underlying error (may be nil)
//
// # Example
//
//	if err := cmd.Run(); err != nil {
//	    return NewCommandError("pyinstaller --clean clearframe.spec", code, stderr.String(), err)
//	}
func NewCommandError(cmd string, exitCode int, stderr string, wrapped error) *CommandError {
	return &CommandError{
		Command:  cmd,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Wrapped:  wrapped,
	}
}

// =============================================================================
// Utility Functions
// =============================================================================

// WrapCommandError wraps an existing error into a CommandError if it isn't
// already one. Returns nil if the input error is nil.
func WrapCommandError(err error, cmd string, exitCode int, stderr string) *CommandError {
	if err == nil {
		return nil
	}

	// Don't double-wrap
	if cmdErr, ok := err.(*CommandError); ok {
		return cmdErr
	}

	return NewCommandError(cmd, exitCode, stderr, err)
}

// ExtractStderr walks the error chain looking for a CommandError with
// captured stderr. Returns the first stderr found, or empty string.
//
// # Example
//
//	if out := ExtractStderr(err); out != "" {
//	    fmt.Fprintf(os.Stderr, "tool output:\n%s\n", out)
//	}
func ExtractStderr(err error) string {
	for err != nil {
		if cmdErr, ok := err.(*CommandError); ok && cmdErr.HasStderr() {
			return cmdErr.Stderr
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return ""
}
