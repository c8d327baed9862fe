// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package packager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/clearframe/packsmith/cmd/packsmith/internal/proc"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/toolchain"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/util"
)

// OutputDir is the work directory where the packaging tool leaves its
// build products. Fixed by the tool, not configurable here.
const OutputDir = "dist"

// stderrTailLines bounds how much captured stderr travels up with a
// failed build. The full stream was already shown live.
const stderrTailLines = 15

// tailLines returns the last n lines of s.
func tailLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

var (
	// ErrBuildFailed indicates the packaging tool exited nonzero.
	ErrBuildFailed = errors.New("packaging build failed")

	// ErrArtifactMissing indicates the tool exited zero but the expected
	// artifact is not on disk. This points at a descriptor/output
	// mismatch and is treated like a failed build.
	ErrArtifactMissing = errors.New("expected build artifact not found")
)

// -----------------------------------------------------------------------------
// Invoker
// -----------------------------------------------------------------------------

// BuildOptions configures a single packaging invocation.
type BuildOptions struct {
	// SpecFile is the packaging descriptor, relative to the project root.
	SpecFile string

	// ArtifactPath is the absolute path the build must produce.
	ArtifactPath string

	// Banner is the platform progress line printed before the build.
	Banner string

	// Stdout/Stderr receive the packaging tool's own streams so the
	// operator sees its progress live. Nil defaults to the real streams.
	Stdout io.Writer
	Stderr io.Writer
}

// BuildResult reports a completed packaging invocation.
type BuildResult struct {
	// ArtifactPath is the verified artifact location.
	ArtifactPath string

	// Duration is the packaging tool's wall-clock run time.
	Duration time.Duration
}

// Invoker runs the packaging tool against the project descriptor.
type Invoker interface {
	// Build runs the tool with a clean work dir and verifies the artifact.
	//
	// # Outputs
	//
	//   - *BuildResult: Artifact location and timing on success
	//   - error: Fatal; wraps ErrBuildFailed or ErrArtifactMissing
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
}

// DefaultInvoker implements Invoker through the process runner.
type DefaultInvoker struct {
	runner proc.Runner
	inv    toolchain.Invocations
	root   string
	output io.Writer
}

// NewDefaultInvoker creates an Invoker for the project at root.
// A nil output discards progress lines.
func NewDefaultInvoker(runner proc.Runner, inv toolchain.Invocations, root string, output io.Writer) *DefaultInvoker {
	if output == nil {
		output = io.Discard
	}
	return &DefaultInvoker{runner: runner, inv: inv, root: root, output: output}
}

// Build runs the packaging tool and verifies the artifact exists after.
//
// The tool always receives --clean so stale packager caches never leak
// into the artifact. Output streams to opts.Stdout/Stderr live; a
// packaging run can take minutes and silence reads as a hang.
func (v *DefaultInvoker) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if opts.Banner != "" {
		fmt.Fprintf(v.output, "%s...\n", opts.Banner)
	}

	cmd := v.inv.Tool(Tool, []string{"--clean", opts.SpecFile}, v.root)
	fmt.Fprintf(v.output, "  Running: %s\n", cmd.String())

	// The operator sees stderr live, but a tail is kept so the failure
	// summary can name the cause after the stream has scrolled away.
	var errTail bytes.Buffer
	res, err := v.runner.Stream(ctx, cmd, stdout, io.MultiWriter(stderr, &errTail))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cmdErr := util.WrapCommandError(err, cmd.String(), -1, tailLines(errTail.String(), stderrTailLines))
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, cmdErr)
	}
	if !res.Success() {
		cmdErr := util.NewCommandError(cmd.String(), res.ExitCode, tailLines(errTail.String(), stderrTailLines), nil)
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, cmdErr)
	}

	if _, err := os.Stat(opts.ArtifactPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, opts.ArtifactPath)
	}

	fmt.Fprintf(v.output, "  Build complete: %s\n", opts.ArtifactPath)
	return &BuildResult{ArtifactPath: opts.ArtifactPath, Duration: res.Duration}, nil
}

// Compile-time interface compliance check.
var _ Invoker = (*DefaultInvoker)(nil)
