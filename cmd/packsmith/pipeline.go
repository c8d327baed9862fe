// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package main provides the Pipeline that orchestrates a ClearFrame
distribution build.

Pipeline is the primary orchestrator that coordinates all build stages:
dependency resolution, packaging-tool provisioning, build-state cleanup,
the packaging run itself, and distribution assembly.

# Architecture

Pipeline sits at the top of the dependency hierarchy:

	┌─────────────────────────────────────────────────────────────────┐
	│                          Pipeline                               │
	│  (Sequences one build run from source tree to distribution)     │
	├─────────────────────────────────────────────────────────────────┤
	│                                                                 │
	│  Run() sequence:                                                │
	│    1. Resolver.Resolve()      // runtime dependencies           │
	│    2. Installer.Ensure()      // PyInstaller present            │
	│    3. Cleaner.Clean()         // stale build state              │
	│    4. Invoker.Build()         // the packaging run              │
	│    5. Assembler.Assemble()    // distribution folder            │
	│                                                                 │
	└─────────────────────────────────────────────────────────────────┘

Stages run strictly in order; there is no concurrency between them. A
stage either succeeds (possibly with advisories, which accumulate onto
the final Outcome), or fails and short-circuits the rest of the run.
Dependency and tool-install problems are advisories by policy: the
packaging run is the stage that decides whether the environment is
actually usable, and its diagnostics name the real cause.

# Design Principles

  - Dependency Injection: All stage work goes through injected interfaces
  - Single Responsibility: Each stage handles one concern
  - Testability: Full mock support for all stages
  - Error Context: Stage failures are wrapped with the failing stage

# Thread Safety

Pipeline is safe for concurrent use, but only one Run should be in
progress at a time. Concurrent Runs are serialized via mutex.

# Usage

	runner := proc.NewDefaultRunner()
	inv := toolchain.Invocations{Toolchain: tc, Python: python}

	pipe, err := NewPipeline(
	    resolve.NewDefaultResolver(runner, inv, root, cfg.Dependencies, os.Stdout),
	    packager.NewDefaultInstaller(runner, inv, root, os.Stdout),
	    distrib.NewDefaultCleaner(root, cfg.Build.CleanDirs, os.Stdout),
	    packager.NewDefaultInvoker(runner, inv, root, os.Stdout),
	    distrib.NewDefaultAssembler(root, cfg.Build.DistDir, os.Stdout),
	)
	if err != nil {
	    log.Fatal(err)
	}

	outcome := pipe.Run(ctx, bctx, RunOptions{})
	os.Exit(outcome.ExitCode())
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clearframe/packsmith/cmd/packsmith/config"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/distrib"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/packager"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/platform"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/resolve"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/toolchain"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/util"
	"github.com/clearframe/packsmith/pkg/ux"
)

// =============================================================================
// Error Definitions
// =============================================================================

var (
	// ErrNilDependency is returned when a required stage dependency is nil.
	ErrNilDependency = errors.New("required dependency is nil")

	// ErrEntryPointMissing is returned when the application entry point
	// is absent from the project root. No stage runs after this.
	ErrEntryPointMissing = errors.New("application entry point not found")

	// ErrCleanFailed is returned when stale build state cannot be removed.
	// A dirty tree can silently corrupt the packaging run, so this halts.
	ErrCleanFailed = errors.New("build state cleanup failed")

	// ErrPackagingFailed is returned when the packaging stage fails.
	ErrPackagingFailed = errors.New("packaging stage failed")

	// ErrAssemblyFailed is returned when the distribution folder cannot
	// be assembled from a successful build.
	ErrAssemblyFailed = errors.New("distribution assembly failed")

	// ErrPipelinePanic is returned when a panic was recovered during a run.
	ErrPipelinePanic = errors.New("panic recovered during pipeline run")
)

// =============================================================================
// Build Context
// =============================================================================

// BuildContext carries the per-run facts every stage agrees on.
//
// # Description
//
// Platform and Toolchain are resolved exactly once, before the first
// stage runs, and never re-probed: a toolchain appearing or vanishing
// mid-run cannot change the pipeline's behavior. The context is created
// at process start and discarded at process exit; no state crosses runs.
type BuildContext struct {
	// RunID correlates log lines and the final summary for one run.
	RunID string

	// ProjectRoot is the ClearFrame checkout being packaged.
	ProjectRoot string

	// Platform is the detected build host, fixed for the run.
	Platform platform.Platform

	// Toolchain is the dependency backend chosen for the run.
	Toolchain toolchain.Toolchain

	// Config is the loaded build configuration.
	Config *config.Config
}

// NewBuildContext resolves the per-run facts for the project at root.
func NewBuildContext(root string, cfg *config.Config, tc toolchain.Toolchain) *BuildContext {
	return &BuildContext{
		RunID:       uuid.NewString(),
		ProjectRoot: root,
		Platform:    platform.Detect(),
		Toolchain:   tc,
		Config:      cfg,
	}
}

// Python returns the interpreter binary for this run: the configured
// override when set, the platform default otherwise.
func (b *BuildContext) Python() string {
	if b.Config.Build.Python != "" {
		return b.Config.Build.Python
	}
	return b.Platform.PythonBinary()
}

// Invocations returns the toolchain command builder for this run.
func (b *BuildContext) Invocations() toolchain.Invocations {
	return toolchain.Invocations{Toolchain: b.Toolchain, Python: b.Python()}
}

// ArtifactName returns the platform artifact filename, e.g.
// "ClearFrame.app" on macOS.
func (b *BuildContext) ArtifactName() string {
	return b.Platform.ArtifactName(b.Config.App.Name)
}

// ArtifactPath returns where the packaging tool will leave the artifact.
func (b *BuildContext) ArtifactPath() string {
	return filepath.Join(b.ProjectRoot, packager.OutputDir, b.ArtifactName())
}

// EntryPointPath returns the application entry point location.
func (b *BuildContext) EntryPointPath() string {
	return filepath.Join(b.ProjectRoot, b.Config.App.EntryPoint)
}

// DistributionPath returns the distribution output folder location.
func (b *BuildContext) DistributionPath() string {
	return filepath.Join(b.ProjectRoot, b.Config.Build.DistDir)
}

// WeightsPath returns the model weights folder location, or "" when
// weights bundling is not configured.
func (b *BuildContext) WeightsPath() string {
	if b.Config.Build.WeightsDir == "" {
		return ""
	}
	return filepath.Join(b.ProjectRoot, b.Config.Build.WeightsDir)
}

// =============================================================================
// Outcome
// =============================================================================

// Status is the terminal state of a pipeline run.
type Status string

const (
	// StatusSucceeded means every stage completed and the distribution
	// folder is ready to ship.
	StatusSucceeded Status = "succeeded"

	// StatusFailed means a precondition or stage failed.
	StatusFailed Status = "failed"

	// StatusInterrupted means the operator cancelled the run. Reported
	// separately from failure: nothing is wrong with the project.
	StatusInterrupted Status = "interrupted"
)

// Outcome is the single result of a pipeline run.
type Outcome struct {
	// Status is the terminal state.
	Status Status

	// Err is the failure cause; nil when Status is Succeeded.
	Err error

	// Advisories aggregates every non-fatal degradation the stages
	// reported, in the order they occurred.
	Advisories []string

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration

	// RunID echoes the build context's run ID.
	RunID string
}

// ExitCode maps the outcome onto the process exit code: 0 success,
// 1 failure, 130 interrupted (the shell convention for SIGINT).
func (o Outcome) ExitCode() int {
	switch o.Status {
	case StatusSucceeded:
		return 0
	case StatusInterrupted:
		return 130
	default:
		return 1
	}
}

// RunOptions configures a single pipeline run.
type RunOptions struct {
	// SkipResolve skips dependency resolution entirely.
	// Corresponds to the --skip-deps CLI flag.
	SkipResolve bool
}

// =============================================================================
// Helpers
// =============================================================================

// discardWriter is a no-op writer used when output is nil.
type discardWriter struct{}

// Write implements io.Writer, discarding all data.
func (discardWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

// recoverPanic converts a recovered panic into an error.
//
// Intended to be called from a deferred function with recover(); the
// original stack trace is lost, only the panic value survives.
func recoverPanic(r interface{}, errPtr *error) {
	if r == nil {
		return
	}

	var panicErr error
	switch v := r.(type) {
	case error:
		panicErr = fmt.Errorf("%w: %v", ErrPipelinePanic, v)
	case string:
		panicErr = fmt.Errorf("%w: %s", ErrPipelinePanic, v)
	default:
		panicErr = fmt.Errorf("%w: %v", ErrPipelinePanic, v)
	}

	if *errPtr == nil {
		*errPtr = panicErr
	}
}

// =============================================================================
// Pipeline
// =============================================================================

// Pipeline sequences one distribution build from source tree to
// shippable folder.
//
// # Description
//
// Production orchestrator. All stage work goes through injected
// interfaces for testability; the pipeline itself only sequences,
// aggregates advisories, and classifies the outcome.
//
// # Thread Safety
//
// Safe for concurrent use; concurrent Runs are serialized via mutex.
type Pipeline struct {
	// resolver brings runtime dependencies in line before the build.
	resolver resolve.Resolver

	// installer guarantees the packaging tool is importable.
	installer packager.Installer

	// cleaner removes stale build state.
	cleaner distrib.Cleaner

	// invoker runs the packaging tool.
	invoker packager.Invoker

	// assembler builds the distribution folder.
	assembler distrib.Assembler

	// output is where progress and the summary are written.
	// Default: os.Stdout
	output io.Writer

	// mu serializes runs.
	mu sync.Mutex
}

// NewPipeline creates a Pipeline with all stage dependencies.
//
// # Inputs
//
//   - resolver: dependency resolution stage (required)
//   - installer: packaging-tool provisioning stage (required)
//   - cleaner: build-state cleanup stage (required)
//   - invoker: packaging stage (required)
//   - assembler: distribution assembly stage (required)
//
// # Outputs
//
//   - *Pipeline: Ready-to-use pipeline writing to os.Stdout
//   - error: ErrNilDependency if any stage is nil
func NewPipeline(
	resolver resolve.Resolver,
	installer packager.Installer,
	cleaner distrib.Cleaner,
	invoker packager.Invoker,
	assembler distrib.Assembler,
) (*Pipeline, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: Resolver", ErrNilDependency)
	}
	if installer == nil {
		return nil, fmt.Errorf("%w: Installer", ErrNilDependency)
	}
	if cleaner == nil {
		return nil, fmt.Errorf("%w: Cleaner", ErrNilDependency)
	}
	if invoker == nil {
		return nil, fmt.Errorf("%w: Invoker", ErrNilDependency)
	}
	if assembler == nil {
		return nil, fmt.Errorf("%w: Assembler", ErrNilDependency)
	}

	return &Pipeline{
		resolver:  resolver,
		installer: installer,
		cleaner:   cleaner,
		invoker:   invoker,
		assembler: assembler,
		output:    os.Stdout,
	}, nil
}

// SetOutput configures the writer for progress and summary output.
// Default is os.Stdout; nil installs a discard writer.
func (p *Pipeline) SetOutput(w io.Writer) {
	if w == nil {
		p.output = discardWriter{}
	} else {
		p.output = w
	}
}

// Run executes the full build pipeline once and classifies the result.
//
// # Description
//
// Checks the entry-point precondition, then runs the five stages in
// their fixed order. Cancellation is checked at every stage boundary
// and maps to an Interrupted outcome; a stage panic is recovered and
// maps to Failed. Advisories from all stages accumulate onto the
// Outcome. Run never panics and never returns an error: the Outcome
// is the complete report.
//
// # Inputs
//
//   - ctx: Cancelled by the operator's interrupt signal
//   - bctx: Per-run facts; platform and toolchain already resolved
//   - opts: Per-run options
//
// # Outputs
//
//   - Outcome: Terminal status, failure cause, advisories, timing
func (p *Pipeline) Run(ctx context.Context, bctx *BuildContext, opts RunOptions) Outcome {
	// Serialize runs; two concurrent builds would race on the build tree.
	p.mu.Lock()
	defer p.mu.Unlock()

	started := time.Now()
	outcome := Outcome{RunID: bctx.RunID}

	slog.Info("Pipeline starting",
		"run_id", bctx.RunID,
		"platform", bctx.Platform,
		"toolchain", bctx.Toolchain,
		"root", bctx.ProjectRoot)

	err := p.runStages(ctx, bctx, opts, &outcome)
	outcome.Duration = time.Since(started).Round(time.Millisecond)

	switch {
	case err == nil:
		outcome.Status = StatusSucceeded
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		outcome.Status = StatusInterrupted
		outcome.Err = err
	default:
		outcome.Status = StatusFailed
		outcome.Err = err
	}

	slog.Info("Pipeline finished",
		"run_id", bctx.RunID,
		"status", outcome.Status,
		"duration", outcome.Duration,
		"advisories", len(outcome.Advisories))

	p.printSummary(bctx, &outcome)
	return outcome
}

// runStages drives the stage sequence. A panic in any stage surfaces
// as an error here so Run can classify it.
func (p *Pipeline) runStages(ctx context.Context, bctx *BuildContext, opts RunOptions, outcome *Outcome) (err error) {
	defer func() {
		recoverPanic(recover(), &err)
	}()

	// Precondition: nothing runs without the application entry point.
	if err := p.checkEntryPoint(bctx); err != nil {
		return err
	}

	// Stage 1: Dependency resolution
	if err := p.resolveDependencies(ctx, opts, outcome); err != nil {
		return err
	}

	// Stage 2: Packaging tool
	if err := p.ensurePackagingTool(ctx, outcome); err != nil {
		return err
	}

	// Stage 3: Cleanup
	if err := p.cleanBuildState(ctx); err != nil {
		return err
	}

	// Stage 4: Packaging run
	if err := p.buildArtifact(ctx, bctx); err != nil {
		return err
	}

	// Stage 5: Distribution assembly
	return p.assembleDistribution(ctx, bctx, outcome)
}

// =============================================================================
// Stage Helpers
// =============================================================================

// checkEntryPoint verifies the application entry point exists.
func (p *Pipeline) checkEntryPoint(bctx *BuildContext) error {
	if _, err := os.Stat(bctx.EntryPointPath()); err != nil {
		return fmt.Errorf("%w: %s", ErrEntryPointMissing, bctx.Config.App.EntryPoint)
	}
	return nil
}

// resolveDependencies runs the resolver stage. Resolution degradations
// are advisories; only cancellation propagates from here.
func (p *Pipeline) resolveDependencies(ctx context.Context, opts RunOptions, outcome *Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.SkipResolve {
		fmt.Fprintf(p.output, "Skipping dependency resolution\n")
		return nil
	}

	result, err := p.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	outcome.Advisories = append(outcome.Advisories, result.Advisories...)
	return nil
}

// ensurePackagingTool runs the installer stage. A failed install is an
// advisory; the build stage reports a truly absent tool on its own.
func (p *Pipeline) ensurePackagingTool(ctx context.Context, outcome *Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := p.installer.Ensure(ctx)
	if err != nil {
		return err
	}
	outcome.Advisories = append(outcome.Advisories, result.Advisories...)
	return nil
}

// cleanBuildState runs the cleaner stage. Cleanup failure halts the
// pipeline: a dirty tree can corrupt the packaging run silently.
func (p *Pipeline) cleanBuildState(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := p.cleaner.Clean(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrCleanFailed, err)
	}
	return nil
}

// buildArtifact runs the packaging stage.
func (p *Pipeline) buildArtifact(ctx context.Context, bctx *BuildContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buildOpts := packager.BuildOptions{
		SpecFile:     bctx.Config.Build.SpecFile,
		ArtifactPath: bctx.ArtifactPath(),
		Banner:       bctx.Platform.BuildBanner(),
	}
	if _, err := p.invoker.Build(ctx, buildOpts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Wrapped with %w on both sides so the summary can dig the
		// captured tool stderr out of the chain.
		return fmt.Errorf("%w: %w", ErrPackagingFailed, err)
	}
	return nil
}

// assembleDistribution runs the assembly stage. Only reached after a
// verified build.
func (p *Pipeline) assembleDistribution(ctx context.Context, bctx *BuildContext, outcome *Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	assembleOpts := distrib.AssembleOptions{
		ArtifactPath:     bctx.ArtifactPath(),
		ArtifactIsBundle: bctx.Platform.ArtifactIsBundle(),
		WeightsPath:      bctx.WeightsPath(),
		ReadmeText: distrib.RenderReadme(distrib.ReadmeParams{
			AppName:  bctx.Config.App.Name,
			Platform: bctx.Platform,
			Artifact: bctx.ArtifactName(),
		}),
	}

	result, err := p.assembler.Assemble(ctx, assembleOpts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrAssemblyFailed, err)
	}
	outcome.Advisories = append(outcome.Advisories, result.Advisories...)
	return nil
}

// =============================================================================
// Summary
// =============================================================================

// printSummary writes the final run report to the pipeline output.
func (p *Pipeline) printSummary(bctx *BuildContext, outcome *Outcome) {
	fmt.Fprintf(p.output, "\n")

	switch outcome.Status {
	case StatusSucceeded:
		fmt.Fprintf(p.output, "%s Build succeeded in %v\n", ux.IconSuccess.Render(), outcome.Duration)
		fmt.Fprintf(p.output, "  Artifact:     %s\n", bctx.ArtifactPath())
		fmt.Fprintf(p.output, "  Distribution: %s\n", bctx.DistributionPath())
	case StatusInterrupted:
		fmt.Fprintf(p.output, "%s Build interrupted after %v\n", ux.IconWarning.Render(), outcome.Duration)
	default:
		fmt.Fprintf(p.output, "%s Build failed after %v\n", ux.IconError.Render(), outcome.Duration)
		if outcome.Err != nil {
			fmt.Fprintf(p.output, "  Cause: %v\n", outcome.Err)
		}
		if tail := util.ExtractStderr(outcome.Err); tail != "" {
			fmt.Fprintf(p.output, "  Tool output:\n")
			for _, line := range strings.Split(tail, "\n") {
				fmt.Fprintf(p.output, "    %s\n", line)
			}
		}
	}

	if len(outcome.Advisories) > 0 {
		fmt.Fprintf(p.output, "  Advisories (%d):\n", len(outcome.Advisories))
		for _, advisory := range outcome.Advisories {
			fmt.Fprintf(p.output, "    - %s\n", advisory)
		}
	}

	fmt.Fprintf(p.output, "  Run ID: %s\n", outcome.RunID)
}
