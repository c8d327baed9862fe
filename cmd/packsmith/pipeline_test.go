// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/clearframe/packsmith/cmd/packsmith/config"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/distrib"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/packager"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/platform"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/resolve"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/toolchain"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/util"
)

// =============================================================================
// Test Mocks for Pipeline Stages
// =============================================================================

// testResolver is a minimal mock for resolve.Resolver.
type testResolver struct {
	resolveFunc  func(ctx context.Context) (*resolve.Result, error)
	resolveCalls int
	mu           sync.Mutex
}

func (m *testResolver) Resolve(ctx context.Context) (*resolve.Result, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx)
	}
	return &resolve.Result{Synced: true}, nil
}

// testInstaller is a minimal mock for packager.Installer.
type testInstaller struct {
	ensureFunc  func(ctx context.Context) (*packager.EnsureResult, error)
	ensureCalls int
	mu          sync.Mutex
}

func (m *testInstaller) Ensure(ctx context.Context) (*packager.EnsureResult, error) {
	m.mu.Lock()
	m.ensureCalls++
	m.mu.Unlock()
	if m.ensureFunc != nil {
		return m.ensureFunc(ctx)
	}
	return &packager.EnsureResult{AlreadyPresent: true}, nil
}

// testCleaner is a minimal mock for distrib.Cleaner.
type testCleaner struct {
	cleanFunc  func(ctx context.Context) (*distrib.CleanResult, error)
	cleanCalls int
	mu         sync.Mutex
}

func (m *testCleaner) Clean(ctx context.Context) (*distrib.CleanResult, error) {
	m.mu.Lock()
	m.cleanCalls++
	m.mu.Unlock()
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx)
	}
	return &distrib.CleanResult{}, nil
}

// testInvoker is a minimal mock for packager.Invoker.
type testInvoker struct {
	buildFunc  func(ctx context.Context, opts packager.BuildOptions) (*packager.BuildResult, error)
	buildCalls []packager.BuildOptions
	mu         sync.Mutex
}

func (m *testInvoker) Build(ctx context.Context, opts packager.BuildOptions) (*packager.BuildResult, error) {
	m.mu.Lock()
	m.buildCalls = append(m.buildCalls, opts)
	m.mu.Unlock()
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return &packager.BuildResult{ArtifactPath: opts.ArtifactPath}, nil
}

// testAssembler is a minimal mock for distrib.Assembler.
type testAssembler struct {
	assembleFunc  func(ctx context.Context, opts distrib.AssembleOptions) (*distrib.AssembleResult, error)
	assembleCalls []distrib.AssembleOptions
	mu            sync.Mutex
}

func (m *testAssembler) Assemble(ctx context.Context, opts distrib.AssembleOptions) (*distrib.AssembleResult, error) {
	m.mu.Lock()
	m.assembleCalls = append(m.assembleCalls, opts)
	m.mu.Unlock()
	if m.assembleFunc != nil {
		return m.assembleFunc(ctx, opts)
	}
	return &distrib.AssembleResult{WeightsBundled: true}, nil
}

// =============================================================================
// Test Helper Functions
// =============================================================================

type pipelineTestMocks struct {
	resolver  *testResolver
	installer *testInstaller
	cleaner   *testCleaner
	invoker   *testInvoker
	assembler *testAssembler
}

func newTestPipelineWithMocks() (*Pipeline, *pipelineTestMocks) {
	mocks := &pipelineTestMocks{
		resolver:  &testResolver{},
		installer: &testInstaller{},
		cleaner:   &testCleaner{},
		invoker:   &testInvoker{},
		assembler: &testAssembler{},
	}

	pipe, err := NewPipeline(
		mocks.resolver,
		mocks.installer,
		mocks.cleaner,
		mocks.invoker,
		mocks.assembler,
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create test pipeline: %v", err))
	}

	pipe.SetOutput(&bytes.Buffer{})

	return pipe, mocks
}

// newTestBuildContext returns a context rooted in a temp project tree
// that already carries the entry-point file.
func newTestBuildContext(t *testing.T) *BuildContext {
	t.Helper()

	root := t.TempDir()
	cfg := config.DefaultConfig()
	entry := filepath.Join(root, cfg.App.EntryPoint)
	if err := os.WriteFile(entry, []byte("print('clearframe')\n"), 0644); err != nil {
		t.Fatalf("writing entry point: %v", err)
	}

	return &BuildContext{
		RunID:       "test-run",
		ProjectRoot: root,
		Platform:    platform.Linux,
		Toolchain:   toolchain.Pip,
		Config:      &cfg,
	}
}

// =============================================================================
// NewPipeline Tests
// =============================================================================

func TestNewPipeline_NilDependencies(t *testing.T) {
	resolver := &testResolver{}
	installer := &testInstaller{}
	cleaner := &testCleaner{}
	invoker := &testInvoker{}
	assembler := &testAssembler{}

	tests := []struct {
		name string
		fn   func() (*Pipeline, error)
	}{
		{"nil resolver", func() (*Pipeline, error) {
			return NewPipeline(nil, installer, cleaner, invoker, assembler)
		}},
		{"nil installer", func() (*Pipeline, error) {
			return NewPipeline(resolver, nil, cleaner, invoker, assembler)
		}},
		{"nil cleaner", func() (*Pipeline, error) {
			return NewPipeline(resolver, installer, nil, invoker, assembler)
		}},
		{"nil invoker", func() (*Pipeline, error) {
			return NewPipeline(resolver, installer, cleaner, nil, assembler)
		}},
		{"nil assembler", func() (*Pipeline, error) {
			return NewPipeline(resolver, installer, cleaner, invoker, nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			if !errors.Is(err, ErrNilDependency) {
				t.Errorf("error should wrap ErrNilDependency, got: %v", err)
			}
		})
	}
}

// =============================================================================
// Run() Tests
// =============================================================================

func TestPipeline_Run_Success(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})

	if outcome.Status != StatusSucceeded {
		t.Fatalf("Status = %q, want %q (err: %v)", outcome.Status, StatusSucceeded, outcome.Err)
	}
	if outcome.Err != nil {
		t.Errorf("Err should be nil on success, got: %v", outcome.Err)
	}
	if outcome.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", outcome.ExitCode())
	}
	if outcome.RunID != "test-run" {
		t.Errorf("RunID = %q, want 'test-run'", outcome.RunID)
	}

	if mocks.resolver.resolveCalls != 1 {
		t.Errorf("Resolve called %d times, want 1", mocks.resolver.resolveCalls)
	}
	if mocks.installer.ensureCalls != 1 {
		t.Errorf("Ensure called %d times, want 1", mocks.installer.ensureCalls)
	}
	if mocks.cleaner.cleanCalls != 1 {
		t.Errorf("Clean called %d times, want 1", mocks.cleaner.cleanCalls)
	}
	if len(mocks.invoker.buildCalls) != 1 {
		t.Errorf("Build called %d times, want 1", len(mocks.invoker.buildCalls))
	}
	if len(mocks.assembler.assembleCalls) != 1 {
		t.Errorf("Assemble called %d times, want 1", len(mocks.assembler.assembleCalls))
	}
}

func TestPipeline_Run_StageOrder(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	var order []string
	var mu sync.Mutex
	record := func(stage string) {
		mu.Lock()
		order = append(order, stage)
		mu.Unlock()
	}

	mocks.resolver.resolveFunc = func(ctx context.Context) (*resolve.Result, error) {
		record("resolve")
		return &resolve.Result{}, nil
	}
	mocks.installer.ensureFunc = func(ctx context.Context) (*packager.EnsureResult, error) {
		record("ensure")
		return &packager.EnsureResult{AlreadyPresent: true}, nil
	}
	mocks.cleaner.cleanFunc = func(ctx context.Context) (*distrib.CleanResult, error) {
		record("clean")
		return &distrib.CleanResult{}, nil
	}
	mocks.invoker.buildFunc = func(ctx context.Context, opts packager.BuildOptions) (*packager.BuildResult, error) {
		record("build")
		return &packager.BuildResult{}, nil
	}
	mocks.assembler.assembleFunc = func(ctx context.Context, opts distrib.AssembleOptions) (*distrib.AssembleResult, error) {
		record("assemble")
		return &distrib.AssembleResult{}, nil
	}

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})
	if outcome.Status != StatusSucceeded {
		t.Fatalf("Status = %q, want %q (err: %v)", outcome.Status, StatusSucceeded, outcome.Err)
	}

	want := []string{"resolve", "ensure", "clean", "build", "assemble"}
	if len(order) != len(want) {
		t.Fatalf("ran %d stages %v, want %v", len(order), order, want)
	}
	for i, stage := range want {
		if order[i] != stage {
			t.Errorf("stage[%d] = %q, want %q", i, order[i], stage)
		}
	}
}

func TestPipeline_Run_SkipResolve(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	outcome := pipe.Run(context.Background(), bctx, RunOptions{SkipResolve: true})

	if outcome.Status != StatusSucceeded {
		t.Fatalf("Status = %q, want %q (err: %v)", outcome.Status, StatusSucceeded, outcome.Err)
	}
	if mocks.resolver.resolveCalls != 0 {
		t.Errorf("Resolve called %d times, want 0", mocks.resolver.resolveCalls)
	}
	if len(mocks.invoker.buildCalls) != 1 {
		t.Errorf("Build called %d times, want 1", len(mocks.invoker.buildCalls))
	}
}

func TestPipeline_Run_EntryPointMissing(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()

	cfg := config.DefaultConfig()
	bctx := &BuildContext{
		RunID:       "test-run",
		ProjectRoot: t.TempDir(), // no entry point written
		Platform:    platform.Linux,
		Toolchain:   toolchain.Pip,
		Config:      &cfg,
	}

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})

	if outcome.Status != StatusFailed {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusFailed)
	}
	if !errors.Is(outcome.Err, ErrEntryPointMissing) {
		t.Errorf("Err should wrap ErrEntryPointMissing, got: %v", outcome.Err)
	}

	// Nothing runs after a failed precondition.
	if mocks.resolver.resolveCalls != 0 {
		t.Errorf("Resolve called %d times, want 0", mocks.resolver.resolveCalls)
	}
	if mocks.installer.ensureCalls != 0 {
		t.Errorf("Ensure called %d times, want 0", mocks.installer.ensureCalls)
	}
	if mocks.cleaner.cleanCalls != 0 {
		t.Errorf("Clean called %d times, want 0", mocks.cleaner.cleanCalls)
	}
	if len(mocks.invoker.buildCalls) != 0 {
		t.Errorf("Build called %d times, want 0", len(mocks.invoker.buildCalls))
	}
}

func TestPipeline_Run_AdvisoriesAggregate(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	mocks.resolver.resolveFunc = func(ctx context.Context) (*resolve.Result, error) {
		return &resolve.Result{Advisories: []string{"sync failed, fell back"}}, nil
	}
	mocks.installer.ensureFunc = func(ctx context.Context) (*packager.EnsureResult, error) {
		return &packager.EnsureResult{Advisories: []string{"tool install failed"}}, nil
	}
	mocks.assembler.assembleFunc = func(ctx context.Context, opts distrib.AssembleOptions) (*distrib.AssembleResult, error) {
		return &distrib.AssembleResult{Advisories: []string{"weights not found"}}, nil
	}

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})

	if outcome.Status != StatusSucceeded {
		t.Fatalf("advisories must not fail the run, got %q (err: %v)", outcome.Status, outcome.Err)
	}

	want := []string{"sync failed, fell back", "tool install failed", "weights not found"}
	if len(outcome.Advisories) != len(want) {
		t.Fatalf("Advisories = %v, want %v", outcome.Advisories, want)
	}
	for i, advisory := range want {
		if outcome.Advisories[i] != advisory {
			t.Errorf("Advisories[%d] = %q, want %q", i, outcome.Advisories[i], advisory)
		}
	}
}

func TestPipeline_Run_CleanFailure(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	mocks.cleaner.cleanFunc = func(ctx context.Context) (*distrib.CleanResult, error) {
		return nil, errors.New("permission denied")
	}

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})

	if outcome.Status != StatusFailed {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusFailed)
	}
	if !errors.Is(outcome.Err, ErrCleanFailed) {
		t.Errorf("Err should wrap ErrCleanFailed, got: %v", outcome.Err)
	}
	if len(mocks.invoker.buildCalls) != 0 {
		t.Errorf("Build called %d times after failed clean, want 0", len(mocks.invoker.buildCalls))
	}
}

func TestPipeline_Run_BuildFailure_NoAssembly(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	mocks.invoker.buildFunc = func(ctx context.Context, opts packager.BuildOptions) (*packager.BuildResult, error) {
		return nil, fmt.Errorf("%w: exit status 1", packager.ErrBuildFailed)
	}

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})

	if outcome.Status != StatusFailed {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusFailed)
	}
	if !errors.Is(outcome.Err, ErrPackagingFailed) {
		t.Errorf("Err should wrap ErrPackagingFailed, got: %v", outcome.Err)
	}
	if outcome.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", outcome.ExitCode())
	}

	// A failed build must leave the distribution folder untouched.
	if len(mocks.assembler.assembleCalls) != 0 {
		t.Errorf("Assemble called %d times after failed build, want 0", len(mocks.assembler.assembleCalls))
	}
}

func TestPipeline_Run_AssembleFailure(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	mocks.assembler.assembleFunc = func(ctx context.Context, opts distrib.AssembleOptions) (*distrib.AssembleResult, error) {
		return nil, fmt.Errorf("%w: disk full", distrib.ErrArtifactCopy)
	}

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})

	if outcome.Status != StatusFailed {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusFailed)
	}
	if !errors.Is(outcome.Err, ErrAssemblyFailed) {
		t.Errorf("Err should wrap ErrAssemblyFailed, got: %v", outcome.Err)
	}
}

func TestPipeline_Run_ContextCancelled(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := pipe.Run(ctx, bctx, RunOptions{})

	if outcome.Status != StatusInterrupted {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusInterrupted)
	}
	if !errors.Is(outcome.Err, context.Canceled) {
		t.Errorf("Err should be context.Canceled, got: %v", outcome.Err)
	}
	if outcome.ExitCode() != 130 {
		t.Errorf("ExitCode() = %d, want 130", outcome.ExitCode())
	}
	if mocks.resolver.resolveCalls != 0 {
		t.Errorf("Resolve called %d times on cancelled context, want 0", mocks.resolver.resolveCalls)
	}
}

func TestPipeline_Run_InterruptMidRun(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	ctx, cancel := context.WithCancel(context.Background())
	mocks.cleaner.cleanFunc = func(ctx context.Context) (*distrib.CleanResult, error) {
		cancel()
		return nil, ctx.Err()
	}

	outcome := pipe.Run(ctx, bctx, RunOptions{})

	if outcome.Status != StatusInterrupted {
		t.Fatalf("Status = %q, want %q (err: %v)", outcome.Status, StatusInterrupted, outcome.Err)
	}
	if len(mocks.invoker.buildCalls) != 0 {
		t.Errorf("Build called %d times after interrupt, want 0", len(mocks.invoker.buildCalls))
	}
}

func TestPipeline_Run_PanicRecovered(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	mocks.invoker.buildFunc = func(ctx context.Context, opts packager.BuildOptions) (*packager.BuildResult, error) {
		panic("descriptor parser blew up")
	}

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})

	if outcome.Status != StatusFailed {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusFailed)
	}
	if !errors.Is(outcome.Err, ErrPipelinePanic) {
		t.Errorf("Err should wrap ErrPipelinePanic, got: %v", outcome.Err)
	}
	if !strings.Contains(outcome.Err.Error(), "descriptor parser blew up") {
		t.Errorf("Err should carry the panic message, got: %v", outcome.Err)
	}
}

func TestPipeline_Run_BuildOptionsFromContext(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	outcome := pipe.Run(context.Background(), bctx, RunOptions{})
	if outcome.Status != StatusSucceeded {
		t.Fatalf("Status = %q, want %q (err: %v)", outcome.Status, StatusSucceeded, outcome.Err)
	}

	buildOpts := mocks.invoker.buildCalls[0]
	if buildOpts.SpecFile != "clearframe.spec" {
		t.Errorf("SpecFile = %q, want 'clearframe.spec'", buildOpts.SpecFile)
	}
	if want := bctx.ArtifactPath(); buildOpts.ArtifactPath != want {
		t.Errorf("ArtifactPath = %q, want %q", buildOpts.ArtifactPath, want)
	}
	if buildOpts.Banner != "Building Linux executable" {
		t.Errorf("Banner = %q, want 'Building Linux executable'", buildOpts.Banner)
	}

	assembleOpts := mocks.assembler.assembleCalls[0]
	if assembleOpts.ArtifactIsBundle {
		t.Error("ArtifactIsBundle should be false on Linux")
	}
	if want := bctx.WeightsPath(); assembleOpts.WeightsPath != want {
		t.Errorf("WeightsPath = %q, want %q", assembleOpts.WeightsPath, want)
	}
	if !strings.Contains(assembleOpts.ReadmeText, "ClearFrame") {
		t.Error("ReadmeText should mention the application name")
	}
}

// =============================================================================
// Summary Output Tests
// =============================================================================

func TestPipeline_Run_SummarySuccess(t *testing.T) {
	pipe, _ := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	var out bytes.Buffer
	pipe.SetOutput(&out)

	pipe.Run(context.Background(), bctx, RunOptions{})

	text := out.String()
	if !strings.Contains(text, "Build succeeded") {
		t.Errorf("summary missing success line:\n%s", text)
	}
	if !strings.Contains(text, bctx.DistributionPath()) {
		t.Errorf("summary missing distribution path:\n%s", text)
	}
	if !strings.Contains(text, "Run ID: test-run") {
		t.Errorf("summary missing run ID:\n%s", text)
	}
}

func TestPipeline_Run_SummaryFailureAndAdvisories(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	mocks.resolver.resolveFunc = func(ctx context.Context) (*resolve.Result, error) {
		return &resolve.Result{Advisories: []string{"install failed: pip exploded"}}, nil
	}
	mocks.invoker.buildFunc = func(ctx context.Context, opts packager.BuildOptions) (*packager.BuildResult, error) {
		return nil, fmt.Errorf("%w: exit status 1", packager.ErrBuildFailed)
	}

	var out bytes.Buffer
	pipe.SetOutput(&out)

	pipe.Run(context.Background(), bctx, RunOptions{})

	text := out.String()
	if !strings.Contains(text, "Build failed") {
		t.Errorf("summary missing failure line:\n%s", text)
	}
	if !strings.Contains(text, "Cause:") {
		t.Errorf("summary missing cause line:\n%s", text)
	}
	if !strings.Contains(text, "Advisories (1):") {
		t.Errorf("summary missing advisory count:\n%s", text)
	}
	if !strings.Contains(text, "pip exploded") {
		t.Errorf("summary missing advisory text:\n%s", text)
	}
}

func TestPipeline_Run_SummaryShowsToolStderr(t *testing.T) {
	pipe, mocks := newTestPipelineWithMocks()
	bctx := newTestBuildContext(t)

	mocks.invoker.buildFunc = func(ctx context.Context, opts packager.BuildOptions) (*packager.BuildResult, error) {
		cmdErr := util.NewCommandError("pyinstaller --clean clearframe.spec", 1,
			"ERROR: hidden import 'cv2' not found\nERROR: script ended unexpectedly", nil)
		return nil, fmt.Errorf("%w: %w", packager.ErrBuildFailed, cmdErr)
	}

	var out bytes.Buffer
	pipe.SetOutput(&out)

	pipe.Run(context.Background(), bctx, RunOptions{})

	text := out.String()
	if !strings.Contains(text, "Tool output:") {
		t.Errorf("summary missing tool output block:\n%s", text)
	}
	if !strings.Contains(text, "ERROR: script ended unexpectedly") {
		t.Errorf("summary missing captured stderr line:\n%s", text)
	}
}

// =============================================================================
// BuildContext Tests
// =============================================================================

func TestNewBuildContext_ResolvesOnce(t *testing.T) {
	cfg := config.DefaultConfig()

	first := NewBuildContext("/tmp/project", &cfg, toolchain.UV)
	second := NewBuildContext("/tmp/project", &cfg, toolchain.UV)

	if first.RunID == "" {
		t.Error("RunID should be set")
	}
	if first.RunID == second.RunID {
		t.Error("each run should get its own RunID")
	}
	if first.Toolchain != toolchain.UV {
		t.Errorf("Toolchain = %q, want uv", first.Toolchain)
	}
	if first.Platform != platform.Detect() {
		t.Errorf("Platform = %q, want host platform", first.Platform)
	}
}

func TestBuildContext_Paths(t *testing.T) {
	cfg := config.DefaultConfig()
	bctx := &BuildContext{
		RunID:       "test-run",
		ProjectRoot: "/work/clearframe",
		Platform:    platform.Darwin,
		Toolchain:   toolchain.UV,
		Config:      &cfg,
	}

	if got, want := bctx.ArtifactPath(), filepath.Join("/work/clearframe", "dist", "ClearFrame.app"); got != want {
		t.Errorf("ArtifactPath() = %q, want %q", got, want)
	}
	if got, want := bctx.EntryPointPath(), filepath.Join("/work/clearframe", "clearframe_app.py"); got != want {
		t.Errorf("EntryPointPath() = %q, want %q", got, want)
	}
	if got, want := bctx.DistributionPath(), filepath.Join("/work/clearframe", "distribution"); got != want {
		t.Errorf("DistributionPath() = %q, want %q", got, want)
	}
	if got, want := bctx.WeightsPath(), filepath.Join("/work/clearframe", "weights"); got != want {
		t.Errorf("WeightsPath() = %q, want %q", got, want)
	}
}

func TestBuildContext_WeightsPath_Unconfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Build.WeightsDir = ""
	bctx := &BuildContext{ProjectRoot: "/work", Platform: platform.Linux, Config: &cfg}

	if got := bctx.WeightsPath(); got != "" {
		t.Errorf("WeightsPath() = %q, want empty when unconfigured", got)
	}
}

func TestBuildContext_Python(t *testing.T) {
	cfg := config.DefaultConfig()
	bctx := &BuildContext{Platform: platform.Linux, Config: &cfg}

	if got := bctx.Python(); got != "python3" {
		t.Errorf("Python() = %q, want platform default python3", got)
	}

	cfg.Build.Python = "/opt/py312/bin/python"
	if got := bctx.Python(); got != "/opt/py312/bin/python" {
		t.Errorf("Python() = %q, want configured override", got)
	}

	inv := bctx.Invocations()
	if inv.Python != "/opt/py312/bin/python" {
		t.Errorf("Invocations().Python = %q, want configured override", inv.Python)
	}
	if inv.Toolchain != bctx.Toolchain {
		t.Errorf("Invocations().Toolchain = %q, want %q", inv.Toolchain, bctx.Toolchain)
	}
}

// =============================================================================
// Outcome Tests
// =============================================================================

func TestOutcome_ExitCode(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusSucceeded, 0},
		{StatusFailed, 1},
		{StatusInterrupted, 130},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			outcome := Outcome{Status: tt.status}
			if got := outcome.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
