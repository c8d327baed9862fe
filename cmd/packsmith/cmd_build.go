// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clearframe/packsmith/cmd/packsmith/config"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/distrib"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/packager"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/proc"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/resolve"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/toolchain"
	"github.com/clearframe/packsmith/pkg/ux"
)

// runBuild drives the full pipeline: resolve, ensure tool, clean,
// build, assemble. The process exit code is the outcome's.
func runBuild(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	root := resolveProjectRoot()

	cfg, err := config.Load(root)
	if err != nil {
		ux.Error(fmt.Sprintf("Configuration error: %v", err))
		os.Exit(1)
	}
	if pythonBin != "" {
		cfg.Build.Python = pythonBin
	}

	runner := proc.NewDefaultRunner()

	// Platform and toolchain are resolved exactly once, here. Every
	// stage reads them from the build context.
	tc := toolchain.NewSelector(runner).Select(ctx)
	bctx := NewBuildContext(root, cfg, tc)

	ux.Title(fmt.Sprintf("%s %s distribution build", ux.IconPackage, cfg.App.Name))
	ux.Info(fmt.Sprintf("Platform:  %s", bctx.Platform.DisplayName()))
	ux.Info(fmt.Sprintf("Toolchain: %s", tc.DisplayName()))
	ux.Info(fmt.Sprintf("Project:   %s", root))
	ux.Muted("run " + bctx.RunID)

	inv := bctx.Invocations()
	pipe, err := NewPipeline(
		resolve.NewDefaultResolver(runner, inv, root, cfg.Dependencies, os.Stdout),
		packager.NewDefaultInstaller(runner, inv, root, os.Stdout),
		distrib.NewDefaultCleaner(root, cfg.Build.CleanDirs, os.Stdout),
		packager.NewDefaultInvoker(runner, inv, root, os.Stdout),
		distrib.NewDefaultAssembler(root, cfg.Build.DistDir, os.Stdout),
	)
	if err != nil {
		ux.Error(fmt.Sprintf("Pipeline setup failed: %v", err))
		os.Exit(1)
	}

	outcome := pipe.Run(ctx, bctx, RunOptions{SkipResolve: skipDeps})
	os.Exit(outcome.ExitCode())
}

// runVersion prints the stamped version string.
func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("packsmith %s\n", Version)
}
