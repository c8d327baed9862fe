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
	"github.com/clearframe/packsmith/pkg/ux"
)

// runClean removes stale build state without building anything.
// Idempotent; running it twice in a row is fine.
func runClean(cmd *cobra.Command, args []string) {
	root := resolveProjectRoot()

	cfg, err := config.Load(root)
	if err != nil {
		ux.Error(fmt.Sprintf("Configuration error: %v", err))
		os.Exit(1)
	}

	cleaner := distrib.NewDefaultCleaner(root, cfg.Build.CleanDirs, os.Stdout)
	result, err := cleaner.Clean(cmd.Context())
	if err != nil {
		ux.Error(fmt.Sprintf("Cleanup failed: %v", err))
		os.Exit(1)
	}

	if len(result.Removed) == 0 {
		ux.Success("Nothing to clean")
		return
	}
	ux.Success(fmt.Sprintf("Removed %d stale entries", len(result.Removed)))
}
