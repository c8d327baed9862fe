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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/clearframe/packsmith/cmd/packsmith/config"
	"github.com/clearframe/packsmith/pkg/ux"
)

// runInit writes a default packsmith.yaml into the project root so the
// stock configuration can be edited instead of reconstructed. Refuses
// to overwrite an existing file unless --force is given.
func runInit(cmd *cobra.Command, args []string) {
	root := resolveProjectRoot()
	path := filepath.Join(root, config.FileName)

	if _, err := os.Stat(path); err == nil && !forceInit {
		ux.Error(fmt.Sprintf("%s already exists (use --force to overwrite)", config.FileName))
		os.Exit(1)
	}

	if err := config.WriteDefault(path); err != nil {
		ux.Error(fmt.Sprintf("Writing %s: %v", config.FileName, err))
		os.Exit(1)
	}

	ux.Success(fmt.Sprintf("Wrote %s", path))
	ux.Box("Next steps",
		"1. Adjust "+config.FileName+" for this checkout\n"+
			"2. Run packsmith doctor to verify the environment\n"+
			"3. Run packsmith build")
}
