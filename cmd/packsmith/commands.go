// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clearframe/packsmith/pkg/logging"
	"github.com/clearframe/packsmith/pkg/ux"
)

// --- Global Command Variables ---
var (
	projectDir  string // CLI override for the project root (default: cwd)
	pythonBin   string // CLI override for the interpreter binary
	skipDeps    bool   // skip dependency resolution in `build`
	plainOutput bool   // disable colors and icons
	verboseLogs bool   // debug-level logging on stderr
	forceInit   bool   // allow `init` to overwrite an existing config

	rootCmd = &cobra.Command{
		Use:   "packsmith",
		Short: "Build and package the ClearFrame desktop application",
		Long: `Packsmith turns a ClearFrame source checkout into a distributable
desktop bundle: it resolves runtime dependencies, provisions the
packaging tool, and assembles a self-contained distribution folder.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A .env in the project root may carry PACKSMITH_* overrides;
			// load it before anything reads the environment. Absence is fine.
			_ = godotenv.Load(filepath.Join(resolveProjectRoot(), ".env"))

			ux.InitMode(plainOutput)

			level := logging.LevelFromEnv()
			if verboseLogs {
				level = logging.LevelDebug
			}
			logging.Init(logging.Config{Level: level, Service: "packsmith"})
		},
	}

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Run the full build pipeline and assemble a distribution",
		Run:   runBuild, // Defined in cmd_build.go
	}

	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove stale build state without building",
		Run:   runClean, // Defined in cmd_clean.go
	}

	doctorCmd = &cobra.Command{
		Use:   "doctor",
		Short: "Report whether this machine can build ClearFrame",
		Run:   runDoctor, // Defined in cmd_doctor.go
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default packsmith.yaml into the project root",
		Run:   runInit, // Defined in cmd_init.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the packsmith version",
		Run:   runVersion, // Defined in cmd_build.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "",
		"Project root to build (default: current directory, or PACKSMITH_PROJECT)")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"Plain text output without colors or icons (also: PACKSMITH_PLAIN)")
	rootCmd.PersistentFlags().BoolVarP(&verboseLogs, "verbose", "v", false,
		"Enable debug logging on stderr")

	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&skipDeps, "skip-deps", false,
		"Skip dependency resolution and go straight to the build")
	buildCmd.Flags().StringVar(&pythonBin, "python", "",
		"Python interpreter to use (default: platform default, or PACKSMITH_PYTHON)")

	rootCmd.AddCommand(cleanCmd)

	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVar(&pythonBin, "python", "",
		"Python interpreter to check (default: platform default, or PACKSMITH_PYTHON)")

	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&forceInit, "force", false,
		"Overwrite an existing packsmith.yaml")

	rootCmd.AddCommand(versionCmd)
}

// resolveProjectRoot returns the absolute project root for this run:
// the --project flag, then PACKSMITH_PROJECT, then the current directory.
func resolveProjectRoot() string {
	root := projectDir
	if root == "" {
		root = os.Getenv("PACKSMITH_PROJECT")
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}
