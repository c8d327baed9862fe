// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clearframe/packsmith/cmd/packsmith/config"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/packager"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/platform"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/proc"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/resolve"
	"github.com/clearframe/packsmith/cmd/packsmith/internal/toolchain"
	"github.com/clearframe/packsmith/pkg/ux"
)

// doctorCheck is one line of the environment report.
type doctorCheck struct {
	// Name labels the check in the report.
	Name string

	// OK is the check's verdict.
	OK bool

	// Detail is extra context shown next to the verdict.
	Detail string

	// Required marks checks whose failure means a build cannot work.
	// Optional checks only inform (manifest, weights).
	Required bool
}

// doctorReport is the full environment assessment.
type doctorReport struct {
	Checks []doctorCheck
}

// Buildable reports whether every required check passed.
func (r doctorReport) Buildable() bool {
	for _, c := range r.Checks {
		if c.Required && !c.OK {
			return false
		}
	}
	return true
}

// OptionalGaps lists the optional checks that failed. A build still
// works without them, it just degrades (unpinned versions, no weights).
func (r doctorReport) OptionalGaps() []string {
	var gaps []string
	for _, c := range r.Checks {
		if !c.Required && !c.OK {
			gaps = append(gaps, c.Name)
		}
	}
	return gaps
}

// collectDoctorReport probes the environment the way the pipeline
// stages would, without mutating anything: no installs, no cleanup.
func collectDoctorReport(ctx context.Context, runner proc.Runner, root string, cfg *config.Config) doctorReport {
	var report doctorReport

	tc := toolchain.NewSelector(runner).Select(ctx)
	python := cfg.Build.Python
	if python == "" {
		python = platform.Detect().PythonBinary()
	}
	inv := toolchain.Invocations{Toolchain: tc, Python: python}

	// Interpreter
	res, err := runner.Run(ctx, proc.Command{Name: python, Args: []string{"--version"}})
	switch {
	case err != nil:
		report.Checks = append(report.Checks, doctorCheck{
			Name: "Python interpreter", Detail: python + " not found", Required: true,
		})
	case !res.Success():
		report.Checks = append(report.Checks, doctorCheck{
			Name: "Python interpreter", Detail: fmt.Sprintf("%s exited %d", python, res.ExitCode), Required: true,
		})
	default:
		version := strings.TrimSpace(res.Stdout)
		if version == "" {
			version = strings.TrimSpace(res.Stderr) // Python 2 prints the version to stderr
		}
		report.Checks = append(report.Checks, doctorCheck{
			Name: "Python interpreter", OK: true, Detail: version, Required: true,
		})
	}

	// Toolchain
	report.Checks = append(report.Checks, doctorCheck{
		Name: "Dependency toolchain", OK: true, Detail: tc.DisplayName(),
	})

	// Packaging tool
	res, err = runner.Run(ctx, inv.Probe(packager.ToolModule, root))
	toolPresent := err == nil && res.Success()
	detail := "installed"
	if !toolPresent {
		detail = "absent (build will install it)"
	}
	report.Checks = append(report.Checks, doctorCheck{
		Name: "Packaging tool", OK: toolPresent, Detail: detail,
	})

	// Project files
	report.Checks = append(report.Checks,
		fileCheck("Entry point", filepath.Join(root, cfg.App.EntryPoint), true),
		fileCheck("Build descriptor", filepath.Join(root, cfg.Build.SpecFile), true),
		fileCheck("Dependency manifest", filepath.Join(root, resolve.ManifestName), false),
	)
	if cfg.Build.WeightsDir != "" {
		report.Checks = append(report.Checks,
			fileCheck("Model weights", filepath.Join(root, cfg.Build.WeightsDir), false))
	}

	return report
}

// fileCheck builds a presence check for one project file.
func fileCheck(name, path string, required bool) doctorCheck {
	if _, err := os.Stat(path); err != nil {
		detail := filepath.Base(path) + " missing"
		if !required {
			detail = filepath.Base(path) + " absent (optional)"
		}
		return doctorCheck{Name: name, Detail: detail, Required: required}
	}
	return doctorCheck{Name: name, OK: true, Detail: filepath.Base(path), Required: required}
}

// runDoctor prints the environment report. Exit 0 when a build can
// work on this machine, 1 otherwise.
func runDoctor(cmd *cobra.Command, args []string) {
	root := resolveProjectRoot()

	cfg, err := config.Load(root)
	if err != nil {
		ux.Error(fmt.Sprintf("Configuration error: %v", err))
		os.Exit(1)
	}
	if pythonBin != "" {
		cfg.Build.Python = pythonBin
	}

	ux.Title("Packsmith environment report")
	var report doctorReport
	_ = ux.WithSpinner("Probing environment", func() error {
		report = collectDoctorReport(cmd.Context(), proc.NewDefaultRunner(), root, cfg)
		return nil
	})

	for _, check := range report.Checks {
		icon := ux.IconSuccess
		if !check.OK {
			icon = ux.IconWarning
			if check.Required {
				icon = ux.IconError
			}
		}
		fmt.Printf("  %s %-22s %s\n", icon.Render(), check.Name, check.Detail)
	}

	fmt.Println()
	if !report.Buildable() {
		ux.Error("This machine cannot build ClearFrame yet")
		os.Exit(1)
	}
	if gaps := report.OptionalGaps(); len(gaps) > 0 {
		ux.Warning("Missing but optional: " + strings.Join(gaps, ", "))
	}
	ux.Success("Ready to build")
}
