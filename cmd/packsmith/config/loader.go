// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file looked up in the
// project root.
const FileName = "packsmith.yaml"

// Load returns the build configuration for the project at root.
//
// The defaults cover a stock ClearFrame checkout; a packsmith.yaml in the
// project root overrides them. A missing file is not an error. The
// PACKSMITH_PYTHON environment variable overrides the interpreter last,
// after file settings.
func Load(root string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults apply
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if python := os.Getenv("PACKSMITH_PYTHON"); python != "" {
		cfg.Build.Python = python
	}
}

// defaultTemplate is the file the init command writes. Kept as a
// hand-maintained template rather than marshalled from DefaultConfig so
// the generated file carries comments; a test pins the two together.
const defaultTemplate = `# Packsmith build configuration.
# Every section overrides the built-in defaults wholesale; delete the
# file (or a section) to fall back to them.

app:
  # Product name. Drives the artifact name: ClearFrame.app on macOS,
  # ClearFrame.exe on Windows, ClearFrame on Linux.
  name: ClearFrame
  # GUI entry point, checked before any build stage runs.
  entry_point: clearframe_app.py

build:
  # Packaging descriptor handed to the build tool.
  spec_file: clearframe.spec
  # Interpreter override. Empty means the platform default; the
  # PACKSMITH_PYTHON environment variable wins over this setting.
  # python: /usr/local/bin/python3.11
  # Folder the finished distribution is assembled into.
  dist_dir: distribution
  # Model weights folder, bundled into the distribution when present.
  weights_dir: weights
  # Transient build state removed before every packaging run.
  clean_dirs:
    - build
    - dist

# Runtime libraries verified before packaging. module names the import
# to probe when it differs from the package name.
dependencies:
  - name: torch
  - name: torchvision
  - name: pillow
    module: PIL
  - name: customtkinter
  - name: opencv-python
    module: cv2
  - name: numpy
  - name: tkinterdnd2
  - name: tqdm
`

// WriteDefault writes a commented default packsmith.yaml at path. Used
// by the init command; refuses nothing here, overwrite policy is the
// caller's call.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0644)
}
