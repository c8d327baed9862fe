// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// configValidate is the validator instance for build configuration.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

type Config struct {
	// App describes the application being packaged.
	App AppConfig `yaml:"app" validate:"required"`

	// Build holds packaging-step settings.
	Build BuildConfig `yaml:"build" validate:"required"`

	// Dependencies are the runtime libraries the app needs before
	// packaging. Order is preserved through probing and installation.
	Dependencies []Dependency `yaml:"dependencies" validate:"required,min=1,dive"`
}

type AppConfig struct {
	Name       string `yaml:"name" validate:"required"`        // e.g. ClearFrame
	EntryPoint string `yaml:"entry_point" validate:"required"` // e.g. clearframe_app.py
}

type BuildConfig struct {
	SpecFile   string   `yaml:"spec_file" validate:"required"` // packaging descriptor, e.g. clearframe.spec
	Python     string   `yaml:"python,omitempty"`              // interpreter override; empty = platform default
	DistDir    string   `yaml:"dist_dir" validate:"required"`  // distribution output folder
	WeightsDir string   `yaml:"weights_dir"`                   // model weights folder, copied if present
	CleanDirs  []string `yaml:"clean_dirs" validate:"min=1"`   // transient state removed before building
}

// Dependency names one runtime requirement. Name is what the installer
// receives; Module is what the import probe looks up. Module defaults to
// Name with dashes mapped to underscores, which covers most packages but
// not those whose distribution and import names differ (pillow imports as
// PIL, opencv-python as cv2).
type Dependency struct {
	Name   string `yaml:"name" validate:"required"`
	Module string `yaml:"module,omitempty"`
}

// ImportName returns the module name the probe should look up.
func (d Dependency) ImportName() string {
	if d.Module != "" {
		return d.Module
	}
	return strings.ReplaceAll(d.Name, "-", "_")
}

// Validate checks the configuration using the struct tags above.
func (c *Config) Validate() error {
	return configValidate.Struct(c)
}

// DefaultConfig returns the stock ClearFrame build configuration. A
// packsmith.yaml in the project root overrides it wholesale per section.
func DefaultConfig() Config {
	return Config{
		App: AppConfig{
			Name:       "ClearFrame",
			EntryPoint: "clearframe_app.py",
		},
		Build: BuildConfig{
			SpecFile:   "clearframe.spec",
			DistDir:    "distribution",
			WeightsDir: "weights",
			CleanDirs:  []string{"build", "dist"},
		},
		Dependencies: []Dependency{
			{Name: "torch"},
			{Name: "torchvision"},
			{Name: "pillow", Module: "PIL"},
			{Name: "customtkinter"},
			{Name: "opencv-python", Module: "cv2"},
			{Name: "numpy"},
			{Name: "tkinterdnd2"},
			{Name: "tqdm"},
		},
	}
}
