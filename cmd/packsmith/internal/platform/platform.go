// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package platform identifies the host operating system and centralizes
// every platform-dependent fact the build pipeline needs: artifact naming,
// bundle-vs-binary handling, interpreter defaults, and operator messages.
package platform

import "runtime"

// Platform identifies a supported build host.
type Platform string

const (
	// Darwin builds produce a .app bundle directory.
	Darwin Platform = "darwin"

	// Windows builds produce a .exe binary.
	Windows Platform = "windows"

	// Linux covers every other desktop POSIX host. Artifacts are plain
	// executables.
	Linux Platform = "linux"
)

// Detect returns the Platform for the running host. Any GOOS that is not
// darwin or windows takes the Linux branch.
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return Darwin
	case "windows":
		return Windows
	default:
		return Linux
	}
}

// DisplayName returns the human-facing OS name for status output.
func (p Platform) DisplayName() string {
	switch p {
	case Darwin:
		return "macOS"
	case Windows:
		return "Windows"
	default:
		return "Linux"
	}
}

// ArtifactName returns the packager's output name for the given app name:
// an .app bundle on macOS, an .exe on Windows, a bare executable elsewhere.
func (p Platform) ArtifactName(app string) string {
	switch p {
	case Darwin:
		return app + ".app"
	case Windows:
		return app + ".exe"
	default:
		return app
	}
}

// ArtifactIsBundle reports whether the packager's output is a directory
// tree rather than a single file. Only macOS app bundles are.
func (p Platform) ArtifactIsBundle() bool {
	return p == Darwin
}

// BuildBanner returns the progress line printed before the packaging step.
func (p Platform) BuildBanner() string {
	switch p {
	case Darwin:
		return "Building macOS app bundle"
	case Windows:
		return "Building Windows executable"
	default:
		return "Building Linux executable"
	}
}

// PythonBinary returns the conventional interpreter name for the host.
// Windows installs expose "python"; POSIX systems expose "python3".
func (p Platform) PythonBinary() string {
	if p == Windows {
		return "python"
	}
	return "python3"
}

// LaunchInstruction returns the one-line launch hint written into the
// distribution README for the given artifact name.
func (p Platform) LaunchInstruction(artifact string) string {
	switch p {
	case Darwin:
		return "Double-click " + artifact + " (right-click > Open on first launch to pass Gatekeeper)"
	case Windows:
		return "Double-click " + artifact
	default:
		return "Run ./" + artifact + " from a terminal"
	}
}
