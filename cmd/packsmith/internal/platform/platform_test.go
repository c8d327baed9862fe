// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package platform

import (
	"runtime"
	"strings"
	"testing"
)

func TestDetect_MatchesHost(t *testing.T) {
	got := Detect()

	switch runtime.GOOS {
	case "darwin":
		if got != Darwin {
			t.Errorf("Detect() = %q on darwin host", got)
		}
	case "windows":
		if got != Windows {
			t.Errorf("Detect() = %q on windows host", got)
		}
	default:
		if got != Linux {
			t.Errorf("Detect() = %q on %s host, want linux branch", got, runtime.GOOS)
		}
	}
}

func TestPlatform_ArtifactName(t *testing.T) {
	tests := []struct {
		platform Platform
		want     string
	}{
		{Darwin, "ClearFrame.app"},
		{Windows, "ClearFrame.exe"},
		{Linux, "ClearFrame"},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			if got := tt.platform.ArtifactName("ClearFrame"); got != tt.want {
				t.Errorf("ArtifactName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlatform_ArtifactIsBundle(t *testing.T) {
	if !Darwin.ArtifactIsBundle() {
		t.Error("darwin artifact should be a bundle")
	}
	if Windows.ArtifactIsBundle() || Linux.ArtifactIsBundle() {
		t.Error("only darwin artifacts are bundles")
	}
}

func TestPlatform_PythonBinary(t *testing.T) {
	if got := Windows.PythonBinary(); got != "python" {
		t.Errorf("windows PythonBinary() = %q, want python", got)
	}
	if got := Darwin.PythonBinary(); got != "python3" {
		t.Errorf("darwin PythonBinary() = %q, want python3", got)
	}
	if got := Linux.PythonBinary(); got != "python3" {
		t.Errorf("linux PythonBinary() = %q, want python3", got)
	}
}

func TestPlatform_BuildBanner_Distinct(t *testing.T) {
	seen := map[string]Platform{}
	for _, p := range []Platform{Darwin, Windows, Linux} {
		banner := p.BuildBanner()
		if banner == "" {
			t.Errorf("%s has empty build banner", p)
		}
		if prev, dup := seen[banner]; dup {
			t.Errorf("%s and %s share banner %q", p, prev, banner)
		}
		seen[banner] = p
	}
}

func TestPlatform_LaunchInstruction_MentionsArtifact(t *testing.T) {
	for _, p := range []Platform{Darwin, Windows, Linux} {
		artifact := p.ArtifactName("ClearFrame")
		hint := p.LaunchInstruction(artifact)
		if hint == "" {
			t.Errorf("%s has empty launch instruction", p)
		}
		if !strings.Contains(hint, artifact) {
			t.Errorf("%s launch instruction %q does not mention %q", p, hint, artifact)
		}
	}
}
