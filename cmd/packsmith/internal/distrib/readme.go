// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package distrib

import (
	"fmt"
	"strings"

	"github.com/clearframe/packsmith/cmd/packsmith/internal/platform"
)

// ReadmeParams fills the distribution instructions template.
type ReadmeParams struct {
	AppName  string
	Platform platform.Platform
	Artifact string
}

// RenderReadme produces the README.txt content shipped next to the
// artifact. Plain text on purpose: it must read fine in Notepad and
// TextEdit.
func RenderReadme(p ReadmeParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", p.AppName)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(p.AppName)))
	fmt.Fprintf(&b, "AI-assisted dust and scratch removal for scanned film.\n\n")

	fmt.Fprintf(&b, "Quick Start\n-----------\n")
	fmt.Fprintf(&b, "1. %s\n", p.Platform.LaunchInstruction(p.Artifact))
	fmt.Fprintf(&b, "2. Drag a scanned image (TIFF, PNG, JPEG) into the window.\n")
	fmt.Fprintf(&b, "3. Review the cleaned preview and export.\n\n")

	fmt.Fprintf(&b, "What's Included\n---------------\n")
	fmt.Fprintf(&b, "- %s: the application\n", p.Artifact)
	fmt.Fprintf(&b, "- weights/: the restoration model (keep next to the app)\n\n")

	fmt.Fprintf(&b, "System Requirements\n-------------------\n")
	switch p.Platform {
	case platform.Darwin:
		fmt.Fprintf(&b, "- macOS 12 or newer\n")
	case platform.Windows:
		fmt.Fprintf(&b, "- Windows 10 or newer (64-bit)\n")
	default:
		fmt.Fprintf(&b, "- A 64-bit Linux desktop with glibc 2.31 or newer\n")
	}
	fmt.Fprintf(&b, "- 8 GB RAM minimum, 16 GB recommended for large scans\n")
	fmt.Fprintf(&b, "- 4 GB free disk space\n\n")

	fmt.Fprintf(&b, "Troubleshooting\n---------------\n")
	fmt.Fprintf(&b, "- First launch is slow: the restoration model loads once and is\n")
	fmt.Fprintf(&b, "  cached for later runs.\n")
	if p.Platform == platform.Darwin {
		fmt.Fprintf(&b, "- \"App can't be opened\": right-click the app, choose Open, then\n")
		fmt.Fprintf(&b, "  confirm. This is macOS Gatekeeper on unsigned apps.\n")
	}
	fmt.Fprintf(&b, "- \"Model weights not found\": make sure the weights folder sits in\n")
	fmt.Fprintf(&b, "  the same folder as the application.\n")

	return b.String()
}
