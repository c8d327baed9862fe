// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command packsmith builds and packages the ClearFrame desktop app.
//
// It runs a strictly sequential pipeline over an external Python
// checkout: resolve runtime dependencies, ensure PyInstaller is
// installed, clean stale build state, run the packaging build, and
// assemble a self-contained distribution folder.
//
// # Usage
//
//	# Build a distribution from the current directory
//	packsmith build
//
//	# Build a specific checkout without touching dependencies
//	packsmith build --project ~/src/clearframe --skip-deps
//
//	# Check whether this machine can build at all
//	packsmith doctor
//
// Exit codes: 0 on success, 1 on failure, 130 when interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/clearframe/packsmith/pkg/ux"
)

// Version is stamped at build time via
// -ldflags "-X main.Version=v1.2.3". The default marks ad hoc builds.
var Version = "dev"

func main() {
	// Ctrl-C cancels the context; the pipeline checks it at every stage
	// boundary and reports Interrupted instead of Failed. A second
	// Ctrl-C kills the process the ordinary way.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
}
