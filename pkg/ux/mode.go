// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Mode defines how output is rendered
type Mode string

const (
	// ModeStyled enables colors, icons, and boxes
	ModeStyled Mode = "styled"

	// ModePlain outputs plain text suitable for scripting and CI logs
	ModePlain Mode = "plain"
)

var (
	currentMode = ModeStyled
	modeMu      sync.RWMutex
)

// CurrentMode returns the active output mode
func CurrentMode() Mode {
	modeMu.RLock()
	defer modeMu.RUnlock()
	return currentMode
}

// SetMode updates the active output mode
func SetMode(m Mode) {
	modeMu.Lock()
	defer modeMu.Unlock()
	currentMode = m
}

// IsPlain reports whether plain-text output is active
func IsPlain() bool {
	return CurrentMode() == ModePlain
}

// InitMode picks the output mode from the flag, environment, and terminal.
// Priority: --plain flag, then PACKSMITH_PLAIN, then tty detection.
func InitMode(plainFlag bool) {
	if plainFlag {
		SetMode(ModePlain)
		return
	}
	if os.Getenv("PACKSMITH_PLAIN") != "" {
		SetMode(ModePlain)
		return
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		SetMode(ModePlain)
		return
	}
	SetMode(ModeStyled)
}
