// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package proc

import (
	"context"
	"io"
	"sync"
)

// MockRunner is a test double for Runner.
//
// Configure the mock by setting function fields before use. If a function
// field is nil and the corresponding method is called, it panics.
//
// # Examples
//
//	mock := &proc.MockRunner{
//	    RunFunc: func(ctx context.Context, cmd proc.Command) (*proc.Result, error) {
//	        if cmd.Name == "uv" {
//	            return &proc.Result{ExitCode: 0}, nil
//	        }
//	        return &proc.Result{ExitCode: 1}, nil
//	    },
//	}
type MockRunner struct {
	// RunFunc is called when Run is invoked.
	RunFunc func(ctx context.Context, cmd Command) (*Result, error)

	// StreamFunc is called when Stream is invoked.
	StreamFunc func(ctx context.Context, cmd Command, stdout, stderr io.Writer) (*Result, error)

	// Calls records all method invocations for verification.
	Calls []RunnerCall

	// mu protects Calls for concurrent access.
	mu sync.Mutex
}

// RunnerCall records a single method invocation.
type RunnerCall struct {
	Method  string
	Command Command
}

// Run delegates to RunFunc and records the call.
func (m *MockRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, RunnerCall{Method: "Run", Command: cmd})
	fn := m.RunFunc
	m.mu.Unlock()
	if fn == nil {
		panic("MockRunner.RunFunc not set")
	}
	return fn(ctx, cmd)
}

// Stream delegates to StreamFunc and records the call.
func (m *MockRunner) Stream(ctx context.Context, cmd Command, stdout, stderr io.Writer) (*Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, RunnerCall{Method: "Stream", Command: cmd})
	fn := m.StreamFunc
	m.mu.Unlock()
	if fn == nil {
		panic("MockRunner.StreamFunc not set")
	}
	return fn(ctx, cmd, stdout, stderr)
}

// Reset clears all recorded calls.
func (m *MockRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// GetCalls returns a copy of all recorded calls.
func (m *MockRunner) GetCalls() []RunnerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]RunnerCall, len(m.Calls))
	copy(result, m.Calls)
	return result
}

// Compile-time interface compliance check.
var _ Runner = (*MockRunner)(nil)
