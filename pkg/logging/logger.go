// Copyright (C) 2025 ClearFrame Imaging (oss@clearframe.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for packsmith.
//
// Operator-facing progress goes to stdout through the pipeline's output
// writer; this package covers the diagnostic channel only. It is a thin
// layer over Go's standard slog package:
//
//   - stderr output, following Unix conventions for a CLI tool
//   - text format by default, JSON when machine processing is wanted
//   - level selected from the --verbose flag or PACKSMITH_LOG_LEVEL
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{Level: logging.LevelDebug})
//	logger.Info("build starting", "run_id", runID)
//
// Packages that log through the slog default logger pick the same
// configuration up via Init:
//
//	logging.Init(logging.Config{Level: logging.LevelFromEnv()})
//
// # Security Considerations
//
// This package does NOT automatically redact sensitive data. Callers
// must ensure tokens and secrets are not logged.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// =============================================================================
// Log Levels
// =============================================================================

// Level represents log severity levels.
//
// Levels follow the slog convention and are ordered by severity:
// Debug < Info < Warn < Error. Setting a minimum level filters out all
// logs below that level.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for potentially problematic situations.
	LevelWarn

	// LevelError is for operation failures the system survives.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// toSlogLevel converts our Level to slog.Level.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a level name to a Level. Matching is case-insensitive;
// unrecognized names fall back to Info so a typo in an environment
// variable never silences errors.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LevelFromEnv reads PACKSMITH_LOG_LEVEL. An unset or unrecognized value
// yields Info.
func LevelFromEnv() Level {
	return ParseLevel(os.Getenv("PACKSMITH_LOG_LEVEL"))
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures the Logger behavior.
//
// A zero-value Config creates a logger that writes Info+ messages to
// stderr in text format.
type Config struct {
	// Level sets the minimum log level.
	// Default: LevelInfo
	Level Level

	// JSON enables JSON output format for machine processing.
	// Default: false (human-readable text)
	JSON bool

	// Service identifies the component generating logs. When set it is
	// attached to every entry as the "service" attribute.
	// Default: "" (no service attribute)
	Service string

	// Output is the destination writer. Tests substitute a buffer here.
	// Default: os.Stderr
	Output io.Writer
}

// =============================================================================
// Logger
// =============================================================================

// Logger wraps slog.Logger with packsmith's configuration conventions.
//
// Logger is safe for concurrent use; the underlying slog.Logger is
// thread-safe and Logger itself holds no mutable state.
type Logger struct {
	slog   *slog.Logger
	config Config
}

// New creates a Logger with the given configuration.
func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("service", config.Service),
		})
	}

	return &Logger{slog: slog.New(handler), config: config}
}

// Default returns a logger with default settings: Info level, stderr,
// text format, service "packsmith".
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "packsmith"})
}

// Init installs a logger built from config as the process-wide slog
// default, so packages logging through slog.Info and friends share the
// CLI's level and format.
func Init(config Config) *Logger {
	logger := New(config)
	slog.SetDefault(logger.slog)
	return logger
}

// Debug logs a message at Debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs a message at Info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a message at Warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs a message at Error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// With returns a new Logger carrying additional attributes. The parent
// logger is not modified.
//
//	runLogger := logger.With("run_id", runID)
//	runLogger.Info("stage complete", "stage", "clean")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), config: l.config}
}

// Slog returns the underlying slog.Logger for features not exposed by
// this wrapper.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}
