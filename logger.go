// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaderlab

import (
	"log/slog"

	"github.com/gogpu/shaderlab/internal/logx"
)

// SetLogger configures the logger for shaderlab and all its sub-packages.
// By default, shaderlab produces no log output.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to restore the silent default.
//
// Log levels used by shaderlab:
//   - [slog.LevelDebug]: compile timings, cache hits, dropped watch events
//   - [slog.LevelInfo]: pipeline swapped, shader rejected, watcher started
//   - [slog.LevelWarn]: backend failures, watcher errors, cache write errors
//
// Example:
//
//	shaderlab.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logx.Set(l)
}

// Logger returns the current logger used by shaderlab.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logx.Logger()
}
