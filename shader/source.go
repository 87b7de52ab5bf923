// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

// Source is one shader stage's text as it is about to be compiled.
//
// A Source is created fresh for every reload attempt and never mutated;
// a newer Source replaces the old one.
type Source struct {
	// Stage selects entry point semantics and compile options.
	Stage Stage

	// Name identifies the source in diagnostics (file path or embedded name).
	Name string

	// Text is the WGSL source after template materialization.
	Text string

	// EntryPoint is the entry point to compile. Empty selects the first
	// entry point declared for Stage.
	EntryPoint string

	// Params are the template parameters Text was materialized with,
	// kept for diagnostics. Nil for sources that are not templates.
	Params map[string]string
}
