// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader turns WGSL source text into artifacts a GPU device can consume.
//
// Compilation runs three stages, each short-circuiting on failure:
//
//  1. Parse: WGSL text to AST (naga front-end). Failures are KindParse.
//  2. Validate: lowering to naga IR, IR validation and an entry point check
//     for the requested stage. Failures are KindValidation.
//  3. Emit: the validated module is written in the compiler's target form,
//     either SPIR-V words or WGSL text. Failures are KindBackend.
//
// Every failure is returned as a *Diagnostic, which implements error and
// carries a display-only message with the offending source line when the
// toolchain reports a location.
//
// # Usage
//
//	c := shader.NewCompiler(shader.WithTarget(shader.TargetSPIRV))
//	art, err := c.Compile(shader.Source{
//	    Stage: shader.StageFragment,
//	    Name:  "shader.frag.wgsl",
//	    Text:  text,
//	})
//	if d, ok := shader.AsDiagnostic(err); ok {
//	    fmt.Println(d.Text())
//	}
//
// The Compiler performs no filesystem or GPU access unless an artifact cache
// is attached with WithCache.
package shader
