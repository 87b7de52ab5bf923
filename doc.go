// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shaderlab provides live shader editing for gogpu hosts.
//
// A Session turns a fragment template and a user-edited body into a
// render pipeline and keeps it current while the body or the shader files
// change. Failed edits never disturb the running pipeline: the previous
// version keeps drawing and the diagnostic is reported through Status.
//
// # Quick Start
//
//	cfg := config.Default()
//	s, err := shaderlab.New(device, queue, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	// Once per frame, on the render thread:
//	s.Update()
//	s.Prepare(render.Uniforms{Resolution: [2]float32{w, h}, Time: t})
//	// ... begin the render pass ...
//	s.Paint(pass)
//
//	// From the editor:
//	s.Edit(newBody)
//
// # Architecture
//
// Sources come from a [source.Loader]: embedded shaders, or files on disk
// watched by [watch.Watcher]. The [tmpl] package substitutes the body
// into the fragment template, [shader.Compiler] runs naga to validate and
// emit SPIR-V or WGSL, and [pipeline.Builder] creates the HAL pipeline.
// [reload.Coordinator] sequences all of this and holds the active
// pipeline; [render.Painter] draws it with the uniforms in [render.Frame].
//
// # Logging
//
// shaderlab is silent by default. Call [SetLogger] to enable structured
// logging for every package.
//
// # Thread Safety
//
// A Session is not safe for concurrent use. Call it from the thread that
// renders frames; only the file watcher runs in its own goroutine.
package shaderlab
