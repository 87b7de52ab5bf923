// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render draws the active shaderlab pipeline into a host render pass.
//
// # Key Principle
//
// shaderlab RECEIVES a GPU device from the host application, it does NOT
// own the surface or the frame loop. The host begins the render pass;
// shaderlab records one draw into it.
//
// # Core Types
//
//   - DeviceHandle: GPU device access from the host application
//   - Frame: the uniform buffer and bind group, owned explicitly per session
//   - Painter: Prepare writes uniforms, Paint records the draw
//   - Uniforms: resolution, time and a free parameter, 16 bytes
//
// # Usage
//
// Integration with gogpu:
//
//	app.OnDraw(func(gc *gogpu.Context) {
//	    session.Update()
//	    _ = session.Prepare(render.Uniforms{
//	        Resolution: [2]float32{w, h},
//	        Time:       float32(time.Since(start).Seconds()),
//	    })
//	    session.Paint(pass)
//	})
//
// # Architecture
//
//	        host frame loop
//	              │
//	     ┌────────┴────────┐
//	     ▼                 ▼
//	reload.Coordinator  render.Painter
//	 (Poll, swap)        (Prepare, Paint)
//	     │                 │
//	     └──── Slot ◄──────┘
//	     pipeline.Handle
//
// # Thread Safety
//
// Frame and Painter are NOT thread-safe. They are used on the same
// goroutine that polls the coordinator, so the pipeline slot needs no lock.
package render
