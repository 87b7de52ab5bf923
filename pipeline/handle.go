// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderlab/shader"
)

// Handle is a built render pipeline and the shader modules it uses.
// Compare Handles by pointer.
type Handle struct {
	device hal.Device

	vertex   hal.ShaderModule
	fragment hal.ShaderModule
	pipeline hal.RenderPipeline

	generation  uint64
	vertexCount uint32
	target      shader.Target
}

// Pipeline returns the device pipeline, nil after Destroy.
func (h *Handle) Pipeline() hal.RenderPipeline { return h.pipeline }

// Generation returns the build number, starting at 1.
func (h *Handle) Generation() uint64 { return h.generation }

// VertexCount returns the number of vertices to draw.
func (h *Handle) VertexCount() uint32 { return h.vertexCount }

// Target returns the artifact form the pipeline was built from.
func (h *Handle) Target() shader.Target { return h.target }

// Destroyed reports whether Destroy has been called.
func (h *Handle) Destroyed() bool { return h.pipeline == nil && h.vertex == nil && h.fragment == nil }

// Destroy releases the pipeline and shader modules in reverse creation
// order. Safe to call more than once.
func (h *Handle) Destroy() {
	if h == nil || h.device == nil {
		return
	}
	if h.pipeline != nil {
		h.device.DestroyRenderPipeline(h.pipeline)
		h.pipeline = nil
	}
	if h.fragment != nil {
		h.device.DestroyShaderModule(h.fragment)
		h.fragment = nil
	}
	if h.vertex != nil {
		h.device.DestroyShaderModule(h.vertex)
		h.vertex = nil
	}
}
