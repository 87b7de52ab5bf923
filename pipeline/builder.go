// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pipeline builds render pipelines from compiled shader artifacts.
//
// A Builder owns the fixed binding layout (one uniform buffer at group 0,
// binding 0) and the pipeline layout derived from it. Build turns a
// vertex/fragment artifact pair into a Handle: a device render pipeline
// drawn as a triangle list with no vertex or index buffers.
//
// Handles are replaced, never mutated. Each carries a generation number
// unique within its Builder.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderlab/internal/logx"
	"github.com/gogpu/shaderlab/shader"
)

var (
	// ErrNilDevice is returned by NewBuilder without a device.
	ErrNilDevice = errors.New("pipeline: device is nil")

	// ErrTargetMismatch is wrapped when the two artifacts use different
	// payload kinds.
	ErrTargetMismatch = errors.New("pipeline: vertex and fragment targets differ")

	// ErrNotDeviceTarget is wrapped when an artifact is an export-only form.
	ErrNotDeviceTarget = errors.New("pipeline: artifact target is not device-consumable")

	// ErrDestroyed is returned by Build after Destroy.
	ErrDestroyed = errors.New("pipeline: builder destroyed")
)

// Builder creates render pipelines against one fixed layout.
type Builder struct {
	device hal.Device
	layout Layout
	format gputypes.TextureFormat

	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout

	generation uint64
}

// NewBuilder creates the bind group layout and pipeline layout.
func NewBuilder(device hal.Device, layout Layout, format gputypes.TextureFormat) (*Builder, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if err := layout.validate(); err != nil {
		return nil, err
	}
	b := &Builder{device: device, layout: layout, format: format}

	uniformLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "shaderlab_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{layout.bindingEntry()},
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform layout: %w", err)
	}
	b.uniformLayout = uniformLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "shaderlab_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{uniformLayout},
	})
	if err != nil {
		b.Destroy()
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout
	return b, nil
}

// Layout returns the layout pipelines are built against.
func (b *Builder) Layout() Layout { return b.layout }

// Format returns the color target format.
func (b *Builder) Format() gputypes.TextureFormat { return b.format }

// Device returns the device pipelines are created on.
func (b *Builder) Device() hal.Device { return b.device }

// UniformLayout returns the bind group layout for the uniform buffer.
// Bind groups used with Handles from this Builder must use it.
func (b *Builder) UniformLayout() hal.BindGroupLayout { return b.uniformLayout }

// Build creates a render pipeline from a vertex and fragment artifact.
// Failures are *shader.Diagnostic values of kind shader.KindBackend.
func (b *Builder) Build(vertex, fragment *shader.Artifact) (*Handle, error) {
	if b.pipeLayout == nil {
		return nil, shader.NewDiagnostic(shader.KindBackend, 0, "", ErrDestroyed)
	}
	if err := checkArtifacts(vertex, fragment); err != nil {
		return nil, err
	}

	b.generation++
	gen := b.generation
	h := &Handle{
		device:      b.device,
		generation:  gen,
		vertexCount: b.layout.VertexCount,
		target:      vertex.Target,
	}

	vs, err := b.createModule(vertex, gen)
	if err != nil {
		return nil, err
	}
	h.vertex = vs

	fs, err := b.createModule(fragment, gen)
	if err != nil {
		h.Destroy()
		return nil, err
	}
	h.fragment = fs

	pipeline, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("shaderlab_pipeline_%d", gen),
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     vs,
			EntryPoint: vertex.EntryPoint,
		},
		Fragment: &hal.FragmentState{
			Module:     fs,
			EntryPoint: fragment.EntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    b.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		h.Destroy()
		return nil, shader.NewDiagnostic(shader.KindBackend, shader.StageFragment, fragment.EntryPoint,
			fmt.Errorf("create render pipeline: %w", err))
	}
	h.pipeline = pipeline

	logx.Logger().Debug("pipeline: built", "generation", gen, "target", vertex.Target)
	return h, nil
}

func (b *Builder) createModule(art *shader.Artifact, gen uint64) (hal.ShaderModule, error) {
	src := hal.ShaderSource{}
	if art.Target.IsBinary() {
		src.SPIRV = art.Words
	} else {
		src.WGSL = art.Text
	}
	m, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  fmt.Sprintf("shaderlab_%s_%d", art.Stage, gen),
		Source: src,
	})
	if err != nil {
		return nil, shader.NewDiagnostic(shader.KindBackend, art.Stage, art.EntryPoint,
			fmt.Errorf("create %s shader module: %w", art.Stage, err))
	}
	return m, nil
}

func checkArtifacts(vertex, fragment *shader.Artifact) error {
	if vertex == nil || fragment == nil {
		return shader.Errorf(shader.KindBackend, 0, "", "pipeline: missing artifact")
	}
	if vertex.Stage != shader.StageVertex {
		return shader.Errorf(shader.KindBackend, vertex.Stage, vertex.EntryPoint,
			"pipeline: vertex slot holds a %s artifact", vertex.Stage)
	}
	if fragment.Stage != shader.StageFragment {
		return shader.Errorf(shader.KindBackend, fragment.Stage, fragment.EntryPoint,
			"pipeline: fragment slot holds a %s artifact", fragment.Stage)
	}
	if vertex.Target != fragment.Target {
		return shader.Errorf(shader.KindBackend, 0, "", "%w: %s and %s",
			ErrTargetMismatch, vertex.Target, fragment.Target)
	}
	if !vertex.Target.DeviceConsumable() {
		return shader.Errorf(shader.KindBackend, 0, "", "%w: %s", ErrNotDeviceTarget, vertex.Target)
	}
	return nil
}

// Destroy releases the layouts in reverse creation order. Handles built
// by b must be destroyed first. Safe to call more than once.
func (b *Builder) Destroy() {
	if b.device == nil {
		return
	}
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.uniformLayout != nil {
		b.device.DestroyBindGroupLayout(b.uniformLayout)
		b.uniformLayout = nil
	}
}
