// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderlab/pipeline"
)

// ErrFrameDestroyed is returned by Frame.Write after Destroy.
var ErrFrameDestroyed = errors.New("render: frame destroyed")

// Slot is the read side of the active pipeline holder.
type Slot interface {
	// Pipeline returns the active handle, or nil before the first
	// successful build.
	Pipeline() *pipeline.Handle
}

// DrawPass is the subset of a render pass encoder that Paint records into.
// hal.RenderPassEncoder satisfies it.
type DrawPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// Frame owns the GPU resources draws need besides the pipeline: the
// uniform buffer and the bind group that exposes it at binding 0.
type Frame struct {
	device hal.Device
	queue  hal.Queue
	size   uint64

	buffer    hal.Buffer
	bindGroup hal.BindGroup
}

// NewFrame creates a uniform buffer of builder's uniform size and binds
// it with builder's uniform layout.
func NewFrame(device hal.Device, queue hal.Queue, builder *pipeline.Builder) (*Frame, error) {
	size := builder.Layout().UniformSize
	f := &Frame{device: device, queue: queue, size: size}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "shaderlab_uniform",
		Size:  size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	f.buffer = buf

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "shaderlab_uniform_bind",
		Layout: builder.UniformLayout(),
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: size,
			}},
		},
	})
	if err != nil {
		f.Destroy()
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	f.bindGroup = bindGroup
	return f, nil
}

// Size returns the uniform buffer size in bytes.
func (f *Frame) Size() uint64 { return f.size }

// BindGroup returns the uniform bind group.
func (f *Frame) BindGroup() hal.BindGroup { return f.bindGroup }

// Write uploads data to the start of the uniform buffer.
func (f *Frame) Write(data []byte) error {
	if f.buffer == nil {
		return ErrFrameDestroyed
	}
	if uint64(len(data)) > f.size {
		return fmt.Errorf("render: %d bytes exceed uniform buffer of %d", len(data), f.size)
	}
	f.queue.WriteBuffer(f.buffer, 0, data)
	return nil
}

// Destroy releases the bind group and buffer. Safe to call more than once.
func (f *Frame) Destroy() {
	if f.device == nil {
		return
	}
	if f.bindGroup != nil {
		f.device.DestroyBindGroup(f.bindGroup)
		f.bindGroup = nil
	}
	if f.buffer != nil {
		f.device.DestroyBuffer(f.buffer)
		f.buffer = nil
	}
}

// Painter records the active pipeline into the host's render pass.
//
// Prepare runs before the pass begins; Paint runs inside it. Both are
// called on the frame thread that also polls the reload coordinator.
type Painter struct {
	frame *Frame
	slot  Slot
	draws uint64
}

// NewPainter returns a painter drawing slot's pipeline with frame's
// resources.
func NewPainter(frame *Frame, slot Slot) *Painter {
	return &Painter{frame: frame, slot: slot}
}

// Prepare writes u to the uniform buffer.
func (p *Painter) Prepare(u Uniforms) error {
	return p.frame.Write(u.Encode(p.frame.Size()))
}

// PrepareRaw writes caller-encoded uniform bytes, for layouts larger
// than Uniforms.
func (p *Painter) PrepareRaw(data []byte) error {
	return p.frame.Write(data)
}

// Paint binds the active pipeline and uniforms and draws the fixed vertex
// count. It reports false and records nothing while no pipeline exists.
func (p *Painter) Paint(pass DrawPass) bool {
	h := p.slot.Pipeline()
	if h == nil || h.Pipeline() == nil {
		return false
	}
	pass.SetPipeline(h.Pipeline())
	pass.SetBindGroup(0, p.frame.BindGroup(), nil)
	pass.Draw(h.VertexCount(), 1, 0, 0)
	p.draws++
	return true
}

// Draws returns the number of draws recorded.
func (p *Painter) Draws() uint64 { return p.draws }
