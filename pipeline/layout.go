// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Visibility selects the stages that see the uniform buffer.
type Visibility uint8

const (
	VisibilityVertex Visibility = 1 << iota
	VisibilityFragment

	VisibilityBoth = VisibilityVertex | VisibilityFragment
)

func (v Visibility) String() string {
	switch v {
	case VisibilityVertex:
		return "vertex"
	case VisibilityFragment:
		return "fragment"
	case VisibilityBoth:
		return "both"
	default:
		return fmt.Sprintf("Visibility(%d)", uint8(v))
	}
}

// ParseVisibility parses "vertex", "fragment" or "both".
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertex":
		return VisibilityVertex, nil
	case "fragment":
		return VisibilityFragment, nil
	case "both", "vertex|fragment":
		return VisibilityBoth, nil
	}
	return 0, fmt.Errorf("pipeline: unknown visibility %q", s)
}

// Layout is the fixed resource layout every pipeline is built against:
// one uniform buffer at group 0, binding 0, and a fixed vertex count.
type Layout struct {
	// UniformSize is the uniform buffer size in bytes.
	UniformSize uint64

	// Visibility selects the stages that read the uniform buffer.
	Visibility Visibility

	// VertexCount is the number of vertices drawn without vertex buffers.
	VertexCount uint32
}

// DefaultLayout is a 16-byte uniform visible to both stages and a
// three-vertex full-screen triangle.
func DefaultLayout() Layout {
	return Layout{UniformSize: 16, Visibility: VisibilityBoth, VertexCount: 3}
}

func (l Layout) validate() error {
	if l.UniformSize == 0 || l.UniformSize%16 != 0 {
		return fmt.Errorf("pipeline: uniform size %d must be a positive multiple of 16", l.UniformSize)
	}
	if l.Visibility&VisibilityBoth == 0 {
		return fmt.Errorf("pipeline: uniform buffer visible to no stage")
	}
	if l.VertexCount == 0 {
		return fmt.Errorf("pipeline: vertex count is zero")
	}
	return nil
}

// bindingEntry describes the single uniform buffer binding.
func (l Layout) bindingEntry() gputypes.BindGroupLayoutEntry {
	entry := gputypes.BindGroupLayoutEntry{
		Binding: 0,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: l.UniformSize,
		},
	}
	if l.Visibility&VisibilityVertex != 0 {
		entry.Visibility |= gputypes.ShaderStageVertex
	}
	if l.Visibility&VisibilityFragment != 0 {
		entry.Visibility |= gputypes.ShaderStageFragment
	}
	return entry
}
