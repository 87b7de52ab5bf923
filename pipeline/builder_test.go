// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderlab/internal/gpudev"
	"github.com/gogpu/shaderlab/shader"
)

const vertexWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    var pos = array<vec2<f32>, 3>(
        vec2<f32>(-1.0, -1.0),
        vec2<f32>(3.0, -1.0),
        vec2<f32>(-1.0, 3.0)
    );
    return vec4<f32>(pos[idx], 0.0, 1.0);
}
`

const fragmentWGSL = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0, 1.0, 0.0, 1.0);
}
`

func openDevice(t *testing.T) hal.Device {
	t.Helper()
	d, err := gpudev.OpenHeadless()
	if err != nil {
		t.Fatalf("OpenHeadless: %v", err)
	}
	t.Cleanup(d.Close)
	return d.Device
}

func compilePair(t *testing.T, target shader.Target) (*shader.Artifact, *shader.Artifact) {
	t.Helper()
	c := shader.NewCompiler(shader.WithTarget(target))
	vs, err := c.Compile(shader.Source{Stage: shader.StageVertex, Name: "vs", Text: vertexWGSL})
	if err != nil {
		t.Fatalf("compile vertex: %v", err)
	}
	fs, err := c.Compile(shader.Source{Stage: shader.StageFragment, Name: "fs", Text: fragmentWGSL})
	if err != nil {
		t.Fatalf("compile fragment: %v", err)
	}
	return vs, fs
}

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(openDevice(t), DefaultLayout(), gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	t.Cleanup(b.Destroy)
	return b
}

func TestNewBuilder(t *testing.T) {
	b := newBuilder(t)
	if b.UniformLayout() == nil {
		t.Error("expected non-nil uniform layout")
	}
	if b.pipeLayout == nil {
		t.Error("expected non-nil pipeline layout")
	}
	if b.Layout() != DefaultLayout() {
		t.Errorf("Layout = %+v", b.Layout())
	}
}

func TestNewBuilderErrors(t *testing.T) {
	if _, err := NewBuilder(nil, DefaultLayout(), gputypes.TextureFormatBGRA8Unorm); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device err = %v", err)
	}
	dev := openDevice(t)
	bad := []Layout{
		{UniformSize: 0, Visibility: VisibilityBoth, VertexCount: 3},
		{UniformSize: 20, Visibility: VisibilityBoth, VertexCount: 3},
		{UniformSize: 16, Visibility: 0, VertexCount: 3},
		{UniformSize: 16, Visibility: VisibilityFragment, VertexCount: 0},
	}
	for _, l := range bad {
		if _, err := NewBuilder(dev, l, gputypes.TextureFormatBGRA8Unorm); err == nil {
			t.Errorf("NewBuilder(%+v) should fail", l)
		}
	}
}

func TestBuild(t *testing.T) {
	for _, target := range []shader.Target{shader.TargetSPIRV, shader.TargetWGSL} {
		t.Run(target.String(), func(t *testing.T) {
			b := newBuilder(t)
			vs, fs := compilePair(t, target)

			h, err := b.Build(vs, fs)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if h.Pipeline() == nil {
				t.Fatal("expected non-nil pipeline")
			}
			if h.Generation() != 1 {
				t.Errorf("Generation = %d, want 1", h.Generation())
			}
			if h.VertexCount() != 3 {
				t.Errorf("VertexCount = %d, want 3", h.VertexCount())
			}
			if h.Target() != target {
				t.Errorf("Target = %v", h.Target())
			}

			h.Destroy()
			if !h.Destroyed() {
				t.Error("handle not destroyed")
			}
			h.Destroy()
		})
	}
}

func TestBuildDistinctHandles(t *testing.T) {
	b := newBuilder(t)
	vs, fs := compilePair(t, shader.TargetSPIRV)

	h1, err := b.Build(vs, fs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer h1.Destroy()
	h2, err := b.Build(vs, fs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer h2.Destroy()

	if h1 == h2 {
		t.Error("Build returned the same handle twice")
	}
	if h2.Generation() <= h1.Generation() {
		t.Errorf("generations %d, %d not increasing", h1.Generation(), h2.Generation())
	}
}

func TestBuildRejects(t *testing.T) {
	b := newBuilder(t)
	spvV, spvF := compilePair(t, shader.TargetSPIRV)
	wgslV, wgslF := compilePair(t, shader.TargetWGSL)
	glsl := &shader.Artifact{Stage: shader.StageFragment, Target: shader.TargetGLSL, Text: "void main(){}"}
	glslV := &shader.Artifact{Stage: shader.StageVertex, Target: shader.TargetGLSL, Text: "void main(){}"}

	tests := []struct {
		name   string
		vs, fs *shader.Artifact
		is     error
	}{
		{"mismatch", spvV, wgslF, ErrTargetMismatch},
		{"mismatch reversed", wgslV, spvF, ErrTargetMismatch},
		{"export target", glslV, glsl, ErrNotDeviceTarget},
		{"swapped stages", spvF, spvV, nil},
		{"nil", nil, spvF, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := b.Build(tt.vs, tt.fs)
			if err == nil {
				h.Destroy()
				t.Fatal("expected error")
			}
			if !shader.IsKind(err, shader.KindBackend) {
				t.Errorf("err = %v, want backend diagnostic", err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestBuildAfterDestroy(t *testing.T) {
	b := newBuilder(t)
	vs, fs := compilePair(t, shader.TargetSPIRV)
	b.Destroy()
	if _, err := b.Build(vs, fs); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
	b.Destroy()
}

func TestParseVisibility(t *testing.T) {
	for _, v := range []Visibility{VisibilityVertex, VisibilityFragment, VisibilityBoth} {
		got, err := ParseVisibility(v.String())
		if err != nil || got != v {
			t.Errorf("ParseVisibility(%q) = %v, %v", v.String(), got, err)
		}
	}
	if _, err := ParseVisibility("compute"); err == nil {
		t.Error("ParseVisibility(compute) should fail")
	}
}

func TestBindingEntry(t *testing.T) {
	l := Layout{UniformSize: 32, Visibility: VisibilityFragment, VertexCount: 3}
	e := l.bindingEntry()
	if e.Binding != 0 {
		t.Errorf("Binding = %d", e.Binding)
	}
	if e.Buffer == nil || e.Buffer.Type != gputypes.BufferBindingTypeUniform {
		t.Fatalf("Buffer = %+v", e.Buffer)
	}
	if e.Buffer.MinBindingSize != 32 {
		t.Errorf("MinBindingSize = %d", e.Buffer.MinBindingSize)
	}
	if e.Visibility&gputypes.ShaderStageFragment == 0 || e.Visibility&gputypes.ShaderStageVertex != 0 {
		t.Errorf("Visibility = %v", e.Visibility)
	}
}
