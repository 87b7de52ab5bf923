// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaderlab

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderlab/config"
	"github.com/gogpu/shaderlab/internal/gpudev"
	"github.com/gogpu/shaderlab/reload"
	"github.com/gogpu/shaderlab/render"
	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/source"
)

type recordingPass struct {
	pipelines int
	draws     []uint32
}

func (p *recordingPass) SetPipeline(hal.RenderPipeline) { p.pipelines++ }

func (p *recordingPass) SetBindGroup(uint32, hal.BindGroup, []uint32) {}

func (p *recordingPass) Draw(vertexCount, _, _, _ uint32) {
	p.draws = append(p.draws, vertexCount)
}

type providerHandle struct {
	render.NullDeviceHandle
	dev *gpudev.Device
}

func (h providerHandle) HalDevice() any { return h.dev.Device }
func (h providerHandle) HalQueue() any  { return h.dev.Queue }
func (h providerHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

func openDevice(t *testing.T) *gpudev.Device {
	t.Helper()
	dev, err := gpudev.OpenHeadless()
	if err != nil {
		t.Fatalf("OpenHeadless: %v", err)
	}
	t.Cleanup(dev.Close)
	return dev
}

func newSessionT(t *testing.T, cfg config.Config, opts ...Option) *Session {
	t.Helper()
	dev := openDevice(t)
	s, err := New(dev.Device, dev.Queue, cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewErrors(t *testing.T) {
	dev := openDevice(t)

	if _, err := New(nil, dev.Queue, config.Default()); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device: err = %v", err)
	}

	bad := config.Default()
	bad.Shaders.QueueCapacity = 0
	if _, err := New(dev.Device, dev.Queue, bad); err == nil {
		t.Error("invalid config accepted")
	}

	export := config.Default()
	export.Compiler.Target = "glsl"
	if _, err := New(dev.Device, dev.Queue, export); !errors.Is(err, ErrNotDeviceTarget) {
		t.Errorf("export target: err = %v, want ErrNotDeviceTarget", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newSessionT(t, config.Default())
	if s.Watching() {
		t.Error("embedded session should not watch")
	}

	pass := &recordingPass{}
	if s.Paint(pass) {
		t.Error("Paint before first Update drew something")
	}
	if got := s.Update(); got != reload.StateClean {
		t.Fatalf("Update = %v (%v)", got, s.Diagnostic())
	}
	if err := s.Prepare(render.Uniforms{Resolution: [2]float32{640, 480}, Time: 1}); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !s.Paint(pass) {
		t.Fatal("Paint did not draw")
	}
	if len(pass.draws) != 1 || pass.draws[0] != 3 {
		t.Errorf("draws = %v, want [3]", pass.draws)
	}

	good := s.Pipeline()
	s.Edit("    return vec4<f32>(1.0,;\n")
	if got := s.Update(); got != reload.StateFailed {
		t.Fatalf("Update = %v, want failed", got)
	}
	if !shader.IsKind(s.Diagnostic(), shader.KindParse) {
		t.Errorf("Diagnostic = %v, want parse error", s.Diagnostic())
	}
	if s.Pipeline() != good || !s.Paint(pass) {
		t.Error("failed edit interrupted drawing")
	}

	s.Edit("    return vec4<f32>(params.param, 0.0, 0.0, 1.0);\n")
	if got := s.Update(); got != reload.StateClean {
		t.Fatalf("Update = %v (%v)", got, s.Diagnostic())
	}
	if s.Pipeline() == good {
		t.Error("pipeline not swapped")
	}
	if st := s.Status(); st.Attempts != 3 || st.Failures != 1 {
		t.Errorf("Status = %+v", st)
	}
}

func TestSessionOptions(t *testing.T) {
	var transitions int
	body := "    return vec4<f32>(0.5, 0.5, 0.5, 1.0);\n"
	s := newSessionT(t, config.Default(),
		WithLoader(source.NewStaticLoader()),
		WithBody(body),
		WithoutWatcher(),
		WithOnStateChange(func(_, _ reload.State, _ *shader.Diagnostic) { transitions++ }))
	if s.Body() != body {
		t.Errorf("Body = %q", s.Body())
	}
	s.Update()
	if transitions != 2 {
		t.Errorf("transitions = %d, want 2", transitions)
	}
}

func TestSessionWGSL(t *testing.T) {
	cfg := config.Default()
	cfg.Compiler.Target = "wgsl"
	s := newSessionT(t, cfg)
	if got := s.Update(); got != reload.StateClean {
		t.Fatalf("Update = %v (%v)", got, s.Diagnostic())
	}
	if s.Pipeline().Target() != shader.TargetWGSL {
		t.Errorf("Target = %v", s.Pipeline().Target())
	}
}

func TestNewFromProvider(t *testing.T) {
	dev := openDevice(t)
	s, err := NewFromProvider(providerHandle{dev: dev}, config.Default())
	if err != nil {
		t.Fatalf("NewFromProvider: %v", err)
	}
	defer s.Close()
	if s.builder.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want the provider's surface format", s.builder.Format())
	}

	if _, err := NewFromProvider(render.NullDeviceHandle{}, config.Default()); !errors.Is(err, render.ErrNoHAL) {
		t.Errorf("null provider: err = %v", err)
	}
}

func TestSessionWatchesFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{source.DefaultVertex, source.DefaultFragment} {
		data, err := fs.ReadFile(source.Embedded(), name)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.Shaders.Dir = dir

	s := newSessionT(t, cfg)
	if !s.Watching() {
		t.Fatal("file session should watch")
	}
	if got := s.Update(); got != reload.StateClean {
		t.Fatalf("Update = %v (%v)", got, s.Diagnostic())
	}

	// Drop the placeholder; the next rebuild must fail.
	frag := filepath.Join(dir, source.DefaultFragment)
	if err := os.WriteFile(frag, []byte("@fragment\nfn fs_main() -> @location(0) vec4<f32> {\n    return vec4<f32>(1.0);\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.Status().Attempts < 2 {
		if time.Now().After(deadline) {
			t.Fatal("no rebuild after file change")
		}
		time.Sleep(10 * time.Millisecond)
		s.Update()
	}
	if !shader.IsKind(s.Diagnostic(), shader.KindTemplate) {
		t.Errorf("Diagnostic = %v, want template error", s.Diagnostic())
	}
	if s.Pipeline() == nil {
		t.Error("failed reload dropped the pipeline")
	}
}

func TestSessionClose(t *testing.T) {
	dev := openDevice(t)
	s, err := New(dev.Device, dev.Queue, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	s.Update()
	h := s.Pipeline()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !h.Destroyed() {
		t.Error("pipeline not destroyed")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if s.Paint(&recordingPass{}) {
		t.Error("Paint after Close drew")
	}
}
