// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaderlab

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderlab/config"
	"github.com/gogpu/shaderlab/pipeline"
	"github.com/gogpu/shaderlab/reload"
	"github.com/gogpu/shaderlab/render"
	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/source"
	"github.com/gogpu/shaderlab/watch"
)

var (
	// ErrNilDevice is returned by New without a device or queue.
	ErrNilDevice = errors.New("shaderlab: device or queue is nil")

	// ErrNotDeviceTarget is returned when the configured compile target
	// is an export-only form that a device cannot load.
	ErrNotDeviceTarget = errors.New("shaderlab: compile target cannot be loaded by a device")
)

// Session wires a loader, compiler, pipeline builder and painter around a
// reload coordinator.
type Session struct {
	cfg      config.Config
	compiler *shader.Compiler
	builder  *pipeline.Builder
	frame    *render.Frame
	painter  *render.Painter
	watcher  *watch.Watcher
	coord    *reload.Coordinator
	closed   bool
}

// New creates a session on device and queue. The first pipeline is built
// by the first Update.
func New(device hal.Device, queue hal.Queue, cfg config.Config, opts ...Option) (*Session, error) {
	return newSession(device, queue, cfg, gputypes.TextureFormatUndefined, opts)
}

// NewFromProvider creates a session on the host's device. The host's
// surface format, when it reports one, overrides the configured format.
func NewFromProvider(provider render.DeviceHandle, cfg config.Config, opts ...Option) (*Session, error) {
	device, queue, err := render.HAL(provider)
	if err != nil {
		return nil, err
	}
	format := render.SurfaceFormat(provider, gputypes.TextureFormatUndefined)
	return newSession(device, queue, cfg, format, opts)
}

func newSession(device hal.Device, queue hal.Queue, cfg config.Config, format gputypes.TextureFormat, opts []Option) (*Session, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("shaderlab: invalid config: %w", err)
	}
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}

	target, err := cfg.Target()
	if err != nil {
		return nil, err
	}
	if !target.DeviceConsumable() {
		return nil, fmt.Errorf("%w: %s", ErrNotDeviceTarget, target)
	}
	compilerOpts, err := cfg.CompilerOptions()
	if err != nil {
		return nil, err
	}
	if format == gputypes.TextureFormatUndefined {
		if format, err = cfg.TextureFormat(); err != nil {
			return nil, err
		}
	}
	visibility, err := pipeline.ParseVisibility(cfg.Pipeline.Visibility)
	if err != nil {
		return nil, err
	}
	layout := pipeline.Layout{
		UniformSize: cfg.Pipeline.UniformSize,
		Visibility:  visibility,
		VertexCount: cfg.Pipeline.VertexCount,
	}

	s := &Session{cfg: cfg, compiler: shader.NewCompiler(compilerOpts...)}
	if s.builder, err = pipeline.NewBuilder(device, layout, format); err != nil {
		return nil, err
	}
	if s.frame, err = render.NewFrame(device, queue, s.builder); err != nil {
		s.release()
		return nil, err
	}

	loader := o.loader
	if loader == nil {
		loader = source.Select(cfg)
	}
	if !o.noWatch {
		if s.watcher, err = loader.Watch(); err != nil {
			s.release()
			return nil, fmt.Errorf("shaderlab: watch shaders: %w", err)
		}
	}

	coordOpts := []reload.Option{
		reload.WithPlaceholder(cfg.Shaders.Placeholder),
		reload.WithFragmentEntry(cfg.Shaders.FragmentEntry),
	}
	if s.watcher != nil {
		coordOpts = append(coordOpts, reload.WithEvents(s.watcher))
	}
	if o.body != nil {
		coordOpts = append(coordOpts, reload.WithBody(*o.body))
	}
	if o.onChange != nil {
		coordOpts = append(coordOpts, reload.WithOnStateChange(o.onChange))
	}
	if s.coord, err = reload.New(loader, s.compiler, s.builder, coordOpts...); err != nil {
		s.release()
		return nil, err
	}
	s.painter = render.NewPainter(s.frame, s.coord)

	Logger().Info("shaderlab: session ready",
		"target", target, "format", format, "embedded", cfg.Embedded(), "watching", s.watcher != nil)
	return s, nil
}

// Update polls for changes and rebuilds if needed. Call once per frame.
func (s *Session) Update() reload.State {
	if s.closed {
		return s.coord.State()
	}
	return s.coord.Poll()
}

// Edit replaces the body. The next Update rebuilds.
func (s *Session) Edit(body string) { s.coord.Edit(body) }

// Body returns the current body text.
func (s *Session) Body() string { return s.coord.Body() }

// Prepare writes the frame's uniforms. Call before the render pass.
func (s *Session) Prepare(u render.Uniforms) error { return s.painter.Prepare(u) }

// Paint draws the active pipeline into pass. It reports false while no
// pipeline has been built.
func (s *Session) Paint(pass render.DrawPass) bool {
	if s.closed {
		return false
	}
	return s.painter.Paint(pass)
}

// Status returns the reload status.
func (s *Session) Status() reload.Status { return s.coord.Status() }

// Diagnostic returns the last failure, nil unless the last attempt failed.
func (s *Session) Diagnostic() *shader.Diagnostic { return s.coord.Diagnostic() }

// Pipeline returns the active pipeline, nil before the first success.
func (s *Session) Pipeline() *pipeline.Handle { return s.coord.Pipeline() }

// Compiler returns the session's compiler.
func (s *Session) Compiler() *shader.Compiler { return s.compiler }

// Watching reports whether file changes trigger rebuilds.
func (s *Session) Watching() bool { return s.watcher != nil }

// Close releases every GPU resource and stops the watcher. It returns
// the watcher's close error, if any. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.coord != nil {
		s.coord.Close()
	}
	return s.release()
}

func (s *Session) release() error {
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}
	if s.frame != nil {
		s.frame.Destroy()
	}
	if s.builder != nil {
		s.builder.Destroy()
	}
	return err
}
