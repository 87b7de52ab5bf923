// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package reload decides when shaders are rebuilt and swaps the active
// pipeline.
//
// The Coordinator is polled once per frame. Edits and file events mark it
// dirty; the next Poll loads the vertex source and the fragment template,
// materializes the template with the current body, compiles both stages
// and builds a pipeline. On success the new pipeline replaces the active
// one. On failure the active pipeline stays and the diagnostic is kept
// until the next change.
//
//	c, err := reload.New(loader, compiler, builder, reload.WithEvents(w))
//	...
//	for each frame {
//		c.Poll()
//		painter.Paint(pass) // draws c.Pipeline()
//	}
package reload

import (
	"fmt"
	"time"

	"github.com/gogpu/shaderlab/internal/logx"
	"github.com/gogpu/shaderlab/pipeline"
	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/source"
	"github.com/gogpu/shaderlab/tmpl"
	"github.com/gogpu/shaderlab/watch"
)

// Builder builds a pipeline from a compiled stage pair.
// *pipeline.Builder implements it.
type Builder interface {
	Build(vertex, fragment *shader.Artifact) (*pipeline.Handle, error)
}

// EventSource yields pending change events without blocking.
// *watch.Watcher implements it.
type EventSource interface {
	Drain() []watch.Event
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithEvents makes file events from src mark the coordinator dirty.
// A nil src is ignored.
func WithEvents(src EventSource) Option {
	return func(c *Coordinator) {
		if src != nil {
			c.events = src
		}
	}
}

// WithBody sets the initial body instead of the loader's.
func WithBody(body string) Option {
	return func(c *Coordinator) {
		c.body = body
		c.bodySet = true
	}
}

// WithPlaceholder selects the template field that receives the body.
func WithPlaceholder(name string) Option {
	return func(c *Coordinator) { c.placeholder = name }
}

// WithFragmentEntry selects the fragment entry point.
func WithFragmentEntry(name string) Option {
	return func(c *Coordinator) { c.fragmentEntry = name }
}

// WithOnStateChange registers fn to run after every state transition.
// diag is non-nil when to is StateFailed.
func WithOnStateChange(fn func(from, to State, diag *shader.Diagnostic)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// Coordinator owns the active pipeline and the reload state machine.
//
// It is not safe for concurrent use; call it from the frame goroutine.
type Coordinator struct {
	loader   source.Loader
	compiler *shader.Compiler
	builder  Builder
	events   EventSource

	placeholder   string
	fragmentEntry string
	body          string
	bodySet       bool

	state  State
	diag   *shader.Diagnostic
	active *pipeline.Handle

	attempts uint64
	failures uint64
	drained  uint64

	onChange func(from, to State, diag *shader.Diagnostic)
}

// New creates a coordinator in StateDirty, so the first Poll builds.
// The initial body comes from the loader unless WithBody is given.
func New(loader source.Loader, compiler *shader.Compiler, builder Builder, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		loader:      loader,
		compiler:    compiler,
		builder:     builder,
		placeholder: tmpl.DefaultPlaceholder,
		state:       StateDirty,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.bodySet {
		body, err := loader.Body()
		if err != nil {
			return nil, fmt.Errorf("load initial body: %w", err)
		}
		c.body = body
	}
	return c, nil
}

// State returns the current state.
func (c *Coordinator) State() State { return c.state }

// Diagnostic returns the failure of the last attempt, nil unless Failed.
func (c *Coordinator) Diagnostic() *shader.Diagnostic { return c.diag }

// Pipeline returns the active pipeline, nil before the first success.
func (c *Coordinator) Pipeline() *pipeline.Handle { return c.active }

// Body returns the current body text.
func (c *Coordinator) Body() string { return c.body }

// Generation returns the active pipeline's generation, 0 if none.
func (c *Coordinator) Generation() uint64 {
	if c.active == nil {
		return 0
	}
	return c.active.Generation()
}

// Attempts returns the number of rebuilds started.
func (c *Coordinator) Attempts() uint64 { return c.attempts }

// Status returns a snapshot for display.
func (c *Coordinator) Status() Status {
	return Status{
		State:      c.state,
		Diagnostic: c.diag,
		Generation: c.Generation(),
		Attempts:   c.attempts,
		Failures:   c.failures,
		Events:     c.drained,
	}
}

// Edit replaces the body and marks the coordinator dirty.
func (c *Coordinator) Edit(body string) {
	c.body = body
	c.markDirty()
}

// Invalidate marks the coordinator dirty without changing the body.
func (c *Coordinator) Invalidate() { c.markDirty() }

func (c *Coordinator) markDirty() {
	if c.state == StateDirty {
		return
	}
	c.transition(StateDirty, nil)
}

// Poll drains pending file events and, if dirty, rebuilds. It returns the
// resulting state. Failures never escape: they become StateFailed.
func (c *Coordinator) Poll() State {
	if c.events != nil {
		if evs := c.events.Drain(); len(evs) > 0 {
			c.drained += uint64(len(evs))
			logx.Logger().Debug("reload: file change", "events", len(evs), "path", evs[0].Path)
			c.markDirty()
		}
	}
	if c.state != StateDirty {
		return c.state
	}

	c.transition(StateCompiling, nil)
	c.attempts++
	start := time.Now()

	h, err := c.rebuild()
	if err != nil {
		c.failures++
		d := asDiagnostic(err)
		if d.Kind == shader.KindBackend {
			logx.Logger().Warn("reload: backend failure", "err", d)
		} else {
			logx.Logger().Info("reload: shader rejected", "kind", d.Kind, "err", d)
		}
		c.transition(StateFailed, d)
		return c.state
	}

	old := c.active
	c.active = h
	if old != nil {
		old.Destroy()
	}
	logx.Logger().Info("reload: pipeline swapped",
		"generation", h.Generation(), "elapsed", time.Since(start))
	c.transition(StateClean, nil)
	return c.state
}

// rebuild compiles both stages and builds a pipeline. The vertex stage is
// compiled first; the fragment stage is always attempted so both are
// checked, and the vertex failure is reported when both fail.
func (c *Coordinator) rebuild() (h *pipeline.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h = nil
			err = shader.Errorf(shader.KindBackend, 0, "", "shader toolchain panic: %v", r)
		}
	}()

	vertex, verr := c.compileVertex()
	fragment, ferr := c.compileFragment()
	if verr != nil {
		return nil, verr
	}
	if ferr != nil {
		return nil, ferr
	}
	return c.builder.Build(vertex, fragment)
}

func (c *Coordinator) compileVertex() (*shader.Artifact, error) {
	src, err := c.loader.Vertex()
	if err != nil {
		return nil, err
	}
	return c.compiler.Compile(src)
}

func (c *Coordinator) compileFragment() (*shader.Artifact, error) {
	text, err := c.loader.FragmentTemplate()
	if err != nil {
		return nil, err
	}
	t, err := tmpl.Parse(c.loader.FragmentName(), text, tmpl.WithPlaceholder(c.placeholder))
	if err != nil {
		return nil, err
	}
	src, err := t.Source(c.body, c.fragmentEntry)
	if err != nil {
		return nil, err
	}
	return c.compiler.Compile(src)
}

func (c *Coordinator) transition(to State, diag *shader.Diagnostic) {
	from := c.state
	c.state = to
	c.diag = diag
	if c.onChange != nil {
		c.onChange(from, to, diag)
	}
}

// Close destroys the active pipeline. The coordinator must not be used
// afterwards.
func (c *Coordinator) Close() {
	if c.active != nil {
		c.active.Destroy()
		c.active = nil
	}
}

func asDiagnostic(err error) *shader.Diagnostic {
	if d, ok := shader.AsDiagnostic(err); ok {
		return d
	}
	return shader.NewDiagnostic(shader.KindBackend, 0, "", err)
}
