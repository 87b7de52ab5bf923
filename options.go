// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaderlab

import (
	"github.com/gogpu/shaderlab/reload"
	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/source"
)

// Option configures a Session during creation.
//
// Example:
//
//	// Embedded shaders, defaults from config.Default()
//	s, err := shaderlab.New(device, queue, config.Default())
//
//	// Custom loader and a state-change hook
//	s, err := shaderlab.New(device, queue, cfg,
//		shaderlab.WithLoader(loader),
//		shaderlab.WithOnStateChange(func(from, to reload.State, d *shader.Diagnostic) { ... }))
type Option func(*sessionOptions)

// sessionOptions holds optional configuration for Session creation.
type sessionOptions struct {
	loader   source.Loader
	body     *string
	onChange func(from, to reload.State, diag *shader.Diagnostic)
	noWatch  bool
}

// WithLoader replaces the loader chosen from the configuration.
func WithLoader(l source.Loader) Option {
	return func(o *sessionOptions) {
		o.loader = l
	}
}

// WithBody sets the initial body instead of loading it.
func WithBody(body string) Option {
	return func(o *sessionOptions) {
		o.body = &body
	}
}

// WithOnStateChange registers a hook called after every reload state
// transition.
func WithOnStateChange(fn func(from, to reload.State, diag *shader.Diagnostic)) Option {
	return func(o *sessionOptions) {
		o.onChange = fn
	}
}

// WithoutWatcher disables file watching even when the loader supports it.
func WithoutWatcher() Option {
	return func(o *sessionOptions) {
		o.noWatch = true
	}
}
