// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package source loads the vertex shader, the fragment template and the
// initial body text.
//
// Two loaders exist. StaticLoader serves shaders embedded in the binary
// and never produces file events; FileLoader reads from disk and can
// watch the files it reads. Select picks one once at startup.
package source

import (
	"embed"
	"io/fs"
	"runtime"

	"github.com/gogpu/shaderlab/config"
	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/watch"
)

//go:embed shaders/*.wgsl
var embedded embed.FS

// Names of the embedded shaders under Embedded().
const (
	DefaultVertex   = "fullscreen.wgsl"
	DefaultFragment = "fragment.wgsl"
	DefaultBody     = "body.wgsl"
)

// Embedded returns the shaders compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "shaders")
	if err != nil {
		panic(err) // the directory is part of the binary
	}
	return sub
}

// Loader supplies shader sources to the reload coordinator.
type Loader interface {
	// Vertex returns the vertex shader source.
	Vertex() (shader.Source, error)

	// FragmentTemplate returns the fragment template text.
	FragmentTemplate() (string, error)

	// FragmentName names the fragment template in diagnostics.
	FragmentName() string

	// Body returns the initial body text.
	Body() (string, error)

	// Watch returns a watcher over the loader's files, or nil when the
	// sources cannot change on disk.
	Watch() (*watch.Watcher, error)
}

// StaticLoader reads shaders from a file system fixed at build time.
type StaticLoader struct {
	FS fs.FS

	// Paths inside FS.
	VertexPath   string
	FragmentPath string
	BodyPath     string

	VertexEntry string
}

// NewStaticLoader returns a loader over the embedded default shaders.
func NewStaticLoader() *StaticLoader {
	return &StaticLoader{
		FS:           Embedded(),
		VertexPath:   DefaultVertex,
		FragmentPath: DefaultFragment,
		BodyPath:     DefaultBody,
		VertexEntry:  "vs_main",
	}
}

// Vertex implements Loader.
func (l *StaticLoader) Vertex() (shader.Source, error) {
	text, err := fs.ReadFile(l.FS, l.VertexPath)
	if err != nil {
		return shader.Source{}, shader.NewDiagnostic(shader.KindIO, shader.StageVertex, l.VertexPath, err)
	}
	return shader.Source{
		Stage:      shader.StageVertex,
		Name:       l.VertexPath,
		Text:       string(text),
		EntryPoint: l.VertexEntry,
	}, nil
}

// FragmentTemplate implements Loader. An unreadable template is a
// template error.
func (l *StaticLoader) FragmentTemplate() (string, error) {
	text, err := fs.ReadFile(l.FS, l.FragmentPath)
	if err != nil {
		return "", shader.NewDiagnostic(shader.KindTemplate, shader.StageFragment, l.FragmentPath, err)
	}
	return string(text), nil
}

// FragmentName implements Loader.
func (l *StaticLoader) FragmentName() string { return l.FragmentPath }

// Body implements Loader.
func (l *StaticLoader) Body() (string, error) {
	text, err := fs.ReadFile(l.FS, l.BodyPath)
	if err != nil {
		return "", shader.NewDiagnostic(shader.KindIO, shader.StageFragment, l.BodyPath, err)
	}
	return string(text), nil
}

// Watch implements Loader. Embedded shaders never change.
func (l *StaticLoader) Watch() (*watch.Watcher, error) { return nil, nil }

// Select returns the loader for cfg: embedded shaders when no shader
// directory is configured or the platform has no file system.
func Select(cfg config.Config) Loader {
	if cfg.Embedded() || runtime.GOOS == "js" || runtime.GOOS == "wasip1" {
		l := NewStaticLoader()
		if cfg.Shaders.VertexEntry != "" {
			l.VertexEntry = cfg.Shaders.VertexEntry
		}
		return l
	}
	return &FileLoader{
		VertexPath:    cfg.VertexPath(),
		FragmentPath:  cfg.FragmentPath(),
		BodyPath:      cfg.BodyPath(),
		VertexEntry:   cfg.Shaders.VertexEntry,
		WatchEnabled:  cfg.Shaders.Watch,
		QueueCapacity: cfg.Shaders.QueueCapacity,
	}
}
