// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/gogpu/shaderlab/internal/logx"
	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/watch"
)

// FileLoader reads shaders from disk on every call, so each reload sees
// the current file contents.
type FileLoader struct {
	VertexPath   string
	FragmentPath string

	// BodyPath is optional; empty falls back to the embedded default body.
	BodyPath string

	VertexEntry string

	// WatchEnabled makes Watch register the vertex and fragment files.
	WatchEnabled bool

	// QueueCapacity bounds the watcher queue; zero uses the default.
	QueueCapacity int
}

// Vertex implements Loader.
func (l *FileLoader) Vertex() (shader.Source, error) {
	text, err := os.ReadFile(l.VertexPath)
	if err != nil {
		return shader.Source{}, shader.NewDiagnostic(shader.KindIO, shader.StageVertex, l.VertexPath,
			fmt.Errorf("load shader %q: %w", l.VertexPath, err))
	}
	return shader.Source{
		Stage:      shader.StageVertex,
		Name:       l.VertexPath,
		Text:       string(text),
		EntryPoint: l.VertexEntry,
	}, nil
}

// FragmentTemplate implements Loader.
func (l *FileLoader) FragmentTemplate() (string, error) {
	text, err := os.ReadFile(l.FragmentPath)
	if err != nil {
		return "", shader.NewDiagnostic(shader.KindTemplate, shader.StageFragment, l.FragmentPath,
			fmt.Errorf("load template %q: %w", l.FragmentPath, err))
	}
	return string(text), nil
}

// FragmentName implements Loader.
func (l *FileLoader) FragmentName() string { return l.FragmentPath }

// Body implements Loader.
func (l *FileLoader) Body() (string, error) {
	if l.BodyPath == "" {
		text, err := fs.ReadFile(Embedded(), DefaultBody)
		if err != nil {
			return "", shader.NewDiagnostic(shader.KindIO, shader.StageFragment, DefaultBody, err)
		}
		return string(text), nil
	}
	text, err := os.ReadFile(l.BodyPath)
	if err != nil {
		return "", shader.NewDiagnostic(shader.KindIO, shader.StageFragment, l.BodyPath,
			fmt.Errorf("load body %q: %w", l.BodyPath, err))
	}
	return string(text), nil
}

// Watch implements Loader. It returns nil when watching is disabled.
// A file that cannot be registered fails the call.
func (l *FileLoader) Watch() (*watch.Watcher, error) {
	if !l.WatchEnabled {
		return nil, nil
	}
	var opts []watch.Option
	if l.QueueCapacity > 0 {
		opts = append(opts, watch.WithCapacity(l.QueueCapacity))
	}
	w, err := watch.New(l.VertexPath, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Add(l.FragmentPath); err != nil {
		_ = w.Close()
		return nil, err
	}
	logx.Logger().Info("source: watching shader files", "vertex", l.VertexPath, "fragment", l.FragmentPath)
	return w, nil
}
