// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tmpl materializes shader templates.
//
// A shader template is WGSL text with text/template actions. One action,
// the placeholder ({{.content}} by default), receives the user-edited body;
// any other field actions are filled from optional parameters. The
// placeholder must appear at least once outside if, with and range blocks.
//
//	t, err := tmpl.Parse("fragment.wgsl", text)
//	if err != nil {
//		return err
//	}
//	src, err := t.Materialize(body)
//
// Every failure is a *shader.Diagnostic of kind shader.KindTemplate.
package tmpl

import (
	"bytes"
	"text/template"
	"text/template/parse"

	"github.com/gogpu/shaderlab/shader"
)

// DefaultPlaceholder is the field name replaced by the edited body.
const DefaultPlaceholder = "content"

// Option configures Parse.
type Option func(*config)

type config struct {
	placeholder string
	params      map[string]string
}

// WithPlaceholder selects the field name that receives the body.
func WithPlaceholder(name string) Option {
	return func(c *config) {
		if name != "" {
			c.placeholder = name
		}
	}
}

// WithParams supplies values for template fields other than the placeholder.
func WithParams(params map[string]string) Option {
	return func(c *config) { c.params = params }
}

// Template is a parsed shader template. It is immutable and safe for
// concurrent use.
type Template struct {
	name        string
	placeholder string
	params      map[string]string
	t           *template.Template
}

// Parse parses text and checks that it references the placeholder
// unconditionally.
func Parse(name, text string, opts ...Option) (*Template, error) {
	cfg := config{placeholder: DefaultPlaceholder}
	for _, opt := range opts {
		opt(&cfg)
	}

	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, shader.NewDiagnostic(shader.KindTemplate, shader.StageFragment, name, err)
	}
	if t.Tree == nil || !references(t.Tree.Root, cfg.placeholder) {
		return nil, shader.Errorf(shader.KindTemplate, shader.StageFragment, name,
			"placeholder {{.%s}} not found in template", cfg.placeholder)
	}

	params := make(map[string]string, len(cfg.params)+1)
	for k, v := range cfg.params {
		params[k] = v
	}
	return &Template{name: name, placeholder: cfg.placeholder, params: params, t: t}, nil
}

// Name returns the template name used in diagnostics.
func (t *Template) Name() string { return t.name }

// Placeholder returns the field name that receives the body.
func (t *Template) Placeholder() string { return t.placeholder }

// Materialize substitutes value for the placeholder.
// The same template and value always produce the same output.
func (t *Template) Materialize(value string) (string, error) {
	data := make(map[string]string, len(t.params)+1)
	for k, v := range t.params {
		data[k] = v
	}
	data[t.placeholder] = value

	var buf bytes.Buffer
	if err := t.t.Execute(&buf, data); err != nil {
		return "", shader.NewDiagnostic(shader.KindTemplate, shader.StageFragment, t.name, err)
	}
	return buf.String(), nil
}

// Source materializes value and wraps the result as a fragment Source.
func (t *Template) Source(value, entryPoint string) (shader.Source, error) {
	text, err := t.Materialize(value)
	if err != nil {
		return shader.Source{}, err
	}
	params := make(map[string]string, len(t.params)+1)
	for k, v := range t.params {
		params[k] = v
	}
	params[t.placeholder] = value
	return shader.Source{
		Stage:      shader.StageFragment,
		Name:       t.name,
		Text:       text,
		EntryPoint: entryPoint,
		Params:     params,
	}, nil
}

// Materialize parses text with the default placeholder and substitutes
// value in one step.
func Materialize(text, value string) (string, error) {
	t, err := Parse("template", text)
	if err != nil {
		return "", err
	}
	return t.Materialize(value)
}

// references reports whether root holds an unconditional {{.name}}
// action. Uses inside if, with or range blocks do not count, since the
// template could render without them.
func references(root *parse.ListNode, name string) bool {
	if root == nil {
		return false
	}
	for _, n := range root.Nodes {
		action, ok := n.(*parse.ActionNode)
		if !ok || action.Pipe == nil {
			continue
		}
		for _, cmd := range action.Pipe.Cmds {
			for _, arg := range cmd.Args {
				if f, ok := arg.(*parse.FieldNode); ok && len(f.Ident) == 1 && f.Ident[0] == name {
					return true
				}
			}
		}
	}
	return false
}
