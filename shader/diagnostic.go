// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a reload attempt produced a Diagnostic instead of
// an Artifact.
type Kind uint8

const (
	// KindParse is malformed shading-language syntax.
	KindParse Kind = iota + 1

	// KindValidation is well-formed source that is semantically invalid:
	// unresolved identifiers, type errors, missing entry points.
	KindValidation

	// KindTemplate is a missing placeholder or an unreadable template.
	// It points at a packaging defect rather than a user typo.
	KindTemplate

	// KindIO is an unreadable shader source.
	KindIO

	// KindBackend is a toolchain failure during emission or a device-level
	// failure while building the pipeline. It does not stem from user text.
	KindBackend
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindValidation:
		return "validation error"
	case KindTemplate:
		return "template error"
	case KindIO:
		return "io error"
	case KindBackend:
		return "backend error"
	default:
		return "error"
	}
}

// Span is a 1-based line/column location in shader source.
// The zero Span means "no location".
type Span struct {
	Line   int
	Column int
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool { return s.Line == 0 }

func (s Span) String() string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Diagnostic describes a failed reload step.
//
// The text returned by Error and Text is display-only: its exact formatting
// follows the underlying toolchain and must not be parsed for control flow.
// Use Kind and errors.Is/As instead.
type Diagnostic struct {
	Kind  Kind
	Stage Stage

	// Name is the source name the message refers to (file or embedded name).
	Name string

	// Message is the toolchain's message without location prefix.
	Message string

	// Span is the location of the problem, zero if unknown.
	Span Span

	// Context is the offending source line(s) with a caret, if available.
	Context string

	// Err is the underlying error, if any.
	Err error
}

// NewDiagnostic wraps err into a Diagnostic of the given kind.
// If err already is a Diagnostic it is returned with Kind and Stage kept.
func NewDiagnostic(kind Kind, stage Stage, name string, err error) *Diagnostic {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Diagnostic{Kind: kind, Stage: stage, Name: name, Message: msg, Err: err}
}

// Errorf creates a Diagnostic with a formatted message.
func Errorf(kind Kind, stage Stage, name, format string, args ...any) *Diagnostic {
	err := fmt.Errorf(format, args...)
	return &Diagnostic{Kind: kind, Stage: stage, Name: name, Message: err.Error(), Err: errors.Unwrap(err)}
}

// Error implements the error interface.
//
// Format: "<stage> <name>:<line>:<col>: <kind>: <message>".
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	if d.Stage != 0 {
		sb.WriteString(d.Stage.String())
		sb.WriteByte(' ')
	}
	if d.Name != "" {
		sb.WriteString(d.Name)
		if !d.Span.IsZero() {
			sb.WriteByte(':')
			sb.WriteString(d.Span.String())
		}
		sb.WriteString(": ")
	} else if !d.Span.IsZero() {
		sb.WriteString(d.Span.String())
		sb.WriteString(": ")
	}
	sb.WriteString(d.Kind.String())
	if d.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Message)
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (d *Diagnostic) Unwrap() error { return d.Err }

// Text returns the full display text: the error line followed by
// the source context when one is available.
func (d *Diagnostic) Text() string {
	if d.Context == "" {
		return d.Error()
	}
	return d.Error() + "\n" + strings.TrimRight(d.Context, "\n")
}

// AsDiagnostic extracts a Diagnostic from err's chain.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// IsKind reports whether err carries a Diagnostic of the given kind.
func IsKind(err error, kind Kind) bool {
	d, ok := AsDiagnostic(err)
	return ok && d.Kind == kind
}

// sourceContext renders the line at span with a caret under the column.
// Returns "" when the span is outside the source.
func sourceContext(source string, span Span) string {
	if source == "" || span.IsZero() {
		return ""
	}
	lines := strings.Split(source, "\n")
	if span.Line < 1 || span.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[span.Line-1], "\r")
	col := span.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", span.Line, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}
