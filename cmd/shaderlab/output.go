// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/gogpu/shaderlab/reload"
	"github.com/gogpu/shaderlab/shader"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	okColor      = color.New(color.FgGreen, color.Bold)
	locColor     = color.New(color.Bold)
	contextColor = color.New(color.FgCyan)
)

// printError writes err, expanding diagnostics with their source context.
func printError(w io.Writer, err error) {
	if d, ok := shader.AsDiagnostic(err); ok {
		printDiagnostic(w, d)
		return
	}
	fmt.Fprintf(w, "%s %v\n", errorColor.Sprint("error:"), err)
}

// printDiagnostic writes d as "location: kind: message" plus the caret
// context lines.
func printDiagnostic(w io.Writer, d *shader.Diagnostic) {
	var loc strings.Builder
	if d.Name != "" {
		loc.WriteString(d.Name)
	}
	if !d.Span.IsZero() {
		if loc.Len() > 0 {
			loc.WriteByte(':')
		}
		loc.WriteString(d.Span.String())
	}
	if loc.Len() > 0 {
		fmt.Fprintf(w, "%s: ", locColor.Sprint(loc.String()))
	}
	label := errorColor
	if d.Kind == shader.KindBackend {
		label = warnColor
	}
	fmt.Fprintf(w, "%s %s\n", label.Sprintf("%s:", d.Kind), d.Message)
	if d.Context != "" {
		for _, line := range strings.Split(strings.TrimRight(d.Context, "\n"), "\n") {
			fmt.Fprintln(w, contextColor.Sprint(line))
		}
	}
}

// printState writes one line per reload transition.
func printState(w io.Writer, to reload.State, generation uint64, d *shader.Diagnostic) {
	switch to {
	case reload.StateClean:
		fmt.Fprintf(w, "%s pipeline generation %d\n", okColor.Sprint("ok"), generation)
	case reload.StateFailed:
		fmt.Fprintf(w, "%s keeping generation %d\n", errorColor.Sprint("failed"), generation)
		if d != nil {
			printDiagnostic(w, d)
		}
	default:
		fmt.Fprintln(w, to)
	}
}
