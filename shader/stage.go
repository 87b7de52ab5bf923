// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga/ir"
)

// Stage identifies the pipeline stage a shader source is compiled for.
type Stage uint8

const (
	// StageVertex is the per-vertex stage.
	StageVertex Stage = iota + 1

	// StageFragment is the per-fragment stage.
	StageFragment
)

// String returns the lower-case stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// ParseStage parses "vertex" / "vert" / "fragment" / "frag".
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertex", "vert", "vs":
		return StageVertex, nil
	case "fragment", "frag", "fs":
		return StageFragment, nil
	}
	return 0, fmt.Errorf("shader: unknown stage %q", s)
}

// irStage maps the stage onto naga's IR entry point stage.
func (s Stage) irStage() ir.ShaderStage {
	if s == StageVertex {
		return ir.StageVertex
	}
	return ir.StageFragment
}
