// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"

	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
)

// translate lowers a validated module to one of the text export targets.
func translate(module *ir.Module, target Target, stage Stage, entry string) (string, error) {
	switch target {
	case TargetGLSL:
		opts := glsl.DefaultOptions()
		opts.EntryPoint = entry
		out, _, err := glsl.Compile(module, opts)
		return out, err
	case TargetMSL:
		out, _, err := msl.CompileWithPipeline(module, msl.DefaultOptions(), msl.PipelineOptions{
			EntryPoint: &msl.EntryPointSelector{Stage: stage.irStage(), Name: entry},
		})
		return out, err
	case TargetHLSL:
		out, _, err := hlsl.Compile(module, hlsl.DefaultOptions())
		return out, err
	}
	return "", fmt.Errorf("shader: %s is not an export target", target)
}
