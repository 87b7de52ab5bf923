// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderlab/config"
	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/source"
	"github.com/gogpu/shaderlab/tmpl"
)

var (
	compileBody        string
	compileStage       string
	compileTarget      string
	compileOutput      string
	compileEntry       string
	compilePlaceholder string
	compileRaw         bool
)

func init() {
	compileCmd.Flags().StringVar(&compileBody, "body", "", "file holding the body substituted into the template (default: built-in body)")
	compileCmd.Flags().StringVar(&compileStage, "stage", "fragment", "shader stage (vertex|fragment)")
	compileCmd.Flags().StringVar(&compileTarget, "target", "", "output form (spirv|wgsl|glsl|msl|hlsl); default from config")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().StringVar(&compileEntry, "entry", "", "entry point name (default: the stage's first)")
	compileCmd.Flags().StringVar(&compilePlaceholder, "placeholder", "", "template field receiving the body; default from config")
	compileCmd.Flags().BoolVar(&compileRaw, "raw", false, "compile the file as plain WGSL without template substitution")
}

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Materialize a fragment template and compile it",
	Long: `Compile substitutes the body into the fragment template and compiles the
result. Without a file the built-in template (or, for --stage vertex, the
built-in vertex shader) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		stage, err := shader.ParseStage(compileStage)
		if err != nil {
			return err
		}
		opts, err := cfg.CompilerOptions()
		if err != nil {
			return err
		}
		if compileTarget != "" {
			target, err := shader.ParseTarget(compileTarget)
			if err != nil {
				return err
			}
			opts = append(opts, shader.WithTarget(target))
		}

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		src, err := compileSource(cfg, stage, path)
		if err != nil {
			return err
		}

		art, err := shader.NewCompiler(opts...).Compile(src)
		if err != nil {
			return err
		}
		if err := writeArtifact(art, compileOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s -> %s (%d bytes)\n",
			okColor.Sprint("compiled"), art.Stage, art.EntryPoint, art.Target, art.Size())
		return nil
	},
}

// compileSource builds the source to compile from path or the built-in
// shaders.
func compileSource(cfg config.Config, stage shader.Stage, path string) (shader.Source, error) {
	if stage == shader.StageVertex || compileRaw {
		if compileRaw && stage != shader.StageVertex && path == "" {
			return shader.Source{}, errors.New("--raw needs a file")
		}
		name, text, err := readShader(path, source.DefaultVertex)
		if err != nil {
			return shader.Source{}, err
		}
		return shader.Source{Stage: stage, Name: name, Text: text, EntryPoint: compileEntry}, nil
	}

	name, text, err := readShader(path, source.DefaultFragment)
	if err != nil {
		return shader.Source{}, err
	}
	_, body, err := readShader(compileBody, source.DefaultBody)
	if err != nil {
		return shader.Source{}, err
	}
	placeholder := compilePlaceholder
	if placeholder == "" {
		placeholder = cfg.Shaders.Placeholder
	}
	t, err := tmpl.Parse(name, text, tmpl.WithPlaceholder(placeholder))
	if err != nil {
		return shader.Source{}, err
	}
	entry := compileEntry
	if entry == "" {
		entry = cfg.Shaders.FragmentEntry
	}
	return t.Source(body, entry)
}

// readShader reads path, or the embedded file fallback when path is empty.
func readShader(path, fallback string) (name, text string, err error) {
	if path == "" {
		data, err := fs.ReadFile(source.Embedded(), fallback)
		if err != nil {
			return "", "", err
		}
		return fallback, string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read shader: %w", err)
	}
	return path, string(data), nil
}

func writeArtifact(art *shader.Artifact, output string) error {
	if output != "" {
		return os.WriteFile(output, art.Bytes(), 0o644)
	}
	if art.Target.IsBinary() && isTerminal(os.Stdout) {
		return errors.New("refusing to write SPIR-V to a terminal; use -o")
	}
	_, err := os.Stdout.Write(art.Bytes())
	return err
}
