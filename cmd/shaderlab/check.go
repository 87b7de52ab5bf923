// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/source"
	"github.com/gogpu/shaderlab/tmpl"
)

var (
	checkJobs        int
	checkPlaceholder string
)

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 0, "files checked in parallel (default: GOMAXPROCS)")
	checkCmd.Flags().StringVar(&checkPlaceholder, "placeholder", "content", "template field filled with the built-in body")
}

var checkCmd = &cobra.Command{
	Use:   "check <files...>",
	Short: "Validate WGSL files and fragment templates",
	Long: `Check parses and validates each file. Files containing template actions are
materialized with the built-in body first. The stage is taken from the
file's entry point attribute.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := checkFiles(cmd.Context(), shader.NewCompiler(), args, checkJobs, checkPlaceholder)
		failed := reportChecks(cmd.OutOrStdout(), results)
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

type checkResult struct {
	Path string
	Err  error
}

// checkFiles checks paths concurrently and returns results in input order.
func checkFiles(ctx context.Context, c *shader.Compiler, paths []string, jobs int, placeholder string) []checkResult {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	body, err := fs.ReadFile(source.Embedded(), source.DefaultBody)
	if err != nil {
		panic(err) // part of the binary
	}

	results := make([]checkResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkResult{Path: path, Err: checkFile(c, path, string(body), placeholder)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i := range results {
			if results[i].Path == "" {
				results[i] = checkResult{Path: paths[i], Err: err}
			}
		}
	}
	return results
}

func checkFile(c *shader.Compiler, path, body, placeholder string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return shader.NewDiagnostic(shader.KindIO, 0, path, err)
	}
	text := string(data)

	stage := shader.StageFragment
	if strings.Contains(text, "@vertex") && !strings.Contains(text, "@fragment") {
		stage = shader.StageVertex
	}
	src := shader.Source{Stage: stage, Name: path, Text: text}
	if strings.Contains(text, "{{") {
		t, err := tmpl.Parse(path, text, tmpl.WithPlaceholder(placeholder))
		if err != nil {
			return err
		}
		if src, err = t.Source(body, ""); err != nil {
			return err
		}
	}
	return c.Check(src)
}

// reportChecks prints every result and returns the failure count.
func reportChecks(w io.Writer, results []checkResult) int {
	failed := 0
	for _, r := range results {
		if r.Err == nil {
			fmt.Fprintf(w, "%s %s\n", okColor.Sprint("ok"), r.Path)
			continue
		}
		failed++
		fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("FAIL"), r.Path)
		printError(w, r.Err)
	}
	return failed
}
