// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command shaderlab compiles, checks and live-reloads WGSL shaders.
package main

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogpu/shaderlab"
	"github.com/gogpu/shaderlab/config"
)

var rootCmd = &cobra.Command{
	Use:           "shaderlab",
	Short:         "Live shader editing for gogpu",
	Long:          `shaderlab compiles WGSL through naga and rebuilds render pipelines as shaders change`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupOutput(cmd)
		return nil
	},
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to a shaderlab.toml")
	rootCmd.PersistentFlags().CountP("verbose", "v", "log verbosity (-v info, -vv debug)")

	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// setupOutput applies the color and verbosity flags.
func setupOutput(cmd *cobra.Command) {
	colorFlag, _ := cmd.Flags().GetString("color")
	color.NoColor = !(colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr)))

	verbose, _ := cmd.Flags().GetCount("verbose")
	if verbose == 0 {
		return
	}
	level := slog.LevelInfo
	if verbose > 1 {
		level = slog.LevelDebug
	}
	shaderlab.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads --config, or returns the defaults without one.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
