// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderlab"
	"github.com/gogpu/shaderlab/config"
	"github.com/gogpu/shaderlab/internal/gpudev"
	"github.com/gogpu/shaderlab/reload"
	"github.com/gogpu/shaderlab/render"
	"github.com/gogpu/shaderlab/shader"
	"github.com/gogpu/shaderlab/watch"
)

var (
	watchGPU      bool
	watchBody     string
	watchInterval time.Duration
)

func init() {
	watchCmd.Flags().BoolVar(&watchGPU, "gpu", false, "build pipelines on a Vulkan device instead of the headless one")
	watchCmd.Flags().StringVar(&watchBody, "body", "", "body file; edits to it are applied live")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 100*time.Millisecond, "poll interval")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the pipeline whenever the shaders change",
	Long: `Watch runs the hot-reload loop without a window. Shader files from the
configured directory and the --body file are watched; each change rebuilds
the pipeline and prints the result. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cmd.OutOrStdout(), cfg, watchOptions{
			gpu:      watchGPU,
			body:     watchBody,
			interval: watchInterval,
		})
	},
}

type watchOptions struct {
	gpu      bool
	body     string
	interval time.Duration
}

func runWatch(ctx context.Context, w io.Writer, cfg config.Config, o watchOptions) error {
	open := gpudev.OpenHeadless
	if o.gpu {
		open = gpudev.OpenVulkan
	}
	dev, err := open()
	if err != nil {
		return err
	}
	defer dev.Close()
	fmt.Fprintf(w, "device: %s\n", dev.Adapter)

	var s *shaderlab.Session
	opts := []shaderlab.Option{
		shaderlab.WithOnStateChange(func(_, to reload.State, d *shader.Diagnostic) {
			if to == reload.StateClean || to == reload.StateFailed {
				printState(w, to, s.Status().Generation, d)
			}
		}),
	}

	var bodyWatcher *watch.Watcher
	if o.body != "" {
		body, err := os.ReadFile(o.body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		opts = append(opts, shaderlab.WithBody(string(body)))
		if bodyWatcher, err = watch.New(o.body); err != nil {
			return err
		}
		defer bodyWatcher.Close()
	}

	s, err = shaderlab.New(dev.Device, dev.Queue, cfg, opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		if bodyWatcher != nil && len(bodyWatcher.Drain()) > 0 {
			if body, err := os.ReadFile(o.body); err == nil {
				s.Edit(string(body))
			} else {
				printError(w, err)
			}
		}
		s.Update()
		if err := s.Prepare(render.Uniforms{
			Resolution: [2]float32{1280, 720},
			Time:       float32(time.Since(start).Seconds()),
		}); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			st := s.Status()
			fmt.Fprintf(w, "stopped after %d rebuilds (%d failed)\n", st.Attempts, st.Failures)
			return nil
		case <-ticker.C:
		}
	}
}
