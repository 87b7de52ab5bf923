// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shaderlab/internal/gpudev"
)

type halHandle struct {
	NullDeviceHandle
	device any
	queue  any
	format gputypes.TextureFormat
}

func (h halHandle) HalDevice() any                        { return h.device }
func (h halHandle) HalQueue() any                         { return h.queue }
func (h halHandle) SurfaceFormat() gputypes.TextureFormat { return h.format }

func TestHAL(t *testing.T) {
	dev, err := gpudev.OpenHeadless()
	if err != nil {
		t.Fatalf("OpenHeadless: %v", err)
	}
	defer dev.Close()

	d, q, err := HAL(halHandle{device: dev.Device, queue: dev.Queue})
	if err != nil {
		t.Fatalf("HAL: %v", err)
	}
	if d != dev.Device || q != dev.Queue {
		t.Error("HAL returned different device or queue")
	}

	tests := []struct {
		name     string
		provider DeviceHandle
		want     error
	}{
		{"nil", nil, ErrNilProvider},
		{"null", NullDeviceHandle{}, ErrNoHAL},
		{"bad device", halHandle{device: "x", queue: dev.Queue}, ErrNotDevice},
		{"bad queue", halHandle{device: dev.Device, queue: 1}, ErrNotQueue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := HAL(tt.provider); !errors.Is(err, tt.want) {
				t.Errorf("HAL = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSurfaceFormat(t *testing.T) {
	fallback := gputypes.TextureFormatBGRA8Unorm
	if got := SurfaceFormat(NullDeviceHandle{}, fallback); got != fallback {
		t.Errorf("null provider = %v, want fallback", got)
	}
	if got := SurfaceFormat(nil, fallback); got != fallback {
		t.Errorf("nil provider = %v, want fallback", got)
	}
	h := halHandle{format: gputypes.TextureFormatRGBA8Unorm}
	if got := SurfaceFormat(h, fallback); got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("provider format = %v", got)
	}
}
