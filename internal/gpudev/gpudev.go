// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpudev opens HAL devices for shaderlab's own use: a noop device
// for headless runs and tests, and a standalone Vulkan device.
package gpudev

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// ErrNoAdapter is returned when an instance exposes no adapters.
var ErrNoAdapter = errors.New("gpudev: no GPU adapters found")

// Device is an opened device together with the instance that owns it.
type Device struct {
	Device hal.Device
	Queue  hal.Queue

	// Adapter is the adapter name, for logs.
	Adapter string

	instance interface{ Destroy() }
}

// Close destroys the device, then its instance. Safe to call more than once.
func (d *Device) Close() {
	if d == nil {
		return
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
		d.Queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// OpenHeadless opens a noop device. Every resource call succeeds and no
// GPU work is performed.
func OpenHeadless() (*Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open noop device: %w", err)
	}
	return &Device{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Adapter:  "noop",
		instance: instance,
	}, nil
}
