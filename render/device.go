// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// Key principle: shaderlab RECEIVES the device from the host, it does not
// create one. The host (e.g. gogpu.App) owns the surface and the frame
// loop; shaderlab only builds pipelines on the shared device and records
// draws into the host's render pass.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// Errors returned by HAL.
var (
	ErrNoHAL       = errors.New("render: provider does not expose HAL types")
	ErrNotDevice   = errors.New("render: provider HalDevice is not hal.Device")
	ErrNotQueue    = errors.New("render: provider HalQueue is not hal.Queue")
	ErrNilProvider = errors.New("render: provider is nil")
)

// HAL extracts the HAL device and queue from a provider. The provider
// must implement HalDevice() any and HalQueue() any.
func HAL(provider DeviceHandle) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, nil, ErrNilProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, ErrNotDevice
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, ErrNotQueue
	}
	return device, queue, nil
}

// SurfaceFormat returns the provider's surface format, or fallback when
// the provider reports none.
func SurfaceFormat(provider DeviceHandle, fallback gputypes.TextureFormat) gputypes.TextureFormat {
	if provider == nil {
		return fallback
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		return f
	}
	return fallback
}

// NullDeviceHandle is a DeviceHandle without a device. HAL rejects it.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
