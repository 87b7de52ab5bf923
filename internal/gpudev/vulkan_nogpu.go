// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package gpudev

import "errors"

// OpenVulkan is unavailable in nogpu builds.
func OpenVulkan() (*Device, error) {
	return nil, errors.New("gpudev: built with nogpu")
}
