// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"
)

// UniformsSize is the encoded size of Uniforms.
const UniformsSize = 16

// Uniforms are the per-frame values written to the uniform buffer.
//
// WGSL layout (16 bytes):
//
//	struct Params {
//	    resolution: vec2<f32>,
//	    time: f32,
//	    param: f32,
//	}
type Uniforms struct {
	// Resolution is the render target size in pixels.
	Resolution [2]float32

	// Time is seconds since the session started.
	Time float32

	// Param is a free user parameter.
	Param float32
}

// Encode writes u little-endian into a buffer of size bytes. Bytes past
// the first 16 are zero. size below UniformsSize is raised to it.
func (u Uniforms) Encode(size uint64) []byte {
	if size < UniformsSize {
		size = UniformsSize
	}
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(u.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(u.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(u.Time))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(u.Param))
	return buf
}
