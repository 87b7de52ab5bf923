// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// Target is the representation the compiler emits.
type Target uint8

const (
	// TargetSPIRV emits a SPIR-V binary as 32-bit words.
	TargetSPIRV Target = iota + 1

	// TargetWGSL emits validated WGSL text for devices that ingest WGSL.
	TargetWGSL

	// TargetGLSL emits GLSL text. Export only.
	TargetGLSL

	// TargetMSL emits Metal Shading Language text. Export only.
	TargetMSL

	// TargetHLSL emits HLSL text. Export only.
	TargetHLSL
)

// String returns the target's short name.
func (t Target) String() string {
	switch t {
	case TargetSPIRV:
		return "spirv"
	case TargetWGSL:
		return "wgsl"
	case TargetGLSL:
		return "glsl"
	case TargetMSL:
		return "msl"
	case TargetHLSL:
		return "hlsl"
	default:
		return "unknown"
	}
}

// ParseTarget parses a target name as printed by String.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spirv", "spv", "spir-v":
		return TargetSPIRV, nil
	case "wgsl":
		return TargetWGSL, nil
	case "glsl":
		return TargetGLSL, nil
	case "msl", "metal":
		return TargetMSL, nil
	case "hlsl":
		return TargetHLSL, nil
	}
	return 0, fmt.Errorf("shader: unknown target %q", s)
}

// IsBinary reports whether the target's payload is a word stream.
func (t Target) IsBinary() bool { return t == TargetSPIRV }

// DeviceConsumable reports whether a pipeline can be built directly from
// artifacts of this target.
func (t Target) DeviceConsumable() bool { return t == TargetSPIRV || t == TargetWGSL }

// Artifact is the device-consumable output of a successful compilation.
// It is immutable once produced.
type Artifact struct {
	Stage      Stage
	Target     Target
	EntryPoint string

	// Text holds the payload for text targets.
	Text string

	// Words holds the payload for TargetSPIRV.
	Words []uint32

	// Digest identifies the source the artifact was compiled from.
	Digest [sha256.Size]byte
}

// Bytes returns the payload as bytes (little-endian for SPIR-V words).
func (a *Artifact) Bytes() []byte {
	if a.Target.IsBinary() {
		return wordsToBytes(a.Words)
	}
	return []byte(a.Text)
}

// Size returns the payload size in bytes.
func (a *Artifact) Size() int {
	if a.Target.IsBinary() {
		return len(a.Words) * 4
	}
	return len(a.Text)
}

// SourceDigest hashes src under target. Compiler keys its caches on this
// folded with its own options.
func SourceDigest(src Source, target Target) [sha256.Size]byte {
	h := sha256.New()
	fmt.Fprintf(h, "%d\x00%d\x00%s\x00", src.Stage, target, src.EntryPoint)
	h.Write([]byte(src.Text))
	var d [sha256.Size]byte
	copy(d[:], h.Sum(nil))
	return d
}

// bytesToWords converts a little-endian SPIR-V byte stream to words.
func bytesToWords(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a multiple of 4", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

func wordsToBytes(words []uint32) []byte {
	b := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}
