// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package reload

import (
	"fmt"

	"github.com/gogpu/shaderlab/shader"
)

// State is the coordinator's reload state.
type State uint8

const (
	// StateClean means the active pipeline matches the current sources.
	StateClean State = iota

	// StateDirty means a change is pending and the next Poll rebuilds.
	StateDirty

	// StateCompiling is held only while Poll runs.
	StateCompiling

	// StateFailed means the last attempt failed. The diagnostic is
	// available and the previous pipeline, if any, is still active.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateCompiling:
		return "compiling"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Status is a snapshot of the coordinator for display.
type Status struct {
	State State

	// Diagnostic is set in StateFailed.
	Diagnostic *shader.Diagnostic

	// Generation is the active pipeline's generation, 0 if none.
	Generation uint64

	// Attempts counts rebuilds started; Failures counts those that failed.
	Attempts uint64
	Failures uint64

	// Events counts watch events drained so far.
	Events uint64
}

// HasPipeline reports whether a pipeline is available for drawing.
func (s Status) HasPipeline() bool { return s.Generation != 0 }

func (s Status) String() string {
	if s.State == StateFailed && s.Diagnostic != nil {
		return fmt.Sprintf("%s (generation %d): %s", s.State, s.Generation, s.Diagnostic.Error())
	}
	return fmt.Sprintf("%s (generation %d)", s.State, s.Generation)
}
