// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// TaskID indexes a render task in its tree's arena.
type TaskID int32

// String returns the string representation of TaskID.
func (id TaskID) String() string {
	return fmt.Sprintf("Task(%d)", int32(id))
}

// TaskRef is an optional reference to a render task.
// The zero value references no task.
type TaskRef struct {
	id    TaskID
	valid bool
}

// Ref returns a TaskRef pointing at id.
func Ref(id TaskID) TaskRef {
	return TaskRef{id: id, valid: true}
}

// Get returns the referenced task and whether the reference is set.
func (r TaskRef) Get() (TaskID, bool) {
	return r.id, r.valid
}

// IsSet reports whether the reference points at a task.
func (r TaskRef) IsSet() bool {
	return r.valid
}

// TaskAddress is the index a shader uses to fetch a task's data block.
type TaskAddress int32

// OpaqueTaskAddress tells the shaders that a primitive has no clip mask.
// The value is matched bit-exactly on the GPU side.
const OpaqueTaskAddress TaskAddress = math.MaxInt32

// PrimitiveIndex indexes a primitive in the primitive store.
type PrimitiveIndex int32

// LayerIndex indexes a packed layer (the transform a primitive is drawn with).
type LayerIndex int32

// TargetIndex is the index of a render target inside its target list.
type TargetIndex int

// TargetKind selects which kind of render target a task is drawn into.
type TargetKind uint8

const (
	// TargetColor holds premultiplied RGBA output: pictures, blurs, readbacks.
	TargetColor TargetKind = iota

	// TargetAlpha holds single-channel output: clip masks and box shadows.
	TargetAlpha
)

// String returns the string representation of TargetKind.
func (k TargetKind) String() string {
	switch k {
	case TargetColor:
		return "Color"
	case TargetAlpha:
		return "Alpha"
	default:
		return fmt.Sprintf("TargetKind(%d)", uint8(k))
	}
}

// Format returns the texture format that backs targets of this kind.
func (k TargetKind) Format() gputypes.TextureFormat {
	if k == TargetAlpha {
		return gputypes.TextureFormatR8Unorm
	}
	return gputypes.TextureFormatBGRA8Unorm
}

// TransformKind describes the transform of a packed layer.
type TransformKind uint8

const (
	// AxisAligned transforms only scale and translate.
	AxisAligned TransformKind = iota

	// Complex transforms rotate, skew or project.
	Complex
)

// String returns the string representation of TransformKind.
func (k TransformKind) String() string {
	switch k {
	case AxisAligned:
		return "AxisAligned"
	case Complex:
		return "Complex"
	default:
		return fmt.Sprintf("TransformKind(%d)", uint8(k))
	}
}
