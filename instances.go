// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/rendertask"
)

// PrimitiveInstance is the vertex-shader input of every alpha batch.
// The layout is shared with the shaders and must not change.
type PrimitiveInstance struct {
	TaskAddress     core.TaskAddress
	PrimAddress     int32
	LayerIndex      core.LayerIndex
	ClipTaskAddress core.TaskAddress
	Z               int32
	UserData0       int32
	UserData1       int32
	UserData2       int32
}

// baseInstance carries the words every instance of one primitive shares.
type baseInstance struct {
	task     core.TaskAddress
	prim     int32
	layer    core.LayerIndex
	clipTask core.TaskAddress
	z        int32
}

func (b baseInstance) build(d0, d1, d2 int32) PrimitiveInstance {
	return PrimitiveInstance{
		TaskAddress:     b.task,
		PrimAddress:     b.prim,
		LayerIndex:      b.layer,
		ClipTaskAddress: b.clipTask,
		Z:               b.z,
		UserData0:       d0,
		UserData1:       d1,
		UserData2:       d2,
	}
}

// CompositeInstance is the composite-shader view of a [PrimitiveInstance].
type CompositeInstance struct {
	Task     core.TaskAddress
	Source   core.TaskAddress
	Backdrop core.TaskAddress
	Z        int32
	Data0    int32
	Data1    int32
	Data2    int32
	Data3    int32
}

// Instance packs the composite words into the shared instance layout.
func (c CompositeInstance) Instance() PrimitiveInstance {
	return PrimitiveInstance{
		TaskAddress:     c.Task,
		PrimAddress:     int32(c.Source),
		LayerIndex:      core.LayerIndex(c.Backdrop),
		ClipTaskAddress: core.TaskAddress(c.Z),
		Z:               c.Data0,
		UserData0:       c.Data1,
		UserData1:       c.Data2,
		UserData2:       c.Data3,
	}
}

// BlurDirection is the axis a blur command filters along.
type BlurDirection int32

const (
	BlurHorizontal BlurDirection = iota
	BlurVertical
)

// BlurCommand is one instance of the separable blur shader.
type BlurCommand struct {
	TaskAddress   core.TaskAddress
	SourceAddress core.TaskAddress
	Direction     BlurDirection
	Padding       int32
}

// MaskSegment selects which part of a clip the clip shader draws.
type MaskSegment int32

const (
	SegmentAll MaskSegment = iota
	SegmentTopLeft
	SegmentTopRight
	SegmentBottomLeft
	SegmentBottomRight
)

// cornerSegments are drawn in this order for corners-only masks.
var cornerSegments = [4]MaskSegment{SegmentTopLeft, SegmentTopRight, SegmentBottomLeft, SegmentBottomRight}

// CacheClipInstance is one instance of a clip-mask shader.
type CacheClipInstance struct {
	TaskAddress     core.TaskAddress
	LayerIndex      core.LayerIndex
	Segment         int32
	ClipDataAddress int32
	ResourceAddress int32
}

// blurDirectionOf returns the direction of a blur task kind.
func blurDirectionOf(k rendertask.Kind) (BlurDirection, bool) {
	switch k.(type) {
	case rendertask.VerticalBlur:
		return BlurVertical, true
	case rendertask.HorizontalBlur:
		return BlurHorizontal, true
	}
	return 0, false
}
