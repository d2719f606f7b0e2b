// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rendertask

import (
	"image"

	"github.com/gogpu/tiling/core"
)

// Kind is the closed set of render task kinds.
//
// Implementations are [Alpha], [CachePrimitive], [BoxShadow], [CacheMask],
// [VerticalBlur], [HorizontalBlur], [Readback] and [Alias].
type Kind interface {
	// TargetKind returns the kind of target the task draws into.
	TargetKind() core.TargetKind

	isKind()
}

// Alpha draws a list of items, in order, into a color target.
type Alpha struct {
	// ScreenOrigin is the device position the task's rectangle maps to.
	ScreenOrigin image.Point

	// Items are drawn in paint order.
	Items []Item

	// IsolateClear clears the task rectangle before drawing.
	IsolateClear bool
}

// CachePrimitive pre-renders one primitive (a text shadow) into a color target.
type CachePrimitive struct {
	Prim core.PrimitiveIndex
}

// BoxShadow pre-renders a box shadow into an alpha target.
type BoxShadow struct {
	Prim core.PrimitiveIndex
}

// MaskGeometryKind hints how much of a complex clip needs drawing.
type MaskGeometryKind uint8

const (
	// GeometryDefault draws the whole clip.
	GeometryDefault MaskGeometryKind = iota

	// GeometryCornersOnly draws only the four rounded corners.
	GeometryCornersOnly
)

// CacheMask renders a clip mask into an alpha target.
type CacheMask struct {
	// ActualRect is the device rectangle the mask covers.
	ActualRect image.Rectangle

	// InnerRect is the part of ActualRect known to be fully inside all clips.
	InnerRect image.Rectangle

	Clips    []ClipWorkItem
	Geometry MaskGeometryKind
}

// VerticalBlur blurs its single child vertically.
type VerticalBlur struct {
	Radius float32
}

// HorizontalBlur blurs its single child horizontally.
type HorizontalBlur struct {
	Radius float32
}

// Readback copies a framebuffer rectangle into a color target.
type Readback struct {
	Rect image.Rectangle
}

// Alias marks a task coalesced into an identical earlier task of the same
// pass. It shares Of's location and contributes no draw work.
type Alias struct {
	Of     core.TaskID
	Target core.TargetKind
}

func (Alpha) TargetKind() core.TargetKind          { return core.TargetColor }
func (CachePrimitive) TargetKind() core.TargetKind { return core.TargetColor }
func (BoxShadow) TargetKind() core.TargetKind      { return core.TargetAlpha }
func (CacheMask) TargetKind() core.TargetKind      { return core.TargetAlpha }
func (VerticalBlur) TargetKind() core.TargetKind   { return core.TargetColor }
func (HorizontalBlur) TargetKind() core.TargetKind { return core.TargetColor }
func (Readback) TargetKind() core.TargetKind       { return core.TargetColor }
func (a Alias) TargetKind() core.TargetKind        { return a.Target }

func (Alpha) isKind()          {}
func (CachePrimitive) isKind() {}
func (BoxShadow) isKind()      {}
func (CacheMask) isKind()      {}
func (VerticalBlur) isKind()   {}
func (HorizontalBlur) isKind() {}
func (Readback) isKind()       {}
func (Alias) isKind()          {}

// CacheKeyKind tells what a cacheable task renders.
type CacheKeyKind uint8

const (
	KeyCacheMask CacheKeyKind = iota
	KeyBoxShadow
	KeyTextShadow
)

// CacheKey identifies tasks that render the same pixels. Two tasks with
// equal keys in one pass are coalesced.
type CacheKey struct {
	Kind CacheKeyKind
	ID   uint64
}
