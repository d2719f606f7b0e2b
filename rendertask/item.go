// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rendertask

import (
	"fmt"
	"image"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/gpucache"
)

// Item is one draw of an [Alpha] task.
//
// Implementations are [PrimitiveItem], [BlendItem], [CompositeItem],
// [SplitCompositeItem] and [HardwareCompositeItem].
type Item interface {
	isItem()
}

// PrimitiveItem draws a primitive from the primitive store.
type PrimitiveItem struct {
	Layer core.LayerIndex
	Prim  core.PrimitiveIndex
	Z     int32
}

// BlendItem applies a filter to the output of task Source.
type BlendItem struct {
	Source core.TaskID
	Filter FilterOp
	Z      int32
	Bounds image.Rectangle
}

// CompositeItem blends Source over Backdrop with Mode.
type CompositeItem struct {
	Source   core.TaskID
	Backdrop core.TaskID
	Mode     MixBlendMode
	Z        int32
	Bounds   image.Rectangle
}

// SplitCompositeItem draws Source mapped onto a plane split from a 3D
// stacking context. Plane holds the plane polygon.
type SplitCompositeItem struct {
	Source core.TaskID
	Plane  gpucache.Handle
	Z      int32
	Bounds image.Rectangle
}

// HardwareCompositeItem draws Source with a fixed-function blend.
type HardwareCompositeItem struct {
	Source core.TaskID
	Op     HardwareCompositeOp
	Z      int32
	Bounds image.Rectangle
}

func (PrimitiveItem) isItem()         {}
func (BlendItem) isItem()             {}
func (CompositeItem) isItem()         {}
func (SplitCompositeItem) isItem()    {}
func (HardwareCompositeItem) isItem() {}

// FilterKind is a CSS filter function. The values are shader constants.
type FilterKind int32

const (
	FilterBlur FilterKind = iota
	FilterContrast
	FilterGrayscale
	FilterHueRotate
	FilterInvert
	FilterSaturate
	FilterSepia
	FilterBrightness
	FilterOpacity
)

// FilterOp is a filter with its amount. HueRotate amounts are in degrees;
// Blur ignores the amount since the blur happens in child tasks.
type FilterOp struct {
	Kind   FilterKind
	Amount float32
}

// MixBlendMode is a CSS mix-blend-mode. The values are shader constants.
type MixBlendMode int32

const (
	MixNormal MixBlendMode = iota
	MixMultiply
	MixScreen
	MixOverlay
	MixDarken
	MixLighten
	MixColorDodge
	MixColorBurn
	MixHardLight
	MixSoftLight
	MixDifference
	MixExclusion
	MixHue
	MixSaturation
	MixColor
	MixLuminosity
)

// HardwareCompositeOp is a blend the fixed-function pipeline can do.
type HardwareCompositeOp uint8

const (
	CompositePremultipliedAlpha HardwareCompositeOp = iota
)

// String returns the string representation of HardwareCompositeOp.
func (op HardwareCompositeOp) String() string {
	if op == CompositePremultipliedAlpha {
		return "PremultipliedAlpha"
	}
	return fmt.Sprintf("HardwareCompositeOp(%d)", uint8(op))
}
