// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package prim

import (
	"image"
	"math"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/resource"
)

// ColorF is a linear RGBA color.
type ColorF struct {
	R, G, B, A float32
}

// Line is a text decoration or rule.
type Line struct {
	Color ColorF
}

// BorderCornerInstance tells how many instances a border corner needs.
type BorderCornerInstance uint8

const (
	// CornerNone draws nothing for the corner.
	CornerNone BorderCornerInstance = iota

	// CornerSingle draws both sides of the corner in one instance.
	CornerSingle

	// CornerDouble draws each side of the corner as its own instance.
	CornerDouble
)

// BorderCornerSide is passed to the corner shader as user data.
type BorderCornerSide int32

const (
	SideBoth BorderCornerSide = iota
	SideFirst
	SideSecond
)

// Border holds the per-corner instance plan of a border.
// Corners are ordered top-left, top-right, bottom-right, bottom-left.
type Border struct {
	Corners [4]BorderCornerInstance
}

// Image is a (possibly tiled) image primitive.
type Image struct {
	Key       resource.ImageKey
	Rendering resource.ImageRendering
	Tile      *resource.TileOffset
}

// YuvFormat is the plane layout of a YUV image.
type YuvFormat uint8

const (
	YuvNV12 YuvFormat = iota
	YuvPlanar
	YuvInterleaved
)

// Planes returns how many textures the format reads from.
func (f YuvFormat) Planes() int {
	switch f {
	case YuvNV12:
		return 2
	case YuvPlanar:
		return 3
	default:
		return 1
	}
}

// YuvColorSpace is the YUV to RGB conversion matrix.
type YuvColorSpace uint8

const (
	Rec601 YuvColorSpace = iota
	Rec709
)

// YuvImage is a video frame split over up to three planes.
type YuvImage struct {
	Planes     [3]resource.ImageKey
	Format     YuvFormat
	ColorSpace YuvColorSpace
	Rendering  resource.ImageRendering
}

// TextRun is a run of glyphs from one font.
type TextRun struct {
	Font   resource.FontInstance
	Glyphs []resource.GlyphKey
	Color  ColorF
}

// RunMode distinguishes text drawn directly from text drawn into a shadow
// cache.
type RunMode uint8

const (
	RunNormal RunMode = iota
	RunShadow
)

// FontFor returns the font instance to rasterise the run with at the given
// device pixel ratio. Shadows and runs under complex transforms cannot use
// subpixel anti-aliasing.
func (t *TextRun) FontFor(devicePixelRatio float64, mode RunMode, transform core.TransformKind) resource.FontInstance {
	fi := t.Font
	fi.Size = fixed.Int26_6(math.Round(float64(fi.Size) * devicePixelRatio))
	if mode == RunShadow || transform == core.Complex {
		fi.RenderMode = fi.RenderMode.LimitBy(resource.RenderAlpha)
	}
	return fi
}

// TextShadow is a shadow of text and lines, pre-rendered into a cache task.
type TextShadow struct {
	// Primitives are drawn into the cache task. Only text runs and lines
	// may appear here.
	Primitives []core.PrimitiveIndex
}

// BoxShadow is a blurred box shadow, pre-rendered into a cache task.
type BoxShadow struct {
	// Rects are the pieces the shadow is drawn with.
	Rects []image.Rectangle
}

// Gradient is a linear gradient.
type Gradient struct {
	// StopsCount is the number of color stops. Aligned gradients draw one
	// instance per segment between consecutive stops.
	StopsCount int
}

// RadialGradient is a radial gradient.
type RadialGradient struct {
	StopsCount int
}
