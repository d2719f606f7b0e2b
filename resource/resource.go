// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/tiling/gpucache"
)

// ImageKey identifies an image registered with the resource cache.
type ImageKey struct {
	Namespace uint32
	ID        uint32
}

// String returns a string representation of the key.
func (k ImageKey) String() string {
	return fmt.Sprintf("Image(%d:%d)", k.Namespace, k.ID)
}

// ImageRendering selects the sampling filter of an image.
type ImageRendering uint8

const (
	RenderingAuto ImageRendering = iota
	RenderingCrispEdges
	RenderingPixelated
)

// TileOffset addresses one tile of a tiled image.
type TileOffset struct {
	X, Y uint16
}

// ImageDescriptor describes the pixel data of an image.
type ImageDescriptor struct {
	Width, Height int
	Format        gputypes.TextureFormat
	IsOpaque      bool
}

// ImageProperties are what the resource cache knows about an image.
type ImageProperties struct {
	Descriptor ImageDescriptor

	// External is set for embedder-owned images. Their texture is known only
	// to the render thread.
	External *ExternalImage

	// TileSize is non-zero for tiled images.
	TileSize uint16
}

// CacheItem is a resolved image: the texture it lives in and the GPU cache
// block holding its UV rectangle.
type CacheItem struct {
	Texture SourceTexture
	UVRect  gpucache.Handle
}

// FontKey identifies a font registered with the resource cache.
type FontKey uint32

// FontRenderMode selects glyph anti-aliasing.
type FontRenderMode uint8

const (
	RenderMono FontRenderMode = iota
	RenderAlpha
	RenderSubpixel
)

// String returns the string representation of FontRenderMode.
func (m FontRenderMode) String() string {
	switch m {
	case RenderMono:
		return "Mono"
	case RenderAlpha:
		return "Alpha"
	case RenderSubpixel:
		return "Subpixel"
	default:
		return fmt.Sprintf("FontRenderMode(%d)", uint8(m))
	}
}

// LimitBy returns the less demanding of m and limit.
func (m FontRenderMode) LimitBy(limit FontRenderMode) FontRenderMode {
	return min(m, limit)
}

// FontInstance is a font at a given device size and render mode.
type FontInstance struct {
	Key        FontKey
	Size       fixed.Int26_6
	RenderMode FontRenderMode
}

// GlyphKey identifies one rasterised glyph of a font instance.
type GlyphKey struct {
	Index font.GID

	// Subpixel is the quantised subpixel offset the glyph was rasterised at.
	Subpixel fixed.Point26_6
}

// ResourceCache resolves image and glyph resources for the batcher.
// Every call is synchronous; missing data resolves to [InvalidTexture].
type ResourceCache interface {
	// CachedImage returns the texture and UV block of an image or image tile.
	CachedImage(key ImageKey, rendering ImageRendering, tile *TileOffset) CacheItem

	// ImageProperties returns what is known about key.
	ImageProperties(key ImageKey) (ImageProperties, bool)

	// Glyphs resolves keys for fi. fn is called once per glyph, in key
	// order, with the glyph's index in keys, its atlas texture and the GPU
	// cache block of its UV rectangle. The returned texture is the atlas all
	// glyphs live in, or InvalidTexture if the font is not ready.
	Glyphs(fi FontInstance, keys []GlyphKey, fn func(index int, tex SourceTexture, uv gpucache.Handle)) SourceTexture
}
