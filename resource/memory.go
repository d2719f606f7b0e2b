// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/tiling/gpucache"
	"github.com/gogpu/tiling/internal/lru"
)

// ErrInvalidTexture is returned when a resource is registered with InvalidTexture.
var ErrInvalidTexture = errors.New("resource: texture is invalid")

// Glyph atlas layout of the in-memory cache.
const (
	glyphCell      = 32
	glyphAtlasSize = 2048
	glyphsPerRow   = glyphAtlasSize / glyphCell
)

// glyphMaxAge is how many frames an unused glyph keeps its GPU cache block.
const glyphMaxAge = 60

type imageSlot struct {
	key       ImageKey
	rendering ImageRendering
	tile      TileOffset
	tiled     bool
}

type glyphSlot struct {
	font  FontInstance
	glyph GlyphKey
}

// Memory is an in-memory [ResourceCache] for tools and tests.
//
// Images and fonts are registered up front with the texture they live in.
// Glyph UV blocks are created lazily and expire when unused for a while.
//
// Memory is NOT safe for concurrent use.
type Memory struct {
	gpu    *gpucache.Cache
	images map[imageSlot]CacheItem
	props  map[ImageKey]ImageProperties
	fonts  map[FontKey]SourceTexture
	glyphs *lru.Cache[glyphSlot, gpucache.Handle]
}

var _ ResourceCache = (*Memory)(nil)

// NewMemory returns an empty cache that stores UV rectangles in gpu.
func NewMemory(gpu *gpucache.Cache) *Memory {
	return &Memory{
		gpu:    gpu,
		images: make(map[imageSlot]CacheItem),
		props:  make(map[ImageKey]ImageProperties),
		fonts:  make(map[FontKey]SourceTexture),
		glyphs: lru.New[glyphSlot, gpucache.Handle](0, glyphMaxAge),
	}
}

// AddImage registers an image living at uv inside tex.
// External texture images are registered with InvalidTexture; their texture
// is resolved by the render thread. External buffer images have been uploaded
// into the texture cache and are registered like any other image.
func (m *Memory) AddImage(key ImageKey, props ImageProperties, tex SourceTexture, uv image.Rectangle) error {
	m.props[key] = props
	if props.External != nil && props.External.Type != ExternalBuffer {
		return nil
	}
	if !tex.IsValid() {
		return fmt.Errorf("add image %v: %w", key, ErrInvalidTexture)
	}
	h, err := m.gpu.Push(uvBlock(uv))
	if err != nil {
		return fmt.Errorf("add image %v: %w", key, err)
	}
	for _, r := range []ImageRendering{RenderingAuto, RenderingCrispEdges, RenderingPixelated} {
		m.images[imageSlot{key: key, rendering: r}] = CacheItem{Texture: tex, UVRect: h}
	}
	return nil
}

// AddImageTile registers one tile of a tiled image.
func (m *Memory) AddImageTile(key ImageKey, tile TileOffset, rendering ImageRendering, tex SourceTexture, uv image.Rectangle) error {
	if !tex.IsValid() {
		return fmt.Errorf("add tile %v %v: %w", key, tile, ErrInvalidTexture)
	}
	h, err := m.gpu.Push(uvBlock(uv))
	if err != nil {
		return fmt.Errorf("add tile %v %v: %w", key, tile, err)
	}
	m.images[imageSlot{key: key, rendering: rendering, tile: tile, tiled: true}] = CacheItem{Texture: tex, UVRect: h}
	return nil
}

// AddFont registers a font whose glyphs are rasterised into tex.
func (m *Memory) AddFont(key FontKey, tex SourceTexture) error {
	if !tex.IsValid() {
		return fmt.Errorf("add font %d: %w", key, ErrInvalidTexture)
	}
	m.fonts[key] = tex
	return nil
}

// CachedImage implements [ResourceCache].
func (m *Memory) CachedImage(key ImageKey, rendering ImageRendering, tile *TileOffset) CacheItem {
	slot := imageSlot{key: key, rendering: rendering}
	if tile != nil {
		slot.tile, slot.tiled = *tile, true
	}
	item, ok := m.images[slot]
	if !ok {
		return CacheItem{Texture: InvalidTexture}
	}
	return item
}

// ImageProperties implements [ResourceCache].
func (m *Memory) ImageProperties(key ImageKey) (ImageProperties, bool) {
	p, ok := m.props[key]
	return p, ok
}

// Glyphs implements [ResourceCache].
func (m *Memory) Glyphs(fi FontInstance, keys []GlyphKey, fn func(int, SourceTexture, gpucache.Handle)) SourceTexture {
	tex, ok := m.fonts[fi.Key]
	if !ok {
		return InvalidTexture
	}
	for i, k := range keys {
		slot := glyphSlot{font: fi, glyph: k}
		h, ok := m.glyphs.Get(slot)
		if !ok {
			var err error
			if h, err = m.gpu.Push(uvBlock(glyphRect(k))); err == nil {
				m.glyphs.Set(slot, h)
			}
		}
		fn(i, tex, h)
	}
	return tex
}

// EndFrame ages glyph slots. It returns the number of glyphs dropped.
func (m *Memory) EndFrame() int {
	return m.glyphs.EndFrame()
}

// glyphRect places glyphs on a fixed grid by glyph index.
func glyphRect(k GlyphKey) image.Rectangle {
	i := int(k.Index)
	x := (i % glyphsPerRow) * glyphCell
	y := (i / glyphsPerRow % glyphsPerRow) * glyphCell
	return image.Rect(x, y, x+glyphCell, y+glyphCell)
}

func uvBlock(r image.Rectangle) gpucache.Block {
	return gpucache.Block{float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y)}
}
