// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource describes the textures, images and glyphs that batched
// primitives sample from, and the [ResourceCache] contract the batching
// engine uses to resolve them.
//
// Resolution is synchronous and never blocks: a resource that is not ready
// resolves to [InvalidTexture] and the primitive using it is skipped for the
// frame.
package resource

import "fmt"

// SourceKind tags the origin of a [SourceTexture].
type SourceKind uint8

const (
	// SourceInvalid marks a texture that is not available.
	SourceInvalid SourceKind = iota

	// SourceTextureCache is a page of the shared texture cache.
	SourceTextureCache

	// SourceExternal is a texture owned by the embedder.
	SourceExternal

	// SourceCacheA8 is the alpha render-target cache of the previous pass.
	SourceCacheA8

	// SourceCacheRGBA8 is the color render-target cache of the previous pass.
	SourceCacheRGBA8
)

// String returns the string representation of SourceKind.
func (k SourceKind) String() string {
	switch k {
	case SourceInvalid:
		return "Invalid"
	case SourceTextureCache:
		return "TextureCache"
	case SourceExternal:
		return "External"
	case SourceCacheA8:
		return "CacheA8"
	case SourceCacheRGBA8:
		return "CacheRGBA8"
	default:
		return fmt.Sprintf("SourceKind(%d)", uint8(k))
	}
}

// ExternalImageType tells how an external image is backed.
type ExternalImageType uint8

const (
	// ExternalTexture2D is a regular 2D GPU texture handle.
	ExternalTexture2D ExternalImageType = iota

	// ExternalTextureRect is a rectangle texture handle (unnormalised UVs).
	ExternalTextureRect

	// ExternalTextureExternal is a platform external-image handle.
	ExternalTextureExternal

	// ExternalBuffer is CPU memory the embedder uploads through the texture
	// cache. Batches sample it from its texture cache page.
	ExternalBuffer
)

// String returns the string representation of ExternalImageType.
func (t ExternalImageType) String() string {
	switch t {
	case ExternalTexture2D:
		return "Texture2D"
	case ExternalTextureRect:
		return "TextureRect"
	case ExternalTextureExternal:
		return "TextureExternal"
	case ExternalBuffer:
		return "Buffer"
	default:
		return fmt.Sprintf("ExternalImageType(%d)", uint8(t))
	}
}

// ExternalImageID identifies an embedder-owned image.
type ExternalImageID uint64

// ExternalImage references one channel of an embedder-owned image.
type ExternalImage struct {
	ID      ExternalImageID
	Channel uint8
	Type    ExternalImageType
}

// SourceTexture identifies a texture a batch samples from.
// It is comparable and used as a map key.
type SourceTexture struct {
	Kind     SourceKind
	ID       uint32
	External ExternalImage
}

// Well-known textures.
var (
	// InvalidTexture is the "not available" sentinel. Two batch texture
	// slots are compatible if either holds it.
	InvalidTexture = SourceTexture{}

	// CacheA8 samples the previous pass's alpha targets.
	CacheA8 = SourceTexture{Kind: SourceCacheA8}

	// CacheRGBA8 samples the previous pass's color targets.
	CacheRGBA8 = SourceTexture{Kind: SourceCacheRGBA8}
)

// TextureCacheTexture returns a texture-cache page.
func TextureCacheTexture(id uint32) SourceTexture {
	return SourceTexture{Kind: SourceTextureCache, ID: id}
}

// ExternalTexture returns an embedder-owned texture.
func ExternalTexture(img ExternalImage) SourceTexture {
	return SourceTexture{Kind: SourceExternal, External: img}
}

// IsValid reports whether the texture is available.
func (t SourceTexture) IsValid() bool {
	return t.Kind != SourceInvalid
}

// String returns a string representation of the texture.
func (t SourceTexture) String() string {
	switch t.Kind {
	case SourceTextureCache:
		return fmt.Sprintf("TextureCache(%d)", t.ID)
	case SourceExternal:
		return fmt.Sprintf("External(%d/%d %v)", t.External.ID, t.External.Channel, t.External.Type)
	default:
		return t.Kind.String()
	}
}
