// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/prim"
	"github.com/gogpu/tiling/resource"
)

// BlendModeKind selects how a batch is blended into its target.
type BlendModeKind uint8

const (
	BlendNone BlendModeKind = iota
	BlendAlpha
	BlendPremultipliedAlpha

	// BlendSubpixel is subpixel-AA text; the text color is part of the mode.
	BlendSubpixel
)

// BlendMode is the blend state of a batch.
type BlendMode struct {
	Kind BlendModeKind

	// Color is the text color of BlendSubpixel, zero otherwise.
	Color prim.ColorF
}

// Blend mode values without a color.
var (
	BlendModeNone               = BlendMode{Kind: BlendNone}
	BlendModeAlpha              = BlendMode{Kind: BlendAlpha}
	BlendModePremultipliedAlpha = BlendMode{Kind: BlendPremultipliedAlpha}
)

// SubpixelBlend returns the subpixel text blend mode for color.
func SubpixelBlend(color prim.ColorF) BlendMode {
	return BlendMode{Kind: BlendSubpixel, Color: color}
}

// String returns the string representation of BlendMode.
func (m BlendMode) String() string {
	switch m.Kind {
	case BlendNone:
		return "None"
	case BlendAlpha:
		return "Alpha"
	case BlendPremultipliedAlpha:
		return "PremultipliedAlpha"
	case BlendSubpixel:
		return fmt.Sprintf("Subpixel(%v)", m.Color)
	default:
		return fmt.Sprintf("BlendMode(%d)", uint8(m.Kind))
	}
}

// ColorTargetState returns the pipeline color target a batch with this
// blend mode is drawn with. Shaders emit premultiplied color, so every
// blending mode maps to the premultiplied blend state.
func (m BlendMode) ColorTargetState(format gputypes.TextureFormat) gputypes.ColorTargetState {
	state := gputypes.ColorTargetState{
		Format:    format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if m.Kind != BlendNone {
		premul := gputypes.BlendStatePremultiplied()
		state.Blend = &premul
	}
	return state
}

// ImageBufferKind is the sampler type an image shader variant reads.
type ImageBufferKind uint8

const (
	BufferTexture2D ImageBufferKind = iota
	BufferTextureRect
	BufferTextureExternal
	BufferTexture2DArray
)

// String returns the string representation of ImageBufferKind.
func (k ImageBufferKind) String() string {
	switch k {
	case BufferTexture2D:
		return "Texture2D"
	case BufferTextureRect:
		return "TextureRect"
	case BufferTextureExternal:
		return "TextureExternal"
	case BufferTexture2DArray:
		return "Texture2DArray"
	default:
		return fmt.Sprintf("ImageBufferKind(%d)", uint8(k))
	}
}

// bufferKindOf returns the buffer kind a texture is sampled with.
// Buffer-backed external images are sampled from the texture cache, so an
// external texture of that type is a bug.
func bufferKindOf(tex resource.SourceTexture) ImageBufferKind {
	if tex.Kind != resource.SourceExternal {
		return BufferTexture2D
	}
	switch tex.External.Type {
	case resource.ExternalTexture2D:
		return BufferTexture2D
	case resource.ExternalTextureRect:
		return BufferTextureRect
	case resource.ExternalTextureExternal:
		return BufferTextureExternal
	default:
		panic(fmt.Sprintf("tiling: BUG: external buffer image %d reached the batcher", tex.External.ID))
	}
}

// BatchKindTag names a shader family.
type BatchKindTag uint8

const (
	BatchComposite BatchKindTag = iota
	BatchHardwareComposite
	BatchSplitComposite
	BatchBlend
	BatchRectangle
	BatchLine
	BatchBorderCorner
	BatchBorderEdge
	BatchTextRun
	BatchImage
	BatchYuvImage
	BatchCacheImage
	BatchBoxShadow
	BatchAlignedGradient
	BatchAngleGradient
	BatchRadialGradient
)

var batchTagNames = [...]string{
	BatchComposite:         "Composite",
	BatchHardwareComposite: "HardwareComposite",
	BatchSplitComposite:    "SplitComposite",
	BatchBlend:             "Blend",
	BatchRectangle:         "Rectangle",
	BatchLine:              "Line",
	BatchBorderCorner:      "BorderCorner",
	BatchBorderEdge:        "BorderEdge",
	BatchTextRun:           "TextRun",
	BatchImage:             "Image",
	BatchYuvImage:          "YuvImage",
	BatchCacheImage:        "CacheImage",
	BatchBoxShadow:         "BoxShadow",
	BatchAlignedGradient:   "AlignedGradient",
	BatchAngleGradient:     "AngleGradient",
	BatchRadialGradient:    "RadialGradient",
}

// String returns the string representation of BatchKindTag.
func (t BatchKindTag) String() string {
	if int(t) < len(batchTagNames) {
		return batchTagNames[t]
	}
	return fmt.Sprintf("BatchKindTag(%d)", uint8(t))
}

// BatchKind is the shader variant of a batch. Fields other than Tag are
// only set for the tags that use them, so two kinds can be compared with ==.
type BatchKind struct {
	Tag BatchKindTag

	// Composite identity.
	Task, Source, Backdrop core.TaskID

	// Image and YuvImage.
	Buffer ImageBufferKind

	// YuvImage.
	Format     prim.YuvFormat
	ColorSpace prim.YuvColorSpace
}

// Kind returns a batch kind with no parameters.
func Kind(tag BatchKindTag) BatchKind {
	return BatchKind{Tag: tag}
}

// CompositeKind returns the kind of a mix-blend composite of source over
// backdrop drawn by task.
func CompositeKind(task, source, backdrop core.TaskID) BatchKind {
	return BatchKind{Tag: BatchComposite, Task: task, Source: source, Backdrop: backdrop}
}

// ImageKind returns the kind of an image sampled as buffer.
func ImageKind(buffer ImageBufferKind) BatchKind {
	return BatchKind{Tag: BatchImage, Buffer: buffer}
}

// YuvImageKind returns the kind of a YUV image.
func YuvImageKind(buffer ImageBufferKind, format prim.YuvFormat, space prim.YuvColorSpace) BatchKind {
	return BatchKind{Tag: BatchYuvImage, Buffer: buffer, Format: format, ColorSpace: space}
}

// String returns the string representation of BatchKind.
func (k BatchKind) String() string {
	switch k.Tag {
	case BatchComposite:
		return fmt.Sprintf("Composite(%v, %v, %v)", k.Task, k.Source, k.Backdrop)
	case BatchImage:
		return fmt.Sprintf("Image(%v)", k.Buffer)
	case BatchYuvImage:
		return fmt.Sprintf("YuvImage(%v, %d, %d)", k.Buffer, k.Format, k.ColorSpace)
	default:
		return k.Tag.String()
	}
}

// BatchFlags are the shader permutation flags of a batch.
type BatchFlags struct {
	Transform     core.TransformKind
	NeedsClipping bool
}

// BatchTextures are the up to three textures a batch samples.
// Unused slots hold [resource.InvalidTexture].
type BatchTextures struct {
	Colors [3]resource.SourceTexture
}

// NoTextures returns a texture set with every slot unused.
func NoTextures() BatchTextures {
	return BatchTextures{Colors: [3]resource.SourceTexture{resource.InvalidTexture, resource.InvalidTexture, resource.InvalidTexture}}
}

// ColorTexture returns a texture set sampling only tex.
func ColorTexture(tex resource.SourceTexture) BatchTextures {
	t := NoTextures()
	t.Colors[0] = tex
	return t
}

// RenderTargetTextures returns the texture set of batches reading the
// render target cache of earlier passes.
func RenderTargetTextures() BatchTextures {
	return ColorTexture(resource.CacheRGBA8)
}

func texturesCompatible(a, b resource.SourceTexture) bool {
	return !a.IsValid() || !b.IsValid() || a == b
}

// BatchKey decides which instances can share a draw call.
type BatchKey struct {
	Kind     BatchKind
	Flags    BatchFlags
	Blend    BlendMode
	Textures BatchTextures
}

// IsCompatibleWith reports whether instances keyed k and other can be drawn
// in the same batch: equal kind, flags and blend mode, and every texture slot
// equal or unused on either side.
//
// The relation is reflexive and symmetric. Composites are kept out of shared
// batches by the batch list, which never searches for them.
func (k BatchKey) IsCompatibleWith(other BatchKey) bool {
	if k.Kind != other.Kind || k.Flags != other.Flags || k.Blend != other.Blend {
		return false
	}
	for i := range k.Textures.Colors {
		if !texturesCompatible(k.Textures.Colors[i], other.Textures.Colors[i]) {
			return false
		}
	}
	return true
}

// merge fills unused texture slots of k from other.
func (k *BatchKey) merge(other BatchKey) {
	for i, t := range other.Textures.Colors {
		if !k.Textures.Colors[i].IsValid() {
			k.Textures.Colors[i] = t
		}
	}
}
