// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rendertask

import (
	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/gpucache"
	"github.com/gogpu/tiling/resource"
)

// ClipDataBlocks is the number of GPU cache blocks one clip occupies.
const ClipDataBlocks = 10

// ClipAddressRange is a run of Count clips stored back to back in the GPU
// cache, ClipDataBlocks apart.
type ClipAddressRange struct {
	Start gpucache.Handle
	Count int
}

// ImageMask is a clip whose mask comes from an image.
type ImageMask struct {
	Key     resource.ImageKey
	Address gpucache.Handle
}

// BorderCornerClip is a border-corner clip drawn as one clear followed by
// ClipCount refinements.
type BorderCornerClip struct {
	Address   gpucache.Handle
	ClipCount int
}

// MaskCacheInfo describes every clip applied by one layer.
type MaskCacheInfo struct {
	// ComplexClips are rounded rectangles.
	ComplexClips ClipAddressRange

	// LayerClips are the layer's own clip rectangles.
	LayerClips ClipAddressRange

	Image         *ImageMask
	BorderCorners []BorderCornerClip
}

// ClipWorkItem pairs a layer with the clips it contributes to a mask.
type ClipWorkItem struct {
	Layer core.LayerIndex
	Clip  MaskCacheInfo
}
