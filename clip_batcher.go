// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"honnef.co/go/safeish"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/rendertask"
	"github.com/gogpu/tiling/resource"
)

// ClipBatcher collects the clip-mask instances of an alpha target.
// Mask accumulation is order independent, so instances are grouped only by
// the texture they sample.
type ClipBatcher struct {
	Rectangles   []CacheClipInstance
	Images       map[resource.SourceTexture][]CacheClipInstance
	BorderClears []CacheClipInstance
	Borders      []CacheClipInstance

	// ImageTextures lists the keys of Images in first-use order.
	ImageTextures []resource.SourceTexture
}

func newClipBatcher() *ClipBatcher {
	return &ClipBatcher{Images: make(map[resource.SourceTexture][]CacheClipInstance)}
}

// add emits the instances of every clip of a mask task.
func (b *ClipBatcher) add(ctx *batchContext, taskAddr core.TaskAddress, clips []rendertask.ClipWorkItem, geometry rendertask.MaskGeometryKind) {
	for _, work := range clips {
		base := CacheClipInstance{TaskAddress: taskAddr, LayerIndex: work.Layer}
		info := &work.Clip

		if n := info.ComplexClips.Count; n > 0 {
			start := ctx.address(info.ComplexClips.Start)
			for i := 0; i < n; i++ {
				inst := base
				inst.ClipDataAddress = start + int32(i*rendertask.ClipDataBlocks)
				if geometry == rendertask.GeometryCornersOnly {
					for _, seg := range cornerSegments {
						inst.Segment = int32(seg)
						b.Rectangles = append(b.Rectangles, inst)
					}
					continue
				}
				inst.Segment = int32(SegmentAll)
				b.Rectangles = append(b.Rectangles, inst)
			}
		}

		if n := info.LayerClips.Count; n > 0 {
			start := ctx.address(info.LayerClips.Start)
			for i := 0; i < n; i++ {
				inst := base
				inst.ClipDataAddress = start + int32(i*rendertask.ClipDataBlocks)
				inst.Segment = int32(SegmentAll)
				b.Rectangles = append(b.Rectangles, inst)
			}
		}

		if mask := info.Image; mask != nil {
			item := ctx.resources.CachedImage(mask.Key, resource.RenderingAuto, nil)
			if !item.Texture.IsValid() {
				Logger().Debug("tiling: skipping image clip without texture", "key", mask.Key)
			} else {
				inst := base
				inst.Segment = int32(SegmentAll)
				inst.ClipDataAddress = ctx.address(mask.Address)
				inst.ResourceAddress = ctx.address(item.UVRect)
				if _, seen := b.Images[item.Texture]; !seen {
					b.ImageTextures = append(b.ImageTextures, item.Texture)
				}
				b.Images[item.Texture] = append(b.Images[item.Texture], inst)
			}
		}

		for _, corner := range info.BorderCorners {
			inst := base
			inst.ClipDataAddress = ctx.address(corner.Address)
			b.BorderClears = append(b.BorderClears, inst)
			for i := 0; i < corner.ClipCount; i++ {
				inst.Segment = int32(1 + i)
				b.Borders = append(b.Borders, inst)
			}
		}
	}
}

// InstanceCount returns the number of clip instances.
func (b *ClipBatcher) InstanceCount() int {
	n := len(b.Rectangles) + len(b.BorderClears) + len(b.Borders)
	for _, v := range b.Images {
		n += len(v)
	}
	return n
}

// RectangleData returns the rectangle clip instances as raw bytes.
func (b *ClipBatcher) RectangleData() []byte {
	return safeish.SliceCast[[]byte](b.Rectangles)
}
