// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"fmt"
	"math"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/gpucache"
	"github.com/gogpu/tiling/prim"
	"github.com/gogpu/tiling/rendertask"
	"github.com/gogpu/tiling/resource"
)

// DeferredResolve is an external image whose UV block the render thread
// must write before the frame is drawn.
type DeferredResolve struct {
	Properties resource.ImageProperties
	Address    gpucache.Address
}

// batchContext is what batching reads during one frame build.
type batchContext struct {
	cfg       *Config
	tree      *rendertask.Tree
	prims     *prim.Store
	layers    []prim.PackedLayer
	resources resource.ResourceCache
	gpu       gpucache.GpuCache
	deferred  []DeferredResolve
}

func (c *batchContext) address(h gpucache.Handle) int32 {
	return c.gpu.Address(h).AsInt()
}

func (c *batchContext) layer(i core.LayerIndex) prim.PackedLayer {
	if int(i) < len(c.layers) {
		return c.layers[i]
	}
	return prim.PackedLayer{}
}

// resolveImage returns the texture and UV block of an image. External
// texture images get a per-frame block the render thread fills in. External
// buffers live in the texture cache like regular images.
func (c *batchContext) resolveImage(key resource.ImageKey, rendering resource.ImageRendering, tile *resource.TileOffset) (resource.SourceTexture, gpucache.Handle) {
	props, ok := c.resources.ImageProperties(key)
	if !ok {
		return resource.InvalidTexture, gpucache.Handle{}
	}
	if ext := props.External; ext != nil {
		switch ext.Type {
		case resource.ExternalTexture2D, resource.ExternalTextureRect, resource.ExternalTextureExternal:
			h := c.gpu.PushDeferredPerFrameBlocks(1)
			c.deferred = append(c.deferred, DeferredResolve{Properties: props, Address: c.gpu.Address(h)})
			return resource.ExternalTexture(*ext), h
		}
	}
	item := c.resources.CachedImage(key, rendering, tile)
	return item.Texture, item.UVRect
}

// AlphaBatcher turns the items of alpha tasks into batches.
type AlphaBatcher struct {
	Batches *BatchList
	tasks   []core.TaskID
}

func newAlphaBatcher(lookback int) *AlphaBatcher {
	return &AlphaBatcher{Batches: NewBatchList(lookback)}
}

func (b *AlphaBatcher) add(id core.TaskID) {
	b.tasks = append(b.tasks, id)
}

func (b *AlphaBatcher) build(ctx *batchContext) {
	for _, id := range b.tasks {
		task := ctx.tree.Get(id)
		alpha, ok := task.Kind.(rendertask.Alpha)
		if !ok {
			panic(fmt.Sprintf("tiling: BUG: %v of kind %T in alpha batcher", id, task.Kind))
		}
		taskAddr := ctx.tree.Address(id)
		for _, item := range alpha.Items {
			b.addItem(ctx, id, taskAddr, item)
		}
	}
	b.Batches.Finalize()
}

func (b *AlphaBatcher) addItem(ctx *batchContext, taskID core.TaskID, taskAddr core.TaskAddress, item rendertask.Item) {
	switch it := item.(type) {
	case rendertask.PrimitiveItem:
		b.addPrimitive(ctx, taskAddr, it)

	case rendertask.BlendItem:
		key := BatchKey{
			Kind:     Kind(BatchBlend),
			Blend:    BlendModePremultipliedAlpha,
			Textures: RenderTargetTextures(),
		}
		mode, amount := filterParams(it.Filter)
		inst := CompositeInstance{
			Task:   taskAddr,
			Source: ctx.tree.Address(it.Source),
			Z:      it.Z,
			Data0:  mode,
			Data1:  amount,
		}
		b.Batches.Push(key, it.Bounds, inst.Instance())

	case rendertask.HardwareCompositeItem:
		key := BatchKey{
			Kind:     Kind(BatchHardwareComposite),
			Blend:    hardwareBlend(it.Op),
			Textures: RenderTargetTextures(),
		}
		r := it.Bounds
		inst := CompositeInstance{
			Task:   taskAddr,
			Source: ctx.tree.Address(it.Source),
			Z:      it.Z,
			Data0:  int32(r.Min.X),
			Data1:  int32(r.Min.Y),
			Data2:  int32(r.Dx()),
			Data3:  int32(r.Dy()),
		}
		b.Batches.Push(key, r, inst.Instance())

	case rendertask.SplitCompositeItem:
		key := BatchKey{
			Kind:     Kind(BatchSplitComposite),
			Blend:    BlendModePremultipliedAlpha,
			Textures: RenderTargetTextures(),
		}
		inst := CompositeInstance{
			Task:   taskAddr,
			Source: ctx.tree.Address(it.Source),
			Z:      it.Z,
			Data0:  ctx.address(it.Plane),
		}
		b.Batches.Push(key, it.Bounds, inst.Instance())

	case rendertask.CompositeItem:
		key := BatchKey{
			Kind:     CompositeKind(taskID, it.Source, it.Backdrop),
			Blend:    BlendModeAlpha,
			Textures: NoTextures(),
		}
		inst := CompositeInstance{
			Task:     taskAddr,
			Source:   ctx.tree.Address(it.Source),
			Backdrop: ctx.tree.Address(it.Backdrop),
			Z:        it.Z,
			Data0:    int32(it.Mode),
		}
		b.Batches.Push(key, it.Bounds, inst.Instance())

	default:
		panic(fmt.Sprintf("tiling: BUG: unknown alpha item %T", item))
	}
}

// filterParams returns the shader filter mode and the amount in 16-bit
// fixed point.
func filterParams(f rendertask.FilterOp) (mode, amount int32) {
	a := f.Amount
	if f.Kind == rendertask.FilterBlur {
		a = 0
	}
	return int32(f.Kind), int32(math.Round(float64(a) * 65535))
}

func hardwareBlend(op rendertask.HardwareCompositeOp) BlendMode {
	switch op {
	case rendertask.CompositePremultipliedAlpha:
		return BlendModePremultipliedAlpha
	default:
		panic(fmt.Sprintf("tiling: BUG: unknown hardware composite op %v", op))
	}
}

// blendModeFor picks the blend mode of a primitive.
func blendModeFor(kind prim.Kind, needsBlending bool, font resource.FontInstance, color prim.ColorF) BlendMode {
	switch kind {
	case prim.KindTextRun:
		if font.RenderMode == resource.RenderSubpixel {
			return SubpixelBlend(color)
		}
		return BlendModeAlpha
	case prim.KindImage, prim.KindYuvImage, prim.KindAlignedGradient, prim.KindAngleGradient, prim.KindRadialGradient:
		if needsBlending {
			return BlendModePremultipliedAlpha
		}
		return BlendModeNone
	default:
		if needsBlending {
			return BlendModeAlpha
		}
		return BlendModeNone
	}
}

func (b *AlphaBatcher) addPrimitive(ctx *batchContext, taskAddr core.TaskAddress, it rendertask.PrimitiveItem) {
	meta := ctx.prims.Get(it.Prim)
	transform := ctx.layer(it.Layer).Transform
	needsClipping := meta.NeedsClipping()
	needsBlending := !meta.Opaque || needsClipping || transform == core.Complex
	flags := BatchFlags{Transform: transform, NeedsClipping: needsClipping}
	rect := meta.ScreenRect

	clipAddr := core.OpaqueTaskAddress
	if clip, ok := meta.ClipTask.Get(); ok {
		clipAddr = ctx.tree.Address(clip)
	}
	base := baseInstance{
		task:     taskAddr,
		prim:     ctx.address(meta.GpuLocation),
		layer:    it.Layer,
		clipTask: clipAddr,
		z:        it.Z,
	}

	var (
		font     resource.FontInstance
		runColor prim.ColorF
	)
	if meta.Kind == prim.KindTextRun {
		run := &ctx.prims.TextRuns[meta.CPUIndex]
		font = run.FontFor(ctx.cfg.DevicePixelRatio, prim.RunNormal, transform)
		runColor = run.Color
	}
	blend := blendModeFor(meta.Kind, needsBlending, font, runColor)
	key := func(kind BatchKind, textures BatchTextures) BatchKey {
		return BatchKey{Kind: kind, Flags: flags, Blend: blend, Textures: textures}
	}

	switch meta.Kind {
	case prim.KindBorder:
		border := &ctx.prims.Borders[meta.CPUIndex]
		var corners []PrimitiveInstance
		for i, c := range border.Corners {
			switch c {
			case prim.CornerSingle:
				corners = append(corners, base.build(int32(i), int32(prim.SideBoth), 0))
			case prim.CornerDouble:
				corners = append(corners,
					base.build(int32(i), int32(prim.SideFirst), 0),
					base.build(int32(i), int32(prim.SideSecond), 0))
			}
		}
		if len(corners) > 0 {
			b.Batches.Push(key(Kind(BatchBorderCorner), NoTextures()), rect, corners...)
		}
		edges := make([]PrimitiveInstance, 4)
		for i := range edges {
			edges[i] = base.build(int32(i), 0, 0)
		}
		b.Batches.Push(key(Kind(BatchBorderEdge), NoTextures()), rect, edges...)

	case prim.KindRectangle:
		b.Batches.Push(key(Kind(BatchRectangle), NoTextures()), rect, base.build(0, 0, 0))

	case prim.KindLine:
		b.Batches.Push(key(Kind(BatchLine), NoTextures()), rect, base.build(0, 0, 0))

	case prim.KindImage:
		img := &ctx.prims.Images[meta.CPUIndex]
		tex, uv := ctx.resolveImage(img.Key, img.Rendering, img.Tile)
		if !tex.IsValid() {
			Logger().Debug("tiling: skipping image without texture", "key", img.Key, "rect", rect)
			return
		}
		b.Batches.Push(key(ImageKind(bufferKindOf(tex)), ColorTexture(tex)), rect, base.build(ctx.address(uv), 0, 0))

	case prim.KindYuvImage:
		yuv := &ctx.prims.YuvImages[meta.CPUIndex]
		textures := NoTextures()
		var uvs [3]int32
		planes := yuv.Format.Planes()
		for i := range planes {
			tex, uv := ctx.resolveImage(yuv.Planes[i], yuv.Rendering, nil)
			if !tex.IsValid() {
				Logger().Debug("tiling: skipping yuv image without texture", "plane", i, "key", yuv.Planes[i], "rect", rect)
				return
			}
			textures.Colors[i] = tex
			uvs[i] = ctx.address(uv)
		}
		buffer := bufferKindOf(textures.Colors[0])
		if ctx.cfg.DebugChecks {
			for i := 1; i < planes; i++ {
				if k := bufferKindOf(textures.Colors[i]); k != buffer {
					panic(fmt.Sprintf("tiling: BUG: yuv plane %d is %v, plane 0 is %v", i, k, buffer))
				}
			}
		}
		kind := YuvImageKind(buffer, yuv.Format, yuv.ColorSpace)
		b.Batches.Push(key(kind, textures), rect, base.build(uvs[0], uvs[1], uvs[2]))

	case prim.KindTextRun:
		run := &ctx.prims.TextRuns[meta.CPUIndex]
		instances := make([]PrimitiveInstance, 0, len(run.Glyphs))
		first := resource.InvalidTexture
		tex := ctx.resources.Glyphs(font, run.Glyphs, func(index int, t resource.SourceTexture, uv gpucache.Handle) {
			if ctx.cfg.DebugChecks {
				if !first.IsValid() {
					first = t
				} else if t != first {
					panic(fmt.Sprintf("tiling: BUG: glyph %d of one run is in %v, expected %v", index, t, first))
				}
			}
			instances = append(instances, base.build(int32(index), ctx.address(uv), 0))
		})
		if !tex.IsValid() {
			Logger().Debug("tiling: skipping text run without glyph texture", "font", font.Key, "rect", rect)
			return
		}
		if len(instances) == 0 {
			return
		}
		b.Batches.Push(key(Kind(BatchTextRun), ColorTexture(tex)), rect, instances...)

	case prim.KindTextShadow:
		cache := cacheTaskAddress(ctx, meta, it.Prim)
		b.Batches.Push(key(Kind(BatchCacheImage), RenderTargetTextures()), rect, base.build(0, int32(cache), 0))

	case prim.KindBoxShadow:
		shadow := &ctx.prims.BoxShadows[meta.CPUIndex]
		cache := cacheTaskAddress(ctx, meta, it.Prim)
		instances := make([]PrimitiveInstance, len(shadow.Rects))
		for i := range shadow.Rects {
			instances[i] = base.build(int32(i), int32(cache), 0)
		}
		if len(instances) > 0 {
			b.Batches.Push(key(Kind(BatchBoxShadow), ColorTexture(resource.CacheA8)), rect, instances...)
		}

	case prim.KindAlignedGradient:
		g := &ctx.prims.Gradients[meta.CPUIndex]
		if g.StopsCount < 2 {
			return
		}
		instances := make([]PrimitiveInstance, g.StopsCount-1)
		for i := range instances {
			instances[i] = base.build(int32(i), 0, 0)
		}
		b.Batches.Push(key(Kind(BatchAlignedGradient), NoTextures()), rect, instances...)

	case prim.KindAngleGradient:
		b.Batches.Push(key(Kind(BatchAngleGradient), NoTextures()), rect, base.build(0, 0, 0))

	case prim.KindRadialGradient:
		b.Batches.Push(key(Kind(BatchRadialGradient), NoTextures()), rect, base.build(0, 0, 0))

	default:
		panic(fmt.Sprintf("tiling: BUG: unknown primitive kind %v", meta.Kind))
	}
}

func cacheTaskAddress(ctx *batchContext, meta *prim.Metadata, idx core.PrimitiveIndex) core.TaskAddress {
	id, ok := meta.RenderTask.Get()
	if !ok {
		panic(fmt.Sprintf("tiling: BUG: %v primitive %d has no cache task", meta.Kind, idx))
	}
	return ctx.tree.Address(id)
}
