// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"honnef.co/go/safeish"

	"github.com/gogpu/tiling/allocator"
	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/gpucache"
	"github.com/gogpu/tiling/prim"
	"github.com/gogpu/tiling/rendertask"
	"github.com/gogpu/tiling/resource"
)

// renderTarget is implemented by [ColorRenderTarget] and [AlphaRenderTarget].
type renderTarget interface {
	allocate(size image.Point) (image.Point, bool)
	addTask(ctx *batchContext, id core.TaskID)
	build(ctx *batchContext)
}

// ColorRenderTarget is one RGBA page or the framebuffer.
type ColorRenderTarget struct {
	// Batcher holds the batches of every alpha task in the target.
	Batcher *AlphaBatcher

	// TextRunCachePrims are glyphs drawn into text shadow caches, by glyph
	// texture. TextRunTextures lists the keys in first-use order.
	TextRunCachePrims map[resource.SourceTexture][]PrimitiveInstance
	TextRunTextures   []resource.SourceTexture

	// LineCachePrims are lines drawn into text shadow caches.
	LineCachePrims []PrimitiveInstance

	VerticalBlurs   []BlurCommand
	HorizontalBlurs []BlurCommand

	// Readbacks are framebuffer rectangles copied into the target.
	Readbacks []image.Rectangle

	// IsolateClears are task rectangles cleared before drawing.
	IsolateClears []image.Rectangle

	allocator *allocator.TextureAllocator
}

func newColorTarget(page *image.Point, lookback int) *ColorRenderTarget {
	t := &ColorRenderTarget{
		Batcher:           newAlphaBatcher(lookback),
		TextRunCachePrims: make(map[resource.SourceTexture][]PrimitiveInstance),
	}
	if page != nil {
		t.allocator = allocator.NewTextureAllocator(*page)
	}
	return t
}

// IsFramebuffer reports whether the target is the framebuffer.
func (t *ColorRenderTarget) IsFramebuffer() bool {
	return t.allocator == nil
}

// UsedRect returns the union of the rectangles allocated in the target.
func (t *ColorRenderTarget) UsedRect() image.Rectangle {
	if t.allocator == nil {
		return image.Rectangle{}
	}
	return t.allocator.UsedRect()
}

func (t *ColorRenderTarget) allocate(size image.Point) (image.Point, bool) {
	if t.allocator == nil {
		return image.Point{}, false
	}
	return t.allocator.Allocate(size)
}

func (t *ColorRenderTarget) addTask(ctx *batchContext, id core.TaskID) {
	task := ctx.tree.Get(id)
	switch k := task.Kind.(type) {
	case rendertask.Alias:
		panic(fmt.Sprintf("tiling: BUG: add_task() called on invalidated %v", id))

	case rendertask.Alpha:
		t.Batcher.add(id)
		if k.IsolateClear {
			t.IsolateClears = append(t.IsolateClears, task.Location.Rect())
		}

	case rendertask.VerticalBlur, rendertask.HorizontalBlur:
		if len(task.Children) != 1 {
			panic(fmt.Sprintf("tiling: BUG: blur %v has %d children", id, len(task.Children)))
		}
		dir, _ := blurDirectionOf(k)
		cmd := BlurCommand{
			TaskAddress:   ctx.tree.Address(id),
			SourceAddress: ctx.tree.Address(task.Children[0]),
			Direction:     dir,
		}
		if dir == BlurVertical {
			t.VerticalBlurs = append(t.VerticalBlurs, cmd)
		} else {
			t.HorizontalBlurs = append(t.HorizontalBlurs, cmd)
		}

	case rendertask.CachePrimitive:
		t.addCachePrimitive(ctx, id, k.Prim)

	case rendertask.Readback:
		t.Readbacks = append(t.Readbacks, k.Rect)

	default:
		panic(fmt.Sprintf("tiling: BUG: %v of kind %T added to a color target", id, task.Kind))
	}
}

// addCachePrimitive draws the text runs and lines of a text shadow into the
// shadow's cache task. Cache draws are not depth tested or clipped.
func (t *ColorRenderTarget) addCachePrimitive(ctx *batchContext, id core.TaskID, idx core.PrimitiveIndex) {
	meta := ctx.prims.Get(idx)
	if meta.Kind != prim.KindTextShadow {
		panic(fmt.Sprintf("tiling: BUG: cannot cache %v primitive %d", meta.Kind, idx))
	}
	shadow := &ctx.prims.TextShadows[meta.CPUIndex]
	shadowAddr := ctx.address(meta.GpuLocation)
	taskAddr := ctx.tree.Address(id)

	for _, sub := range shadow.Primitives {
		subMeta := ctx.prims.Get(sub)
		base := baseInstance{task: taskAddr, prim: ctx.address(subMeta.GpuLocation)}
		switch subMeta.Kind {
		case prim.KindTextRun:
			run := &ctx.prims.TextRuns[subMeta.CPUIndex]
			font := run.FontFor(ctx.cfg.DevicePixelRatio, prim.RunShadow, core.AxisAligned)
			ctx.resources.Glyphs(font, run.Glyphs, func(index int, tex resource.SourceTexture, uv gpucache.Handle) {
				if !tex.IsValid() {
					return
				}
				if _, seen := t.TextRunCachePrims[tex]; !seen {
					t.TextRunTextures = append(t.TextRunTextures, tex)
				}
				t.TextRunCachePrims[tex] = append(t.TextRunCachePrims[tex], base.build(int32(index), ctx.address(uv), shadowAddr))
			})
		case prim.KindLine:
			t.LineCachePrims = append(t.LineCachePrims, base.build(shadowAddr, 0, 0))
		default:
			panic(fmt.Sprintf("tiling: BUG: unexpected %v primitive %d in text shadow", subMeta.Kind, sub))
		}
	}
}

func (t *ColorRenderTarget) build(ctx *batchContext) {
	t.Batcher.build(ctx)
}

// BlurData returns the vertical and then the horizontal blur commands as
// raw bytes.
func (t *ColorRenderTarget) BlurData() (vertical, horizontal []byte) {
	return safeish.SliceCast[[]byte](t.VerticalBlurs), safeish.SliceCast[[]byte](t.HorizontalBlurs)
}

// AlphaRenderTarget is one A8 page.
type AlphaRenderTarget struct {
	ClipBatcher *ClipBatcher

	// BoxShadowCachePrims are box shadows drawn into their cache tasks.
	BoxShadowCachePrims []PrimitiveInstance

	allocator *allocator.TextureAllocator
}

func newAlphaTarget(page image.Point) *AlphaRenderTarget {
	return &AlphaRenderTarget{
		ClipBatcher: newClipBatcher(),
		allocator:   allocator.NewTextureAllocator(page),
	}
}

// UsedRect returns the union of the rectangles allocated in the target.
func (t *AlphaRenderTarget) UsedRect() image.Rectangle {
	return t.allocator.UsedRect()
}

func (t *AlphaRenderTarget) allocate(size image.Point) (image.Point, bool) {
	return t.allocator.Allocate(size)
}

func (t *AlphaRenderTarget) addTask(ctx *batchContext, id core.TaskID) {
	task := ctx.tree.Get(id)
	switch k := task.Kind.(type) {
	case rendertask.Alias:
		panic(fmt.Sprintf("tiling: BUG: add_task() called on invalidated %v", id))

	case rendertask.BoxShadow:
		meta := ctx.prims.Get(k.Prim)
		if meta.Kind != prim.KindBoxShadow {
			panic(fmt.Sprintf("tiling: BUG: box shadow task %v draws %v primitive %d", id, meta.Kind, k.Prim))
		}
		base := baseInstance{task: ctx.tree.Address(id), prim: ctx.address(meta.GpuLocation)}
		t.BoxShadowCachePrims = append(t.BoxShadowCachePrims, base.build(0, 0, 0))

	case rendertask.CacheMask:
		t.ClipBatcher.add(ctx, ctx.tree.Address(id), k.Clips, k.Geometry)

	default:
		panic(fmt.Sprintf("tiling: BUG: %v of kind %T added to an alpha target", id, task.Kind))
	}
}

func (t *AlphaRenderTarget) build(*batchContext) {}

// RenderTargetList is the list of pages of one target kind in a pass.
type RenderTargetList[T renderTarget] struct {
	Targets []T

	kind      core.TargetKind
	pageSize  image.Point
	newTarget func() T

	// MaxSize is the largest task size scheduled into the list.
	MaxSize image.Point

	fixed       int
	allocations int
}

func newColorTargetList(cfg *Config, framebuffer bool) *RenderTargetList[*ColorRenderTarget] {
	page := cfg.PageSize
	l := &RenderTargetList[*ColorRenderTarget]{
		kind:      core.TargetColor,
		pageSize:  page,
		newTarget: func() *ColorRenderTarget { return newColorTarget(&page, cfg.BatchLookback) },
	}
	if framebuffer {
		l.Targets = append(l.Targets, newColorTarget(nil, cfg.BatchLookback))
		l.fixed = 1
	}
	return l
}

func newAlphaTargetList(cfg *Config) *RenderTargetList[*AlphaRenderTarget] {
	page := cfg.PageSize
	return &RenderTargetList[*AlphaRenderTarget]{
		kind:      core.TargetAlpha,
		pageSize:  page,
		newTarget: func() *AlphaRenderTarget { return newAlphaTarget(page) },
	}
}

// Kind returns the target kind of the list.
func (l *RenderTargetList[T]) Kind() core.TargetKind {
	return l.kind
}

// Format returns the texture format of the list's pages.
func (l *RenderTargetList[T]) Format() gputypes.TextureFormat {
	return l.kind.Format()
}

// TextureSize returns the size of the texture array backing the list, one
// layer per page. The framebuffer is not a layer.
func (l *RenderTargetList[T]) TextureSize() gputypes.Extent3D {
	return gputypes.Extent3D{
		Width:              uint32(l.pageSize.X),
		Height:             uint32(l.pageSize.Y),
		DepthOrArrayLayers: uint32(len(l.Targets) - l.fixed),
	}
}

// Allocations returns how many rectangles were allocated from the list.
func (l *RenderTargetList[T]) Allocations() int {
	return l.allocations
}

// Allocate places a rectangle of size in the most recent page, opening a
// new page when it does not fit. A size larger than a page is a caller bug.
func (l *RenderTargetList[T]) Allocate(size image.Point) (image.Point, core.TargetIndex) {
	if size.X > l.pageSize.X || size.Y > l.pageSize.Y {
		panic(fmt.Sprintf("tiling: BUG: %v task of size %v exceeds page size %v", l.kind, size, l.pageSize))
	}
	l.allocations++
	if n := len(l.Targets); n > 0 {
		if origin, ok := l.Targets[n-1].allocate(size); ok {
			return origin, core.TargetIndex(n - 1)
		}
	}
	t := l.newTarget()
	origin, ok := t.allocate(size)
	if !ok {
		panic(fmt.Sprintf("tiling: BUG: %v task of size %v does not fit an empty page", l.kind, size))
	}
	l.Targets = append(l.Targets, t)
	Logger().Debug("tiling: opened render target", "kind", l.kind, "index", len(l.Targets)-1)
	return origin, core.TargetIndex(len(l.Targets) - 1)
}

// addTask hands a task to the most recent page.
func (l *RenderTargetList[T]) addTask(ctx *batchContext, id core.TaskID) {
	if len(l.Targets) == 0 {
		panic(fmt.Sprintf("tiling: BUG: %v added to an empty %v target list", id, l.kind))
	}
	l.Targets[len(l.Targets)-1].addTask(ctx, id)
}

func (l *RenderTargetList[T]) build(ctx *batchContext) {
	for _, t := range l.Targets {
		t.build(ctx)
	}
}

// Len returns the number of targets.
func (l *RenderTargetList[T]) Len() int {
	return len(l.Targets)
}
