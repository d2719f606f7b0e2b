// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"image"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/prim"
	"github.com/gogpu/tiling/resource"
)

func testKeys() []BatchKey {
	texA := resource.TextureCacheTexture(1)
	texB := resource.TextureCacheTexture(2)
	return []BatchKey{
		{Kind: Kind(BatchRectangle), Blend: BlendModeAlpha, Textures: NoTextures()},
		{Kind: Kind(BatchRectangle), Blend: BlendModeNone, Textures: NoTextures()},
		{Kind: Kind(BatchRectangle), Flags: BatchFlags{NeedsClipping: true}, Blend: BlendModeAlpha, Textures: NoTextures()},
		{Kind: Kind(BatchRectangle), Flags: BatchFlags{Transform: core.Complex}, Blend: BlendModeAlpha, Textures: NoTextures()},
		{Kind: Kind(BatchLine), Blend: BlendModeAlpha, Textures: NoTextures()},
		{Kind: ImageKind(BufferTexture2D), Blend: BlendModePremultipliedAlpha, Textures: ColorTexture(texA)},
		{Kind: ImageKind(BufferTexture2D), Blend: BlendModePremultipliedAlpha, Textures: ColorTexture(texB)},
		{Kind: ImageKind(BufferTextureRect), Blend: BlendModePremultipliedAlpha, Textures: ColorTexture(texA)},
		{Kind: ImageKind(BufferTexture2D), Blend: BlendModePremultipliedAlpha, Textures: NoTextures()},
		{Kind: YuvImageKind(BufferTexture2D, prim.YuvNV12, prim.Rec601), Blend: BlendModePremultipliedAlpha, Textures: NoTextures()},
		{Kind: YuvImageKind(BufferTexture2D, prim.YuvNV12, prim.Rec709), Blend: BlendModePremultipliedAlpha, Textures: NoTextures()},
		{Kind: Kind(BatchTextRun), Blend: SubpixelBlend(prim.ColorF{R: 1, A: 1}), Textures: ColorTexture(texA)},
		{Kind: Kind(BatchTextRun), Blend: SubpixelBlend(prim.ColorF{G: 1, A: 1}), Textures: ColorTexture(texA)},
		{Kind: CompositeKind(1, 2, 3), Blend: BlendModeAlpha, Textures: NoTextures()},
		{Kind: CompositeKind(1, 2, 4), Blend: BlendModeAlpha, Textures: NoTextures()},
	}
}

func TestBufferKindOf(t *testing.T) {
	tests := []struct {
		tex  resource.SourceTexture
		want ImageBufferKind
	}{
		{resource.TextureCacheTexture(1), BufferTexture2D},
		{resource.ExternalTexture(resource.ExternalImage{ID: 1, Type: resource.ExternalTexture2D}), BufferTexture2D},
		{resource.ExternalTexture(resource.ExternalImage{ID: 2, Type: resource.ExternalTextureRect}), BufferTextureRect},
		{resource.ExternalTexture(resource.ExternalImage{ID: 3, Type: resource.ExternalTextureExternal}), BufferTextureExternal},
	}
	for _, tt := range tests {
		if got := bufferKindOf(tt.tex); got != tt.want {
			t.Errorf("bufferKindOf(%v) = %v, want %v", tt.tex, got, tt.want)
		}
	}

	buf := resource.ExternalTexture(resource.ExternalImage{ID: 4, Type: resource.ExternalBuffer})
	mustPanic(t, "external buffer texture", func() { bufferKindOf(buf) })
}

func TestBatchKey_CompatibilityReflexiveSymmetric(t *testing.T) {
	keys := testKeys()
	for i, a := range keys {
		if !a.IsCompatibleWith(a) {
			t.Errorf("key %d (%v) is not compatible with itself", i, a.Kind)
		}
		for j, b := range keys {
			if a.IsCompatibleWith(b) != b.IsCompatibleWith(a) {
				t.Errorf("compatibility of keys %d and %d is not symmetric", i, j)
			}
		}
	}
}

func TestBatchKey_Compatibility(t *testing.T) {
	keys := testKeys()
	tests := []struct {
		name string
		a, b int
		want bool
	}{
		{"different blend", 0, 1, false},
		{"different clip flag", 0, 2, false},
		{"different transform", 0, 3, false},
		{"different kind", 0, 4, false},
		{"different texture", 5, 6, false},
		{"different buffer kind", 5, 7, false},
		{"unused texture slot", 5, 8, true},
		{"unused texture slot, other side", 8, 6, true},
		{"different color space", 9, 10, false},
		{"different subpixel color", 11, 12, false},
		{"different composite backdrop", 13, 14, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keys[tt.a].IsCompatibleWith(keys[tt.b]); got != tt.want {
				t.Errorf("IsCompatibleWith() = %v, want %v", got, tt.want)
			}
		})
	}
}

func batchIndex(batches []PrimitiveBatch, b *PrimitiveBatch) int {
	for i := range batches {
		if &batches[i] == b {
			return i
		}
	}
	return -1
}

func TestAlphaBatchList_NoReorderAcrossOverlap(t *testing.T) {
	keys := testKeys()
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 20; round++ {
		list := NewBatchList(DefaultBatchLookback)
		var rects []image.Rectangle
		var assigned []int
		for i := 0; i < 200; i++ {
			key := keys[rng.IntN(len(keys))]
			key.Blend = BlendModeAlpha
			x, y := rng.IntN(400), rng.IntN(400)
			r := image.Rect(x, y, x+1+rng.IntN(60), y+1+rng.IntN(60))
			b := list.Push(key, r, PrimitiveInstance{Z: int32(i)})
			rects = append(rects, r)
			assigned = append(assigned, batchIndex(list.Alpha.Batches, b))
		}
		for i := range rects {
			for j := i + 1; j < len(rects); j++ {
				if rects[i].Overlaps(rects[j]) && assigned[j] < assigned[i] {
					t.Fatalf("round %d: instance %d (batch %d) overlaps earlier instance %d (batch %d)",
						round, j, assigned[j], i, assigned[i])
				}
			}
		}
	}
}

func TestAlphaBatchList_MergesPastDisjointBatches(t *testing.T) {
	list := NewBatchList(DefaultBatchLookback)
	rect := BatchKey{Kind: Kind(BatchRectangle), Blend: BlendModeAlpha, Textures: NoTextures()}
	line := BatchKey{Kind: Kind(BatchLine), Blend: BlendModeAlpha, Textures: NoTextures()}

	list.Push(rect, image.Rect(0, 0, 10, 10), PrimitiveInstance{Z: 0})
	list.Push(line, image.Rect(20, 0, 30, 10), PrimitiveInstance{Z: 1})
	list.Push(rect, image.Rect(40, 0, 50, 10), PrimitiveInstance{Z: 2})

	if got := len(list.Alpha.Batches); got != 2 {
		t.Fatalf("len(Batches) = %d, want 2", got)
	}
	if got := len(list.Alpha.Batches[0].Instances); got != 2 {
		t.Errorf("first batch has %d instances, want 2", got)
	}

	// An overlapping line blocks merging into the first batch.
	list.Push(line, image.Rect(60, 0, 70, 10), PrimitiveInstance{Z: 3})
	list.Push(rect, image.Rect(65, 5, 75, 15), PrimitiveInstance{Z: 4})
	if got := len(list.Alpha.Batches); got != 3 {
		t.Errorf("len(Batches) = %d after overlap, want 3", got)
	}
}

func TestAlphaBatchList_Lookback(t *testing.T) {
	list := NewBatchList(DefaultBatchLookback)
	tags := []BatchKindTag{
		BatchRectangle, BatchLine, BatchBorderCorner, BatchBorderEdge, BatchTextRun, BatchCacheImage,
		BatchBoxShadow, BatchAlignedGradient, BatchAngleGradient, BatchRadialGradient, BatchBlend,
	}
	for i, tag := range tags {
		key := BatchKey{Kind: Kind(tag), Blend: BlendModeAlpha, Textures: NoTextures()}
		list.Push(key, image.Rect(i*10, 0, i*10+5, 5))
	}
	if len(list.Alpha.Batches) != len(tags) {
		t.Fatalf("len(Batches) = %d, want %d", len(list.Alpha.Batches), len(tags))
	}

	// The first batch is 11 batches back, outside the window.
	first := BatchKey{Kind: Kind(BatchRectangle), Blend: BlendModeAlpha, Textures: NoTextures()}
	list.Push(first, image.Rect(500, 500, 510, 510))
	if got := len(list.Alpha.Batches); got != len(tags)+1 {
		t.Errorf("len(Batches) = %d, want %d", got, len(tags)+1)
	}

	wide := NewBatchList(len(tags) + 1)
	for i, tag := range tags {
		key := BatchKey{Kind: Kind(tag), Blend: BlendModeAlpha, Textures: NoTextures()}
		wide.Push(key, image.Rect(i*10, 0, i*10+5, 5))
	}
	wide.Push(first, image.Rect(500, 500, 510, 510))
	if got := len(wide.Alpha.Batches); got != len(tags) {
		t.Errorf("wide window: len(Batches) = %d, want %d", got, len(tags))
	}
}

func TestAlphaBatchList_CompositeIsolation(t *testing.T) {
	list := NewBatchList(DefaultBatchLookback)
	rect := BatchKey{Kind: Kind(BatchRectangle), Blend: BlendModeAlpha, Textures: NoTextures()}
	composite := BatchKey{Kind: CompositeKind(0, 1, 2), Blend: BlendModeAlpha, Textures: NoTextures()}

	var composites []int
	for i := 0; i < 12; i++ {
		r := image.Rect(i*10, 0, i*10+5, 5)
		if i%3 == 0 {
			before := len(list.Alpha.Batches)
			b := list.Push(composite, r, PrimitiveInstance{Z: int32(i)})
			idx := batchIndex(list.Alpha.Batches, b)
			if idx != before {
				t.Fatalf("composite %d went to existing batch %d", i, idx)
			}
			composites = append(composites, idx)
			continue
		}
		list.Push(rect, r, PrimitiveInstance{Z: int32(i)})
	}
	for _, idx := range composites {
		if n := len(list.Alpha.Batches[idx].Instances); n != 1 {
			t.Errorf("composite batch %d has %d instances, want 1", idx, n)
		}
	}
}

func TestOpaqueBatchList_FinalizeReverses(t *testing.T) {
	list := NewBatchList(DefaultBatchLookback)
	key := BatchKey{Kind: Kind(BatchRectangle), Blend: BlendModeNone, Textures: NoTextures()}
	a, b, c := PrimitiveInstance{Z: 1}, PrimitiveInstance{Z: 2}, PrimitiveInstance{Z: 3}

	// Opaque batches merge regardless of overlap.
	list.Push(key, image.Rect(0, 0, 10, 10), a)
	list.Push(key, image.Rect(0, 0, 10, 10), b)
	list.Push(key, image.Rect(0, 0, 10, 10), c)
	if len(list.Opaque.Batches) != 1 || len(list.Alpha.Batches) != 0 {
		t.Fatalf("got %d opaque and %d alpha batches, want 1 and 0", len(list.Opaque.Batches), len(list.Alpha.Batches))
	}

	list.Finalize()
	want := []PrimitiveInstance{c, b, a}
	if got := list.Opaque.Batches[0].Instances; !slices.Equal(got, want) {
		t.Errorf("Instances = %v, want %v", got, want)
	}
}

func TestBatchList_FillsUnusedTextureSlots(t *testing.T) {
	list := NewBatchList(DefaultBatchLookback)
	tex := resource.TextureCacheTexture(7)
	untextured := BatchKey{Kind: ImageKind(BufferTexture2D), Blend: BlendModePremultipliedAlpha, Textures: NoTextures()}
	textured := untextured
	textured.Textures = ColorTexture(tex)

	list.Push(untextured, image.Rect(0, 0, 1, 1))
	b := list.Push(textured, image.Rect(2, 2, 3, 3))
	if b.Key.Textures.Colors[0] != tex {
		t.Errorf("batch texture = %v, want %v", b.Key.Textures.Colors[0], tex)
	}

	other := untextured
	other.Textures = ColorTexture(resource.TextureCacheTexture(8))
	list.Push(other, image.Rect(4, 4, 5, 5))
	if got := len(list.Alpha.Batches); got != 2 {
		t.Errorf("len(Batches) = %d, want 2", got)
	}
}

func TestPrimitiveBatch_InstanceData(t *testing.T) {
	b := PrimitiveBatch{Instances: make([]PrimitiveInstance, 3)}
	if got, want := len(b.InstanceData()), 3*8*4; got != want {
		t.Errorf("len(InstanceData()) = %d, want %d", got, want)
	}
}

func TestBlendMode_ColorTargetState(t *testing.T) {
	none := BlendModeNone.ColorTargetState(core.TargetColor.Format())
	if none.Blend != nil {
		t.Error("BlendNone has a blend state")
	}
	if none.Format != core.TargetColor.Format() {
		t.Errorf("Format = %v, want %v", none.Format, core.TargetColor.Format())
	}
	for _, m := range []BlendMode{BlendModeAlpha, BlendModePremultipliedAlpha, SubpixelBlend(prim.ColorF{A: 1})} {
		if m.ColorTargetState(core.TargetColor.Format()).Blend == nil {
			t.Errorf("%v has no blend state", m)
		}
	}
}
