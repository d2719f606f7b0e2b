// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package allocator

import (
	"image"
	"testing"
)

func TestGuillotine_PageSizedRequest(t *testing.T) {
	page := image.Pt(256, 128)
	g := NewGuillotine(page)

	origin, ok := g.Allocate(page)
	if !ok {
		t.Fatal("page-sized allocation on a fresh page failed")
	}
	if origin != (image.Point{}) {
		t.Errorf("origin = %v, want (0,0)", origin)
	}
	if _, ok := g.Allocate(page); ok {
		t.Error("second page-sized allocation succeeded, want failure")
	}
	if _, ok := g.Allocate(image.Pt(1, 1)); ok {
		t.Error("allocation on a full page succeeded, want failure")
	}

	g.Reset()
	if _, ok := g.Allocate(page); !ok {
		t.Error("page-sized allocation after Reset failed")
	}
}

func TestGuillotine_Oversized(t *testing.T) {
	tests := []struct {
		name string
		size image.Point
	}{
		{"wider", image.Pt(65, 1)},
		{"taller", image.Pt(1, 65)},
		{"both", image.Pt(100, 100)},
		{"negative", image.Pt(-1, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuillotine(image.Pt(64, 64))
			if _, ok := g.Allocate(tt.size); ok {
				t.Errorf("Allocate(%v) succeeded on a 64x64 page", tt.size)
			}
			if g.Allocations() != 0 {
				t.Errorf("Allocations() = %d, want 0", g.Allocations())
			}
		})
	}
}

func TestGuillotine_EmptyRequest(t *testing.T) {
	g := NewGuillotine(image.Pt(64, 64))
	origin, ok := g.Allocate(image.Pt(0, 10))
	if !ok || origin != (image.Point{}) {
		t.Errorf("Allocate(0x10) = (%v, %v), want ((0,0), true)", origin, ok)
	}
	if g.Allocations() != 0 {
		t.Errorf("empty request counted as allocation")
	}
	if _, ok := g.Allocate(image.Pt(64, 64)); !ok {
		t.Error("empty request consumed page space")
	}
}

func TestGuillotine_NoOverlap(t *testing.T) {
	page := image.Pt(512, 512)
	g := NewGuillotine(page)
	bounds := image.Rectangle{Max: page}

	sizes := []image.Point{
		{100, 40}, {8, 8}, {64, 64}, {200, 17}, {33, 90}, {12, 300}, {5, 5},
		{128, 128}, {16, 48}, {70, 70}, {250, 30}, {31, 31}, {1, 200},
	}
	var placed []image.Rectangle
	for round := 0; round < 4; round++ {
		for _, sz := range sizes {
			origin, ok := g.Allocate(sz)
			if !ok {
				continue
			}
			r := image.Rectangle{Min: origin, Max: origin.Add(sz)}
			if !r.In(bounds) {
				t.Fatalf("allocation %v outside page %v", r, bounds)
			}
			for _, p := range placed {
				if p.Overlaps(r) {
					t.Fatalf("allocation %v overlaps earlier allocation %v", r, p)
				}
			}
			placed = append(placed, r)
		}
	}
	if len(placed) == 0 {
		t.Fatal("no allocation succeeded")
	}
	if g.Allocations() != len(placed) {
		t.Errorf("Allocations() = %d, want %d", g.Allocations(), len(placed))
	}
}

func TestGuillotine_SplitKeepsLargerLeftover(t *testing.T) {
	g := NewGuillotine(image.Pt(64, 64))
	// Equal leftover areas cut horizontally, leaving a full-width bottom strip.
	if _, ok := g.Allocate(image.Pt(16, 16)); !ok {
		t.Fatal("allocation failed")
	}
	origin, ok := g.Allocate(image.Pt(64, 48))
	if !ok {
		t.Fatal("full-width strip below the first allocation is not free")
	}
	if want := image.Pt(0, 16); origin != want {
		t.Errorf("origin = %v, want %v", origin, want)
	}
}

func TestGuillotine_CoalesceOnMiss(t *testing.T) {
	g := NewGuillotine(image.Pt(64, 32))

	// 16x16 cuts vertically: 48x32 on the right, 16x16 below.
	if _, ok := g.Allocate(image.Pt(16, 16)); !ok {
		t.Fatal("first allocation failed")
	}
	// 48x16 at (16,0) leaves 48x16 at (16,16), beside the 16x16 leftover.
	if origin, ok := g.Allocate(image.Pt(48, 16)); !ok || origin != image.Pt(16, 0) {
		t.Fatalf("second allocation = (%v, %v), want ((16,0), true)", origin, ok)
	}
	if g.FreeRects() != 2 {
		t.Fatalf("FreeRects() = %d, want 2", g.FreeRects())
	}

	origin, ok := g.Allocate(image.Pt(64, 16))
	if !ok {
		t.Fatal("full-width row did not fit after coalescing")
	}
	if want := image.Pt(0, 16); origin != want {
		t.Errorf("origin = %v, want %v", origin, want)
	}
}

func TestBinFor(t *testing.T) {
	tests := []struct {
		size image.Point
		want bin
	}{
		{image.Pt(1, 1), binSmall},
		{image.Pt(15, 100), binSmall},
		{image.Pt(16, 16), binMedium},
		{image.Pt(31, 64), binMedium},
		{image.Pt(32, 32), binLarge},
		{image.Pt(2048, 2048), binLarge},
	}
	for _, tt := range tests {
		if got := binFor(tt.size); got != tt.want {
			t.Errorf("binFor(%v) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestNewGuillotine_InvalidSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewGuillotine(0x0) did not panic")
		}
	}()
	NewGuillotine(image.Point{})
}
