// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package allocator

import (
	"image"
	"testing"
)

func TestTextureAllocator_UsedRect(t *testing.T) {
	a := NewTextureAllocator(image.Pt(128, 128))
	if !a.UsedRect().Empty() {
		t.Fatalf("fresh UsedRect() = %v, want empty", a.UsedRect())
	}

	var placed []image.Rectangle
	for _, sz := range []image.Point{{32, 32}, {10, 50}, {64, 8}} {
		origin, ok := a.Allocate(sz)
		if !ok {
			t.Fatalf("Allocate(%v) failed", sz)
		}
		placed = append(placed, image.Rectangle{Min: origin, Max: origin.Add(sz)})
	}

	var want image.Rectangle
	for _, r := range placed {
		want = want.Union(r)
	}
	if got := a.UsedRect(); got != want {
		t.Errorf("UsedRect() = %v, want %v", got, want)
	}
	for _, r := range placed {
		if !r.In(a.UsedRect()) {
			t.Errorf("placement %v not inside UsedRect() %v", r, a.UsedRect())
		}
	}
}

func TestTextureAllocator_FailureKeepsUsedRect(t *testing.T) {
	a := NewTextureAllocator(image.Pt(64, 64))
	if _, ok := a.Allocate(image.Pt(16, 16)); !ok {
		t.Fatal("Allocate failed")
	}
	before := a.UsedRect()
	if _, ok := a.Allocate(image.Pt(65, 1)); ok {
		t.Fatal("oversized Allocate succeeded")
	}
	if a.UsedRect() != before {
		t.Errorf("UsedRect() changed on failure: %v -> %v", before, a.UsedRect())
	}
}

func TestTextureAllocator_EmptyRequestDoesNotGrowUsedRect(t *testing.T) {
	a := NewTextureAllocator(image.Pt(64, 64))
	if _, ok := a.Allocate(image.Pt(0, 0)); !ok {
		t.Fatal("empty Allocate failed")
	}
	if !a.UsedRect().Empty() {
		t.Errorf("UsedRect() = %v after empty request, want empty", a.UsedRect())
	}
}

func TestTextureAllocator_Reset(t *testing.T) {
	a := NewTextureAllocator(image.Pt(64, 64))
	a.Allocate(image.Pt(64, 64))
	a.Reset()
	if !a.UsedRect().Empty() || a.Allocations() != 0 {
		t.Errorf("Reset left UsedRect=%v Allocations=%d", a.UsedRect(), a.Allocations())
	}
	if _, ok := a.Allocate(image.Pt(64, 64)); !ok {
		t.Error("page-sized allocation failed after Reset")
	}
}
