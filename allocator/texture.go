// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package allocator

import "image"

// TextureAllocator packs rectangles into one atlas page and tracks the
// union of everything placed so far.
type TextureAllocator struct {
	packer *Guillotine
	used   image.Rectangle
}

// NewTextureAllocator returns an allocator for a page of the given size.
func NewTextureAllocator(size image.Point) *TextureAllocator {
	return &TextureAllocator{packer: NewGuillotine(size)}
}

// Allocate places a rectangle of the given size on the page.
// On success the used rectangle grows to include the placement.
func (a *TextureAllocator) Allocate(size image.Point) (image.Point, bool) {
	origin, ok := a.packer.Allocate(size)
	if !ok {
		return image.Point{}, false
	}
	placed := image.Rectangle{Min: origin, Max: origin.Add(size)}
	if !placed.Empty() {
		a.used = a.used.Union(placed)
	}
	return origin, true
}

// UsedRect returns the union of all placed rectangles.
// Clears of the page only need to cover this area.
func (a *TextureAllocator) UsedRect() image.Rectangle {
	return a.used
}

// Size returns the page size.
func (a *TextureAllocator) Size() image.Point {
	return a.packer.Size()
}

// Allocations returns the number of non-empty placements on the page.
func (a *TextureAllocator) Allocations() int {
	return a.packer.Allocations()
}

// Reset empties the page.
func (a *TextureAllocator) Reset() {
	a.packer.Reset()
	a.used = image.Rectangle{}
}
