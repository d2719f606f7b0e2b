// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package allocator packs rectangular render-task requests into fixed-size
// atlas pages.
//
// [Guillotine] implements guillotine bin packing: every placement splits the
// chosen free rectangle into at most two leftovers along a single cut.
// [TextureAllocator] wraps it and tracks the used sub-rectangle of the page so
// that clears can be restricted to the area actually drawn.
//
// Allocations live for exactly one frame. There is no deallocation; pages are
// rebuilt from scratch every frame.
package allocator

import (
	"fmt"
	"image"
)

// Free rectangles are bucketed by size so that small requests do not
// fragment large free areas.
const (
	minMediumRectSize = 16
	minLargeRectSize  = 32
)

// bin is a size class of the free list.
type bin int

const (
	binSmall bin = iota
	binMedium
	binLarge
	binCount
)

// binFor returns the smallest bin that may hold a rectangle of the given size.
func binFor(size image.Point) bin {
	switch {
	case size.X >= minLargeRectSize && size.Y >= minLargeRectSize:
		return binLarge
	case size.X >= minMediumRectSize && size.Y >= minMediumRectSize:
		return binMedium
	default:
		return binSmall
	}
}

// freeList stores the free rectangles of a page, one slice per bin.
type freeList struct {
	bins [binCount][]image.Rectangle
}

func (l *freeList) push(r image.Rectangle) {
	b := binFor(r.Size())
	l.bins[b] = append(l.bins[b], r)
}

// remove swap-removes entry i of bin b.
func (l *freeList) remove(b bin, i int) image.Rectangle {
	s := l.bins[b]
	r := s[i]
	last := len(s) - 1
	s[i] = s[last]
	l.bins[b] = s[:last]
	return r
}

// drain returns all free rectangles and empties the list.
func (l *freeList) drain() []image.Rectangle {
	var all []image.Rectangle
	for b := range l.bins {
		all = append(all, l.bins[b]...)
		l.bins[b] = l.bins[b][:0]
	}
	return all
}

func (l *freeList) len() int {
	n := 0
	for b := range l.bins {
		n += len(l.bins[b])
	}
	return n
}

// Guillotine is a guillotine bin packer over a fixed page.
//
// Guillotine is NOT safe for concurrent use. Render targets are built by a
// single frame-builder goroutine.
type Guillotine struct {
	size        image.Point
	free        freeList
	allocations int

	// dirty is set when splits added free rectangles that a coalesce pass
	// might merge back together.
	dirty bool
}

// NewGuillotine returns a packer for a page of the given size.
// It panics if either dimension is not positive.
func NewGuillotine(size image.Point) *Guillotine {
	if size.X <= 0 || size.Y <= 0 {
		panic(fmt.Sprintf("allocator: invalid page size %v", size))
	}
	g := &Guillotine{size: size}
	g.Reset()
	return g
}

// Size returns the page size.
func (g *Guillotine) Size() image.Point {
	return g.size
}

// Allocations returns the number of successful non-empty allocations.
func (g *Guillotine) Allocations() int {
	return g.allocations
}

// FreeRects returns the number of free rectangles currently tracked.
func (g *Guillotine) FreeRects() int {
	return g.free.len()
}

// Reset makes the whole page available again.
func (g *Guillotine) Reset() {
	g.free = freeList{}
	g.free.push(image.Rectangle{Max: g.size})
	g.allocations = 0
	g.dirty = false
}

// Allocate places a rectangle of the given size and returns its origin.
// It returns false if the rectangle does not fit in the remaining free space.
//
// Empty requests succeed at the page origin without consuming space.
func (g *Guillotine) Allocate(size image.Point) (image.Point, bool) {
	if size.X < 0 || size.Y < 0 {
		return image.Point{}, false
	}
	if size.X == 0 || size.Y == 0 {
		return image.Point{}, true
	}
	if size.X > g.size.X || size.Y > g.size.Y {
		return image.Point{}, false
	}

	b, i, ok := g.findBest(size)
	if !ok && g.dirty {
		g.coalesce()
		b, i, ok = g.findBest(size)
	}
	if !ok {
		return image.Point{}, false
	}

	chosen := g.free.remove(b, i)
	g.split(chosen, size)
	g.allocations++
	return chosen.Min, true
}

// findBest returns the smallest-area free rectangle that fits size,
// searching from the request's own bin upwards.
func (g *Guillotine) findBest(size image.Point) (bin, int, bool) {
	for b := binFor(size); b < binCount; b++ {
		best, bestArea := -1, 0
		for i, r := range g.free.bins[b] {
			rs := r.Size()
			if size.X > rs.X || size.Y > rs.Y {
				continue
			}
			area := rs.X * rs.Y
			if best < 0 || area < bestArea {
				best, bestArea = i, area
			}
		}
		if best >= 0 {
			return b, best, true
		}
	}
	return 0, 0, false
}

// split guillotines chosen after placing size at its origin. The cut runs
// so that the larger of the two leftovers stays in one piece.
func (g *Guillotine) split(chosen image.Rectangle, size image.Point) {
	cs := chosen.Size()
	rightW := cs.X - size.X
	bottomH := cs.Y - size.Y

	var right, bottom image.Rectangle
	if rightW*size.Y > size.X*bottomH {
		// Vertical cut: the right leftover spans the full height.
		right = image.Rect(chosen.Min.X+size.X, chosen.Min.Y, chosen.Max.X, chosen.Max.Y)
		bottom = image.Rect(chosen.Min.X, chosen.Min.Y+size.Y, chosen.Min.X+size.X, chosen.Max.Y)
	} else {
		// Horizontal cut: the bottom leftover spans the full width.
		right = image.Rect(chosen.Min.X+size.X, chosen.Min.Y, chosen.Max.X, chosen.Min.Y+size.Y)
		bottom = image.Rect(chosen.Min.X, chosen.Min.Y+size.Y, chosen.Max.X, chosen.Max.Y)
	}

	if !right.Empty() {
		g.free.push(right)
		g.dirty = true
	}
	if !bottom.Empty() {
		g.free.push(bottom)
		g.dirty = true
	}
}

// coalesce merges free rectangles that share a full edge until no more
// merges are possible.
func (g *Guillotine) coalesce() {
	rects := g.free.drain()
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(rects) && !merged; i++ {
			for j := i + 1; j < len(rects); j++ {
				if u, ok := mergeAdjacent(rects[i], rects[j]); ok {
					rects[i] = u
					rects[j] = rects[len(rects)-1]
					rects = rects[:len(rects)-1]
					merged = true
					break
				}
			}
		}
	}
	for _, r := range rects {
		g.free.push(r)
	}
	g.dirty = false
}

// mergeAdjacent returns the union of a and b if they share a full edge.
func mergeAdjacent(a, b image.Rectangle) (image.Rectangle, bool) {
	sameColumn := a.Min.X == b.Min.X && a.Max.X == b.Max.X
	if sameColumn && (a.Max.Y == b.Min.Y || b.Max.Y == a.Min.Y) {
		return a.Union(b), true
	}
	sameRow := a.Min.Y == b.Min.Y && a.Max.Y == b.Max.Y
	if sameRow && (a.Max.X == b.Min.X || b.Max.X == a.Min.X) {
		return a.Union(b), true
	}
	return image.Rectangle{}, false
}
