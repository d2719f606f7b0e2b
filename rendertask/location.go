// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rendertask

import (
	"fmt"
	"image"

	"github.com/gogpu/tiling/core"
)

// Location says where a task draws.
//
// A Fixed location is the framebuffer. A Dynamic location needs a rectangle
// of Size in some target atlas; it becomes assigned exactly once during the
// pass build.
type Location struct {
	fixed    bool
	assigned bool

	// Size is the rectangle requested by a dynamic task.
	Size image.Point

	origin image.Point
	target core.TargetIndex
}

// Fixed returns the framebuffer location.
func Fixed() Location {
	return Location{fixed: true}
}

// Dynamic returns an unassigned atlas location of the given size.
func Dynamic(size image.Point) Location {
	return Location{Size: size}
}

// IsFixed reports whether the location is the framebuffer.
func (l Location) IsFixed() bool {
	return l.fixed
}

// Assigned returns the allocated origin and target index, if any.
func (l Location) Assigned() (origin image.Point, target core.TargetIndex, ok bool) {
	return l.origin, l.target, l.assigned
}

// Rect returns the allocated rectangle in target space. It is empty for
// fixed and unassigned locations.
func (l Location) Rect() image.Rectangle {
	if !l.assigned {
		return image.Rectangle{}
	}
	return image.Rectangle{Min: l.origin, Max: l.origin.Add(l.Size)}
}

// Assign records the allocation result. Fixed and already assigned
// locations cannot be assigned.
func (l *Location) Assign(origin image.Point, target core.TargetIndex) {
	if l.fixed {
		panic("rendertask: BUG: assigning a fixed location")
	}
	if l.assigned {
		panic(fmt.Sprintf("rendertask: BUG: location already assigned at %v in target %d", l.origin, l.target))
	}
	l.origin, l.target, l.assigned = origin, target, true
}

// String returns a string representation of the location.
func (l Location) String() string {
	switch {
	case l.fixed:
		return "Fixed"
	case l.assigned:
		return fmt.Sprintf("Dynamic(%v at %v in %d)", l.Size, l.origin, l.target)
	default:
		return fmt.Sprintf("Dynamic(%v)", l.Size)
	}
}
