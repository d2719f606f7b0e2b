// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package prim is the primitive store the batcher reads from.
//
// Each primitive has a [Metadata] record (kind, opacity, screen bounds, clip
// task, GPU cache location) and a kind-specific CPU record in one of the
// store's per-kind slices. Display-list construction fills the store; the
// batching engine only reads it.
package prim

import (
	"fmt"
	"image"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/gpucache"
)

// Kind is the closed set of primitive kinds.
type Kind uint8

const (
	KindRectangle Kind = iota
	KindLine
	KindBorder
	KindImage
	KindYuvImage
	KindTextRun
	KindTextShadow
	KindBoxShadow
	KindAlignedGradient
	KindAngleGradient
	KindRadialGradient
)

var kindNames = [...]string{
	KindRectangle:       "Rectangle",
	KindLine:            "Line",
	KindBorder:          "Border",
	KindImage:           "Image",
	KindYuvImage:        "YuvImage",
	KindTextRun:         "TextRun",
	KindTextShadow:      "TextShadow",
	KindBoxShadow:       "BoxShadow",
	KindAlignedGradient: "AlignedGradient",
	KindAngleGradient:   "AngleGradient",
	KindRadialGradient:  "RadialGradient",
}

// String returns the string representation of Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Metadata is the kind-independent part of a primitive.
type Metadata struct {
	Kind Kind

	// CPUIndex indexes the kind-specific slice of the store.
	CPUIndex int

	// Opaque is true when the primitive covers its bounds with alpha 1.
	Opaque bool

	// ClipTask is the clip-mask task the primitive is masked by, if any.
	ClipTask core.TaskRef

	// RenderTask is the cache task holding the pre-rendered primitive
	// (text and box shadows).
	RenderTask core.TaskRef

	// GpuLocation holds the primitive's GPU data blocks.
	GpuLocation gpucache.Handle

	// ScreenRect is the device-space bounding rectangle.
	ScreenRect image.Rectangle
}

// NeedsClipping reports whether the primitive is masked by a clip task.
func (m *Metadata) NeedsClipping() bool {
	return m.ClipTask.IsSet()
}

// PackedLayer is the transform state primitives are drawn with.
type PackedLayer struct {
	Transform core.TransformKind
}

// Store holds the primitives of one frame.
type Store struct {
	Metadata        []Metadata
	Lines           []Line
	Borders         []Border
	Images          []Image
	YuvImages       []YuvImage
	TextRuns        []TextRun
	TextShadows     []TextShadow
	BoxShadows      []BoxShadow
	Gradients       []Gradient
	RadialGradients []RadialGradient
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the metadata of primitive idx.
func (s *Store) Get(idx core.PrimitiveIndex) *Metadata {
	return &s.Metadata[idx]
}

// Len returns the number of primitives.
func (s *Store) Len() int {
	return len(s.Metadata)
}

func (s *Store) add(kind Kind, cpu int, m Metadata) core.PrimitiveIndex {
	m.Kind = kind
	m.CPUIndex = cpu
	s.Metadata = append(s.Metadata, m)
	return core.PrimitiveIndex(len(s.Metadata) - 1)
}

// AddRectangle adds a solid rectangle.
func (s *Store) AddRectangle(m Metadata) core.PrimitiveIndex {
	return s.add(KindRectangle, 0, m)
}

// AddLine adds a decoration line.
func (s *Store) AddLine(m Metadata, l Line) core.PrimitiveIndex {
	s.Lines = append(s.Lines, l)
	return s.add(KindLine, len(s.Lines)-1, m)
}

// AddBorder adds a border.
func (s *Store) AddBorder(m Metadata, b Border) core.PrimitiveIndex {
	s.Borders = append(s.Borders, b)
	return s.add(KindBorder, len(s.Borders)-1, m)
}

// AddImage adds an image.
func (s *Store) AddImage(m Metadata, img Image) core.PrimitiveIndex {
	s.Images = append(s.Images, img)
	return s.add(KindImage, len(s.Images)-1, m)
}

// AddYuvImage adds a YUV video frame.
func (s *Store) AddYuvImage(m Metadata, img YuvImage) core.PrimitiveIndex {
	s.YuvImages = append(s.YuvImages, img)
	return s.add(KindYuvImage, len(s.YuvImages)-1, m)
}

// AddTextRun adds a run of glyphs.
func (s *Store) AddTextRun(m Metadata, t TextRun) core.PrimitiveIndex {
	s.TextRuns = append(s.TextRuns, t)
	return s.add(KindTextRun, len(s.TextRuns)-1, m)
}

// AddTextShadow adds a text shadow drawn from a cache task.
func (s *Store) AddTextShadow(m Metadata, t TextShadow) core.PrimitiveIndex {
	s.TextShadows = append(s.TextShadows, t)
	return s.add(KindTextShadow, len(s.TextShadows)-1, m)
}

// AddBoxShadow adds a box shadow drawn from a cache task.
func (s *Store) AddBoxShadow(m Metadata, b BoxShadow) core.PrimitiveIndex {
	s.BoxShadows = append(s.BoxShadows, b)
	return s.add(KindBoxShadow, len(s.BoxShadows)-1, m)
}

// AddAlignedGradient adds an axis-aligned linear gradient.
func (s *Store) AddAlignedGradient(m Metadata, g Gradient) core.PrimitiveIndex {
	s.Gradients = append(s.Gradients, g)
	return s.add(KindAlignedGradient, len(s.Gradients)-1, m)
}

// AddAngleGradient adds a linear gradient at an arbitrary angle.
func (s *Store) AddAngleGradient(m Metadata, g Gradient) core.PrimitiveIndex {
	s.Gradients = append(s.Gradients, g)
	return s.add(KindAngleGradient, len(s.Gradients)-1, m)
}

// AddRadialGradient adds a radial gradient.
func (s *Store) AddRadialGradient(m Metadata, g RadialGradient) core.PrimitiveIndex {
	s.RadialGradients = append(s.RadialGradients, g)
	return s.add(KindRadialGradient, len(s.RadialGradients)-1, m)
}
