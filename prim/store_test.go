// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package prim

import (
	"image"
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/resource"
)

func TestStore_AddSetsKindAndIndex(t *testing.T) {
	s := NewStore()
	rect := s.AddRectangle(Metadata{Opaque: true})
	img := s.AddImage(Metadata{}, Image{Key: resource.ImageKey{ID: 1}})
	img2 := s.AddImage(Metadata{}, Image{Key: resource.ImageKey{ID: 2}})
	grad := s.AddAngleGradient(Metadata{}, Gradient{StopsCount: 3})

	tests := []struct {
		idx  core.PrimitiveIndex
		kind Kind
		cpu  int
	}{
		{rect, KindRectangle, 0},
		{img, KindImage, 0},
		{img2, KindImage, 1},
		{grad, KindAngleGradient, 0},
	}
	for _, tt := range tests {
		m := s.Get(tt.idx)
		if m.Kind != tt.kind || m.CPUIndex != tt.cpu {
			t.Errorf("prim %d = (%v, %d), want (%v, %d)", tt.idx, m.Kind, m.CPUIndex, tt.kind, tt.cpu)
		}
	}
	if s.Images[s.Get(img2).CPUIndex].Key.ID != 2 {
		t.Error("CPUIndex does not point at the second image")
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
}

func TestMetadata_NeedsClipping(t *testing.T) {
	m := Metadata{ScreenRect: image.Rect(0, 0, 10, 10)}
	if m.NeedsClipping() {
		t.Error("primitive without clip task needs clipping")
	}
	m.ClipTask = core.Ref(0)
	if !m.NeedsClipping() {
		t.Error("primitive with clip task does not need clipping")
	}
}

func TestYuvFormat_Planes(t *testing.T) {
	tests := []struct {
		format YuvFormat
		want   int
	}{
		{YuvNV12, 2},
		{YuvPlanar, 3},
		{YuvInterleaved, 1},
	}
	for _, tt := range tests {
		if got := tt.format.Planes(); got != tt.want {
			t.Errorf("%d.Planes() = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestTextRun_FontFor(t *testing.T) {
	run := TextRun{Font: resource.FontInstance{Key: 1, Size: fixed.I(10), RenderMode: resource.RenderSubpixel}}

	tests := []struct {
		name      string
		dpr       float64
		mode      RunMode
		transform core.TransformKind
		wantSize  fixed.Int26_6
		wantMode  resource.FontRenderMode
	}{
		{"normal", 1, RunNormal, core.AxisAligned, fixed.I(10), resource.RenderSubpixel},
		{"hidpi", 2, RunNormal, core.AxisAligned, fixed.I(20), resource.RenderSubpixel},
		{"shadow", 1, RunShadow, core.AxisAligned, fixed.I(10), resource.RenderAlpha},
		{"rotated", 1, RunNormal, core.Complex, fixed.I(10), resource.RenderAlpha},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fi := run.FontFor(tt.dpr, tt.mode, tt.transform)
			if fi.Size != tt.wantSize {
				t.Errorf("Size = %v, want %v", fi.Size, tt.wantSize)
			}
			if fi.RenderMode != tt.wantMode {
				t.Errorf("RenderMode = %v, want %v", fi.RenderMode, tt.wantMode)
			}
		})
	}
}
