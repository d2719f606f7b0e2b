// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucache models the GPU cache: a float texture of small data
// blocks that shaders fetch per-primitive data from.
//
// The batching engine only needs the [GpuCache] contract. [Cache] is an
// in-process implementation that lays blocks out in rows and records the
// uploads a renderer has to perform at the end of each frame.
package gpucache

import (
	"errors"
	"fmt"
)

// MaxVertexTextureWidth is the width of the GPU cache texture in blocks.
// Shaders linearise addresses with the same constant.
const MaxVertexTextureWidth = 1024

// ErrRowOverflow is returned when a run of blocks is wider than one row, or
// when persistent blocks would spill into the per-frame rows.
var ErrRowOverflow = errors.New("gpucache: block run exceeds texture row")

// Block is one texel of the GPU cache texture.
type Block [4]float32

// Address locates a block in the cache texture.
type Address struct {
	U uint16
	V uint16
}

// InvalidAddress is returned for handles the cache does not know about.
var InvalidAddress = Address{U: ^uint16(0), V: ^uint16(0)}

// AsInt returns the linear address the shaders use.
func (a Address) AsInt() int32 {
	return int32(a.V)*MaxVertexTextureWidth + int32(a.U)
}

// Offset returns the address n blocks further along the same row.
func (a Address) Offset(n int) Address {
	return Address{U: a.U + uint16(n), V: a.V}
}

// String returns a string representation of the address.
func (a Address) String() string {
	return fmt.Sprintf("Address(%d,%d)", a.U, a.V)
}

// Handle identifies a run of blocks. The zero value is unallocated.
type Handle struct {
	slot  int32 // index+1 into the cache's slot table, 0 = unallocated
	frame uint64
}

// IsValid reports whether the handle has been allocated.
func (h Handle) IsValid() bool {
	return h.slot > 0
}

// GpuCache is the contract the batching engine relies on.
type GpuCache interface {
	// Address resolves a handle to the address of its first block.
	Address(h Handle) Address

	// PushDeferredPerFrameBlocks reserves count blocks for this frame only.
	// Their contents are written later by the render thread.
	PushDeferredPerFrameBlocks(count int) Handle

	// EndFrame closes the frame and returns the pending uploads.
	EndFrame() UpdateList
}

// Update is one upload of consecutive blocks.
type Update struct {
	Address Address
	Blocks  []Block
}

// UpdateList is the set of uploads produced by one frame.
type UpdateList struct {
	FrameID uint64

	// Height is the number of texture rows in use.
	Height int

	Updates []Update

	// DeferredBlocks counts blocks reserved for render-thread patching.
	DeferredBlocks int
}
