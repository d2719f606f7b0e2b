// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucache

import "fmt"

// DefaultPerFrameBaseRow is the first texture row used for per-frame blocks.
const DefaultPerFrameBaseRow = 512

var _ GpuCache = (*Cache)(nil)

// rowAllocator hands out runs of blocks that never straddle a row.
// A positive limit is the first row the allocator may not touch.
type rowAllocator struct {
	baseRow int
	limit   int
	row     int
	col     int
	used    bool
}

func (r *rowAllocator) alloc(n int) (Address, error) {
	if n <= 0 || n > MaxVertexTextureWidth {
		return InvalidAddress, fmt.Errorf("alloc %d blocks: %w", n, ErrRowOverflow)
	}
	row, col := r.row, r.col
	if col+n > MaxVertexTextureWidth {
		row++
		col = 0
	}
	if r.limit > 0 && r.baseRow+row >= r.limit {
		return InvalidAddress, fmt.Errorf("alloc %d blocks: row %d is past row %d: %w", n, r.baseRow+row, r.limit-1, ErrRowOverflow)
	}
	r.row, r.col = row, col
	addr := Address{U: uint16(r.col), V: uint16(r.baseRow + r.row)}
	r.col += n
	r.used = true
	return addr, nil
}

// height returns the number of rows from row 0 through the last row used.
func (r *rowAllocator) height() int {
	if !r.used {
		return 0
	}
	return r.baseRow + r.row + 1
}

func (r *rowAllocator) reset() {
	r.row, r.col, r.used = 0, 0, false
}

type slot struct {
	addr  Address
	count int
}

// Cache is an in-process GPU cache.
//
// Persistent blocks keep their address across frames. Per-frame blocks live
// in a separate row range that is recycled by [Cache.BeginFrame]; handles to
// them resolve to [InvalidAddress] once their frame is over.
//
// Cache is NOT safe for concurrent use.
type Cache struct {
	persistent      rowAllocator
	perFrame        rowAllocator
	persistentSlots []slot
	frameSlots      []slot

	frameID  uint64
	pending  []Update
	deferred int
}

// New returns an empty cache whose per-frame region starts at baseRow.
// A non-positive baseRow selects [DefaultPerFrameBaseRow].
func New(baseRow int) *Cache {
	if baseRow <= 0 {
		baseRow = DefaultPerFrameBaseRow
	}
	return &Cache{
		persistent: rowAllocator{limit: baseRow},
		perFrame:   rowAllocator{baseRow: baseRow},
		frameID:  1,
	}
}

// FrameID returns the identifier of the frame being recorded.
func (c *Cache) FrameID() uint64 {
	return c.frameID
}

// BeginFrame starts a new frame, invalidating the previous frame's
// per-frame handles.
func (c *Cache) BeginFrame() {
	c.frameID++
	c.perFrame.reset()
	c.frameSlots = c.frameSlots[:0]
}

// Push stores blocks persistently and schedules their upload.
func (c *Cache) Push(blocks ...Block) (Handle, error) {
	addr, err := c.persistent.alloc(len(blocks))
	if err != nil {
		return Handle{}, fmt.Errorf("push persistent: %w", err)
	}
	c.persistentSlots = append(c.persistentSlots, slot{addr: addr, count: len(blocks)})
	c.schedule(addr, blocks)
	return Handle{slot: int32(len(c.persistentSlots))}, nil
}

// Update rewrites the blocks behind a persistent handle.
func (c *Cache) Update(h Handle, blocks ...Block) error {
	if !h.IsValid() || h.frame != 0 || int(h.slot) > len(c.persistentSlots) {
		return fmt.Errorf("update %v: unknown persistent handle", h)
	}
	s := c.persistentSlots[h.slot-1]
	if len(blocks) != s.count {
		return fmt.Errorf("update %v: got %d blocks, handle holds %d", h, len(blocks), s.count)
	}
	c.schedule(s.addr, blocks)
	return nil
}

// PushPerFrame stores blocks for the current frame only.
func (c *Cache) PushPerFrame(blocks ...Block) (Handle, error) {
	addr, err := c.perFrame.alloc(len(blocks))
	if err != nil {
		return Handle{}, fmt.Errorf("push per-frame: %w", err)
	}
	h := c.frameSlot(addr, len(blocks))
	c.schedule(addr, blocks)
	return h, nil
}

// PushDeferredPerFrameBlocks reserves blocks whose contents the render
// thread patches in. It panics if count does not fit in one texture row.
func (c *Cache) PushDeferredPerFrameBlocks(count int) Handle {
	addr, err := c.perFrame.alloc(count)
	if err != nil {
		panic(fmt.Sprintf("gpucache: %v", err))
	}
	c.deferred += count
	return c.frameSlot(addr, count)
}

func (c *Cache) frameSlot(addr Address, count int) Handle {
	c.frameSlots = append(c.frameSlots, slot{addr: addr, count: count})
	return Handle{slot: int32(len(c.frameSlots)), frame: c.frameID}
}

// Address resolves h. Unknown and expired handles yield [InvalidAddress].
func (c *Cache) Address(h Handle) Address {
	if !h.IsValid() {
		return InvalidAddress
	}
	if h.frame == 0 {
		if int(h.slot) > len(c.persistentSlots) {
			return InvalidAddress
		}
		return c.persistentSlots[h.slot-1].addr
	}
	if h.frame != c.frameID || int(h.slot) > len(c.frameSlots) {
		return InvalidAddress
	}
	return c.frameSlots[h.slot-1].addr
}

// EndFrame returns the uploads scheduled since the last call.
func (c *Cache) EndFrame() UpdateList {
	list := UpdateList{
		FrameID:        c.frameID,
		Height:         max(c.persistent.height(), c.perFrame.height()),
		Updates:        c.pending,
		DeferredBlocks: c.deferred,
	}
	c.pending = nil
	c.deferred = 0
	return list
}

func (c *Cache) schedule(addr Address, blocks []Block) {
	c.pending = append(c.pending, Update{
		Address: addr,
		Blocks:  append([]Block(nil), blocks...),
	})
}
