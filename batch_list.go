// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"image"
	"slices"

	"honnef.co/go/safeish"
)

// PrimitiveBatch is one draw call: instances sharing a key.
type PrimitiveBatch struct {
	Key       BatchKey
	Instances []PrimitiveInstance

	// itemRects are the bounds of every item pushed, for the overlap stop.
	// Opaque batches do not track them.
	itemRects []image.Rectangle
}

// InstanceData returns the instances as raw bytes for upload.
func (b *PrimitiveBatch) InstanceData() []byte {
	return safeish.SliceCast[[]byte](b.Instances)
}

func (b *PrimitiveBatch) overlaps(r image.Rectangle) bool {
	for _, ir := range b.itemRects {
		if ir.Overlaps(r) {
			return true
		}
	}
	return false
}

// AlphaBatchList holds blended batches in paint order.
type AlphaBatchList struct {
	Batches  []PrimitiveBatch
	lookback int
}

// suitableBatch returns the batch an instance keyed key covering rect must
// be pushed to.
//
// Only the last lookback batches are searched, most recent first. The search
// stops at the first batch that has an item overlapping rect, so an instance
// never moves before something it overlaps. Composites always get a batch of
// their own.
func (l *AlphaBatchList) suitableBatch(key BatchKey, rect image.Rectangle) *PrimitiveBatch {
	selected := -1
	if key.Kind.Tag != BatchComposite {
		stop := max(len(l.Batches)-l.lookback, 0)
		for i := len(l.Batches) - 1; i >= stop; i-- {
			b := &l.Batches[i]
			if b.Key.IsCompatibleWith(key) {
				selected = i
				break
			}
			if b.overlaps(rect) {
				break
			}
		}
	}
	if selected < 0 {
		l.Batches = append(l.Batches, PrimitiveBatch{Key: key})
		selected = len(l.Batches) - 1
	}
	b := &l.Batches[selected]
	b.Key.merge(key)
	b.itemRects = append(b.itemRects, rect)
	return b
}

// OpaqueBatchList holds batches drawn without blending.
type OpaqueBatchList struct {
	Batches  []PrimitiveBatch
	lookback int
}

// suitableBatch returns a compatible batch among the last lookback ones, or
// a new batch. Opaque draws are depth-tested, so overlap does not matter.
func (l *OpaqueBatchList) suitableBatch(key BatchKey) *PrimitiveBatch {
	stop := max(len(l.Batches)-l.lookback, 0)
	for i := len(l.Batches) - 1; i >= stop; i-- {
		if l.Batches[i].Key.IsCompatibleWith(key) {
			b := &l.Batches[i]
			b.Key.merge(key)
			return b
		}
	}
	l.Batches = append(l.Batches, PrimitiveBatch{Key: key})
	return &l.Batches[len(l.Batches)-1]
}

// finalize reverses each batch's instances: they were pushed back to front
// and are drawn front to back for early depth rejection.
func (l *OpaqueBatchList) finalize() {
	for i := range l.Batches {
		slices.Reverse(l.Batches[i].Instances)
	}
}

// BatchList splits instances between the opaque and the alpha list by
// blend mode.
type BatchList struct {
	Alpha  AlphaBatchList
	Opaque OpaqueBatchList
}

// NewBatchList returns a batch list searching lookback batches.
func NewBatchList(lookback int) *BatchList {
	lookback = max(lookback, 1)
	return &BatchList{
		Alpha:  AlphaBatchList{lookback: lookback},
		Opaque: OpaqueBatchList{lookback: lookback},
	}
}

// Push adds instances drawn with key and covering rect.
// It returns the batch they were added to.
func (l *BatchList) Push(key BatchKey, rect image.Rectangle, instances ...PrimitiveInstance) *PrimitiveBatch {
	var b *PrimitiveBatch
	if key.Blend.Kind == BlendNone {
		b = l.Opaque.suitableBatch(key)
	} else {
		b = l.Alpha.suitableBatch(key, rect)
	}
	b.Instances = append(b.Instances, instances...)
	return b
}

// Finalize prepares the lists for submission.
func (l *BatchList) Finalize() {
	l.Opaque.finalize()
}

// InstanceCount returns the number of instances in both lists.
func (l *BatchList) InstanceCount() int {
	n := 0
	for i := range l.Alpha.Batches {
		n += len(l.Alpha.Batches[i].Instances)
	}
	for i := range l.Opaque.Batches {
		n += len(l.Opaque.Batches[i].Instances)
	}
	return n
}
