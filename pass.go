// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"fmt"
	"image"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/rendertask"
)

// dynamicTask is a resolved cacheable task of a pass.
type dynamicTask struct {
	id     core.TaskID
	origin image.Point
	target core.TargetIndex
	kind   core.TargetKind
	size   image.Point
}

// PassStats counts the work of one pass.
type PassStats struct {
	Tasks        int
	Allocations  int
	Aliases      int
	ColorTargets int
	AlphaTargets int
	Batches      int
	Instances    int
}

// RenderPass is a set of tasks with no dependencies between them.
// Passes are drawn in order; each reads the targets of earlier passes.
type RenderPass struct {
	Index         int
	IsFramebuffer bool

	ColorTargets *RenderTargetList[*ColorRenderTarget]
	AlphaTargets *RenderTargetList[*AlphaRenderTarget]

	// Tasks are resolved in this order.
	Tasks []core.TaskID

	// dynamicTasks maps cache keys to the first task resolved with them.
	// It only lives for the pass build.
	dynamicTasks map[rendertask.CacheKey]dynamicTask
	aliases      int
}

// NewRenderPass returns an empty pass. The framebuffer pass starts with the
// framebuffer as its first color target.
func NewRenderPass(index int, framebuffer bool, cfg *Config) *RenderPass {
	return &RenderPass{
		Index:         index,
		IsFramebuffer: framebuffer,
		ColorTargets:  newColorTargetList(cfg, framebuffer),
		AlphaTargets:  newAlphaTargetList(cfg),
		dynamicTasks:  make(map[rendertask.CacheKey]dynamicTask),
	}
}

// AddRenderTask schedules a task into the pass.
func (p *RenderPass) AddRenderTask(id core.TaskID, size image.Point, kind core.TargetKind) {
	switch kind {
	case core.TargetColor:
		p.ColorTargets.MaxSize = maxSize(p.ColorTargets.MaxSize, size)
	case core.TargetAlpha:
		p.AlphaTargets.MaxSize = maxSize(p.AlphaTargets.MaxSize, size)
	}
	p.Tasks = append(p.Tasks, id)
}

func maxSize(a, b image.Point) image.Point {
	return image.Pt(max(a.X, b.X), max(a.Y, b.Y))
}

// build resolves the location of every task, coalesces duplicates and
// batches the targets.
func (p *RenderPass) build(ctx *batchContext) {
	for _, id := range p.Tasks {
		task := ctx.tree.Get(id)
		kind := task.Kind.TargetKind()

		if !task.Location.IsFixed() {
			if _, _, ok := task.Location.Assigned(); ok {
				panic(fmt.Sprintf("tiling: BUG: %v resolved twice", id))
			}
			if p.alias(ctx, id, task, kind) {
				continue
			}
			size := task.Location.Size
			var (
				origin image.Point
				target core.TargetIndex
			)
			switch kind {
			case core.TargetColor:
				origin, target = p.ColorTargets.Allocate(size)
			case core.TargetAlpha:
				origin, target = p.AlphaTargets.Allocate(size)
			}
			task.Location.Assign(origin, target)
			if task.CacheKey != nil {
				p.dynamicTasks[*task.CacheKey] = dynamicTask{id: id, origin: origin, target: target, kind: kind, size: size}
			}
		}

		switch kind {
		case core.TargetColor:
			p.ColorTargets.addTask(ctx, id)
		case core.TargetAlpha:
			p.AlphaTargets.addTask(ctx, id)
		}
	}

	p.ColorTargets.build(ctx)
	p.AlphaTargets.build(ctx)
}

// alias turns task into an alias when an equal cacheable task was already
// resolved in the pass. It reports whether it did.
func (p *RenderPass) alias(ctx *batchContext, id core.TaskID, task *rendertask.Task, kind core.TargetKind) bool {
	if task.CacheKey == nil {
		return false
	}
	first, ok := p.dynamicTasks[*task.CacheKey]
	if !ok {
		return false
	}
	if first.kind != kind {
		panic(fmt.Sprintf("tiling: BUG: %v (%v) aliases %v (%v)", id, kind, first.id, first.kind))
	}
	if ctx.cfg.DebugChecks && first.size != task.Location.Size {
		panic(fmt.Sprintf("tiling: BUG: %v of size %v aliases %v of size %v", id, task.Location.Size, first.id, first.size))
	}
	task.Location.Assign(first.origin, first.target)
	task.Kind = rendertask.Alias{Of: first.id, Target: kind}
	p.aliases++
	Logger().Debug("tiling: coalesced task", "task", id, "into", first.id, "pass", p.Index)
	return true
}

// Stats returns the work counters of the pass.
func (p *RenderPass) Stats() PassStats {
	s := PassStats{
		Tasks:        len(p.Tasks),
		Allocations:  p.ColorTargets.Allocations() + p.AlphaTargets.Allocations(),
		Aliases:      p.aliases,
		ColorTargets: p.ColorTargets.Len(),
		AlphaTargets: p.AlphaTargets.Len(),
	}
	for _, t := range p.ColorTargets.Targets {
		b := t.Batcher.Batches
		s.Batches += len(b.Alpha.Batches) + len(b.Opaque.Batches)
		s.Instances += b.InstanceCount()
	}
	for _, t := range p.AlphaTargets.Targets {
		s.Instances += t.ClipBatcher.InstanceCount() + len(t.BoxShadowCachePrims)
	}
	return s
}
