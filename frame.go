// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"context"
	"image"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/gpucache"
	"github.com/gogpu/tiling/prim"
	"github.com/gogpu/tiling/rendertask"
	"github.com/gogpu/tiling/resource"
)

// Scene is the input of one frame build. Every field is borrowed for the
// duration of [BuildFrame] and must not be used concurrently.
type Scene struct {
	// Tree is the task graph. Locations are assigned during the build.
	Tree *rendertask.Tree

	// Root is the framebuffer task.
	Root core.TaskID

	Prims     *prim.Store
	Layers    []prim.PackedLayer
	Resources resource.ResourceCache
	GpuCache  gpucache.GpuCache
}

// Frame is a built frame, ready for the renderer.
type Frame struct {
	Passes []*RenderPass

	// TaskData is indexed by task address.
	TaskData []rendertask.TaskData

	GpuCacheUpdates  gpucache.UpdateList
	DeferredResolves []DeferredResolve

	WindowSize      image.Point
	BackgroundColor gputypes.Color
}

// FrameStats sums the pass counters of a frame.
type FrameStats struct {
	Passes int
	PassStats
}

// Stats returns the counters of the frame.
func (f *Frame) Stats() FrameStats {
	s := FrameStats{Passes: len(f.Passes)}
	for _, p := range f.Passes {
		ps := p.Stats()
		s.Tasks += ps.Tasks
		s.Allocations += ps.Allocations
		s.Aliases += ps.Aliases
		s.ColorTargets += ps.ColorTargets
		s.AlphaTargets += ps.AlphaTargets
		s.Batches += ps.Batches
		s.Instances += ps.Instances
	}
	return s
}

// BuildFrame schedules the task graph of scene into passes, allocates every
// task a target rectangle and batches the draws.
//
// Building runs synchronously on the calling goroutine. ctx is only used for
// logging.
func BuildFrame(ctx context.Context, scene *Scene, opts ...Option) *Frame {
	cfg := newConfig(opts)
	tree := scene.Tree

	schedule := tree.AssignToPasses(scene.Root)
	passes := make([]*RenderPass, len(schedule))
	for i, ids := range schedule {
		p := NewRenderPass(i, i == len(schedule)-1, &cfg)
		for _, id := range ids {
			task := tree.Get(id)
			p.AddRenderTask(id, task.Location.Size, task.Kind.TargetKind())
		}
		passes[i] = p
	}

	bctx := &batchContext{
		cfg:       &cfg,
		tree:      tree,
		prims:     scene.Prims,
		layers:    scene.Layers,
		resources: scene.Resources,
		gpu:       scene.GpuCache,
	}
	for _, p := range passes {
		p.build(bctx)
	}
	tree.Build()

	frame := &Frame{
		Passes:           passes,
		TaskData:         tree.Data,
		GpuCacheUpdates:  scene.GpuCache.EndFrame(),
		DeferredResolves: bctx.deferred,
		WindowSize:       cfg.WindowSize,
		BackgroundColor:  cfg.BackgroundColor,
	}

	log := Logger()
	if log.Enabled(ctx, slog.LevelInfo) {
		s := frame.Stats()
		log.LogAttrs(ctx, slog.LevelInfo, "tiling: frame built",
			slog.Int("passes", s.Passes),
			slog.Int("tasks", s.Tasks),
			slog.Int("aliases", s.Aliases),
			slog.Int("batches", s.Batches),
			slog.Int("instances", s.Instances),
			slog.Int("deferred", len(frame.DeferredResolves)))
	}
	return frame
}
