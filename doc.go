// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tiling turns a frame's render task graph into render passes of
// atlas-packed targets holding draw-ready instance batches.
//
// # Overview
//
// A frame is described by a [rendertask.Tree] of offscreen tasks (clip
// masks, blurs, cached shadows, composites) rooted at the framebuffer task,
// and a [prim.Store] of primitives the tasks draw. [BuildFrame]:
//
//  1. schedules tasks into passes so every task is drawn after its children,
//  2. allocates each dynamic task a rectangle in a fixed-size target page,
//     coalescing tasks with equal cache keys within a pass,
//  3. batches the items of every task into as few draw calls as paint order
//     allows,
//  4. writes the task data blocks the shaders read.
//
// # Batching
//
// Instances are merged into an earlier batch only when the batch keys are
// compatible and no batch in between overlaps the new instance. Opaque
// instances are drawn front to back with depth testing and only need
// compatibility. Composites always get a batch of their own.
//
// # Errors
//
// Resources that are not ready yet (missing textures or glyphs) drop the
// primitive for this frame and log at debug level. Inconsistent input, such
// as a task kind routed to the wrong target kind, panics with a message
// starting with "tiling: BUG:".
//
// # Logging
//
// Nothing is logged by default. See [SetLogger].
package tiling
