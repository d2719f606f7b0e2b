// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package core holds the identifier and address types shared by the
// primitive store, the render-task tree and the batching engine.
//
// The types live in their own package so that [prim] can reference render
// tasks (clip masks, shadow caches) while [rendertask] references primitives
// (cached primitives, alpha items) without an import cycle.
//
// # Shader Contract
//
// [TaskAddress] and [OpaqueTaskAddress] are read by the GPU-side shaders.
// Their bit patterns are part of that contract and must not change.
package core
