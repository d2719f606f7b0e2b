// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"image"

	"github.com/gogpu/gputypes"
)

// DefaultPageSize is the size of one render target atlas page.
const DefaultPageSize = 2048

// DefaultBatchLookback is how many recent batches are searched for a
// compatible one before a new batch is opened.
const DefaultBatchLookback = 10

// Config controls frame building.
type Config struct {
	// PageSize is the size of every dynamic render target.
	PageSize image.Point

	// BatchLookback bounds the compatible-batch search. Correctness only
	// depends on the overlap stop; the window trades merge chances for
	// search time.
	BatchLookback int

	// DebugChecks enables the checks for upstream bugs that are too costly
	// to run in release builds: glyph texture changes within a run and YUV
	// plane buffer-kind mismatches.
	DebugChecks bool

	// DevicePixelRatio scales font sizes.
	DevicePixelRatio float64

	// WindowSize is the framebuffer size.
	WindowSize image.Point

	// BackgroundColor clears the framebuffer.
	BackgroundColor gputypes.Color
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		PageSize:         image.Pt(DefaultPageSize, DefaultPageSize),
		BatchLookback:    DefaultBatchLookback,
		DevicePixelRatio: 1,
		WindowSize:       image.Pt(DefaultPageSize, DefaultPageSize),
		BackgroundColor:  gputypes.Color{R: 1, G: 1, B: 1, A: 1},
	}
}

// Option configures frame building.
//
// Example:
//
//	frame := tiling.BuildFrame(ctx, scene,
//	    tiling.WithPageSize(image.Pt(1024, 1024)),
//	    tiling.WithDebugChecks(true))
type Option func(*Config)

// WithPageSize sets the render target page size.
func WithPageSize(size image.Point) Option {
	return func(c *Config) {
		c.PageSize = size
	}
}

// WithBatchLookback sets the compatible-batch search window.
// Values below 1 are raised to 1.
func WithBatchLookback(n int) Option {
	return func(c *Config) {
		c.BatchLookback = max(n, 1)
	}
}

// WithDebugChecks enables the upstream-bug checks.
func WithDebugChecks(on bool) Option {
	return func(c *Config) {
		c.DebugChecks = on
	}
}

// WithDevicePixelRatio sets the device pixel ratio fonts are scaled by.
func WithDevicePixelRatio(ratio float64) Option {
	return func(c *Config) {
		c.DevicePixelRatio = ratio
	}
}

// WithWindowSize sets the framebuffer size.
func WithWindowSize(size image.Point) Option {
	return func(c *Config) {
		c.WindowSize = size
	}
}

// WithBackgroundColor sets the framebuffer clear color.
func WithBackgroundColor(color gputypes.Color) Option {
	return func(c *Config) {
		c.BackgroundColor = color
	}
}

func newConfig(opts []Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
