// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scenefile reads frame descriptions written in TOML and turns them
// into a [tiling.Scene].
//
// A scene file lists layers, images, fonts, primitives and render tasks.
// Tasks and primitives refer to each other by name. A task may only list
// children that appear before it in the file, so the task graph cannot
// contain cycles.
//
//	[frame]
//	root = "root"
//	width = 800
//	height = 600
//
//	[[prim]]
//	name = "bg"
//	kind = "rectangle"
//	rect = [0, 0, 800, 600]
//	opaque = true
//
//	[[task]]
//	name = "root"
//	kind = "alpha"
//	fixed = true
//
//	[[task.item]]
//	prim = "bg"
package scenefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Errors returned by [Decode] and [File.Build].
var (
	ErrUnknownKey    = errors.New("scenefile: unknown key")
	ErrUnknownKind   = errors.New("scenefile: unknown kind")
	ErrUnknownName   = errors.New("scenefile: unknown name")
	ErrDuplicateName = errors.New("scenefile: duplicate name")
	ErrNoRoot        = errors.New("scenefile: no root task")
	ErrBadRect       = errors.New("scenefile: rectangle needs 4 values")
	ErrFixedTask     = errors.New("scenefile: only the root task may be fixed")
	ErrTaskTooLarge  = errors.New("scenefile: task larger than a page")
)

// File is a decoded scene file.
type File struct {
	Frame  Frame   `toml:"frame"`
	Layers []Layer `toml:"layer"`
	Images []Image `toml:"image"`
	Fonts  []Font  `toml:"font"`
	Prims  []Prim  `toml:"prim"`
	Tasks  []Task  `toml:"task"`
}

// Frame holds the frame-wide settings.
type Frame struct {
	Root             string  `toml:"root"`
	Width            int     `toml:"width"`
	Height           int     `toml:"height"`
	PageSize         int     `toml:"page_size"`
	BatchLookback    int     `toml:"batch_lookback"`
	DevicePixelRatio float64 `toml:"device_pixel_ratio"`
	DebugChecks      bool    `toml:"debug_checks"`
}

// Layer is a packed layer. Transform is "axis-aligned" (the default) or
// "complex".
type Layer struct {
	Transform string `toml:"transform"`
}

// Image registers an image. External images set External to the backing
// type ("texture-2d", "texture-rect", "texture-external" or "buffer").
type Image struct {
	ID       uint32 `toml:"id"`
	Texture  uint32 `toml:"texture"`
	UV       []int  `toml:"uv"`
	External string `toml:"external"`
	Handle   uint64 `toml:"handle"`
}

// Font registers a font rasterised into a texture-cache page.
type Font struct {
	Key     uint32 `toml:"key"`
	Texture uint32 `toml:"texture"`
}

// Prim is a primitive. Which fields are read depends on Kind.
type Prim struct {
	Name   string `toml:"name"`
	Kind   string `toml:"kind"`
	Rect   []int  `toml:"rect"`
	Opaque bool   `toml:"opaque"`

	// Clip names the mask task clipping the primitive. Cache names the
	// task holding the rendered shadow for text and box shadows.
	Clip  string `toml:"clip"`
	Cache string `toml:"cache"`

	Color []float32 `toml:"color"`

	// image, yuv-image
	Image      uint32   `toml:"image"`
	Planes     []uint32 `toml:"planes"`
	Format     string   `toml:"format"`
	ColorSpace string   `toml:"color_space"`

	// text-run
	Font       uint32   `toml:"font"`
	Size       float64  `toml:"size"`
	RenderMode string   `toml:"render_mode"`
	Glyphs     []uint32 `toml:"glyphs"`

	// border
	Corners []string `toml:"corners"`

	// text-shadow
	Prims []string `toml:"prims"`

	// box-shadow
	Rects [][]int `toml:"rects"`

	// gradients
	Stops int `toml:"stops"`
}

// Task is a render task. Which fields are read depends on Kind.
type Task struct {
	Name     string   `toml:"name"`
	Kind     string   `toml:"kind"`
	Size     []int    `toml:"size"`
	Fixed    bool     `toml:"fixed"`
	Children []string `toml:"children"`
	CacheKey uint64   `toml:"cache_key"`

	// alpha
	Items        []Item `toml:"item"`
	Origin       []int  `toml:"origin"`
	IsolateClear bool   `toml:"isolate_clear"`

	// cache, box-shadow
	Prim string `toml:"prim"`

	// blur blurs Source, which is added as its child.
	Source string  `toml:"source"`
	Radius float32 `toml:"radius"`

	// mask
	Clips       []Clip `toml:"clip"`
	CornersOnly bool   `toml:"corners_only"`

	// readback
	Rect []int `toml:"rect"`
}

// Item is one entry of an alpha task. Kind defaults to "prim".
type Item struct {
	Kind  string `toml:"kind"`
	Prim  string `toml:"prim"`
	Layer int32  `toml:"layer"`
	Z     int32  `toml:"z"`

	Source   string  `toml:"source"`
	Backdrop string  `toml:"backdrop"`
	Filter   string  `toml:"filter"`
	Amount   float32 `toml:"amount"`
	Mode     string  `toml:"mode"`
	Bounds   []int   `toml:"bounds"`
}

// Clip is one clip work item of a mask task.
type Clip struct {
	Layer         int32  `toml:"layer"`
	Complex       int    `toml:"complex"`
	LayerClips    int    `toml:"layer_clips"`
	Image         uint32 `toml:"image"`
	BorderCorners []int  `toml:"border_corners"`
}

// Decode reads a scene file from r. Keys that do not map to a field are
// reported as [ErrUnknownKey].
func Decode(r io.Reader) (*File, error) {
	var f File
	meta, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	return &f, nil
}

// Load decodes the scene file at path.
func Load(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	f, err := Decode(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
