// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenefile

import (
	"fmt"
	"image"
	"math"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/tiling"
	"github.com/gogpu/tiling/core"
	"github.com/gogpu/tiling/gpucache"
	"github.com/gogpu/tiling/prim"
	"github.com/gogpu/tiling/rendertask"
	"github.com/gogpu/tiling/resource"
)

// Result is a scene ready for [tiling.BuildFrame].
type Result struct {
	Scene   *tiling.Scene
	Options []tiling.Option

	// Tasks maps task names to their IDs. Blur tasks name the horizontal
	// pass of the pair.
	Tasks map[string]core.TaskID

	// Prims maps primitive names to their indices.
	Prims map[string]core.PrimitiveIndex
}

var (
	transforms = map[string]core.TransformKind{
		"axis-aligned": core.AxisAligned,
		"complex":      core.Complex,
	}
	externalTypes = map[string]resource.ExternalImageType{
		"texture-2d":       resource.ExternalTexture2D,
		"texture-rect":     resource.ExternalTextureRect,
		"texture-external": resource.ExternalTextureExternal,
		"buffer":           resource.ExternalBuffer,
	}
	renderModes = map[string]resource.FontRenderMode{
		"mono":     resource.RenderMono,
		"alpha":    resource.RenderAlpha,
		"subpixel": resource.RenderSubpixel,
	}
	corners = map[string]prim.BorderCornerInstance{
		"none":   prim.CornerNone,
		"single": prim.CornerSingle,
		"double": prim.CornerDouble,
	}
	yuvFormats = map[string]prim.YuvFormat{
		"nv12":        prim.YuvNV12,
		"planar":      prim.YuvPlanar,
		"interleaved": prim.YuvInterleaved,
	}
	colorSpaces = map[string]prim.YuvColorSpace{
		"rec601": prim.Rec601,
		"rec709": prim.Rec709,
	}
	filters = map[string]rendertask.FilterKind{
		"blur":       rendertask.FilterBlur,
		"contrast":   rendertask.FilterContrast,
		"grayscale":  rendertask.FilterGrayscale,
		"hue-rotate": rendertask.FilterHueRotate,
		"invert":     rendertask.FilterInvert,
		"saturate":   rendertask.FilterSaturate,
		"sepia":      rendertask.FilterSepia,
		"brightness": rendertask.FilterBrightness,
		"opacity":    rendertask.FilterOpacity,
	}
	mixModes = map[string]rendertask.MixBlendMode{
		"normal":      rendertask.MixNormal,
		"multiply":    rendertask.MixMultiply,
		"screen":      rendertask.MixScreen,
		"overlay":     rendertask.MixOverlay,
		"darken":      rendertask.MixDarken,
		"lighten":     rendertask.MixLighten,
		"color-dodge": rendertask.MixColorDodge,
		"color-burn":  rendertask.MixColorBurn,
		"hard-light":  rendertask.MixHardLight,
		"soft-light":  rendertask.MixSoftLight,
		"difference":  rendertask.MixDifference,
		"exclusion":   rendertask.MixExclusion,
		"hue":         rendertask.MixHue,
		"saturation":  rendertask.MixSaturation,
		"color":       rendertask.MixColor,
		"luminosity":  rendertask.MixLuminosity,
	}
)

// lookup maps name through m. The empty name selects def.
func lookup[T any](what string, m map[string]T, name string, def T) (T, error) {
	if name == "" {
		return def, nil
	}
	v, ok := m[name]
	if !ok {
		return def, fmt.Errorf("%w: %s %q", ErrUnknownKind, what, name)
	}
	return v, nil
}

func rect(v []int) (image.Rectangle, error) {
	if len(v) == 0 {
		return image.Rectangle{}, nil
	}
	if len(v) != 4 {
		return image.Rectangle{}, fmt.Errorf("%w: got %v", ErrBadRect, v)
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}

func point(v []int) image.Point {
	if len(v) < 2 {
		return image.Point{}
	}
	return image.Pt(v[0], v[1])
}

func color(v []float32) prim.ColorF {
	var c [4]float32
	copy(c[:], v)
	return prim.ColorF{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// builder carries the state of one File.Build call.
type builder struct {
	gpu   *gpucache.Cache
	res   *resource.Memory
	prims *prim.Store
	tree  *rendertask.Tree

	primIDs map[string]core.PrimitiveIndex
	taskIDs map[string]core.TaskID
}

func (b *builder) blocks(n int) (gpucache.Handle, error) {
	return b.gpu.Push(make([]gpucache.Block, n)...)
}

func (b *builder) prim(name string) (core.PrimitiveIndex, error) {
	idx, ok := b.primIDs[name]
	if !ok {
		return 0, fmt.Errorf("%w: primitive %q", ErrUnknownName, name)
	}
	return idx, nil
}

func (b *builder) task(name string) (core.TaskID, error) {
	id, ok := b.taskIDs[name]
	if !ok {
		return 0, fmt.Errorf("%w: task %q", ErrUnknownName, name)
	}
	return id, nil
}

// Build creates the primitives, resources and task graph of the file.
func (f *File) Build() (*Result, error) {
	gpu := gpucache.New(0)
	b := &builder{
		gpu:     gpu,
		res:     resource.NewMemory(gpu),
		prims:   prim.NewStore(),
		tree:    rendertask.NewTree(),
		primIDs: make(map[string]core.PrimitiveIndex),
		taskIDs: make(map[string]core.TaskID),
	}

	layers := make([]prim.PackedLayer, len(f.Layers))
	for i, l := range f.Layers {
		t, err := lookup("transform", transforms, l.Transform, core.AxisAligned)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers[i] = prim.PackedLayer{Transform: t}
	}
	if err := b.addResources(f); err != nil {
		return nil, err
	}
	for _, p := range f.Prims {
		if err := b.addPrim(p); err != nil {
			return nil, fmt.Errorf("prim %q: %w", p.Name, err)
		}
	}
	for _, t := range f.Tasks {
		if err := b.addTask(t); err != nil {
			return nil, fmt.Errorf("task %q: %w", t.Name, err)
		}
	}

	// Primitives name their clip and cache tasks, which exist only now.
	for _, p := range f.Prims {
		meta := b.prims.Get(b.primIDs[p.Name])
		if p.Clip != "" {
			id, err := b.task(p.Clip)
			if err != nil {
				return nil, fmt.Errorf("prim %q clip: %w", p.Name, err)
			}
			meta.ClipTask = core.Ref(id)
		}
		if p.Cache != "" {
			id, err := b.task(p.Cache)
			if err != nil {
				return nil, fmt.Errorf("prim %q cache: %w", p.Name, err)
			}
			meta.RenderTask = core.Ref(id)
		}
	}

	root, ok := b.taskIDs[f.Frame.Root]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRoot, f.Frame.Root)
	}
	if err := b.checkLocations(f, root); err != nil {
		return nil, err
	}

	return &Result{
		Scene: &tiling.Scene{
			Tree:      b.tree,
			Root:      root,
			Prims:     b.prims,
			Layers:    layers,
			Resources: b.res,
			GpuCache:  gpu,
		},
		Options: f.Frame.options(),
		Tasks:   b.taskIDs,
		Prims:   b.primIDs,
	}, nil
}

// checkLocations rejects graphs the pass builder cannot place: only the root
// draws to the framebuffer, and every other task fits in one page.
func (b *builder) checkLocations(f *File, root core.TaskID) error {
	if !b.tree.Get(root).Location.IsFixed() {
		return fmt.Errorf("%w: root %q is not fixed", ErrFixedTask, f.Frame.Root)
	}
	page := f.Frame.PageSize
	if page <= 0 {
		page = tiling.DefaultPageSize
	}
	for _, t := range f.Tasks {
		id := b.taskIDs[t.Name]
		loc := b.tree.Get(id).Location
		switch {
		case loc.IsFixed() && id != root:
			return fmt.Errorf("%w: task %q is fixed but is not the root", ErrFixedTask, t.Name)
		case loc.Size.X > page || loc.Size.Y > page:
			return fmt.Errorf("%w: task %q size %v exceeds page size %d", ErrTaskTooLarge, t.Name, loc.Size, page)
		}
	}
	return nil
}

func (fr Frame) options() []tiling.Option {
	var opts []tiling.Option
	if fr.Width > 0 && fr.Height > 0 {
		opts = append(opts, tiling.WithWindowSize(image.Pt(fr.Width, fr.Height)))
	}
	if fr.PageSize > 0 {
		opts = append(opts, tiling.WithPageSize(image.Pt(fr.PageSize, fr.PageSize)))
	}
	if fr.BatchLookback > 0 {
		opts = append(opts, tiling.WithBatchLookback(fr.BatchLookback))
	}
	if fr.DevicePixelRatio > 0 {
		opts = append(opts, tiling.WithDevicePixelRatio(fr.DevicePixelRatio))
	}
	if fr.DebugChecks {
		opts = append(opts, tiling.WithDebugChecks(true))
	}
	return opts
}

func (b *builder) addResources(f *File) error {
	for _, img := range f.Images {
		key := resource.ImageKey{ID: img.ID}
		var props resource.ImageProperties
		if img.External != "" {
			typ, err := lookup("external image type", externalTypes, img.External, resource.ExternalTexture2D)
			if err != nil {
				return fmt.Errorf("image %d: %w", img.ID, err)
			}
			props.External = &resource.ExternalImage{ID: resource.ExternalImageID(img.Handle), Type: typ}
			if typ != resource.ExternalBuffer {
				if err := b.res.AddImage(key, props, resource.InvalidTexture, image.Rectangle{}); err != nil {
					return err
				}
				continue
			}
		}
		uv, err := rect(img.UV)
		if err != nil {
			return fmt.Errorf("image %d uv: %w", img.ID, err)
		}
		if err := b.res.AddImage(key, props, resource.TextureCacheTexture(img.Texture), uv); err != nil {
			return err
		}
	}
	for _, fnt := range f.Fonts {
		if err := b.res.AddFont(resource.FontKey(fnt.Key), resource.TextureCacheTexture(fnt.Texture)); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addPrim(p Prim) error {
	if _, dup := b.primIDs[p.Name]; dup {
		return ErrDuplicateName
	}
	screen, err := rect(p.Rect)
	if err != nil {
		return err
	}
	h, err := b.blocks(2)
	if err != nil {
		return err
	}
	m := prim.Metadata{Opaque: p.Opaque, ScreenRect: screen, GpuLocation: h}

	var idx core.PrimitiveIndex
	switch p.Kind {
	case "rectangle":
		idx = b.prims.AddRectangle(m)

	case "line":
		idx = b.prims.AddLine(m, prim.Line{Color: color(p.Color)})

	case "border":
		var border prim.Border
		for i, c := range p.Corners {
			if i >= len(border.Corners) {
				break
			}
			if border.Corners[i], err = lookup("corner", corners, c, prim.CornerNone); err != nil {
				return err
			}
		}
		idx = b.prims.AddBorder(m, border)

	case "image":
		idx = b.prims.AddImage(m, prim.Image{Key: resource.ImageKey{ID: p.Image}})

	case "yuv-image":
		yuv := prim.YuvImage{}
		if yuv.Format, err = lookup("yuv format", yuvFormats, p.Format, prim.YuvNV12); err != nil {
			return err
		}
		if yuv.ColorSpace, err = lookup("color space", colorSpaces, p.ColorSpace, prim.Rec601); err != nil {
			return err
		}
		for i, id := range p.Planes {
			if i < len(yuv.Planes) {
				yuv.Planes[i] = resource.ImageKey{ID: id}
			}
		}
		idx = b.prims.AddYuvImage(m, yuv)

	case "text-run":
		mode, err := lookup("render mode", renderModes, p.RenderMode, resource.RenderSubpixel)
		if err != nil {
			return err
		}
		run := prim.TextRun{
			Font: resource.FontInstance{
				Key:        resource.FontKey(p.Font),
				Size:       fixed.Int26_6(math.Round(p.Size * 64)),
				RenderMode: mode,
			},
			Glyphs: make([]resource.GlyphKey, len(p.Glyphs)),
			Color:  color(p.Color),
		}
		for i, g := range p.Glyphs {
			run.Glyphs[i] = resource.GlyphKey{Index: font.GID(g)}
		}
		idx = b.prims.AddTextRun(m, run)

	case "text-shadow":
		shadow := prim.TextShadow{Primitives: make([]core.PrimitiveIndex, len(p.Prims))}
		for i, name := range p.Prims {
			if shadow.Primitives[i], err = b.prim(name); err != nil {
				return err
			}
		}
		idx = b.prims.AddTextShadow(m, shadow)

	case "box-shadow":
		shadow := prim.BoxShadow{Rects: make([]image.Rectangle, len(p.Rects))}
		for i, r := range p.Rects {
			if shadow.Rects[i], err = rect(r); err != nil {
				return err
			}
		}
		idx = b.prims.AddBoxShadow(m, shadow)

	case "aligned-gradient":
		idx = b.prims.AddAlignedGradient(m, prim.Gradient{StopsCount: p.Stops})

	case "angle-gradient":
		idx = b.prims.AddAngleGradient(m, prim.Gradient{StopsCount: p.Stops})

	case "radial-gradient":
		idx = b.prims.AddRadialGradient(m, prim.RadialGradient{StopsCount: p.Stops})

	default:
		return fmt.Errorf("%w: primitive %q", ErrUnknownKind, p.Kind)
	}
	b.primIDs[p.Name] = idx
	return nil
}

func (b *builder) addTask(t Task) error {
	if _, dup := b.taskIDs[t.Name]; dup {
		return ErrDuplicateName
	}
	if t.Kind == "blur" {
		src, err := b.task(t.Source)
		if err != nil {
			return err
		}
		b.taskIDs[t.Name] = b.tree.NewBlur(src, t.Radius)
		return nil
	}

	task := rendertask.Task{Location: rendertask.Dynamic(point(t.Size))}
	if t.Fixed {
		task.Location = rendertask.Fixed()
	}
	for _, name := range t.Children {
		id, err := b.task(name)
		if err != nil {
			return err
		}
		task.Children = append(task.Children, id)
	}

	var keyKind rendertask.CacheKeyKind
	switch t.Kind {
	case "alpha":
		items := make([]rendertask.Item, len(t.Items))
		for i, it := range t.Items {
			item, err := b.item(it)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			items[i] = item
		}
		task.Kind = rendertask.Alpha{ScreenOrigin: point(t.Origin), Items: items, IsolateClear: t.IsolateClear}

	case "cache":
		p, err := b.prim(t.Prim)
		if err != nil {
			return err
		}
		task.Kind = rendertask.CachePrimitive{Prim: p}
		keyKind = rendertask.KeyTextShadow

	case "box-shadow":
		p, err := b.prim(t.Prim)
		if err != nil {
			return err
		}
		task.Kind = rendertask.BoxShadow{Prim: p}
		keyKind = rendertask.KeyBoxShadow

	case "mask":
		mask, err := b.mask(t)
		if err != nil {
			return err
		}
		task.Kind = mask
		keyKind = rendertask.KeyCacheMask

	case "readback":
		r, err := rect(t.Rect)
		if err != nil {
			return err
		}
		task.Kind = rendertask.Readback{Rect: r}

	default:
		return fmt.Errorf("%w: task %q", ErrUnknownKind, t.Kind)
	}
	if t.CacheKey != 0 {
		task.CacheKey = &rendertask.CacheKey{Kind: keyKind, ID: t.CacheKey}
	}
	b.taskIDs[t.Name] = b.tree.Add(task)
	return nil
}

func (b *builder) mask(t Task) (rendertask.CacheMask, error) {
	size := point(t.Size)
	mask := rendertask.CacheMask{ActualRect: image.Rectangle{Max: size}}
	if t.CornersOnly {
		mask.Geometry = rendertask.GeometryCornersOnly
	}
	for _, c := range t.Clips {
		work := rendertask.ClipWorkItem{Layer: core.LayerIndex(c.Layer)}
		if c.Complex > 0 {
			h, err := b.blocks(c.Complex * rendertask.ClipDataBlocks)
			if err != nil {
				return mask, err
			}
			work.Clip.ComplexClips = rendertask.ClipAddressRange{Start: h, Count: c.Complex}
		}
		if c.LayerClips > 0 {
			h, err := b.blocks(c.LayerClips * rendertask.ClipDataBlocks)
			if err != nil {
				return mask, err
			}
			work.Clip.LayerClips = rendertask.ClipAddressRange{Start: h, Count: c.LayerClips}
		}
		if c.Image != 0 {
			h, err := b.blocks(1)
			if err != nil {
				return mask, err
			}
			work.Clip.Image = &rendertask.ImageMask{Key: resource.ImageKey{ID: c.Image}, Address: h}
		}
		for _, n := range c.BorderCorners {
			h, err := b.blocks(1)
			if err != nil {
				return mask, err
			}
			work.Clip.BorderCorners = append(work.Clip.BorderCorners, rendertask.BorderCornerClip{Address: h, ClipCount: n})
		}
		mask.Clips = append(mask.Clips, work)
	}
	return mask, nil
}

func (b *builder) item(it Item) (rendertask.Item, error) {
	if it.Kind == "" || it.Kind == "prim" {
		p, err := b.prim(it.Prim)
		if err != nil {
			return nil, err
		}
		return rendertask.PrimitiveItem{Layer: core.LayerIndex(it.Layer), Prim: p, Z: it.Z}, nil
	}

	src, err := b.task(it.Source)
	if err != nil {
		return nil, err
	}
	bounds, err := rect(it.Bounds)
	if err != nil {
		return nil, err
	}
	switch it.Kind {
	case "blend":
		kind, err := lookup("filter", filters, it.Filter, rendertask.FilterOpacity)
		if err != nil {
			return nil, err
		}
		return rendertask.BlendItem{Source: src, Filter: rendertask.FilterOp{Kind: kind, Amount: it.Amount}, Z: it.Z, Bounds: bounds}, nil

	case "composite":
		backdrop, err := b.task(it.Backdrop)
		if err != nil {
			return nil, err
		}
		mode, err := lookup("mix blend mode", mixModes, it.Mode, rendertask.MixNormal)
		if err != nil {
			return nil, err
		}
		return rendertask.CompositeItem{Source: src, Backdrop: backdrop, Mode: mode, Z: it.Z, Bounds: bounds}, nil

	case "hardware-composite":
		return rendertask.HardwareCompositeItem{Source: src, Op: rendertask.CompositePremultipliedAlpha, Z: it.Z, Bounds: bounds}, nil

	case "split-composite":
		plane, err := b.blocks(1)
		if err != nil {
			return nil, err
		}
		return rendertask.SplitCompositeItem{Source: src, Plane: plane, Z: it.Z, Bounds: bounds}, nil

	default:
		return nil, fmt.Errorf("%w: item %q", ErrUnknownKind, it.Kind)
	}
}
