// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenefile

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/gogpu/tiling"
	"github.com/gogpu/tiling/rendertask"
)

func TestLoad_ShadowScene(t *testing.T) {
	f, err := Load("testdata/shadow.toml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	res, err := f.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := len(res.Options); got != 2 {
		t.Errorf("len(Options) = %d, want 2 (window and page size)", got)
	}

	label := res.Scene.Prims.Get(res.Prims["label"])
	if id, ok := label.ClipTask.Get(); !ok || id != res.Tasks["mask"] {
		t.Errorf("label clip = %v, want task %v", label.ClipTask, res.Tasks["mask"])
	}
	blur := res.Scene.Tree.Get(res.Tasks["shadow-blur"])
	if _, ok := blur.Kind.(rendertask.HorizontalBlur); !ok {
		t.Errorf("shadow-blur kind = %T, want HorizontalBlur", blur.Kind)
	}

	frame := tiling.BuildFrame(context.Background(), res.Scene, res.Options...)
	s := frame.Stats()
	if s.Passes != 4 {
		t.Errorf("Passes = %d, want 4", s.Passes)
	}
	if s.Aliases != 1 {
		t.Errorf("Aliases = %d, want 1", s.Aliases)
	}
	if s.Tasks != 6 {
		t.Errorf("Tasks = %d, want 6", s.Tasks)
	}
	if frame.WindowSize != image.Pt(800, 600) {
		t.Errorf("WindowSize = %v", frame.WindowSize)
	}
	if size := frame.Passes[0].AlphaTargets.TextureSize(); size.Width != 1024 {
		t.Errorf("alpha page width = %d, want 1024", size.Width)
	}

	fb := frame.Passes[3].ColorTargets.Targets[0].Batcher.Batches
	if len(fb.Opaque.Batches) != 1 || len(fb.Alpha.Batches) != 2 {
		t.Fatalf("framebuffer batches = %d opaque, %d alpha, want 1 and 2", len(fb.Opaque.Batches), len(fb.Alpha.Batches))
	}
	text := fb.Alpha.Batches[1]
	if text.Key.Kind.Tag != tiling.BatchTextRun || !text.Key.Flags.NeedsClipping || len(text.Instances) != 3 {
		t.Errorf("text batch = %v clipped=%v with %d instances", text.Key.Kind, text.Key.Flags.NeedsClipping, len(text.Instances))
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "unknown key",
			src:  "[frame]\nroot = \"r\"\ncolour = 1\n",
			want: ErrUnknownKey,
		},
		{
			name: "unknown prim kind",
			src:  "[[prim]]\nname = \"p\"\nkind = \"circle\"\n",
			want: ErrUnknownKind,
		},
		{
			name: "unknown task kind",
			src:  "[[task]]\nname = \"t\"\nkind = \"scale\"\n",
			want: ErrUnknownKind,
		},
		{
			name: "unknown child",
			src:  "[frame]\nroot = \"r\"\n[[task]]\nname = \"r\"\nkind = \"alpha\"\nfixed = true\nchildren = [\"later\"]\n",
			want: ErrUnknownName,
		},
		{
			name: "unknown item prim",
			src:  "[[task]]\nname = \"r\"\nkind = \"alpha\"\n[[task.item]]\nprim = \"missing\"\n",
			want: ErrUnknownName,
		},
		{
			name: "duplicate prim",
			src:  "[[prim]]\nname = \"p\"\nkind = \"line\"\n[[prim]]\nname = \"p\"\nkind = \"line\"\n",
			want: ErrDuplicateName,
		},
		{
			name: "missing root",
			src:  "[frame]\nroot = \"nope\"\n",
			want: ErrNoRoot,
		},
		{
			name: "bad rect",
			src:  "[[prim]]\nname = \"p\"\nkind = \"rectangle\"\nrect = [1, 2, 3]\n",
			want: ErrBadRect,
		},
		{
			name: "root not fixed",
			src:  "[frame]\nroot = \"r\"\n[[task]]\nname = \"r\"\nkind = \"alpha\"\nsize = [4, 4]\n",
			want: ErrFixedTask,
		},
		{
			name: "fixed child",
			src: "[frame]\nroot = \"r\"\n[[task]]\nname = \"c\"\nkind = \"alpha\"\nfixed = true\n" +
				"[[task]]\nname = \"r\"\nkind = \"alpha\"\nfixed = true\nchildren = [\"c\"]\n",
			want: ErrFixedTask,
		},
		{
			name: "task larger than page",
			src: "[frame]\nroot = \"r\"\npage_size = 64\n[[task]]\nname = \"c\"\nkind = \"alpha\"\nsize = [65, 8]\n" +
				"[[task]]\nname = \"r\"\nkind = \"alpha\"\nfixed = true\nchildren = [\"c\"]\n",
			want: ErrTaskTooLarge,
		},
		{
			name: "blur larger than default page",
			src: "[frame]\nroot = \"r\"\n[[task]]\nname = \"c\"\nkind = \"alpha\"\nsize = [8, 4096]\n" +
				"[[task]]\nname = \"b\"\nkind = \"blur\"\nsource = \"c\"\nradius = 2.0\n" +
				"[[task]]\nname = \"r\"\nkind = \"alpha\"\nfixed = true\nchildren = [\"b\"]\n",
			want: ErrTaskTooLarge,
		},
		{
			name: "bad filter",
			src: "[[task]]\nname = \"s\"\nkind = \"alpha\"\nsize = [4, 4]\n" +
				"[[task]]\nname = \"r\"\nkind = \"alpha\"\n[[task.item]]\nkind = \"blend\"\nsource = \"s\"\nfilter = \"glow\"\n",
			want: ErrUnknownKind,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(strings.NewReader(tt.src))
			if err == nil {
				_, err = f.Build()
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_SyntaxError(t *testing.T) {
	if _, err := Decode(strings.NewReader("[frame\n")); err == nil {
		t.Error("Decode() of malformed TOML succeeded")
	}
}

func TestBuild_Composites(t *testing.T) {
	src := `
[frame]
root = "root"

[[layer]]
transform = "complex"

[[task]]
name = "src"
kind = "alpha"
size = [32, 32]

[[task]]
name = "backdrop"
kind = "readback"
size = [32, 32]
rect = [0, 0, 32, 32]

[[task]]
name = "root"
kind = "alpha"
fixed = true
children = ["src", "backdrop"]

[[task.item]]
kind = "blend"
source = "src"
filter = "opacity"
amount = 0.5
bounds = [0, 0, 32, 32]

[[task.item]]
kind = "composite"
source = "src"
backdrop = "backdrop"
mode = "multiply"
z = 1
bounds = [0, 0, 32, 32]

[[task.item]]
kind = "split-composite"
source = "src"
z = 2
bounds = [0, 0, 32, 32]
`
	f, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	res, err := f.Build()
	if err != nil {
		t.Fatal(err)
	}
	root := res.Scene.Tree.Get(res.Scene.Root)
	alpha, ok := root.Kind.(rendertask.Alpha)
	if !ok || len(alpha.Items) != 3 {
		t.Fatalf("root kind = %#v, want Alpha with 3 items", root.Kind)
	}
	blend, ok := alpha.Items[0].(rendertask.BlendItem)
	if !ok || blend.Filter.Kind != rendertask.FilterOpacity || blend.Filter.Amount != 0.5 {
		t.Errorf("item 0 = %#v", alpha.Items[0])
	}
	comp, ok := alpha.Items[1].(rendertask.CompositeItem)
	if !ok || comp.Mode != rendertask.MixMultiply || comp.Backdrop != res.Tasks["backdrop"] {
		t.Errorf("item 1 = %#v", alpha.Items[1])
	}
	if split, ok := alpha.Items[2].(rendertask.SplitCompositeItem); !ok || !split.Plane.IsValid() {
		t.Errorf("item 2 = %#v", alpha.Items[2])
	}
	if len(res.Scene.Layers) != 1 || res.Scene.Layers[0].Transform.String() != "Complex" {
		t.Errorf("layers = %v", res.Scene.Layers)
	}
}
