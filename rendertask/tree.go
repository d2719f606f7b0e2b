// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rendertask holds the render task graph of a frame.
//
// Tasks live in a flat arena ([Tree]) and reference their children by
// [core.TaskID]. The graph is a DAG: a task's children must be drawn in an
// earlier pass than the task itself. The only mutations after construction
// are location assignment and alias marking during the pass build.
package rendertask

import (
	"fmt"
	"image"

	"github.com/gogpu/tiling/core"
)

// Task is one offscreen (or framebuffer) draw operation.
type Task struct {
	// CacheKey is set for tasks eligible for coalescing.
	CacheKey *CacheKey

	Location Location
	Children []core.TaskID
	Kind     Kind

	// Shared tasks are rendered in the first pass so every later pass can
	// read them. Clip masks are always shared.
	Shared bool
}

// IsShared reports whether the task is rendered in the first pass.
func (t *Task) IsShared() bool {
	if _, ok := t.Kind.(CacheMask); ok {
		return true
	}
	return t.Shared
}

// IsAlias reports whether the task was coalesced into another task.
func (t *Task) IsAlias() bool {
	_, ok := t.Kind.(Alias)
	return ok
}

// TaskData is the per-task block the shaders read, indexed by task address.
//
// Words 0-3 hold the target rectangle (x, y, w, h) and word 4 the target
// index. The rest depends on the kind:
//
//	Alpha:          5-6 screen origin
//	CacheMask:      5-8 actual rect, 9-10 inner rect origin
//	blurs:          5 radius
//	Readback:       5-8 source rect
type TaskData [12]float32

// Tree is the arena of a frame's tasks.
type Tree struct {
	Tasks []Task

	// Data is filled by Build.
	Data []TaskData
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Add appends a task and returns its id.
func (t *Tree) Add(task Task) core.TaskID {
	t.Tasks = append(t.Tasks, task)
	return core.TaskID(len(t.Tasks) - 1)
}

// Get returns the task with the given id.
func (t *Tree) Get(id core.TaskID) *Task {
	return &t.Tasks[id]
}

// Len returns the number of tasks.
func (t *Tree) Len() int {
	return len(t.Tasks)
}

// Address returns the address the shaders fetch the task's data from.
// Aliases resolve to the task they alias.
func (t *Tree) Address(id core.TaskID) core.TaskAddress {
	if a, ok := t.Tasks[id].Kind.(Alias); ok {
		return core.TaskAddress(a.Of)
	}
	return core.TaskAddress(id)
}

// NewBlur adds a vertical blur of src followed by a horizontal blur of the
// result, and returns the horizontal one. Both have src's size.
func (t *Tree) NewBlur(src core.TaskID, radius float32) core.TaskID {
	size := t.Tasks[src].Location.Size
	v := t.Add(Task{
		Location: Dynamic(size),
		Children: []core.TaskID{src},
		Kind:     VerticalBlur{Radius: radius},
	})
	return t.Add(Task{
		Location: Dynamic(size),
		Children: []core.TaskID{v},
		Kind:     HorizontalBlur{Radius: radius},
	})
}

// MaxDepth returns the number of tasks on the longest path from root,
// including root. It is the number of passes the graph needs.
func (t *Tree) MaxDepth(root core.TaskID) int {
	memo := make(map[core.TaskID]int)
	var depth func(id core.TaskID) int
	depth = func(id core.TaskID) int {
		if d, ok := memo[id]; ok {
			return d
		}
		d := 0
		for _, c := range t.Tasks[id].Children {
			d = max(d, depth(c))
		}
		memo[id] = d + 1
		return d + 1
	}
	return depth(root)
}

// AssignToPasses distributes the tasks reachable from root over MaxDepth(root)
// passes and returns the task ids of each pass.
//
// A task is placed one pass before the earliest pass of all its parents, so
// root lands in the last pass. Shared tasks go to pass 0. Each task appears
// exactly once; children appear before their parents.
func (t *Tree) AssignToPasses(root core.TaskID) [][]core.TaskID {
	count := t.MaxDepth(root)
	last := count - 1

	// Post-order gives children before parents; reversed it is a topological
	// order from root, in which longest distances can be relaxed.
	var order []core.TaskID
	seen := make(map[core.TaskID]bool)
	var visit func(id core.TaskID)
	visit = func(id core.TaskID) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, c := range t.Tasks[id].Children {
			visit(c)
		}
		order = append(order, id)
	}
	visit(root)

	level := make(map[core.TaskID]int, len(order))
	level[root] = 0
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		for _, c := range t.Tasks[id].Children {
			level[c] = max(level[c], level[id]+1)
		}
	}

	passes := make([][]core.TaskID, count)
	for _, id := range order {
		task := &t.Tasks[id]
		pass := last - level[id]
		if task.Location.IsFixed() != (pass == last) {
			panic(fmt.Sprintf("rendertask: BUG: %v with %v scheduled in pass %d of %d", id, task.Location, pass, count))
		}
		if task.IsShared() {
			if len(task.Children) != 0 {
				panic(fmt.Sprintf("rendertask: BUG: shared %v has children", id))
			}
			pass = 0
		}
		passes[pass] = append(passes[pass], id)
	}
	return passes
}

// Build writes the data block of every task into Data.
func (t *Tree) Build() {
	t.Data = t.Data[:0]
	for i := range t.Tasks {
		t.Data = append(t.Data, t.Tasks[i].data())
	}
}

func (task *Task) data() TaskData {
	var d TaskData
	r := task.Location.Rect()
	_, target, _ := task.Location.Assigned()
	d[0], d[1] = float32(r.Min.X), float32(r.Min.Y)
	d[2], d[3] = float32(r.Dx()), float32(r.Dy())
	d[4] = float32(target)

	switch k := task.Kind.(type) {
	case Alpha:
		d[5], d[6] = float32(k.ScreenOrigin.X), float32(k.ScreenOrigin.Y)
	case CacheMask:
		putRect(d[5:9], k.ActualRect)
		d[9], d[10] = float32(k.InnerRect.Min.X), float32(k.InnerRect.Min.Y)
	case VerticalBlur:
		d[5] = k.Radius
	case HorizontalBlur:
		d[5] = k.Radius
	case Readback:
		putRect(d[5:9], k.Rect)
	}
	return d
}

func putRect(dst []float32, r image.Rectangle) {
	dst[0], dst[1] = float32(r.Min.X), float32(r.Min.Y)
	dst[2], dst[3] = float32(r.Dx()), float32(r.Dy())
}
