// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestTaskRef(t *testing.T) {
	var none TaskRef
	if none.IsSet() {
		t.Error("zero TaskRef should not be set")
	}
	if _, ok := none.Get(); ok {
		t.Error("zero TaskRef Get() returned ok")
	}

	r := Ref(0)
	id, ok := r.Get()
	if !ok || id != 0 {
		t.Errorf("Ref(0).Get() = (%v, %v), want (Task(0), true)", id, ok)
	}
}

func TestOpaqueTaskAddress(t *testing.T) {
	if OpaqueTaskAddress != 0x7FFFFFFF {
		t.Errorf("OpaqueTaskAddress = %#x, want 0x7FFFFFFF", int32(OpaqueTaskAddress))
	}
}

func TestTargetKindFormat(t *testing.T) {
	tests := []struct {
		kind TargetKind
		want gputypes.TextureFormat
		name string
	}{
		{TargetColor, gputypes.TextureFormatBGRA8Unorm, "Color"},
		{TargetAlpha, gputypes.TextureFormatR8Unorm, "Alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Format(); got != tt.want {
				t.Errorf("Format() = %v, want %v", got, tt.want)
			}
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
}
