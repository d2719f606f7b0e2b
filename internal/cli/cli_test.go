// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/gogpu/tiling"
)

const sceneFile = "../scenefile/testdata/shadow.toml"

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Cleanup(func() { tiling.SetLogger(nil) })

	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestBuild_PrintsStats(t *testing.T) {
	stdout, stderr, err := run(t, "build", "--passes", sceneFile)
	if err != nil {
		t.Fatalf("build error = %v", err)
	}
	for _, want := range []string{"passes", "aliases", "3 (framebuffer)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "frame built") {
		t.Errorf("stderr missing frame log:\n%s", stderr)
	}
}

func TestBuild_VerboseLogsCoalescing(t *testing.T) {
	_, stderr, err := run(t, "-v", "build", sceneFile)
	if err != nil {
		t.Fatalf("build error = %v", err)
	}
	if !strings.Contains(stderr, "coalesced task") {
		t.Errorf("stderr missing debug log:\n%s", stderr)
	}
}

func TestBuild_MissingFile(t *testing.T) {
	if _, _, err := run(t, "build", "testdata/does-not-exist.toml"); err == nil {
		t.Error("build of a missing file succeeded")
	}
}

func TestBuild_NeedsArgs(t *testing.T) {
	if _, _, err := run(t, "build"); err == nil {
		t.Error("build without arguments succeeded")
	}
}
