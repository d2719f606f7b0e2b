// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/gogpu/tiling"
)

// newLogger returns a logger writing to w at level, with short timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// installLogger routes the engine's logs through l.
func installLogger(l *log.Logger) {
	tiling.SetLogger(slog.New(l))
}
