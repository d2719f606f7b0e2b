// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/tiling"
	"github.com/gogpu/tiling/internal/scenefile"
)

type buildOpts struct {
	passes bool // print one row per pass
}

func newBuildCmd() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <scene.toml>...",
		Short: "Build each scene and print frame statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				f, err := scenefile.Load(path)
				if err != nil {
					return err
				}
				res, err := f.Build()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				frame := tiling.BuildFrame(cmd.Context(), res.Scene, res.Options...)
				if err := writeFrame(cmd.OutOrStdout(), path, frame, opts); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.passes, "passes", false, "print statistics per pass")
	return cmd
}

func writeFrame(w io.Writer, name string, frame *tiling.Frame, opts buildOpts) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	s := frame.Stats()
	fmt.Fprintf(tw, "%s\n", name)
	fmt.Fprintf(tw, "  passes\t%d\n", s.Passes)
	fmt.Fprintf(tw, "  tasks\t%d\n", s.Tasks)
	fmt.Fprintf(tw, "  allocations\t%d\n", s.Allocations)
	fmt.Fprintf(tw, "  aliases\t%d\n", s.Aliases)
	fmt.Fprintf(tw, "  targets\t%d color, %d alpha\n", s.ColorTargets, s.AlphaTargets)
	fmt.Fprintf(tw, "  batches\t%d\n", s.Batches)
	fmt.Fprintf(tw, "  instances\t%d\n", s.Instances)
	fmt.Fprintf(tw, "  deferred\t%d\n", len(frame.DeferredResolves))

	if opts.passes {
		fmt.Fprintf(tw, "\n  pass\ttasks\tcolor\talpha\tbatches\tinstances\n")
		for _, p := range frame.Passes {
			ps := p.Stats()
			fb := ""
			if p.IsFramebuffer {
				fb = " (framebuffer)"
			}
			fmt.Fprintf(tw, "  %d%s\t%d\t%d\t%d\t%d\t%d\n", p.Index, fb, ps.Tasks, ps.ColorTargets, ps.AlphaTargets, ps.Batches, ps.Instances)
		}
	}
	return tw.Flush()
}
