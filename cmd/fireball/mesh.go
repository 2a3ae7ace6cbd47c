package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/Carmen-Shannon/oxy-fireball/engine/icosphere"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
)

func newMeshCommand(f *flags) *cobra.Command {
	var single bool
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Generate icospheres without a window and print their sizes",
		Long:  "mesh generates every level from 0 up to --level on the worker pool and prints vertex and triangle counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			levels := []int{cfg.Fireball.Level}
			if !single {
				levels = levels[:0]
				for l := 0; l <= cfg.Fireball.Level; l++ {
					levels = append(levels, l)
				}
			}

			b := icosphere.NewBuilder(
				icosphere.WithWorkers(cfg.Workers.Count),
				icosphere.WithQueueSize(cfg.Workers.QueueSize),
			)
			defer b.Close()

			start := time.Now()
			meshes, err := b.BuildLevels(mgl32.Vec3{}, cfg.Fireball.Radius, levels...)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LEVEL\tVERTICES\tTRIANGLES\tINDEX BYTES")
			for _, l := range levels {
				m := meshes[l]
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", l, m.VertexCount(), m.TriangleCount(), len(m.IndexData()))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %d level(s) in %s\n", len(levels), elapsed.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().BoolVar(&single, "single", false, "build only the configured level")
	return cmd
}
