package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/resale-geojoin/internal/export"
	"github.com/sells-group/resale-geojoin/internal/pipeline"
)

var (
	pointsFootprints string
	pointsOut        string
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Write the postal code to representative point table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("footprints") {
			cfg.Footprints.Path = pointsFootprints
		}
		out := pointsOut
		if out == "" {
			out = cfg.Output.PointsCSV
		}
		if out == "" {
			return eris.New("points: set --out or output.points_csv")
		}

		set, points, err := pipeline.Points(ctx, pipeline.OptionsFromConfig(cfg).Footprints)
		if err != nil {
			return err
		}

		err = export.WriteFile(out, func(w io.Writer) error {
			return export.WritePointsCSV(w, points)
		})
		if err != nil {
			return err
		}

		fmt.Printf("Points written: %s | postal codes: %d | footprints skipped: %d\n", absPath(out), len(points), set.Skipped())
		return nil
	},
}

func init() {
	pointsCmd.Flags().StringVar(&pointsFootprints, "footprints", "", "building footprints (GeoJSON or shapefile)")
	pointsCmd.Flags().StringVar(&pointsOut, "out", "", "output CSV path")
	rootCmd.AddCommand(pointsCmd)
}
