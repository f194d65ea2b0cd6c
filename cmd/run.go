package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/resale-geojoin/internal/config"
	"github.com/sells-group/resale-geojoin/internal/export"
	"github.com/sells-group/resale-geojoin/internal/pipeline"
)

var runFlags struct {
	footprints   string
	transactions string
	csvOut       string
	geojsonOut   string
	xlsxOut      string
	sqliteOut    string
	pointsOut    string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Join transactions to postal code points and write the outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyRunFlags(cmd, cfg)
		opts := pipeline.OptionsFromConfig(cfg)

		if cfg.PostGIS.DatabaseURL != "" {
			pool, err := postgisPool(ctx, cfg.PostGIS.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			opts.PostGIS = &export.PostGISSink{Pool: pool, Schema: cfg.PostGIS.Schema, Table: cfg.PostGIS.Table}
		}

		result, err := pipeline.Run(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("join complete",
			zap.String("run_id", result.RunID),
			zap.Int("dropped", result.Dropped()),
		)

		fmt.Printf("CSV written: %s | rows: %d\n", absPath(opts.Output.CSV), result.RowsWritten)
		fmt.Printf("GeoJSON written: %s | features: %d\n", absPath(opts.Output.GeoJSON), result.FeaturesWritten)
		return nil
	},
}

// applyRunFlags overrides config paths with flags the user set.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	set := func(name string, dst *string, val string) {
		if cmd.Flags().Changed(name) {
			*dst = val
		}
	}
	set("footprints", &c.Footprints.Path, runFlags.footprints)
	set("transactions", &c.Transactions.Path, runFlags.transactions)
	set("csv-out", &c.Output.CSV, runFlags.csvOut)
	set("geojson-out", &c.Output.GeoJSON, runFlags.geojsonOut)
	set("xlsx-out", &c.Output.XLSX, runFlags.xlsxOut)
	set("sqlite-out", &c.Output.SQLite, runFlags.sqliteOut)
	set("points-out", &c.Output.PointsCSV, runFlags.pointsOut)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.footprints, "footprints", "", "building footprints (GeoJSON or shapefile)")
	f.StringVar(&runFlags.transactions, "transactions", "", "resale transactions (CSV or XLSX)")
	f.StringVar(&runFlags.csvOut, "csv-out", "", "joined CSV output path")
	f.StringVar(&runFlags.geojsonOut, "geojson-out", "", "joined GeoJSON output path")
	f.StringVar(&runFlags.xlsxOut, "xlsx-out", "", "optional XLSX output path")
	f.StringVar(&runFlags.sqliteOut, "sqlite-out", "", "optional SQLite database path")
	f.StringVar(&runFlags.pointsOut, "points-out", "", "optional postal code points CSV path")
	rootCmd.AddCommand(runCmd)
}
