// Package pipeline runs the footprint to transaction join end to end.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/resale-geojoin/internal/config"
	"github.com/sells-group/resale-geojoin/internal/export"
	"github.com/sells-group/resale-geojoin/internal/footprint"
	"github.com/sells-group/resale-geojoin/internal/join"
	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/spatial"
	"github.com/sells-group/resale-geojoin/internal/transaction"
)

// Options configures a run. Empty optional output paths disable that sink.
type Options struct {
	Footprints   footprint.Options
	Transactions string
	Reader       transaction.Options
	Output       config.OutputConfig
	PostGIS      *export.PostGISSink // nil = disabled
}

// OptionsFromConfig maps the application config onto run options. The
// PostGIS sink needs a live pool and is attached by the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Footprints: footprint.Options{
			Path:             cfg.Footprints.Path,
			Format:           cfg.Footprints.Format,
			DescriptionField: cfg.Footprints.DescriptionField,
			PostalField:      cfg.Footprints.PostalField,
			CRS:              cfg.Footprints.CRS,
		},
		Transactions: cfg.Transactions.Path,
		Reader: transaction.Options{
			Delimiter:    cfg.Transactions.DelimiterRune(),
			PostalColumn: cfg.Transactions.PostalColumn,
			SheetName:    cfg.Transactions.Sheet,
		},
		Output: cfg.Output,
	}
}

// Points loads footprints, dissolves them by postal code and returns one
// WGS84 representative point per code, sorted by code.
func Points(ctx context.Context, opts footprint.Options) (*footprint.Set, []model.PostalPoint, error) {
	set, err := footprint.Load(opts)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: load footprints")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: cancelled")
	}

	groups := spatial.Dissolve(set.Footprints)
	points, err := spatial.Points(groups, set.CRS)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: postal points")
	}
	return set, points, nil
}

// Run executes one full join. Footprints and transactions load concurrently;
// the join, and therefore every output, depends only on the input contents.
func Run(ctx context.Context, opts Options) (*model.RunResult, error) {
	if opts.Output.CSV == "" || opts.Output.GeoJSON == "" {
		return nil, eris.New("pipeline: csv and geojson output paths are required")
	}

	result := &model.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := zap.L().With(zap.String("run_id", result.RunID))
	setStatus := func(status model.RunStatus) {
		log.Info("pipeline: stage", zap.String("status", string(status)))
	}

	out, err := run(ctx, opts, result, setStatus)
	if err != nil {
		setStatus(model.RunStatusFailed)
		return nil, err
	}

	setStatus(model.RunStatusComplete)
	log.Info("pipeline: run complete",
		zap.Int("postal_points", out.PostalPoints),
		zap.Int("transactions", out.Transactions),
		zap.Int("missing_postal", out.MissingPostal),
		zap.Int("unmatched", out.Unmatched),
		zap.Int("rows_written", out.RowsWritten),
		zap.Duration("elapsed", out.FinishedAt.Sub(out.StartedAt)),
	)
	return out, nil
}

func run(ctx context.Context, opts Options, result *model.RunResult, setStatus func(model.RunStatus)) (*model.RunResult, error) {
	var (
		set    *footprint.Set
		points []model.PostalPoint
		table  *transaction.Table
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		setStatus(model.RunStatusLoadingFootprints)
		var err error
		set, points, err = Points(gctx, opts.Footprints)
		return err
	})
	g.Go(func() error {
		setStatus(model.RunStatusLoadingTransactions)
		var err error
		table, err = transaction.Load(gctx, opts.Transactions, opts.Reader)
		return eris.Wrap(err, "pipeline: load transactions")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.FootprintsRead = set.Read
	result.FootprintsSkipped = set.Skipped()
	result.PostalPoints = len(points)
	result.Transactions = len(table.Records)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: cancelled")
	}

	setStatus(model.RunStatusJoining)
	res := join.Complete(table, join.Left(table, spatial.NewIndex(points)))
	result.MissingPostal = res.MissingPostal
	result.Unmatched = res.Unmatched

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: cancelled")
	}

	setStatus(model.RunStatusExporting)
	if err := writeFiles(opts.Output, points, res, result); err != nil {
		return nil, err
	}

	if opts.PostGIS != nil {
		if _, err := opts.PostGIS.Write(ctx, points, res); err != nil {
			return nil, eris.Wrap(err, "pipeline: postgis export")
		}
	}

	result.FinishedAt = time.Now().UTC()

	if opts.Output.SQLite != "" {
		if err := writeSQLite(ctx, opts.Output.SQLite, points, res, *result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// writeFiles writes the file outputs in parallel. Each writer owns its file.
func writeFiles(out config.OutputConfig, points []model.PostalPoint, res join.Result, result *model.RunResult) error {
	var g errgroup.Group

	g.Go(func() error {
		return export.WriteFile(out.CSV, func(w io.Writer) error {
			n, err := export.WriteCSV(w, res)
			result.RowsWritten = n
			return err
		})
	})
	g.Go(func() error {
		return export.WriteFile(out.GeoJSON, func(w io.Writer) error {
			n, err := export.WriteGeoJSON(w, res)
			result.FeaturesWritten = n
			return err
		})
	})
	if out.XLSX != "" {
		g.Go(func() error {
			_, err := export.WriteXLSX(out.XLSX, res)
			return err
		})
	}
	if out.PointsCSV != "" {
		g.Go(func() error {
			return export.WriteFile(out.PointsCSV, func(w io.Writer) error {
				return export.WritePointsCSV(w, points)
			})
		})
	}

	return eris.Wrap(g.Wait(), "pipeline: write outputs")
}

func writeSQLite(ctx context.Context, path string, points []model.PostalPoint, res join.Result, run model.RunResult) error {
	sink, err := export.OpenSQLite(path)
	if err != nil {
		return eris.Wrap(err, "pipeline: open sqlite")
	}
	defer sink.Close()

	if err := sink.Migrate(ctx); err != nil {
		return err
	}
	return eris.Wrap(sink.Write(ctx, points, res, run), "pipeline: sqlite export")
}
