package export

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resale-geojoin/internal/db"
	"github.com/sells-group/resale-geojoin/internal/join"
	"github.com/sells-group/resale-geojoin/internal/model"
)

// PostGISSink loads joined transactions and postal points into PostGIS.
type PostGISSink struct {
	Pool   db.Pool
	Schema string
	Table  string // transactions table; points go to <Table>_points
}

// PointsTable returns the name of the postal point table.
func (p *PostGISSink) PointsTable() string {
	return p.Table + "_points"
}

// Write recreates the transactions table, COPYs every joined row with an
// EWKB point, and upserts the postal points, all in one transaction. A
// failure leaves both tables as they were. It returns the number of
// transaction rows copied.
func (p *PostGISSink) Write(ctx context.Context, points []model.PostalPoint, res join.Result) (int64, error) {
	log := zap.L().With(
		zap.String("component", "export.postgis"),
		zap.String("table", p.Schema+"."+p.Table),
	)

	transactions := db.TransactionsTable{Schema: p.Schema, Name: p.Table}
	pointsTable := db.PointsTable{Schema: p.Schema, Name: p.PointsTable()}

	rows := make([]db.TransactionRow, 0, len(res.Rows))
	for _, row := range res.Rows {
		rows = append(rows, db.TransactionRow{
			Fields:    row.Record.Fields,
			Longitude: row.Longitude,
			Latitude:  row.Latitude,
		})
	}

	var copied, upserted int64
	err := db.InTx(ctx, p.Pool, func(tx pgx.Tx) error {
		if err := pointsTable.Create(ctx, tx); err != nil {
			return err
		}
		if err := transactions.Recreate(ctx, tx, res.Columns); err != nil {
			return err
		}

		var err error
		if copied, err = transactions.Copy(ctx, tx, res.Columns, rows); err != nil {
			return err
		}
		upserted, err = pointsTable.Upsert(ctx, tx, points)
		return err
	})
	if err != nil {
		return 0, eris.Wrap(err, "postgis: load")
	}

	log.Info("postgis load complete", zap.Int64("rows", copied), zap.Int64("points", upserted))
	return copied, nil
}
