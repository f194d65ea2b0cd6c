package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/transaction"
)

// pointColumns is the column order of the points table and its COPY stream.
var pointColumns = []string{"postal_code", transaction.LongitudeColumn, transaction.LatitudeColumn, GeomColumn}

// PointsTable maps each postal code to its representative point. Rows
// survive across runs and are refreshed by Upsert.
type PointsTable struct {
	Schema string
	Name   string
}

func (t PointsTable) ident() pgx.Identifier { return tableIdent(t.Schema, t.Name) }

// stagingName is the temp table Upsert copies into.
func (t PointsTable) stagingName() string { return "_stage_" + t.Name }

// Create makes the table if it does not exist yet.
func (t PointsTable) Create(ctx context.Context, q Querier) error {
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	postal_code TEXT PRIMARY KEY,
	%s DOUBLE PRECISION NOT NULL,
	%s DOUBLE PRECISION NOT NULL,
	%s geometry(Point, %d) NOT NULL
)`,
		t.ident().Sanitize(),
		pgx.Identifier{transaction.LongitudeColumn}.Sanitize(),
		pgx.Identifier{transaction.LatitudeColumn}.Sanitize(),
		pgx.Identifier{GeomColumn}.Sanitize(),
		SRID,
	)
	if _, err := q.Exec(ctx, sql); err != nil {
		return eris.Wrapf(err, "db: create points table %s", t.Name)
	}
	return nil
}

// Upsert COPYs points into a temp table and merges them on postal_code, so a
// code seen before gets its new coordinates. The temp table is dropped at
// commit. It returns the number of rows inserted or updated.
func (t PointsTable) Upsert(ctx context.Context, q Querier, points []model.PostalPoint) (int64, error) {
	if len(points) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(points))
	for _, pt := range points {
		wkb, err := EncodePoint(pt.Longitude, pt.Latitude)
		if err != nil {
			return 0, eris.Wrapf(err, "db: postal code %s", pt.PostalCode)
		}
		rows = append(rows, []any{string(pt.PostalCode), pt.Longitude, pt.Latitude, wkb})
	}

	staging := pgx.Identifier{t.stagingName()}
	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		staging.Sanitize(), t.ident().Sanitize(),
	)
	if _, err := q.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: create staging table for %s", t.Name)
	}

	if _, err := q.CopyFrom(ctx, staging, pointColumns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: copy points into staging for %s", t.Name)
	}

	tag, err := q.Exec(ctx, mergeSQL(t.ident(), staging))
	if err != nil {
		return 0, eris.Wrapf(err, "db: merge points into %s", t.Name)
	}
	return tag.RowsAffected(), nil
}

// mergeSQL builds the INSERT ... ON CONFLICT statement moving staged points
// into target.
func mergeSQL(target, staging pgx.Identifier) string {
	cols := make([]string, len(pointColumns))
	var set []string
	for i, c := range pointColumns {
		cols[i] = pgx.Identifier{c}.Sanitize()
		if i > 0 {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", cols[i], cols[i]))
		}
	}
	list := strings.Join(cols, ", ")
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		target.Sanitize(), list, list, staging.Sanitize(), cols[0], strings.Join(set, ", "),
	)
}
