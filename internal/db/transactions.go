package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-geojoin/internal/transaction"
)

// TransactionsTable holds one row per joined transaction: every source
// column as TEXT, then longitude, latitude and the point geometry.
type TransactionsTable struct {
	Schema string
	Name   string
}

// TransactionRow is a joined transaction ready to load.
type TransactionRow struct {
	Fields    []string
	Longitude float64
	Latitude  float64
}

func (t TransactionsTable) ident() pgx.Identifier { return tableIdent(t.Schema, t.Name) }

// Columns returns the table's column names for the given source columns.
func (t TransactionsTable) Columns(source []string) []string {
	cols := make([]string, 0, len(source)+3)
	cols = append(cols, source...)
	return append(cols, transaction.LongitudeColumn, transaction.LatitudeColumn, GeomColumn)
}

// Recreate drops the table and creates it for the source columns. The
// column set follows the input file, so the table is rebuilt every run.
func (t TransactionsTable) Recreate(ctx context.Context, q Querier, source []string) error {
	table := t.ident().Sanitize()
	if _, err := q.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return eris.Wrapf(err, "db: drop transactions table %s", t.Name)
	}

	defs := make([]string, 0, len(source)+3)
	for _, c := range source {
		defs = append(defs, pgx.Identifier{c}.Sanitize()+" TEXT")
	}
	defs = append(defs,
		pgx.Identifier{transaction.LongitudeColumn}.Sanitize()+" DOUBLE PRECISION NOT NULL",
		pgx.Identifier{transaction.LatitudeColumn}.Sanitize()+" DOUBLE PRECISION NOT NULL",
		fmt.Sprintf("%s geometry(Point, %d) NOT NULL", pgx.Identifier{GeomColumn}.Sanitize(), SRID),
	)
	create := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
	if _, err := q.Exec(ctx, create); err != nil {
		return eris.Wrapf(err, "db: create transactions table %s", t.Name)
	}
	return nil
}

// Copy streams rows into the table with COPY, encoding each point as EWKB.
// It returns the number of rows copied.
func (t TransactionsTable) Copy(ctx context.Context, q Querier, source []string, rows []TransactionRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		row := rows[i]
		if len(row.Fields) != len(source) {
			return nil, eris.Errorf("db: row %d has %d fields, want %d", i, len(row.Fields), len(source))
		}
		wkb, err := EncodePoint(row.Longitude, row.Latitude)
		if err != nil {
			return nil, err
		}
		values := make([]any, 0, len(source)+3)
		for _, f := range row.Fields {
			values = append(values, f)
		}
		return append(values, row.Longitude, row.Latitude, wkb), nil
	})

	n, err := q.CopyFrom(ctx, t.ident(), t.Columns(source), src)
	if err != nil {
		return 0, eris.Wrapf(err, "db: copy transactions into %s", t.Name)
	}
	return n, nil
}
