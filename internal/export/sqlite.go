package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/resale-geojoin/internal/join"
	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/transaction"
)

// SQLiteSink stores the postal points, joined transactions and a run log in
// a SQLite database using modernc.org/sqlite.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database at the given path and configures WAL mode.
func OpenSQLite(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteSink{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id                 TEXT PRIMARY KEY,
	status             TEXT NOT NULL,
	footprints_read    INTEGER NOT NULL,
	footprints_skipped INTEGER NOT NULL,
	postal_points      INTEGER NOT NULL,
	transactions       INTEGER NOT NULL,
	missing_postal     INTEGER NOT NULL,
	unmatched          INTEGER NOT NULL,
	rows_written       INTEGER NOT NULL,
	started_at         DATETIME NOT NULL,
	finished_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS postal_points (
	postal_code TEXT PRIMARY KEY,
	longitude   REAL NOT NULL,
	latitude    REAL NOT NULL
);
`

// Migrate creates the fixed tables.
func (s *SQLiteSink) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for inspection.
func (s *SQLiteSink) DB() *sql.DB {
	return s.db
}

// Write replaces postal_points and transactions with this run's data and
// appends a runs row, all in one transaction.
func (s *SQLiteSink) Write(ctx context.Context, points []model.PostalPoint, res join.Result, run model.RunResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM postal_points"); err != nil {
		return eris.Wrap(err, "sqlite: clear postal_points")
	}
	pointStmt, err := tx.PrepareContext(ctx, "INSERT INTO postal_points (postal_code, longitude, latitude) VALUES (?, ?, ?)")
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare postal_points insert")
	}
	defer pointStmt.Close()
	for _, p := range points {
		if _, err = pointStmt.ExecContext(ctx, string(p.PostalCode), p.Longitude, p.Latitude); err != nil {
			return eris.Wrapf(err, "sqlite: insert postal point %s", p.PostalCode)
		}
	}

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS transactions"); err != nil {
		return eris.Wrap(err, "sqlite: drop transactions")
	}
	if _, err = tx.ExecContext(ctx, createTransactionsSQL(res.Columns)); err != nil {
		return eris.Wrap(err, "sqlite: create transactions")
	}

	cols := Header(res)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	rowStmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO transactions (%s) VALUES (%s)", quoteIdents(cols), placeholders))
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare transactions insert")
	}
	defer rowStmt.Close()

	args := make([]any, len(cols))
	for _, row := range res.Rows {
		for i, f := range row.Record.Fields {
			args[i] = f
		}
		args[len(cols)-2] = row.Longitude
		args[len(cols)-1] = row.Latitude
		if _, err = rowStmt.ExecContext(ctx, args...); err != nil {
			return eris.Wrapf(err, "sqlite: insert transaction row %d", row.Record.Line)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, status, footprints_read, footprints_skipped, postal_points, transactions,
			missing_postal, unmatched, rows_written, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, string(model.RunStatusComplete), run.FootprintsRead, run.FootprintsSkipped, run.PostalPoints,
		run.Transactions, run.MissingPostal, run.Unmatched, run.RowsWritten, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	if err = tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}
	return nil
}

func createTransactionsSQL(columns []string) string {
	defs := make([]string, 0, len(columns)+2)
	for _, c := range columns {
		defs = append(defs, quoteIdent(c)+" TEXT")
	}
	defs = append(defs,
		quoteIdent(transaction.LongitudeColumn)+" REAL NOT NULL",
		quoteIdent(transaction.LatitudeColumn)+" REAL NOT NULL",
	)
	return "CREATE TABLE transactions (" + strings.Join(defs, ", ") + ")"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIdents(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
