// Package transaction reads resale transaction tables and normalises their
// postal code column into the join key.
package transaction

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/resale-geojoin/internal/postal"
)

// Coordinate columns appended by the join. Inputs must not already carry them.
const (
	LongitudeColumn = "longitude"
	LatitudeColumn  = "latitude"
)

// Options configures the CSV reader.
type Options struct {
	Delimiter    rune   // default ','
	PostalColumn string // default "postal_code"
	LazyQuotes   bool
	SheetName    string // workbook sheet; default is the first sheet
}

// Record is one transaction row. Fields line up with Table.Columns; the postal
// code field holds the normalised code, or "" when none could be parsed.
type Record struct {
	Line      int // 1-based data row number in the source
	Fields    []string
	Postal    postal.Code
	HasPostal bool
}

// Table is a loaded transaction file.
type Table struct {
	Columns   []string
	PostalIdx int
	Records   []Record
}

// Get returns the named field of r, or "" if the column does not exist.
func (t *Table) Get(r Record, column string) string {
	for i, c := range t.Columns {
		if c == column {
			return r.Fields[i]
		}
	}
	return ""
}

// Load opens path and reads it. Files ending in .xlsx are read as workbooks,
// everything else as delimited text.
func Load(ctx context.Context, path string, opts Options) (*Table, error) {
	var (
		t   *Table
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		t, err = ReadXLSX(ctx, path, opts)
	} else {
		t, err = loadDelimited(ctx, path, opts)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "transaction: load %s", path)
	}

	missing := 0
	for _, r := range t.Records {
		if !r.HasPostal {
			missing++
		}
	}
	zap.L().Info("transactions loaded",
		zap.String("component", "transaction.loader"),
		zap.String("path", path),
		zap.Int("rows", len(t.Records)),
		zap.Int("columns", len(t.Columns)),
		zap.Int("missing_postal", missing),
	)

	return t, nil
}

func loadDelimited(ctx context.Context, path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "transaction: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return Read(ctx, f, opts)
}

// Read parses a delimited table with a header row. Header names are trimmed,
// a UTF-8 byte order mark is dropped and the postal column is normalised.
func Read(ctx context.Context, r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("transaction: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "transaction: read header")
	}

	return build(ctx, header, opts, func(line int) ([]string, error) {
		record, err := reader.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, eris.Wrapf(err, "transaction: read row %d", line)
		}
		return record, nil
	})
}

// build assembles a Table from a header and a row source. next returns
// io.EOF after the last row.
func build(ctx context.Context, header []string, opts Options, next func(line int) ([]string, error)) (*Table, error) {
	if opts.PostalColumn == "" {
		opts.PostalColumn = "postal_code"
	}

	columns := cleanColumns(header)
	t := &Table{Columns: columns, PostalIdx: -1}
	for i, c := range columns {
		switch c {
		case opts.PostalColumn:
			t.PostalIdx = i
		case LongitudeColumn, LatitudeColumn:
			return nil, eris.Errorf("transaction: input already has a %q column", c)
		}
	}
	if t.PostalIdx < 0 {
		return nil, eris.Errorf("transaction: missing %q column", opts.PostalColumn)
	}

	for line := 1; ; line++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "transaction: context cancelled")
		}

		record, err := next(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := Record{Line: line, Fields: record}
		rec.Postal, rec.HasPostal = postal.Normalize(record[t.PostalIdx])
		rec.Fields[t.PostalIdx] = string(rec.Postal)
		t.Records = append(t.Records, rec)
	}

	return t, nil
}

// cleanColumns trims header names and suffixes repeats with ".1", ".2", ...
func cleanColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}
