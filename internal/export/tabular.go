// Package export writes joined transactions to tabular, geospatial and
// database sinks.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-geojoin/internal/join"
	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/transaction"
)

// formatCoord renders a coordinate with the fewest digits that round-trip.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Header returns the output columns: transaction columns, then longitude and latitude.
func Header(res join.Result) []string {
	h := make([]string, 0, len(res.Columns)+2)
	h = append(h, res.Columns...)
	return append(h, transaction.LongitudeColumn, transaction.LatitudeColumn)
}

// WriteCSV writes one row per joined transaction. It returns the number of
// data rows written.
func WriteCSV(w io.Writer, res join.Result) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(res)); err != nil {
		return 0, eris.Wrap(err, "export: write csv header")
	}

	record := make([]string, len(res.Columns)+2)
	for i, row := range res.Rows {
		copy(record, row.Record.Fields)
		record[len(res.Columns)] = formatCoord(row.Longitude)
		record[len(res.Columns)+1] = formatCoord(row.Latitude)
		if err := cw.Write(record); err != nil {
			return i, eris.Wrapf(err, "export: write csv row %d", row.Record.Line)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, eris.Wrap(err, "export: flush csv")
	}
	return len(res.Rows), nil
}

// WritePointsCSV writes the postal code point table.
func WritePointsCSV(w io.Writer, points []model.PostalPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"postal_code", transaction.LongitudeColumn, transaction.LatitudeColumn}); err != nil {
		return eris.Wrap(err, "export: write points header")
	}
	for _, p := range points {
		if err := cw.Write([]string{string(p.PostalCode), formatCoord(p.Longitude), formatCoord(p.Latitude)}); err != nil {
			return eris.Wrapf(err, "export: write point %s", p.PostalCode)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush points csv")
}

// WriteFile creates path and hands it to write. The file is closed before
// returning and its close error is reported.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", path)
		}
	}()
	return write(f)
}
