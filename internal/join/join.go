// Package join attaches representative coordinates to transactions by postal
// code. The left join and the completeness filter are separate steps so that
// unmatched rows stay visible until they are deliberately dropped.
package join

import (
	"strings"

	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/postal"
	"github.com/sells-group/resale-geojoin/internal/transaction"
)

// Lookup resolves a postal code to its representative point.
type Lookup interface {
	Lookup(code postal.Code) (model.PostalPoint, bool)
}

// Match is one transaction after the left join. Point is nil when the record
// has no postal code or no footprint shares it.
type Match struct {
	Record transaction.Record
	Point  *model.PostalPoint
}

// Row is a transaction with a guaranteed postal code and coordinate pair.
type Row struct {
	Record     transaction.Record
	PostalCode postal.Code
	Longitude  float64
	Latitude   float64
}

// Result is the filtered join, in source transaction order.
type Result struct {
	Columns       []string
	Kinds         []transaction.Kind // inferred over every source row
	PostalIdx     int
	Rows          []Row
	MissingPostal int
	Unmatched     int
}

// Left keeps every transaction and attaches a point where one exists.
func Left(table *transaction.Table, points Lookup) []Match {
	matches := make([]Match, len(table.Records))
	for i, rec := range table.Records {
		matches[i] = Match{Record: rec}
		if !rec.HasPostal {
			continue
		}
		if p, ok := points.Lookup(rec.Postal); ok {
			matches[i].Point = &p
		}
	}
	return matches
}

// Complete drops matches lacking a postal code, a blank postal code, or a
// point, and counts why each was dropped.
func Complete(table *transaction.Table, matches []Match) Result {
	res := Result{
		Columns:   table.Columns,
		Kinds:     table.ColumnKinds(),
		PostalIdx: table.PostalIdx,
		Rows:      make([]Row, 0, len(matches)),
	}

	for _, m := range matches {
		if !m.Record.HasPostal || strings.TrimSpace(string(m.Record.Postal)) == "" {
			res.MissingPostal++
			continue
		}
		if m.Point == nil {
			res.Unmatched++
			continue
		}
		res.Rows = append(res.Rows, Row{
			Record:     m.Record,
			PostalCode: m.Record.Postal,
			Longitude:  m.Point.Longitude,
			Latitude:   m.Point.Latitude,
		})
	}

	return res
}

// Run is Left followed by Complete.
func Run(table *transaction.Table, points Lookup) Result {
	return Complete(table, Left(table, points))
}
