package spatial

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/postal"
)

// Points reprojects every dissolved group to WGS84 and computes its
// representative point. Groups without area are dropped. Output keeps the
// group order, so codes stay sorted and unique.
func Points(groups []Group, from CRS) ([]model.PostalPoint, error) {
	points := make([]model.PostalPoint, 0, len(groups))
	var degenerate int

	for _, g := range groups {
		wgs, err := Reproject(g.Geometry, from)
		if err != nil {
			return nil, eris.Wrapf(err, "spatial: reproject postal code %s", g.PostalCode)
		}

		lon, lat, ok := InteriorPoint(wgs)
		if !ok {
			degenerate++
			continue
		}

		points = append(points, model.PostalPoint{
			PostalCode: g.PostalCode,
			Longitude:  lon,
			Latitude:   lat,
		})
	}

	if degenerate > 0 {
		zap.L().Warn("spatial: postal codes without area dropped", zap.Int("count", degenerate))
	}

	return points, nil
}

// Index looks up representative points by postal code.
type Index map[postal.Code]model.PostalPoint

// NewIndex builds an Index. Later duplicates are ignored.
func NewIndex(points []model.PostalPoint) Index {
	idx := make(Index, len(points))
	for _, p := range points {
		if _, dup := idx[p.PostalCode]; dup {
			continue
		}
		idx[p.PostalCode] = p
	}
	return idx
}

// Lookup returns the point for code.
func (idx Index) Lookup(code postal.Code) (model.PostalPoint, bool) {
	p, ok := idx[code]
	return p, ok
}
