package spatial

import (
	"sort"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/postal"
)

// Group is the dissolved shape of every footprint sharing a postal code.
type Group struct {
	PostalCode postal.Code
	Geometry   *geom.MultiPolygon
	Members    int
}

// Dissolve merges footprints by postal code. Each code appears exactly once
// in the result, ordered by code. Member polygons are kept as parts of one
// multipolygon; overlapping parts are resolved by InteriorPoint, which treats
// the group as the union of its parts.
func Dissolve(footprints []model.Footprint) []Group {
	byCode := make(map[postal.Code]*Group)
	var skipped int

	for _, fp := range footprints {
		if fp.Geometry == nil || fp.Geometry.Empty() {
			skipped++
			continue
		}

		g, ok := byCode[fp.PostalCode]
		if !ok {
			g = &Group{
				PostalCode: fp.PostalCode,
				Geometry:   geom.NewMultiPolygon(geom.XY),
			}
			byCode[fp.PostalCode] = g
		}
		g.Members++

		for i := 0; i < fp.Geometry.NumPolygons(); i++ {
			if err := g.Geometry.Push(toXY(fp.Geometry.Polygon(i))); err != nil {
				zap.L().Debug("spatial: skipping polygon part",
					zap.String("postal_code", string(fp.PostalCode)),
					zap.Int("part", i),
					zap.Error(err),
				)
			}
		}
	}

	if skipped > 0 {
		zap.L().Debug("spatial: skipped empty footprints", zap.Int("skipped", skipped))
	}

	groups := make([]Group, 0, len(byCode))
	for _, g := range byCode {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].PostalCode < groups[j].PostalCode
	})

	return groups
}

// toXY drops any Z or M ordinates so parts from mixed-layout sources can share
// one multipolygon.
func toXY(p *geom.Polygon) *geom.Polygon {
	if p.Layout() == geom.XY {
		return p
	}

	stride := p.Stride()
	src := p.FlatCoords()
	flat := make([]float64, 0, len(src)/stride*2)
	for i := 0; i+1 < len(src); i += stride {
		flat = append(flat, src[i], src[i+1])
	}

	ends := make([]int, len(p.Ends()))
	for i, e := range p.Ends() {
		ends[i] = e / stride * 2
	}

	return geom.NewPolygonFlat(geom.XY, flat, ends)
}
