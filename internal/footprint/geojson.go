package footprint

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/spatial"
)

func loadGeoJSON(opts Options) (*Set, error) {
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "footprint: read %s", opts.Path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "footprint: decode geojson %s", opts.Path)
	}

	// RFC 7946 GeoJSON is always WGS84 unless told otherwise.
	crs := spatial.WGS84
	if opts.CRS != "" {
		if crs, err = spatial.ParseCRS(opts.CRS); err != nil {
			return nil, eris.Wrap(err, "footprint: geojson crs")
		}
	}

	set := &Set{CRS: crs, Read: len(fc.Features)}
	for _, f := range fc.Features {
		code, ok := postalCode(opts, propertyLookup(f.Properties))
		if !ok {
			set.NoPostal++
			continue
		}

		mp := asMultiPolygon(f.Geometry)
		if mp == nil {
			set.BadShape++
			continue
		}

		set.Footprints = append(set.Footprints, model.Footprint{PostalCode: code, Geometry: mp})
	}

	return set, nil
}

// propertyLookup matches names exactly first, then case-insensitively. When
// several keys differ only by case the lexically smallest wins.
func propertyLookup(props map[string]any) func(string) (any, bool) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return func(name string) (any, bool) {
		if v, ok := props[name]; ok {
			return v, true
		}
		for _, k := range keys {
			if strings.EqualFold(k, name) {
				return props[k], true
			}
		}
		return nil, false
	}
}

// asMultiPolygon accepts Polygon and MultiPolygon geometries. Anything else,
// or an empty geometry, returns nil.
func asMultiPolygon(g geom.T) *geom.MultiPolygon {
	switch t := g.(type) {
	case *geom.Polygon:
		if t.Empty() {
			return nil
		}
		mp := geom.NewMultiPolygon(t.Layout())
		if err := mp.Push(t); err != nil {
			return nil
		}
		return mp
	case *geom.MultiPolygon:
		if t.Empty() {
			return nil
		}
		return t
	}
	return nil
}
