package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/resale-geojoin/internal/join"
	"github.com/sells-group/resale-geojoin/internal/transaction"
)

// FeatureCollection builds one Point feature per joined row. Properties hold
// every transaction column, typed by the column's inferred kind; longitude
// and latitude live only in the geometry.
func FeatureCollection(res join.Result) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(res.Rows)),
	}

	for _, row := range res.Rows {
		props := make(map[string]any, len(res.Columns))
		for i, col := range res.Columns {
			kind := transaction.KindString
			if i < len(res.Kinds) {
				kind = res.Kinds[i]
			}
			props[col] = transaction.Typed(row.Record.Fields[i], kind)
		}
		if res.PostalIdx >= 0 {
			props[res.Columns[res.PostalIdx]] = string(row.PostalCode)
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{row.Longitude, row.Latitude}),
			Properties: props,
		})
	}

	return fc
}

// featureJSON and collectionJSON mirror the go-geom wire layout. go-geom
// marshals properties with json.Marshal, which escapes HTML characters, so the
// envelope is encoded here with escaping off.
type featureJSON struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties map[string]any    `json:"properties"`
}

type collectionJSON struct {
	Type     string        `json:"type"`
	Features []featureJSON `json:"features"`
}

// WriteGeoJSON serialises the joined rows as a single FeatureCollection. It
// returns the number of features written. Text such as "&" and "<" is written
// as is.
func WriteGeoJSON(w io.Writer, res join.Result) (int, error) {
	fc := FeatureCollection(res)

	out := collectionJSON{Type: "FeatureCollection", Features: make([]featureJSON, 0, len(fc.Features))}
	for _, f := range fc.Features {
		g, err := geojson.Encode(f.Geometry)
		if err != nil {
			return 0, eris.Wrap(err, "export: encode geojson geometry")
		}
		out.Features = append(out.Features, featureJSON{Type: "Feature", Geometry: g, Properties: f.Properties})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return 0, eris.Wrap(err, "export: write geojson")
	}
	return len(out.Features), nil
}
