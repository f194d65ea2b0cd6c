package footprint

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/spatial"
)

// dbfNameLen is the maximum length of a dBASE field name. Longer attribute
// names such as "Description" are truncated when written to a shapefile.
const dbfNameLen = 10

func loadShapefile(opts Options) (*Set, error) {
	crs, err := shapefileCRS(opts)
	if err != nil {
		return nil, err
	}

	reader, err := shp.Open(opts.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "footprint: open shapefile %s", opts.Path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	set := &Set{CRS: crs}
	for reader.Next() {
		_, shape := reader.Shape()
		set.Read++

		lookup := func(name string) (any, bool) {
			idx, ok := fieldIdx[strings.ToLower(name)]
			if !ok && len(name) > dbfNameLen {
				idx, ok = fieldIdx[strings.ToLower(name[:dbfNameLen])]
			}
			if !ok {
				return nil, false
			}
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if val == "" {
				return nil, true
			}
			return val, true
		}

		code, ok := postalCode(opts, lookup)
		if !ok {
			set.NoPostal++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			set.BadShape++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			set.BadShape++
			continue
		}

		set.Footprints = append(set.Footprints, model.Footprint{PostalCode: code, Geometry: mp})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "footprint: read shapefile %s", opts.Path)
	}

	return set, nil
}

// shapefileCRS resolves the CRS from configuration or the sibling .prj file.
func shapefileCRS(opts Options) (spatial.CRS, error) {
	if opts.CRS != "" {
		crs, err := spatial.ParseCRS(opts.CRS)
		return crs, eris.Wrap(err, "footprint: shapefile crs")
	}

	prjPath := strings.TrimSuffix(opts.Path, ".shp") + ".prj"
	wkt, err := os.ReadFile(prjPath)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("footprint: no .prj next to shapefile, assuming WGS84", zap.String("path", opts.Path))
		return spatial.WGS84, nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "footprint: read %s", prjPath)
	}

	crs, err := spatial.DetectPRJ(string(wkt))
	if err != nil {
		return "", eris.Wrapf(err, "footprint: %s", prjPath)
	}
	return crs, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Clockwise rings start a new polygon; counter-clockwise rings are holes of
// the polygon before them.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon

	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("footprint: skipping malformed polygon", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}
		if end-start < 4 {
			zap.L().Debug("footprint: skipping short ring", zap.Int32("part", i))
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if signedArea(flat) <= 0 || current == nil {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("footprint: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace area of a closed XY ring; negative when clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
