// Package footprint loads building footprint polygons and tags each with the
// postal code found in its attributes.
package footprint

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resale-geojoin/internal/model"
	"github.com/sells-group/resale-geojoin/internal/postal"
	"github.com/sells-group/resale-geojoin/internal/spatial"
)

// Supported input formats.
const (
	FormatGeoJSON   = "geojson"
	FormatShapefile = "shapefile"
)

// Options configures a footprint load.
type Options struct {
	Path             string
	Format           string // empty = infer from extension
	DescriptionField string // attribute holding the HTML description (default "Description")
	PostalField      string // if set, read the postal code from this attribute instead
	CRS              string // empty = detect
}

// Set is the result of a load. Footprints keep source order.
type Set struct {
	CRS        spatial.CRS
	Footprints []model.Footprint
	Read       int // features in the source
	NoPostal   int // features without a parseable postal code
	BadShape   int // features whose geometry is not a usable polygon
}

// Skipped returns the number of source features that were not kept.
func (s *Set) Skipped() int { return s.NoPostal + s.BadShape }

// Load reads footprints from a GeoJSON file or a shapefile.
func Load(opts Options) (*Set, error) {
	if opts.DescriptionField == "" {
		opts.DescriptionField = "Description"
	}

	format, err := resolveFormat(opts)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("component", "footprint.loader"),
		zap.String("path", opts.Path),
		zap.String("format", format),
	)

	var set *Set
	switch format {
	case FormatGeoJSON:
		set, err = loadGeoJSON(opts)
	case FormatShapefile:
		set, err = loadShapefile(opts)
	}
	if err != nil {
		return nil, err
	}

	log.Info("footprints loaded",
		zap.String("crs", string(set.CRS)),
		zap.Int("read", set.Read),
		zap.Int("kept", len(set.Footprints)),
		zap.Int("no_postal", set.NoPostal),
		zap.Int("bad_shape", set.BadShape),
	)

	return set, nil
}

func resolveFormat(opts Options) (string, error) {
	if opts.Format != "" {
		switch opts.Format {
		case FormatGeoJSON, FormatShapefile:
			return opts.Format, nil
		}
		return "", eris.Errorf("footprint: unknown format %q", opts.Format)
	}

	switch strings.ToLower(filepath.Ext(opts.Path)) {
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".shp":
		return FormatShapefile, nil
	}
	return "", eris.Errorf("footprint: cannot infer format of %s", opts.Path)
}

// postalCode picks the postal code from a feature's attributes. lookup returns
// the attribute value for a field name and whether the field exists.
func postalCode(opts Options, lookup func(name string) (any, bool)) (postal.Code, bool) {
	if opts.PostalField != "" {
		v, ok := lookup(opts.PostalField)
		if !ok {
			return "", false
		}
		return postal.NormalizeValue(v)
	}

	v, ok := lookup(opts.DescriptionField)
	if !ok {
		return "", false
	}
	return postal.FromDescriptionValue(v)
}
