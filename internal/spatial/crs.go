// Package spatial reduces building footprints to one representative
// WGS84 point per postal code: dissolve, reproject, interior point.
package spatial

import (
	"strings"

	"github.com/rotisserie/eris"
)

// CRS identifies a coordinate reference system by its EPSG code.
type CRS string

const (
	WGS84       CRS = "EPSG:4326"
	SVY21       CRS = "EPSG:3414"
	WebMercator CRS = "EPSG:3857"
)

// ParseCRS accepts "EPSG:3414", "epsg:3414" or "3414".
func ParseCRS(s string) (CRS, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "EPSG:")
	switch s {
	case "4326":
		return WGS84, nil
	case "3414":
		return SVY21, nil
	case "3857", "900913":
		return WebMercator, nil
	}
	return "", eris.Errorf("spatial: unsupported CRS %q", s)
}

// DetectPRJ maps the WKT of a shapefile .prj to a supported CRS.
func DetectPRJ(wkt string) (CRS, error) {
	u := strings.ToUpper(wkt)
	switch {
	case strings.Contains(u, "SVY21"):
		return SVY21, nil
	case strings.Contains(u, "WEB_MERCATOR"), strings.Contains(u, "PSEUDO-MERCATOR"), strings.Contains(u, "PSEUDO_MERCATOR"):
		return WebMercator, nil
	case strings.HasPrefix(strings.TrimSpace(u), "GEOGCS") && strings.Contains(u, "WGS_1984"),
		strings.HasPrefix(strings.TrimSpace(u), "GEOGCS") && strings.Contains(u, "WGS 84"):
		return WGS84, nil
	}
	return "", eris.New("spatial: unrecognised .prj coordinate system")
}
