package model

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/resale-geojoin/internal/postal"
)

// Footprint is one building footprint polygon tagged with its postal code.
// Geometry is 2D and in the source coordinate reference system.
type Footprint struct {
	PostalCode postal.Code
	Geometry   *geom.MultiPolygon
}

// PostalPoint is the representative WGS84 location of a postal code.
type PostalPoint struct {
	PostalCode postal.Code `json:"postal_code"`
	Longitude  float64     `json:"longitude"`
	Latitude   float64     `json:"latitude"`
}
