package spatial

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// WGS84 ellipsoid.
const (
	semiMajor = 6378137.0
	flattening = 1 / 298.257223563
)

// SVY21 transverse Mercator parameters (EPSG:3414).
const (
	svy21Lat0          = 1.366666666666667   // 1°22′N
	svy21Lon0          = 103.833333333333333 // 103°50′E
	svy21FalseEasting  = 28001.642
	svy21FalseNorthing = 38744.572
	svy21ScaleFactor   = 1.0
	webMercatorRadius  = semiMajor
	degreesPerRadian   = 180 / math.Pi
	radiansPerDegree   = math.Pi / 180
)

var (
	e2  = flattening * (2 - flattening)
	ep2 = e2 / (1 - e2)
	e1  = (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))

	// Meridional arc coefficients.
	mA0 = 1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256
	mA2 = 3*e2/8 + 3*e2*e2/32 + 45*e2*e2*e2/1024
	mA4 = 15*e2*e2/256 + 45*e2*e2*e2/1024
	mA6 = 35 * e2 * e2 * e2 / 3072

	svy21M0 = meridionalArc(svy21Lat0 * radiansPerDegree)
)

// ToLonLat converts a single coordinate from crs to WGS84 longitude/latitude.
func ToLonLat(crs CRS, x, y float64) (lon, lat float64, err error) {
	switch crs {
	case WGS84:
		return x, y, nil
	case SVY21:
		lon, lat = svy21ToLonLat(x, y)
		return lon, lat, nil
	case WebMercator:
		lon, lat = webMercatorToLonLat(x, y)
		return lon, lat, nil
	}
	return 0, 0, eris.Errorf("spatial: cannot reproject from %q", crs)
}

// Reproject returns a copy of mp in WGS84. The input is not modified.
func Reproject(mp *geom.MultiPolygon, from CRS) (*geom.MultiPolygon, error) {
	if mp == nil {
		return nil, eris.New("spatial: reproject nil geometry")
	}
	if from == WGS84 {
		return mp.Clone(), nil
	}

	src := mp.FlatCoords()
	stride := mp.Stride()
	dst := make([]float64, len(src))
	copy(dst, src)

	for i := 0; i+1 < len(dst); i += stride {
		lon, lat, err := ToLonLat(from, dst[i], dst[i+1])
		if err != nil {
			return nil, err
		}
		dst[i], dst[i+1] = lon, lat
	}

	return geom.NewMultiPolygonFlat(mp.Layout(), dst, mp.Endss()).SetSRID(4326), nil
}

// svy21ToLonLat is the inverse transverse Mercator projection on the WGS84
// ellipsoid (Snyder, Map Projections: A Working Manual, eq. 8-12 to 8-25).
func svy21ToLonLat(easting, northing float64) (lon, lat float64) {
	m := svy21M0 + (northing-svy21FalseNorthing)/svy21ScaleFactor
	mu := m / (semiMajor * mA0)

	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sin1, cos1, tan1 := math.Sin(phi1), math.Cos(phi1), math.Tan(phi1)
	c1 := ep2 * cos1 * cos1
	t1 := tan1 * tan1
	den := 1 - e2*sin1*sin1
	n1 := semiMajor / math.Sqrt(den)
	r1 := semiMajor * (1 - e2) / math.Pow(den, 1.5)
	d := (easting - svy21FalseEasting) / (n1 * svy21ScaleFactor)

	phi := phi1 - (n1*tan1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)

	lambda := (d -
		(1+2*t1+c1)*math.Pow(d, 3)/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120) / cos1

	return svy21Lon0 + lambda*degreesPerRadian, phi * degreesPerRadian
}

func meridionalArc(phi float64) float64 {
	return semiMajor * (mA0*phi - mA2*math.Sin(2*phi) + mA4*math.Sin(4*phi) - mA6*math.Sin(6*phi))
}

func webMercatorToLonLat(x, y float64) (lon, lat float64) {
	lon = x / webMercatorRadius * degreesPerRadian
	lat = (2*math.Atan(math.Exp(y/webMercatorRadius)) - math.Pi/2) * degreesPerRadian
	return lon, lat
}
