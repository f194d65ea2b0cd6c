package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestToLonLat_SVY21Origin(t *testing.T) {
	lon, lat, err := ToLonLat(SVY21, svy21FalseEasting, svy21FalseNorthing)
	require.NoError(t, err)
	assert.InDelta(t, 103.833333333, lon, 1e-8)
	assert.InDelta(t, 1.366666667, lat, 1e-8)
}

func TestToLonLat_SVY21Offsets(t *testing.T) {
	// One kilometre east and north of the false origin.
	lon, lat, err := ToLonLat(SVY21, svy21FalseEasting+1000, svy21FalseNorthing+1000)
	require.NoError(t, err)
	assert.InDelta(t, svy21Lon0+0.0089857, lon, 1e-5)
	assert.InDelta(t, svy21Lat0+0.0090437, lat, 1e-5)
}

func TestToLonLat_WebMercator(t *testing.T) {
	lon, lat, err := ToLonLat(WebMercator, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, lon, 1e-12)
	assert.InDelta(t, 0, lat, 1e-12)

	lon, lat, err = ToLonLat(WebMercator, 20037508.342789244, 5621521.486192066)
	require.NoError(t, err)
	assert.InDelta(t, 180, lon, 1e-9)
	assert.InDelta(t, 45, lat, 1e-6)
}

func TestToLonLat_Identity(t *testing.T) {
	lon, lat, err := ToLonLat(WGS84, 103.8, 1.35)
	require.NoError(t, err)
	assert.Equal(t, 103.8, lon)
	assert.Equal(t, 1.35, lat)
}

func TestReproject_DoesNotMutateInput(t *testing.T) {
	mp := multi(square(28000, 38000, 28100, 38100))
	before := append([]float64(nil), mp.FlatCoords()...)

	out, err := Reproject(mp, SVY21)
	require.NoError(t, err)

	assert.Equal(t, before, mp.FlatCoords())
	assert.Equal(t, 4326, out.SRID())
	assert.Equal(t, mp.Endss(), out.Endss())
	for i := 0; i < len(out.FlatCoords()); i += 2 {
		assert.InDelta(t, 103.83, out.FlatCoords()[i], 0.01)
		assert.InDelta(t, 1.36, out.FlatCoords()[i+1], 0.01)
	}
}

func TestReproject_KeepsLayout(t *testing.T) {
	xyz := geom.NewMultiPolygon(geom.XYZ).MustSetCoords([][][]geom.Coord{{
		{{0, 0, 7}, {1, 0, 7}, {1, 1, 7}, {0, 0, 7}},
	}})
	out, err := Reproject(xyz, WebMercator)
	require.NoError(t, err)
	assert.Equal(t, geom.XYZ, out.Layout())
	assert.Equal(t, 7.0, out.FlatCoords()[2])
}

func TestReproject_Nil(t *testing.T) {
	_, err := Reproject(nil, WGS84)
	assert.Error(t, err)
}

func TestParseCRS(t *testing.T) {
	for in, want := range map[string]CRS{
		"EPSG:4326": WGS84,
		"epsg:3414": SVY21,
		"3857":      WebMercator,
		" 4326 ":    WGS84,
	} {
		got, err := ParseCRS(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCRS("EPSG:2276")
	assert.Error(t, err)
}

func TestDetectPRJ(t *testing.T) {
	svy21 := `PROJCS["SVY21",GEOGCS["SVY21[WGS84]",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],` +
		`PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"]]`
	crs, err := DetectPRJ(svy21)
	require.NoError(t, err)
	assert.Equal(t, SVY21, crs)

	wgs := `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]]]`
	crs, err = DetectPRJ(wgs)
	require.NoError(t, err)
	assert.Equal(t, WGS84, crs)

	merc := `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984"]]`
	crs, err = DetectPRJ(merc)
	require.NoError(t, err)
	assert.Equal(t, WebMercator, crs)

	_, err = DetectPRJ(`PROJCS["NAD_1983_StatePlane_Texas_North_Central_FIPS_4202_Feet"]`)
	assert.Error(t, err)
}
