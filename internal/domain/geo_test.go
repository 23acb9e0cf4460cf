package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	southFlorida = Coordinate{Lat: 25.0, Lon: -80.0}
	stormOffKeys = Coordinate{Lat: 26.0, Lon: -81.0}
)

func TestDistance_SamePointIsZero(t *testing.T) {
	for _, c := range []Coordinate{
		{0, 0},
		southFlorida,
		{Lat: 90, Lon: 180},
		{Lat: -90, Lon: -180},
		{Lat: -33.8688, Lon: 151.2093},
	} {
		assert.Zero(t, Distance(c, c), "distance(%v,%v)", c, c)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{southFlorida, stormOffKeys},
		{{Lat: 51.5, Lon: -0.12}, {Lat: 40.71, Lon: -74.0}},
		{{Lat: -33.87, Lon: 151.21}, {Lat: 35.68, Lon: 139.69}},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]))
	}
}

func TestDistance_QuarterCircumference(t *testing.T) {
	d := Distance(Coordinate{0, 0}, Coordinate{Lat: 0, Lon: 90})
	assert.InDelta(t, 10007.5, d, 1.0)
}

func TestDistance_Antipodal(t *testing.T) {
	d := Distance(Coordinate{Lat: 0, Lon: 0}, Coordinate{Lat: 0, Lon: 180})
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 0.001)

	d = Distance(Coordinate{Lat: 90, Lon: 0}, Coordinate{Lat: -90, Lon: 0})
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 0.001)
}

func TestDistance_SouthFloridaStorm(t *testing.T) {
	d := Distance(southFlorida, stormOffKeys)
	assert.InDelta(t, 149.8, d, 1.0)
}

func TestKilometersToMiles(t *testing.T) {
	assert.InDelta(t, 1.0, KilometersToMiles(1.609344), 1e-12)
	assert.InDelta(t, 100.0, KilometersToMiles(160.9344), 1e-9)
}

func TestCoordinate_Valid(t *testing.T) {
	assert.True(t, Coordinate{Lat: 90, Lon: -180}.Valid())
	assert.True(t, southFlorida.Valid())
	assert.False(t, Coordinate{Lat: 90.1, Lon: 0}.Valid())
	assert.False(t, Coordinate{Lat: 0, Lon: -180.5}.Valid())
}

func TestCoordinate_PointIsLonLat(t *testing.T) {
	p := southFlorida.Point()
	assert.Equal(t, -80.0, p.Lon())
	assert.Equal(t, 25.0, p.Lat())
}
