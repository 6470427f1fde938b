package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsCenter(t *testing.T) {
	b := Bounds{South: 50, West: -2, North: 52, East: 2}
	assert.Equal(t, LatLng{Lat: 51, Lng: 0}, b.Center())
	assert.Equal(t, LatLng{Lat: 50, Lng: -2}, b.SouthWest())
	assert.Equal(t, LatLng{Lat: 52, Lng: 2}, b.NorthEast())
}

func TestParseMapType(t *testing.T) {
	assert.Equal(t, MapTypeSatellite, ParseMapType("Satellite"))
	assert.Equal(t, MapTypeMap, ParseMapType("Map"))
	assert.Equal(t, MapTypeHybrid, ParseMapType("Hybrid"))
	assert.Equal(t, MapTypeHybrid, ParseMapType(""))
	assert.Equal(t, MapTypeHybrid, ParseMapType("terrain"))
}

func TestMarkerRoleString(t *testing.T) {
	assert.Equal(t, "location", RoleLocation.String())
	assert.Equal(t, "direction", RoleDirection.String())
	assert.Equal(t, "none", MarkerRole(99).String())
}
