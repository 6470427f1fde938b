package config

import (
	"testing"

	"github.com/fibs-geotag/mapsync/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestParseStartup_Defaults(t *testing.T) {
	s := ParseStartup("")

	assert.Equal(t, 51.5, s.Latitude)
	assert.Equal(t, 0.0, s.Longitude)
	assert.Equal(t, 6, s.Zoom)
	assert.Empty(t, s.ImageIDs)
	assert.Equal(t, core.MapTypeHybrid, s.MapType)
	assert.False(t, s.ShowDirection)
	assert.Equal(t, -1.0, s.InitialDirection)
	assert.Equal(t, "en", s.Language)
	assert.False(t, s.WheelZoom)
	assert.True(t, s.MenuOpen)
	assert.False(t, s.ShowTracks)
	assert.False(t, s.ShowWikipedia)
}

func TestParseStartup_AllParameters(t *testing.T) {
	s := ParseStartup("latitude=48.85&longitude=2.35&zoom=-12&images=5_7_9&maptype=Satellite" +
		"&direction=true&language=de&wheelzoom=true&menuopen=false&showtracks=true&wikipedia=true")

	assert.Equal(t, 48.85, s.Latitude)
	assert.Equal(t, 2.35, s.Longitude)
	assert.Equal(t, 12, s.Zoom)
	assert.Equal(t, []int{5, 7, 9}, s.ImageIDs)
	assert.Equal(t, core.MapTypeSatellite, s.MapType)
	assert.True(t, s.ShowDirection)
	assert.Equal(t, -1.0, s.InitialDirection)
	assert.Equal(t, "de", s.Language)
	assert.True(t, s.WheelZoom)
	assert.False(t, s.MenuOpen)
	assert.True(t, s.ShowTracks)
	assert.True(t, s.ShowWikipedia)
}

func TestParseStartup_FullURL(t *testing.T) {
	s := ParseStartup("http://localhost:4321/map/map.html?images=3&maptype=Map")

	assert.Equal(t, []int{3}, s.ImageIDs)
	assert.Equal(t, core.MapTypeMap, s.MapType)
}

func TestParseStartup_Direction(t *testing.T) {
	tests := []struct {
		value   string
		show    bool
		initial float64
	}{
		{"false", false, -1},
		{"true", true, -1},
		{"45", true, 45},
		{"-90", true, 270},
		{"720.5", true, 0.5},
		{"north", false, -1},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s := ParseStartup("direction=" + tt.value)
			assert.Equal(t, tt.show, s.ShowDirection)
			assert.InDelta(t, tt.initial, s.InitialDirection, 1e-9)
		})
	}
}

func TestParseStartup_UnknownMapTypeIsHybrid(t *testing.T) {
	assert.Equal(t, core.MapTypeHybrid, ParseStartup("maptype=Terrain").MapType)
}

func TestParseStartup_InvalidNumbersKeepDefaults(t *testing.T) {
	s := ParseStartup("?latitude=abc&longitude=&zoom=x")

	assert.Equal(t, 51.5, s.Latitude)
	assert.Equal(t, 0.0, s.Longitude)
	assert.Equal(t, 6, s.Zoom)
}

func TestParseStartup_FlagsOnlyTrueWhenTrue(t *testing.T) {
	s := ParseStartup("menuopen=yes&wheelzoom=1")

	assert.False(t, s.MenuOpen)
	assert.False(t, s.WheelZoom)
}
