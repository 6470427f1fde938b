package config

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/fibs-geotag/mapsync/internal/util"
	"github.com/fibs-geotag/mapsync/pkg/core"
)

// Startup holds the parameters the map page is opened with.
type Startup struct {
	Latitude         float64
	Longitude        float64
	Zoom             int
	ImageIDs         []int
	MapType          core.MapType
	ShowDirection    bool
	InitialDirection float64 // -1 when not given
	Language         string
	WheelZoom        bool
	MenuOpen         bool
	ShowTracks       bool
	ShowWikipedia    bool
}

// DefaultStartup returns the parameters used when the query is empty.
func DefaultStartup() Startup {
	return Startup{
		Latitude:         51.5,
		Longitude:        0,
		Zoom:             6,
		MapType:          core.MapTypeHybrid,
		InitialDirection: -1,
		Language:         "en",
		MenuOpen:         true,
	}
}

// ParseStartup reads a page query string such as
// "latitude=51.5&longitude=0&zoom=6&images=5_7_9&direction=true".
// A full URL or a leading '?' is accepted. Unknown keys are ignored and
// unparsable numbers keep their defaults.
func ParseStartup(query string) Startup {
	s := DefaultStartup()

	if i := strings.IndexByte(query, '?'); i >= 0 {
		query = query[i+1:]
	}
	values, _ := url.ParseQuery(query)

	if v, ok := floatParam(values, "latitude"); ok {
		s.Latitude = v
	}
	if v, ok := floatParam(values, "longitude"); ok {
		s.Longitude = v
	}
	if v := values.Get("zoom"); v != "" {
		if z, err := strconv.Atoi(v); err == nil {
			s.Zoom = int(math.Abs(float64(z)))
		}
	}
	if v := values.Get("images"); v != "" {
		s.ImageIDs = util.ParseIDList(v, "_")
	}
	if values.Has("maptype") {
		s.MapType = core.ParseMapType(values.Get("maptype"))
	}
	switch v := values.Get("direction"); v {
	case "", "false":
	case "true":
		s.ShowDirection = true
	default:
		if d, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(d) {
			s.ShowDirection = true
			s.InitialDirection = math.Mod(math.Mod(d, 360)+360, 360)
		}
	}
	if v := values.Get("language"); v != "" {
		s.Language = v
	}
	if values.Has("wheelzoom") {
		s.WheelZoom = values.Get("wheelzoom") == "true"
	}
	if values.Has("menuopen") {
		s.MenuOpen = values.Get("menuopen") == "true"
	}
	if values.Has("showtracks") {
		s.ShowTracks = values.Get("showtracks") == "true"
	}
	if values.Has("wikipedia") {
		s.ShowWikipedia = values.Get("wikipedia") == "true"
	}
	return s
}

func floatParam(values url.Values, key string) (float64, bool) {
	v := values.Get(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
