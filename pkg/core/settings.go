package core

// Setting keys understood by the server's /settings/set.html handler.
const (
	SettingMenuOpen   = "menuopen"
	SettingWheelZoom  = "wheelzoom"
	SettingShowTracks = "showtracks"
	SettingWikipedia  = "wikipedia"
	SettingZoom       = "zoom"
	SettingMapType    = "maptype"
)

// Setting is one persisted UI preference.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MapType is the base layer shown by the map page.
type MapType string

const (
	MapTypeHybrid    MapType = "Hybrid"
	MapTypeSatellite MapType = "Satellite"
	MapTypeMap       MapType = "Map"
)

// ParseMapType maps a startup or page value onto a known layer. Anything
// unknown falls back to hybrid.
func ParseMapType(s string) MapType {
	switch s {
	case string(MapTypeSatellite):
		return MapTypeSatellite
	case string(MapTypeMap):
		return MapTypeMap
	default:
		return MapTypeHybrid
	}
}
