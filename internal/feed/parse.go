package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fibs-geotag/mapsync/pkg/core"
)

// The server documents are parsed leniently: an unparsable or missing number
// becomes NaN (0 for integers) and is carried through as is. Only a body that
// is not XML at all is an error.

type imageList struct {
	Images []struct {
		ID        string `xml:"id,attr"`
		Name      string `xml:"name,attr"`
		Width     string `xml:"width,attr"`
		Height    string `xml:"height,attr"`
		Latitude  string `xml:"latitude,attr"`
		Longitude string `xml:"longitude,attr"`
		Direction string `xml:"direction,attr"`
	} `xml:"image"`
}

type trackList struct {
	Tracks []struct {
		Points []struct {
			Latitude  string `xml:"latitude,attr"`
			Longitude string `xml:"longitude,attr"`
		} `xml:"point"`
	} `xml:"track"`
}

type nearbyList struct {
	Entries []struct {
		Title        string `xml:"title"`
		Summary      string `xml:"summary"`
		Lat          string `xml:"lat"`
		Lng          string `xml:"lng"`
		WikipediaURL string `xml:"wikipediaUrl"`
		Thumbnail    string `xml:"thumbnailImg"`
	} `xml:"entry"`
}

// ParseImageInfos decodes an imageinfo.xml document.
func ParseImageInfos(body []byte) ([]core.ImageInfo, error) {
	var doc imageList
	if err := decode(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid image info document: %w", err)
	}
	infos := make([]core.ImageInfo, 0, len(doc.Images))
	for _, img := range doc.Images {
		infos = append(infos, core.ImageInfo{
			ID:        parseInt(img.ID),
			Name:      img.Name,
			Width:     parseInt(img.Width),
			Height:    parseInt(img.Height),
			Latitude:  parseFloat(img.Latitude),
			Longitude: parseFloat(img.Longitude),
			Direction: parseFloat(img.Direction),
		})
	}
	return infos, nil
}

// ParseTracks decodes a tracks.kml document.
func ParseTracks(body []byte) ([]core.Track, error) {
	var doc trackList
	if err := decode(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid tracks document: %w", err)
	}
	tracks := make([]core.Track, 0, len(doc.Tracks))
	for _, t := range doc.Tracks {
		track := core.Track{Points: make([]core.LatLng, 0, len(t.Points))}
		for _, p := range t.Points {
			track.Points = append(track.Points, core.LatLng{
				Lat: parseFloat(p.Latitude),
				Lng: parseFloat(p.Longitude),
			})
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// ParseNearby decodes a geonames wikipediaBoundingBox document.
func ParseNearby(body []byte) ([]core.NearbyEntry, error) {
	var doc nearbyList
	if err := decode(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid nearby document: %w", err)
	}
	entries := make([]core.NearbyEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		entries = append(entries, core.NearbyEntry{
			Title:     strings.TrimSpace(e.Title),
			Summary:   strings.TrimSpace(e.Summary),
			URL:       strings.TrimSpace(e.WikipediaURL),
			Thumbnail: strings.TrimSpace(e.Thumbnail),
			Lat:       parseFloat(e.Lat),
			Lng:       parseFloat(e.Lng),
		})
	}
	return entries, nil
}

func decode(body []byte, v any) error {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.Strict = false
	return d.Decode(v)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseInt accepts "12" as well as "12.0".
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
