// Package feed talks to the local geotag web server: it fetches image
// metadata, GPS tracks and nearby Wikipedia entries, and sends the
// fire-and-forget update and settings requests.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fibs-geotag/mapsync/internal/geo"
	"github.com/fibs-geotag/mapsync/internal/util"
	"github.com/fibs-geotag/mapsync/pkg/core"
)

// ErrUnexpectedStatus is returned for any non-2xx answer.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Server paths.
const (
	PathImageInfo = "/imageinfo/imageinfo.xml"
	PathTracks    = "/tracks/tracks.kml"
	PathNearby    = "/geonames/wikipediaBoundingBox"
	PathUpdate    = "/update/new.html"
	PathSettings  = "/settings/set.html"
)

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

// Client handles communication with the geotag web server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new feed client. A zero timeout means 30 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server address without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Healthcheck checks if the geotag web server is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	_, err := c.get(ctx, "/", "")
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// FetchImageInfos asks the server about the given images.
func (c *Client) FetchImageInfos(ctx context.Context, ids []int) ([]core.ImageInfo, error) {
	body, err := c.get(ctx, PathImageInfo, "ids="+util.JoinIDs(ids, ","))
	if err != nil {
		return nil, fmt.Errorf("image info request failed: %w", err)
	}
	return ParseImageInfos(body)
}

// FetchTracks asks for the tracks visible in bounds at the given map size.
func (c *Client) FetchTracks(ctx context.Context, b core.Bounds, size core.Size) ([]core.Track, error) {
	q := boundsQuery(b) +
		"&width=" + strconv.Itoa(size.Width) +
		"&height=" + strconv.Itoa(size.Height)
	body, err := c.get(ctx, PathTracks, q)
	if err != nil {
		return nil, fmt.Errorf("tracks request failed: %w", err)
	}
	return ParseTracks(body)
}

// FetchNearby asks for Wikipedia entries inside bounds.
func (c *Client) FetchNearby(ctx context.Context, b core.Bounds, lang string) ([]core.NearbyEntry, error) {
	q := boundsQuery(b) + "&lang=" + url.QueryEscape(lang)
	body, err := c.get(ctx, PathNearby, q)
	if err != nil {
		return nil, fmt.Errorf("nearby request failed: %w", err)
	}
	return ParseNearby(body)
}

// SendUpdate reports a new image position. The response body is ignored.
func (c *Client) SendUpdate(ctx context.Context, u core.GeotagUpdate) error {
	path, q := UpdateRequest(u)
	_, err := c.get(ctx, path, q)
	return err
}

// SetSetting persists one UI preference. The response body is ignored.
func (c *Client) SetSetting(ctx context.Context, s core.Setting) error {
	path, q := SettingRequest(s)
	_, err := c.get(ctx, path, q)
	return err
}

// UpdateRequest returns the path and query of an update request.
func UpdateRequest(u core.GeotagUpdate) (path, query string) {
	q := "image=" + strconv.Itoa(u.ImageID) +
		"&latitude=" + geo.FormatCoordinate(u.Latitude) +
		"&longitude=" + geo.FormatCoordinate(u.Longitude)
	if u.Direction != nil {
		q += "&direction=" + strconv.FormatFloat(*u.Direction, 'f', -1, 64)
	}
	return PathUpdate, q
}

// SettingRequest returns the path and query of a settings request.
func SettingRequest(s core.Setting) (path, query string) {
	return PathSettings, url.QueryEscape(s.Key) + "=" + url.QueryEscape(s.Value)
}

func boundsQuery(b core.Bounds) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return "south=" + f(b.South) + "&west=" + f(b.West) +
		"&north=" + f(b.North) + "&east=" + f(b.East)
}

func (c *Client) get(ctx context.Context, path, query string) ([]byte, error) {
	target := c.baseURL + path
	if query != "" {
		target += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w %d for %s", ErrUnexpectedStatus, resp.StatusCode, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
