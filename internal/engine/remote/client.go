// Package remote implements the navigation engine on top of an HTTP routing
// backend. Route queries are posted as Valhalla route requests asking for
// OSRM-compatible output with banner and voice instructions; the navigation
// state machine runs in process against the session's location provider.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
)

// RequestTimeout bounds every call to the routing backend.
const RequestTimeout = 15 * time.Second

type routeLocation struct {
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Type    string   `json:"type"`
	Heading *uint16  `json:"heading,omitempty"`
	Radius  *float64 `json:"radius,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// client talks to the routing backend.
type client struct {
	endpoint string
	profile  string
	extra    map[string]any
	http     *http.Client
}

func newClient(opts engine.Options) (*client, error) {
	u, err := url.Parse(opts.EndpointURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid routing endpoint %q", opts.EndpointURL)
	}
	if opts.Profile == "" {
		return nil, errors.New("routing profile is required")
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	// The timeout is fixed regardless of what the caller configured.
	withTimeout := *hc
	withTimeout.Timeout = RequestTimeout

	return &client{
		endpoint: u.String(),
		profile:  opts.Profile,
		extra:    opts.ExtraOptions,
		http:     &withTimeout,
	}, nil
}

// buildRequest merges the extra options under the fixed request keys so they
// cannot override the locations, costing or response format.
func (c *client) buildRequest(initial engine.UserLocation, waypoints []engine.Waypoint) ([]byte, error) {
	body := make(map[string]any, len(c.extra)+2)
	for k, v := range c.extra {
		body[k] = v
	}

	start := routeLocation{
		Lat:  initial.Coordinates.Lat,
		Lon:  initial.Coordinates.Lng,
		Type: engine.WaypointKindBreak.String(),
	}
	if initial.CourseOverGround != nil {
		h := initial.CourseOverGround.Degrees
		start.Heading = &h
	}
	if initial.HorizontalAccuracy > 0 {
		r := initial.HorizontalAccuracy
		start.Radius = &r
	}

	locations := make([]routeLocation, 0, len(waypoints)+1)
	locations = append(locations, start)
	for _, wp := range waypoints {
		locations = append(locations, routeLocation{
			Lat:  wp.Coordinate.Lat,
			Lon:  wp.Coordinate.Lng,
			Type: wp.Kind.String(),
		})
	}

	body["locations"] = locations
	body["costing"] = c.profile
	body["format"] = "osrm"
	body["shape_format"] = "polyline6"
	body["banner_instructions"] = true
	body["voice_instructions"] = true
	return json.Marshal(body)
}

func (c *client) routes(ctx context.Context, initial engine.UserLocation, waypoints []engine.Waypoint) ([]engine.Route, error) {
	if len(waypoints) == 0 {
		return nil, errors.New("at least one waypoint is required")
	}

	payload, err := c.buildRequest(initial, waypoints)
	if err != nil {
		return nil, fmt.Errorf("failed to encode route request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build route request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read route response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Error != "" {
			return nil, fmt.Errorf("routing backend returned %d: %s", resp.StatusCode, er.Error)
		}
		return nil, fmt.Errorf("routing backend returned %d", resp.StatusCode)
	}

	requested := make([]engine.Waypoint, 0, len(waypoints)+1)
	requested = append(requested, engine.Waypoint{Coordinate: initial.Coordinates, Kind: engine.WaypointKindBreak})
	requested = append(requested, waypoints...)
	return parseRoutes(raw, requested)
}
