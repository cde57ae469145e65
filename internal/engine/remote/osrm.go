package remote

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/geo"
	"github.com/google/uuid"
)

// The backend is asked for OSRM-compatible output (Valhalla "format": "osrm")
// with banner and voice instructions. Geometries are polyline6.
const polylinePrecision = 6

const (
	osrmCodeOK      = "Ok"
	osrmCodeNoRoute = "NoRoute"
)

// ErrUnrecognizedResponse is returned for 2xx bodies that are not an OSRM
// route response.
var ErrUnrecognizedResponse = errors.New("unrecognized routing response")

type osrmResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Routes  *[]osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Geometry string    `json:"geometry"`
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Distance           float64      `json:"distance"`
	Duration           float64      `json:"duration"`
	Name               string       `json:"name"`
	Geometry           string       `json:"geometry"`
	Maneuver           osrmManeuver `json:"maneuver"`
	BannerInstructions []osrmBanner `json:"bannerInstructions"`
	VoiceInstructions  []osrmVoice  `json:"voiceInstructions"`
}

type osrmManeuver struct {
	Type        string `json:"type"`
	Modifier    string `json:"modifier"`
	Instruction string `json:"instruction"`
}

type osrmBanner struct {
	DistanceAlongGeometry float64            `json:"distanceAlongGeometry"`
	Primary               osrmBannerContent  `json:"primary"`
	Secondary             *osrmBannerContent `json:"secondary"`
	Sub                   *osrmBannerContent `json:"sub"`
}

type osrmBannerContent struct {
	Text       string          `json:"text"`
	Type       string          `json:"type"`
	Modifier   string          `json:"modifier"`
	Degrees    *float64        `json:"degrees"`
	Components []osrmComponent `json:"components"`
}

type osrmComponent struct {
	Type            string   `json:"type"`
	Directions      []string `json:"directions"`
	Active          bool     `json:"active"`
	ActiveDirection *string  `json:"active_direction"`
}

type osrmVoice struct {
	DistanceAlongGeometry float64 `json:"distanceAlongGeometry"`
	Announcement          string  `json:"announcement"`
	SSMLAnnouncement      *string `json:"ssmlAnnouncement"`
}

// parseRoutes decodes an OSRM route response. requested holds the start
// location followed by the query waypoints and supplies the waypoint kinds.
// A NoRoute code is an empty result; a body without routes is an error.
func parseRoutes(raw []byte, requested []engine.Waypoint) ([]engine.Route, error) {
	var resp osrmResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode route response: %w", err)
	}

	switch resp.Code {
	case osrmCodeOK:
	case osrmCodeNoRoute:
		return []engine.Route{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing code", ErrUnrecognizedResponse)
	default:
		return nil, fmt.Errorf("routing backend returned %s: %s", resp.Code, resp.Message)
	}
	if resp.Routes == nil {
		return nil, fmt.Errorf("%w: missing routes", ErrUnrecognizedResponse)
	}

	routes := make([]engine.Route, 0, len(*resp.Routes))
	for i, r := range *resp.Routes {
		route, err := toEngineRoute(r, requested)
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
		routes = append(routes, route)
	}
	return routes, nil
}

func toEngineRoute(r osrmRoute, requested []engine.Waypoint) (engine.Route, error) {
	geometry, err := geo.DecodePolyline(r.Geometry, polylinePrecision)
	if err != nil {
		return engine.Route{}, fmt.Errorf("geometry: %w", err)
	}

	route := engine.Route{
		Geometry:  geometry,
		BBox:      geo.Bounds(geometry),
		Distance:  r.Distance,
		Waypoints: append([]engine.Waypoint(nil), requested...),
	}
	for li, leg := range r.Legs {
		for si, s := range leg.Steps {
			step, err := toEngineStep(s)
			if err != nil {
				return engine.Route{}, fmt.Errorf("legs[%d].steps[%d]: %w", li, si, err)
			}
			route.Steps = append(route.Steps, step)
		}
	}
	return route, nil
}

func toEngineStep(s osrmStep) (engine.RouteStep, error) {
	geometry, err := geo.DecodePolyline(s.Geometry, polylinePrecision)
	if err != nil {
		return engine.RouteStep{}, fmt.Errorf("geometry: %w", err)
	}

	step := engine.RouteStep{
		Geometry:    geometry,
		Distance:    s.Distance,
		Duration:    s.Duration,
		Instruction: s.Maneuver.Instruction,
	}
	if s.Name != "" {
		name := s.Name
		step.RoadName = &name
	}

	for i, b := range s.BannerInstructions {
		vi, err := toVisualInstruction(b)
		if err != nil {
			return engine.RouteStep{}, fmt.Errorf("bannerInstructions[%d]: %w", i, err)
		}
		step.VisualInstructions = append(step.VisualInstructions, vi)
	}
	for _, v := range s.VoiceInstructions {
		step.SpokenInstructions = append(step.SpokenInstructions, engine.SpokenInstruction{
			Text:                          v.Announcement,
			SSML:                          v.SSMLAnnouncement,
			TriggerDistanceBeforeManeuver: v.DistanceAlongGeometry,
			UtteranceID:                   uuid.New(),
		})
	}
	return step, nil
}

func toVisualInstruction(b osrmBanner) (engine.VisualInstruction, error) {
	primary, err := toContent(b.Primary)
	if err != nil {
		return engine.VisualInstruction{}, fmt.Errorf("primary: %w", err)
	}
	vi := engine.VisualInstruction{
		PrimaryContent:                primary,
		TriggerDistanceBeforeManeuver: b.DistanceAlongGeometry,
	}
	if b.Secondary != nil {
		c, err := toContent(*b.Secondary)
		if err != nil {
			return engine.VisualInstruction{}, fmt.Errorf("secondary: %w", err)
		}
		vi.SecondaryContent = &c
	}
	if b.Sub != nil {
		c, err := toContent(*b.Sub)
		if err != nil {
			return engine.VisualInstruction{}, fmt.Errorf("sub: %w", err)
		}
		vi.SubContent = &c
	}
	return vi, nil
}

func toContent(c osrmBannerContent) (engine.VisualInstructionContent, error) {
	out := engine.VisualInstructionContent{
		Text:                  c.Text,
		RoundaboutExitDegrees: c.Degrees,
	}
	if c.Type != "" {
		var t engine.ManeuverType
		if err := t.UnmarshalText([]byte(c.Type)); err != nil {
			return engine.VisualInstructionContent{}, err
		}
		out.ManeuverType = &t
	}
	if c.Modifier != "" {
		var m engine.ManeuverModifier
		if err := m.UnmarshalText([]byte(c.Modifier)); err != nil {
			return engine.VisualInstructionContent{}, err
		}
		out.ManeuverModifier = &m
	}
	for _, comp := range c.Components {
		if comp.Type != "lane" {
			continue
		}
		out.LaneInfo = append(out.LaneInfo, engine.LaneInfo{
			Active:          comp.Active,
			Directions:      append([]string(nil), comp.Directions...),
			ActiveDirection: comp.ActiveDirection,
		})
	}
	return out, nil
}
