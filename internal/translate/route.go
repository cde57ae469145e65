// Package translate maps between the engine's route model and the host
// interchange model. All functions are pure. Sequences keep their order,
// enumerations map exactly and optional fields stay absent when absent.
package translate

import (
	"errors"
	"fmt"
	"math"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/google/uuid"
)

// ToInterchangeRoutes translates routes in the order the engine returned them.
// An empty input yields an empty, non-nil slice.
func ToInterchangeRoutes(routes []engine.Route) ([]navigation.Route, error) {
	out := make([]navigation.Route, len(routes))
	for i, r := range routes {
		route, err := ToInterchangeRoute(r)
		if err != nil {
			return nil, prefix(err, index("routes", i))
		}
		out[i] = route
	}
	return out, nil
}

// ToInterchangeRoute translates one engine route.
func ToInterchangeRoute(r engine.Route) (navigation.Route, error) {
	waypoints := make([]navigation.Waypoint, len(r.Waypoints))
	for i, wp := range r.Waypoints {
		w, err := ToInterchangeWaypoint(wp)
		if err != nil {
			return navigation.Route{}, prefix(err, index("waypoints", i))
		}
		waypoints[i] = w
	}

	steps := make([]navigation.RouteStep, len(r.Steps))
	for i, s := range r.Steps {
		step, err := toInterchangeStep(s)
		if err != nil {
			return navigation.Route{}, prefix(err, index("steps", i))
		}
		steps[i] = step
	}

	return navigation.Route{
		Distance:  r.Distance,
		Geometry:  coordinatesToInterchange(r.Geometry),
		BBox:      BoundingBoxToInterchange(r.BBox),
		Waypoints: waypoints,
		Steps:     steps,
	}, nil
}

// ToEngineRoute translates a host route back into the engine model, as
// needed when the host starts navigation on a route it received earlier.
func ToEngineRoute(r navigation.Route) (engine.Route, error) {
	waypoints, err := ToEngineWaypoints(r.Waypoints)
	if err != nil {
		return engine.Route{}, err
	}

	steps := make([]engine.RouteStep, len(r.Steps))
	for i, s := range r.Steps {
		step, err := toEngineStep(s)
		if err != nil {
			return engine.Route{}, prefix(err, index("steps", i))
		}
		steps[i] = step
	}

	return engine.Route{
		Geometry:  coordinatesToEngine(r.Geometry),
		BBox:      BoundingBoxToEngine(r.BBox),
		Distance:  r.Distance,
		Waypoints: waypoints,
		Steps:     steps,
	}, nil
}

// ToInterchangeWaypoint translates one engine waypoint.
func ToInterchangeWaypoint(wp engine.Waypoint) (navigation.Waypoint, error) {
	kind, err := WaypointKindToInterchange(wp.Kind)
	if err != nil {
		return navigation.Waypoint{}, err
	}
	return navigation.Waypoint{Coordinate: CoordinateToInterchange(wp.Coordinate), Kind: kind}, nil
}

// ToEngineWaypoint translates one host waypoint.
func ToEngineWaypoint(wp navigation.Waypoint) (engine.Waypoint, error) {
	kind, err := WaypointKindToEngine(wp.Kind)
	if err != nil {
		return engine.Waypoint{}, err
	}
	return engine.Waypoint{Coordinate: CoordinateToEngine(wp.Coordinate), Kind: kind}, nil
}

// ToEngineWaypoints translates host waypoints, keeping their order.
func ToEngineWaypoints(waypoints []navigation.Waypoint) ([]engine.Waypoint, error) {
	out := make([]engine.Waypoint, len(waypoints))
	for i, wp := range waypoints {
		w, err := ToEngineWaypoint(wp)
		if err != nil {
			return nil, prefix(err, index("waypoints", i))
		}
		out[i] = w
	}
	return out, nil
}

// CoordinateToInterchange translates a coordinate.
func CoordinateToInterchange(c engine.GeographicCoordinate) navigation.GeographicCoordinate {
	return navigation.GeographicCoordinate{Lat: c.Lat, Lng: c.Lng}
}

// CoordinateToEngine translates a coordinate.
func CoordinateToEngine(c navigation.GeographicCoordinate) engine.GeographicCoordinate {
	return engine.GeographicCoordinate{Lat: c.Lat, Lng: c.Lng}
}

// BoundingBoxToInterchange translates a bounding box.
func BoundingBoxToInterchange(b engine.BoundingBox) navigation.BoundingBox {
	return navigation.BoundingBox{NE: CoordinateToInterchange(b.NE), SW: CoordinateToInterchange(b.SW)}
}

// BoundingBoxToEngine translates a bounding box.
func BoundingBoxToEngine(b navigation.BoundingBox) engine.BoundingBox {
	return engine.BoundingBox{NE: CoordinateToEngine(b.NE), SW: CoordinateToEngine(b.SW)}
}

func coordinatesToInterchange(points []engine.GeographicCoordinate) []navigation.GeographicCoordinate {
	out := make([]navigation.GeographicCoordinate, len(points))
	for i, p := range points {
		out[i] = CoordinateToInterchange(p)
	}
	return out
}

func coordinatesToEngine(points []navigation.GeographicCoordinate) []engine.GeographicCoordinate {
	out := make([]engine.GeographicCoordinate, len(points))
	for i, p := range points {
		out[i] = CoordinateToEngine(p)
	}
	return out
}

func toInterchangeStep(s engine.RouteStep) (navigation.RouteStep, error) {
	visual := make([]navigation.VisualInstruction, len(s.VisualInstructions))
	for i, vi := range s.VisualInstructions {
		v, err := ToInterchangeVisualInstruction(vi)
		if err != nil {
			return navigation.RouteStep{}, prefix(err, index("visualInstructions", i))
		}
		visual[i] = v
	}

	spoken := make([]navigation.SpokenInstruction, len(s.SpokenInstructions))
	for i, si := range s.SpokenInstructions {
		spoken[i] = ToInterchangeSpokenInstruction(si)
	}

	return navigation.RouteStep{
		Distance:           s.Distance,
		Duration:           s.Duration,
		RoadName:           clonePtr(s.RoadName),
		Instruction:        s.Instruction,
		Annotations:        cloneSlice(s.Annotations),
		Geometry:           coordinatesToInterchange(s.Geometry),
		VisualInstructions: visual,
		SpokenInstructions: spoken,
	}, nil
}

func toEngineStep(s navigation.RouteStep) (engine.RouteStep, error) {
	visual := make([]engine.VisualInstruction, len(s.VisualInstructions))
	for i, vi := range s.VisualInstructions {
		v, err := ToEngineVisualInstruction(vi)
		if err != nil {
			return engine.RouteStep{}, prefix(err, index("visualInstructions", i))
		}
		visual[i] = v
	}

	spoken := make([]engine.SpokenInstruction, len(s.SpokenInstructions))
	for i, si := range s.SpokenInstructions {
		v, err := ToEngineSpokenInstruction(si)
		if err != nil {
			return engine.RouteStep{}, prefix(err, index("spokenInstructions", i))
		}
		spoken[i] = v
	}

	return engine.RouteStep{
		Geometry:           coordinatesToEngine(s.Geometry),
		Distance:           s.Distance,
		Duration:           s.Duration,
		RoadName:           clonePtr(s.RoadName),
		Instruction:        s.Instruction,
		VisualInstructions: visual,
		SpokenInstructions: spoken,
		Annotations:        cloneSlice(s.Annotations),
	}, nil
}

// ToInterchangeVisualInstruction translates a visual instruction. Secondary
// and sub content are present only when the engine carries them.
func ToInterchangeVisualInstruction(vi engine.VisualInstruction) (navigation.VisualInstruction, error) {
	primary, err := contentToInterchange(vi.PrimaryContent)
	if err != nil {
		return navigation.VisualInstruction{}, prefix(err, "primaryContent")
	}
	out := navigation.VisualInstruction{
		PrimaryContent:                primary,
		TriggerDistanceBeforeManeuver: vi.TriggerDistanceBeforeManeuver,
	}
	if vi.SecondaryContent != nil {
		c, err := contentToInterchange(*vi.SecondaryContent)
		if err != nil {
			return navigation.VisualInstruction{}, prefix(err, "secondaryContent")
		}
		out.SecondaryContent = &c
	}
	if vi.SubContent != nil {
		c, err := contentToInterchange(*vi.SubContent)
		if err != nil {
			return navigation.VisualInstruction{}, prefix(err, "subContent")
		}
		out.SubContent = &c
	}
	return out, nil
}

// ToEngineVisualInstruction translates a host visual instruction.
func ToEngineVisualInstruction(vi navigation.VisualInstruction) (engine.VisualInstruction, error) {
	primary, err := contentToEngine(vi.PrimaryContent)
	if err != nil {
		return engine.VisualInstruction{}, prefix(err, "primaryContent")
	}
	out := engine.VisualInstruction{
		PrimaryContent:                primary,
		TriggerDistanceBeforeManeuver: vi.TriggerDistanceBeforeManeuver,
	}
	if vi.SecondaryContent != nil {
		c, err := contentToEngine(*vi.SecondaryContent)
		if err != nil {
			return engine.VisualInstruction{}, prefix(err, "secondaryContent")
		}
		out.SecondaryContent = &c
	}
	if vi.SubContent != nil {
		c, err := contentToEngine(*vi.SubContent)
		if err != nil {
			return engine.VisualInstruction{}, prefix(err, "subContent")
		}
		out.SubContent = &c
	}
	return out, nil
}

// contentToInterchange is shared by the primary, secondary and sub slots.
func contentToInterchange(c engine.VisualInstructionContent) (navigation.VisualInstructionContent, error) {
	out := navigation.VisualInstructionContent{Text: c.Text}

	if c.ManeuverType != nil {
		t, err := ManeuverTypeToInterchange(*c.ManeuverType)
		if err != nil {
			return out, err
		}
		out.ManeuverType = &t
	}
	if c.ManeuverModifier != nil {
		m, err := ManeuverModifierToInterchange(*c.ManeuverModifier)
		if err != nil {
			return out, err
		}
		out.ManeuverModifier = &m
	}
	if c.RoundaboutExitDegrees != nil {
		deg := *c.RoundaboutExitDegrees
		if math.IsNaN(deg) || math.IsInf(deg, 0) || deg > math.MaxInt32 || deg < math.MinInt32 {
			return out, navigation.NewTranslationError("roundabout exit degrees out of range",
				fmt.Sprintf("%v", deg), "roundaboutExitDegrees")
		}
		truncated := int(deg)
		out.RoundaboutExitDegrees = &truncated
	}
	if c.LaneInfo != nil {
		lanes := make([]navigation.LaneInfo, len(c.LaneInfo))
		for i, l := range c.LaneInfo {
			lane, err := laneToInterchange(l)
			if err != nil {
				return out, prefix(err, index("laneInfo", i))
			}
			lanes[i] = lane
		}
		out.LaneInfo = lanes
	}
	return out, nil
}

func contentToEngine(c navigation.VisualInstructionContent) (engine.VisualInstructionContent, error) {
	out := engine.VisualInstructionContent{Text: c.Text}

	if c.ManeuverType != nil {
		t, err := ManeuverTypeToEngine(*c.ManeuverType)
		if err != nil {
			return out, err
		}
		out.ManeuverType = &t
	}
	if c.ManeuverModifier != nil {
		m, err := ManeuverModifierToEngine(*c.ManeuverModifier)
		if err != nil {
			return out, err
		}
		out.ManeuverModifier = &m
	}
	if c.RoundaboutExitDegrees != nil {
		deg := float64(*c.RoundaboutExitDegrees)
		out.RoundaboutExitDegrees = &deg
	}
	if c.LaneInfo != nil {
		lanes := make([]engine.LaneInfo, len(c.LaneInfo))
		for i, l := range c.LaneInfo {
			lane, err := laneToEngine(l)
			if err != nil {
				return out, prefix(err, index("laneInfo", i))
			}
			lanes[i] = lane
		}
		out.LaneInfo = lanes
	}
	return out, nil
}

func laneToInterchange(l engine.LaneInfo) (navigation.LaneInfo, error) {
	directions := make([]navigation.LaneDirection, len(l.Directions))
	for i, d := range l.Directions {
		dir, err := LaneDirectionToInterchange(d)
		if err != nil {
			return navigation.LaneInfo{}, prefix(err, index("directions", i))
		}
		directions[i] = dir
	}
	out := navigation.LaneInfo{Active: l.Active, Directions: directions}
	if l.ActiveDirection != nil {
		dir, err := LaneDirectionToInterchange(*l.ActiveDirection)
		if err != nil {
			return navigation.LaneInfo{}, prefix(err, "activeDirection")
		}
		out.ActiveDirection = &dir
	}
	return out, nil
}

func laneToEngine(l navigation.LaneInfo) (engine.LaneInfo, error) {
	directions := make([]string, len(l.Directions))
	for i, d := range l.Directions {
		dir, err := LaneDirectionToEngine(d)
		if err != nil {
			return engine.LaneInfo{}, prefix(err, index("directions", i))
		}
		directions[i] = dir
	}
	out := engine.LaneInfo{Active: l.Active, Directions: directions}
	if l.ActiveDirection != nil {
		dir, err := LaneDirectionToEngine(*l.ActiveDirection)
		if err != nil {
			return engine.LaneInfo{}, prefix(err, "activeDirection")
		}
		out.ActiveDirection = &dir
	}
	return out, nil
}

// ToInterchangeSpokenInstruction translates a spoken instruction. The
// utterance identifier is carried as its canonical string form.
func ToInterchangeSpokenInstruction(si engine.SpokenInstruction) navigation.SpokenInstruction {
	return navigation.SpokenInstruction{
		Text:                          si.Text,
		SSML:                          clonePtr(si.SSML),
		UtteranceID:                   si.UtteranceID.String(),
		TriggerDistanceBeforeManeuver: si.TriggerDistanceBeforeManeuver,
	}
}

// ToEngineSpokenInstruction translates a host spoken instruction.
func ToEngineSpokenInstruction(si navigation.SpokenInstruction) (engine.SpokenInstruction, error) {
	id, err := uuid.Parse(si.UtteranceID)
	if err != nil {
		return engine.SpokenInstruction{}, navigation.NewTranslationError("utterance id is not a UUID", si.UtteranceID, "utteranceId")
	}
	return engine.SpokenInstruction{
		Text:                          si.Text,
		SSML:                          clonePtr(si.SSML),
		TriggerDistanceBeforeManeuver: si.TriggerDistanceBeforeManeuver,
		UtteranceID:                   id,
	}, nil
}

func prefix(err error, segments ...string) error {
	var te *navigation.TranslationError
	if errors.As(err, &te) {
		return te.Prefix(segments...)
	}
	return err
}

func index(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
