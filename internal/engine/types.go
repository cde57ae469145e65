// Package engine defines the contracts of the navigation engine the bridge
// drives, together with the engine's own route and instruction model.
//
// The engine model deliberately differs from the host interchange model in
// internal/domain/navigation: enumerations are closed integer sets, tagged
// variants are Go sum types and utterance identifiers are UUIDs. The
// internal/translate package maps between the two.
package engine

import (
	"time"

	"github.com/google/uuid"
)

// GeographicCoordinate is a WGS84 latitude/longitude pair.
type GeographicCoordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is the rectangular extent of a route.
type BoundingBox struct {
	SW GeographicCoordinate `json:"sw"`
	NE GeographicCoordinate `json:"ne"`
}

// Waypoint is a point the route must pass through.
type Waypoint struct {
	Coordinate GeographicCoordinate `json:"coordinate"`
	Kind       WaypointKind         `json:"kind"`
}

// CourseOverGround is the direction of travel in degrees from true north.
type CourseOverGround struct {
	Degrees  uint16 `json:"degrees"`
	Accuracy uint16 `json:"accuracy"`
}

// Speed is the measured ground speed in meters per second.
type Speed struct {
	Value    float64  `json:"value"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// UserLocation is a location fix fed to the engine.
type UserLocation struct {
	Coordinates        GeographicCoordinate `json:"coordinates"`
	HorizontalAccuracy float64              `json:"horizontal_accuracy"`
	CourseOverGround   *CourseOverGround    `json:"course_over_ground,omitempty"`
	Timestamp          time.Time            `json:"timestamp"`
	Speed              *Speed               `json:"speed,omitempty"`
}

// Route is a route as computed by the routing backend.
type Route struct {
	Geometry  []GeographicCoordinate `json:"geometry"`
	BBox      BoundingBox            `json:"bbox"`
	Distance  float64                `json:"distance"`
	Waypoints []Waypoint             `json:"waypoints"`
	Steps     []RouteStep            `json:"steps"`
}

// RouteStep is one maneuver-to-maneuver leg of a route.
type RouteStep struct {
	Geometry           []GeographicCoordinate `json:"geometry"`
	Distance           float64                `json:"distance"`
	Duration           float64                `json:"duration"`
	RoadName           *string                `json:"road_name,omitempty"`
	Instruction        string                 `json:"instruction"`
	VisualInstructions []VisualInstruction    `json:"visual_instructions"`
	SpokenInstructions []SpokenInstruction    `json:"spoken_instructions"`
	Annotations        []string               `json:"annotations,omitempty"`
}

// VisualInstruction is a banner shown ahead of a maneuver.
type VisualInstruction struct {
	PrimaryContent                VisualInstructionContent  `json:"primary_content"`
	SecondaryContent              *VisualInstructionContent `json:"secondary_content,omitempty"`
	SubContent                    *VisualInstructionContent `json:"sub_content,omitempty"`
	TriggerDistanceBeforeManeuver float64                   `json:"trigger_distance_before_maneuver"`
}

// VisualInstructionContent is one line of a visual instruction banner.
type VisualInstructionContent struct {
	Text                  string            `json:"text"`
	ManeuverType          *ManeuverType     `json:"maneuver_type,omitempty"`
	ManeuverModifier      *ManeuverModifier `json:"maneuver_modifier,omitempty"`
	RoundaboutExitDegrees *float64          `json:"roundabout_exit_degrees,omitempty"`
	LaneInfo              []LaneInfo        `json:"lane_info,omitempty"`
}

// LaneInfo describes one lane at a maneuver. Directions are the backend's
// raw lane indications.
type LaneInfo struct {
	Active          bool     `json:"active"`
	Directions      []string `json:"directions"`
	ActiveDirection *string  `json:"active_direction,omitempty"`
}

// SpokenInstruction is a voice prompt ahead of a maneuver.
type SpokenInstruction struct {
	Text                          string    `json:"text"`
	SSML                          *string   `json:"ssml,omitempty"`
	TriggerDistanceBeforeManeuver float64   `json:"trigger_distance_before_maneuver"`
	UtteranceID                   uuid.UUID `json:"utterance_id"`
}
