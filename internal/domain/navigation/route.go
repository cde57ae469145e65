package navigation

import "time"

// GeographicCoordinate is a WGS84 latitude/longitude pair.
type GeographicCoordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is the rectangular extent of a route.
type BoundingBox struct {
	NE GeographicCoordinate `json:"ne"`
	SW GeographicCoordinate `json:"sw"`
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

// UserLocation is a single location fix as seen by the host.
type UserLocation struct {
	Coordinates        GeographicCoordinate `json:"coordinates"`
	HorizontalAccuracy float64              `json:"horizontalAccuracy"`
	CourseOverGround   *CourseOverGround    `json:"courseOverGround,omitempty"`
	Timestamp          time.Time            `json:"timestamp"`
	Speed              *Speed               `json:"speed,omitempty"`
}

// Route is an immutable route returned by a route query.
type Route struct {
	Distance  float64                `json:"distance"`
	Geometry  []GeographicCoordinate `json:"geometry"`
	BBox      BoundingBox            `json:"bbox"`
	Waypoints []Waypoint             `json:"waypoints"`
	Steps     []RouteStep            `json:"steps"`
}

// RouteStep is one maneuver-to-maneuver leg of a route.
type RouteStep struct {
	Distance           float64                `json:"distance"`
	Duration           float64                `json:"duration"`
	RoadName           *string                `json:"roadName,omitempty"`
	Instruction        string                 `json:"instruction"`
	Annotations        []string               `json:"annotations,omitempty"`
	Geometry           []GeographicCoordinate `json:"geometry"`
	VisualInstructions []VisualInstruction    `json:"visualInstructions"`
	SpokenInstructions []SpokenInstruction    `json:"spokenInstructions"`
}

// VisualInstruction is a banner shown ahead of a maneuver.
type VisualInstruction struct {
	PrimaryContent                VisualInstructionContent  `json:"primaryContent"`
	SecondaryContent              *VisualInstructionContent `json:"secondaryContent,omitempty"`
	SubContent                    *VisualInstructionContent `json:"subContent,omitempty"`
	TriggerDistanceBeforeManeuver float64                   `json:"triggerDistanceBeforeManeuver"`
}

// VisualInstructionContent is one line of a visual instruction banner.
type VisualInstructionContent struct {
	Text             string            `json:"text"`
	ManeuverType     *ManeuverType     `json:"maneuverType,omitempty"`
	ManeuverModifier *ManeuverModifier `json:"maneuverModifier,omitempty"`
	// RoundaboutExitDegrees is truncated toward zero from the engine's
	// floating point value. This is the only lossy field in the schema.
	RoundaboutExitDegrees *int       `json:"roundaboutExitDegrees,omitempty"`
	LaneInfo              []LaneInfo `json:"laneInfo,omitempty"`
}

// LaneInfo describes one lane at a maneuver.
type LaneInfo struct {
	Active          bool            `json:"active"`
	Directions      []LaneDirection `json:"directions"`
	ActiveDirection *LaneDirection  `json:"activeDirection,omitempty"`
}

// SpokenInstruction is a voice prompt ahead of a maneuver.
type SpokenInstruction struct {
	Text                          string  `json:"text"`
	SSML                          *string `json:"ssml,omitempty"`
	UtteranceID                   string  `json:"utteranceId"`
	TriggerDistanceBeforeManeuver float64 `json:"triggerDistanceBeforeManeuver"`
}
