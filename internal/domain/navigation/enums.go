package navigation

import "fmt"

// WaypointKind tells the engine whether a waypoint splits the route into legs.
type WaypointKind string

const (
	WaypointKindBreak WaypointKind = "break"
	WaypointKindVia   WaypointKind = "via"
)

// IsValid returns true if the waypoint kind is recognized.
func (k WaypointKind) IsValid() bool {
	switch k {
	case WaypointKindBreak, WaypointKindVia:
		return true
	}
	return false
}

// ManeuverType is the kind of maneuver a visual instruction announces.
type ManeuverType string

const (
	ManeuverTypeTurn           ManeuverType = "turn"
	ManeuverTypeNewName        ManeuverType = "new name"
	ManeuverTypeDepart         ManeuverType = "depart"
	ManeuverTypeArrive         ManeuverType = "arrive"
	ManeuverTypeMerge          ManeuverType = "merge"
	ManeuverTypeOnRamp         ManeuverType = "on ramp"
	ManeuverTypeOffRamp        ManeuverType = "off ramp"
	ManeuverTypeFork           ManeuverType = "fork"
	ManeuverTypeEndOfRoad      ManeuverType = "end of road"
	ManeuverTypeContinue       ManeuverType = "continue"
	ManeuverTypeRoundabout     ManeuverType = "roundabout"
	ManeuverTypeRotary         ManeuverType = "rotary"
	ManeuverTypeRoundaboutTurn ManeuverType = "roundabout turn"
	ManeuverTypeNotification   ManeuverType = "notification"
	ManeuverTypeExitRoundabout ManeuverType = "exit roundabout"
	ManeuverTypeExitRotary     ManeuverType = "exit rotary"
)

// ManeuverTypes lists every maneuver type in declaration order.
var ManeuverTypes = []ManeuverType{
	ManeuverTypeTurn, ManeuverTypeNewName, ManeuverTypeDepart, ManeuverTypeArrive,
	ManeuverTypeMerge, ManeuverTypeOnRamp, ManeuverTypeOffRamp, ManeuverTypeFork,
	ManeuverTypeEndOfRoad, ManeuverTypeContinue, ManeuverTypeRoundabout, ManeuverTypeRotary,
	ManeuverTypeRoundaboutTurn, ManeuverTypeNotification, ManeuverTypeExitRoundabout, ManeuverTypeExitRotary,
}

// ManeuverModifier refines a maneuver type with a direction.
type ManeuverModifier string

const (
	ManeuverModifierUTurn       ManeuverModifier = "uturn"
	ManeuverModifierSharpRight  ManeuverModifier = "sharp right"
	ManeuverModifierRight       ManeuverModifier = "right"
	ManeuverModifierSlightRight ManeuverModifier = "slight right"
	ManeuverModifierStraight    ManeuverModifier = "straight"
	ManeuverModifierSlightLeft  ManeuverModifier = "slight left"
	ManeuverModifierLeft        ManeuverModifier = "left"
	ManeuverModifierSharpLeft   ManeuverModifier = "sharp left"
)

// ManeuverModifiers lists every maneuver modifier in declaration order.
var ManeuverModifiers = []ManeuverModifier{
	ManeuverModifierUTurn, ManeuverModifierSharpRight, ManeuverModifierRight, ManeuverModifierSlightRight,
	ManeuverModifierStraight, ManeuverModifierSlightLeft, ManeuverModifierLeft, ManeuverModifierSharpLeft,
}

// LaneDirection is a lane indication as published by the routing backend.
type LaneDirection string

const (
	LaneDirectionNone        LaneDirection = "none"
	LaneDirectionUTurn       LaneDirection = "uturn"
	LaneDirectionSharpRight  LaneDirection = "sharp right"
	LaneDirectionRight       LaneDirection = "right"
	LaneDirectionSlightRight LaneDirection = "slight right"
	LaneDirectionStraight    LaneDirection = "straight"
	LaneDirectionSlightLeft  LaneDirection = "slight left"
	LaneDirectionLeft        LaneDirection = "left"
	LaneDirectionSharpLeft   LaneDirection = "sharp left"
)

// LaneDirections lists every lane direction in declaration order.
var LaneDirections = []LaneDirection{
	LaneDirectionNone, LaneDirectionUTurn, LaneDirectionSharpRight, LaneDirectionRight,
	LaneDirectionSlightRight, LaneDirectionStraight, LaneDirectionSlightLeft, LaneDirectionLeft,
	LaneDirectionSharpLeft,
}

// CourseFiltering selects how the course of a snapped location is derived.
type CourseFiltering string

const (
	CourseFilteringSnapToRoute CourseFiltering = "snapToRoute"
	CourseFilteringRaw         CourseFiltering = "raw"
)

// IsValid returns true if the course filtering mode is recognized.
func (c CourseFiltering) IsValid() bool {
	switch c {
	case CourseFilteringSnapToRoute, CourseFilteringRaw:
		return true
	}
	return false
}

// LocationMode selects which location provider a session is built with.
type LocationMode string

const (
	LocationModeDevice    LocationMode = "device"
	LocationModeFused     LocationMode = "fused"
	LocationModeSimulated LocationMode = "simulated"
)

// IsValid returns true if the location mode is recognized.
func (m LocationMode) IsValid() bool {
	switch m {
	case LocationModeDevice, LocationModeFused, LocationModeSimulated:
		return true
	}
	return false
}

// ParseLocationMode converts a string to a LocationMode, returning an error if invalid.
func ParseLocationMode(s string) (LocationMode, error) {
	mode := LocationMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid location mode: %s", s)
	}
	return mode, nil
}

// StepAdvanceType is the tag of the step advance variant.
type StepAdvanceType string

const (
	StepAdvanceManual                     StepAdvanceType = "manual"
	StepAdvanceDistanceToEndOfStep        StepAdvanceType = "distanceToEndOfStep"
	StepAdvanceRelativeLineStringDistance StepAdvanceType = "relativeLineStringDistance"
)

// DeviationTrackingType is the tag of the route deviation tracking variant.
type DeviationTrackingType string

const (
	DeviationTrackingNone            DeviationTrackingType = "none"
	DeviationTrackingStaticThreshold DeviationTrackingType = "staticThreshold"
)

// NavigationStatus is the coarse state of the engine's navigation state machine.
type NavigationStatus string

const (
	NavigationStatusIdle       NavigationStatus = "idle"
	NavigationStatusNavigating NavigationStatus = "navigating"
	NavigationStatusComplete   NavigationStatus = "complete"
)
