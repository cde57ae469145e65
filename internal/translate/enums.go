package translate

import (
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
)

// Every enumeration is mapped with an exhaustive switch in both directions.
// A value that falls through a switch is a TranslationError, never a default.

// WaypointKindToInterchange maps an engine waypoint kind to the host kind.
func WaypointKindToInterchange(k engine.WaypointKind) (navigation.WaypointKind, error) {
	switch k {
	case engine.WaypointKindBreak:
		return navigation.WaypointKindBreak, nil
	case engine.WaypointKindVia:
		return navigation.WaypointKindVia, nil
	}
	return "", navigation.NewTranslationError("unknown waypoint kind", k.String(), "kind")
}

// WaypointKindToEngine maps a host waypoint kind to the engine kind.
func WaypointKindToEngine(k navigation.WaypointKind) (engine.WaypointKind, error) {
	switch k {
	case navigation.WaypointKindBreak:
		return engine.WaypointKindBreak, nil
	case navigation.WaypointKindVia:
		return engine.WaypointKindVia, nil
	}
	return 0, navigation.NewTranslationError("unknown waypoint kind", string(k), "kind")
}

// ManeuverTypeToInterchange maps an engine maneuver type to the host type.
func ManeuverTypeToInterchange(t engine.ManeuverType) (navigation.ManeuverType, error) {
	switch t {
	case engine.ManeuverTypeTurn:
		return navigation.ManeuverTypeTurn, nil
	case engine.ManeuverTypeNewName:
		return navigation.ManeuverTypeNewName, nil
	case engine.ManeuverTypeDepart:
		return navigation.ManeuverTypeDepart, nil
	case engine.ManeuverTypeArrive:
		return navigation.ManeuverTypeArrive, nil
	case engine.ManeuverTypeMerge:
		return navigation.ManeuverTypeMerge, nil
	case engine.ManeuverTypeOnRamp:
		return navigation.ManeuverTypeOnRamp, nil
	case engine.ManeuverTypeOffRamp:
		return navigation.ManeuverTypeOffRamp, nil
	case engine.ManeuverTypeFork:
		return navigation.ManeuverTypeFork, nil
	case engine.ManeuverTypeEndOfRoad:
		return navigation.ManeuverTypeEndOfRoad, nil
	case engine.ManeuverTypeContinue:
		return navigation.ManeuverTypeContinue, nil
	case engine.ManeuverTypeRoundabout:
		return navigation.ManeuverTypeRoundabout, nil
	case engine.ManeuverTypeRotary:
		return navigation.ManeuverTypeRotary, nil
	case engine.ManeuverTypeRoundaboutTurn:
		return navigation.ManeuverTypeRoundaboutTurn, nil
	case engine.ManeuverTypeNotification:
		return navigation.ManeuverTypeNotification, nil
	case engine.ManeuverTypeExitRoundabout:
		return navigation.ManeuverTypeExitRoundabout, nil
	case engine.ManeuverTypeExitRotary:
		return navigation.ManeuverTypeExitRotary, nil
	}
	return "", navigation.NewTranslationError("unknown maneuver type", t.String(), "maneuverType")
}

// ManeuverTypeToEngine maps a host maneuver type to the engine type.
func ManeuverTypeToEngine(t navigation.ManeuverType) (engine.ManeuverType, error) {
	switch t {
	case navigation.ManeuverTypeTurn:
		return engine.ManeuverTypeTurn, nil
	case navigation.ManeuverTypeNewName:
		return engine.ManeuverTypeNewName, nil
	case navigation.ManeuverTypeDepart:
		return engine.ManeuverTypeDepart, nil
	case navigation.ManeuverTypeArrive:
		return engine.ManeuverTypeArrive, nil
	case navigation.ManeuverTypeMerge:
		return engine.ManeuverTypeMerge, nil
	case navigation.ManeuverTypeOnRamp:
		return engine.ManeuverTypeOnRamp, nil
	case navigation.ManeuverTypeOffRamp:
		return engine.ManeuverTypeOffRamp, nil
	case navigation.ManeuverTypeFork:
		return engine.ManeuverTypeFork, nil
	case navigation.ManeuverTypeEndOfRoad:
		return engine.ManeuverTypeEndOfRoad, nil
	case navigation.ManeuverTypeContinue:
		return engine.ManeuverTypeContinue, nil
	case navigation.ManeuverTypeRoundabout:
		return engine.ManeuverTypeRoundabout, nil
	case navigation.ManeuverTypeRotary:
		return engine.ManeuverTypeRotary, nil
	case navigation.ManeuverTypeRoundaboutTurn:
		return engine.ManeuverTypeRoundaboutTurn, nil
	case navigation.ManeuverTypeNotification:
		return engine.ManeuverTypeNotification, nil
	case navigation.ManeuverTypeExitRoundabout:
		return engine.ManeuverTypeExitRoundabout, nil
	case navigation.ManeuverTypeExitRotary:
		return engine.ManeuverTypeExitRotary, nil
	}
	return 0, navigation.NewTranslationError("unknown maneuver type", string(t), "maneuverType")
}

// ManeuverModifierToInterchange maps an engine maneuver modifier to the host modifier.
func ManeuverModifierToInterchange(m engine.ManeuverModifier) (navigation.ManeuverModifier, error) {
	switch m {
	case engine.ManeuverModifierUTurn:
		return navigation.ManeuverModifierUTurn, nil
	case engine.ManeuverModifierSharpRight:
		return navigation.ManeuverModifierSharpRight, nil
	case engine.ManeuverModifierRight:
		return navigation.ManeuverModifierRight, nil
	case engine.ManeuverModifierSlightRight:
		return navigation.ManeuverModifierSlightRight, nil
	case engine.ManeuverModifierStraight:
		return navigation.ManeuverModifierStraight, nil
	case engine.ManeuverModifierSlightLeft:
		return navigation.ManeuverModifierSlightLeft, nil
	case engine.ManeuverModifierLeft:
		return navigation.ManeuverModifierLeft, nil
	case engine.ManeuverModifierSharpLeft:
		return navigation.ManeuverModifierSharpLeft, nil
	}
	return "", navigation.NewTranslationError("unknown maneuver modifier", m.String(), "maneuverModifier")
}

// ManeuverModifierToEngine maps a host maneuver modifier to the engine modifier.
func ManeuverModifierToEngine(m navigation.ManeuverModifier) (engine.ManeuverModifier, error) {
	switch m {
	case navigation.ManeuverModifierUTurn:
		return engine.ManeuverModifierUTurn, nil
	case navigation.ManeuverModifierSharpRight:
		return engine.ManeuverModifierSharpRight, nil
	case navigation.ManeuverModifierRight:
		return engine.ManeuverModifierRight, nil
	case navigation.ManeuverModifierSlightRight:
		return engine.ManeuverModifierSlightRight, nil
	case navigation.ManeuverModifierStraight:
		return engine.ManeuverModifierStraight, nil
	case navigation.ManeuverModifierSlightLeft:
		return engine.ManeuverModifierSlightLeft, nil
	case navigation.ManeuverModifierLeft:
		return engine.ManeuverModifierLeft, nil
	case navigation.ManeuverModifierSharpLeft:
		return engine.ManeuverModifierSharpLeft, nil
	}
	return 0, navigation.NewTranslationError("unknown maneuver modifier", string(m), "maneuverModifier")
}

// CourseFilteringToInterchange maps an engine course filtering mode to the host mode.
func CourseFilteringToInterchange(c engine.CourseFiltering) (navigation.CourseFiltering, error) {
	switch c {
	case engine.CourseFilteringSnapToRoute:
		return navigation.CourseFilteringSnapToRoute, nil
	case engine.CourseFilteringRaw:
		return navigation.CourseFilteringRaw, nil
	}
	return "", navigation.NewTranslationError("unknown course filtering", c.String(), "snappedLocationCourseFiltering")
}

// CourseFilteringToEngine maps a host course filtering mode to the engine mode.
func CourseFilteringToEngine(c navigation.CourseFiltering) (engine.CourseFiltering, error) {
	switch c {
	case navigation.CourseFilteringSnapToRoute:
		return engine.CourseFilteringSnapToRoute, nil
	case navigation.CourseFilteringRaw:
		return engine.CourseFilteringRaw, nil
	}
	return 0, navigation.NewTranslationError("unknown course filtering", string(c), "snappedLocationCourseFiltering")
}

// LaneDirectionToInterchange maps a raw engine lane indication to the host enum.
func LaneDirectionToInterchange(s string) (navigation.LaneDirection, error) {
	d := navigation.LaneDirection(s)
	switch d {
	case navigation.LaneDirectionNone, navigation.LaneDirectionUTurn,
		navigation.LaneDirectionSharpRight, navigation.LaneDirectionRight,
		navigation.LaneDirectionSlightRight, navigation.LaneDirectionStraight,
		navigation.LaneDirectionSlightLeft, navigation.LaneDirectionLeft,
		navigation.LaneDirectionSharpLeft:
		return d, nil
	}
	return "", navigation.NewTranslationError("unknown lane direction", s)
}

// LaneDirectionToEngine maps a host lane direction to the raw engine indication.
func LaneDirectionToEngine(d navigation.LaneDirection) (string, error) {
	if _, err := LaneDirectionToInterchange(string(d)); err != nil {
		return "", err
	}
	return string(d), nil
}

// NavigationStatusToInterchange maps the engine's navigation status to the host status.
func NavigationStatusToInterchange(s engine.NavigationStatus) (navigation.NavigationStatus, error) {
	switch s {
	case engine.StatusIdle:
		return navigation.NavigationStatusIdle, nil
	case engine.StatusNavigating:
		return navigation.NavigationStatusNavigating, nil
	case engine.StatusComplete:
		return navigation.NavigationStatusComplete, nil
	}
	return "", navigation.NewTranslationError("unknown navigation status", s.String(), "status")
}
