package engine

import "fmt"

// WaypointKind tells the engine whether a waypoint splits the route into legs.
type WaypointKind int

const (
	WaypointKindBreak WaypointKind = iota
	WaypointKindVia
)

var waypointKindNames = [...]string{"break", "via"}

func (k WaypointKind) String() string { return enumName(waypointKindNames[:], int(k)) }

// MarshalText implements encoding.TextMarshaler.
func (k WaypointKind) MarshalText() ([]byte, error) { return marshalEnum(waypointKindNames[:], int(k)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *WaypointKind) UnmarshalText(b []byte) error {
	return unmarshalEnum(waypointKindNames[:], b, (*int)(k))
}

// ManeuverType is the kind of maneuver a visual instruction announces.
type ManeuverType int

const (
	ManeuverTypeTurn ManeuverType = iota
	ManeuverTypeNewName
	ManeuverTypeDepart
	ManeuverTypeArrive
	ManeuverTypeMerge
	ManeuverTypeOnRamp
	ManeuverTypeOffRamp
	ManeuverTypeFork
	ManeuverTypeEndOfRoad
	ManeuverTypeContinue
	ManeuverTypeRoundabout
	ManeuverTypeRotary
	ManeuverTypeRoundaboutTurn
	ManeuverTypeNotification
	ManeuverTypeExitRoundabout
	ManeuverTypeExitRotary
)

var maneuverTypeNames = [...]string{
	"turn", "new name", "depart", "arrive", "merge", "on ramp", "off ramp", "fork",
	"end of road", "continue", "roundabout", "rotary", "roundabout turn", "notification",
	"exit roundabout", "exit rotary",
}

// ManeuverTypeCount is the number of maneuver types the engine defines.
const ManeuverTypeCount = len(maneuverTypeNames)

func (t ManeuverType) String() string { return enumName(maneuverTypeNames[:], int(t)) }

// MarshalText implements encoding.TextMarshaler.
func (t ManeuverType) MarshalText() ([]byte, error) { return marshalEnum(maneuverTypeNames[:], int(t)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ManeuverType) UnmarshalText(b []byte) error {
	return unmarshalEnum(maneuverTypeNames[:], b, (*int)(t))
}

// ManeuverModifier refines a maneuver type with a direction.
type ManeuverModifier int

const (
	ManeuverModifierUTurn ManeuverModifier = iota
	ManeuverModifierSharpRight
	ManeuverModifierRight
	ManeuverModifierSlightRight
	ManeuverModifierStraight
	ManeuverModifierSlightLeft
	ManeuverModifierLeft
	ManeuverModifierSharpLeft
)

var maneuverModifierNames = [...]string{
	"uturn", "sharp right", "right", "slight right", "straight", "slight left", "left", "sharp left",
}

// ManeuverModifierCount is the number of maneuver modifiers the engine defines.
const ManeuverModifierCount = len(maneuverModifierNames)

func (m ManeuverModifier) String() string { return enumName(maneuverModifierNames[:], int(m)) }

// MarshalText implements encoding.TextMarshaler.
func (m ManeuverModifier) MarshalText() ([]byte, error) {
	return marshalEnum(maneuverModifierNames[:], int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ManeuverModifier) UnmarshalText(b []byte) error {
	return unmarshalEnum(maneuverModifierNames[:], b, (*int)(m))
}

// CourseFiltering selects how the course of a snapped location is derived.
type CourseFiltering int

const (
	CourseFilteringSnapToRoute CourseFiltering = iota
	CourseFilteringRaw
)

var courseFilteringNames = [...]string{"snap_to_route", "raw"}

func (c CourseFiltering) String() string { return enumName(courseFilteringNames[:], int(c)) }

// NavigationStatus is the coarse state of the navigation state machine.
type NavigationStatus int

const (
	StatusIdle NavigationStatus = iota
	StatusNavigating
	StatusComplete
)

var navigationStatusNames = [...]string{"idle", "navigating", "complete"}

func (s NavigationStatus) String() string { return enumName(navigationStatusNames[:], int(s)) }

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func marshalEnum(names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("unknown enum value %d", v)
	}
	return []byte(names[v]), nil
}

func unmarshalEnum(names []string, b []byte, dst *int) error {
	s := string(b)
	for i, name := range names {
		if name == s {
			*dst = i
			return nil
		}
	}
	return fmt.Errorf("unknown enum name %q", s)
}
