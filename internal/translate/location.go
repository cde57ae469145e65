package translate

import (
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
)

// ToEngineLocation translates a host location fix.
func ToEngineLocation(l navigation.UserLocation) engine.UserLocation {
	out := engine.UserLocation{
		Coordinates:        CoordinateToEngine(l.Coordinates),
		HorizontalAccuracy: l.HorizontalAccuracy,
		Timestamp:          l.Timestamp,
	}
	if l.CourseOverGround != nil {
		out.CourseOverGround = &engine.CourseOverGround{
			Degrees:  l.CourseOverGround.Degrees,
			Accuracy: l.CourseOverGround.Accuracy,
		}
	}
	if l.Speed != nil {
		out.Speed = &engine.Speed{Value: l.Speed.Value, Accuracy: clonePtr(l.Speed.Accuracy)}
	}
	return out
}

// ToInterchangeLocation translates an engine location fix.
func ToInterchangeLocation(l engine.UserLocation) navigation.UserLocation {
	out := navigation.UserLocation{
		Coordinates:        CoordinateToInterchange(l.Coordinates),
		HorizontalAccuracy: l.HorizontalAccuracy,
		Timestamp:          l.Timestamp,
	}
	if l.CourseOverGround != nil {
		out.CourseOverGround = &navigation.CourseOverGround{
			Degrees:  l.CourseOverGround.Degrees,
			Accuracy: l.CourseOverGround.Accuracy,
		}
	}
	if l.Speed != nil {
		out.Speed = &navigation.Speed{Value: l.Speed.Value, Accuracy: clonePtr(l.Speed.Accuracy)}
	}
	return out
}
