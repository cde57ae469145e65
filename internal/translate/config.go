package translate

import (
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
)

// ToEngineConfig translates the host's navigation controller config. A
// variant missing one of its required fields is a TranslationError.
func ToEngineConfig(c navigation.NavigationControllerConfig) (engine.NavigationControllerConfig, error) {
	stepAdvance, err := stepAdvanceToEngine(c.StepAdvance)
	if err != nil {
		return engine.NavigationControllerConfig{}, prefix(err, "stepAdvance")
	}
	deviation, err := deviationToEngine(c.RouteDeviationTracking)
	if err != nil {
		return engine.NavigationControllerConfig{}, prefix(err, "routeDeviationTracking")
	}
	filtering, err := CourseFilteringToEngine(c.SnappedLocationCourseFiltering)
	if err != nil {
		return engine.NavigationControllerConfig{}, err
	}
	return engine.NavigationControllerConfig{
		StepAdvance:                    stepAdvance,
		RouteDeviationTracking:         deviation,
		SnappedLocationCourseFiltering: filtering,
	}, nil
}

// ToInterchangeConfig translates an engine navigation controller config.
func ToInterchangeConfig(c engine.NavigationControllerConfig) (navigation.NavigationControllerConfig, error) {
	stepAdvance, err := stepAdvanceToInterchange(c.StepAdvance)
	if err != nil {
		return navigation.NavigationControllerConfig{}, prefix(err, "stepAdvance")
	}
	deviation, err := deviationToInterchange(c.RouteDeviationTracking)
	if err != nil {
		return navigation.NavigationControllerConfig{}, prefix(err, "routeDeviationTracking")
	}
	filtering, err := CourseFilteringToInterchange(c.SnappedLocationCourseFiltering)
	if err != nil {
		return navigation.NavigationControllerConfig{}, err
	}
	return navigation.NavigationControllerConfig{
		StepAdvance:                    stepAdvance,
		RouteDeviationTracking:         deviation,
		SnappedLocationCourseFiltering: filtering,
	}, nil
}

func stepAdvanceToEngine(m navigation.StepAdvanceMode) (engine.StepAdvanceMode, error) {
	switch m.Type {
	case navigation.StepAdvanceManual:
		return engine.StepAdvanceManual{}, nil
	case navigation.StepAdvanceDistanceToEndOfStep:
		if m.Distance == nil {
			return nil, missing("distance")
		}
		if m.MinimumHorizontalAccuracy == nil {
			return nil, missing("minimumHorizontalAccuracy")
		}
		return engine.StepAdvanceDistanceToEndOfStep{
			Distance:                  *m.Distance,
			MinimumHorizontalAccuracy: *m.MinimumHorizontalAccuracy,
		}, nil
	case navigation.StepAdvanceRelativeLineStringDistance:
		if m.MinimumHorizontalAccuracy == nil {
			return nil, missing("minimumHorizontalAccuracy")
		}
		return engine.StepAdvanceRelativeLineStringDistance{
			MinimumHorizontalAccuracy: *m.MinimumHorizontalAccuracy,
			AutomaticAdvanceDistance:  clonePtr(m.AutomaticAdvanceDistance),
		}, nil
	}
	return nil, navigation.NewTranslationError("unknown step advance mode", string(m.Type), "type")
}

func stepAdvanceToInterchange(m engine.StepAdvanceMode) (navigation.StepAdvanceMode, error) {
	switch v := m.(type) {
	case engine.StepAdvanceManual:
		return navigation.StepAdvanceMode{Type: navigation.StepAdvanceManual}, nil
	case engine.StepAdvanceDistanceToEndOfStep:
		distance, accuracy := v.Distance, v.MinimumHorizontalAccuracy
		return navigation.StepAdvanceMode{
			Type:                      navigation.StepAdvanceDistanceToEndOfStep,
			Distance:                  &distance,
			MinimumHorizontalAccuracy: &accuracy,
		}, nil
	case engine.StepAdvanceRelativeLineStringDistance:
		accuracy := v.MinimumHorizontalAccuracy
		return navigation.StepAdvanceMode{
			Type:                      navigation.StepAdvanceRelativeLineStringDistance,
			MinimumHorizontalAccuracy: &accuracy,
			AutomaticAdvanceDistance:  clonePtr(v.AutomaticAdvanceDistance),
		}, nil
	}
	return navigation.StepAdvanceMode{}, navigation.NewTranslationError("unknown step advance mode", fmt.Sprintf("%T", m), "type")
}

func deviationToEngine(t navigation.RouteDeviationTracking) (engine.RouteDeviationTracking, error) {
	switch t.Type {
	case navigation.DeviationTrackingNone:
		return engine.DeviationTrackingNone{}, nil
	case navigation.DeviationTrackingStaticThreshold:
		if t.MinimumHorizontalAccuracy == nil {
			return nil, missing("minimumHorizontalAccuracy")
		}
		if t.MaxAcceptableDeviation == nil {
			return nil, missing("maxAcceptableDeviation")
		}
		return engine.DeviationTrackingStaticThreshold{
			MinimumHorizontalAccuracy: *t.MinimumHorizontalAccuracy,
			MaxAcceptableDeviation:    *t.MaxAcceptableDeviation,
		}, nil
	}
	return nil, navigation.NewTranslationError("unknown route deviation tracking", string(t.Type), "type")
}

func deviationToInterchange(t engine.RouteDeviationTracking) (navigation.RouteDeviationTracking, error) {
	switch v := t.(type) {
	case engine.DeviationTrackingNone:
		return navigation.RouteDeviationTracking{Type: navigation.DeviationTrackingNone}, nil
	case engine.DeviationTrackingStaticThreshold:
		accuracy, deviation := v.MinimumHorizontalAccuracy, v.MaxAcceptableDeviation
		return navigation.RouteDeviationTracking{
			Type:                      navigation.DeviationTrackingStaticThreshold,
			MinimumHorizontalAccuracy: &accuracy,
			MaxAcceptableDeviation:    &deviation,
		}, nil
	}
	return navigation.RouteDeviationTracking{}, navigation.NewTranslationError("unknown route deviation tracking", fmt.Sprintf("%T", t), "type")
}

func missing(field string) *navigation.TranslationError {
	return navigation.NewTranslationError("required field missing", "", field)
}
