package engine

// StepAdvanceMode selects how the navigation state machine advances to the
// next step. It is a closed sum type; the implementations below are the only
// variants.
type StepAdvanceMode interface {
	isStepAdvanceMode()
}

// StepAdvanceManual never advances automatically.
type StepAdvanceManual struct{}

// StepAdvanceDistanceToEndOfStep advances once the user is within Distance
// meters of the end of the step.
type StepAdvanceDistanceToEndOfStep struct {
	Distance                  uint16
	MinimumHorizontalAccuracy uint16
}

// StepAdvanceRelativeLineStringDistance advances once the user is closer to
// the next step's geometry than to the current one, or within
// AutomaticAdvanceDistance meters of the end of the step when that is set.
// Fixes less accurate than MinimumHorizontalAccuracy never advance.
type StepAdvanceRelativeLineStringDistance struct {
	MinimumHorizontalAccuracy uint16
	AutomaticAdvanceDistance  *uint16
}

func (StepAdvanceManual) isStepAdvanceMode()                     {}
func (StepAdvanceDistanceToEndOfStep) isStepAdvanceMode()        {}
func (StepAdvanceRelativeLineStringDistance) isStepAdvanceMode() {}

// RouteDeviationTracking selects how the engine decides the user left the route.
type RouteDeviationTracking interface {
	isRouteDeviationTracking()
}

// DeviationTrackingNone disables deviation detection.
type DeviationTrackingNone struct{}

// DeviationTrackingStaticThreshold reports a deviation once the user is more
// than MaxAcceptableDeviation meters from the current step's line. Fixes less
// accurate than MinimumHorizontalAccuracy are not judged.
type DeviationTrackingStaticThreshold struct {
	MinimumHorizontalAccuracy uint16
	MaxAcceptableDeviation    float64
}

func (DeviationTrackingNone) isRouteDeviationTracking()            {}
func (DeviationTrackingStaticThreshold) isRouteDeviationTracking() {}

// NavigationControllerConfig configures the navigation state machine.
type NavigationControllerConfig struct {
	StepAdvance                    StepAdvanceMode
	RouteDeviationTracking         RouteDeviationTracking
	SnappedLocationCourseFiltering CourseFiltering
}
