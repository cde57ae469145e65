package engine

import (
	"context"
	"errors"
	"net/http"
)

// ErrNotNavigating is returned by commands that need an active route.
var ErrNotNavigating = errors.New("navigation is not active")

// ErrClosed is returned by an engine or provider after it was torn down.
var ErrClosed = errors.New("closed")

// NavigationState is the engine's view of in-progress navigation.
type NavigationState struct {
	Status                 NavigationStatus
	Location               *UserLocation
	SnappedLocation        *UserLocation
	Route                  *Route
	CurrentStepIndex       int
	DistanceToNextManeuver *float64
	// RouteDeviation is the distance in meters from the route line while the
	// user is judged off route, nil otherwise.
	RouteDeviation    *float64
	VisualInstruction *VisualInstruction
	SpokenInstruction *SpokenInstruction
}

// RemainingSteps returns the steps from the current one to the end of the route.
func (s NavigationState) RemainingSteps() []RouteStep {
	if s.Route == nil || s.CurrentStepIndex >= len(s.Route.Steps) {
		return nil
	}
	return s.Route.Steps[s.CurrentStepIndex:]
}

// Engine computes routes and tracks in-progress navigation.
type Engine interface {
	// GetRoutes asks the routing backend for routes from initial through
	// waypoints. Routes are returned best first.
	GetRoutes(ctx context.Context, initial UserLocation, waypoints []Waypoint) ([]Route, error)

	// StartNavigation starts the navigation state machine on route.
	StartNavigation(ctx context.Context, route Route, config NavigationControllerConfig) error

	// StopNavigation stops navigation. A nil stopLocationUpdates lets the
	// engine apply its own default.
	StopNavigation(ctx context.Context, stopLocationUpdates *bool) error

	// ReplaceRoute swaps the active route without resetting navigation.
	ReplaceRoute(ctx context.Context, route Route, config NavigationControllerConfig) error

	// AdvanceToNextStep moves to the next step of the active route.
	AdvanceToNextStep(ctx context.Context) error

	// State returns the current navigation state.
	State() NavigationState

	// Subscribe registers fn to be called on every state change. The
	// returned function removes the subscription.
	Subscribe(fn func(NavigationState)) (unsubscribe func())

	// Close releases the engine. Commands after Close return ErrClosed.
	Close() error
}

// LocationProvider is a source of location fixes.
type LocationProvider interface {
	// Start begins producing fixes.
	Start(ctx context.Context) error

	// Stop stops producing fixes. It is safe to call more than once.
	Stop()

	// LastLocation returns the most recent fix, if any.
	LastLocation() (UserLocation, bool)

	// Subscribe registers fn to be called for every accepted fix.
	Subscribe(fn func(UserLocation)) (unsubscribe func())
}

// FixReceiver is implemented by providers fed with fixes from outside the
// process, such as a device reporting over the network.
type FixReceiver interface {
	Push(fix UserLocation) error
}

// RouteSimulator is implemented by providers that produce fixes by following
// a route.
type RouteSimulator interface {
	SetSimulatedRoute(route Route)
}

// Options is everything an engine is constructed from.
type Options struct {
	EndpointURL      string
	Profile          string
	ExtraOptions     map[string]any
	LocationProvider LocationProvider
	Config           NavigationControllerConfig
	HTTPClient       *http.Client
}

// Factory constructs an engine bound to opts.
type Factory func(opts Options) (Engine, error)
