package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/geo"
	"go.uber.org/zap"
)

// Engine is an engine.Engine backed by a remote routing service.
type Engine struct {
	client   *client
	provider engine.LocationProvider
	logger   *zap.Logger

	mu      sync.RWMutex
	config  engine.NavigationControllerConfig
	state   engine.NavigationState
	seq     uint64
	closed  bool
	unwatch func()

	// emitMu orders delivery: a snapshot older than the last one delivered
	// is dropped.
	emitMu    sync.Mutex
	emitted   uint64
	listeners engine.Listeners[engine.NavigationState]
}

var _ engine.Engine = (*Engine)(nil)

// New creates an Engine bound to opts.
func New(opts engine.Options, logger *zap.Logger) (*Engine, error) {
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	return &Engine{
		client:   c,
		provider: opts.LocationProvider,
		config:   opts.Config,
		state:    engine.NavigationState{Status: engine.StatusIdle},
		logger:   logger,
	}, nil
}

// NewFactory returns an engine.Factory producing remote engines.
func NewFactory(logger *zap.Logger) engine.Factory {
	return func(opts engine.Options) (engine.Engine, error) {
		return New(opts, logger)
	}
}

// GetRoutes queries the routing backend.
func (e *Engine) GetRoutes(ctx context.Context, initial engine.UserLocation, waypoints []engine.Waypoint) ([]engine.Route, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, engine.ErrClosed
	}
	return e.client.routes(ctx, initial, waypoints)
}

// StartNavigation begins navigating route from its first step. The location
// provider is started first; if it fails the engine stays as it was.
func (e *Engine) StartNavigation(ctx context.Context, route engine.Route, config engine.NavigationControllerConfig) error {
	if len(route.Steps) == 0 {
		return errors.New("route has no steps")
	}

	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return engine.ErrClosed
	}

	if sim, ok := e.provider.(engine.RouteSimulator); ok {
		sim.SetSimulatedRoute(route)
	}
	if e.provider != nil {
		// The provider outlives this call; only session teardown stops it.
		if err := e.provider.Start(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("failed to start location provider: %w", err)
		}
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return engine.ErrClosed
	}
	e.config = config
	r := route
	e.state = engine.NavigationState{
		Status:           engine.StatusNavigating,
		Route:            &r,
		CurrentStepIndex: 0,
	}
	e.watchLocked()
	if e.provider != nil {
		if last, ok := e.provider.LastLocation(); ok {
			e.trackLocked(last)
		}
	}
	e.updateInstructionsLocked()
	snapshot, seq := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("navigation started",
		zap.Int("steps", len(route.Steps)),
		zap.Float64("distance", route.Distance),
	)
	e.emit(snapshot, seq)
	return nil
}

// StopNavigation returns the engine to idle. Location updates stop unless
// stopLocationUpdates is explicitly false.
func (e *Engine) StopNavigation(_ context.Context, stopLocationUpdates *bool) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return engine.ErrClosed
	}
	stopUpdates := stopLocationUpdates == nil || *stopLocationUpdates
	e.state = engine.NavigationState{Status: engine.StatusIdle, Location: e.state.Location}
	if stopUpdates {
		e.unwatchLocked()
	}
	snapshot, seq := e.snapshotLocked()
	e.mu.Unlock()

	if stopUpdates && e.provider != nil {
		e.provider.Stop()
	}

	e.logger.Info("navigation stopped", zap.Bool("stop_location_updates", stopUpdates))
	e.emit(snapshot, seq)
	return nil
}

// ReplaceRoute swaps the active route and restarts progress on it.
func (e *Engine) ReplaceRoute(_ context.Context, route engine.Route, config engine.NavigationControllerConfig) error {
	if len(route.Steps) == 0 {
		return errors.New("route has no steps")
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return engine.ErrClosed
	}
	if e.state.Status != engine.StatusNavigating {
		e.mu.Unlock()
		return engine.ErrNotNavigating
	}
	e.config = config
	r := route
	e.state.Route = &r
	e.state.CurrentStepIndex = 0
	if e.state.Location != nil {
		e.trackLocked(*e.state.Location)
	}
	e.updateInstructionsLocked()
	snapshot, seq := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("route replaced", zap.Int("steps", len(route.Steps)))
	e.emit(snapshot, seq)

	if sim, ok := e.provider.(engine.RouteSimulator); ok {
		sim.SetSimulatedRoute(route)
	}
	return nil
}

// AdvanceToNextStep moves to the next step; past the last step navigation
// completes.
func (e *Engine) AdvanceToNextStep(_ context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return engine.ErrClosed
	}
	if e.state.Status != engine.StatusNavigating {
		e.mu.Unlock()
		return engine.ErrNotNavigating
	}
	e.advanceLocked()
	snapshot, seq := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snapshot, seq)
	return nil
}

// State returns a snapshot of the navigation state.
func (e *Engine) State() engine.NavigationState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Subscribe registers fn for state changes.
func (e *Engine) Subscribe(fn func(engine.NavigationState)) func() {
	return e.listeners.Add(fn)
}

// Close detaches from the location provider. The provider itself belongs to
// the session and is not stopped here.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.unwatchLocked()
	return nil
}

func (e *Engine) watchLocked() {
	if e.provider == nil || e.unwatch != nil {
		return
	}
	e.unwatch = e.provider.Subscribe(e.onLocation)
}

func (e *Engine) unwatchLocked() {
	if e.unwatch != nil {
		e.unwatch()
		e.unwatch = nil
	}
}

func (e *Engine) onLocation(fix engine.UserLocation) {
	e.mu.Lock()
	if e.closed || e.state.Status != engine.StatusNavigating {
		e.mu.Unlock()
		return
	}
	e.trackLocked(fix)
	e.maybeAutoAdvanceLocked(fix)
	snapshot, seq := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snapshot, seq)
}

// snapshotLocked copies the state and stamps it with the next sequence number.
func (e *Engine) snapshotLocked() (engine.NavigationState, uint64) {
	e.seq++
	return e.state, e.seq
}

// emit delivers a snapshot unless a newer one has already been delivered.
func (e *Engine) emit(snapshot engine.NavigationState, seq uint64) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()
	if seq <= e.emitted {
		return
	}
	e.emitted = seq
	e.listeners.Emit(snapshot)
}

// trackLocked updates location, snapped location, route deviation and
// distance to the end of the current step.
func (e *Engine) trackLocked(fix engine.UserLocation) {
	loc := fix
	e.state.Location = &loc
	e.state.RouteDeviation = nil

	step := e.currentStepLocked()
	if step == nil {
		return
	}

	point, seg := geo.Nearest(step.Geometry, fix.Coordinates)
	snapped := fix
	snapped.Coordinates = point
	if e.config.SnappedLocationCourseFiltering == engine.CourseFilteringSnapToRoute && seg >= 0 && seg < len(step.Geometry)-1 {
		snapped.CourseOverGround = &engine.CourseOverGround{
			Degrees: geo.Bearing(step.Geometry[seg], step.Geometry[seg+1]),
		}
	}
	e.state.SnappedLocation = &snapped
	e.trackDeviationLocked(fix, point)

	remaining := geo.LengthFrom(step.Geometry, seg, point)
	e.state.DistanceToNextManeuver = &remaining
	e.updateInstructionsLocked()
}

// trackDeviationLocked judges the fix against the static threshold, if one is
// configured. snapped is the fix projected onto the current step.
func (e *Engine) trackDeviationLocked(fix engine.UserLocation, snapped engine.GeographicCoordinate) {
	mode, ok := e.config.RouteDeviationTracking.(engine.DeviationTrackingStaticThreshold)
	if !ok || fix.HorizontalAccuracy > float64(mode.MinimumHorizontalAccuracy) {
		return
	}
	if off := geo.Distance(fix.Coordinates, snapped); off > mode.MaxAcceptableDeviation {
		e.state.RouteDeviation = &off
		e.logger.Debug("user off route", zap.Float64("deviation", off))
	}
}

func (e *Engine) maybeAutoAdvanceLocked(fix engine.UserLocation) {
	if e.state.DistanceToNextManeuver == nil {
		return
	}
	dist := *e.state.DistanceToNextManeuver

	switch mode := e.config.StepAdvance.(type) {
	case engine.StepAdvanceDistanceToEndOfStep:
		if fix.HorizontalAccuracy <= float64(mode.MinimumHorizontalAccuracy) && dist <= float64(mode.Distance) {
			e.advanceLocked()
		}
	case engine.StepAdvanceRelativeLineStringDistance:
		if fix.HorizontalAccuracy > float64(mode.MinimumHorizontalAccuracy) {
			return
		}
		if mode.AutomaticAdvanceDistance != nil && dist <= float64(*mode.AutomaticAdvanceDistance) {
			e.advanceLocked()
			return
		}
		if e.closerToNextStepLocked(fix.Coordinates) {
			e.advanceLocked()
		}
	}
}

// closerToNextStepLocked reports whether p is nearer the next step's line
// than the current one's.
func (e *Engine) closerToNextStepLocked(p engine.GeographicCoordinate) bool {
	current := e.currentStepLocked()
	if current == nil || e.state.CurrentStepIndex+1 >= len(e.state.Route.Steps) {
		return false
	}
	next := &e.state.Route.Steps[e.state.CurrentStepIndex+1]
	if len(current.Geometry) == 0 || len(next.Geometry) == 0 {
		return false
	}
	onCurrent, _ := geo.Nearest(current.Geometry, p)
	onNext, _ := geo.Nearest(next.Geometry, p)
	return geo.Distance(p, onNext) < geo.Distance(p, onCurrent)
}

func (e *Engine) advanceLocked() {
	if e.state.Route == nil {
		return
	}
	e.state.CurrentStepIndex++
	if e.state.CurrentStepIndex >= len(e.state.Route.Steps) {
		e.state.Status = engine.StatusComplete
		e.state.DistanceToNextManeuver = nil
		e.state.RouteDeviation = nil
		e.state.VisualInstruction = nil
		e.state.SpokenInstruction = nil
		e.logger.Info("navigation complete")
		return
	}
	if e.state.Location != nil {
		e.trackLocked(*e.state.Location)
		return
	}
	e.state.DistanceToNextManeuver = nil
	e.updateInstructionsLocked()
}

func (e *Engine) currentStepLocked() *engine.RouteStep {
	if e.state.Route == nil || e.state.CurrentStepIndex >= len(e.state.Route.Steps) {
		return nil
	}
	return &e.state.Route.Steps[e.state.CurrentStepIndex]
}

// updateInstructionsLocked picks the instructions whose trigger distance has
// been reached. Without a known distance the first instruction of the step is
// shown.
func (e *Engine) updateInstructionsLocked() {
	step := e.currentStepLocked()
	if step == nil {
		e.state.VisualInstruction = nil
		e.state.SpokenInstruction = nil
		return
	}

	e.state.VisualInstruction = nil
	for i := range step.VisualInstructions {
		vi := step.VisualInstructions[i]
		if i == 0 || e.triggered(vi.TriggerDistanceBeforeManeuver) {
			e.state.VisualInstruction = &vi
		}
	}

	e.state.SpokenInstruction = nil
	for i := range step.SpokenInstructions {
		si := step.SpokenInstructions[i]
		if i == 0 || e.triggered(si.TriggerDistanceBeforeManeuver) {
			e.state.SpokenInstruction = &si
		}
	}
}

func (e *Engine) triggered(trigger float64) bool {
	return e.state.DistanceToNextManeuver != nil && *e.state.DistanceToNextManeuver <= trigger
}
