// Package enginetest provides a recording in-memory engine for tests.
package enginetest

import (
	"context"
	"errors"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
)

// Call records one command received by the fake engine.
type Call struct {
	Op                  string
	Route               *engine.Route
	Config              *engine.NavigationControllerConfig
	StopLocationUpdates *bool
}

// Engine is a fake engine.Engine. Route queries return Routes/RoutesErr, or
// whatever GetRoutesFunc returns when it is set.
type Engine struct {
	Opts engine.Options

	GetRoutesFunc func(ctx context.Context, initial engine.UserLocation, waypoints []engine.Waypoint) ([]engine.Route, error)
	Routes        []engine.Route
	RoutesErr     error
	CommandErr    error
	CloseErr      error

	mu        sync.Mutex
	calls     []Call
	state     engine.NavigationState
	closed    bool
	listeners engine.Listeners[engine.NavigationState]
}

var _ engine.Engine = (*Engine)(nil)

// New returns an idle fake engine bound to opts.
func New(opts engine.Options) *Engine {
	return &Engine{Opts: opts, state: engine.NavigationState{Status: engine.StatusIdle}}
}

func (e *Engine) record(c Call) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, c)
	if e.closed {
		return engine.ErrClosed
	}
	return e.CommandErr
}

func (e *Engine) GetRoutes(ctx context.Context, initial engine.UserLocation, waypoints []engine.Waypoint) ([]engine.Route, error) {
	if err := e.record(Call{Op: "GetRoutes"}); errors.Is(err, engine.ErrClosed) {
		return nil, err
	}
	if e.GetRoutesFunc != nil {
		return e.GetRoutesFunc(ctx, initial, waypoints)
	}
	return e.Routes, e.RoutesErr
}

func (e *Engine) StartNavigation(_ context.Context, route engine.Route, config engine.NavigationControllerConfig) error {
	if err := e.record(Call{Op: "StartNavigation", Route: &route, Config: &config}); err != nil {
		return err
	}
	e.SetState(engine.NavigationState{Status: engine.StatusNavigating, Route: &route})
	return nil
}

func (e *Engine) StopNavigation(_ context.Context, stopLocationUpdates *bool) error {
	if err := e.record(Call{Op: "StopNavigation", StopLocationUpdates: stopLocationUpdates}); err != nil {
		return err
	}
	e.SetState(engine.NavigationState{Status: engine.StatusIdle})
	return nil
}

func (e *Engine) ReplaceRoute(_ context.Context, route engine.Route, config engine.NavigationControllerConfig) error {
	return e.record(Call{Op: "ReplaceRoute", Route: &route, Config: &config})
}

func (e *Engine) AdvanceToNextStep(_ context.Context) error {
	return e.record(Call{Op: "AdvanceToNextStep"})
}

func (e *Engine) State() engine.NavigationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Subscribe(fn func(engine.NavigationState)) func() {
	return e.listeners.Add(fn)
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return e.CloseErr
}

// SetState replaces the state and notifies subscribers.
func (e *Engine) SetState(s engine.NavigationState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.listeners.Emit(s)
}

// Calls returns the commands received so far.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Subscribers returns the number of state subscribers.
func (e *Engine) Subscribers() int {
	return e.listeners.Len()
}

// Factory builds fake engines and remembers them.
type Factory struct {
	// Err, when set, makes the next builds fail.
	Err error
	// Configure is applied to every engine before it is returned.
	Configure func(*Engine)

	mu    sync.Mutex
	built []*Engine
}

// New is an engine.Factory.
func (f *Factory) New(opts engine.Options) (engine.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	e := New(opts)
	if f.Configure != nil {
		f.Configure(e)
	}
	f.built = append(f.built, e)
	return e, nil
}

// Count returns how many engines were built.
func (f *Factory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.built)
}

// Last returns the most recently built engine, or nil.
func (f *Factory) Last() *Engine {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.built) == 0 {
		return nil
	}
	return f.built[len(f.built)-1]
}

// Built returns every engine built so far.
func (f *Factory) Built() []*Engine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Engine(nil), f.built...)
}
