// Package location provides the location providers a navigation session can
// be built with: device fixes reported from outside the process, a fused
// provider that filters those fixes, and a simulator that follows a route.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/geo"
	"go.uber.org/zap"
)

var (
	// ErrNotRunning is returned when a fix is pushed to a stopped provider.
	ErrNotRunning = errors.New("location provider is not running")

	// ErrInvalidFix is returned for fixes with impossible coordinates or accuracy.
	ErrInvalidFix = errors.New("invalid location fix")
)

// Device relays fixes reported by the host device as-is.
type Device struct {
	mu        sync.RWMutex
	running   bool
	last      *engine.UserLocation
	listeners engine.Listeners[engine.UserLocation]
	logger    *zap.Logger
}

// NewDevice creates a stopped Device provider.
func NewDevice(logger *zap.Logger) *Device {
	return &Device{logger: logger}
}

// Start begins accepting fixes.
func (d *Device) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = true
	return nil
}

// Stop stops accepting fixes.
func (d *Device) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
}

// Push records a fix and notifies subscribers.
func (d *Device) Push(fix engine.UserLocation) error {
	if err := checkFix(fix); err != nil {
		return err
	}

	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return ErrNotRunning
	}
	d.last = &fix
	d.mu.Unlock()

	d.listeners.Emit(fix)
	return nil
}

// LastLocation returns the most recent fix.
func (d *Device) LastLocation() (engine.UserLocation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return engine.UserLocation{}, false
	}
	return *d.last, true
}

// Subscribe registers fn for every accepted fix.
func (d *Device) Subscribe(fn func(engine.UserLocation)) func() {
	return d.listeners.Add(fn)
}

func checkFix(fix engine.UserLocation) error {
	if !geo.ValidCoordinate(fix.Coordinates) {
		return fmt.Errorf("%w: coordinates %v,%v out of range", ErrInvalidFix, fix.Coordinates.Lat, fix.Coordinates.Lng)
	}
	if fix.HorizontalAccuracy < 0 {
		return fmt.Errorf("%w: negative horizontal accuracy", ErrInvalidFix)
	}
	return nil
}
