package location

import (
	"context"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"go.uber.org/zap"
)

// FusedConfig tunes how the fused provider filters incoming fixes.
type FusedConfig struct {
	// MaxHorizontalAccuracy drops fixes whose accuracy radius exceeds it.
	MaxHorizontalAccuracy float64
	// StaleAfter lets a less accurate fix replace the current one once the
	// current one is older than this.
	StaleAfter time.Duration
}

// Fused combines fixes from several reporters, keeping the most accurate
// recent one.
type Fused struct {
	cfg       FusedConfig
	mu        sync.RWMutex
	running   bool
	last      *engine.UserLocation
	listeners engine.Listeners[engine.UserLocation]
	logger    *zap.Logger
}

// NewFused creates a stopped Fused provider.
func NewFused(cfg FusedConfig, logger *zap.Logger) *Fused {
	return &Fused{cfg: cfg, logger: logger}
}

// Start begins accepting fixes.
func (f *Fused) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	return nil
}

// Stop stops accepting fixes.
func (f *Fused) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
}

// Push offers a fix. Fixes that are less accurate than the current one are
// dropped until the current one goes stale; out of order fixes are always
// dropped. A dropped fix is not an error.
func (f *Fused) Push(fix engine.UserLocation) error {
	if err := checkFix(fix); err != nil {
		return err
	}

	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return ErrNotRunning
	}
	if !f.accept(fix) {
		f.mu.Unlock()
		f.logger.Debug("fused provider dropped fix",
			zap.Float64("horizontal_accuracy", fix.HorizontalAccuracy),
			zap.Time("timestamp", fix.Timestamp),
		)
		return nil
	}
	f.last = &fix
	f.mu.Unlock()

	f.listeners.Emit(fix)
	return nil
}

func (f *Fused) accept(fix engine.UserLocation) bool {
	if f.cfg.MaxHorizontalAccuracy > 0 && fix.HorizontalAccuracy > f.cfg.MaxHorizontalAccuracy {
		return false
	}
	if f.last == nil {
		return true
	}
	if fix.Timestamp.Before(f.last.Timestamp) {
		return false
	}
	if fix.HorizontalAccuracy <= f.last.HorizontalAccuracy {
		return true
	}
	return fix.Timestamp.Sub(f.last.Timestamp) >= f.cfg.StaleAfter
}

// LastLocation returns the fix currently considered best.
func (f *Fused) LastLocation() (engine.UserLocation, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.last == nil {
		return engine.UserLocation{}, false
	}
	return *f.last, true
}

// Subscribe registers fn for every accepted fix.
func (f *Fused) Subscribe(fn func(engine.UserLocation)) func() {
	return f.listeners.Add(fn)
}
