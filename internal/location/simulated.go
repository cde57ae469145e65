package location

import (
	"context"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/geo"
	"go.uber.org/zap"
)

// SimulatedConfig controls how fast the simulator moves along a route.
type SimulatedConfig struct {
	Interval           time.Duration
	Speed              float64 // meters per second
	HorizontalAccuracy float64
}

// DefaultSimulatedConfig returns a one-fix-per-second walk at city driving speed.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		Interval:           time.Second,
		Speed:              13.9,
		HorizontalAccuracy: 5,
	}
}

// Simulated produces fixes by moving along the geometry of a route.
type Simulated struct {
	cfg   SimulatedConfig
	clock func() time.Time

	mu       sync.Mutex
	path     []engine.GeographicCoordinate
	seg      int
	offset   float64
	finished bool
	running  bool
	last     *engine.UserLocation
	cancel   context.CancelFunc
	done     chan struct{}

	listeners engine.Listeners[engine.UserLocation]
	logger    *zap.Logger
}

// NewSimulated creates a stopped simulator with no route.
func NewSimulated(cfg SimulatedConfig, logger *zap.Logger) *Simulated {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Simulated{cfg: cfg, clock: time.Now, logger: logger}
}

// SetSimulatedRoute restarts the simulation at the beginning of route.
func (s *Simulated) SetSimulatedRoute(route engine.Route) {
	s.mu.Lock()
	s.path = append([]engine.GeographicCoordinate(nil), route.Geometry...)
	s.seg = 0
	s.offset = 0
	s.finished = len(s.path) == 0
	if s.finished {
		s.mu.Unlock()
		return
	}
	fix := s.fixAt()
	s.last = &fix
	s.mu.Unlock()

	s.logger.Info("simulation route set", zap.Int("points", len(route.Geometry)))
	s.listeners.Emit(fix)
}

// Start launches the simulation ticker. Calling Start on a running
// simulator is a no-op.
func (s *Simulated) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(runCtx, s.done)
	return nil
}

func (s *Simulated) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Stop halts the ticker and waits for it to exit.
func (s *Simulated) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Step advances the simulation by one interval and emits the new fix. It
// reports false once the end of the route has already been emitted.
func (s *Simulated) Step() (engine.UserLocation, bool) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return engine.UserLocation{}, false
	}

	remaining := s.cfg.Speed * s.cfg.Interval.Seconds()
	for s.seg < len(s.path)-1 {
		segLen := geo.Distance(s.path[s.seg], s.path[s.seg+1])
		if s.offset+remaining < segLen {
			s.offset += remaining
			break
		}
		remaining -= segLen - s.offset
		s.seg++
		s.offset = 0
	}
	if s.seg >= len(s.path)-1 {
		s.finished = true
	}

	fix := s.fixAt()
	s.last = &fix
	s.mu.Unlock()

	s.listeners.Emit(fix)
	return fix, true
}

// fixAt builds the fix for the current position. Callers hold s.mu.
func (s *Simulated) fixAt() engine.UserLocation {
	fix := engine.UserLocation{
		HorizontalAccuracy: s.cfg.HorizontalAccuracy,
		Timestamp:          s.clock(),
		Speed:              &engine.Speed{Value: s.cfg.Speed},
	}

	n := len(s.path)
	switch {
	case n == 1:
		fix.Coordinates = s.path[0]
	case s.seg >= n-1:
		fix.Coordinates = s.path[n-1]
		fix.CourseOverGround = &engine.CourseOverGround{Degrees: geo.Bearing(s.path[n-2], s.path[n-1])}
	default:
		a, b := s.path[s.seg], s.path[s.seg+1]
		f := 0.0
		if segLen := geo.Distance(a, b); segLen > 0 {
			f = s.offset / segLen
		}
		fix.Coordinates = geo.Interpolate(a, b, f)
		fix.CourseOverGround = &engine.CourseOverGround{Degrees: geo.Bearing(a, b)}
	}
	if s.finished {
		fix.Speed = &engine.Speed{Value: 0}
	}
	return fix
}

// Push moves the simulated user to fix without changing the route.
func (s *Simulated) Push(fix engine.UserLocation) error {
	if err := checkFix(fix); err != nil {
		return err
	}
	s.mu.Lock()
	s.last = &fix
	s.mu.Unlock()

	s.listeners.Emit(fix)
	return nil
}

// LastLocation returns the most recently emitted fix.
func (s *Simulated) LastLocation() (engine.UserLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return engine.UserLocation{}, false
	}
	return *s.last, true
}

// Subscribe registers fn for every emitted fix.
func (s *Simulated) Subscribe(fn func(engine.UserLocation)) func() {
	return s.listeners.Add(fn)
}
