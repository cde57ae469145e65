// Package presentation turns engine navigation state into the snapshots the
// host renders, applying the host's display options.
package presentation

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/translate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Fixes coarser than this are drawn with an accuracy circle.
	accuracyRadiusThreshold = 15.0
	maxAccuracyRadius       = 150.0
)

// Publisher receives every snapshot the view model produces.
type Publisher interface {
	PublishState(ctx context.Context, state navigation.NavigationState) error
}

// ViewModel follows one engine and republishes its state for the host.
type ViewModel struct {
	sessionID uuid.UUID
	engine    engine.Engine
	publisher Publisher
	logger    *zap.Logger
	clock     func() time.Time

	mu          sync.RWMutex
	opts        navigation.NavigationOptions
	latest      navigation.NavigationState
	unsubscribe func()
	detached    bool
}

// New attaches a view model to eng and publishes the initial snapshot.
// publisher may be nil. It fails if the engine's current state cannot be
// presented.
func New(sessionID uuid.UUID, eng engine.Engine, opts navigation.NavigationOptions, publisher Publisher, logger *zap.Logger) (*ViewModel, error) {
	v := &ViewModel{
		sessionID: sessionID,
		engine:    eng,
		publisher: publisher,
		logger:    logger,
		clock:     time.Now,
		opts:      opts,
	}
	if _, err := Build(sessionID, eng.State(), opts, v.clock()); err != nil {
		return nil, err
	}
	v.unsubscribe = eng.Subscribe(v.onState)
	v.render(eng.State())
	return v, nil
}

// Refresh applies new display options and republishes the current state.
func (v *ViewModel) Refresh(opts navigation.NavigationOptions) {
	v.mu.Lock()
	if v.detached {
		v.mu.Unlock()
		return
	}
	v.opts = opts
	v.mu.Unlock()

	v.render(v.engine.State())
}

// State returns the latest snapshot.
func (v *ViewModel) State() navigation.NavigationState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.latest
}

// Options returns the display options in effect.
func (v *ViewModel) Options() navigation.NavigationOptions {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.opts
}

// Detach stops following the engine. Later engine updates are ignored.
func (v *ViewModel) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.detached {
		return
	}
	v.detached = true
	v.unsubscribe()
}

func (v *ViewModel) onState(s engine.NavigationState) {
	v.render(s)
}

func (v *ViewModel) render(s engine.NavigationState) {
	v.mu.Lock()
	if v.detached {
		v.mu.Unlock()
		return
	}
	state, err := Build(v.sessionID, s, v.opts, v.clock())
	if err != nil {
		v.mu.Unlock()
		v.logger.Error("failed to translate navigation state",
			zap.String("session_id", v.sessionID.String()),
			zap.Error(err),
		)
		return
	}
	v.latest = state
	v.mu.Unlock()

	if v.publisher == nil {
		return
	}
	if err := v.publisher.PublishState(context.Background(), state); err != nil {
		v.logger.Error("failed to publish navigation state",
			zap.String("session_id", v.sessionID.String()),
			zap.Error(err),
		)
	}
}

// Build converts an engine state into a host snapshot.
func Build(sessionID uuid.UUID, s engine.NavigationState, opts navigation.NavigationOptions, now time.Time) (navigation.NavigationState, error) {
	status, err := translate.NavigationStatusToInterchange(s.Status)
	if err != nil {
		return navigation.NavigationState{}, err
	}

	out := navigation.NavigationState{
		SessionID:              sessionID,
		Status:                 status,
		StyleURL:               opts.StyleURL,
		DistanceToNextManeuver: cloneFloat(s.DistanceToNextManeuver),
		RouteDeviation:         cloneFloat(s.RouteDeviation),
		UpdatedAt:              now,
	}

	if s.Location != nil {
		loc := translate.ToInterchangeLocation(*s.Location)
		out.Location = &loc
		if acc := s.Location.HorizontalAccuracy; acc > accuracyRadiusThreshold {
			r := math.Min(acc, maxAccuracyRadius)
			out.AccuracyRadius = &r
		}
	}
	if s.SnappedLocation != nil && opts.SnapUserLocationToRoute {
		snapped := translate.ToInterchangeLocation(*s.SnappedLocation)
		out.SnappedLocation = &snapped
	}

	if s.Status == engine.StatusNavigating && s.Route != nil {
		idx := s.CurrentStepIndex
		remaining := len(s.RemainingSteps())
		out.CurrentStepIndex = &idx
		out.RemainingSteps = &remaining
	}

	if s.VisualInstruction != nil {
		vi, err := translate.ToInterchangeVisualInstruction(*s.VisualInstruction)
		if err != nil {
			var te *navigation.TranslationError
			if errors.As(err, &te) {
				return navigation.NavigationState{}, te.Prefix("visualInstruction")
			}
			return navigation.NavigationState{}, err
		}
		out.VisualInstruction = &vi
	}
	if s.SpokenInstruction != nil {
		si := translate.ToInterchangeSpokenInstruction(*s.SpokenInstruction)
		out.SpokenInstruction = &si
	}
	return out, nil
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
