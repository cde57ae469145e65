package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/location"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/session"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/translate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetRoutesRequest holds the data needed to query routes.
type GetRoutesRequest struct {
	InitialLocation navigation.UserLocation `json:"initialLocation" binding:"required"`
	Waypoints       []navigation.Waypoint   `json:"waypoints" binding:"required,min=1"`
}

// StartNavigationRequest starts or replaces the active route. A nil config
// uses the one from the current core options.
type StartNavigationRequest struct {
	Route  navigation.Route                       `json:"route" binding:"required"`
	Config *navigation.NavigationControllerConfig `json:"config"`
}

// StopNavigationRequest stops navigation. A nil flag leaves the choice to
// the engine.
type StopNavigationRequest struct {
	StopLocationUpdates *bool `json:"stopLocationUpdates"`
}

// CoreOptionsResult reports the outcome of applying core options.
type CoreOptionsResult struct {
	Rebuilt   bool      `json:"rebuilt"`
	SessionID uuid.UUID `json:"sessionId"`
}

// RouteCache stores translated route results.
type RouteCache interface {
	Get(ctx context.Context, key string) ([]navigation.Route, bool)
	Set(ctx context.Context, key string, routes []navigation.Route)
}

// CacheKeyFunc derives the cache key of a route query.
type CacheKeyFunc func(fingerprint string, loc navigation.UserLocation, waypoints []navigation.Waypoint) string

// NavigationService is the application service the host talks to: it
// proxies commands to the current engine session, runs route queries and
// applies option changes.
type NavigationService struct {
	sessions *session.Controller
	profiles navigation.ProfileRepository
	queries  navigation.RouteQueryRepository
	cache    RouteCache
	cacheKey CacheKeyFunc
	logger   *zap.Logger
}

// NewNavigationService creates a new NavigationService. profiles, queries
// and cache may be nil.
func NewNavigationService(
	sessions *session.Controller,
	profiles navigation.ProfileRepository,
	queries navigation.RouteQueryRepository,
	cache RouteCache,
	cacheKey CacheKeyFunc,
	logger *zap.Logger,
) *NavigationService {
	return &NavigationService{
		sessions: sessions,
		profiles: profiles,
		queries:  queries,
		cache:    cache,
		cacheKey: cacheKey,
		logger:   logger,
	}
}

// Restore builds the first session from the persisted profile, falling back
// to defaults when nothing was saved.
func (s *NavigationService) Restore(ctx context.Context, defaults navigation.CoreOptions) error {
	core := defaults
	if s.profiles != nil {
		profile, err := s.profiles.Load(ctx)
		switch {
		case err == nil:
			core = profile.CoreOptions
			if err := s.sessions.ApplyNavigationOptions(profile.NavigationOptions); err != nil {
				s.logger.Warn("ignoring stored navigation options", zap.Error(err))
			}
			s.logger.Info("restoring navigation profile", zap.Time("updated_at", profile.UpdatedAt))
		case errors.Is(err, navigation.ErrNotFound):
			s.logger.Info("no stored navigation profile, using defaults")
		default:
			s.logger.Warn("failed to load navigation profile, using defaults", zap.Error(err))
		}
	}

	if _, _, err := s.sessions.ApplyCoreOptions(ctx, core); err != nil {
		if core.Equal(defaults) {
			return err
		}
		s.logger.Warn("stored core options rejected, falling back to defaults", zap.Error(err))
		if _, _, err := s.sessions.ApplyCoreOptions(ctx, defaults); err != nil {
			return err
		}
	}
	return nil
}

// ApplyCoreOptions applies new core options, rebuilding the session if they
// differ from the current ones.
func (s *NavigationService) ApplyCoreOptions(ctx context.Context, opts navigation.CoreOptions) (*CoreOptionsResult, error) {
	rebuilt, sess, err := s.sessions.ApplyCoreOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	if rebuilt && s.profiles != nil {
		if err := s.profiles.SaveCoreOptions(ctx, opts); err != nil {
			s.logger.Error("failed to persist core options", zap.Error(err))
		}
	}
	return &CoreOptionsResult{Rebuilt: rebuilt, SessionID: sess.ID}, nil
}

// ApplyNavigationOptions applies display options without rebuilding.
func (s *NavigationService) ApplyNavigationOptions(ctx context.Context, opts navigation.NavigationOptions) error {
	if err := s.sessions.ApplyNavigationOptions(opts); err != nil {
		return err
	}
	if s.profiles != nil {
		if err := s.profiles.SaveNavigationOptions(ctx, opts); err != nil {
			s.logger.Error("failed to persist navigation options", zap.Error(err))
		}
	}
	return nil
}

// CoreOptions returns the options of the current session.
func (s *NavigationService) CoreOptions() (navigation.CoreOptions, error) {
	return s.sessions.CoreOptions()
}

// NavigationOptions returns the display options in effect.
func (s *NavigationService) NavigationOptions() navigation.NavigationOptions {
	return s.sessions.NavigationOptions()
}

// StartNavigation starts navigating route on the current engine.
func (s *NavigationService) StartNavigation(ctx context.Context, route navigation.Route, config *navigation.NavigationControllerConfig) error {
	engRoute, err := translate.ToEngineRoute(route)
	if err != nil {
		return err
	}
	return s.dispatch("startNavigation", func(sess *session.Session) error {
		cfg, err := s.resolveConfig(sess, config)
		if err != nil {
			return err
		}
		if err := sess.Engine.StartNavigation(ctx, engRoute, cfg); err != nil {
			return navigation.NewEngineError("startNavigation", err)
		}
		return nil
	})
}

// StopNavigation stops navigation on the current engine.
func (s *NavigationService) StopNavigation(ctx context.Context, stopLocationUpdates *bool) error {
	return s.dispatch("stopNavigation", func(sess *session.Session) error {
		if err := sess.Engine.StopNavigation(ctx, stopLocationUpdates); err != nil {
			return navigation.NewEngineError("stopNavigation", err)
		}
		return nil
	})
}

// ReplaceRoute swaps the active route on the current engine.
func (s *NavigationService) ReplaceRoute(ctx context.Context, route navigation.Route, config *navigation.NavigationControllerConfig) error {
	engRoute, err := translate.ToEngineRoute(route)
	if err != nil {
		return err
	}
	return s.dispatch("replaceRoute", func(sess *session.Session) error {
		cfg, err := s.resolveConfig(sess, config)
		if err != nil {
			return err
		}
		if err := sess.Engine.ReplaceRoute(ctx, engRoute, cfg); err != nil {
			return navigation.NewEngineError("replaceRoute", err)
		}
		return nil
	})
}

// AdvanceToNextStep moves the current engine to the next step.
func (s *NavigationService) AdvanceToNextStep(ctx context.Context) error {
	return s.dispatch("advanceToNextStep", func(sess *session.Session) error {
		if err := sess.Engine.AdvanceToNextStep(ctx); err != nil {
			return navigation.NewEngineError("advanceToNextStep", err)
		}
		return nil
	})
}

// PushLocation hands a fix to the current session's location provider. When
// sessionID is set and no longer current the fix is rejected as stale.
func (s *NavigationService) PushLocation(_ context.Context, sessionID *uuid.UUID, loc navigation.UserLocation) error {
	return s.dispatch("pushLocation", func(sess *session.Session) error {
		if sessionID != nil && *sessionID != sess.ID {
			return navigation.ErrStaleSession
		}
		receiver, ok := sess.Provider.(engine.FixReceiver)
		if !ok {
			return navigation.NewValidationError(fmt.Sprintf("location mode %s does not accept fixes", sess.Options.LocationMode))
		}
		err := receiver.Push(translate.ToEngineLocation(loc))
		switch {
		case errors.Is(err, location.ErrInvalidFix):
			return navigation.WrapValidationError(err)
		case errors.Is(err, location.ErrNotRunning):
			return fmt.Errorf("%w: %w", navigation.ErrLocationInactive, err)
		}
		return err
	})
}

// State returns the latest navigation snapshot of the current session.
func (s *NavigationService) State(_ context.Context) (navigation.NavigationState, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return navigation.NavigationState{}, err
	}
	return sess.Presentation.State(), nil
}

func (s *NavigationService) resolveConfig(sess *session.Session, config *navigation.NavigationControllerConfig) (engine.NavigationControllerConfig, error) {
	if config == nil {
		return sess.Config, nil
	}
	return translate.ToEngineConfig(*config)
}

// dispatch runs fn against the current session, holding it so a rebuild
// cannot tear it down mid-command.
func (s *NavigationService) dispatch(op string, fn func(*session.Session) error) error {
	sess, release, err := s.sessions.Acquire()
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(op, "uninitialized").Inc()
		return err
	}
	defer release()

	if err := fn(sess); err != nil {
		metrics.CommandsTotal.WithLabelValues(op, "error").Inc()
		s.logger.Warn("navigation command failed",
			zap.String("op", op),
			zap.String("session_id", sess.ID.String()),
			zap.Error(err),
		)
		return err
	}

	metrics.CommandsTotal.WithLabelValues(op, "ok").Inc()
	s.logger.Debug("navigation command dispatched",
		zap.String("op", op),
		zap.String("session_id", sess.ID.String()),
	)
	return nil
}
