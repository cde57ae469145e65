// Package session owns the lifecycle of the navigation engine session: the
// engine, its location provider and its presentation object are always built,
// swapped and torn down together.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/presentation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/translate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProviderFactory builds a location provider for a location mode.
type ProviderFactory interface {
	NewProvider(mode navigation.LocationMode) (engine.LocationProvider, error)
}

// RebuildNotifier is told about every successful rebuild.
type RebuildNotifier interface {
	PublishSessionRebuilt(ctx context.Context, event navigation.SessionRebuilt) error
}

// Session is one engine together with the provider and presentation object
// built for it.
type Session struct {
	ID           uuid.UUID
	Options      navigation.CoreOptions
	Config       engine.NavigationControllerConfig
	Engine       engine.Engine
	Provider     engine.LocationProvider
	Presentation *presentation.ViewModel
	CreatedAt    time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Context returns a context cancelled when the session is torn down.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Controller holds the current session and rebuilds it when core options
// change. It is either uninitialized (no session) or ready.
type Controller struct {
	providers ProviderFactory
	engines   engine.Factory
	publisher presentation.Publisher
	notifier  RebuildNotifier
	logger    *zap.Logger

	// applyMu serializes option changes; mu guards the current session.
	applyMu sync.Mutex
	mu      sync.RWMutex
	current *Session
	navOpts navigation.NavigationOptions
}

// NewController creates an uninitialized Controller. publisher and notifier
// may be nil.
func NewController(
	providers ProviderFactory,
	engines engine.Factory,
	publisher presentation.Publisher,
	notifier RebuildNotifier,
	navOpts navigation.NavigationOptions,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		providers: providers,
		engines:   engines,
		publisher: publisher,
		notifier:  notifier,
		navOpts:   navOpts,
		logger:    logger,
	}
}

// ApplyCoreOptions rebuilds the session for opts unless the current session
// was already built from equal options. It reports whether a rebuild
// happened. On failure the previous state is kept.
func (c *Controller) ApplyCoreOptions(ctx context.Context, opts navigation.CoreOptions) (bool, *Session, error) {
	if err := opts.Validate(); err != nil {
		return false, nil, err
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.RLock()
	prev := c.current
	navOpts := c.navOpts
	c.mu.RUnlock()

	if prev != nil && prev.Options.Equal(opts) {
		c.logger.Debug("core options unchanged, keeping session", zap.String("session_id", prev.ID.String()))
		return false, prev, nil
	}

	next, err := c.build(opts, navOpts)
	if err != nil {
		var le *navigation.LifecycleError
		if errors.As(err, &le) {
			metrics.SessionRebuildFailuresTotal.WithLabelValues(string(le.Phase)).Inc()
		}
		c.logger.Error("failed to build navigation session",
			zap.String("location_mode", string(opts.LocationMode)),
			zap.String("profile", opts.Profile),
			zap.Error(err),
		)
		return false, prev, err
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()

	if prev != nil {
		c.teardown(prev)
	}

	metrics.SessionRebuildsTotal.Inc()
	c.logger.Info("navigation session rebuilt",
		zap.String("session_id", next.ID.String()),
		zap.String("location_mode", string(opts.LocationMode)),
		zap.String("profile", opts.Profile),
		zap.String("endpoint", opts.EndpointURL),
	)
	c.notifyRebuilt(ctx, prev, next)
	return true, next, nil
}

func (c *Controller) build(opts navigation.CoreOptions, navOpts navigation.NavigationOptions) (*Session, error) {
	cfg, err := translate.ToEngineConfig(opts.NavigationControllerConfig)
	if err != nil {
		return nil, err
	}

	provider, err := c.providers.NewProvider(opts.LocationMode)
	if err != nil {
		return nil, navigation.NewLifecycleError(navigation.PhaseLocationProvider, opts.LocationMode, err)
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	if err := provider.Start(sessCtx); err != nil {
		cancel()
		return nil, navigation.NewLifecycleError(navigation.PhaseLocationProvider, opts.LocationMode, err)
	}

	eng, err := c.engines(engine.Options{
		EndpointURL:      opts.EndpointURL,
		Profile:          opts.Profile,
		ExtraOptions:     opts.ExtraOptions,
		LocationProvider: provider,
		Config:           cfg,
	})
	if err != nil {
		provider.Stop()
		cancel()
		return nil, navigation.NewLifecycleError(navigation.PhaseEngine, opts.LocationMode, err)
	}

	id := uuid.New()
	vm, err := presentation.New(id, eng, navOpts, c.publisher, c.logger.Named("presentation"))
	if err != nil {
		if closeErr := eng.Close(); closeErr != nil {
			c.logger.Warn("failed to close engine",
				zap.String("session_id", id.String()),
				zap.Error(closeErr),
			)
		}
		provider.Stop()
		cancel()
		return nil, navigation.NewLifecycleError(navigation.PhasePresentation, opts.LocationMode, err)
	}

	return &Session{
		ID:           id,
		Options:      opts,
		Config:       cfg,
		Engine:       eng,
		Provider:     provider,
		Presentation: vm,
		CreatedAt:    time.Now().UTC(),
		ctx:          sessCtx,
		cancel:       cancel,
	}, nil
}

// teardown runs after the session was swapped out. Commands that acquired it
// before the swap have already released it.
func (c *Controller) teardown(s *Session) {
	s.cancel()
	s.Presentation.Detach()
	s.Provider.Stop()
	if err := s.Engine.Close(); err != nil {
		c.logger.Warn("failed to close engine",
			zap.String("session_id", s.ID.String()),
			zap.Error(err),
		)
	}
	c.logger.Info("navigation session torn down", zap.String("session_id", s.ID.String()))
}

func (c *Controller) notifyRebuilt(ctx context.Context, prev, next *Session) {
	if c.notifier == nil {
		return
	}
	event := navigation.SessionRebuilt{
		SessionID:    next.ID,
		LocationMode: next.Options.LocationMode,
		Profile:      next.Options.Profile,
		Fingerprint:  next.Options.Fingerprint(),
		RebuiltAt:    next.CreatedAt,
	}
	if prev != nil {
		id := prev.ID
		event.PreviousSessionID = &id
	}
	if err := c.notifier.PublishSessionRebuilt(context.WithoutCancel(ctx), event); err != nil {
		c.logger.Error("failed to publish session rebuilt event",
			zap.String("session_id", next.ID.String()),
			zap.Error(err),
		)
	}
}

// ApplyNavigationOptions stores display options and refreshes the current
// presentation object. It never rebuilds the session.
func (c *Controller) ApplyNavigationOptions(opts navigation.NavigationOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.Lock()
	c.navOpts = opts
	current := c.current
	c.mu.Unlock()

	if current != nil {
		current.Presentation.Refresh(opts)
		metrics.PresentationRefreshesTotal.Inc()
		c.logger.Info("presentation refreshed",
			zap.String("session_id", current.ID.String()),
			zap.String("style_url", opts.StyleURL),
		)
	}
	return nil
}

// Acquire returns the current session and holds it until release is called.
// Rebuilds wait for every acquired session to be released.
func (c *Controller) Acquire() (*Session, func(), error) {
	c.mu.RLock()
	if c.current == nil {
		c.mu.RUnlock()
		return nil, nil, navigation.ErrUninitialized
	}
	var once sync.Once
	return c.current, func() { once.Do(c.mu.RUnlock) }, nil
}

// Current returns the current session without holding it.
func (c *Controller) Current() (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, navigation.ErrUninitialized
	}
	return c.current, nil
}

// IsCurrent reports whether s is still the current session.
func (c *Controller) IsCurrent(s *Session) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current == s
}

// Ready reports whether a session exists.
func (c *Controller) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

// CoreOptions returns the options of the current session.
func (c *Controller) CoreOptions() (navigation.CoreOptions, error) {
	s, err := c.Current()
	if err != nil {
		return navigation.CoreOptions{}, err
	}
	return s.Options, nil
}

// NavigationOptions returns the stored display options.
func (c *Controller) NavigationOptions() navigation.NavigationOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.navOpts
}

// Close tears down the current session. The controller is uninitialized
// afterwards and may be rebuilt.
func (c *Controller) Close() {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()

	if prev != nil {
		c.teardown(prev)
	}
}
