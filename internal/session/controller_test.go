package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine/enginetest"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []navigation.SessionRebuilt
}

func (n *recordingNotifier) PublishSessionRebuilt(_ context.Context, e navigation.SessionRebuilt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

type fixture struct {
	ctrl     *Controller
	engines  *enginetest.Factory
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	engines := &enginetest.Factory{}
	notifier := &recordingNotifier{}
	providers := location.NewFactory(location.Availability{
		DeviceEnabled:    true,
		FusedEnabled:     true,
		SimulatedEnabled: false,
	}, zap.NewNop())

	ctrl := NewController(providers, engines.New, nil, notifier, navigation.DefaultNavigationOptions(), zap.NewNop())
	t.Cleanup(ctrl.Close)
	return &fixture{ctrl: ctrl, engines: engines, notifier: notifier}
}

func TestController_UninitializedRejectsAcquire(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.ctrl.Acquire()
	assert.ErrorIs(t, err, navigation.ErrUninitialized)
	_, err = f.ctrl.Current()
	assert.ErrorIs(t, err, navigation.ErrUninitialized)
	assert.False(t, f.ctrl.Ready())
}

func TestController_ExactlyOneRebuildPerChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	opts := navigation.DefaultCoreOptions()

	rebuilt, first, err := f.ctrl.ApplyCoreOptions(ctx, opts)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 1, f.engines.Count())

	same := navigation.DefaultCoreOptions()
	same.ExtraOptions = nil
	rebuilt, s, err := f.ctrl.ApplyCoreOptions(ctx, same)
	require.NoError(t, err)
	assert.False(t, rebuilt)
	assert.Same(t, first, s)
	assert.Equal(t, 1, f.engines.Count())

	changed := navigation.DefaultCoreOptions()
	changed.Profile = "bicycle"
	rebuilt, second, err := f.ctrl.ApplyCoreOptions(ctx, changed)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 2, f.engines.Count())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "bicycle", f.engines.Last().Opts.Profile)
}

func TestController_RebuildTearsDownPreviousSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, first, err := f.ctrl.ApplyCoreOptions(ctx, navigation.DefaultCoreOptions())
	require.NoError(t, err)
	firstEngine := f.engines.Last()
	device := first.Provider.(*location.Device)

	changed := navigation.DefaultCoreOptions()
	changed.ExtraOptions = map[string]any{"units": "miles"}
	_, _, err = f.ctrl.ApplyCoreOptions(ctx, changed)
	require.NoError(t, err)

	assert.True(t, firstEngine.Closed())
	assert.Equal(t, 0, firstEngine.Subscribers(), "presentation detached")
	assert.ErrorIs(t, device.Push(engine.UserLocation{Timestamp: time.Now()}), location.ErrNotRunning)
	select {
	case <-first.Done():
	default:
		t.Fatal("previous session context not cancelled")
	}
}

func TestController_NavigationOptionsNeverRebuild(t *testing.T) {
	f := newFixture(t)

	_, s, err := f.ctrl.ApplyCoreOptions(context.Background(), navigation.DefaultCoreOptions())
	require.NoError(t, err)

	opts := navigation.NavigationOptions{StyleURL: "https://tiles.example.com/night.json", SnapUserLocationToRoute: false}
	require.NoError(t, f.ctrl.ApplyNavigationOptions(opts))
	require.NoError(t, f.ctrl.ApplyNavigationOptions(opts))

	assert.Equal(t, 1, f.engines.Count())
	assert.Equal(t, "https://tiles.example.com/night.json", s.Presentation.State().StyleURL)
	assert.Equal(t, opts, f.ctrl.NavigationOptions())
}

func TestController_NavigationOptionsBeforeFirstSession(t *testing.T) {
	f := newFixture(t)
	opts := navigation.NavigationOptions{StyleURL: "https://tiles.example.com/night.json"}

	require.NoError(t, f.ctrl.ApplyNavigationOptions(opts))
	assert.Equal(t, 0, f.engines.Count())

	_, s, err := f.ctrl.ApplyCoreOptions(context.Background(), navigation.DefaultCoreOptions())
	require.NoError(t, err)
	assert.Equal(t, "https://tiles.example.com/night.json", s.Presentation.State().StyleURL)
}

func TestController_InvalidNavigationOptions(t *testing.T) {
	f := newFixture(t)
	var ve *navigation.ValidationError
	assert.ErrorAs(t, f.ctrl.ApplyNavigationOptions(navigation.NavigationOptions{}), &ve)
}

func TestController_EngineFailureKeepsPriorSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, first, err := f.ctrl.ApplyCoreOptions(ctx, navigation.DefaultCoreOptions())
	require.NoError(t, err)

	f.engines.Err = errors.New("backend unreachable")
	changed := navigation.DefaultCoreOptions()
	changed.Profile = "pedestrian"
	rebuilt, _, err := f.ctrl.ApplyCoreOptions(ctx, changed)

	assert.False(t, rebuilt)
	var le *navigation.LifecycleError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, navigation.PhaseEngine, le.Phase)

	current, err := f.ctrl.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
	assert.False(t, f.engines.Last().Closed())
}

func TestController_PresentationFailureReleasesEngine(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	engines := &enginetest.Factory{Configure: func(e *enginetest.Engine) {
		e.SetState(engine.NavigationState{Status: engine.NavigationStatus(99)})
		e.CloseErr = errors.New("socket already closed")
	}}
	providers := location.NewFactory(location.Availability{DeviceEnabled: true}, zap.NewNop())
	ctrl := NewController(providers, engines.New, nil, nil, navigation.DefaultNavigationOptions(), zap.New(core))
	t.Cleanup(ctrl.Close)

	_, _, err := ctrl.ApplyCoreOptions(context.Background(), navigation.DefaultCoreOptions())
	var le *navigation.LifecycleError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, navigation.PhasePresentation, le.Phase)
	assert.False(t, ctrl.Ready())
	assert.True(t, engines.Last().Closed())

	entries := logs.FilterMessage("failed to close engine").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "socket already closed", entries[0].ContextMap()["error"])
}

func TestController_UnavailableModeKeepsUninitialized(t *testing.T) {
	f := newFixture(t)
	opts := navigation.DefaultCoreOptions()
	opts.LocationMode = navigation.LocationModeSimulated

	_, _, err := f.ctrl.ApplyCoreOptions(context.Background(), opts)

	var le *navigation.LifecycleError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, navigation.PhaseLocationProvider, le.Phase)
	assert.Equal(t, navigation.LocationModeSimulated, le.Mode)
	assert.ErrorIs(t, err, location.ErrModeUnavailable)
	assert.False(t, f.ctrl.Ready())
	assert.Equal(t, 0, f.engines.Count())
}

func TestController_InvalidCoreOptions(t *testing.T) {
	f := newFixture(t)
	opts := navigation.DefaultCoreOptions()
	opts.EndpointURL = ""

	_, _, err := f.ctrl.ApplyCoreOptions(context.Background(), opts)
	var ve *navigation.ValidationError
	assert.ErrorAs(t, err, &ve)

	opts = navigation.DefaultCoreOptions()
	opts.NavigationControllerConfig.StepAdvance = navigation.StepAdvanceMode{Type: "teleport"}
	_, _, err = f.ctrl.ApplyCoreOptions(context.Background(), opts)
	var te *navigation.TranslationError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, 0, f.engines.Count())
}

func TestController_CommandsReachNewEngineAfterRebuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.ctrl.ApplyCoreOptions(ctx, navigation.DefaultCoreOptions())
	require.NoError(t, err)
	changed := navigation.DefaultCoreOptions()
	changed.LocationMode = navigation.LocationModeFused
	_, _, err = f.ctrl.ApplyCoreOptions(ctx, changed)
	require.NoError(t, err)

	s, release, err := f.ctrl.Acquire()
	require.NoError(t, err)
	require.NoError(t, s.Engine.AdvanceToNextStep(ctx))
	release()
	release()

	built := f.engines.Built()
	require.Len(t, built, 2)
	assert.Empty(t, built[0].Calls())
	assert.Len(t, built[1].Calls(), 1)
	assert.IsType(t, &location.Fused{}, s.Provider)
}

func TestController_RebuildWaitsForInFlightCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.ctrl.ApplyCoreOptions(ctx, navigation.DefaultCoreOptions())
	require.NoError(t, err)

	_, release, err := f.ctrl.Acquire()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		changed := navigation.DefaultCoreOptions()
		changed.Profile = "truck"
		_, _, _ = f.ctrl.ApplyCoreOptions(ctx, changed)
	}()

	select {
	case <-done:
		t.Fatal("rebuild swapped the session while a command held it")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("rebuild did not complete after release")
	}
	opts, err := f.ctrl.CoreOptions()
	require.NoError(t, err)
	assert.Equal(t, "truck", opts.Profile)
}

func TestController_NotifiesRebuilds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, first, err := f.ctrl.ApplyCoreOptions(ctx, navigation.DefaultCoreOptions())
	require.NoError(t, err)
	changed := navigation.DefaultCoreOptions()
	changed.Profile = "bicycle"
	_, second, err := f.ctrl.ApplyCoreOptions(ctx, changed)
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 2)
	assert.Nil(t, f.notifier.events[0].PreviousSessionID)
	assert.Equal(t, second.ID, f.notifier.events[1].SessionID)
	require.NotNil(t, f.notifier.events[1].PreviousSessionID)
	assert.Equal(t, first.ID, *f.notifier.events[1].PreviousSessionID)
	assert.Equal(t, changed.Fingerprint(), f.notifier.events[1].Fingerprint)
}

func TestController_Close(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.ctrl.ApplyCoreOptions(context.Background(), navigation.DefaultCoreOptions())
	require.NoError(t, err)

	f.ctrl.Close()

	assert.False(t, f.ctrl.Ready())
	assert.True(t, f.engines.Last().Closed())

	_, _, err = f.ctrl.ApplyCoreOptions(context.Background(), navigation.DefaultCoreOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, f.engines.Count())
}
