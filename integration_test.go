//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	navEvents "github.com/Kilat-Pet-Delivery/service-navigation/internal/events"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoute() navigation.Route {
	line := []navigation.GeographicCoordinate{{Lat: 3.139, Lng: 101.6869}, {Lat: 3.15, Lng: 101.71}}
	return navigation.Route{
		Distance: 2800,
		Geometry: line,
		Steps:    []navigation.RouteStep{{Distance: 2800, Geometry: line}},
	}
}

// TestLocationFixReported_ReachesDeviceProvider verifies that a fix published
// to location.fixes is pushed into the current session's device provider.
func TestLocationFixReported_ReachesDeviceProvider(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupNavigationStack(t, infra)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, stack.Service.Restore(ctx, navigation.DefaultCoreOptions()))
	sess, err := stack.Controller.Current()
	require.NoError(t, err)

	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, navEvents.TopicLocationFixes,
		"device-gateway", navEvents.LocationFixReported, navEvents.LocationFixReportedEvent{
			SessionID: &sess.ID,
			DeviceID:  "device-1",
			Location: navigation.UserLocation{
				Coordinates:        navigation.GeographicCoordinate{Lat: 3.1412, Lng: 101.6901},
				HorizontalAccuracy: 4,
				Timestamp:          time.Now().UTC(),
			},
		})

	require.Eventually(t, func() bool {
		fix, ok := sess.Provider.LastLocation()
		return ok && fix.Coordinates.Lat == 3.1412
	}, 15*time.Second, 200*time.Millisecond, "fix did not reach the provider")
}

// TestStartNavigation_PublishesStateUpdated verifies that engine state
// changes are published to navigation.events.
func TestStartNavigation_PublishesStateUpdated(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupNavigationStack(t, infra)
	defer stack.CleanupProducer()

	ctx := context.Background()
	require.NoError(t, stack.Service.Restore(ctx, navigation.DefaultCoreOptions()))
	require.NoError(t, stack.Service.StartNavigation(ctx, testRoute(), nil))

	ce := consumeEvent(t, infra.KafkaBrokers, navEvents.TopicNavigationEvents, 15*time.Second, func(ce kafka.CloudEvent) bool {
		if ce.Type != navEvents.NavigationStateUpdated {
			return false
		}
		var state navigation.NavigationState
		return ce.ParseData(&state) == nil && state.Status == navigation.NavigationStatusNavigating
	})
	assert.Equal(t, navEvents.Source, ce.Source)

	rebuilt := consumeEvent(t, infra.KafkaBrokers, navEvents.TopicNavigationEvents, 15*time.Second, func(ce kafka.CloudEvent) bool {
		return ce.Type == navEvents.NavigationSessionRebuilt
	})
	var evt navigation.SessionRebuilt
	require.NoError(t, rebuilt.ParseData(&evt))
	assert.Equal(t, navigation.DefaultCoreOptions().Fingerprint(), evt.Fingerprint)
}

// TestProfile_RestoredAfterRestart verifies that applied options survive a
// new controller built over the same database.
func TestProfile_RestoredAfterRestart(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()
	ctx := context.Background()

	first := setupNavigationStack(t, infra)
	require.NoError(t, first.Service.Restore(ctx, navigation.DefaultCoreOptions()))

	changed := navigation.DefaultCoreOptions()
	changed.Profile = "bicycle"
	changed.ExtraOptions = map[string]any{"units": "miles"}
	_, err := first.Service.ApplyCoreOptions(ctx, changed)
	require.NoError(t, err)
	display := navigation.NavigationOptions{StyleURL: "https://tiles.example.com/night.json"}
	require.NoError(t, first.Service.ApplyNavigationOptions(ctx, display))
	first.CleanupProducer()

	second := setupNavigationStack(t, infra)
	defer second.CleanupProducer()
	require.NoError(t, second.Service.Restore(ctx, navigation.DefaultCoreOptions()))

	restored, err := second.Service.CoreOptions()
	require.NoError(t, err)
	assert.True(t, restored.Equal(changed))
	assert.Equal(t, display, second.Service.NavigationOptions())
	assert.Equal(t, "bicycle", second.Engines.Last().Opts.Profile)
}

// TestGetRoutes_LoggedAndCached verifies the route query log in Postgres and
// the Redis route cache.
func TestGetRoutes_LoggedAndCached(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupNavigationStack(t, infra)
	defer stack.CleanupProducer()
	ctx := context.Background()

	require.NoError(t, stack.Service.Restore(ctx, navigation.DefaultCoreOptions()))
	eng := stack.Engines.Last()
	eng.Routes = []engine.Route{{
		Geometry: []engine.GeographicCoordinate{{Lat: 3.139, Lng: 101.6869}, {Lat: 3.15, Lng: 101.71}},
		Distance: 2800,
	}}

	loc := navigation.UserLocation{Coordinates: navigation.GeographicCoordinate{Lat: 3.139, Lng: 101.6869}, HorizontalAccuracy: 5}
	waypoints := []navigation.Waypoint{{Coordinate: navigation.GeographicCoordinate{Lat: 3.15, Lng: 101.71}, Kind: navigation.WaypointKindBreak}}

	for i := 0; i < 2; i++ {
		routes, err := stack.Service.GetRoutes(ctx, loc, waypoints)
		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, 2800.0, routes[0].Distance)
	}
	assert.Len(t, eng.Calls(), 1, "second query served from Redis")

	queries, total, err := stack.Service.ListRouteQueries(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, queries, 2)
	assert.True(t, queries[0].Cached)
	assert.False(t, queries[1].Cached)

	stats, err := stack.Service.RouteQueryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats[string(navigation.RouteQueryOK)])
}
