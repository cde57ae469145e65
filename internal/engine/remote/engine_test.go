package remote

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/geo"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/location"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func twoStepRoute() engine.Route {
	return engine.Route{
		Geometry: []engine.GeographicCoordinate{{Lat: 0, Lng: 0}, {Lat: 0.001, Lng: 0}, {Lat: 0.001, Lng: 0.001}},
		Distance: 222,
		Waypoints: []engine.Waypoint{
			{Coordinate: engine.GeographicCoordinate{Lat: 0, Lng: 0}, Kind: engine.WaypointKindBreak},
			{Coordinate: engine.GeographicCoordinate{Lat: 0.001, Lng: 0.001}, Kind: engine.WaypointKindBreak},
		},
		Steps: []engine.RouteStep{
			{
				Geometry:    []engine.GeographicCoordinate{{Lat: 0, Lng: 0}, {Lat: 0.001, Lng: 0}},
				Distance:    111,
				Instruction: "Head north",
				VisualInstructions: []engine.VisualInstruction{
					{PrimaryContent: engine.VisualInstructionContent{Text: "Head north"}, TriggerDistanceBeforeManeuver: 111},
					{PrimaryContent: engine.VisualInstructionContent{Text: "Turn right"}, TriggerDistanceBeforeManeuver: 30},
				},
				SpokenInstructions: []engine.SpokenInstruction{
					{Text: "Head north", TriggerDistanceBeforeManeuver: 111, UtteranceID: uuid.New()},
				},
			},
			{
				Geometry:    []engine.GeographicCoordinate{{Lat: 0.001, Lng: 0}, {Lat: 0.001, Lng: 0.001}},
				Distance:    111,
				Instruction: "Arrive",
				VisualInstructions: []engine.VisualInstruction{
					{PrimaryContent: engine.VisualInstructionContent{Text: "Arrive"}, TriggerDistanceBeforeManeuver: 111},
				},
			},
		},
	}
}

func manualConfig() engine.NavigationControllerConfig {
	return engine.NavigationControllerConfig{
		StepAdvance:                    engine.StepAdvanceManual{},
		RouteDeviationTracking:         engine.DeviationTrackingNone{},
		SnappedLocationCourseFiltering: engine.CourseFilteringSnapToRoute,
	}
}

func newTestEngine(t *testing.T, endpoint string, provider engine.LocationProvider) *Engine {
	t.Helper()
	e, err := New(engine.Options{
		EndpointURL:      endpoint,
		Profile:          "auto",
		ExtraOptions:     map[string]any{"units": "kilometers", "costing": "bicycle"},
		LocationProvider: provider,
		Config:           manualConfig(),
	}, zap.NewNop())
	require.NoError(t, err)
	return e
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(engine.Options{EndpointURL: "not a url", Profile: "auto"}, zap.NewNop())
	assert.Error(t, err)

	_, err = New(engine.Options{EndpointURL: "https://example.com/route"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNew_FixesTimeout(t *testing.T) {
	e, err := New(engine.Options{
		EndpointURL: "https://example.com/route",
		Profile:     "auto",
		HTTPClient:  &http.Client{Timeout: time.Hour},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, RequestTimeout, e.client.http.Timeout)
}

// encodePolyline6 is the inverse of geo.DecodePolyline at precision 6.
func encodePolyline6(points ...engine.GeographicCoordinate) string {
	var sb strings.Builder
	prevLat, prevLng := 0, 0
	encode := func(diff int) {
		if diff < 0 {
			diff = ^(diff << 1)
		} else {
			diff <<= 1
		}
		for diff >= 0x20 {
			sb.WriteByte(byte((diff&0x1f)|0x20) + 63)
			diff >>= 5
		}
		sb.WriteByte(byte(diff + 63))
	}
	for _, p := range points {
		lat, lng := int(math.Round(p.Lat*1e6)), int(math.Round(p.Lng*1e6))
		encode(lat - prevLat)
		encode(lng - prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func osrmBody(t *testing.T) []byte {
	t.Helper()
	a := engine.GeographicCoordinate{Lat: 3.1, Lng: 101.6}
	b := engine.GeographicCoordinate{Lat: 3.15, Lng: 101.6}
	c := engine.GeographicCoordinate{Lat: 3.2, Lng: 101.7}
	body := map[string]any{
		"code": "Ok",
		"routes": []any{
			map[string]any{
				"distance": 12000.5,
				"duration": 900,
				"geometry": encodePolyline6(a, b, c),
				"legs": []any{map[string]any{"steps": []any{
					map[string]any{
						"distance": 5500,
						"duration": 400,
						"name":     "Jalan Ampang",
						"geometry": encodePolyline6(a, b),
						"maneuver": map[string]any{"type": "depart", "instruction": "Drive north on Jalan Ampang."},
						"bannerInstructions": []any{map[string]any{
							"distanceAlongGeometry": 5500,
							"primary":               map[string]any{"text": "Jalan Tun Razak", "type": "turn", "modifier": "right"},
							"sub": map[string]any{"text": "", "components": []any{
								map[string]any{"type": "lane", "directions": []string{"straight", "right"}, "active": true, "active_direction": "right"},
								map[string]any{"type": "text", "text": "ignored"},
							}},
						}},
						"voiceInstructions": []any{map[string]any{
							"distanceAlongGeometry": 200,
							"announcement":          "Turn right onto Jalan Tun Razak.",
							"ssmlAnnouncement":      "<speak>Turn right onto Jalan Tun Razak.</speak>",
						}},
					},
					map[string]any{
						"distance": 6500.5,
						"duration": 500,
						"geometry": encodePolyline6(b, c),
						"maneuver": map[string]any{"type": "arrive", "instruction": "You have arrived."},
					},
				}}},
			},
			map[string]any{"distance": 15000, "geometry": encodePolyline6(a, c), "legs": []any{}},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func queryRoutes(t *testing.T, body string) ([]engine.Route, error) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	return newTestEngine(t, srv.URL, nil).GetRoutes(context.Background(), engine.UserLocation{},
		[]engine.Waypoint{{Coordinate: engine.GeographicCoordinate{Lat: 1}}})
}

func TestGetRoutes_SendsRequestAndDecodesRoutes(t *testing.T) {
	var body map[string]any
	response := osrmBody(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(response)
	}))
	defer srv.Close()

	e := newTestEngine(t, srv.URL, nil)
	routes, err := e.GetRoutes(context.Background(),
		engine.UserLocation{
			Coordinates:        engine.GeographicCoordinate{Lat: 3.1, Lng: 101.6},
			HorizontalAccuracy: 8,
			CourseOverGround:   &engine.CourseOverGround{Degrees: 45},
		},
		[]engine.Waypoint{{Coordinate: engine.GeographicCoordinate{Lat: 3.2, Lng: 101.7}, Kind: engine.WaypointKindVia}},
	)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, 12000.5, routes[0].Distance)
	assert.Equal(t, 15000.0, routes[1].Distance)

	first := routes[0]
	require.Len(t, first.Geometry, 3)
	assert.InDelta(t, 3.15, first.Geometry[1].Lat, 1e-9)
	assert.InDelta(t, 3.1, first.BBox.SW.Lat, 1e-9)
	assert.InDelta(t, 101.7, first.BBox.NE.Lng, 1e-9)
	require.Len(t, first.Waypoints, 2)
	assert.Equal(t, engine.WaypointKindBreak, first.Waypoints[0].Kind)
	assert.Equal(t, engine.WaypointKindVia, first.Waypoints[1].Kind)

	require.Len(t, first.Steps, 2)
	step := first.Steps[0]
	require.NotNil(t, step.RoadName)
	assert.Equal(t, "Jalan Ampang", *step.RoadName)
	assert.Equal(t, "Drive north on Jalan Ampang.", step.Instruction)
	require.Len(t, step.VisualInstructions, 1)
	vi := step.VisualInstructions[0]
	assert.Equal(t, 5500.0, vi.TriggerDistanceBeforeManeuver)
	require.NotNil(t, vi.PrimaryContent.ManeuverType)
	assert.Equal(t, engine.ManeuverTypeTurn, *vi.PrimaryContent.ManeuverType)
	assert.Equal(t, engine.ManeuverModifierRight, *vi.PrimaryContent.ManeuverModifier)
	assert.Nil(t, vi.SecondaryContent)
	require.NotNil(t, vi.SubContent)
	require.Len(t, vi.SubContent.LaneInfo, 1)
	assert.Equal(t, []string{"straight", "right"}, vi.SubContent.LaneInfo[0].Directions)
	require.Len(t, step.SpokenInstructions, 1)
	assert.Equal(t, 200.0, step.SpokenInstructions[0].TriggerDistanceBeforeManeuver)
	assert.NotEqual(t, uuid.Nil, step.SpokenInstructions[0].UtteranceID)
	assert.Nil(t, first.Steps[1].RoadName)

	assert.Equal(t, "auto", body["costing"], "extra options cannot override costing")
	assert.Equal(t, "osrm", body["format"])
	assert.Equal(t, true, body["banner_instructions"])
	assert.Equal(t, true, body["voice_instructions"])
	assert.Equal(t, "kilometers", body["units"])
	locs := body["locations"].([]any)
	require.Len(t, locs, 2)
	start := locs[0].(map[string]any)
	assert.Equal(t, 45.0, start["heading"])
	assert.Equal(t, 8.0, start["radius"])
	assert.Equal(t, "break", start["type"])
	assert.Equal(t, "via", locs[1].(map[string]any)["type"])
}

func TestGetRoutes_EmptyIsNotAnError(t *testing.T) {
	routes, err := queryRoutes(t, `{"code":"Ok","routes":[]}`)
	require.NoError(t, err)
	assert.NotNil(t, routes)
	assert.Empty(t, routes)

	routes, err = queryRoutes(t, `{"code":"NoRoute","message":"Impossible route between points"}`)
	require.NoError(t, err)
	assert.NotNil(t, routes)
	assert.Empty(t, routes)
}

func TestGetRoutes_UnrecognizedBodyIsAnError(t *testing.T) {
	for _, body := range []string{
		`{"trip":{"legs":[{"shape":"abc"}],"status":0}}`,
		`{"code":"Ok"}`,
		`{}`,
	} {
		routes, err := queryRoutes(t, body)
		assert.ErrorIs(t, err, ErrUnrecognizedResponse, body)
		assert.Nil(t, routes, body)
	}

	_, err := queryRoutes(t, `{"code":"InvalidInput","message":"bad coordinates"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad coordinates")

	_, err = queryRoutes(t, `{"code":"Ok","routes":[{"geometry":"_p~iF~ps|"}]}`)
	assert.ErrorIs(t, err, geo.ErrMalformedPolyline)

	_, err = queryRoutes(t, `{"code":"Ok","routes":[{"geometry":"","legs":[{"steps":[{"geometry":"","bannerInstructions":[{"primary":{"text":"x","type":"teleport"}}]}]}]}]}`)
	assert.Error(t, err)
}

func TestGetRoutes_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"no path could be found"}`))
	}))
	defer srv.Close()

	_, err := newTestEngine(t, srv.URL, nil).GetRoutes(context.Background(), engine.UserLocation{},
		[]engine.Waypoint{{Coordinate: engine.GeographicCoordinate{Lat: 1}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no path could be found")
}

func TestGetRoutes_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestEngine(t, srv.URL, nil).GetRoutes(ctx, engine.UserLocation{},
		[]engine.Waypoint{{Coordinate: engine.GeographicCoordinate{Lat: 1}}})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGetRoutes_RequiresWaypoint(t *testing.T) {
	_, err := newTestEngine(t, "http://127.0.0.1:1/route", nil).GetRoutes(context.Background(), engine.UserLocation{}, nil)
	assert.Error(t, err)
}

func TestNavigation_StartAdvanceComplete(t *testing.T) {
	e := newTestEngine(t, "http://127.0.0.1:1/route", nil)

	var states []engine.NavigationState
	e.Subscribe(func(s engine.NavigationState) { states = append(states, s) })

	require.NoError(t, e.StartNavigation(context.Background(), twoStepRoute(), manualConfig()))
	st := e.State()
	assert.Equal(t, engine.StatusNavigating, st.Status)
	assert.Equal(t, 0, st.CurrentStepIndex)
	require.NotNil(t, st.VisualInstruction)
	assert.Equal(t, "Head north", st.VisualInstruction.PrimaryContent.Text)
	assert.Len(t, st.RemainingSteps(), 2)

	require.NoError(t, e.AdvanceToNextStep(context.Background()))
	assert.Equal(t, 1, e.State().CurrentStepIndex)
	assert.Equal(t, "Arrive", e.State().VisualInstruction.PrimaryContent.Text)

	require.NoError(t, e.AdvanceToNextStep(context.Background()))
	assert.Equal(t, engine.StatusComplete, e.State().Status)
	assert.Nil(t, e.State().VisualInstruction)

	assert.Len(t, states, 3)
}

func TestNavigation_CommandsRequireActiveRoute(t *testing.T) {
	e := newTestEngine(t, "http://127.0.0.1:1/route", nil)

	assert.ErrorIs(t, e.AdvanceToNextStep(context.Background()), engine.ErrNotNavigating)
	assert.ErrorIs(t, e.ReplaceRoute(context.Background(), twoStepRoute(), manualConfig()), engine.ErrNotNavigating)
	assert.Error(t, e.StartNavigation(context.Background(), engine.Route{}, manualConfig()))
}

func TestNavigation_TracksDeviceLocation(t *testing.T) {
	device := location.NewDevice(zap.NewNop())
	e := newTestEngine(t, "http://127.0.0.1:1/route", device)

	advance := uint16(10)
	cfg := manualConfig()
	cfg.StepAdvance = engine.StepAdvanceRelativeLineStringDistance{MinimumHorizontalAccuracy: 20, AutomaticAdvanceDistance: &advance}
	require.NoError(t, e.StartNavigation(context.Background(), twoStepRoute(), cfg))

	// About 22 m before the end of the first step, slightly off the line.
	require.NoError(t, device.Push(engine.UserLocation{
		Coordinates:        engine.GeographicCoordinate{Lat: 0.0008, Lng: 0.00001},
		HorizontalAccuracy: 5,
		Timestamp:          time.Now(),
	}))
	st := e.State()
	require.NotNil(t, st.SnappedLocation)
	assert.InDelta(t, 0, st.SnappedLocation.Coordinates.Lng, 1e-9)
	require.NotNil(t, st.SnappedLocation.CourseOverGround)
	assert.Equal(t, uint16(0), st.SnappedLocation.CourseOverGround.Degrees)
	require.NotNil(t, st.DistanceToNextManeuver)
	assert.InDelta(t, 22.2, *st.DistanceToNextManeuver, 0.5)
	assert.Equal(t, "Turn right", st.VisualInstruction.PrimaryContent.Text)
	assert.Equal(t, 0, st.CurrentStepIndex)

	require.NoError(t, device.Push(engine.UserLocation{
		Coordinates:        engine.GeographicCoordinate{Lat: 0.00097, Lng: 0},
		HorizontalAccuracy: 5,
		Timestamp:          time.Now(),
	}))
	assert.Equal(t, 1, e.State().CurrentStepIndex)
}

func TestNavigation_RelativeAdvanceFollowsNextStep(t *testing.T) {
	device := location.NewDevice(zap.NewNop())
	e := newTestEngine(t, "http://127.0.0.1:1/route", device)

	cfg := manualConfig()
	cfg.StepAdvance = engine.StepAdvanceRelativeLineStringDistance{MinimumHorizontalAccuracy: 20}
	require.NoError(t, e.StartNavigation(context.Background(), twoStepRoute(), cfg))

	// On the second step's line, about 55 m from the first step's end.
	onNext := engine.GeographicCoordinate{Lat: 0.001, Lng: 0.0005}
	require.NoError(t, device.Push(engine.UserLocation{Coordinates: onNext, HorizontalAccuracy: 50, Timestamp: time.Now()}))
	assert.Equal(t, 0, e.State().CurrentStepIndex, "inaccurate fixes never advance")

	require.NoError(t, device.Push(engine.UserLocation{Coordinates: onNext, HorizontalAccuracy: 5, Timestamp: time.Now()}))
	assert.Equal(t, 1, e.State().CurrentStepIndex)
}

func TestNavigation_StaticThresholdDeviation(t *testing.T) {
	device := location.NewDevice(zap.NewNop())
	e := newTestEngine(t, "http://127.0.0.1:1/route", device)

	cfg := manualConfig()
	cfg.RouteDeviationTracking = engine.DeviationTrackingStaticThreshold{MinimumHorizontalAccuracy: 25, MaxAcceptableDeviation: 20}
	require.NoError(t, e.StartNavigation(context.Background(), twoStepRoute(), cfg))

	offRoute := engine.GeographicCoordinate{Lat: 0.0005, Lng: 0.0005}
	require.NoError(t, device.Push(engine.UserLocation{Coordinates: offRoute, HorizontalAccuracy: 5, Timestamp: time.Now()}))
	st := e.State()
	require.NotNil(t, st.RouteDeviation)
	assert.InDelta(t, 55.6, *st.RouteDeviation, 0.5)

	require.NoError(t, device.Push(engine.UserLocation{Coordinates: offRoute, HorizontalAccuracy: 40, Timestamp: time.Now()}))
	assert.Nil(t, e.State().RouteDeviation, "fixes below the accuracy gate are not judged")

	require.NoError(t, device.Push(engine.UserLocation{
		Coordinates:        engine.GeographicCoordinate{Lat: 0.0005, Lng: 0.0001},
		HorizontalAccuracy: 5,
		Timestamp:          time.Now(),
	}))
	assert.Nil(t, e.State().RouteDeviation, "11 m is within the threshold")
}

func TestNavigation_DeviationTrackingNone(t *testing.T) {
	device := location.NewDevice(zap.NewNop())
	e := newTestEngine(t, "http://127.0.0.1:1/route", device)
	require.NoError(t, e.StartNavigation(context.Background(), twoStepRoute(), manualConfig()))

	require.NoError(t, device.Push(engine.UserLocation{
		Coordinates:        engine.GeographicCoordinate{Lat: 0.0005, Lng: 0.005},
		HorizontalAccuracy: 5,
		Timestamp:          time.Now(),
	}))
	assert.Nil(t, e.State().RouteDeviation)
}

type failingProvider struct {
	engine.LocationProvider
}

func (failingProvider) Start(context.Context) error { return errors.New("gps unavailable") }

func TestNavigation_ProviderStartFailureLeavesEngineIdle(t *testing.T) {
	e := newTestEngine(t, "http://127.0.0.1:1/route", failingProvider{})

	var emitted int
	e.Subscribe(func(engine.NavigationState) { emitted++ })

	err := e.StartNavigation(context.Background(), twoStepRoute(), manualConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gps unavailable")
	assert.Equal(t, engine.StatusIdle, e.State().Status)
	assert.Nil(t, e.State().Route)
	assert.Zero(t, emitted)
}

func TestEmit_DropsOlderSnapshots(t *testing.T) {
	e := newTestEngine(t, "http://127.0.0.1:1/route", nil)

	var got []engine.NavigationStatus
	e.Subscribe(func(s engine.NavigationState) { got = append(got, s.Status) })

	e.emit(engine.NavigationState{Status: engine.StatusNavigating}, 2)
	e.emit(engine.NavigationState{Status: engine.StatusIdle}, 1)
	e.emit(engine.NavigationState{Status: engine.StatusComplete}, 3)
	assert.Equal(t, []engine.NavigationStatus{engine.StatusNavigating, engine.StatusComplete}, got)
}

func TestNavigation_LastDeliveredSnapshotMatchesState(t *testing.T) {
	device := location.NewDevice(zap.NewNop())
	e := newTestEngine(t, "http://127.0.0.1:1/route", device)

	var (
		mu   sync.Mutex
		last engine.NavigationState
	)
	e.Subscribe(func(s engine.NavigationState) {
		mu.Lock()
		last = s
		mu.Unlock()
	})
	require.NoError(t, e.StartNavigation(context.Background(), twoStepRoute(), manualConfig()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = device.Push(engine.UserLocation{
				Coordinates:        engine.GeographicCoordinate{Lat: 0.0001 * float64(i), Lng: 0},
				HorizontalAccuracy: 5,
				Timestamp:          time.Now(),
			})
		}(i)
		go func() {
			defer wg.Done()
			_ = e.ReplaceRoute(context.Background(), twoStepRoute(), manualConfig())
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, e.State(), last)
}

func TestNavigation_StopForwardsLocationFlag(t *testing.T) {
	device := location.NewDevice(zap.NewNop())
	e := newTestEngine(t, "http://127.0.0.1:1/route", device)
	require.NoError(t, e.StartNavigation(context.Background(), twoStepRoute(), manualConfig()))

	keep := false
	require.NoError(t, e.StopNavigation(context.Background(), &keep))
	assert.Equal(t, engine.StatusIdle, e.State().Status)
	assert.NoError(t, device.Push(engine.UserLocation{Timestamp: time.Now()}), "provider still running")

	require.NoError(t, e.StopNavigation(context.Background(), nil))
	assert.ErrorIs(t, device.Push(engine.UserLocation{Timestamp: time.Now()}), location.ErrNotRunning)
}

func TestNavigation_SimulatorFollowsStartedRoute(t *testing.T) {
	sim := location.NewSimulated(location.SimulatedConfig{Interval: time.Hour, Speed: 50}, zap.NewNop())
	e := newTestEngine(t, "http://127.0.0.1:1/route", sim)
	defer sim.Stop()

	require.NoError(t, e.StartNavigation(context.Background(), twoStepRoute(), manualConfig()))

	st := e.State()
	require.NotNil(t, st.Location)
	assert.Equal(t, engine.GeographicCoordinate{Lat: 0, Lng: 0}, st.Location.Coordinates)

	sim.Step()
	assert.Greater(t, e.State().Location.Coordinates.Lat, 0.0)
}

func TestClose(t *testing.T) {
	e := newTestEngine(t, "http://127.0.0.1:1/route", nil)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err := e.GetRoutes(context.Background(), engine.UserLocation{}, nil)
	assert.ErrorIs(t, err, engine.ErrClosed)
	assert.ErrorIs(t, e.StartNavigation(context.Background(), twoStepRoute(), manualConfig()), engine.ErrClosed)
	assert.ErrorIs(t, e.AdvanceToNextStep(context.Background()), engine.ErrClosed)
}
