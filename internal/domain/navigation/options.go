package navigation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
)

// DefaultEndpointURL is the public Valhalla instance used when none is configured.
const DefaultEndpointURL = "https://valhalla1.openstreetmap.de/route"

// DefaultProfile is the routing profile used when none is configured.
const DefaultProfile = "auto"

// StepAdvanceMode is a tagged variant selecting how the engine advances steps.
// Which of the optional fields are required depends on Type.
type StepAdvanceMode struct {
	Type                      StepAdvanceType `json:"type"`
	MinimumHorizontalAccuracy *uint16         `json:"minimumHorizontalAccuracy,omitempty"`
	Distance                  *uint16         `json:"distance,omitempty"`
	AutomaticAdvanceDistance  *uint16         `json:"automaticAdvanceDistance,omitempty"`
}

// RouteDeviationTracking is a tagged variant selecting how deviation is detected.
type RouteDeviationTracking struct {
	Type                      DeviationTrackingType `json:"type"`
	MinimumHorizontalAccuracy *uint16               `json:"minimumHorizontalAccuracy,omitempty"`
	MaxAcceptableDeviation    *float64              `json:"maxAcceptableDeviation,omitempty"`
}

// NavigationControllerConfig configures the engine's navigation state machine.
type NavigationControllerConfig struct {
	StepAdvance                    StepAdvanceMode        `json:"stepAdvance"`
	RouteDeviationTracking         RouteDeviationTracking `json:"routeDeviationTracking"`
	SnappedLocationCourseFiltering CourseFiltering        `json:"snappedLocationCourseFiltering"`
}

// DefaultNavigationControllerConfig returns the controller config applied when the host sends none.
func DefaultNavigationControllerConfig() NavigationControllerConfig {
	accuracy := uint16(16)
	advance := uint16(16)
	deviationAccuracy := uint16(25)
	maxDeviation := 20.0
	return NavigationControllerConfig{
		StepAdvance: StepAdvanceMode{
			Type:                      StepAdvanceRelativeLineStringDistance,
			MinimumHorizontalAccuracy: &accuracy,
			AutomaticAdvanceDistance:  &advance,
		},
		RouteDeviationTracking: RouteDeviationTracking{
			Type:                      DeviationTrackingStaticThreshold,
			MinimumHorizontalAccuracy: &deviationAccuracy,
			MaxAcceptableDeviation:    &maxDeviation,
		},
		SnappedLocationCourseFiltering: CourseFilteringSnapToRoute,
	}
}

// CoreOptions is the configuration an engine session is built from.
// Any change to it rebuilds the session.
type CoreOptions struct {
	EndpointURL                string                     `json:"endpointUrl"`
	Profile                    string                     `json:"profile"`
	ExtraOptions               map[string]any             `json:"extraOptions,omitempty"`
	LocationMode               LocationMode               `json:"locationMode"`
	NavigationControllerConfig NavigationControllerConfig `json:"navigationControllerConfig"`
}

// DefaultCoreOptions returns the options a bridge starts with when nothing is persisted.
func DefaultCoreOptions() CoreOptions {
	return CoreOptions{
		EndpointURL:                DefaultEndpointURL,
		Profile:                    DefaultProfile,
		ExtraOptions:               map[string]any{},
		LocationMode:               LocationModeDevice,
		NavigationControllerConfig: DefaultNavigationControllerConfig(),
	}
}

// Validate checks the fields the session builder cannot work without.
func (o CoreOptions) Validate() error {
	if o.EndpointURL == "" {
		return NewValidationError("endpoint URL is required")
	}
	u, err := url.Parse(o.EndpointURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewValidationError(fmt.Sprintf("invalid endpoint URL: %s", o.EndpointURL))
	}
	if o.Profile == "" {
		return NewValidationError("profile is required")
	}
	if !o.LocationMode.IsValid() {
		return NewValidationError(fmt.Sprintf("invalid location mode: %s", o.LocationMode))
	}
	return nil
}

// Equal compares two option sets by value, including the extra options map.
// A nil and an empty extra options map are equal.
func (o CoreOptions) Equal(other CoreOptions) bool {
	a, b := o, other
	if len(a.ExtraOptions) == 0 {
		a.ExtraOptions = nil
	}
	if len(b.ExtraOptions) == 0 {
		b.ExtraOptions = nil
	}
	return reflect.DeepEqual(a, b)
}

// Fingerprint returns a stable hash of the options. encoding/json sorts map
// keys, so equal options always hash the same.
func (o CoreOptions) Fingerprint() string {
	if len(o.ExtraOptions) == 0 {
		o.ExtraOptions = nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		raw = []byte(fmt.Sprintf("%#v", o))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// NavigationOptions are display-only settings. Changing them refreshes the
// presentation object and never rebuilds the session.
type NavigationOptions struct {
	StyleURL                string `json:"styleUrl"`
	SnapUserLocationToRoute bool   `json:"snapUserLocationToRoute"`
}

// DefaultNavigationOptions returns the display options used before the host sends any.
func DefaultNavigationOptions() NavigationOptions {
	return NavigationOptions{
		StyleURL:                "https://demotiles.maplibre.org/style.json",
		SnapUserLocationToRoute: true,
	}
}

// Validate checks that the style URL is usable.
func (o NavigationOptions) Validate() error {
	if o.StyleURL == "" {
		return NewValidationError("style URL is required")
	}
	if u, err := url.Parse(o.StyleURL); err != nil || u.Scheme == "" {
		return NewValidationError(fmt.Sprintf("invalid style URL: %s", o.StyleURL))
	}
	return nil
}
