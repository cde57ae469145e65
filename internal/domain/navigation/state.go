package navigation

import (
	"time"

	"github.com/google/uuid"
)

// NavigationState is the snapshot pushed to the host whenever the engine's
// state changes or the display options are refreshed.
type NavigationState struct {
	SessionID              uuid.UUID          `json:"sessionId"`
	Status                 NavigationStatus   `json:"status"`
	Location               *UserLocation      `json:"location,omitempty"`
	SnappedLocation        *UserLocation      `json:"snappedLocation,omitempty"`
	CurrentStepIndex       *int               `json:"currentStepIndex,omitempty"`
	RemainingSteps         *int               `json:"remainingSteps,omitempty"`
	DistanceToNextManeuver *float64           `json:"distanceToNextManeuver,omitempty"`
	RouteDeviation         *float64           `json:"routeDeviation,omitempty"`
	VisualInstruction      *VisualInstruction `json:"visualInstruction,omitempty"`
	SpokenInstruction      *SpokenInstruction `json:"spokenInstruction,omitempty"`
	StyleURL               string             `json:"styleUrl"`
	// AccuracyRadius is set when the fix is too coarse to be drawn as a point.
	AccuracyRadius *float64  `json:"accuracyRadius,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SessionRebuilt is announced whenever new core options replace the session.
type SessionRebuilt struct {
	SessionID         uuid.UUID    `json:"sessionId"`
	PreviousSessionID *uuid.UUID   `json:"previousSessionId,omitempty"`
	LocationMode      LocationMode `json:"locationMode"`
	Profile           string       `json:"profile"`
	Fingerprint       string       `json:"fingerprint"`
	RebuiltAt         time.Time    `json:"rebuiltAt"`
}
