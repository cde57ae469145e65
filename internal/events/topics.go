package events

import (
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/google/uuid"
)

// Source is the CloudEvents source of everything this service publishes.
const Source = "service-navigation"

// Topics.
const (
	TopicNavigationEvents = "navigation.events"
	TopicLocationFixes    = "location.fixes"
)

// Event types.
const (
	NavigationStateUpdated   = "navigation.state.updated"
	NavigationSessionRebuilt = "navigation.session.rebuilt"
	LocationFixReported      = "location.fix.reported"
)

// LocationFixReportedEvent is the payload of a location.fix.reported event.
// When SessionID is set the fix is only applied to that session.
type LocationFixReportedEvent struct {
	SessionID *uuid.UUID              `json:"sessionId,omitempty"`
	DeviceID  string                  `json:"deviceId,omitempty"`
	Location  navigation.UserLocation `json:"location"`
}
