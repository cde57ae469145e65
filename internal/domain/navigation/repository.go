package navigation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile is the last configuration applied by the host. It is restored when
// the bridge starts so the first session matches what the host last asked for.
type Profile struct {
	CoreOptions       CoreOptions
	NavigationOptions NavigationOptions
	UpdatedAt         time.Time
}

// ProfileRepository defines the persistence contract for the navigation profile.
type ProfileRepository interface {
	// Load returns the stored profile, or ErrNotFound if none was saved yet.
	Load(ctx context.Context) (*Profile, error)

	// SaveCoreOptions stores the core options of the profile.
	SaveCoreOptions(ctx context.Context, options CoreOptions) error

	// SaveNavigationOptions stores the display options of the profile.
	SaveNavigationOptions(ctx context.Context, options NavigationOptions) error
}

// RouteQueryStatus is the outcome of a route query.
type RouteQueryStatus string

const (
	RouteQueryOK     RouteQueryStatus = "ok"
	RouteQueryEmpty  RouteQueryStatus = "empty"
	RouteQueryFailed RouteQueryStatus = "failed"
	RouteQueryStale  RouteQueryStatus = "stale"
)

// RouteQuery records one getRoutes call and its outcome.
type RouteQuery struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	Fingerprint string
	Status      RouteQueryStatus
	RouteCount  int
	Error       string
	Cached      bool
	Duration    time.Duration
	Location    UserLocation
	Waypoints   []Waypoint
	CreatedAt   time.Time
}

// RouteQueryRepository defines the persistence contract for the route query log.
type RouteQueryRepository interface {
	// Save persists a route query record.
	Save(ctx context.Context, query *RouteQuery) error

	// ListRecent returns the most recent queries, newest first.
	ListRecent(ctx context.Context, page, limit int) ([]*RouteQuery, int64, error)

	// CountByStatus returns query counts grouped by outcome.
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
