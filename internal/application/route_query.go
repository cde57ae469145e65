package application

import (
	"context"
	"errors"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/session"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/translate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RouteQueryDTO is the API response representation of a logged route query.
type RouteQueryDTO struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Fingerprint string    `json:"fingerprint"`
	Status      string    `json:"status"`
	RouteCount  int       `json:"route_count"`
	Error       string    `json:"error,omitempty"`
	Cached      bool      `json:"cached"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetRoutes queries routes from the current session's engine. The query is
// cancelled if the session is torn down, and results that arrive after a
// rebuild are discarded with ErrStaleSession. An empty result is not an
// error.
func (s *NavigationService) GetRoutes(ctx context.Context, initial navigation.UserLocation, waypoints []navigation.Waypoint) ([]navigation.Route, error) {
	engWaypoints, err := translate.ToEngineWaypoints(waypoints)
	if err != nil {
		return nil, err
	}
	engInitial := translate.ToEngineLocation(initial)

	sess, err := s.sessions.Current()
	if err != nil {
		return nil, err
	}

	fingerprint := sess.Options.Fingerprint()
	var key string
	if s.cache != nil && s.cacheKey != nil {
		key = s.cacheKey(fingerprint, initial, waypoints)
		if routes, ok := s.cache.Get(ctx, key); ok {
			s.record(ctx, sess, fingerprint, initial, waypoints, routes, nil, true, 0)
			return routes, nil
		}
	}

	qctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sess.Context(), cancel)
	defer stop()

	started := time.Now()
	engRoutes, err := sess.Engine.GetRoutes(qctx, engInitial, engWaypoints)
	elapsed := time.Since(started)

	if !s.sessions.IsCurrent(sess) {
		s.record(ctx, sess, fingerprint, initial, waypoints, nil, navigation.ErrStaleSession, false, elapsed)
		return nil, navigation.ErrStaleSession
	}
	if err != nil {
		engErr := navigation.NewEngineError("getRoutes", err)
		s.record(ctx, sess, fingerprint, initial, waypoints, nil, engErr, false, elapsed)
		return nil, engErr
	}

	routes, err := translate.ToInterchangeRoutes(engRoutes)
	if err != nil {
		s.record(ctx, sess, fingerprint, initial, waypoints, nil, err, false, elapsed)
		return nil, err
	}

	if key != "" {
		s.cache.Set(ctx, key, routes)
	}
	s.record(ctx, sess, fingerprint, initial, waypoints, routes, nil, false, elapsed)
	return routes, nil
}

// record writes the query outcome to metrics and the query log. Log failures
// are only reported.
func (s *NavigationService) record(
	ctx context.Context,
	sess *session.Session,
	fingerprint string,
	initial navigation.UserLocation,
	waypoints []navigation.Waypoint,
	routes []navigation.Route,
	queryErr error,
	cached bool,
	elapsed time.Duration,
) {
	status := queryStatus(routes, queryErr)
	metrics.RouteQueriesTotal.WithLabelValues(string(status)).Inc()
	if !cached {
		metrics.RouteQueryDurationMs.Observe(float64(elapsed.Milliseconds()))
	}

	fields := []zap.Field{
		zap.String("session_id", sess.ID.String()),
		zap.String("status", string(status)),
		zap.Int("routes", len(routes)),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	}
	if queryErr != nil {
		s.logger.Warn("route query failed", append(fields, zap.Error(queryErr))...)
	} else {
		s.logger.Info("route query completed", fields...)
	}

	if s.queries == nil {
		return
	}
	q := &navigation.RouteQuery{
		ID:          uuid.New(),
		SessionID:   sess.ID,
		Fingerprint: fingerprint,
		Status:      status,
		RouteCount:  len(routes),
		Cached:      cached,
		Duration:    elapsed,
		Location:    initial,
		Waypoints:   waypoints,
		CreatedAt:   time.Now().UTC(),
	}
	if queryErr != nil {
		q.Error = queryErr.Error()
	}
	if err := s.queries.Save(context.WithoutCancel(ctx), q); err != nil {
		s.logger.Error("failed to save route query", zap.String("query_id", q.ID.String()), zap.Error(err))
	}
}

func queryStatus(routes []navigation.Route, err error) navigation.RouteQueryStatus {
	switch {
	case errors.Is(err, navigation.ErrStaleSession):
		return navigation.RouteQueryStale
	case err != nil:
		return navigation.RouteQueryFailed
	case len(routes) == 0:
		return navigation.RouteQueryEmpty
	default:
		return navigation.RouteQueryOK
	}
}

// ListRouteQueries returns a paginated view of the route query log.
func (s *NavigationService) ListRouteQueries(ctx context.Context, page, limit int) ([]RouteQueryDTO, int64, error) {
	if s.queries == nil {
		return []RouteQueryDTO{}, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	queries, total, err := s.queries.ListRecent(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]RouteQueryDTO, len(queries))
	for i, q := range queries {
		dtos[i] = toRouteQueryDTO(q)
	}
	return dtos, total, nil
}

// RouteQueryStats returns route query counts grouped by outcome.
func (s *NavigationService) RouteQueryStats(ctx context.Context) (map[string]int64, error) {
	if s.queries == nil {
		return map[string]int64{}, nil
	}
	return s.queries.CountByStatus(ctx)
}

func toRouteQueryDTO(q *navigation.RouteQuery) RouteQueryDTO {
	return RouteQueryDTO{
		ID:          q.ID,
		SessionID:   q.SessionID,
		Fingerprint: q.Fingerprint,
		Status:      string(q.Status),
		RouteCount:  q.RouteCount,
		Error:       q.Error,
		Cached:      q.Cached,
		DurationMs:  q.Duration.Milliseconds(),
		CreatedAt:   q.CreatedAt,
	}
}
