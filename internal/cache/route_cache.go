// Package cache stores translated route query results in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "navigation:routes:"

// OpenRedis opens a Redis client, or returns nil when addr is empty so the
// cache is disabled.
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// RouteCache caches route query results per session options fingerprint.
type RouteCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRouteCache creates a RouteCache.
func NewRouteCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RouteCache {
	return &RouteCache{client: client, ttl: ttl, logger: logger}
}

type keyRequest struct {
	Fingerprint string                          `json:"f"`
	Coordinates navigation.GeographicCoordinate `json:"c"`
	Heading     *uint16                         `json:"h,omitempty"`
	Radius      float64                         `json:"r"`
	Waypoints   []navigation.Waypoint           `json:"w"`
}

// Key derives the cache key of a query from every fix field the routing
// backend sees: coordinates, heading and horizontal accuracy. The timestamp
// and speed do not take part so repeated queries from the same fix hit.
func Key(fingerprint string, loc navigation.UserLocation, waypoints []navigation.Waypoint) string {
	req := keyRequest{
		Fingerprint: fingerprint,
		Coordinates: loc.Coordinates,
		Radius:      loc.HorizontalAccuracy,
		Waypoints:   waypoints,
	}
	if loc.CourseOverGround != nil {
		h := loc.CourseOverGround.Degrees
		req.Heading = &h
	}
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns cached routes. Redis errors are logged and reported as a miss.
func (c *RouteCache) Get(ctx context.Context, key string) ([]navigation.Route, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("route cache read failed", zap.String("key", key), zap.Error(err))
		}
		metrics.RouteCacheMissesTotal.Inc()
		return nil, false
	}

	var routes []navigation.Route
	if err := json.Unmarshal(raw, &routes); err != nil {
		c.logger.Warn("discarding undecodable cached routes", zap.String("key", key), zap.Error(err))
		metrics.RouteCacheMissesTotal.Inc()
		return nil, false
	}
	if routes == nil {
		routes = []navigation.Route{}
	}
	metrics.RouteCacheHitsTotal.Inc()
	return routes, true
}

// Set stores routes under key. Failures are logged only.
func (c *RouteCache) Set(ctx context.Context, key string, routes []navigation.Route) {
	raw, err := json.Marshal(routes)
	if err != nil {
		c.logger.Warn("failed to encode routes for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("route cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Ping checks the Redis connection.
func (c *RouteCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
