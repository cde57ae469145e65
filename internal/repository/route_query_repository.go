package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RouteQueryModel is the GORM model for the route_queries table.
type RouteQueryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Fingerprint string          `gorm:"size:64;index;not null"`
	Status      string          `gorm:"size:20;index;not null"`
	RouteCount  int             `gorm:"not null;default:0"`
	Error       string          `gorm:"size:1000"`
	Cached      bool            `gorm:"not null;default:false"`
	DurationMs  int64           `gorm:"not null"`
	Location    json.RawMessage `gorm:"type:jsonb;not null"`
	Waypoints   json.RawMessage `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (RouteQueryModel) TableName() string {
	return "route_queries"
}

// GormRouteQueryRepository is the GORM-based implementation of RouteQueryRepository.
type GormRouteQueryRepository struct {
	db *gorm.DB
}

// NewGormRouteQueryRepository creates a new GormRouteQueryRepository.
func NewGormRouteQueryRepository(db *gorm.DB) *GormRouteQueryRepository {
	return &GormRouteQueryRepository{db: db}
}

// Save persists a route query record.
func (r *GormRouteQueryRepository) Save(ctx context.Context, q *navigation.RouteQuery) error {
	model, err := toRouteQueryModel(q)
	if err != nil {
		return fmt.Errorf("failed to convert route query to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save route query: %w", err)
	}
	return nil
}

// ListRecent retrieves route queries with pagination, newest first.
func (r *GormRouteQueryRepository) ListRecent(ctx context.Context, page, limit int) ([]*navigation.RouteQuery, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RouteQueryModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count route queries: %w", err)
	}

	var models []RouteQueryModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list route queries: %w", err)
	}

	queries := make([]*navigation.RouteQuery, len(models))
	for i, m := range models {
		q, err := toDomainRouteQuery(&m)
		if err != nil {
			return nil, 0, err
		}
		queries[i] = q
	}

	return queries, total, nil
}

// CountByStatus returns route query counts grouped by outcome.
func (r *GormRouteQueryRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&RouteQueryModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toRouteQueryModel(q *navigation.RouteQuery) (*RouteQueryModel, error) {
	locationJSON, err := json.Marshal(q.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}

	waypoints := q.Waypoints
	if waypoints == nil {
		waypoints = []navigation.Waypoint{}
	}
	waypointsJSON, err := json.Marshal(waypoints)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal waypoints: %w", err)
	}

	return &RouteQueryModel{
		ID:          q.ID,
		SessionID:   q.SessionID,
		Fingerprint: q.Fingerprint,
		Status:      string(q.Status),
		RouteCount:  q.RouteCount,
		Error:       truncate(q.Error, 1000),
		Cached:      q.Cached,
		DurationMs:  q.Duration.Milliseconds(),
		Location:    locationJSON,
		Waypoints:   waypointsJSON,
		CreatedAt:   q.CreatedAt,
	}, nil
}

func toDomainRouteQuery(m *RouteQueryModel) (*navigation.RouteQuery, error) {
	var loc navigation.UserLocation
	if err := json.Unmarshal(m.Location, &loc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal location: %w", err)
	}

	var waypoints []navigation.Waypoint
	if err := json.Unmarshal(m.Waypoints, &waypoints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal waypoints: %w", err)
	}

	return &navigation.RouteQuery{
		ID:          m.ID,
		SessionID:   m.SessionID,
		Fingerprint: m.Fingerprint,
		Status:      navigation.RouteQueryStatus(m.Status),
		RouteCount:  m.RouteCount,
		Error:       m.Error,
		Cached:      m.Cached,
		Duration:    time.Duration(m.DurationMs) * time.Millisecond,
		Location:    loc,
		Waypoints:   waypoints,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
