package handler

import (
	"strconv"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/application"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/response"
	"github.com/gin-gonic/gin"
)

// RouteQueryHandler serves the route query log.
type RouteQueryHandler struct {
	service *application.NavigationService
}

// NewRouteQueryHandler creates a new RouteQueryHandler.
func NewRouteQueryHandler(service *application.NavigationService) *RouteQueryHandler {
	return &RouteQueryHandler{service: service}
}

// RegisterRoutes registers route query log routes.
func (h *RouteQueryHandler) RegisterRoutes(r *gin.RouterGroup) {
	queries := r.Group("/api/v1/navigation/queries")
	{
		queries.GET("", h.ListQueries)
		queries.GET("/stats", h.QueryStats)
	}
}

// ListQueries handles GET /api/v1/navigation/queries.
func (h *RouteQueryHandler) ListQueries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	queries, total, err := h.service.ListRouteQueries(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, queries, total, page, limit)
}

// QueryStats handles GET /api/v1/navigation/queries/stats.
func (h *RouteQueryHandler) QueryStats(c *gin.Context) {
	stats, err := h.service.RouteQueryStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
