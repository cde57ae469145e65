package handler

import (
	"errors"
	"io"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/application"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StateStream hands out subscriptions to navigation state snapshots.
type StateStream interface {
	Subscribe() (<-chan navigation.NavigationState, func())
}

// PushLocationRequest carries a fix from the host. When SessionID is set the
// fix is rejected if that session was replaced.
type PushLocationRequest struct {
	SessionID *uuid.UUID              `json:"sessionId"`
	Location  navigation.UserLocation `json:"location" binding:"required"`
}

// NavigationHandler handles HTTP requests for navigation operations.
type NavigationHandler struct {
	service *application.NavigationService
	stream  StateStream
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(service *application.NavigationService, stream StateStream) *NavigationHandler {
	return &NavigationHandler{service: service, stream: stream}
}

// RegisterRoutes registers all navigation routes on the given router group.
func (h *NavigationHandler) RegisterRoutes(r *gin.RouterGroup) {
	nav := r.Group("/api/v1/navigation")
	{
		nav.GET("/core-options", h.GetCoreOptions)
		nav.PUT("/core-options", h.ApplyCoreOptions)
		nav.GET("/navigation-options", h.GetNavigationOptions)
		nav.PUT("/navigation-options", h.ApplyNavigationOptions)
		nav.POST("/routes", h.GetRoutes)
		nav.POST("/start", h.StartNavigation)
		nav.POST("/stop", h.StopNavigation)
		nav.POST("/replace-route", h.ReplaceRoute)
		nav.POST("/advance", h.AdvanceToNextStep)
		nav.POST("/locations", h.PushLocation)
		nav.GET("/state", h.GetState)
		nav.GET("/events", h.StreamEvents)
	}
}

// GetCoreOptions handles GET /api/v1/navigation/core-options.
func (h *NavigationHandler) GetCoreOptions(c *gin.Context) {
	opts, err := h.service.CoreOptions()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, opts)
}

// ApplyCoreOptions handles PUT /api/v1/navigation/core-options.
func (h *NavigationHandler) ApplyCoreOptions(c *gin.Context) {
	var opts navigation.CoreOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ApplyCoreOptions(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetNavigationOptions handles GET /api/v1/navigation/navigation-options.
func (h *NavigationHandler) GetNavigationOptions(c *gin.Context) {
	response.Success(c, h.service.NavigationOptions())
}

// ApplyNavigationOptions handles PUT /api/v1/navigation/navigation-options.
func (h *NavigationHandler) ApplyNavigationOptions(c *gin.Context) {
	var opts navigation.NavigationOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ApplyNavigationOptions(c.Request.Context(), opts); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, opts)
}

// GetRoutes handles POST /api/v1/navigation/routes.
func (h *NavigationHandler) GetRoutes(c *gin.Context) {
	var req application.GetRoutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	routes, err := h.service.GetRoutes(c.Request.Context(), req.InitialLocation, req.Waypoints)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, routes)
}

// StartNavigation handles POST /api/v1/navigation/start.
func (h *NavigationHandler) StartNavigation(c *gin.Context) {
	var req application.StartNavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.StartNavigation(c.Request.Context(), req.Route, req.Config); err != nil {
		response.Error(c, err)
		return
	}
	h.respondState(c)
}

// StopNavigation handles POST /api/v1/navigation/stop. An empty body leaves
// the stop flag unset.
func (h *NavigationHandler) StopNavigation(c *gin.Context) {
	var req application.StopNavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.StopNavigation(c.Request.Context(), req.StopLocationUpdates); err != nil {
		response.Error(c, err)
		return
	}
	h.respondState(c)
}

// ReplaceRoute handles POST /api/v1/navigation/replace-route.
func (h *NavigationHandler) ReplaceRoute(c *gin.Context) {
	var req application.StartNavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ReplaceRoute(c.Request.Context(), req.Route, req.Config); err != nil {
		response.Error(c, err)
		return
	}
	h.respondState(c)
}

// AdvanceToNextStep handles POST /api/v1/navigation/advance.
func (h *NavigationHandler) AdvanceToNextStep(c *gin.Context) {
	if err := h.service.AdvanceToNextStep(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	h.respondState(c)
}

// PushLocation handles POST /api/v1/navigation/locations.
func (h *NavigationHandler) PushLocation(c *gin.Context) {
	var req PushLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.PushLocation(c.Request.Context(), req.SessionID, req.Location); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"accepted": true})
}

// GetState handles GET /api/v1/navigation/state.
func (h *NavigationHandler) GetState(c *gin.Context) {
	h.respondState(c)
}

// StreamEvents handles GET /api/v1/navigation/events as a server-sent event
// stream. The current snapshot is sent first when a session exists.
func (h *NavigationHandler) StreamEvents(c *gin.Context) {
	states, unsubscribe := h.stream.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	if state, err := h.service.State(c.Request.Context()); err == nil {
		c.SSEvent("state", state)
		c.Writer.Flush()
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case state, ok := <-states:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		}
	})
}

func (h *NavigationHandler) respondState(c *gin.Context) {
	state, err := h.service.State(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}
