// README: Live order handlers: tracking, status patches, cancellation, dispatch route.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courierdash/internal/backend"
	"courierdash/internal/maps"
	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/tracking"
	"courierdash/internal/types"
)

// OrderClient is the slice of the platform client the order endpoints use.
type OrderClient interface {
	Order(ctx context.Context, id string) (backend.OrderRecord, error)
	UpdateOrder(ctx context.Context, id string, patch backend.OrderPatch) error
	CancelOrder(ctx context.Context, id string) error
}

type OrderHandler struct {
	platform OrderClient
	trackers *tracking.Manager
	routes   *maps.RouteService // nil when no Maps key is configured
}

func NewOrderHandler(platform OrderClient, trackers *tracking.Manager, routes *maps.RouteService) *OrderHandler {
	return &OrderHandler{platform: platform, trackers: trackers, routes: routes}
}

func (h *OrderHandler) Get(c *gin.Context) {
	rec, err := h.platform.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

// Update forwards a partial order update to the platform. Mutations are never
// retried; a rejection comes back verbatim as a 502.
func (h *OrderHandler) Update(c *gin.Context) {
	var patch backend.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.platform.UpdateOrder(c.Request.Context(), c.Param("id"), patch); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	if err := h.platform.CancelOrder(c.Request.Context(), c.Param("id")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// trackResponse is the latest order record plus the error of the most recent
// refresh, when that refresh failed after a good fetch.
type trackResponse struct {
	backend.OrderRecord
	RefreshError string `json:"refresh_error,omitempty"`
}

// Track starts (or reuses) the poller for the order and returns its latest
// snapshot. A failed refresh never discards a record already held: the stale
// snapshot is served with the refresh error alongside it.
func (h *OrderHandler) Track(c *gin.Context) {
	p := h.trackers.Watch(c.Param("id"))
	rec, refreshErr := p.Latest()
	if rec.OrderID == "" {
		// No poll has landed yet; fetch once directly.
		var err error
		rec, err = h.platform.Order(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		refreshErr = nil
	}
	resp := trackResponse{OrderRecord: rec}
	if refreshErr != nil {
		resp.RefreshError = refreshErr.Error()
	}
	writeJSON(c, http.StatusOK, resp)
}

func (h *OrderHandler) PauseTracking(c *gin.Context) {
	if p, ok := h.trackers.Get(c.Param("id")); ok {
		p.Pause()
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) ResumeTracking(c *gin.Context) {
	if p, ok := h.trackers.Get(c.Param("id")); ok {
		p.Resume()
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) StopTracking(c *gin.Context) {
	h.trackers.Unwatch(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Route returns the pickup-to-delivery route for the tracking map, degrading
// to a straight line when Directions is unavailable.
func (h *OrderHandler) Route(c *gin.Context) {
	rec, err := h.platform.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	pickup, ok1 := pointOf(draft.Normalize(rec.Pickup, draft.PartyPickup).Address)
	delivery, ok2 := pointOf(draft.Normalize(rec.Delivery, draft.PartyDelivery).Address)
	if !ok1 || !ok2 {
		writeError(c, http.StatusConflict, "order addresses are not geocoded")
		return
	}

	if h.routes != nil {
		if route, err := h.routes.DispatchRoute(c.Request.Context(), pickup, delivery); err == nil {
			writeJSON(c, http.StatusOK, route)
			return
		}
	}
	writeJSON(c, http.StatusOK, maps.StraightLine(pickup, delivery))
}

func pointOf(a draft.Address) (types.Point, bool) {
	if !a.Resolved() {
		return types.Point{}, false
	}
	lat, err1 := strconv.ParseFloat(a.Lat, 64)
	lng, err2 := strconv.ParseFloat(a.Lon, 64)
	if err1 != nil || err2 != nil {
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
