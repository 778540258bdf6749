// README: Draft session handlers; the order form talks to these.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courierdash/internal/backend"
	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/session"
)

// OrderFetcher loads an existing order for edit sessions.
type OrderFetcher interface {
	Order(ctx context.Context, id string) (backend.OrderRecord, error)
}

type DraftHandler struct {
	sessions *session.Registry
	deps     session.Deps
	orders   OrderFetcher
	defaults draft.Defaults
}

func NewDraftHandler(sessions *session.Registry, deps session.Deps, orders OrderFetcher, defaults draft.Defaults) *DraftHandler {
	return &DraftHandler{sessions: sessions, deps: deps, orders: orders, defaults: defaults}
}

type createDraftReq struct {
	OrderID  string `json:"order_id"`
	Autofill *bool  `json:"autofill"`
}

// Create opens a form session: a blank new-order draft, or an edit draft
// hydrated from an existing order when order_id is given.
func (h *DraftHandler) Create(c *gin.Context) {
	var req createDraftReq
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	autofill := req.Autofill == nil || *req.Autofill

	var s *session.Session
	if req.OrderID != "" {
		rec, err := h.orders.Order(c.Request.Context(), req.OrderID)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		s = session.HydrateFromOrder(session.NewID(), h.deps, rec, autofill)
	} else {
		s = session.New(session.NewID(), h.deps, h.defaults, autofill)
	}
	h.sessions.Add(s)
	writeJSON(c, http.StatusCreated, s.Snapshot())
}

func (h *DraftHandler) Get(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(c, http.StatusOK, s.Snapshot())
}

// Delete abandons the session. Drafts are never persisted.
func (h *DraftHandler) Delete(c *gin.Context) {
	h.sessions.Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// UpdateParty patches the pickup or delivery section.
func (h *DraftHandler) UpdateParty(c *gin.Context) {
	s, kind, ok := h.sessionAndKind(c)
	if !ok {
		return
	}
	var patch draft.PartyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	snap, err := s.UpdateParty(c.Request.Context(), kind, patch)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, snap)
}

// ResetParty restores a section to its source defaults.
func (h *DraftHandler) ResetParty(c *gin.Context) {
	s, kind, ok := h.sessionAndKind(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, s.ResetParty(c.Request.Context(), kind))
}

// UpdateTimeframe patches extensions and ready-by/deadline times.
func (h *DraftHandler) UpdateTimeframe(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var patch draft.TimeframePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	snap, err := s.UpdateTimeframe(c.Request.Context(), patch)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, snap)
}

type setDateReq struct {
	Date string `json:"date"` // MM-DD-YYYY
}

func (h *DraftHandler) SetDate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req setDateReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" {
		writeError(c, http.StatusBadRequest, "missing date")
		return
	}
	if _, err := time.Parse("01-02-2006", req.Date); err != nil {
		writeError(c, http.StatusBadRequest, "date must be MM-DD-YYYY")
		return
	}
	snap, err := s.SetDate(c.Request.Context(), req.Date)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, snap)
}

type setServiceReq struct {
	Service string `json:"service"`
}

func (h *DraftHandler) SetService(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req setServiceReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Service == "" {
		writeError(c, http.StatusBadRequest, "missing service")
		return
	}
	snap, err := s.SetService(c.Request.Context(), req.Service)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, snap)
}

type selectSlotReq struct {
	Service string    `json:"service"`
	Start   time.Time `json:"start"`
}

func (h *DraftHandler) SelectSlot(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req selectSlotReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Service == "" {
		writeError(c, http.StatusBadRequest, "missing service or start")
		return
	}
	snap, err := s.SelectSlot(c.Request.Context(), req.Service, req.Start)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, snap)
}

// Submit books the order and closes the session.
func (h *DraftHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, err := s.Submit(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	h.sessions.Remove(s.ID())
	writeJSON(c, http.StatusOK, gin.H{"order_id": id})
}

// Acknowledge clears a surfaced quote/submit failure.
func (h *DraftHandler) Acknowledge(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, s.Reacknowledge(c.Request.Context()))
}

func (h *DraftHandler) session(c *gin.Context) (*session.Session, bool) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}

func (h *DraftHandler) sessionAndKind(c *gin.Context) (*session.Session, draft.PartyKind, bool) {
	s, ok := h.session(c)
	if !ok {
		return nil, "", false
	}
	switch c.Param("section") {
	case "pickup":
		return s, draft.PartyPickup, true
	case "delivery":
		return s, draft.PartyDelivery, true
	}
	writeError(c, http.StatusBadRequest, "section must be pickup or delivery")
	return nil, "", false
}
