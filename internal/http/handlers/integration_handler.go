// README: Integration settings handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courierdash/internal/http/middleware"
	"courierdash/internal/modules/integrations"
)

type IntegrationHandler struct {
	settings *integrations.Service
}

func NewIntegrationHandler(svc *integrations.Service) *IntegrationHandler {
	return &IntegrationHandler{settings: svc}
}

func (h *IntegrationHandler) Get(c *gin.Context) {
	st, err := h.settings.Get(c.Request.Context(), middleware.Caller(c).Account)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (h *IntegrationHandler) Save(c *gin.Context) {
	var st integrations.Settings
	if err := c.ShouldBindJSON(&st); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	// The caller's account always wins over whatever the body claims.
	st.AccountID = middleware.Caller(c).Account
	saved, err := h.settings.Save(c.Request.Context(), st)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, saved)
}

func (h *IntegrationHandler) RotateAPIKey(c *gin.Context) {
	st, err := h.settings.RotateAPIKey(c.Request.Context(), middleware.Caller(c).Account)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}
