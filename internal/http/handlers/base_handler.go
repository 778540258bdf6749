// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"courierdash/internal/backend"
	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/integrations"
	"courierdash/internal/modules/quote"
	"courierdash/internal/modules/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module errors onto HTTP statuses. Platform mutation
// failures pass the server's message through verbatim so the operator sees
// what the platform actually said.
func writeDomainError(c *gin.Context, err error) {
	var me *backend.MutationError
	switch {
	case errors.As(err, &me):
		writeError(c, http.StatusBadGateway, me.Message)
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, integrations.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, backend.ErrTransient):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, draft.ErrLocked),
		errors.Is(err, session.ErrSlotUnavailable),
		errors.Is(err, quote.ErrNotQuoted),
		errors.Is(err, quote.ErrNotReady):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
