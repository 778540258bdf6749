// README: Pasted-text contact extraction handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courierdash/internal/parse"
)

type ParseHandler struct {
	heuristic parse.ContactParser
	ai        parse.ContactParser // nil when no Gemini key is configured
}

func NewParseHandler(ai parse.ContactParser) *ParseHandler {
	return &ParseHandler{heuristic: parse.HeuristicParser{}, ai: ai}
}

type parseReq struct {
	Text string `json:"text"`
}

// Contact extracts contact fields from pasted text. The regex pass is free and
// usually enough; the model only runs when it comes back empty-handed.
func (h *ParseHandler) Contact(c *gin.Context) {
	var req parseReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		writeError(c, http.StatusBadRequest, "missing text")
		return
	}

	contact, _ := h.heuristic.ParseContact(c.Request.Context(), req.Text)
	if h.ai != nil && (contact.Phone == "" || contact.Address == "") {
		if aiContact, err := h.ai.ParseContact(c.Request.Context(), req.Text); err == nil {
			contact = merge(contact, aiContact)
		}
	}
	writeJSON(c, http.StatusOK, contact)
}

// merge prefers heuristic matches and fills gaps from the model.
func merge(a, b parse.Contact) parse.Contact {
	if a.Name == "" {
		a.Name = b.Name
	}
	if a.Phone == "" {
		a.Phone = b.Phone
	}
	if a.Address == "" {
		a.Address = b.Address
	}
	if a.Apt == "" {
		a.Apt = b.Apt
	}
	return a
}
