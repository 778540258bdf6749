// README: Address autocomplete and validation handlers (platform pass-through).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"courierdash/internal/modules/draft"
)

// AddressClient is the slice of the platform client the address endpoints use.
type AddressClient interface {
	AutocompleteAddress(ctx context.Context, text string) ([]draft.Address, error)
	ValidateAddress(ctx context.Context, street, zip string) (draft.Address, error)
}

type AddressHandler struct {
	platform AddressClient
}

func NewAddressHandler(platform AddressClient) *AddressHandler {
	return &AddressHandler{platform: platform}
}

func (h *AddressHandler) Autocomplete(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		writeError(c, http.StatusBadRequest, "missing q")
		return
	}
	addrs, err := h.platform.AutocompleteAddress(c.Request.Context(), q)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"suggestions": addrs})
}

func (h *AddressHandler) Validate(c *gin.Context) {
	street, zip := c.Query("street"), c.Query("zip")
	if street == "" {
		writeError(c, http.StatusBadRequest, "missing street")
		return
	}
	addr, err := h.platform.ValidateAddress(c.Request.Context(), street, zip)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, addr)
}
