// README: Customer lookup handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courierdash/internal/modules/customer"
)

type CustomerHandler struct {
	customers *customer.Service
}

func NewCustomerHandler(svc *customer.Service) *CustomerHandler {
	return &CustomerHandler{customers: svc}
}

// Lookup finds a customer by phone. An unknown phone is a normal outcome, not
// an error; found=false tells the form to stay on manual entry.
func (h *CustomerHandler) Lookup(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		writeError(c, http.StatusBadRequest, "missing phone")
		return
	}
	rec, found, err := h.customers.Lookup(c.Request.Context(), phone)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"found": found, "customer": rec})
}
