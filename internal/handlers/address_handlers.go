package handlers

import (
	"net/http"
	"strings"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Client address book ---
//

func (h *Handlers) ListAddresses(c *gin.Context) {
	addresses, err := h.Store.UserAddresses(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

// CreateAddress handles POST /api/client/addresses. The first address a
// user saves becomes their default.
func (h *Handlers) CreateAddress(c *gin.Context) {
	var address models.Address
	if !bindJSON(c, &address) {
		return
	}
	address.ID = 0
	address.UserID = currentUserID(c)
	address.Country = strings.ToUpper(address.Country)

	if err := h.Store.CreateAddress(c.Request.Context(), &address); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

// UpdateAddress handles PUT /api/client/addresses/:id
func (h *Handlers) UpdateAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	// 1. Ownership check doubles as the base for a partial update
	address, err := h.Store.GetUserAddress(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !bindJSON(c, address) {
		return
	}
	address.ID, address.UserID = id, userID
	address.Country = strings.ToUpper(address.Country)

	// 2. Write
	if err := h.Store.UpdateAddress(c.Request.Context(), address); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *Handlers) DeleteAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteAddress(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
}

// SetDefaultAddress handles PATCH /api/client/addresses/:id/default
func (h *Handlers) SetDefaultAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)
	if err := h.Store.SetDefaultAddress(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	address, err := h.Store.GetUserAddress(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}
