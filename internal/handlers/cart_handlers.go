package handlers

import (
	"net/http"

	"github.com/01moynul/inkframe-golang/internal/cart"
	"github.com/01moynul/inkframe-golang/internal/checkout"
	"github.com/01moynul/inkframe-golang/internal/middleware"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Cart (signed-in user or anonymous session) ---
//

type AddToCartInput struct {
	ProductID int64              `json:"productId" binding:"required,gt=0"`
	Quantity  int                `json:"quantity" binding:"required,gte=1,lte=999"`
	Options   models.LineOptions `json:"options"`
}

type UpdateCartItemInput struct {
	// Quantity 0 removes the line.
	Quantity *int `json:"quantity" binding:"required,gte=0,lte=999"`
}

type cartResponse struct {
	Items []models.CartItem `json:"items"`
	cart.Totals
}

func (h *Handlers) writeCart(c *gin.Context) {
	items, err := h.Cart.GetItems(c.Request.Context(), middleware.CartOwner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{Items: items, Totals: cart.Summarize(items)})
}

// GetCart handles GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	h.writeCart(c)
}

// AddToCart handles POST /api/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if !bindJSON(c, &input) {
		return
	}

	item, err := h.Cart.AddItem(c.Request.Context(), middleware.CartOwner(c), input.ProductID, input.Quantity, input.Options)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateCartItem handles PATCH /api/cart/items/:id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input UpdateCartItemInput
	if !bindJSON(c, &input) {
		return
	}

	item, err := h.Cart.UpdateQuantity(c.Request.Context(), middleware.CartOwner(c), id, *input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"message": "item removed"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveCartItem handles DELETE /api/cart/items/:id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Cart.RemoveItem(c.Request.Context(), middleware.CartOwner(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed"})
}

// ClearCart handles DELETE /api/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), middleware.CartOwner(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

//
// --- Checkout ---
//

type CheckoutInput struct {
	AddressID     *int64  `json:"addressId" binding:"omitempty,gt=0"`
	PaymentMethod string  `json:"paymentMethod" binding:"required,max=40"`
	Notes         *string `json:"notes" binding:"omitempty,max=2000"`
}

// PlaceOrder handles POST /api/checkout
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var input CheckoutInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.Checkout.Checkout(c.Request.Context(), checkout.Request{
		UserID:        currentUserID(c),
		AddressID:     input.AddressID,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
