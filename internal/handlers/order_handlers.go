package handlers

import (
	"errors"
	"net/http"

	"github.com/01moynul/inkframe-golang/internal/middleware"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/status"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type orderDetail struct {
	*models.Order
	History []models.OrderStatusHistory `json:"history"`
	Invoice *models.Invoice             `json:"invoice,omitempty"`
}

// withHistory attaches the status history and invoice to an order.
func (h *Handlers) withHistory(c *gin.Context, o *models.Order) (*orderDetail, error) {
	history, err := h.Store.OrderStatusHistory(c.Request.Context(), o.ID)
	if err != nil {
		return nil, err
	}
	detail := &orderDetail{Order: o, History: history}
	inv, err := h.Store.InvoiceForOrder(c.Request.Context(), o.ID)
	switch {
	case err == nil:
		detail.Invoice = inv
	case !errors.Is(err, store.ErrNotFound):
		log.Error().Err(err).Int64("order_id", o.ID).Str("request_id", middleware.GetRequestID(c)).
			Msg("failed to load invoice for order")
	}
	return detail, nil
}

//
// --- Client Orders & Invoices ---
//

// GetMyOrders handles GET /api/client/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	orders, err := h.Store.UserOrders(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetMyOrder handles GET /api/client/orders/:id. Another user's order is
// reported as not found.
func (h *Handlers) GetMyOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.Store.GetUserOrder(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	detail, err := h.withHistory(c, order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handlers) GetMyInvoices(c *gin.Context) {
	invoices, err := h.Store.UserInvoices(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *Handlers) GetMyInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.Store.GetUserInvoice(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

//
// --- Admin Orders ---
//

type UpdateOrderInput struct {
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`
	TrackingNumber *string `json:"trackingNumber" binding:"omitempty,max=100"`
}

type OrderStatusInput struct {
	Status        string  `json:"status" binding:"required_without=PaymentStatus"`
	PaymentStatus string  `json:"paymentStatus"`
	Note          *string `json:"note" binding:"omitempty,max=500"`
}

// AdminListOrders handles GET /api/admin/orders?status=
func (h *Handlers) AdminListOrders(c *gin.Context) {
	orders, err := h.Store.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handlers) AdminGetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.Store.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	detail, err := h.withHistory(c, order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// AdminUpdateOrder handles PUT /api/admin/orders/:id (notes and tracking only).
func (h *Handlers) AdminUpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input UpdateOrderInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.Store.UpdateOrderDetails(c.Request.Context(), id, store.OrderUpdate{
		Notes:          input.Notes,
		TrackingNumber: input.TrackingNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handlers) AdminDeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

// AdminSetOrderStatus handles PATCH /api/admin/orders/:id/status. An
// illegal transition is a 409; an unknown status is a 400.
func (h *Handlers) AdminSetOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input OrderStatusInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.Status.SetOrderStatus(c.Request.Context(), id, status.OrderChange{
		Status:        input.Status,
		PaymentStatus: input.PaymentStatus,
		Note:          input.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AdminListInvoices handles GET /api/admin/invoices?status=
func (h *Handlers) AdminListInvoices(c *gin.Context) {
	invoices, err := h.Store.ListInvoices(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}
