package handlers

import (
	"net/http"
	"time"

	"github.com/01moynul/inkframe-golang/internal/email"
	"github.com/01moynul/inkframe-golang/internal/events"
	"github.com/01moynul/inkframe-golang/internal/middleware"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

//
// --- Public forms: bookings, quotes, contact ---
//

// CreateBooking handles POST /api/bookings for users and guests alike.
func (h *Handlers) CreateBooking(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. --- Bind & Validate ---
	var booking models.Booking
	if !bindJSON(c, &booking) {
		return
	}
	if booking.Date < time.Now().Format(time.DateOnly) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed",
			"fields": gin.H{"date": "date must not be in the past"}})
		return
	}

	// 2. --- Resolve service and owner ---
	if booking.ServiceID != nil {
		service, err := h.Store.Services().Get(ctx, *booking.ServiceID)
		if err != nil {
			respondError(c, err)
			return
		}
		booking.ServiceName = service.Name
	}
	booking.ID = 0
	booking.Status = models.BookingPending
	booking.UserID = nil
	if userID, ok := middleware.UserID(c); ok {
		booking.UserID = &userID
	}

	// 3. --- Save ---
	if err := h.Store.Bookings().Create(ctx, &booking); err != nil {
		respondError(c, err)
		return
	}

	// 4. --- Side channels ---
	if booking.UserID != nil {
		h.notify(c, *booking.UserID, "Booking received",
			"We received your booking for "+booking.ServiceName+" on "+booking.Date+".", "/account/bookings")
	}
	h.Mailer.BookingReceived(&booking)
	events.Emit(ctx, h.Events, events.New(events.BookingCreated, booking.ID, booking))

	c.JSON(http.StatusCreated, booking)
}

// CreateQuote handles POST /api/quotes
func (h *Handlers) CreateQuote(c *gin.Context) {
	ctx := c.Request.Context()

	var quote models.QuoteRequest
	if !bindJSON(c, &quote) {
		return
	}
	quote.ID = 0
	quote.Status = models.QuoteNew
	quote.QuotedPrice = nil
	quote.UserID = nil
	if userID, ok := middleware.UserID(c); ok {
		quote.UserID = &userID
	}

	if err := h.Store.Quotes().Create(ctx, &quote); err != nil {
		respondError(c, err)
		return
	}

	if quote.UserID != nil {
		h.notify(c, *quote.UserID, "Quote request received",
			"We received your request for "+quote.ServiceType+" and will be in touch.", "/account")
	}
	h.Mailer.QuoteReceived(&quote)
	events.Emit(ctx, h.Events, events.New(events.QuoteCreated, quote.ID, quote))

	c.JSON(http.StatusCreated, quote)
}

type ContactInput struct {
	Name    string `json:"name" binding:"required,max=120"`
	Email   string `json:"email" binding:"required,email,max=190"`
	Phone   string `json:"phone" binding:"omitempty,max=30"`
	Subject string `json:"subject" binding:"omitempty,max=160"`
	Message string `json:"message" binding:"required,max=5000"`
}

// Contact handles POST /api/contact. Nothing is stored; the message is
// relayed to the studio inbox.
func (h *Handlers) Contact(c *gin.Context) {
	var input ContactInput
	if !bindJSON(c, &input) {
		return
	}
	sent := h.Mailer.ContactRelay(email.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Subject: input.Subject,
		Message: input.Message,
	})
	c.JSON(http.StatusAccepted, gin.H{"message": "thank you, we will get back to you soon", "sent": sent})
}

// notify records an in-app notification outside any transaction. Failures
// are logged; the triggering request has already succeeded.
func (h *Handlers) notify(c *gin.Context, userID int64, title, message, link string) {
	n := &models.Notification{UserID: userID, Title: title, Message: message, Link: &link}
	if err := h.Store.AddNotification(c.Request.Context(), n); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to add notification")
	}
}

//
// --- Client bookings ---
//

// GetMyBookings handles GET /api/client/bookings
func (h *Handlers) GetMyBookings(c *gin.Context) {
	bookings, err := h.Store.UserBookings(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

//
// --- Admin status changes ---
//

type StatusInput struct {
	Status string `json:"status" binding:"required"`
}

type QuoteStatusInput struct {
	Status      string        `json:"status" binding:"required"`
	QuotedPrice *models.Money `json:"quotedPrice"`
}

// AdminSetBookingStatus handles PATCH /api/admin/bookings/:id/status
func (h *Handlers) AdminSetBookingStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input StatusInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := h.Status.SetBookingStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// AdminSetQuoteStatus handles PATCH /api/admin/quotes/:id/status
func (h *Handlers) AdminSetQuoteStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input QuoteStatusInput
	if !bindJSON(c, &input) {
		return
	}
	if input.QuotedPrice != nil && input.QuotedPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed",
			"fields": gin.H{"quotedPrice": "quotedPrice must not be negative"}})
		return
	}
	quote, err := h.Status.SetQuoteStatus(c.Request.Context(), id, input.Status, input.QuotedPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
