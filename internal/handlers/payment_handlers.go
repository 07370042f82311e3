package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxWebhookBody is the largest event payload accepted from the provider.
const maxWebhookBody = 64 << 10

// PaymentWebhook handles POST /api/payments/webhook. A verified, paid
// checkout session marks its order paid; every other event is acknowledged
// and ignored.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	// 1. Read the raw body; the signature covers the exact bytes
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	// 2. Verify
	completion, ok, err := h.Payments.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Warn().Err(err).Msg("rejected payment webhook")
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	// 3. Mark the order paid
	order, err := h.Status.MarkPaid(c.Request.Context(), completion.OrderID, completion.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// nothing to retry for an order that no longer exists
			log.Warn().Int64("order_id", completion.OrderID).Msg("payment webhook for unknown order")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if errors.Is(err, models.ErrInvalidTransition) {
			// e.g. already refunded; a retry would fail the same way
			log.Warn().Err(err).Int64("order_id", completion.OrderID).Msg("payment webhook ignored")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		respondError(c, err)
		return
	}

	log.Info().Str("order_number", order.OrderNumber).Str("session_id", completion.SessionID).Msg("card payment confirmed")
	c.JSON(http.StatusOK, gin.H{"received": true})
}
