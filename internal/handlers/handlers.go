package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/01moynul/inkframe-golang/internal/auth"
	"github.com/01moynul/inkframe-golang/internal/cart"
	"github.com/01moynul/inkframe-golang/internal/checkout"
	"github.com/01moynul/inkframe-golang/internal/email"
	"github.com/01moynul/inkframe-golang/internal/events"
	"github.com/01moynul/inkframe-golang/internal/middleware"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/payments"
	"github.com/01moynul/inkframe-golang/internal/status"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/01moynul/inkframe-golang/internal/uploads"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    *store.Store
	Cart     *cart.Service
	Checkout *checkout.Service
	Status   *status.Manager
	Sessions *auth.SessionManager
	OIDC     *auth.OIDCProvider // nil when federated login is disabled
	Mailer   *email.Mailer
	Payments *payments.Gateway
	Uploads  *uploads.Storage
	Events   events.Publisher
	Cookies  middleware.Cookies

	FrontendURL string
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// currentUserID is only called behind RequireUser.
func currentUserID(c *gin.Context) int64 {
	id, _ := middleware.UserID(c)
	return id
}

// respondError maps domain errors onto HTTP status codes. Anything
// unrecognised is logged and reported as a 500 without details.
func respondError(c *gin.Context, err error) {
	code, msg := http.StatusInternalServerError, "internal server error"

	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, checkout.ErrAddressNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, store.ErrConflict):
		code, msg = http.StatusConflict, "already exists"
	case errors.Is(err, models.ErrInvalidTransition):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, cart.ErrForbidden):
		code, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		code, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, uploads.ErrTooLarge):
		code, msg = http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, models.ErrUnknownStatus),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidOwner),
		errors.Is(err, cart.ErrProductUnavailable),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrPaymentMethod),
		errors.Is(err, uploads.ErrUnsupportedType),
		errors.Is(err, uploads.ErrEmpty),
		errors.Is(err, payments.ErrInvalidWebhook):
		code, msg = http.StatusBadRequest, err.Error()
	}

	if code == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.JSON(code, gin.H{"error": msg})
}

// HealthCheck handles GET /api/health
func (h *Handlers) HealthCheck(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
