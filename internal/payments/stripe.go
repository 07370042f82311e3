// Package payments creates hosted card-payment sessions and reads the
// provider's webhooks.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var ErrInvalidWebhook = errors.New("invalid payment webhook")

const eventCheckoutCompleted = "checkout.session.completed"

type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	FrontendURL   string
}

// Session is a hosted payment page opened for one order.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Completion reports that an order was paid.
type Completion struct {
	OrderID   int64
	SessionID string
}

type Gateway struct {
	api           *client.API
	webhookSecret string
	currency      string
	frontendURL   string
}

func NewGateway(cfg Config) *Gateway {
	g := &Gateway{
		webhookSecret: cfg.WebhookSecret,
		currency:      strings.ToLower(cfg.Currency),
		frontendURL:   strings.TrimRight(cfg.FrontendURL, "/"),
	}
	if g.currency == "" {
		g.currency = "sar"
	}
	if cfg.SecretKey != "" {
		g.api = &client.API{}
		g.api.Init(cfg.SecretKey, nil)
	}
	return g
}

func (g *Gateway) Configured() bool {
	return g != nil && g.api != nil
}

// CreateCheckoutSession opens a hosted payment page for the order total.
// ok is false when no provider is configured.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, o *models.Order) (Session, bool, error) {
	if !g.Configured() {
		log.Info().Str("order", o.OrderNumber).Msg("payment provider not configured, skipping card session")
		return Session{}, false, nil
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(o.OrderNumber),
		CustomerEmail:     stripe.String(o.CustomerEmail),
		SuccessURL:        stripe.String(g.returnURL("success", o)),
		CancelURL:         stripe.String(g.returnURL("cancelled", o)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order " + o.OrderNumber),
					},
					UnitAmount: stripe.Int64(MinorUnits(o.Total)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.FormatInt(o.ID, 10))
	params.AddMetadata("order_number", o.OrderNumber)

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, false, fmt.Errorf("create checkout session: %w", err)
	}
	return Session{ID: s.ID, URL: s.URL}, true, nil
}

func (g *Gateway) returnURL(result string, o *models.Order) string {
	q := url.Values{}
	q.Set("order", o.OrderNumber)
	return fmt.Sprintf("%s/checkout/%s?%s", g.frontendURL, result, q.Encode())
}

// ParseWebhook verifies the signature and extracts a paid checkout session.
// ok is false for events that need no action.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (Completion, bool, error) {
	if g == nil || g.webhookSecret == "" {
		return Completion{}, false, fmt.Errorf("%w: webhook secret not configured", ErrInvalidWebhook)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Completion{}, false, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	if string(event.Type) != eventCheckoutCompleted {
		return Completion{}, false, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return Completion{}, false, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return Completion{}, false, nil
	}
	orderID, err := strconv.ParseInt(s.Metadata["order_id"], 10, 64)
	if err != nil {
		return Completion{}, false, fmt.Errorf("%w: missing order_id metadata", ErrInvalidWebhook)
	}
	return Completion{OrderID: orderID, SessionID: s.ID}, true, nil
}

// MinorUnits converts 230.00 into 23000.
func MinorUnits(m models.Money) int64 {
	return m.Decimal.Shift(2).Round(0).IntPart()
}
