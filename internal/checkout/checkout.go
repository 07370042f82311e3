// Package checkout turns a user's cart into an order and its invoice.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/inkframe-golang/internal/cart"
	"github.com/01moynul/inkframe-golang/internal/events"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/payments"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrPaymentMethod   = errors.New("payment method is not available")
	ErrAddressNotFound = errors.New("delivery address not found")
)

// TaxRate is the VAT percentage applied to every order.
var TaxRate = decimal.NewFromInt(15)

// InvoiceTerm is the time between an order and its invoice due date.
const InvoiceTerm = 7 * 24 * time.Hour

const PaymentCard = "card"

// DefaultPaymentMethods apply when no payment settings are configured.
var DefaultPaymentMethods = []string{PaymentCard, "cash", "bank_transfer"}

type Repository interface {
	LockCartItems(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserAddress(ctx context.Context, userID, id int64) (*models.Address, error)
	ActivePaymentSettings(ctx context.Context) ([]models.PaymentSetting, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	AddOrderStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	AddNotification(ctx context.Context, n *models.Notification) error
	ClearCart(ctx context.Context, owner models.CartOwner) error
	SetOrderPaymentRef(ctx context.Context, id int64, ref string) error
	RunInTx(ctx context.Context, fn func(Repository) error) error
}

type storeRepository struct {
	*store.Store
}

func FromStore(s *store.Store) Repository {
	return storeRepository{s}
}

func (r storeRepository) RunInTx(ctx context.Context, fn func(Repository) error) error {
	return r.Store.WithTx(ctx, func(tx *store.Store) error {
		return fn(storeRepository{tx})
	})
}

// Mailer sends the order confirmation without blocking.
type Mailer interface {
	OrderPlaced(o *models.Order) bool
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, o *models.Order) (payments.Session, bool, error)
}

type Request struct {
	UserID        int64
	AddressID     *int64
	PaymentMethod string
	Notes         *string
}

type Result struct {
	Order      *models.Order   `json:"order"`
	Invoice    *models.Invoice `json:"invoice"`
	PaymentURL string          `json:"paymentUrl,omitempty"`
}

type Service struct {
	repo      Repository
	mailer    Mailer
	publisher events.Publisher
	payments  PaymentGateway
}

func NewService(repo Repository, mailer Mailer, publisher events.Publisher, gateway PaymentGateway) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{repo: repo, mailer: mailer, publisher: publisher, payments: gateway}
}

// Checkout places the order. Everything that writes to the database
// happens in one transaction with the cart rows locked, so a repeated
// submit sees an empty cart. Mail, events and the payment session are
// started only after commit.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	method := strings.TrimSpace(req.PaymentMethod)
	owner := models.UserOwner(req.UserID)
	result := &Result{}

	err := s.repo.RunInTx(ctx, func(tx Repository) error {
		// 1. --- Lock the cart ---
		items, err := tx.LockCartItems(ctx, owner)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		if err := checkPaymentMethod(ctx, tx, method); err != nil {
			return err
		}

		// 2. --- Totals ---
		subtotal := cart.Summarize(items).Subtotal
		tax := subtotal.Percent(TaxRate)
		total := subtotal.Add(tax)

		// 3. --- Customer and delivery ---
		user, err := tx.GetUser(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		delivery := models.DeliveryPickup
		var address *models.AddressSnapshot
		if req.AddressID != nil {
			a, err := tx.GetUserAddress(ctx, req.UserID, *req.AddressID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrAddressNotFound
				}
				return err
			}
			delivery = models.DeliveryShipping
			address = a.Snapshot()
		}

		// 4. --- Order ---
		order := &models.Order{
			UserID:          user.ID,
			CustomerName:    user.FullName,
			CustomerEmail:   user.Email,
			Items:           orderLines(items),
			Subtotal:        subtotal,
			Tax:             tax,
			Total:           total,
			Status:          models.OrderPending,
			PaymentStatus:   models.PaymentPending,
			PaymentMethod:   method,
			DeliveryMethod:  delivery,
			DeliveryAddress: address,
			Notes:           req.Notes,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		note := "Order placed"
		if err := tx.AddOrderStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID: order.ID,
			Status:  models.OrderPending,
			Note:    &note,
		}); err != nil {
			return err
		}

		// 5. --- Invoice ---
		invoice := &models.Invoice{
			OrderID:  order.ID,
			UserID:   user.ID,
			Subtotal: subtotal,
			Tax:      tax,
			Total:    total,
			Status:   models.InvoiceIssued,
			DueDate:  order.CreatedAt.Add(InvoiceTerm),
		}
		if err := tx.CreateInvoice(ctx, invoice); err != nil {
			return err
		}

		// 6. --- Notify and clear ---
		link := fmt.Sprintf("/account/orders/%d", order.ID)
		if err := tx.AddNotification(ctx, &models.Notification{
			UserID:  user.ID,
			Title:   "Order placed",
			Message: fmt.Sprintf("Your order %s for %s has been received.", order.OrderNumber, order.Total),
			Link:    &link,
		}); err != nil {
			return err
		}
		if err := tx.ClearCart(ctx, owner); err != nil {
			return err
		}

		result.Order, result.Invoice = order, invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", req.UserID).
		Str("order", result.Order.OrderNumber).
		Str("total", result.Order.Total.String()).
		Msg("order placed")

	s.afterCommit(ctx, result)
	return result, nil
}

// afterCommit runs the side channels. None of them can undo the order.
func (s *Service) afterCommit(ctx context.Context, result *Result) {
	order := result.Order
	if s.mailer != nil {
		s.mailer.OrderPlaced(order)
	}
	events.Emit(ctx, s.publisher, events.New(events.OrderPlaced, order.ID, map[string]any{
		"orderNumber": order.OrderNumber,
		"userId":      order.UserID,
		"total":       order.Total,
	}))

	if order.PaymentMethod != PaymentCard || s.payments == nil {
		return
	}
	session, ok, err := s.payments.CreateCheckoutSession(ctx, order)
	if err != nil {
		log.Warn().Err(err).Str("order", order.OrderNumber).Msg("failed to open card payment session")
		return
	}
	if !ok {
		return
	}
	result.PaymentURL = session.URL
	if err := s.repo.SetOrderPaymentRef(ctx, order.ID, session.ID); err != nil {
		log.Warn().Err(err).Str("order", order.OrderNumber).Msg("failed to store payment reference")
		return
	}
	order.PaymentRef = &session.ID
}

func checkPaymentMethod(ctx context.Context, repo Repository, method string) error {
	if method == "" {
		return ErrPaymentMethod
	}
	settings, err := repo.ActivePaymentSettings(ctx)
	if err != nil {
		return err
	}
	allowed := DefaultPaymentMethods
	if len(settings) > 0 {
		allowed = make([]string, 0, len(settings))
		for _, ps := range settings {
			allowed = append(allowed, ps.Method)
		}
	}
	for _, m := range allowed {
		if m == method {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPaymentMethod, method)
}

func orderLines(items []models.CartItem) models.OrderLines {
	lines := make(models.OrderLines, 0, len(items))
	for _, it := range items {
		lines = append(lines, models.OrderLine{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
			Total:     it.TotalPrice,
			Options:   it.Options,
		})
	}
	return lines
}
