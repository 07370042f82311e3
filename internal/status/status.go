// Package status moves orders, bookings and quotes through their
// lifecycles. Every change is checked against the transition tables in
// models; the database write, history row, invoice sync and notification
// share one transaction, and the e-mail and event follow after commit.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/01moynul/inkframe-golang/internal/events"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	LockOrder(ctx context.Context, id int64) (*models.Order, error)
	SetOrderStatus(ctx context.Context, id int64, status models.OrderStatus, payment models.PaymentStatus) error
	SetOrderPaymentRef(ctx context.Context, id int64, ref string) error
	AddOrderStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error
	SetInvoiceStatus(ctx context.Context, orderID int64, status models.InvoiceStatus, at time.Time) error

	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	LockBooking(ctx context.Context, id int64) (*models.Booking, error)
	SetBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error

	GetQuote(ctx context.Context, id int64) (*models.QuoteRequest, error)
	LockQuote(ctx context.Context, id int64) (*models.QuoteRequest, error)
	SetQuoteStatus(ctx context.Context, id int64, status models.QuoteStatus, price *models.Money) error

	AddNotification(ctx context.Context, n *models.Notification) error
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

type Mailer interface {
	OrderStatus(o *models.Order) bool
	BookingStatus(b *models.Booking) bool
	QuoteStatus(q *models.QuoteRequest) bool
}

type Manager struct {
	repo      Repository
	mailer    Mailer
	publisher events.Publisher
	now       func() time.Time
}

func NewManager(repo Repository, mailer Mailer, publisher events.Publisher) *Manager {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Manager{repo: repo, mailer: mailer, publisher: publisher, now: time.Now}
}

// OrderChange is a requested order update. Empty fields keep the current value.
type OrderChange struct {
	Status        string
	PaymentStatus string
	Note          *string
}

// SetOrderStatus applies change to order id. Re-applying the current
// statuses is accepted and writes nothing.
func (m *Manager) SetOrderStatus(ctx context.Context, id int64, change OrderChange) (*models.Order, error) {
	var order *models.Order
	changed := false

	err := m.repo.RunInTx(ctx, func(tx Repository) error {
		current, err := tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}

		next, payment := current.Status, current.PaymentStatus
		if change.Status != "" {
			if next, err = models.ParseOrderStatus(change.Status); err != nil {
				return err
			}
		}
		if change.PaymentStatus != "" {
			if payment, err = models.ParsePaymentStatus(change.PaymentStatus); err != nil {
				return err
			}
		}
		if err := current.Status.TransitionTo(next); err != nil {
			return err
		}
		if err := current.PaymentStatus.TransitionTo(payment); err != nil {
			return err
		}

		if next == current.Status && payment == current.PaymentStatus {
			order = current
			return nil
		}
		changed = true

		if err := tx.SetOrderStatus(ctx, id, next, payment); err != nil {
			return err
		}
		if next != current.Status {
			if err := tx.AddOrderStatusHistory(ctx, &models.OrderStatusHistory{OrderID: id, Status: next, Note: change.Note}); err != nil {
				return err
			}
		}
		if err := m.syncInvoice(ctx, tx, current, next, payment); err != nil {
			return err
		}

		if err := tx.AddNotification(ctx, orderNotification(current, next, payment)); err != nil {
			return err
		}

		order, err = tx.GetOrder(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		log.Info().Int64("order_id", id).Str("status", string(order.Status)).
			Str("payment_status", string(order.PaymentStatus)).Msg("order status changed")
		m.orderChanged(ctx, order)
	}
	return order, nil
}

// MarkPaid records a confirmed card payment. Already-paid orders are left alone.
func (m *Manager) MarkPaid(ctx context.Context, orderID int64, ref string) (*models.Order, error) {
	o, err := m.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == models.PaymentPaid {
		return o, nil
	}
	if ref != "" && (o.PaymentRef == nil || *o.PaymentRef != ref) {
		if err := m.repo.SetOrderPaymentRef(ctx, orderID, ref); err != nil {
			return nil, err
		}
	}
	note := "Card payment confirmed"
	return m.SetOrderStatus(ctx, orderID, OrderChange{PaymentStatus: string(models.PaymentPaid), Note: &note})
}

// syncInvoice keeps the invoice in step with its order.
func (m *Manager) syncInvoice(ctx context.Context, tx Repository, prev *models.Order, next models.OrderStatus, payment models.PaymentStatus) error {
	switch {
	case payment == models.PaymentRefunded && prev.PaymentStatus != models.PaymentRefunded,
		next == models.OrderCancelled && prev.Status != models.OrderCancelled:
		return tx.SetInvoiceStatus(ctx, prev.ID, models.InvoiceCancelled, m.now())
	case payment == models.PaymentPaid && prev.PaymentStatus != models.PaymentPaid &&
		prev.Status != models.OrderCancelled:
		return tx.SetInvoiceStatus(ctx, prev.ID, models.InvoicePaid, m.now())
	}
	return nil
}

func orderNotification(o *models.Order, next models.OrderStatus, payment models.PaymentStatus) *models.Notification {
	link := fmt.Sprintf("/account/orders/%d", o.ID)
	msg := fmt.Sprintf("Your order %s is now %s.", o.OrderNumber, next)
	if next == o.Status {
		msg = fmt.Sprintf("Payment for order %s is now %s.", o.OrderNumber, payment)
	}
	return &models.Notification{UserID: o.UserID, Title: "Order update", Message: msg, Link: &link}
}

func (m *Manager) orderChanged(ctx context.Context, o *models.Order) {
	if m.mailer != nil {
		m.mailer.OrderStatus(o)
	}
	events.Emit(ctx, m.publisher, events.New(events.OrderStatusChanged, o.ID, map[string]any{
		"orderNumber":   o.OrderNumber,
		"status":        o.Status,
		"paymentStatus": o.PaymentStatus,
	}))
}

func (m *Manager) SetBookingStatus(ctx context.Context, id int64, raw string) (*models.Booking, error) {
	next, err := models.ParseBookingStatus(raw)
	if err != nil {
		return nil, err
	}

	var booking *models.Booking
	changed := false
	err = m.repo.RunInTx(ctx, func(tx Repository) error {
		current, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := current.Status.TransitionTo(next); err != nil {
			return err
		}
		if next == current.Status {
			booking = current
			return nil
		}
		changed = true

		if err := tx.SetBookingStatus(ctx, id, next); err != nil {
			return err
		}
		if current.UserID != nil {
			link := "/account/bookings"
			if err := tx.AddNotification(ctx, &models.Notification{
				UserID:  *current.UserID,
				Title:   "Booking update",
				Message: fmt.Sprintf("Your %s booking on %s is now %s.", current.ServiceName, current.Date, next),
				Link:    &link,
			}); err != nil {
				return err
			}
		}
		booking, err = tx.GetBooking(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		if m.mailer != nil {
			m.mailer.BookingStatus(booking)
		}
		events.Emit(ctx, m.publisher, events.New(events.BookingStatusChanged, booking.ID, map[string]any{"status": booking.Status}))
	}
	return booking, nil
}

// SetQuoteStatus moves a quote and optionally records the quoted price.
func (m *Manager) SetQuoteStatus(ctx context.Context, id int64, raw string, price *models.Money) (*models.QuoteRequest, error) {
	next, err := models.ParseQuoteStatus(raw)
	if err != nil {
		return nil, err
	}

	var quote *models.QuoteRequest
	changed := false
	err = m.repo.RunInTx(ctx, func(tx Repository) error {
		current, err := tx.LockQuote(ctx, id)
		if err != nil {
			return err
		}
		if err := current.Status.TransitionTo(next); err != nil {
			return err
		}
		if next == current.Status && price == nil {
			quote = current
			return nil
		}
		changed = next != current.Status

		if err := tx.SetQuoteStatus(ctx, id, next, price); err != nil {
			return err
		}
		if changed && current.UserID != nil {
			link := "/account"
			if err := tx.AddNotification(ctx, &models.Notification{
				UserID:  *current.UserID,
				Title:   "Quote update",
				Message: fmt.Sprintf("Your quote request for %s is now %s.", current.ServiceType, next),
				Link:    &link,
			}); err != nil {
				return err
			}
		}
		quote, err = tx.GetQuote(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		if m.mailer != nil {
			m.mailer.QuoteStatus(quote)
		}
		events.Emit(ctx, m.publisher, events.New(events.QuoteStatusChanged, quote.ID, map[string]any{"status": quote.Status}))
	}
	return quote, nil
}
