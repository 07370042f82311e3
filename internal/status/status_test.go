package status

import (
	"context"
	"testing"
	"time"

	"github.com/01moynul/inkframe-golang/internal/events"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	orders        map[int64]*models.Order
	bookings      map[int64]*models.Booking
	quotes        map[int64]*models.QuoteRequest
	history       []models.OrderStatusHistory
	invoices      map[int64]models.InvoiceStatus
	notifications []models.Notification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: map[int64]*models.Order{
			1: {ID: 1, OrderNumber: "ORD-1", UserID: 7, Status: models.OrderPending, PaymentStatus: models.PaymentPending},
		},
		bookings: map[int64]*models.Booking{},
		quotes:   map[int64]*models.QuoteRequest{},
		invoices: map[int64]models.InvoiceStatus{1: models.InvoiceIssued},
	}
}

func (r *fakeRepo) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	return r.GetOrder(ctx, id)
}

func (r *fakeRepo) SetOrderStatus(_ context.Context, id int64, s models.OrderStatus, p models.PaymentStatus) error {
	r.orders[id].Status, r.orders[id].PaymentStatus = s, p
	return nil
}

func (r *fakeRepo) SetOrderPaymentRef(_ context.Context, id int64, ref string) error {
	r.orders[id].PaymentRef = &ref
	return nil
}

func (r *fakeRepo) AddOrderStatusHistory(_ context.Context, h *models.OrderStatusHistory) error {
	r.history = append(r.history, *h)
	return nil
}

func (r *fakeRepo) SetInvoiceStatus(_ context.Context, orderID int64, s models.InvoiceStatus, _ time.Time) error {
	if _, ok := r.invoices[orderID]; ok {
		r.invoices[orderID] = s
	}
	return nil
}

func (r *fakeRepo) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) LockBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return r.GetBooking(ctx, id)
}

func (r *fakeRepo) SetBookingStatus(_ context.Context, id int64, s models.BookingStatus) error {
	r.bookings[id].Status = s
	return nil
}

func (r *fakeRepo) GetQuote(_ context.Context, id int64) (*models.QuoteRequest, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeRepo) LockQuote(ctx context.Context, id int64) (*models.QuoteRequest, error) {
	return r.GetQuote(ctx, id)
}

func (r *fakeRepo) SetQuoteStatus(_ context.Context, id int64, s models.QuoteStatus, price *models.Money) error {
	r.quotes[id].Status = s
	if price != nil {
		r.quotes[id].QuotedPrice = price
	}
	return nil
}

func (r *fakeRepo) AddNotification(_ context.Context, n *models.Notification) error {
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeRepo) RunInTx(_ context.Context, fn func(Repository) error) error {
	return fn(r)
}

type fakeMailer struct{ orders, bookings, quotes int }

func (m *fakeMailer) OrderStatus(*models.Order) bool        { m.orders++; return true }
func (m *fakeMailer) BookingStatus(*models.Booking) bool    { m.bookings++; return true }
func (m *fakeMailer) QuoteStatus(*models.QuoteRequest) bool { m.quotes++; return true }

type fakePublisher struct{ types []string }

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.types = append(p.types, e.Type)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func TestSetOrderStatusWritesHistoryAndNotifies(t *testing.T) {
	repo, mailer, pub := newFakeRepo(), &fakeMailer{}, &fakePublisher{}
	m := NewManager(repo, mailer, pub)

	note := "printing started"
	o, err := m.SetOrderStatus(context.Background(), 1, OrderChange{Status: "processing", Note: &note})
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, o.Status)

	require.Len(t, repo.history, 1)
	assert.Equal(t, models.OrderProcessing, repo.history[0].Status)
	assert.Equal(t, &note, repo.history[0].Note)
	require.Len(t, repo.notifications, 1)
	assert.Equal(t, int64(7), repo.notifications[0].UserID)
	assert.Equal(t, 1, mailer.orders)
	assert.Equal(t, []string{events.OrderStatusChanged}, pub.types)
}

func TestSetOrderStatusRejectsIllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   models.OrderStatus
		change OrderChange
		err    error
	}{
		{"skip ahead", models.OrderPending, OrderChange{Status: "delivered"}, models.ErrInvalidTransition},
		{"reopen cancelled", models.OrderCancelled, OrderChange{Status: "pending"}, models.ErrInvalidTransition},
		{"cancel shipped", models.OrderShipped, OrderChange{Status: "cancelled"}, models.ErrInvalidTransition},
		{"refund unpaid", models.OrderPending, OrderChange{PaymentStatus: "refunded"}, models.ErrInvalidTransition},
		{"unknown", models.OrderPending, OrderChange{Status: "lost"}, models.ErrUnknownStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.orders[1].Status = tt.from
			mailer := &fakeMailer{}

			_, err := NewManager(repo, mailer, nil).SetOrderStatus(context.Background(), 1, tt.change)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.from, repo.orders[1].Status)
			assert.Empty(t, repo.history)
			assert.Zero(t, mailer.orders)
		})
	}
}

func TestSetOrderStatusSameStatusIsNoop(t *testing.T) {
	repo, mailer := newFakeRepo(), &fakeMailer{}
	o, err := NewManager(repo, mailer, nil).SetOrderStatus(context.Background(), 1, OrderChange{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Empty(t, repo.history)
	assert.Empty(t, repo.notifications)
	assert.Zero(t, mailer.orders)
}

func TestInvoiceFollowsOrder(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepo()
	m := NewManager(repo, nil, nil)
	_, err := m.SetOrderStatus(ctx, 1, OrderChange{PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, repo.invoices[1])
	assert.Empty(t, repo.history, "payment-only change keeps the order status history unchanged")

	_, err = m.SetOrderStatus(ctx, 1, OrderChange{PaymentStatus: "refunded"})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCancelled, repo.invoices[1])

	repo = newFakeRepo()
	m = NewManager(repo, nil, nil)
	_, err = m.SetOrderStatus(ctx, 1, OrderChange{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCancelled, repo.invoices[1])
}

func TestLatePaymentKeepsCancelledInvoice(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	m := NewManager(repo, nil, nil)

	_, err := m.SetOrderStatus(ctx, 1, OrderChange{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, models.InvoiceCancelled, repo.invoices[1])

	o, err := m.MarkPaid(ctx, 1, "cs_late")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, models.InvoiceCancelled, repo.invoices[1])
}

func TestMarkPaidAfterRefundIsRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[1].PaymentStatus = models.PaymentRefunded
	m := NewManager(repo, nil, nil)

	_, err := m.MarkPaid(context.Background(), 1, "cs_1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, models.PaymentRefunded, repo.orders[1].PaymentStatus)
}

func TestMarkPaid(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo, nil, nil)

	o, err := m.MarkPaid(context.Background(), 1, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)
	require.NotNil(t, o.PaymentRef)
	assert.Equal(t, "cs_1", *o.PaymentRef)
	assert.Equal(t, models.InvoicePaid, repo.invoices[1])

	_, err = m.MarkPaid(context.Background(), 1, "cs_1")
	require.NoError(t, err)
	assert.Len(t, repo.notifications, 1)
}

func TestSetBookingStatus(t *testing.T) {
	repo, mailer := newFakeRepo(), &fakeMailer{}
	userID := int64(7)
	repo.bookings[3] = &models.Booking{ID: 3, UserID: &userID, ServiceName: "Headshots", Date: "2026-03-01", Status: models.BookingPending}
	repo.bookings[4] = &models.Booking{ID: 4, ServiceName: "Event", Date: "2026-03-02", Status: models.BookingCompleted}
	m := NewManager(repo, mailer, nil)

	b, err := m.SetBookingStatus(context.Background(), 3, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	assert.Len(t, repo.notifications, 1)
	assert.Equal(t, 1, mailer.bookings)

	_, err = m.SetBookingStatus(context.Background(), 4, "pending")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = m.SetBookingStatus(context.Background(), 99, "confirmed")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetQuoteStatusWithPrice(t *testing.T) {
	repo, mailer := newFakeRepo(), &fakeMailer{}
	repo.quotes[5] = &models.QuoteRequest{ID: 5, ServiceType: "Branding", Status: models.QuoteNew}
	m := NewManager(repo, mailer, nil)

	price := models.MustMoney("1500.00")
	q, err := m.SetQuoteStatus(context.Background(), 5, "quoted", &price)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteQuoted, q.Status)
	require.NotNil(t, q.QuotedPrice)
	assert.Equal(t, "1500.00", q.QuotedPrice.String())
	assert.Equal(t, 1, mailer.quotes)

	_, err = m.SetQuoteStatus(context.Background(), 5, "new", nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}
