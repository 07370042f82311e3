package email

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

func testOrder() *models.Order {
	return &models.Order{
		ID:            7,
		OrderNumber:   "ORD-20260101-abc",
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		Items: models.OrderLines{
			{ProductID: 1, Name: "Business cards", Quantity: 2, Price: models.MustMoney("100.00"), Total: models.MustMoney("200.00")},
		},
		Subtotal:       models.MustMoney("200.00"),
		Tax:            models.MustMoney("30.00"),
		Total:          models.MustMoney("230.00"),
		Status:         models.OrderPending,
		PaymentStatus:  models.PaymentPending,
		PaymentMethod:  "bank_transfer",
		DeliveryMethod: models.DeliveryPickup,
	}
}

func TestUnconfiguredMailerReturnsFalse(t *testing.T) {
	m := NewMailer(Config{})

	ok, err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, m.OrderPlaced(testOrder()))
}

func TestOrderPlacedRendersTotals(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailerWithSender(sender, Config{FrontendURL: "https://studio.example"})

	require.True(t, m.OrderPlaced(testOrder()))
	m.Wait()

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "sara@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "ORD-20260101-abc")
	assert.Contains(t, sent[0].HTML, "Business cards")
	assert.Contains(t, sent[0].HTML, "230.00")
	assert.Contains(t, sent[0].HTML, "Bank transfer")
	assert.Contains(t, sent[0].HTML, "https://studio.example/account/orders/7")
}

func TestContactRelayGoesToAdminWithReplyTo(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailerWithSender(sender, Config{AdminEmail: "studio@example.com"})

	require.True(t, m.ContactRelay(ContactMessage{Name: "Omar", Email: "omar@example.com", Message: "Need flyers"}))
	m.Wait()

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "studio@example.com", sent[0].To)
	assert.Equal(t, "omar@example.com", sent[0].ReplyTo)
	assert.Contains(t, sent[0].HTML, "Need flyers")
}

func TestContactRelayWithoutAdminInbox(t *testing.T) {
	m := NewMailerWithSender(&fakeSender{}, Config{})
	assert.False(t, m.ContactRelay(ContactMessage{Name: "Omar", Email: "omar@example.com", Message: "hi"}))
}

func TestBookingReceivedCopiesStudio(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailerWithSender(sender, Config{AdminEmail: "studio@example.com"})

	b := &models.Booking{
		ServiceName: "Headshots",
		GuestName:   "Lina",
		GuestEmail:  "lina@example.com",
		GuestPhone:  "0500000000",
		Date:        "2026-03-01",
		Time:        "10:30",
		Status:      models.BookingPending,
	}
	require.True(t, m.BookingReceived(b))
	m.Wait()

	recipients := []string{}
	for _, msg := range sender.messages() {
		recipients = append(recipients, msg.To)
	}
	assert.ElementsMatch(t, []string{"lina@example.com", "studio@example.com"}, recipients)
}

func TestDispatchLogsSenderFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("provider down")}
	m := NewMailerWithSender(sender, Config{})

	assert.True(t, m.Dispatch(Message{To: "a@example.com", Subject: "x", HTML: "<p>x</p>"}))
	m.Wait()
	assert.Empty(t, sender.messages())
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Bank transfer", statusLabel("bank_transfer"))
	assert.Equal(t, "Shipped", statusLabel(models.OrderShipped))
	assert.Equal(t, "", statusLabel(""))
}
