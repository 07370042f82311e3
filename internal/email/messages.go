package email

import (
	"fmt"

	"github.com/01moynul/inkframe-golang/internal/models"
)

// ContactMessage is a contact-form submission relayed to the studio inbox.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

type orderData struct {
	Order       *models.Order
	FrontendURL string
}

func (m *Mailer) Welcome(u *models.User) bool {
	return m.deliver(u.Email, "Welcome to Inkframe Studio", "welcome.html", map[string]any{
		"Name":        u.FullName,
		"FrontendURL": m.frontendURL,
	}, "")
}

func (m *Mailer) OrderPlaced(o *models.Order) bool {
	subject := fmt.Sprintf("Order %s received", o.OrderNumber)
	return m.deliver(o.CustomerEmail, subject, "order_placed.html", orderData{o, m.frontendURL}, "")
}

func (m *Mailer) OrderStatus(o *models.Order) bool {
	subject := fmt.Sprintf("Order %s is now %s", o.OrderNumber, statusLabel(o.Status))
	return m.deliver(o.CustomerEmail, subject, "order_status.html", orderData{o, m.frontendURL}, "")
}

// BookingReceived acknowledges the customer and alerts the studio.
func (m *Mailer) BookingReceived(b *models.Booking) bool {
	ok := m.deliver(b.GuestEmail, "We received your booking request", "booking_received.html", b, "")
	if m != nil && m.adminEmail != "" {
		m.deliver(m.adminEmail, fmt.Sprintf("New booking: %s on %s", b.ServiceName, b.Date),
			"booking_received.html", b, b.GuestEmail)
	}
	return ok
}

func (m *Mailer) BookingStatus(b *models.Booking) bool {
	subject := fmt.Sprintf("Your booking is %s", statusLabel(b.Status))
	return m.deliver(b.GuestEmail, subject, "booking_status.html", b, "")
}

func (m *Mailer) QuoteReceived(q *models.QuoteRequest) bool {
	ok := m.deliver(q.Email, "We received your quote request", "quote_received.html", q, "")
	if m != nil && m.adminEmail != "" {
		m.deliver(m.adminEmail, fmt.Sprintf("New quote request: %s", q.ServiceType), "quote_received.html", q, q.Email)
	}
	return ok
}

func (m *Mailer) QuoteStatus(q *models.QuoteRequest) bool {
	subject := fmt.Sprintf("Your quote request is %s", statusLabel(q.Status))
	return m.deliver(q.Email, subject, "quote_status.html", q, "")
}

// ContactRelay forwards a contact-form message to the admin inbox with
// Reply-To set to the sender.
func (m *Mailer) ContactRelay(msg ContactMessage) bool {
	if m == nil || m.adminEmail == "" {
		return false
	}
	subject := "Contact form: " + msg.Subject
	if msg.Subject == "" {
		subject = "Contact form message from " + msg.Name
	}
	return m.deliver(m.adminEmail, subject, "contact.html", msg, msg.Email)
}
