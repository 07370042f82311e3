package models

import "time"

// Booking is a scheduled service appointment, owned by a user or a guest.
type Booking struct {
	ID          int64         `json:"id" db:"id"`
	UserID      *int64        `json:"userId,omitempty" db:"user_id"`
	ServiceID   *int64        `json:"serviceId,omitempty" db:"service_id"`
	ServiceName string        `json:"serviceName" db:"service_name" binding:"required,max=160"`
	GuestName   string        `json:"name" db:"guest_name" binding:"required,max=120"`
	GuestEmail  string        `json:"email" db:"guest_email" binding:"required,email,max=190"`
	GuestPhone  string        `json:"phone" db:"guest_phone" binding:"required,max=30"`
	Date        string        `json:"date" db:"booking_date" binding:"required,datetime=2006-01-02"`
	Time        string        `json:"time" db:"booking_time" binding:"required,datetime=15:04"`
	Location    *string       `json:"location,omitempty" db:"location" binding:"omitempty,max=200"`
	Notes       *string       `json:"notes,omitempty" db:"notes" binding:"omitempty,max=2000"`
	Status      BookingStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

func (b *Booking) Table() string { return "bookings" }

func (b *Booking) Columns() []string {
	return []string{"user_id", "service_id", "service_name", "guest_name", "guest_email", "guest_phone",
		"booking_date", "booking_time", "location", "notes", "status"}
}

// UpdateColumns leaves status out; it only moves through SetBookingStatus.
func (b *Booking) UpdateColumns() []string {
	return []string{"service_id", "service_name", "guest_name", "guest_email", "guest_phone",
		"booking_date", "booking_time", "location", "notes"}
}

func (b *Booking) Prepare() {
	if _, err := ParseBookingStatus(string(b.Status)); err != nil {
		b.Status = BookingPending
	}
}

// QuoteRequest is a free-form service inquiry.
type QuoteRequest struct {
	ID          int64       `json:"id" db:"id"`
	UserID      *int64      `json:"userId,omitempty" db:"user_id"`
	Name        string      `json:"name" db:"name" binding:"required,max=120"`
	Email       string      `json:"email" db:"email" binding:"required,email,max=190"`
	Phone       *string     `json:"phone,omitempty" db:"phone" binding:"omitempty,max=30"`
	Company     *string     `json:"company,omitempty" db:"company" binding:"omitempty,max=120"`
	ServiceType string      `json:"serviceType" db:"service_type" binding:"required,max=120"`
	Budget      *string     `json:"budget,omitempty" db:"budget" binding:"omitempty,max=60"`
	Deadline    *string     `json:"deadline,omitempty" db:"deadline" binding:"omitempty,datetime=2006-01-02"`
	Message     string      `json:"message" db:"message" binding:"required,max=5000"`
	Status      QuoteStatus `json:"status" db:"status"`
	QuotedPrice *Money      `json:"quotedPrice,omitempty" db:"quoted_price"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

func (q *QuoteRequest) Table() string { return "quote_requests" }

func (q *QuoteRequest) Columns() []string {
	return []string{"user_id", "name", "email", "phone", "company", "service_type", "budget", "deadline",
		"message", "status", "quoted_price"}
}

func (q *QuoteRequest) UpdateColumns() []string {
	return []string{"name", "email", "phone", "company", "service_type", "budget", "deadline",
		"message", "quoted_price"}
}

func (q *QuoteRequest) Prepare() {
	if _, err := ParseQuoteStatus(string(q.Status)); err != nil {
		q.Status = QuoteNew
	}
}
