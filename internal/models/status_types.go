package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// transitions maps a status to the statuses it may move to.
// A status absent from the map is terminal.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	if from == to {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

func parseStatus[S ~string](kind, raw string, known []S) (S, error) {
	for _, s := range known {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q", ErrUnknownStatus, kind, raw)
}

func checkTransition[S ~string](kind string, t transitions[S], from, to S) error {
	if !t.allows(from, to) {
		return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, kind, from, to)
	}
	return nil
}

//
// --- Orders ---
//

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

var orderTransitions = transitions[OrderStatus]{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	return parseStatus("order", s, orderStatuses)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions.allows(s, next)
}

func (s OrderStatus) TransitionTo(next OrderStatus) error {
	return checkTransition("order", orderTransitions, s, next)
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var paymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

var paymentTransitions = transitions[PaymentStatus]{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPending, PaymentPaid},
	PaymentPaid:    {PaymentRefunded},
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	return parseStatus("payment", s, paymentStatuses)
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return paymentTransitions.allows(s, next)
}

func (s PaymentStatus) TransitionTo(next PaymentStatus) error {
	return checkTransition("payment", paymentTransitions, s, next)
}

//
// --- Bookings ---
//

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

var bookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled}

var bookingTransitions = transitions[BookingStatus]{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	return parseStatus("booking", s, bookingStatuses)
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return bookingTransitions.allows(s, next)
}

func (s BookingStatus) TransitionTo(next BookingStatus) error {
	return checkTransition("booking", bookingTransitions, s, next)
}

//
// --- Quotes ---
//

type QuoteStatus string

const (
	QuoteNew       QuoteStatus = "new"
	QuoteContacted QuoteStatus = "contacted"
	QuoteQuoted    QuoteStatus = "quoted"
	QuoteAccepted  QuoteStatus = "accepted"
	QuoteDeclined  QuoteStatus = "declined"
)

var quoteStatuses = []QuoteStatus{QuoteNew, QuoteContacted, QuoteQuoted, QuoteAccepted, QuoteDeclined}

var quoteTransitions = transitions[QuoteStatus]{
	QuoteNew:       {QuoteContacted, QuoteQuoted, QuoteDeclined},
	QuoteContacted: {QuoteQuoted, QuoteDeclined},
	QuoteQuoted:    {QuoteAccepted, QuoteDeclined},
}

func ParseQuoteStatus(s string) (QuoteStatus, error) {
	return parseStatus("quote", s, quoteStatuses)
}

func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	return quoteTransitions.allows(s, next)
}

func (s QuoteStatus) TransitionTo(next QuoteStatus) error {
	return checkTransition("quote", quoteTransitions, s, next)
}

//
// --- Invoices ---
//

type InvoiceStatus string

const (
	InvoiceIssued    InvoiceStatus = "issued"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)
