package store

import (
	"context"

	"github.com/01moynul/inkframe-golang/internal/models"
)

func (s *Store) Bookings() *Resource[models.Booking, *models.Booking] {
	return NewResource[models.Booking](s, "booking_date DESC, booking_time DESC, id DESC")
}

func (s *Store) Quotes() *Resource[models.QuoteRequest, *models.QuoteRequest] {
	return NewResource[models.QuoteRequest](s, "created_at DESC, id DESC")
}

func (s *Store) ListBookings(ctx context.Context, status string) ([]models.Booking, error) {
	if status == "" {
		return s.Bookings().List(ctx)
	}
	return s.Bookings().ListWhere(ctx, "status = ?", []any{status})
}

func (s *Store) UserBookings(ctx context.Context, userID int64) ([]models.Booking, error) {
	return s.Bookings().ListWhere(ctx, "user_id = ?", []any{userID})
}

// LockBooking reads a booking FOR UPDATE inside a transaction.
func (s *Store) LockBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.Bookings().GetForUpdate(ctx, id)
}

func (s *Store) SetBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	return expectOne(s.ext.ExecContext(ctx, "UPDATE bookings SET status = ? WHERE id = ?", status, id))
}

func (s *Store) ListQuotes(ctx context.Context, status string) ([]models.QuoteRequest, error) {
	if status == "" {
		return s.Quotes().List(ctx)
	}
	return s.Quotes().ListWhere(ctx, "status = ?", []any{status})
}

func (s *Store) LockQuote(ctx context.Context, id int64) (*models.QuoteRequest, error) {
	return s.Quotes().GetForUpdate(ctx, id)
}

// SetQuoteStatus writes the status and, when given, the quoted price.
func (s *Store) SetQuoteStatus(ctx context.Context, id int64, status models.QuoteStatus, price *models.Money) error {
	return expectOne(s.ext.ExecContext(ctx,
		"UPDATE quote_requests SET status = ?, quoted_price = COALESCE(?, quoted_price) WHERE id = ?", status, price, id))
}

func (s *Store) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.Bookings().Get(ctx, id)
}

func (s *Store) GetQuote(ctx context.Context, id int64) (*models.QuoteRequest, error) {
	return s.Quotes().Get(ctx, id)
}
