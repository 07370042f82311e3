package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, order_number, user_id, customer_name, customer_email, items, subtotal, tax, total,
	status, payment_status, payment_method, payment_ref, delivery_method, delivery_address, notes,
	tracking_number, created_at, updated_at`

// CreateOrder inserts o with a freshly generated order number, retrying
// with a new number if the unique index reports a collision.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders
		(order_number, user_id, customer_name, customer_email, items, subtotal, tax, total, status,
		 payment_status, payment_method, payment_ref, delivery_method, delivery_address, notes)
		VALUES (:order_number, :user_id, :customer_name, :customer_email, :items, :subtotal, :tax, :total, :status,
		 :payment_status, :payment_method, :payment_ref, :delivery_method, :delivery_address, :notes)`

	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		o.OrderNumber = s.numbers("ORD", time.Now())
		res, err := sqlx.NamedExecContext(ctx, s.ext, query, o)
		if err != nil {
			if isDuplicate(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("insert order: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err := s.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		*o = *created
		return nil
	}
	return fmt.Errorf("%w: order number collided %d times: %v", ErrConflict, maxNumberAttempts, lastErr)
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := sqlx.GetContext(ctx, s.ext, &o, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// LockOrder reads an order FOR UPDATE inside a transaction.
func (s *Store) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := sqlx.GetContext(ctx, s.ext, &o, "SELECT "+orderColumns+" FROM orders WHERE id = ? FOR UPDATE", id); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	if err := sqlx.GetContext(ctx, s.ext, &o, "SELECT "+orderColumns+" FROM orders WHERE order_number = ?", number); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// GetUserOrder returns the order only when it belongs to userID.
func (s *Store) GetUserOrder(ctx context.Context, userID, id int64) (*models.Order, error) {
	var o models.Order
	err := sqlx.GetContext(ctx, s.ext, &o, "SELECT "+orderColumns+" FROM orders WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) UserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := sqlx.SelectContext(ctx, s.ext, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("query user orders: %w", err)
	}
	return orders, nil
}

// ListOrders lists all orders, optionally filtered by status.
func (s *Store) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC"

	orders := []models.Order{}
	if err := sqlx.SelectContext(ctx, s.ext, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return orders, nil
}

// OrderUpdate holds the admin-editable, non-status fields of an order.
type OrderUpdate struct {
	Notes          *string
	TrackingNumber *string
}

func (s *Store) UpdateOrderDetails(ctx context.Context, id int64, u OrderUpdate) (*models.Order, error) {
	query := `
		UPDATE orders SET
			notes = COALESCE(?, notes),
			tracking_number = COALESCE(?, tracking_number)
		WHERE id = ?`
	if err := expectOne(s.ext.ExecContext(ctx, query, u.Notes, u.TrackingNumber, id)); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) SetOrderStatus(ctx context.Context, id int64, status models.OrderStatus, payment models.PaymentStatus) error {
	return expectOne(s.ext.ExecContext(ctx,
		"UPDATE orders SET status = ?, payment_status = ? WHERE id = ?", status, payment, id))
}

func (s *Store) SetOrderPaymentRef(ctx context.Context, id int64, ref string) error {
	return expectOne(s.ext.ExecContext(ctx, "UPDATE orders SET payment_ref = ? WHERE id = ?", ref, id))
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return expectOne(s.ext.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id))
}

func (s *Store) AddOrderStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	res, err := s.ext.ExecContext(ctx,
		"INSERT INTO order_status_history (order_id, status, note) VALUES (?, ?, ?)", h.OrderID, h.Status, h.Note)
	if err != nil {
		return fmt.Errorf("insert order status history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func (s *Store) OrderStatusHistory(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error) {
	rows := []models.OrderStatusHistory{}
	err := sqlx.SelectContext(ctx, s.ext, &rows,
		"SELECT id, order_id, status, note, created_at FROM order_status_history WHERE order_id = ? ORDER BY id ASC", orderID)
	if err != nil {
		return nil, fmt.Errorf("query order status history: %w", err)
	}
	return rows, nil
}

//
// --- Invoices ---
//

const invoiceColumns = `id, invoice_number, order_id, user_id, subtotal, tax, total, status, due_date, paid_at,
	created_at, updated_at`

func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	query := `
		INSERT INTO invoices (invoice_number, order_id, user_id, subtotal, tax, total, status, due_date)
		VALUES (:invoice_number, :order_id, :user_id, :subtotal, :tax, :total, :status, :due_date)`

	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		inv.InvoiceNumber = s.numbers("INV", time.Now())
		res, err := sqlx.NamedExecContext(ctx, s.ext, query, inv)
		if err != nil {
			if isDuplicate(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("insert invoice: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err := s.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		*inv = *created
		return nil
	}
	return fmt.Errorf("%w: invoice number collided %d times: %v", ErrConflict, maxNumberAttempts, lastErr)
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var inv models.Invoice
	if err := sqlx.GetContext(ctx, s.ext, &inv, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (s *Store) GetUserInvoice(ctx context.Context, userID, id int64) (*models.Invoice, error) {
	var inv models.Invoice
	err := sqlx.GetContext(ctx, s.ext, &inv, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (s *Store) InvoiceForOrder(ctx context.Context, orderID int64) (*models.Invoice, error) {
	var inv models.Invoice
	if err := sqlx.GetContext(ctx, s.ext, &inv, "SELECT "+invoiceColumns+" FROM invoices WHERE order_id = ?", orderID); err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (s *Store) UserInvoices(ctx context.Context, userID int64) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	err := sqlx.SelectContext(ctx, s.ext, &invoices,
		"SELECT "+invoiceColumns+" FROM invoices WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("query user invoices: %w", err)
	}
	return invoices, nil
}

func (s *Store) ListInvoices(ctx context.Context, status string) ([]models.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC"

	invoices := []models.Invoice{}
	if err := sqlx.SelectContext(ctx, s.ext, &invoices, query, args...); err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	return invoices, nil
}

// SetInvoiceStatus updates the invoice of an order. paid_at is stamped when
// the status becomes paid. A missing invoice is not an error.
func (s *Store) SetInvoiceStatus(ctx context.Context, orderID int64, status models.InvoiceStatus, at time.Time) error {
	var paidAt *time.Time
	if status == models.InvoicePaid {
		paidAt = &at
	}
	err := expectOne(s.ext.ExecContext(ctx,
		"UPDATE invoices SET status = ?, paid_at = COALESCE(?, paid_at) WHERE order_id = ?", status, paidAt, orderID))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// MarkOverdueInvoices flips issued invoices whose due date has passed.
func (s *Store) MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.ext.ExecContext(ctx,
		"UPDATE invoices SET status = ? WHERE status = ? AND due_date < ?",
		models.InvoiceOverdue, models.InvoiceIssued, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}
	return res.RowsAffected()
}
