package store

import (
	"context"
	"fmt"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

// DashboardStats are the admin back-office KPIs.
type DashboardStats struct {
	OrdersByStatus   map[string]int `json:"ordersByStatus"`
	BookingsByStatus map[string]int `json:"bookingsByStatus"`
	QuotesByStatus   map[string]int `json:"quotesByStatus"`
	PaidRevenue      models.Money   `json:"paidRevenue"`
	OverdueInvoices  int            `json:"overdueInvoices"`
	Customers        int            `json:"customers"`
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"n"`
}

func (s *Store) countByStatus(ctx context.Context, table string) (map[string]int, error) {
	var rows []statusCount
	query := fmt.Sprintf("SELECT status, COUNT(*) AS n FROM %s GROUP BY status", table)
	if err := sqlx.SelectContext(ctx, s.ext, &rows, query); err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *Store) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.OrdersByStatus, err = s.countByStatus(ctx, "orders"); err != nil {
		return nil, err
	}
	if stats.BookingsByStatus, err = s.countByStatus(ctx, "bookings"); err != nil {
		return nil, err
	}
	if stats.QuotesByStatus, err = s.countByStatus(ctx, "quote_requests"); err != nil {
		return nil, err
	}

	// COALESCE keeps an empty table at 0 instead of NULL
	err = sqlx.GetContext(ctx, s.ext, &stats.PaidRevenue,
		"SELECT COALESCE(SUM(total), 0) FROM orders WHERE payment_status = ?", models.PaymentPaid)
	if err != nil {
		return nil, fmt.Errorf("sum paid revenue: %w", err)
	}

	err = sqlx.GetContext(ctx, s.ext, &stats.OverdueInvoices,
		"SELECT COUNT(*) FROM invoices WHERE status = ?", models.InvoiceOverdue)
	if err != nil {
		return nil, fmt.Errorf("count overdue invoices: %w", err)
	}

	err = sqlx.GetContext(ctx, s.ext, &stats.Customers, "SELECT COUNT(*) FROM users WHERE role = ?", models.RoleCustomer)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	return stats, nil
}
