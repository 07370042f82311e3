package store

import (
	"context"
	"time"

	"github.com/01moynul/inkframe-golang/internal/models"
)

func (s *Store) Products() *Resource[models.Product, *models.Product] {
	return NewResource[models.Product](s, "created_at DESC")
}

func (s *Store) Services() *Resource[models.Service, *models.Service] {
	return NewResource[models.Service](s, "name ASC")
}

func (s *Store) Promotions() *Resource[models.Promotion, *models.Promotion] {
	return NewResource[models.Promotion](s, "created_at DESC")
}

func (s *Store) Portfolio() *Resource[models.PortfolioItem, *models.PortfolioItem] {
	return NewResource[models.PortfolioItem](s, "created_at DESC")
}

func (s *Store) Testimonials() *Resource[models.Testimonial, *models.Testimonial] {
	return NewResource[models.Testimonial](s, "created_at DESC")
}

func (s *Store) Team() *Resource[models.TeamMember, *models.TeamMember] {
	return NewResource[models.TeamMember](s, "sort_order ASC, id ASC")
}

func (s *Store) PaymentSettings() *Resource[models.PaymentSetting, *models.PaymentSetting] {
	return NewResource[models.PaymentSetting](s, "sort_order ASC, id ASC")
}

// CatalogFilter narrows public listings.
type CatalogFilter struct {
	Category string
	Featured *bool
}

func (f CatalogFilter) where(base string) (string, []any) {
	where := base
	var args []any
	if f.Category != "" {
		where += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Featured != nil {
		where += " AND is_featured = ?"
		args = append(args, *f.Featured)
	}
	return where, args
}

func (s *Store) ActiveProducts(ctx context.Context, f CatalogFilter) ([]models.Product, error) {
	where, args := f.where("is_active = 1")
	return s.Products().ListWhere(ctx, where, args)
}

func (s *Store) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	items, err := s.Products().ListWhere(ctx, "slug = ? AND is_active = 1", []any{slug})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

func (s *Store) ActiveServices(ctx context.Context, f CatalogFilter) ([]models.Service, error) {
	where, args := f.where("is_active = 1")
	return s.Services().ListWhere(ctx, where, args)
}

func (s *Store) PortfolioItems(ctx context.Context, f CatalogFilter) ([]models.PortfolioItem, error) {
	where, args := f.where("1 = 1")
	return s.Portfolio().ListWhere(ctx, where, args)
}

func (s *Store) ActiveTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	return s.Testimonials().ListWhere(ctx, "is_active = 1", nil)
}

// RunningPromotions lists active promotions whose window contains now.
func (s *Store) RunningPromotions(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	return s.Promotions().ListWhere(ctx,
		"is_active = 1 AND (starts_at IS NULL OR starts_at <= ?) AND (ends_at IS NULL OR ends_at >= ?)",
		[]any{now, now})
}

func (s *Store) ActiveTeam(ctx context.Context) ([]models.TeamMember, error) {
	return s.Team().ListWhere(ctx, "is_active = 1", nil)
}

func (s *Store) ActivePaymentSettings(ctx context.Context) ([]models.PaymentSetting, error) {
	return s.PaymentSettings().ListWhere(ctx, "is_active = 1", nil)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.Products().Get(ctx, id)
}
