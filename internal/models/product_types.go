package models

import (
	"time"

	"github.com/gosimple/slug"
)

// Product is the model for the 'products' table.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" binding:"required,max=160"`
	Slug        string    `json:"slug" db:"slug" binding:"omitempty,max=180"`
	Category    string    `json:"category" db:"category" binding:"required,max=80"`
	Description string    `json:"description" db:"description" binding:"max=5000"`
	Price       Money     `json:"price" db:"price" binding:"gt=0"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url" binding:"omitempty,url"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	IsFeatured  bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

func (p *Product) Table() string { return "products" }

func (p *Product) Columns() []string {
	return []string{"name", "slug", "category", "description", "price", "image_url", "is_active", "is_featured"}
}

func (p *Product) Prepare() {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
}

// Service is a bookable or quotable offering (photo session, print job...).
type Service struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name" binding:"required,max=160"`
	Slug            string    `json:"slug" db:"slug" binding:"omitempty,max=180"`
	Category        string    `json:"category" db:"category" binding:"required,max=80"`
	Description     string    `json:"description" db:"description" binding:"max=5000"`
	PriceFrom       Money     `json:"priceFrom" db:"price_from" binding:"gte=0"`
	DurationMinutes *int      `json:"durationMinutes,omitempty" db:"duration_minutes" binding:"omitempty,gt=0"`
	ImageURL        *string   `json:"imageUrl,omitempty" db:"image_url" binding:"omitempty,url"`
	IsActive        bool      `json:"isActive" db:"is_active"`
	IsFeatured      bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

func (s *Service) Table() string { return "services" }

func (s *Service) Columns() []string {
	return []string{"name", "slug", "category", "description", "price_from", "duration_minutes", "image_url", "is_active", "is_featured"}
}

func (s *Service) Prepare() {
	if s.Slug == "" {
		s.Slug = slug.Make(s.Name)
	}
}
