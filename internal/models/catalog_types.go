package models

import (
	"time"

	"github.com/gosimple/slug"
)

// Promotion is a time-boxed offer shown on the storefront.
type Promotion struct {
	ID              int64      `json:"id" db:"id"`
	Title           string     `json:"title" db:"title" binding:"required,max=160"`
	Description     string     `json:"description" db:"description" binding:"max=2000"`
	Code            *string    `json:"code,omitempty" db:"code" binding:"omitempty,alphanum,max=40"`
	DiscountPercent int        `json:"discountPercent" db:"discount_percent" binding:"gte=0,lte=100"`
	ImageURL        *string    `json:"imageUrl,omitempty" db:"image_url" binding:"omitempty,url"`
	StartsAt        *time.Time `json:"startsAt,omitempty" db:"starts_at"`
	EndsAt          *time.Time `json:"endsAt,omitempty" db:"ends_at"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

func (p *Promotion) Table() string { return "promotions" }

func (p *Promotion) Columns() []string {
	return []string{"title", "description", "code", "discount_percent", "image_url", "starts_at", "ends_at", "is_active"}
}

// RunningAt reports whether the promotion is active and inside its window.
func (p *Promotion) RunningAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	return true
}

// PortfolioItem is a showcased piece of past work.
type PortfolioItem struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title" binding:"required,max=160"`
	Slug        string    `json:"slug" db:"slug" binding:"omitempty,max=180"`
	Category    string    `json:"category" db:"category" binding:"required,max=80"`
	Description string    `json:"description" db:"description" binding:"max=5000"`
	ImageURL    string    `json:"imageUrl" db:"image_url" binding:"required,url"`
	ClientName  *string   `json:"clientName,omitempty" db:"client_name" binding:"omitempty,max=120"`
	IsFeatured  bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

func (p *PortfolioItem) Table() string { return "portfolio_items" }

func (p *PortfolioItem) Columns() []string {
	return []string{"title", "slug", "category", "description", "image_url", "client_name", "is_featured"}
}

func (p *PortfolioItem) Prepare() {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Title)
	}
}

type Testimonial struct {
	ID         int64     `json:"id" db:"id"`
	ClientName string    `json:"clientName" db:"client_name" binding:"required,max=120"`
	Company    *string   `json:"company,omitempty" db:"company" binding:"omitempty,max=120"`
	Content    string    `json:"content" db:"content" binding:"required,max=2000"`
	Rating     int       `json:"rating" db:"rating" binding:"gte=1,lte=5"`
	AvatarURL  *string   `json:"avatarUrl,omitempty" db:"avatar_url" binding:"omitempty,url"`
	IsActive   bool      `json:"isActive" db:"is_active"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

func (t *Testimonial) Table() string { return "testimonials" }

func (t *Testimonial) Columns() []string {
	return []string{"client_name", "company", "content", "rating", "avatar_url", "is_active"}
}

type TeamMember struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required,max=120"`
	Position  string    `json:"position" db:"position" binding:"required,max=120"`
	Bio       string    `json:"bio" db:"bio" binding:"max=2000"`
	ImageURL  *string   `json:"imageUrl,omitempty" db:"image_url" binding:"omitempty,url"`
	SortOrder int       `json:"sortOrder" db:"sort_order" binding:"gte=0"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (m *TeamMember) Table() string { return "team_members" }

func (m *TeamMember) Columns() []string {
	return []string{"name", "position", "bio", "image_url", "sort_order", "is_active"}
}

// PaymentSetting configures one payment method offered at checkout.
// Method is the key a checkout request refers to (e.g. "bank_transfer").
type PaymentSetting struct {
	ID            int64     `json:"id" db:"id"`
	Method        string    `json:"method" db:"method" binding:"required,max=40"`
	DisplayName   string    `json:"displayName" db:"display_name" binding:"required,max=80"`
	Instructions  *string   `json:"instructions,omitempty" db:"instructions" binding:"omitempty,max=2000"`
	AccountName   *string   `json:"accountName,omitempty" db:"account_name" binding:"omitempty,max=120"`
	AccountNumber *string   `json:"accountNumber,omitempty" db:"account_number" binding:"omitempty,max=60"`
	IBAN          *string   `json:"iban,omitempty" db:"iban" binding:"omitempty,max=40"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	SortOrder     int       `json:"sortOrder" db:"sort_order" binding:"gte=0"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

func (p *PaymentSetting) Table() string { return "payment_settings" }

func (p *PaymentSetting) Columns() []string {
	return []string{"method", "display_name", "instructions", "account_name", "account_number", "iban", "is_active", "sort_order"}
}
