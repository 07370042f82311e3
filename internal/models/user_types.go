package models

import (
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the model for the 'users' table.
// Local accounts carry a PasswordHash; federated accounts carry an
// issuer/subject pair instead. Pointers keep NULL columns out of the JSON.
type User struct {
	ID           int64   `json:"id" db:"id"`
	Role         Role    `json:"role" db:"role"`
	Email        string  `json:"email" db:"email"`
	PasswordHash *string `json:"-" db:"password_hash"`
	FullName     string  `json:"fullName" db:"full_name"`
	PhoneNumber  *string `json:"phoneNumber,omitempty" db:"phone_number"`
	CompanyName  *string `json:"companyName,omitempty" db:"company_name"`

	// Federated identity
	OIDCIssuer  *string `json:"-" db:"oidc_issuer"`
	OIDCSubject *string `json:"-" db:"oidc_subject"`
	AvatarURL   *string `json:"avatarUrl,omitempty" db:"avatar_url"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Address is the model for the 'addresses' table.
type Address struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	Label      string    `json:"label" db:"label" binding:"max=60"`
	FullName   string    `json:"fullName" db:"full_name" binding:"required,max=120"`
	Phone      string    `json:"phone" db:"phone" binding:"required,max=30"`
	Line1      string    `json:"line1" db:"line1" binding:"required,max=200"`
	Line2      *string   `json:"line2,omitempty" db:"line2" binding:"omitempty,max=200"`
	City       string    `json:"city" db:"city" binding:"required,max=100"`
	Region     *string   `json:"region,omitempty" db:"region" binding:"omitempty,max=100"`
	PostalCode *string   `json:"postalCode,omitempty" db:"postal_code" binding:"omitempty,max=20"`
	Country    string    `json:"country" db:"country" binding:"required,len=2"`
	IsDefault  bool      `json:"isDefault" db:"is_default"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// Snapshot copies the deliverable part of an address onto an order.
func (a *Address) Snapshot() *AddressSnapshot {
	return &AddressSnapshot{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      deref(a.Line2),
		City:       a.City,
		Region:     deref(a.Region),
		PostalCode: deref(a.PostalCode),
		Country:    a.Country,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
