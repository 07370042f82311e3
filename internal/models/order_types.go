package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// OrderLine is one purchased item, frozen at checkout.
type OrderLine struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Price     Money       `json:"price"`
	Total     Money       `json:"total"`
	Options   LineOptions `json:"options,omitempty"`
}

// OrderLines is stored as a JSON array in orders.items.
type OrderLines []OrderLine

func (l OrderLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *OrderLines) Scan(src any) error {
	return scanJSON(src, l)
}

// AddressSnapshot is the delivery address copied onto an order.
type AddressSnapshot struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

func (a *AddressSnapshot) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *AddressSnapshot) Scan(src any) error {
	return scanJSON(src, a)
}

type DeliveryMethod string

const (
	DeliveryShipping DeliveryMethod = "delivery"
	DeliveryPickup   DeliveryMethod = "pickup"
)

// Order is the model for the 'orders' table
type Order struct {
	ID              int64            `json:"id" db:"id"`
	OrderNumber     string           `json:"orderNumber" db:"order_number"`
	UserID          int64            `json:"userId" db:"user_id"`
	CustomerName    string           `json:"customerName" db:"customer_name"`
	CustomerEmail   string           `json:"customerEmail" db:"customer_email"`
	Items           OrderLines       `json:"items" db:"items"`
	Subtotal        Money            `json:"subtotal" db:"subtotal"`
	Tax             Money            `json:"tax" db:"tax"`
	Total           Money            `json:"total" db:"total"`
	Status          OrderStatus      `json:"status" db:"status"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus" db:"payment_status"`
	PaymentMethod   string           `json:"paymentMethod" db:"payment_method"`
	PaymentRef      *string          `json:"paymentRef,omitempty" db:"payment_ref"`
	DeliveryMethod  DeliveryMethod   `json:"deliveryMethod" db:"delivery_method"`
	DeliveryAddress *AddressSnapshot `json:"deliveryAddress,omitempty" db:"delivery_address"`
	Notes           *string          `json:"notes,omitempty" db:"notes"`
	TrackingNumber  *string          `json:"trackingNumber,omitempty" db:"tracking_number"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// OrderStatusHistory is the model for the 'order_status_history' table
type OrderStatusHistory struct {
	ID        int64       `json:"id" db:"id"`
	OrderID   int64       `json:"orderId" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	Note      *string     `json:"note,omitempty" db:"note"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// Invoice is the model for the 'invoices' table
type Invoice struct {
	ID            int64         `json:"id" db:"id"`
	InvoiceNumber string        `json:"invoiceNumber" db:"invoice_number"`
	OrderID       int64         `json:"orderId" db:"order_id"`
	UserID        int64         `json:"userId" db:"user_id"`
	Subtotal      Money         `json:"subtotal" db:"subtotal"`
	Tax           Money         `json:"tax" db:"tax"`
	Total         Money         `json:"total" db:"total"`
	Status        InvoiceStatus `json:"status" db:"status"`
	DueDate       time.Time     `json:"dueDate" db:"due_date"`
	PaidAt        *time.Time    `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}
