package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CartOwner identifies whose cart a line belongs to: a signed-in user or an
// anonymous browser session, never both.
type CartOwner struct {
	UserID    int64
	SessionID string
}

func UserOwner(userID int64) CartOwner      { return CartOwner{UserID: userID} }
func SessionOwner(sessionID string) CartOwner { return CartOwner{SessionID: sessionID} }

func (o CartOwner) Valid() bool {
	return (o.UserID > 0) != (o.SessionID != "")
}

func (o CartOwner) IsUser() bool { return o.UserID > 0 }

func (o CartOwner) String() string {
	if o.IsUser() {
		return fmt.Sprintf("user:%d", o.UserID)
	}
	return "session:" + o.SessionID
}

// Owns reports whether item belongs to this owner.
func (o CartOwner) Owns(item *CartItem) bool {
	if o.IsUser() {
		return item.UserID != nil && *item.UserID == o.UserID
	}
	return item.SessionID != nil && *item.SessionID == o.SessionID
}

// LineOptions are free-form product choices (size, paper, finish...).
type LineOptions map[string]string

func (o LineOptions) Value() (driver.Value, error) {
	if len(o) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *LineOptions) Scan(src any) error {
	return scanJSON(src, o)
}

// Key is a canonical form used to merge identical lines.
func (o LineOptions) Key() string {
	if len(o) == 0 {
		return "{}"
	}
	b, _ := json.Marshal(o) // map keys are emitted sorted
	return string(b)
}

// CartItem is the model for the 'cart_items' table. Product details are a
// snapshot taken when the line was added, not a live reference.
type CartItem struct {
	ID           int64       `json:"id" db:"id"`
	UserID       *int64      `json:"-" db:"user_id"`
	SessionID    *string     `json:"-" db:"session_id"`
	ProductID    int64       `json:"productId" db:"product_id"`
	ProductName  string      `json:"productName" db:"product_name"`
	ProductImage *string     `json:"productImage,omitempty" db:"product_image"`
	UnitPrice    Money       `json:"unitPrice" db:"unit_price"`
	Quantity     int         `json:"quantity" db:"quantity"`
	TotalPrice   Money       `json:"totalPrice" db:"total_price"`
	Options      LineOptions `json:"options" db:"options"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// SetQuantity changes the quantity and keeps TotalPrice = UnitPrice × Quantity.
func (i *CartItem) SetQuantity(qty int) {
	i.Quantity = qty
	i.TotalPrice = i.UnitPrice.Times(qty)
}

// AssignOwner stamps the owner columns; exactly one of them is set.
func (i *CartItem) AssignOwner(o CartOwner) {
	i.UserID, i.SessionID = nil, nil
	if o.IsUser() {
		id := o.UserID
		i.UserID = &id
		return
	}
	sid := o.SessionID
	i.SessionID = &sid
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported JSON column type")
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
