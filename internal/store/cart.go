package store

import (
	"context"
	"fmt"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

const cartItemColumns = `id, user_id, session_id, product_id, product_name, product_image,
	unit_price, quantity, total_price, options, created_at, updated_at`

func ownerClause(o models.CartOwner) (string, any) {
	if o.IsUser() {
		return "user_id = ?", o.UserID
	}
	return "session_id = ?", o.SessionID
}

func (s *Store) CartItems(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	where, arg := ownerClause(owner)
	items := []models.CartItem{}
	err := sqlx.SelectContext(ctx, s.ext, &items,
		"SELECT "+cartItemColumns+" FROM cart_items WHERE "+where+" ORDER BY id ASC", arg)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	return items, nil
}

// LockCartItems reads the owner's cart and holds row locks until the
// surrounding transaction ends, so two checkouts cannot consume one cart.
func (s *Store) LockCartItems(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	where, arg := ownerClause(owner)
	items := []models.CartItem{}
	err := sqlx.SelectContext(ctx, s.ext, &items,
		"SELECT "+cartItemColumns+" FROM cart_items WHERE "+where+" ORDER BY id ASC FOR UPDATE", arg)
	if err != nil {
		return nil, fmt.Errorf("lock cart items: %w", err)
	}
	return items, nil
}

func (s *Store) GetCartItem(ctx context.Context, id int64) (*models.CartItem, error) {
	var item models.CartItem
	if err := sqlx.GetContext(ctx, s.ext, &item, "SELECT "+cartItemColumns+" FROM cart_items WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (s *Store) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items
		(user_id, session_id, product_id, product_name, product_image, unit_price, quantity, total_price, options)
		VALUES (:user_id, :session_id, :product_id, :product_name, :product_image, :unit_price, :quantity, :total_price, :options)`
	res, err := sqlx.NamedExecContext(ctx, s.ext, query, item)
	if err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := s.GetCartItem(ctx, id)
	if err != nil {
		return err
	}
	*item = *created
	return nil
}

// UpdateCartItem persists quantity, total and ownership of an existing line.
func (s *Store) UpdateCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		UPDATE cart_items
		SET quantity = ?, total_price = ?, user_id = ?, session_id = ?
		WHERE id = ?`
	err := expectOne(s.ext.ExecContext(ctx, query, item.Quantity, item.TotalPrice, item.UserID, item.SessionID, item.ID))
	if err != nil {
		return err
	}
	updated, err := s.GetCartItem(ctx, item.ID)
	if err != nil {
		return err
	}
	*item = *updated
	return nil
}

func (s *Store) DeleteCartItem(ctx context.Context, id int64) error {
	return expectOne(s.ext.ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", id))
}

func (s *Store) ClearCart(ctx context.Context, owner models.CartOwner) error {
	where, arg := ownerClause(owner)
	if _, err := s.ext.ExecContext(ctx, "DELETE FROM cart_items WHERE "+where, arg); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
