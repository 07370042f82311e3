// Package cart keeps the line items of a user or anonymous session.
// Every line carries a product snapshot and TotalPrice = UnitPrice × Quantity.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/rs/zerolog/log"
)

var (
	ErrForbidden          = errors.New("cart item belongs to another owner")
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 999")
	ErrInvalidOwner       = errors.New("cart owner must be exactly one of user or session")
	ErrProductUnavailable = errors.New("product is not available")
)

// MaxQuantity caps a single line.
const MaxQuantity = 999

// Repository is the storage the cart needs. *store.Store satisfies it
// through FromStore.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CartItems(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error)
	GetCartItem(ctx context.Context, id int64) (*models.CartItem, error)
	InsertCartItem(ctx context.Context, item *models.CartItem) error
	UpdateCartItem(ctx context.Context, item *models.CartItem) error
	DeleteCartItem(ctx context.Context, id int64) error
	ClearCart(ctx context.Context, owner models.CartOwner) error
	RunInTx(ctx context.Context, fn func(Repository) error) error
}

type storeRepository struct {
	*store.Store
}

func FromStore(s *store.Store) Repository {
	return storeRepository{s}
}

func (r storeRepository) RunInTx(ctx context.Context, fn func(Repository) error) error {
	return r.Store.WithTx(ctx, func(tx *store.Store) error {
		return fn(storeRepository{tx})
	})
}

// Totals summarises a cart.
type Totals struct {
	Subtotal  models.Money `json:"subtotal"`
	ItemCount int          `json:"itemCount"`
}

func Summarize(items []models.CartItem) Totals {
	t := Totals{}
	for _, it := range items {
		t.Subtotal = t.Subtotal.Add(it.TotalPrice)
		t.ItemCount += it.Quantity
	}
	return t
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddItem snapshots the product into the owner's cart. A line with the same
// product and options is topped up instead of duplicated.
func (s *Service) AddItem(ctx context.Context, owner models.CartOwner, productID int64, qty int, options models.LineOptions) (*models.CartItem, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}
	if qty < 1 || qty > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	var result *models.CartItem
	err = s.repo.RunInTx(ctx, func(tx Repository) error {
		items, err := tx.CartItems(ctx, owner)
		if err != nil {
			return err
		}
		for i := range items {
			existing := &items[i]
			if existing.ProductID == productID && existing.Options.Key() == options.Key() {
				next := existing.Quantity + qty
				if next > MaxQuantity {
					return ErrInvalidQuantity
				}
				existing.SetQuantity(next)
				if err := tx.UpdateCartItem(ctx, existing); err != nil {
					return err
				}
				result = existing
				return nil
			}
		}

		item := &models.CartItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.ImageURL,
			UnitPrice:    product.Price,
			Options:      options,
		}
		item.AssignOwner(owner)
		item.SetQuantity(qty)
		if err := tx.InsertCartItem(ctx, item); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// owned loads an item and checks it belongs to owner.
func (s *Service) owned(ctx context.Context, owner models.CartOwner, itemID int64) (*models.CartItem, error) {
	item, err := s.repo.GetCartItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !owner.Owns(item) {
		return nil, ErrForbidden
	}
	return item, nil
}

// UpdateQuantity sets a line's quantity and recomputes its total.
// A quantity of 0 removes the line and returns nil.
func (s *Service) UpdateQuantity(ctx context.Context, owner models.CartOwner, itemID int64, qty int) (*models.CartItem, error) {
	if qty < 0 || qty > MaxQuantity {
		return nil, ErrInvalidQuantity
	}
	item, err := s.owned(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if qty == 0 {
		return nil, s.repo.DeleteCartItem(ctx, item.ID)
	}

	item.SetQuantity(qty)
	if err := s.repo.UpdateCartItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, owner models.CartOwner, itemID int64) error {
	item, err := s.owned(ctx, owner, itemID)
	if err != nil {
		return err
	}
	return s.repo.DeleteCartItem(ctx, item.ID)
}

func (s *Service) GetItems(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}
	return s.repo.CartItems(ctx, owner)
}

func (s *Service) GetTotal(ctx context.Context, owner models.CartOwner) (Totals, error) {
	items, err := s.GetItems(ctx, owner)
	if err != nil {
		return Totals{}, err
	}
	return Summarize(items), nil
}

func (s *Service) Clear(ctx context.Context, owner models.CartOwner) error {
	if !owner.Valid() {
		return ErrInvalidOwner
	}
	return s.repo.ClearCart(ctx, owner)
}

// MergeOnLogin moves an anonymous session's lines into the user's cart.
// Lines for the same product and options are combined.
func (s *Service) MergeOnLogin(ctx context.Context, sessionID string, userID int64) (int, error) {
	if sessionID == "" || userID <= 0 {
		return 0, nil
	}
	from, to := models.SessionOwner(sessionID), models.UserOwner(userID)

	moved := 0
	err := s.repo.RunInTx(ctx, func(tx Repository) error {
		guestItems, err := tx.CartItems(ctx, from)
		if err != nil {
			return err
		}
		if len(guestItems) == 0 {
			return nil
		}
		userItems, err := tx.CartItems(ctx, to)
		if err != nil {
			return err
		}

		byKey := make(map[string]*models.CartItem, len(userItems))
		for i := range userItems {
			it := &userItems[i]
			byKey[lineKey(it)] = it
		}

		for i := range guestItems {
			guest := &guestItems[i]
			if existing, ok := byKey[lineKey(guest)]; ok {
				existing.SetQuantity(min(existing.Quantity+guest.Quantity, MaxQuantity))
				if err := tx.UpdateCartItem(ctx, existing); err != nil {
					return err
				}
				if err := tx.DeleteCartItem(ctx, guest.ID); err != nil {
					return err
				}
			} else {
				guest.AssignOwner(to)
				if err := tx.UpdateCartItem(ctx, guest); err != nil {
					return err
				}
				byKey[lineKey(guest)] = guest
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("merge cart: %w", err)
	}
	if moved > 0 {
		log.Info().Int64("user_id", userID).Int("lines", moved).Msg("merged guest cart into user cart")
	}
	return moved, nil
}

func lineKey(it *models.CartItem) string {
	return fmt.Sprintf("%d|%s", it.ProductID, it.Options.Key())
}
