package cart

import (
	"context"
	"testing"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory Repository. RunInTx works on the same maps.
type memRepo struct {
	products map[int64]*models.Product
	items    map[int64]*models.CartItem
	nextID   int64
}

func newMemRepo(products ...*models.Product) *memRepo {
	r := &memRepo{products: map[int64]*models.Product{}, items: map[int64]*models.CartItem{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memRepo) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) CartItems(_ context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	out := []models.CartItem{}
	for id := int64(1); id <= r.nextID; id++ {
		if it, ok := r.items[id]; ok && owner.Owns(it) {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *memRepo) GetCartItem(_ context.Context, id int64) (*models.CartItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *memRepo) InsertCartItem(_ context.Context, item *models.CartItem) error {
	r.nextID++
	item.ID = r.nextID
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *memRepo) UpdateCartItem(_ context.Context, item *models.CartItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *memRepo) DeleteCartItem(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memRepo) ClearCart(_ context.Context, owner models.CartOwner) error {
	for id, it := range r.items {
		if owner.Owns(it) {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *memRepo) RunInTx(_ context.Context, fn func(Repository) error) error {
	return fn(r)
}

func product(id int64, price string) *models.Product {
	return &models.Product{ID: id, Name: "Flyer A5", Price: models.MustMoney(price), IsActive: true}
}

func TestAddItemToEmptyCart(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		qty      int
		subtotal string
	}{
		{"single", "100.00", 1, "100.00"},
		{"several", "100.00", 2, "200.00"},
		{"cents", "19.99", 3, "59.97"},
		{"max", "0.50", MaxQuantity, "499.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMemRepo(product(1, tt.price)))
			owner := models.UserOwner(10)

			item, err := svc.AddItem(context.Background(), owner, 1, tt.qty, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.subtotal, item.TotalPrice.String())

			totals, err := svc.GetTotal(context.Background(), owner)
			require.NoError(t, err)
			assert.Equal(t, tt.subtotal, totals.Subtotal.String())
			assert.Equal(t, tt.qty, totals.ItemCount)
		})
	}
}

func TestAddItemSnapshotsProduct(t *testing.T) {
	repo := newMemRepo(product(1, "100.00"))
	svc := NewService(repo)
	owner := models.SessionOwner("sess-1")

	item, err := svc.AddItem(context.Background(), owner, 1, 1, nil)
	require.NoError(t, err)

	repo.products[1].Price = models.MustMoney("150.00")
	repo.products[1].Name = "Renamed"

	items, err := svc.GetItems(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
	assert.Equal(t, "Flyer A5", items[0].ProductName)
	assert.Equal(t, "100.00", items[0].UnitPrice.String())
	assert.Nil(t, items[0].UserID)
	require.NotNil(t, items[0].SessionID)
	assert.Equal(t, "sess-1", *items[0].SessionID)
}

func TestAddItemMergesIdenticalLines(t *testing.T) {
	svc := NewService(newMemRepo(product(1, "10.00")))
	owner := models.UserOwner(10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, owner, 1, 2, models.LineOptions{"size": "A5"})
	require.NoError(t, err)
	merged, err := svc.AddItem(ctx, owner, 1, 3, models.LineOptions{"size": "A5"})
	require.NoError(t, err)
	assert.Equal(t, 5, merged.Quantity)
	assert.Equal(t, "50.00", merged.TotalPrice.String())

	_, err = svc.AddItem(ctx, owner, 1, 1, models.LineOptions{"size": "A4"})
	require.NoError(t, err)

	items, err := svc.GetItems(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddItemRejects(t *testing.T) {
	inactive := product(2, "5.00")
	inactive.IsActive = false
	svc := NewService(newMemRepo(product(1, "5.00"), inactive))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, models.UserOwner(1), 1, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, models.UserOwner(1), 1, MaxQuantity+1, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, models.UserOwner(1), 2, 1, nil)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddItem(ctx, models.UserOwner(1), 99, 1, nil)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddItem(ctx, models.CartOwner{}, 1, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = svc.AddItem(ctx, models.CartOwner{UserID: 1, SessionID: "s"}, 1, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidOwner)
}

func TestUpdateQuantityRecomputesTotal(t *testing.T) {
	svc := NewService(newMemRepo(product(1, "100.00")))
	owner := models.UserOwner(10)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, owner, 1, 1, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		updated, err := svc.UpdateQuantity(ctx, owner, item.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Quantity)
		assert.Equal(t, "400.00", updated.TotalPrice.String())
	}

	totals, err := svc.GetTotal(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "400.00", totals.Subtotal.String())
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	svc := NewService(newMemRepo(product(1, "100.00")))
	owner := models.UserOwner(10)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, owner, 1, 1, nil)
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(ctx, owner, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, updated)

	items, err := svc.GetItems(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOwnershipIsEnforced(t *testing.T) {
	svc := NewService(newMemRepo(product(1, "100.00")))
	ctx := context.Background()

	item, err := svc.AddItem(ctx, models.UserOwner(10), 1, 1, nil)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, models.UserOwner(11), item.ID, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.RemoveItem(ctx, models.SessionOwner("other"), item.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.RemoveItem(ctx, models.UserOwner(10), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.RemoveItem(ctx, models.UserOwner(10), item.ID))
}

func TestClearOnlyTouchesOwner(t *testing.T) {
	svc := NewService(newMemRepo(product(1, "1.00")))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, models.UserOwner(1), 1, 1, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, models.UserOwner(2), 1, 1, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, models.UserOwner(1)))

	mine, _ := svc.GetItems(ctx, models.UserOwner(1))
	theirs, _ := svc.GetItems(ctx, models.UserOwner(2))
	assert.Empty(t, mine)
	assert.Len(t, theirs, 1)
}

func TestMergeOnLogin(t *testing.T) {
	svc := NewService(newMemRepo(product(1, "10.00"), product(2, "20.00")))
	ctx := context.Background()
	guest, user := models.SessionOwner("sess-9"), models.UserOwner(5)

	_, err := svc.AddItem(ctx, user, 1, 1, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, 1, 2, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, 2, 1, nil)
	require.NoError(t, err)

	moved, err := svc.MergeOnLogin(ctx, "sess-9", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	guestItems, err := svc.GetItems(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, guestItems)

	totals, err := svc.GetTotal(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 4, totals.ItemCount)
	assert.Equal(t, "50.00", totals.Subtotal.String())

	moved, err = svc.MergeOnLogin(ctx, "", 5)
	require.NoError(t, err)
	assert.Zero(t, moved)
}
