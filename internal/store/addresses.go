package store

import (
	"context"
	"fmt"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

const addressColumns = `id, user_id, label, full_name, phone, line1, line2, city, region, postal_code, country,
	is_default, created_at, updated_at`

func (s *Store) UserAddresses(ctx context.Context, userID int64) ([]models.Address, error) {
	addresses := []models.Address{}
	err := sqlx.SelectContext(ctx, s.ext, &addresses,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id = ? ORDER BY is_default DESC, id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	return addresses, nil
}

// GetUserAddress returns the address only when it belongs to userID.
func (s *Store) GetUserAddress(ctx context.Context, userID, id int64) (*models.Address, error) {
	var a models.Address
	err := sqlx.GetContext(ctx, s.ext, &a, "SELECT "+addressColumns+" FROM addresses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// CreateAddress inserts a. The user's first address becomes the default.
func (s *Store) CreateAddress(ctx context.Context, a *models.Address) error {
	return s.WithTx(ctx, func(tx *Store) error {
		var count int
		if err := sqlx.GetContext(ctx, tx.ext, &count, "SELECT COUNT(*) FROM addresses WHERE user_id = ?", a.UserID); err != nil {
			return err
		}
		if count == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if _, err := tx.ext.ExecContext(ctx, "UPDATE addresses SET is_default = 0 WHERE user_id = ?", a.UserID); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO addresses (user_id, label, full_name, phone, line1, line2, city, region, postal_code, country, is_default)
			VALUES (:user_id, :label, :full_name, :phone, :line1, :line2, :city, :region, :postal_code, :country, :is_default)`
		res, err := sqlx.NamedExecContext(ctx, tx.ext, query, a)
		if err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err := tx.GetUserAddress(ctx, a.UserID, id)
		if err != nil {
			return err
		}
		*a = *created
		return nil
	})
}

// UpdateAddress rewrites the editable fields; the default flag is only
// changed through SetDefaultAddress.
func (s *Store) UpdateAddress(ctx context.Context, a *models.Address) error {
	query := `
		UPDATE addresses SET label = ?, full_name = ?, phone = ?, line1 = ?, line2 = ?, city = ?, region = ?,
			postal_code = ?, country = ?
		WHERE id = ? AND user_id = ?`
	err := expectOne(s.ext.ExecContext(ctx, query, a.Label, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.Region,
		a.PostalCode, a.Country, a.ID, a.UserID))
	if err != nil {
		return err
	}
	updated, err := s.GetUserAddress(ctx, a.UserID, a.ID)
	if err != nil {
		return err
	}
	*a = *updated
	return nil
}

func (s *Store) DeleteAddress(ctx context.Context, userID, id int64) error {
	return expectOne(s.ext.ExecContext(ctx, "DELETE FROM addresses WHERE id = ? AND user_id = ?", id, userID))
}

// SetDefaultAddress makes id the user's only default address. Both writes
// share one transaction so a reader never sees zero or two defaults.
func (s *Store) SetDefaultAddress(ctx context.Context, userID, id int64) error {
	return s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.GetUserAddress(ctx, userID, id); err != nil {
			return err
		}
		if _, err := tx.ext.ExecContext(ctx, "UPDATE addresses SET is_default = 0 WHERE user_id = ? AND id <> ?", userID, id); err != nil {
			return fmt.Errorf("unset default address: %w", err)
		}
		return expectOne(tx.ext.ExecContext(ctx, "UPDATE addresses SET is_default = 1 WHERE id = ? AND user_id = ?", id, userID))
	})
}
