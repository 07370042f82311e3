package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, role, email, password_hash, full_name, phone_number, company_name,
	oidc_issuer, oidc_subject, avatar_url, created_at, updated_at`

// CreateUser inserts a local or federated user. A taken e-mail yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleCustomer
	}

	query := `
		INSERT INTO users
		(role, email, password_hash, full_name, phone_number, company_name, oidc_issuer, oidc_subject, avatar_url)
		VALUES (:role, :email, :password_hash, :full_name, :phone_number, :company_name, :oidc_issuer, :oidc_subject, :avatar_url)`

	res, err := sqlx.NamedExecContext(ctx, s.ext, query, u)
	if err != nil {
		return conflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, s.ext, &u, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, s.ext, &u, "SELECT "+userColumns+" FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UserRole is the cheap lookup used by the admin guard.
func (s *Store) UserRole(ctx context.Context, id int64) (models.Role, error) {
	var role models.Role
	if err := sqlx.GetContext(ctx, s.ext, &role, "SELECT role FROM users WHERE id = ?", id); err != nil {
		return "", notFound(err)
	}
	return role, nil
}

// UpsertFederatedUser finds the account for an issuer/subject pair, links an
// existing local account with the same e-mail, or creates a new customer.
func (s *Store) UpsertFederatedUser(ctx context.Context, issuer, subject, email, name string, avatar *string) (*models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, s.ext, &u,
		"SELECT "+userColumns+" FROM users WHERE oidc_issuer = ? AND oidc_subject = ?", issuer, subject)
	if err == nil {
		return &u, nil
	}
	if err = notFound(err); err != ErrNotFound {
		return nil, err
	}

	existing, err := s.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		_, err = s.ext.ExecContext(ctx,
			"UPDATE users SET oidc_issuer = ?, oidc_subject = ?, avatar_url = COALESCE(avatar_url, ?) WHERE id = ?",
			issuer, subject, avatar, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("link federated identity: %w", err)
		}
		return s.GetUser(ctx, existing.ID)
	case err != ErrNotFound:
		return nil, err
	}

	if name == "" {
		name = email
	}
	nu := &models.User{
		Role:        models.RoleCustomer,
		Email:       email,
		FullName:    name,
		OIDCIssuer:  &issuer,
		OIDCSubject: &subject,
		AvatarURL:   avatar,
	}
	if err := s.CreateUser(ctx, nu); err != nil {
		return nil, err
	}
	return nu, nil
}

// ProfileUpdate carries the fields a user may change about themselves.
type ProfileUpdate struct {
	FullName    *string
	PhoneNumber *string
	CompanyName *string
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) (*models.User, error) {
	query := `
		UPDATE users SET
			full_name = COALESCE(?, full_name),
			phone_number = COALESCE(?, phone_number),
			company_name = COALESCE(?, company_name)
		WHERE id = ?`
	if err := expectOne(s.ext.ExecContext(ctx, query, p.FullName, p.PhoneNumber, p.CompanyName, id)); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return expectOne(s.ext.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id))
}
