// Package auth resolves who is making a request. Local password logins and
// federated (OIDC) logins both end up as a signed session cookie that
// decodes into exactly one AuthContext variant.
package auth

import (
	"errors"

	"github.com/01moynul/inkframe-golang/internal/models"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired session")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthContext is one of Anonymous, LocalSession or FederatedSession.
type AuthContext interface {
	kind() string
}

// Anonymous is a visitor without a login. SessionID keys their cart.
type Anonymous struct {
	SessionID string
}

type LocalSession struct {
	UserID int64
	Email  string
	Role   models.Role
}

type FederatedSession struct {
	UserID  int64
	Issuer  string
	Subject string
	Email   string
	Name    string
	Role    models.Role
}

const (
	kindAnonymous = "anonymous"
	kindLocal     = "local"
	kindFederated = "federated"
)

func (Anonymous) kind() string        { return kindAnonymous }
func (LocalSession) kind() string     { return kindLocal }
func (FederatedSession) kind() string { return kindFederated }

// UserIDOf returns the signed-in user id, or false for anonymous visitors.
func UserIDOf(ac AuthContext) (int64, bool) {
	switch s := ac.(type) {
	case LocalSession:
		return s.UserID, true
	case FederatedSession:
		return s.UserID, true
	}
	return 0, false
}

func RoleOf(ac AuthContext) models.Role {
	switch s := ac.(type) {
	case LocalSession:
		return s.Role
	case FederatedSession:
		return s.Role
	}
	return ""
}

// FromUser builds the session variant matching how the user signed in.
func FromUser(u *models.User) AuthContext {
	if u.OIDCIssuer != nil && u.OIDCSubject != nil {
		return FederatedSession{
			UserID:  u.ID,
			Issuer:  *u.OIDCIssuer,
			Subject: *u.OIDCSubject,
			Email:   u.Email,
			Name:    u.FullName,
			Role:    u.Role,
		}
	}
	return LocalSession{UserID: u.ID, Email: u.Email, Role: u.Role}
}
