package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionClaims is the payload of the session cookie. Kind selects the
// AuthContext variant; the idp fields are only set for federated sessions.
type sessionClaims struct {
	Kind       string `json:"kind"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Name       string `json:"name,omitempty"`
	IDPIssuer  string `json:"idp,omitempty"`
	IDPSubject string `json:"idp_sub,omitempty"`
	jwt.RegisteredClaims
}

// Session describes an issued token.
type Session struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, revoker Revoker) *SessionManager {
	if revoker == nil {
		revoker = NopRevoker{}
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, revoker: revoker, now: time.Now}
}

func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue signs a session for a local or federated login.
func (m *SessionManager) Issue(ac AuthContext) (*Session, error) {
	now := m.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	switch s := ac.(type) {
	case LocalSession:
		claims.Kind, claims.Subject = kindLocal, strconv.FormatInt(s.UserID, 10)
		claims.Email, claims.Role = s.Email, string(s.Role)
	case FederatedSession:
		claims.Kind, claims.Subject = kindFederated, strconv.FormatInt(s.UserID, 10)
		claims.Email, claims.Role, claims.Name = s.Email, string(s.Role), s.Name
		claims.IDPIssuer, claims.IDPSubject = s.Issuer, s.Subject
	default:
		return nil, fmt.Errorf("cannot issue a session for %T", ac)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{Token: token, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (m *SessionManager) parse(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	return claims, nil
}

// Parse verifies a session token and rebuilds its AuthContext.
func (m *SessionManager) Parse(ctx context.Context, tokenString string) (AuthContext, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	role := models.Role(claims.Role)

	switch claims.Kind {
	case kindLocal:
		return LocalSession{UserID: userID, Email: claims.Email, Role: role}, nil
	case kindFederated:
		return FederatedSession{
			UserID:  userID,
			Issuer:  claims.IDPIssuer,
			Subject: claims.IDPSubject,
			Email:   claims.Email,
			Name:    claims.Name,
			Role:    role,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidToken, claims.Kind)
}

// Revoke denies tokenString for the rest of its lifetime. Invalid tokens
// are already unusable and are ignored.
func (m *SessionManager) Revoke(ctx context.Context, tokenString string) error {
	claims, err := m.parse(tokenString)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}
	remaining := claims.ExpiresAt.Time.Sub(m.now())
	if remaining <= 0 {
		return nil
	}
	return m.revoker.Revoke(ctx, claims.ID, remaining)
}
