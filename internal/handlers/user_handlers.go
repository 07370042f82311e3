package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/01moynul/inkframe-golang/internal/auth"
	"github.com/01moynul/inkframe-golang/internal/middleware"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	oidcStateCookie = "oidc_state"
	oidcNonceCookie = "oidc_nonce"
	oidcCookieTTL   = 10 * time.Minute
)

// --- User Registration ---

// RegisterUserInput is separate from models.User so a caller can never
// choose their own id or role.
type RegisterUserInput struct {
	FullName    string  `json:"fullName" binding:"required,max=120"`
	Email       string  `json:"email" binding:"required,email,max=190"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=30"`
	CompanyName *string `json:"companyName" binding:"omitempty,max=120"`
}

type LoginUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// startSession issues the session cookie for u and moves the anonymous
// cart into the user's cart. A failed merge does not fail the login.
func (h *Handlers) startSession(c *gin.Context, ac auth.AuthContext, u *models.User) (*sessionResponse, error) {
	sess, err := h.Sessions.Issue(ac)
	if err != nil {
		return nil, err
	}
	h.Cookies.Set(c, middleware.SessionCookie, sess.Token, h.Sessions.TTL())

	if _, err := h.Cart.MergeOnLogin(c.Request.Context(), middleware.CartSessionID(c), u.ID); err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Msg("cart merge on login failed")
	}
	middleware.SetAuth(c, ac)

	return &sessionResponse{User: u, Token: sess.Token, ExpiresAt: sess.ExpiresAt}, nil
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterUserInput
	if !bindJSON(c, &input) {
		return
	}

	// 2. --- Hash Password ---
	var pw auth.Password
	if err := pw.Set(input.Password); err != nil {
		respondError(c, err)
		return
	}

	// 3. --- Create User ---
	user := &models.User{
		Role:         models.RoleCustomer,
		Email:        input.Email,
		PasswordHash: &pw.Hash,
		FullName:     strings.TrimSpace(input.FullName),
		PhoneNumber:  input.PhoneNumber,
		CompanyName:  input.CompanyName,
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
			return
		}
		respondError(c, err)
		return
	}

	// 4. --- Sign In ---
	resp, err := h.startSession(c, auth.LocalSession{UserID: user.ID, Email: user.Email, Role: user.Role}, user)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Mailer.Welcome(user)
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginUserInput
	if !bindJSON(c, &input) {
		return
	}

	// 1. --- Find User ---
	user, err := h.Store.GetUserByEmail(c.Request.Context(), input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, auth.ErrInvalidCredentials)
			return
		}
		respondError(c, err)
		return
	}

	// 2. --- Check Password ---
	// federated-only accounts have no hash and never match
	pw := auth.Password{}
	if user.PasswordHash != nil {
		pw.Hash = *user.PasswordHash
	}
	match, err := pw.Matches(input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if !match {
		respondError(c, auth.ErrInvalidCredentials)
		return
	}

	// 3. --- Issue Session ---
	resp, err := h.startSession(c, auth.LocalSession{UserID: user.ID, Email: user.Email, Role: user.Role}, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout. The token is revoked so a copy of
// it stops working too.
func (h *Handlers) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.Sessions.Revoke(c.Request.Context(), token); err != nil {
			log.Warn().Err(err).Msg("failed to revoke session")
		}
	}
	h.Cookies.Clear(c, middleware.SessionCookie)
	middleware.SetAuth(c, auth.Anonymous{SessionID: middleware.CartSessionID(c)})
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	ac := middleware.Auth(c)
	userID, ok := auth.UserIDOf(ac)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := h.Store.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		respondError(c, err)
		return
	}

	provider := "local"
	if _, federated := ac.(auth.FederatedSession); federated {
		provider = "federated"
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "provider": provider})
}

// --- Federated login ---

// OIDCLogin handles GET /api/auth/oidc/login by redirecting to the issuer.
func (h *Handlers) OIDCLogin(c *gin.Context) {
	if h.OIDC == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "federated login is not enabled"})
		return
	}
	state, nonce := uuid.NewString(), uuid.NewString()
	h.Cookies.Set(c, oidcStateCookie, state, oidcCookieTTL)
	h.Cookies.Set(c, oidcNonceCookie, nonce, oidcCookieTTL)
	c.Redirect(http.StatusFound, h.OIDC.AuthCodeURL(state, nonce))
}

// OIDCCallback handles GET /api/auth/oidc/callback
func (h *Handlers) OIDCCallback(c *gin.Context) {
	if h.OIDC == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "federated login is not enabled"})
		return
	}
	if reason := c.Query("error"); reason != "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "federated login failed: " + reason})
		return
	}

	// 1. --- Check state ---
	state, err := c.Cookie(oidcStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login state"})
		return
	}
	nonce, _ := c.Cookie(oidcNonceCookie)
	h.Cookies.Clear(c, oidcStateCookie)
	h.Cookies.Clear(c, oidcNonceCookie)

	// 2. --- Exchange code ---
	claims, err := h.OIDC.Exchange(c.Request.Context(), c.Query("code"), nonce)
	if err != nil {
		log.Warn().Err(err).Msg("oidc exchange failed")
		respondError(c, auth.ErrInvalidCredentials)
		return
	}
	// an unverified address could hijack a local account with the same e-mail
	if claims.Email == "" || !claims.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "a verified email address is required"})
		return
	}

	// 3. --- Find or create user ---
	var avatar *string
	if claims.Picture != "" {
		avatar = &claims.Picture
	}
	user, err := h.Store.UpsertFederatedUser(c.Request.Context(), claims.Issuer, claims.Subject, claims.Email, claims.Name, avatar)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.startSession(c, auth.FromUser(user), user); err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, strings.TrimRight(h.FrontendURL, "/")+"/account")
}

// --- Profile ---

type UpdateProfileInput struct {
	FullName    *string `json:"fullName" binding:"omitempty,min=1,max=120"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=30"`
	CompanyName *string `json:"companyName" binding:"omitempty,max=120"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

// GetProfile handles GET /api/client/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/client/profile; omitted fields are kept.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.Store.UpdateProfile(c.Request.Context(), currentUserID(c), store.ProfileUpdate{
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		CompanyName: input.CompanyName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword handles PUT /api/client/password. Accounts created through
// federated login have no password yet and may set one without the current.
func (h *Handlers) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	userID := currentUserID(c)
	user, err := h.Store.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if user.PasswordHash != nil {
		current := auth.Password{Hash: *user.PasswordHash}
		match, err := current.Matches(input.CurrentPassword)
		if err != nil {
			respondError(c, err)
			return
		}
		if !match {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed",
				"fields": gin.H{"currentPassword": "current password is incorrect"}})
			return
		}
	}

	var next auth.Password
	if err := next.Set(input.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	if err := h.Store.UpdatePasswordHash(c.Request.Context(), userID, next.Hash); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
