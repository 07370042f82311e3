package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/01moynul/inkframe-golang/internal/auth"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookie = "session"
	CartCookie    = "cart_session"

	authContextKey = "authContext"
	cartSessionKey = "cartSession"

	cartCookieTTL = 30 * 24 * time.Hour
)

// Cookies holds the attributes shared by every cookie the API sets.
type Cookies struct {
	Secure bool
	Domain string
}

func (ck Cookies) Set(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", ck.Domain, ck.Secure, true)
}

func (ck Cookies) Clear(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", ck.Domain, ck.Secure, true)
}

// Session resolves the caller's AuthContext once per request. A missing or
// invalid session falls back to Anonymous keyed by the cart cookie, which
// is created on first visit.
func Session(sessions *auth.SessionManager, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartSession, err := c.Cookie(CartCookie)
		if err != nil || cartSession == "" {
			cartSession = uuid.NewString()
			cookies.Set(c, CartCookie, cartSession, cartCookieTTL)
		}
		c.Set(cartSessionKey, cartSession)

		var ac auth.AuthContext = auth.Anonymous{SessionID: cartSession}
		if token := sessionToken(c); token != "" {
			resolved, err := sessions.Parse(c.Request.Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("ignoring invalid session")
				cookies.Clear(c, SessionCookie)
			} else {
				ac = resolved
			}
		}
		c.Set(authContextKey, ac)
		c.Next()
	}
}

// sessionToken reads the session cookie, falling back to a Bearer header.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// SessionToken exposes the raw token for logout.
func SessionToken(c *gin.Context) string {
	return sessionToken(c)
}

func Auth(c *gin.Context) auth.AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		if ac, ok := v.(auth.AuthContext); ok {
			return ac
		}
	}
	return auth.Anonymous{SessionID: CartSessionID(c)}
}

func UserID(c *gin.Context) (int64, bool) {
	return auth.UserIDOf(Auth(c))
}

func CartSessionID(c *gin.Context) string {
	return c.GetString(cartSessionKey)
}

// CartOwner is the user when signed in, otherwise the anonymous session.
func CartOwner(c *gin.Context) models.CartOwner {
	if id, ok := UserID(c); ok {
		return models.UserOwner(id)
	}
	return models.SessionOwner(CartSessionID(c))
}

// SetAuth replaces the request's AuthContext after a login.
func SetAuth(c *gin.Context, ac auth.AuthContext) {
	c.Set(authContextKey, ac)
}
