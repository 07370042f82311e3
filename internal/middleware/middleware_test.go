package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/01moynul/inkframe-golang/internal/auth"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleMap map[int64]models.Role

func (m roleMap) UserRole(_ context.Context, id int64) (models.Role, error) {
	r, ok := m[id]
	if !ok {
		return "", store.ErrNotFound
	}
	return r, nil
}

func newEngine(sessions *auth.SessionManager, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(sessions, Cookies{}))
	handlers := append(extra, func(c *gin.Context) {
		owner := CartOwner(c)
		c.JSON(http.StatusOK, gin.H{"owner": owner.String()})
	})
	r.GET("/probe", handlers...)
	return r
}

func TestSessionFallsBackToAnonymous(t *testing.T) {
	r := newEngine(auth.NewSessionManager("secret", time.Hour, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "session:")

	var cart *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CartCookie {
			cart = ck
		}
	}
	require.NotNil(t, cart)
	assert.True(t, cart.HttpOnly)
	assert.NotEmpty(t, cart.Value)
}

func TestSessionResolvesSignedInUser(t *testing.T) {
	sessions := auth.NewSessionManager("secret", time.Hour, nil)
	s, err := sessions.Issue(auth.LocalSession{UserID: 12, Role: models.RoleCustomer})
	require.NoError(t, err)
	r := newEngine(sessions)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: s.Token})
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: "cart-1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "user:12")

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+s.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "user:12")
}

func TestRequireUser(t *testing.T) {
	sessions := auth.NewSessionManager("secret", time.Hour, nil)
	r := newEngine(sessions, RequireUser())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminRechecksRole(t *testing.T) {
	sessions := auth.NewSessionManager("secret", time.Hour, nil)
	roles := roleMap{1: models.RoleAdmin, 2: models.RoleCustomer}
	r := newEngine(sessions, RequireUser(), RequireAdmin(roles))

	tests := []struct {
		name   string
		userID int64
		claim  models.Role
		want   int
	}{
		{"admin", 1, models.RoleAdmin, http.StatusOK},
		{"customer", 2, models.RoleCustomer, http.StatusForbidden},
		{"demoted admin", 2, models.RoleAdmin, http.StatusForbidden},
		{"deleted user", 3, models.RoleAdmin, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := sessions.Issue(auth.LocalSession{UserID: tt.userID, Role: tt.claim})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: s.Token})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewIPRateLimiter(1, 2).Middleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://studio.example"), RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://studio.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
