package routes

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/01moynul/inkframe-golang/internal/auth"
	"github.com/01moynul/inkframe-golang/internal/cart"
	"github.com/01moynul/inkframe-golang/internal/checkout"
	"github.com/01moynul/inkframe-golang/internal/email"
	"github.com/01moynul/inkframe-golang/internal/events"
	"github.com/01moynul/inkframe-golang/internal/handlers"
	"github.com/01moynul/inkframe-golang/internal/middleware"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/payments"
	"github.com/01moynul/inkframe-golang/internal/status"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/01moynul/inkframe-golang/internal/uploads"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	router   http.Handler
	mock     sqlmock.Sqlmock
	sessions *auth.SessionManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(sqlx.NewDb(db, "mysql"))
	mailer := email.NewMailerWithSender(nil, email.Config{})
	gateway := payments.NewGateway(payments.Config{WebhookSecret: "whsec_test", Currency: "sar"})
	sessions := auth.NewSessionManager("test-secret-at-least-32-bytes-long", time.Hour, nil)

	h := &handlers.Handlers{
		Store:    st,
		Cart:     cart.NewService(cart.FromStore(st)),
		Checkout: checkout.NewService(checkout.FromStore(st), mailer, events.Nop{}, gateway),
		Status:   status.NewManager(status.FromStore(st), mailer, nil),
		Sessions: sessions,
		Mailer:   mailer,
		Payments: gateway,
		Uploads:  uploads.NewStorage(t.TempDir(), "http://localhost:8080"),
		Events:   events.Nop{},
		Cookies:  middleware.Cookies{},

		FrontendURL: "http://localhost:3000",
	}
	return &testApp{router: SetupRouter(h), mock: mock, sessions: sessions}
}

// token signs a session for a user with the given role.
func (a *testApp) token(t *testing.T, id int64, role models.Role) string {
	t.Helper()
	s, err := a.sessions.Issue(auth.LocalSession{UserID: id, Email: "user@example.com", Role: role})
	require.NoError(t, err)
	return s.Token
}

func (a *testApp) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeFields(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Fields
}

func TestHealthIssuesCartCookie(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.CartCookie+"=")
}

func TestCheckoutRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/checkout", `{"paymentMethod":"cod"}`, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientRoutesRequireLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/client/orders", "/api/client/profile", "/api/client/notifications"} {
		w := app.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestInvalidBearerFallsBackToAnonymous(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/client/orders", "", "not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	app := newTestApp(t)
	app.mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM users WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("customer"))

	w := app.do(http.MethodGet, "/api/admin/orders", "", app.token(t, 5, models.RoleCustomer))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestAdminRoleIsReadFromDatabase(t *testing.T) {
	app := newTestApp(t)
	// the token still claims admin but the account was demoted
	app.mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM users WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("customer"))

	w := app.do(http.MethodGet, "/api/admin/dashboard", "", app.token(t, 1, models.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminCreateProductValidation(t *testing.T) {
	app := newTestApp(t)
	app.mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM users WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

	w := app.do(http.MethodPost, "/api/admin/products", `{"description":"no name"}`, app.token(t, 1, models.RoleAdmin))

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeFields(t, w)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "price")
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestUnknownProductSlugIsNotFound(t *testing.T) {
	app := newTestApp(t)
	app.mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE slug = ? AND is_active = 1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := app.do(http.MethodGet, "/api/products/missing", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestLoginUnknownEmail(t *testing.T) {
	app := newTestApp(t)
	app.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := app.do(http.MethodPost, "/api/auth/login", `{"email":"Nobody@Example.com","password":"whatever1"}`, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), auth.ErrInvalidCredentials.Error())
	for _, ck := range w.Result().Cookies() {
		assert.NotEqual(t, middleware.SessionCookie, ck.Name)
	}
}

func TestAddToCartRejectsZeroQuantity(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/cart/items", `{"productId":3,"quantity":0}`, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeFields(t, w), "quantity")
}

func TestQuoteValidation(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/quotes", `{"email":"nope"}`, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeFields(t, w)
	for _, f := range []string{"name", "email", "serviceType", "message"} {
		assert.Contains(t, fields, f)
	}
}

func TestQuoteFormIsRateLimited(t *testing.T) {
	app := newTestApp(t)

	var last int
	for i := 0; i < formsBurst+1; i++ {
		last = app.do(http.MethodPost, "/api/quotes", `{}`, "").Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestBookingInThePast(t *testing.T) {
	app := newTestApp(t)
	body := `{"serviceName":"Portrait session","name":"Sara","email":"sara@example.com",` +
		`"phone":"0500000000","date":"2020-01-01","time":"10:00"}`

	w := app.do(http.MethodPost, "/api/bookings", body, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeFields(t, w), "date")
}

func TestWebhookWithBadSignature(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()

	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func (a *testApp) expectRole(id int64, role models.Role) {
	a.mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM users WHERE id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(string(role)))
}

var bookingRowColumns = []string{"id", "user_id", "service_id", "service_name", "guest_name", "guest_email",
	"guest_phone", "booking_date", "booking_time", "location", "notes", "status", "created_at", "updated_at"}

func TestAdminBookingUpdateCannotChangeStatus(t *testing.T) {
	app := newTestApp(t)
	now := time.Now()
	app.expectRole(1, models.RoleAdmin)

	app.mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow(12, nil, nil, "Portrait session", "Sara", "sara@example.com", "0500000000",
				"2026-11-20", "10:00", "Studio A", nil, "pending", now, now))
	// the SET list runs straight into WHERE, so status is not among the columns
	app.mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET service_id = ?, service_name = ?, guest_name = ?, " +
		"guest_email = ?, guest_phone = ?, booking_date = ?, booking_time = ?, location = ?, notes = ? WHERE id = ?")).
		WithArgs(sqlmock.AnyArg(), "Portrait session", "Sara", "sara@example.com", "0500000000",
			"2026-11-20", "10:00", "Studio A", "bring the backdrop", int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	app.mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow(12, nil, nil, "Portrait session", "Sara", "sara@example.com", "0500000000",
				"2026-11-20", "10:00", "Studio A", "bring the backdrop", "pending", now, now))

	w := app.do(http.MethodPut, "/api/admin/bookings/12",
		`{"notes":"bring the backdrop","status":"completed"}`, app.token(t, 1, models.RoleAdmin))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.BookingPending, got.Status)
	assert.Equal(t, "Sara", got.GuestName)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "bring the backdrop", *got.Notes)
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestAdminUpdateMissingRowIsNotFound(t *testing.T) {
	app := newTestApp(t)
	app.expectRole(1, models.RoleAdmin)
	app.mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	w := app.do(http.MethodPut, "/api/admin/bookings/404", `{"notes":"x"}`, app.token(t, 1, models.RoleAdmin))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestBookingFormIsRateLimited(t *testing.T) {
	app := newTestApp(t)

	var last int
	for i := 0; i < formsBurst+1; i++ {
		last = app.do(http.MethodPost, "/api/bookings", `{}`, "").Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func signedWebhook(payload, secret string) *http.Request {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return req
}

func TestWebhookForRefundedOrderIsAcknowledged(t *testing.T) {
	app := newTestApp(t)
	orderRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "order_number", "user_id", "status", "payment_status", "payment_ref"}).
			AddRow(9, "ORD-9", 7, "delivered", "refunded", "cs_test_9")
	}
	app.mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).WithArgs(int64(9)).WillReturnRows(orderRow())
	app.mock.ExpectBegin()
	app.mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ? FOR UPDATE")).WithArgs(int64(9)).WillReturnRows(orderRow())
	app.mock.ExpectRollback()

	payload := `{"id":"evt_9","object":"event","api_version":"2023-10-16","type":"checkout.session.completed",` +
		`"data":{"object":{"id":"cs_test_9","object":"checkout.session","payment_status":"paid","metadata":{"order_id":"9"}}}}`
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, signedWebhook(payload, "whsec_test"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestOrderDetailInvoiceLookup(t *testing.T) {
	tests := []struct {
		name      string
		invoice   func(*sqlmock.ExpectedQuery)
		logsError bool
	}{
		{"no invoice yet", func(q *sqlmock.ExpectedQuery) {
			q.WillReturnRows(sqlmock.NewRows([]string{"id"}))
		}, false},
		{"database error", func(q *sqlmock.ExpectedQuery) {
			q.WillReturnError(fmt.Errorf("connection reset"))
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := log.Logger
			log.Logger = zerolog.New(&buf)
			t.Cleanup(func() { log.Logger = prev })

			app := newTestApp(t)
			app.mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ? AND user_id = ?")).
				WithArgs(int64(9), int64(7)).
				WillReturnRows(sqlmock.NewRows([]string{"id", "order_number", "user_id", "status", "payment_status"}).
					AddRow(9, "ORD-9", 7, "pending", "pending"))
			app.mock.ExpectQuery(regexp.QuoteMeta("FROM order_status_history WHERE order_id = ?")).
				WithArgs(int64(9)).
				WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "status", "note", "created_at"}).
					AddRow(1, 9, "pending", nil, time.Now()))
			tt.invoice(app.mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE order_id = ?")).WithArgs(int64(9)))

			w := app.do(http.MethodGet, "/api/client/orders/9", "", app.token(t, 7, models.RoleCustomer))

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "ORD-9", body["orderNumber"])
			assert.NotContains(t, body, "invoice")
			assert.Equal(t, tt.logsError, strings.Contains(buf.String(), "failed to load invoice for order"))
			assert.NoError(t, app.mock.ExpectationsWereMet())
		})
	}
}
