package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sudo-init-do/campusgigs/internal/handlers"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/metrics"
	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store/jsonfile"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	s, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	mp := marketplace.New(s, marketplace.WithDescriptionPolicy(marketplace.DescriptionPolicy{Unit: marketplace.UnitWords, Min: 3}))
	return handlers.NewRouter(handlers.RouterConfig{
		Marketplace:    mp,
		Logger:         zerolog.Nop(),
		Metrics:        metrics.New(),
		LoginRateLimit: 100,
	})
}

type call struct {
	method  string
	target  string
	body    string
	headers map[string]string
}

func do(t *testing.T, e *echo.Echo, c call) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(c.method, c.target, strings.NewReader(c.body))
	if c.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

const listing = `{
	"title": "CAD Homework Lifeline",
	"description": "Step by step CAD help",
	"category": "project-help",
	"price": {"min": 1000, "max": 2000},
	"hostName": "Hari",
	"hostEmail": "h@bmsce.ac.in",
	"tags": ["cad"]
}`

func createListing(t *testing.T, e *echo.Echo) models.Service {
	t.Helper()
	rec := do(t, e, call{method: http.MethodPost, target: "/services", body: listing})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Service](t, rec)
}

func TestHealthAndReady(t *testing.T) {
	e := newServer(t)

	rec := do(t, e, call{method: http.MethodGet, target: "/health"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Greater(t, body["timestamp"], 0.0)

	rec = do(t, e, call{method: http.MethodGet, target: "/ready"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, call{method: http.MethodGet, target: "/metrics"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "campusgigs_http_requests_total")
}

func TestLogin(t *testing.T) {
	e := newServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		err    string
	}{
		{"missing email", `{}`, http.StatusBadRequest, "Email is required."},
		{"foreign domain", `{"email":"bad@gmail.com"}`, http.StatusForbidden, "Only BMSCE / BMSCA / BMSCL email IDs are allowed."},
		{"malformed body", `{"email":`, http.StatusBadRequest, "invalid request"},
		{"campus email", `{"email":"a@bmsce.ac.in","name":"A"}`, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, call{method: http.MethodPost, target: "/auth/login", body: tt.body})
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.err != "" {
				assert.Equal(t, tt.err, errorOf(t, rec))
			}
		})
	}

	rec := do(t, e, call{method: http.MethodGet, target: "/users/me?userEmail=a@bmsce.ac.in"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A", decode[models.User](t, rec).Name)
}

func TestUpdateProfile(t *testing.T) {
	e := newServer(t)
	do(t, e, call{method: http.MethodPost, target: "/auth/login", body: `{"email":"a@bmsce.ac.in"}`})

	rec := do(t, e, call{method: http.MethodPut, target: "/users/profile",
		body: `{"email":"a@bmsce.ac.in","phoneNumber":"98450","usn":"1BM22CS001","semester":"4"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"phoneNumber":"98450","usn":"1BM22CS001","semester":4}`, rec.Body.String())

	rec = do(t, e, call{method: http.MethodPut, target: "/users/profile", body: `{"email":"a@bmsce.ac.in","usn":""}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"phoneNumber":"98450","usn":null,"semester":4}`, rec.Body.String())

	rec = do(t, e, call{method: http.MethodPut, target: "/users/profile", body: `{"email":"ghost@bmsce.ac.in"}`})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found.", errorOf(t, rec))
}

func TestServices(t *testing.T) {
	e := newServer(t)
	svc := createListing(t, e)
	assert.Equal(t, 4.7, svc.HostRating)
	assert.True(t, svc.Price.IsRange())

	rec := do(t, e, call{method: http.MethodGet, target: "/services"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Service](t, rec), 1)

	rec = do(t, e, call{method: http.MethodPost, target: "/services",
		body: strings.Replace(listing, "h@bmsce.ac.in", "h@gmail.com", 1)})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for _, price := range []string{`"Inf"`, `"Infinity"`, `"NaN"`} {
		rec = do(t, e, call{method: http.MethodPost, target: "/services",
			body: strings.Replace(listing, `{"min": 1000, "max": 2000}`, price, 1)})
		assert.Equal(t, http.StatusBadRequest, rec.Code, price)
	}
	rec = do(t, e, call{method: http.MethodGet, target: "/services"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Service](t, rec), 1)

	rec = do(t, e, call{method: http.MethodDelete, target: "/services/" + svc.ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User email required.", errorOf(t, rec))

	rec = do(t, e, call{method: http.MethodDelete, target: "/services/" + svc.ID,
		headers: map[string]string{"x-user-email": "s@bmsce.ac.in"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, call{method: http.MethodGet, target: "/services/" + svc.ID + "/interests",
		headers: map[string]string{"x-user-email": "h@bmsce.ac.in"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, e, call{method: http.MethodDelete, target: "/services/" + svc.ID,
		headers: map[string]string{"x-user-email": "h@bmsce.ac.in"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service deleted successfully.", decode[map[string]string](t, rec)["message"])

	rec = do(t, e, call{method: http.MethodDelete, target: "/services/" + svc.ID,
		headers: map[string]string{"x-user-email": "h@bmsce.ac.in"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartWishlistAndOrders(t *testing.T) {
	e := newServer(t)
	svc := createListing(t, e)

	rec := do(t, e, call{method: http.MethodPost, target: "/cart",
		body: `{"userEmail":"s@bmsce.ac.in","serviceId":"` + svc.ID + `","quantity":2,"portfolioLink":"https://p.example","message":"` + strings.Repeat("m", 51) + `"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Message must be maximum 50 characters.", errorOf(t, rec))

	rec = do(t, e, call{method: http.MethodPost, target: "/cart",
		body: `{"userEmail":"s@bmsce.ac.in","serviceId":"` + svc.ID + `","quantity":2,"portfolioLink":"https://p.example","message":"hello"}`})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cart := decode[[]models.CartItem](t, rec)
	require.Len(t, cart, 1)
	require.NotNil(t, cart[0].Service)

	rec = do(t, e, call{method: http.MethodGet, target: "/cart"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, call{method: http.MethodGet, target: "/cart/contact?userEmail=s@bmsce.ac.in"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(decode[map[string]any](t, rec)["mailto"].(string), "mailto:h@bmsce.ac.in?"))

	rec = do(t, e, call{method: http.MethodPost, target: "/wishlist", body: `{"userEmail":"s@bmsce.ac.in","serviceId":"` + svc.ID + `"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	wish := decode[[]models.WishlistItem](t, rec)
	require.Len(t, wish, 1)

	rec = do(t, e, call{method: http.MethodDelete, target: "/wishlist/" + wish[0].ID + "?userEmail=s@bmsce.ac.in"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, e, call{method: http.MethodPost, target: "/orders", body: `{"userEmail":"s@bmsce.ac.in"}`})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orders := decode[[]models.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, 3000.0, orders[0].Total)

	rec = do(t, e, call{method: http.MethodGet, target: "/orders?userEmail=h@bmsce.ac.in"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.OrderView](t, rec), 1)

	rec = do(t, e, call{method: http.MethodDelete, target: "/cart/" + cart[0].ID + "?userEmail=s@bmsce.ac.in"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, e, call{method: http.MethodPost, target: "/orders", body: `{"userEmail":"s@bmsce.ac.in"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty.", errorOf(t, rec))
}

func TestAdminRoutes(t *testing.T) {
	e := newServer(t)
	createListing(t, e)

	for _, path := range []string{"/admin/inventory", "/admin/inventory/details", "/admin/stats"} {
		rec := do(t, e, call{method: http.MethodGet, target: path, headers: map[string]string{"x-admin-email": "h@bmsce.ac.in"}})
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "Admin access only.", errorOf(t, rec))

		rec = do(t, e, call{method: http.MethodGet, target: path, headers: map[string]string{"x-admin-email": marketplace.AdminEmail}})
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := do(t, e, call{method: http.MethodGet, target: "/admin/stats", headers: map[string]string{"x-admin-email": marketplace.AdminEmail}})
	assert.JSONEq(t, `{"users":0,"services":1,"hosts":1,"carts":0,"wishlists":0,"orders":0}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	e := newServer(t)
	rec := do(t, e, call{method: http.MethodOptions, target: "/services", headers: map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": http.MethodPost,
	}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestErrorHandlerHidesInternalCause(t *testing.T) {
	var logs bytes.Buffer
	s, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	e := handlers.NewRouter(handlers.RouterConfig{
		Marketplace: marketplace.New(s),
		Logger:      zerolog.New(&logs),
	})
	e.GET("/fail", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad input").SetInternal(errors.New("parse column secret_col"))
	})

	rec := do(t, e, call{method: http.MethodGet, target: "/fail"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad input", errorOf(t, rec))
	assert.NotContains(t, rec.Body.String(), "secret_col")
	assert.Contains(t, logs.String(), "secret_col")
}
