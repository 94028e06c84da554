package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/services/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/services/:id", "204")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "no") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/boom", "418")))
}

func TestEvents(t *testing.T) {
	m := New()
	m.UserSignedIn(true)
	m.UserSignedIn(false)
	m.UserSignedIn(false)
	m.ServiceCreated()
	m.ServiceDeleted()
	m.CartUpdated()
	m.OrdersPlaced(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.signIns.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.signIns.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listings.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartUpdates))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ordersCreated))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.OrdersPlaced(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "campusgigs_marketplace_orders_created_total 1")
}
