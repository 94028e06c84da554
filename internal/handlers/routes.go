package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/metrics"
	mw "github.com/sudo-init-do/campusgigs/internal/middleware"
)

type RouterConfig struct {
	Marketplace    *marketplace.Marketplace
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	LoginRateLimit float64
	AllowOrigins   []string
}

// NewRouter builds the echo instance serving every route.
func NewRouter(cfg RouterConfig) *echo.Echo {
	h := New(cfg.Marketplace, cfg.Logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(cfg.Logger)

	e.Use(echomw.Recover())
	e.Use(mw.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		e.Use(cfg.Metrics.Middleware())
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics.Handler()))
	}
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderContentType, mw.HeaderUserEmail, mw.HeaderAdminEmail},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)

	rate := cfg.LoginRateLimit
	if rate <= 0 {
		rate = 20
	}
	e.POST("/auth/login", h.Login, mw.RateLimit(rate))

	e.GET("/users/me", h.Me)
	e.PUT("/users/profile", h.UpdateProfile)

	e.GET("/services", h.ListServices)
	e.POST("/services", h.CreateService)
	e.DELETE("/services/:id", h.DeleteService, mw.RequireUserEmail)
	e.GET("/services/:id/interests", h.ListInterests, mw.RequireUserEmail)

	e.GET("/cart", h.GetCart)
	e.POST("/cart", h.AddToCart)
	e.DELETE("/cart/:id", h.RemoveFromCart)
	e.GET("/cart/contact", h.ContactHosts)

	e.GET("/wishlist", h.GetWishlist)
	e.POST("/wishlist", h.ToggleWishlist)
	e.DELETE("/wishlist/:id", h.RemoveFromWishlist)

	e.POST("/orders", h.PlaceOrders)
	e.GET("/orders", h.ListOrders)

	admin := e.Group("/admin", mw.AdminGuard)
	admin.GET("/inventory", h.Inventory)
	admin.GET("/inventory/details", h.InventoryDetails)
	admin.GET("/stats", h.Stats)

	return e
}
