package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/sudo-init-do/campusgigs/internal/middleware"
)

type checkoutRequest struct {
	UserEmail string `json:"userEmail"`
}

// POST /orders
func (h *Handler) PlaceOrders(c echo.Context) error {
	var req checkoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	orders, err := h.mp.PlaceOrders(c.Request().Context(), req.UserEmail)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, orders)
}

// GET /orders?userEmail=
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.mp.ListOrders(c.Request().Context(), c.QueryParam("userEmail"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GET /admin/inventory
func (h *Handler) Inventory(c echo.Context) error {
	inv, err := h.mp.InventorySnapshot(c.Request().Context(), mw.AdminEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

// GET /admin/inventory/details
func (h *Handler) InventoryDetails(c echo.Context) error {
	d, err := h.mp.InventoryDetails(c.Request().Context(), mw.AdminEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// GET /admin/stats
func (h *Handler) Stats(c echo.Context) error {
	s, err := h.mp.Stats(c.Request().Context(), mw.AdminEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}
