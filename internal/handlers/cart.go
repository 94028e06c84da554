package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/campusgigs/internal/marketplace"
)

// GET /cart?userEmail=
func (h *Handler) GetCart(c echo.Context) error {
	items, err := h.mp.GetCart(c.Request().Context(), c.QueryParam("userEmail"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// POST /cart
func (h *Handler) AddToCart(c echo.Context) error {
	var in marketplace.CartInput
	if err := bind(c, &in); err != nil {
		return err
	}
	items, err := h.mp.AddOrUpdateCartEntry(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, items)
}

// DELETE /cart/:id?userEmail=
func (h *Handler) RemoveFromCart(c echo.Context) error {
	items, err := h.mp.RemoveCartEntry(c.Request().Context(), c.Param("id"), c.QueryParam("userEmail"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// GET /cart/contact?userEmail=
func (h *Handler) ContactHosts(c echo.Context) error {
	env, err := h.mp.ContactHosts(c.Request().Context(), c.QueryParam("userEmail"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, env)
}

type wishlistRequest struct {
	UserEmail string `json:"userEmail"`
	ServiceID string `json:"serviceId"`
}

// GET /wishlist?userEmail=
func (h *Handler) GetWishlist(c echo.Context) error {
	items, err := h.mp.GetWishlist(c.Request().Context(), c.QueryParam("userEmail"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// POST /wishlist toggles membership.
func (h *Handler) ToggleWishlist(c echo.Context) error {
	var req wishlistRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	items, err := h.mp.ToggleWishlistEntry(c.Request().Context(), req.UserEmail, req.ServiceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// DELETE /wishlist/:id?userEmail=
func (h *Handler) RemoveFromWishlist(c echo.Context) error {
	items, err := h.mp.RemoveWishlistEntry(c.Request().Context(), c.Param("id"), c.QueryParam("userEmail"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
