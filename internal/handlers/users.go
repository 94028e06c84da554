package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/campusgigs/internal/marketplace"
)

// POST /auth/login
func (h *Handler) Login(c echo.Context) error {
	var in marketplace.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := h.mp.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// GET /users/me?userEmail=
func (h *Handler) Me(c echo.Context) error {
	u, err := h.mp.GetUser(c.Request().Context(), c.QueryParam("userEmail"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

type profileRequest struct {
	Email string `json:"email"`
	marketplace.ProfilePatch
}

// PUT /users/profile
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.mp.UpdateProfile(c.Request().Context(), req.Email, req.ProfilePatch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
