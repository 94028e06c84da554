package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	mw "github.com/sudo-init-do/campusgigs/internal/middleware"
)

// GET /services
func (h *Handler) ListServices(c echo.Context) error {
	services, err := h.mp.ListServices(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, services)
}

// POST /services
func (h *Handler) CreateService(c echo.Context) error {
	var in marketplace.ServiceInput
	if err := bind(c, &in); err != nil {
		return err
	}
	svc, err := h.mp.CreateService(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, svc)
}

// DELETE /services/:id
func (h *Handler) DeleteService(c echo.Context) error {
	if err := h.mp.DeleteService(c.Request().Context(), c.Param("id"), mw.UserEmail(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Service deleted successfully."})
}

// GET /services/:id/interests
func (h *Handler) ListInterests(c echo.Context) error {
	entries, err := h.mp.ListInterests(c.Request().Context(), c.Param("id"), mw.UserEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
