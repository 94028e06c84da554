package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health always answers while the process is up.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "timestamp": time.Now().UnixMilli()})
}

// Ready reports whether the store answers.
func (h *Handler) Ready(c echo.Context) error {
	if err := h.mp.Ping(c.Request().Context()); err != nil {
		h.logger.Warn().Err(err).Msg("store not ready")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "store unreachable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
