// Package handlers exposes the marketplace over HTTP.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
)

type Handler struct {
	mp     *marketplace.Marketplace
	logger zerolog.Logger
}

func New(mp *marketplace.Marketplace, logger zerolog.Logger) *Handler {
	return &Handler{mp: mp, logger: logger}
}

// ErrorHandler renders errors as {"error": message}. Internal failures are
// logged and hidden from the client.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			msg    string
			he     *echo.HTTPError
		)
		if errors.As(err, &he) {
			status = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				logger.Warn().Err(he.Internal).Int("status", status).Str("path", c.Path()).Msg("request rejected")
			}
		} else {
			status = apperr.HTTPStatus(apperr.KindOf(err))
			msg = apperr.MessageOf(err)
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"error": msg})
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperr.BadRequest("invalid request")
	}
	return nil
}
