package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/pkg/i18n"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps error kinds to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger, tr i18n.Translator) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, tr, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, tr i18n.Translator, c echo.Context) (int, string) {
	// Echo's own errors (404 from router, 405, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Classified errors carry a message that is safe to return as is.
	if msg := domain.MessageOf(err); msg != "" {
		switch {
		case errors.Is(err, domain.ErrHabitNotFound):
			return http.StatusNotFound, msg
		case errors.Is(err, domain.ErrForbidden):
			return http.StatusForbidden, msg
		case errors.Is(err, domain.ErrValidation):
			return http.StatusBadRequest, msg
		case errors.Is(err, domain.ErrUnauthorized):
			return http.StatusUnauthorized, msg
		case errors.Is(err, domain.ErrInternal):
			return http.StatusInternalServerError, msg
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, tr.T(i18n.MsgInternal)
}
