package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/habitus/habit-api/internal/api/middleware"
	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/pkg/i18n"
)

// ctxUserID returns the authenticated caller injected by the Auth middleware.
// An empty value means the middleware did not run for this route.
func ctxUserID(c echo.Context, tr i18n.Translator) (string, error) {
	userID, _ := c.Get(middleware.ContextKeyUserID).(string)
	if userID == "" {
		return "", domain.NewUnauthorizedError(tr.T(i18n.MsgUnauthorized))
	}
	return userID, nil
}
