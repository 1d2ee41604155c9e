package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/habitus/habit-api/internal/core/domain"
	"github.com/habitus/habit-api/internal/pkg/i18n"
)

// ContextKeyUserID is the echo context key holding the authenticated user id.
const ContextKeyUserID = "user_id"

// Auth validates the JWT and injects the subject into context as the user id.
// Every rejection is an unauthorized error rendered by the HTTP error handler.
func Auth(jwtSecret string, tr i18n.Translator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			unauthorized := domain.NewUnauthorizedError(tr.T(i18n.MsgUnauthorized))

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorized
			}

			claims := &jwt.RegisteredClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid || claims.Subject == "" {
				return unauthorized
			}

			c.Set(ContextKeyUserID, claims.Subject)

			return next(c)
		}
	}
}
