package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Connector is the part of the database connector the middleware needs.
type Connector interface {
	Connect(ctx context.Context) error
}

// EnsureConnection makes sure the database connection is attempted before the
// request is dispatched. A failed attempt is logged and the request proceeds;
// the persistence call then retries and fails with the operation's error.
func EnsureConnection(conn Connector, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := conn.Connect(c.Request().Context()); err != nil {
				log.Warn().Err(err).Str("path", c.Path()).Msg("database connection unavailable, continuing")
			}
			return next(c)
		}
	}
}
