package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-api/internal/core/auth"
)

// Require enforces guards against the principal set by Auth. It must run
// after Auth.
func Require(guards ...auth.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.Authorize(Principal(c), nil, guards...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
