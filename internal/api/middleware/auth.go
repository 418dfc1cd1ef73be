package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-api/internal/core/auth"
	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/pkg/metrics"
)

const principalKey = "principal"

// PrincipalResolver turns a request into the calling account.
type PrincipalResolver interface {
	Resolve(ctx context.Context, req *http.Request) (*domain.Account, error)
}

// Auth resolves the caller from the access-token cookie or bearer header and
// injects the account into the context. Failures are counted by reason and
// handed to the error handler.
func Auth(resolver PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, err := resolver.Resolve(c.Request().Context(), c.Request())
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues(auth.FailureReason(err)).Inc()
				return err
			}

			SetPrincipal(c, account)
			return next(c)
		}
	}
}

// SetPrincipal stores the authenticated account on c.
func SetPrincipal(c echo.Context, account *domain.Account) {
	c.Set(principalKey, account)
}

// Principal returns the account set by Auth, or nil.
func Principal(c echo.Context) *domain.Account {
	account, _ := c.Get(principalKey).(*domain.Account)
	return account
}
