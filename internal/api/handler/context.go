package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-api/internal/api/middleware"
	"github.com/recordhub/records-api/internal/core/domain"
)

// HeaderIdempotencyKey carries the client-supplied key for create requests.
const HeaderIdempotencyKey = "Idempotency-Key"

// currentAccount returns the principal injected by the Auth middleware. A nil
// principal means the route was mounted without Auth; reject with 401.
func currentAccount(c echo.Context) (*domain.Account, error) {
	account := middleware.Principal(c)
	if account == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return account, nil
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
