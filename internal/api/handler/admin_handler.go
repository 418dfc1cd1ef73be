package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-api/internal/core/ports"
)

// AdminHandler serves the admin-only account routes. The router mounts it
// behind Auth and Require(auth.RequireAdmin); the service re-checks.
type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Promote handles PATCH /admin/users/:id/promote.
//
// @Summary      Grant admin rights
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/promote [patch]
func (h *AdminHandler) Promote(c echo.Context) error {
	return h.setAdmin(c, true)
}

// Demote handles PATCH /admin/users/:id/demote.
//
// @Summary      Revoke admin rights
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/demote [patch]
func (h *AdminHandler) Demote(c echo.Context) error {
	return h.setAdmin(c, false)
}

func (h *AdminHandler) setAdmin(c echo.Context, makeAdmin bool) error {
	principal, err := currentAccount(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	account, err := h.admin.SetAdmin(c.Request().Context(), principal, id, makeAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Delete handles DELETE /admin/users/:id. A reason of at least five
// characters is mandatory.
//
// @Summary      Delete an account as admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Account id"
// @Param        body  body      deleteAccountRequest  true  "Deletion reason"
// @Success      200   {object}  deletionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	principal, err := currentAccount(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req deleteAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.admin.DeleteAccount(c.Request().Context(), principal, id, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDeletionResponse(result))
}

// Deleted handles GET /admin/users/deleted, newest deletion first.
//
// @Summary      List deleted accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   accountResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users/deleted [get]
func (h *AdminHandler) Deleted(c echo.Context) error {
	principal, err := currentAccount(c)
	if err != nil {
		return err
	}
	accounts, err := h.admin.ListDeleted(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountList(accounts))
}
