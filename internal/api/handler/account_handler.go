package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-api/internal/core/ports"
)

// AccountHandler serves profile reads, self-service edits and self deletion,
// plus the per-account record listings.
type AccountHandler struct {
	accounts ports.AccountService
	posts    ports.PostService
	items    ports.ItemService
}

func NewAccountHandler(accounts ports.AccountService, posts ports.PostService, items ports.ItemService) *AccountHandler {
	return &AccountHandler{accounts: accounts, posts: posts, items: items}
}

// List handles GET /users.
//
// @Summary      List active accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /users [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.accounts.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountList(accounts))
}

// Get handles GET /users/:id.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	account, err := h.accounts.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Me handles GET /users/me.
//
// @Summary      Get the calling account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	principal, err := currentAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(principal))
}

// Update handles PATCH /users/:id. Only the account itself may edit it.
//
// @Summary      Update an account profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Account id"
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/{id} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	principal, err := currentAccount(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.Update(c.Request().Context(), principal, id, ports.AccountUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Bio:      req.Bio,
		Location: req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteMe handles DELETE /users/me: deactivates the caller and removes
// everything they own.
//
// @Summary      Delete the calling account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  deletionResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [delete]
func (h *AccountHandler) DeleteMe(c echo.Context) error {
	principal, err := currentAccount(c)
	if err != nil {
		return err
	}
	result, err := h.accounts.DeleteSelf(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDeletionResponse(result))
}

// Posts handles GET /users/:id/posts.
//
// @Summary      List an account's posts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {array}   postResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/posts [get]
func (h *AccountHandler) Posts(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.accounts.Get(ctx, id); err != nil {
		return err
	}
	posts, err := h.posts.ListByOwner(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPostList(posts))
}

// MyPosts handles GET /users/me/posts.
//
// @Summary      List the caller's posts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   postResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me/posts [get]
func (h *AccountHandler) MyPosts(c echo.Context) error {
	principal, err := currentAccount(c)
	if err != nil {
		return err
	}
	posts, err := h.posts.ListByOwner(c.Request().Context(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPostList(posts))
}

// MyItems handles GET /users/me/items.
//
// @Summary      List the caller's items
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   itemResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me/items [get]
func (h *AccountHandler) MyItems(c echo.Context) error {
	principal, err := currentAccount(c)
	if err != nil {
		return err
	}
	items, err := h.items.ListMine(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toItemList(items))
}
