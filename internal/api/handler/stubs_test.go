package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-api/internal/api/middleware"
	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

// newContext builds an echo context with the validator installed, the way the
// router configures it.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, a *domain.Account) echo.Context {
	middleware.SetPrincipal(c, a)
	return c
}

// httpStatus returns the status carried by an *echo.HTTPError, or 0.
func httpStatus(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func expectStatus(t *testing.T, err error, want int) {
	t.Helper()
	if got := httpStatus(err); got != want {
		t.Fatalf("expected HTTP %d, got %v", want, err)
	}
}

func expectKind(t *testing.T, err error, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

var (
	alice = &domain.Account{ID: 1, Name: "alice", Email: "alice@x.io", IsActive: true, PasswordHash: "$2a$hash"}
	admin = &domain.Account{ID: 9, Name: "root", Email: "root@x.io", IsActive: true, IsAdmin: true}
)

// --- auth ---

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.Account, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	return s.loginFn(ctx, email, password)
}

// --- accounts ---

type stubAccountService struct {
	getFn        func(ctx context.Context, id int64) (*domain.Account, error)
	listActiveFn func(ctx context.Context) ([]*domain.Account, error)
	updateFn     func(ctx context.Context, principal *domain.Account, id int64, u ports.AccountUpdate) (*domain.Account, error)
	deleteSelfFn func(ctx context.Context, principal *domain.Account) (*domain.DeletionResult, error)
}

func (s *stubAccountService) Get(ctx context.Context, id int64) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *stubAccountService) ListActive(ctx context.Context) ([]*domain.Account, error) {
	return s.listActiveFn(ctx)
}

func (s *stubAccountService) Update(ctx context.Context, principal *domain.Account, id int64, u ports.AccountUpdate) (*domain.Account, error) {
	return s.updateFn(ctx, principal, id, u)
}

func (s *stubAccountService) DeleteSelf(ctx context.Context, principal *domain.Account) (*domain.DeletionResult, error) {
	return s.deleteSelfFn(ctx, principal)
}

type stubAdminService struct {
	setAdminFn    func(ctx context.Context, admin *domain.Account, id int64, makeAdmin bool) (*domain.Account, error)
	deleteFn      func(ctx context.Context, admin *domain.Account, id int64, reason *string) (*domain.DeletionResult, error)
	listDeletedFn func(ctx context.Context, admin *domain.Account) ([]*domain.Account, error)
}

func (s *stubAdminService) SetAdmin(ctx context.Context, admin *domain.Account, id int64, makeAdmin bool) (*domain.Account, error) {
	return s.setAdminFn(ctx, admin, id, makeAdmin)
}

func (s *stubAdminService) DeleteAccount(ctx context.Context, admin *domain.Account, id int64, reason *string) (*domain.DeletionResult, error) {
	return s.deleteFn(ctx, admin, id, reason)
}

func (s *stubAdminService) ListDeleted(ctx context.Context, admin *domain.Account) ([]*domain.Account, error) {
	return s.listDeletedFn(ctx, admin)
}

// --- records ---

type stubPostService struct {
	listFn        func(ctx context.Context) ([]*domain.Post, error)
	getFn         func(ctx context.Context, id int64) (*domain.Post, error)
	listByOwnerFn func(ctx context.Context, ownerID int64) ([]*domain.Post, error)
	createFn      func(ctx context.Context, principal *domain.Account, in ports.CreatePostInput) (*domain.Post, error)
	updateFn      func(ctx context.Context, principal *domain.Account, id int64, u ports.PostUpdate) (*domain.Post, error)
	deleteFn      func(ctx context.Context, principal *domain.Account, id int64) error
}

func (s *stubPostService) List(ctx context.Context) ([]*domain.Post, error) { return s.listFn(ctx) }

func (s *stubPostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.getFn(ctx, id)
}

func (s *stubPostService) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Post, error) {
	return s.listByOwnerFn(ctx, ownerID)
}

func (s *stubPostService) Create(ctx context.Context, principal *domain.Account, in ports.CreatePostInput) (*domain.Post, error) {
	return s.createFn(ctx, principal, in)
}

func (s *stubPostService) Update(ctx context.Context, principal *domain.Account, id int64, u ports.PostUpdate) (*domain.Post, error) {
	return s.updateFn(ctx, principal, id, u)
}

func (s *stubPostService) Delete(ctx context.Context, principal *domain.Account, id int64) error {
	return s.deleteFn(ctx, principal, id)
}

type stubItemService struct {
	listMineFn func(ctx context.Context, principal *domain.Account) ([]*domain.Item, error)
	getFn      func(ctx context.Context, principal *domain.Account, id int64) (*domain.Item, error)
	createFn   func(ctx context.Context, principal *domain.Account, in ports.CreateItemInput) (*domain.Item, error)
	updateFn   func(ctx context.Context, principal *domain.Account, id int64, u ports.ItemUpdate) (*domain.Item, error)
	deleteFn   func(ctx context.Context, principal *domain.Account, id int64) error
}

func (s *stubItemService) ListMine(ctx context.Context, principal *domain.Account) ([]*domain.Item, error) {
	return s.listMineFn(ctx, principal)
}

func (s *stubItemService) Get(ctx context.Context, principal *domain.Account, id int64) (*domain.Item, error) {
	return s.getFn(ctx, principal, id)
}

func (s *stubItemService) Create(ctx context.Context, principal *domain.Account, in ports.CreateItemInput) (*domain.Item, error) {
	return s.createFn(ctx, principal, in)
}

func (s *stubItemService) Update(ctx context.Context, principal *domain.Account, id int64, u ports.ItemUpdate) (*domain.Item, error) {
	return s.updateFn(ctx, principal, id, u)
}

func (s *stubItemService) Delete(ctx context.Context, principal *domain.Account, id int64) error {
	return s.deleteFn(ctx, principal, id)
}
