package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/recordhub/records-api/internal/core/auth"
	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/lifecycle"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/internal/core/validation"
	"github.com/recordhub/records-api/internal/infrastructure/db/memory"
)

type testEnv struct {
	store    ports.Store
	tokens   *auth.TokenService
	auth     *AuthService
	accounts *AccountService
	admin    *AdminService
	posts    *PostService
	items    *ItemService
	idem     *stubIdempotency
}

type stubIdempotency struct {
	keys map[string]int64
	err  error
}

func (s *stubIdempotency) Lookup(_ context.Context, scope, key string) (int64, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	id, ok := s.keys[scope+"|"+key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, scope, key string, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.keys[scope+"|"+key] = id
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	st := memory.New().Ports()

	tokens, err := auth.NewTokenService("secret", "HS256", auth.WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	engine := validation.NewEngine(st.Exists, log)
	lm := lifecycle.NewManager(st, log)
	idem := &stubIdempotency{keys: map[string]int64{}}

	return &testEnv{
		store:    st,
		tokens:   tokens,
		auth:     NewAuthService(st.Accounts, engine, auth.NewHasher(bcrypt.MinCost), tokens, log),
		accounts: NewAccountService(st.Accounts, engine, lm, log),
		admin:    NewAdminService(st.Accounts, lm, log),
		posts:    NewPostService(st.Posts, engine, idem, log),
		items:    NewItemService(st.Items, engine, idem, log),
		idem:     idem,
	}
}

func (e *testEnv) register(t *testing.T, name string) *domain.Account {
	t.Helper()
	acc, err := e.auth.Register(context.Background(), ports.RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "pass123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return acc
}

func TestAuthService_Register_Success(t *testing.T) {
	env := newTestEnv(t)

	acc, err := env.auth.Register(context.Background(), ports.RegisterInput{
		Name:     "  alice ",
		Email:    "Alice@Example.com",
		Password: "pass123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if acc.Name != "alice" || acc.Email != "alice@example.com" {
		t.Fatalf("expected normalised name/email, got %q %q", acc.Name, acc.Email)
	}
	if acc.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if acc.Bio != domain.DefaultBio {
		t.Fatalf("expected default bio, got %q", acc.Bio)
	}
	if !acc.IsActive || acc.IsAdmin {
		t.Fatalf("expected active non-admin account, got %+v", acc)
	}
}

func TestAuthService_Register_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.auth.Register(context.Background(), ports.RegisterInput{Name: "alice", Email: "new@example.com", Password: "pw12"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on name, got %v", err)
	}

	_, err = env.auth.Register(context.Background(), ports.RegisterInput{Name: "other", Email: "ALICE@example.com", Password: "pw12"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on email, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), ports.RegisterInput{Name: "bob", Email: "bob@example.com"})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request for missing password, got %v", err)
	}
}

func TestAuthService_Register_ShortNameAfterTrim(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"  ab", "   ", "ab "} {
		_, err := env.auth.Register(context.Background(), ports.RegisterInput{Name: name, Email: "short@example.com", Password: "pass123"})
		if !errors.Is(err, domain.ErrBadRequest) {
			t.Fatalf("name %q: expected bad request, got %v", name, err)
		}
	}
	if _, err := env.store.Accounts.FindByEmail(context.Background(), "short@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "alice")

	token, got, err := env.auth.Login(context.Background(), "ALICE@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if got.ID != acc.ID {
		t.Fatalf("expected account %d, got %d", acc.ID, got.ID)
	}
	id, err := env.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id != acc.ID {
		t.Fatalf("expected subject %d, got %d", acc.ID, id)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "alice")
	env.register(t, "bob")
	if _, err := env.accounts.DeleteSelf(context.Background(), env.mustGet(t, "bob")); err != nil {
		t.Fatalf("delete bob: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty", "", "", domain.ErrBadCredentials},
		{"unknown email", "nobody@example.com", "pass123", domain.ErrBadCredentials},
		{"wrong password", acc.Email, "wrong", domain.ErrBadCredentials},
		{"deleted account", "bob@example.com", "pass123", domain.ErrAccountDeleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.auth.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected unauthenticated kind, got %v", err)
			}
		})
	}
}

func (e *testEnv) mustGet(t *testing.T, name string) *domain.Account {
	t.Helper()
	acc, err := e.store.Accounts.FindByEmail(context.Background(), name+"@example.com")
	if err != nil {
		t.Fatalf("find %s: %v", name, err)
	}
	return acc
}
