package service

import (
	"context"
	"errors"
	"testing"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

func strPtr(s string) *string { return &s }

func TestAccountService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	updated, err := env.accounts.Update(ctx, bob, bob.ID, ports.AccountUpdate{Bio: strPtr("I build things all day")})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Bio != "I build things all day" || updated.Name != "bob" {
		t.Fatalf("unexpected account after update: %+v", updated)
	}

	if _, err := env.accounts.Update(ctx, bob, bob.ID, ports.AccountUpdate{Name: strPtr("alice")}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict renaming to alice, got %v", err)
	}

	if _, err := env.accounts.Update(ctx, alice, alice.ID, ports.AccountUpdate{Name: strPtr("alice")}); err != nil {
		t.Fatalf("expected self rename to same value to pass, got %v", err)
	}

	if _, err := env.accounts.Update(ctx, alice, bob.ID, ports.AccountUpdate{Bio: strPtr("hijacked profile")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden updating someone else, got %v", err)
	}
}

func TestAccountService_Update_RejectsShortNameAfterTrim(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	for _, name := range []string{"   ", "", " ab "} {
		if _, err := env.accounts.Update(ctx, alice, alice.ID, ports.AccountUpdate{Name: strPtr(name)}); !errors.Is(err, domain.ErrBadRequest) {
			t.Fatalf("name %q: expected bad request, got %v", name, err)
		}
	}

	got, err := env.accounts.Get(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "alice" {
		t.Fatalf("expected name to stay alice, got %q", got.Name)
	}

	updated, err := env.accounts.Update(ctx, alice, alice.ID, ports.AccountUpdate{Name: strPtr("  alicia ")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "alicia" {
		t.Fatalf("expected trimmed name, got %q", updated.Name)
	}
}

type panicAccounts struct{ ports.AccountRepository }

func (panicAccounts) FindByID(context.Context, int64) (*domain.Account, error) {
	panic("store must not be touched")
}

func TestAccountService_Update_EmptyChangeTouchesNothing(t *testing.T) {
	env := newTestEnv(t)
	bob := env.register(t, "bob")

	svc := NewAccountService(panicAccounts{env.store.Accounts}, nil, nil, env.accounts.log)
	_, err := svc.Update(context.Background(), bob, bob.ID, ports.AccountUpdate{})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestAccountService_GetAndList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	if _, err := env.accounts.DeleteSelf(ctx, bob); err != nil {
		t.Fatalf("DeleteSelf: %v", err)
	}

	active, err := env.accounts.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].ID != alice.ID {
		t.Fatalf("expected only alice active, got %+v", active)
	}

	if _, err := env.accounts.Get(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := env.accounts.DeleteSelf(ctx, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAdminService_SetAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.register(t, "root")
	if _, err := env.store.Accounts.SetAdmin(ctx, root.ID, true); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	root = env.mustGet(t, "root")
	carol := env.register(t, "carol")

	promoted, err := env.admin.SetAdmin(ctx, root, carol.ID, true)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !promoted.IsAdmin {
		t.Fatalf("expected carol to be admin")
	}

	if _, err := env.admin.SetAdmin(ctx, root, carol.ID, true); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request on redundant promote, got %v", err)
	}
	if _, err := env.admin.SetAdmin(ctx, root, root.ID, false); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden on self demote, got %v", err)
	}
	if _, err := env.admin.SetAdmin(ctx, root, 404, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := env.admin.SetAdmin(ctx, env.mustGet(t, "carol"), root.ID, false); err != nil {
		t.Fatalf("carol demoting root: %v", err)
	}
}

func TestAdminService_DeleteAndListDeleted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.register(t, "root")
	if _, err := env.store.Accounts.SetAdmin(ctx, root.ID, true); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	root = env.mustGet(t, "root")
	dave := env.register(t, "dave")

	if _, err := env.posts.Create(ctx, dave, ports.CreatePostInput{Content: "hello"}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	res, err := env.admin.DeleteAccount(ctx, root, dave.ID, strPtr("rule violation"))
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if res.Removed() != 1 {
		t.Fatalf("expected 1 removed record, got %d", res.Removed())
	}

	deleted, err := env.admin.ListDeleted(ctx, root)
	if err != nil {
		t.Fatalf("ListDeleted: %v", err)
	}
	if len(deleted) != 1 || deleted[0].Provenance() != domain.ProvenanceAdminDeleted {
		t.Fatalf("unexpected deleted list: %+v", deleted)
	}

	if _, err := env.admin.ListDeleted(ctx, env.register(t, "eve")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
}
