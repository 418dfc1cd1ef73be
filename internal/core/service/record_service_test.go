package service

import (
	"context"
	"errors"
	"testing"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

func TestPostService_Ownership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	post, err := env.posts.Create(ctx, alice, ports.CreatePostInput{Content: "first"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := env.posts.Update(ctx, bob, post.ID, ports.PostUpdate{Content: strPtr("mine now")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	if err := env.posts.Delete(ctx, bob, post.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if _, err := env.posts.Update(ctx, alice, post.ID, ports.PostUpdate{}); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request on empty update, got %v", err)
	}

	updated, err := env.posts.Update(ctx, alice, post.ID, ports.PostUpdate{Content: strPtr("edited")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("unexpected content %q", updated.Content)
	}

	if err := env.posts.Delete(ctx, alice, post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := env.posts.Get(ctx, post.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPostService_IdempotentCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	first, err := env.posts.Create(ctx, alice, ports.CreatePostInput{Content: "once", IdempotencyKey: "k1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	again, err := env.posts.Create(ctx, alice, ports.CreatePostInput{Content: "once", IdempotencyKey: "k1"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected replay of %d, got %d", first.ID, again.ID)
	}

	// Keys are scoped per owner.
	other, err := env.posts.Create(ctx, bob, ports.CreatePostInput{Content: "once", IdempotencyKey: "k1"})
	if err != nil {
		t.Fatalf("Create for bob: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("expected a new post for another owner")
	}

	all, _ := env.posts.List(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(all))
	}
}

func TestPostService_IdempotencyOutageStillCreates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	env.idem.err = errors.New("redis down")

	if _, err := env.posts.Create(ctx, alice, ports.CreatePostInput{Content: "x", IdempotencyKey: "k"}); err != nil {
		t.Fatalf("expected create despite idempotency outage, got %v", err)
	}
}

func TestItemService_IdempotencyOutageStillCreates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	env.idem.err = errors.New("redis down")

	if _, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "cup", IdempotencyKey: "k"}); err != nil {
		t.Fatalf("expected create despite idempotency outage, got %v", err)
	}
}

func TestIdempotency_KeysAreScopedPerKindAndOwner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	post, err := env.posts.Create(ctx, alice, ports.CreatePostInput{Content: "hi", IdempotencyKey: "same"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	item, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "cup", IdempotencyKey: "same"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	other, err := env.items.Create(ctx, bob, ports.CreateItemInput{Name: "cup", IdempotencyKey: "same"})
	if err != nil {
		t.Fatalf("create item for bob: %v", err)
	}
	if other.ID == item.ID || other.OwnerID != bob.ID {
		t.Fatalf("expected a fresh item for bob, got %+v", other)
	}
	if _, ok := env.idem.keys[idempotencyScope(domain.KindPost, alice.ID)+"|same"]; !ok {
		t.Fatalf("expected post key to be remembered for post %d", post.ID)
	}
}

func TestItemService_PerOwnerNames(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	box, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "box"})
	if err != nil {
		t.Fatalf("Create box: %v", err)
	}
	if box.Description != domain.DefaultItemDescription {
		t.Fatalf("expected default description, got %q", box.Description)
	}
	bag, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "bag", Description: "leather"})
	if err != nil {
		t.Fatalf("Create bag: %v", err)
	}

	if _, err := env.items.Update(ctx, alice, bag.ID, ports.ItemUpdate{Name: strPtr("box")}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict renaming bag to box, got %v", err)
	}
	if _, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "box"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict creating second box, got %v", err)
	}
	if _, err := env.items.Create(ctx, bob, ports.CreateItemInput{Name: "box"}); err != nil {
		t.Fatalf("bob should be able to own a box: %v", err)
	}
}

func TestItemService_OwnerOnlyAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	item, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "lamp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := env.items.Get(ctx, bob, item.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden read, got %v", err)
	}
	if _, err := env.items.Get(ctx, alice, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mine, err := env.items.ListMine(ctx, bob)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("expected bob to own nothing, got %d", len(mine))
	}

	if err := env.items.Delete(ctx, alice, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestItemService_RejectsBlankNames(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	if _, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "   "}); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request on blank create, got %v", err)
	}

	item, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: " mug "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.Name != "mug" {
		t.Fatalf("expected trimmed name, got %q", item.Name)
	}

	for _, name := range []string{"", "  "} {
		if _, err := env.items.Update(ctx, alice, item.ID, ports.ItemUpdate{Name: strPtr(name)}); !errors.Is(err, domain.ErrBadRequest) {
			t.Fatalf("name %q: expected bad request, got %v", name, err)
		}
	}
	got, err := env.items.Get(ctx, alice, item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "mug" {
		t.Fatalf("expected name to stay mug, got %q", got.Name)
	}
}

func TestItemService_IdempotentCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	first, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "pen", IdempotencyKey: "abc"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	again, err := env.items.Create(ctx, alice, ports.CreateItemInput{Name: "pen", IdempotencyKey: "abc"})
	if err != nil {
		t.Fatalf("expected replay instead of conflict, got %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected replay of %d, got %d", first.ID, again.ID)
	}
}

func TestSelfDelete_CascadesRecords(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	dave := env.register(t, "dave")

	for _, c := range []string{"a", "b", "c"} {
		if _, err := env.posts.Create(ctx, dave, ports.CreatePostInput{Content: c}); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	if _, err := env.items.Create(ctx, dave, ports.CreateItemInput{Name: "lamp"}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	res, err := env.accounts.DeleteSelf(ctx, dave)
	if err != nil {
		t.Fatalf("DeleteSelf: %v", err)
	}
	if res.PostsDeleted != 3 || res.ItemsDeleted != 1 {
		t.Fatalf("unexpected cascade counts: %+v", res)
	}

	posts, _ := env.posts.ListByOwner(ctx, dave.ID)
	if len(posts) != 0 {
		t.Fatalf("expected no posts left, got %d", len(posts))
	}
}
