package ports

import (
	"context"

	"github.com/recordhub/records-api/internal/core/domain"
)

// RegisterInput carries the sign-up payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Bio      string
	Location string
}

// AuthService covers registration and credential login.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	// Login returns a signed token for the account matching email/password.
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
}

// AccountUpdate is a partial profile change; nil fields are left untouched.
type AccountUpdate struct {
	Name     *string
	Email    *string
	Bio      *string
	Location *string
}

// Fields returns only the fields that were supplied.
func (u AccountUpdate) Fields() Fields {
	f := Fields{}
	setIf(f, "name", u.Name)
	setIf(f, "email", u.Email)
	setIf(f, "bio", u.Bio)
	setIf(f, "location", u.Location)
	return f
}

// AccountService exposes profile reads, self-service edits and self deletion.
type AccountService interface {
	Get(ctx context.Context, id int64) (*domain.Account, error)
	ListActive(ctx context.Context) ([]*domain.Account, error)
	Update(ctx context.Context, principal *domain.Account, targetID int64, update AccountUpdate) (*domain.Account, error)
	DeleteSelf(ctx context.Context, principal *domain.Account) (*domain.DeletionResult, error)
}

// AdminService exposes admin-only account operations.
type AdminService interface {
	SetAdmin(ctx context.Context, admin *domain.Account, targetID int64, makeAdmin bool) (*domain.Account, error)
	DeleteAccount(ctx context.Context, admin *domain.Account, targetID int64, reason *string) (*domain.DeletionResult, error)
	ListDeleted(ctx context.Context, admin *domain.Account) ([]*domain.Account, error)
}

// CreatePostInput carries a new post. IdempotencyKey is optional.
type CreatePostInput struct {
	Content        string
	IdempotencyKey string
}

// PostUpdate is a partial post change.
type PostUpdate struct {
	Content *string
}

func (u PostUpdate) Fields() Fields {
	f := Fields{}
	setIf(f, "content", u.Content)
	return f
}

// PostService exposes post CRUD guarded by ownership.
type PostService interface {
	List(ctx context.Context) ([]*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Post, error)
	Create(ctx context.Context, principal *domain.Account, input CreatePostInput) (*domain.Post, error)
	Update(ctx context.Context, principal *domain.Account, id int64, update PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, principal *domain.Account, id int64) error
}

// CreateItemInput carries a new item. IdempotencyKey is optional.
type CreateItemInput struct {
	Name           string
	Description    string
	IdempotencyKey string
}

// ItemUpdate is a partial item change.
type ItemUpdate struct {
	Name        *string
	Description *string
}

func (u ItemUpdate) Fields() Fields {
	f := Fields{}
	setIf(f, "name", u.Name)
	setIf(f, "description", u.Description)
	return f
}

// ItemService exposes item CRUD; items are only visible to their owner.
type ItemService interface {
	ListMine(ctx context.Context, principal *domain.Account) ([]*domain.Item, error)
	Get(ctx context.Context, principal *domain.Account, id int64) (*domain.Item, error)
	Create(ctx context.Context, principal *domain.Account, input CreateItemInput) (*domain.Item, error)
	Update(ctx context.Context, principal *domain.Account, id int64, update ItemUpdate) (*domain.Item, error)
	Delete(ctx context.Context, principal *domain.Account, id int64) error
}

func setIf(f Fields, name string, v *string) {
	if v != nil {
		f[name] = *v
	}
}
