package ports

import (
	"context"

	"github.com/recordhub/records-api/internal/core/domain"
)

// Fields is a partial change set keyed by storage field name. Only keys that
// are present are applied or validated.
type Fields map[string]any

// AccountRepository persists accounts. Lookups return an error wrapping
// domain.ErrNotFound when nothing matches.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// List returns accounts filtered by their active flag. Deleted accounts
	// are ordered by deleted_at descending, active ones by id.
	List(ctx context.Context, active bool) ([]*domain.Account, error)
	Update(ctx context.Context, id int64, fields Fields) (*domain.Account, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.Account, error)
	// Deactivate flips is_active to false only if it is still true. It reports
	// false when the account was already inactive.
	Deactivate(ctx context.Context, id int64, d domain.Deactivation) (bool, error)
}

// PostRepository persists posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Post, error)
	Update(ctx context.Context, id int64, fields Fields) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
	DeleteByOwner(ctx context.Context, ownerID int64) (int64, error)
}

// ItemRepository persists items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	FindByID(ctx context.Context, id int64) (*domain.Item, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Item, error)
	Update(ctx context.Context, id int64, fields Fields) (*domain.Item, error)
	Delete(ctx context.Context, id int64) error
	DeleteByOwner(ctx context.Context, ownerID int64) (int64, error)
}

// ExistsQuery asks whether another record of a kind holds Field == Value.
// ExcludeID of zero excludes nothing; a nil OwnerID means global scope.
type ExistsQuery struct {
	Field     string
	Value     any
	ExcludeID int64
	OwnerID   *int64
}

// ExistenceChecker answers read-only existence queries for the validation engine.
type ExistenceChecker interface {
	Exists(ctx context.Context, kind domain.Kind, q ExistsQuery) (bool, error)
}

// Transactor runs fn as one atomic unit. Repositories called with the ctx
// passed to fn join the unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles one backend's implementations.
type Store struct {
	Accounts AccountRepository
	Posts    PostRepository
	Items    ItemRepository
	Exists   ExistenceChecker
	Tx       Transactor
	Ping     func(ctx context.Context) error
	Close    func(ctx context.Context) error
}

// IdempotencyStore remembers which record a client-supplied key created.
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope string, key string) (int64, bool, error)
	Remember(ctx context.Context, scope string, key string, id int64) error
}
