package domain

import "time"

// Kind tags an entity type for the validation rule table and the store.
type Kind string

const (
	KindAccount Kind = "account"
	KindPost    Kind = "post"
	KindItem    Kind = "item"
)

// Provenance describes how an account reached its current deletion state.
type Provenance string

const (
	ProvenanceActive       Provenance = "active"
	ProvenanceSelfDeleted  Provenance = "self"
	ProvenanceAdminDeleted Provenance = "admin"
)

const DefaultBio = "User didn't add his bio"

// Account models an identity that can own records.
type Account struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Bio            string     `json:"bio"`
	Location       string     `json:"location,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	IsAdmin        bool       `json:"is_admin"`
	IsActive       bool       `json:"is_active"`
	DeletedByAdmin bool       `json:"deleted_by_admin"`
	DeletionReason *string    `json:"deletion_reason,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// Provenance reports exactly one of active, self-deleted, admin-deleted.
func (a *Account) Provenance() Provenance {
	switch {
	case a.IsActive:
		return ProvenanceActive
	case a.DeletedByAdmin:
		return ProvenanceAdminDeleted
	default:
		return ProvenanceSelfDeleted
	}
}

// Deactivation is the terminal Active -> Deactivated transition payload.
type Deactivation struct {
	ByAdmin bool
	Reason  *string
	At      time.Time
}

// DeletionResult reports a completed account deletion and its cascade.
type DeletionResult struct {
	AccountID      int64     `json:"account_id"`
	DeletedByAdmin bool      `json:"deleted_by_admin"`
	Reason         *string   `json:"deletion_reason,omitempty"`
	DeletedAt      time.Time `json:"deleted_at"`
	PostsDeleted   int64     `json:"posts_deleted"`
	ItemsDeleted   int64     `json:"items_deleted"`
}

// Removed is the total number of owned records hard-deleted by the cascade.
func (r *DeletionResult) Removed() int64 {
	return r.PostsDeleted + r.ItemsDeleted
}
