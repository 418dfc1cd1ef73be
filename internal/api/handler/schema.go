package handler

import "time"

// --- Requests ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=3"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
	Bio      string `json:"bio"      validate:"omitempty,min=10"`
	Location string `json:"location"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateAccountRequest struct {
	Name     *string `json:"name"     validate:"omitnil,min=3"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Bio      *string `json:"bio"      validate:"omitempty,min=10"`
	Location *string `json:"location"`
}

type deleteAccountRequest struct {
	Reason *string `json:"reason"`
}

type createPostRequest struct {
	Content string `json:"content" validate:"required"`
}

type updatePostRequest struct {
	Content *string `json:"content" validate:"omitnil,min=1"`
}

type createItemRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
}

type updateItemRequest struct {
	Name        *string `json:"name"        validate:"omitnil,min=1"`
	Description *string `json:"description"`
}

// --- Responses ---

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type accountResponse struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Bio            string     `json:"bio"`
	Location       string     `json:"location,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	IsAdmin        bool       `json:"is_admin"`
	IsActive       bool       `json:"is_active"`
	Provenance     string     `json:"provenance"`
	DeletionReason *string    `json:"deletion_reason,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        accountResponse `json:"user"`
}

type deletionResponse struct {
	AccountID      int64     `json:"account_id"`
	DeletedByAdmin bool      `json:"deleted_by_admin"`
	DeletionReason *string   `json:"deletion_reason,omitempty"`
	DeletedAt      time.Time `json:"deleted_at"`
	PostsDeleted   int64     `json:"posts_deleted"`
	ItemsDeleted   int64     `json:"items_deleted"`
}

type postResponse struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type itemResponse struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
