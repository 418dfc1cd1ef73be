package handler

import "github.com/recordhub/records-api/internal/core/domain"

// toAccountResponse never carries the password hash.
func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Bio:            a.Bio,
		Location:       a.Location,
		CreatedAt:      a.CreatedAt,
		IsAdmin:        a.IsAdmin,
		IsActive:       a.IsActive,
		Provenance:     string(a.Provenance()),
		DeletionReason: a.DeletionReason,
		DeletedAt:      a.DeletedAt,
	}
}

func toAccountList(accounts []*domain.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}

func toDeletionResponse(r *domain.DeletionResult) deletionResponse {
	return deletionResponse{
		AccountID:      r.AccountID,
		DeletedByAdmin: r.DeletedByAdmin,
		DeletionReason: r.Reason,
		DeletedAt:      r.DeletedAt,
		PostsDeleted:   r.PostsDeleted,
		ItemsDeleted:   r.ItemsDeleted,
	}
}

func toPostResponse(p *domain.Post) postResponse {
	return postResponse{ID: p.ID, OwnerID: p.OwnerID, Content: p.Content, CreatedAt: p.CreatedAt}
}

func toPostList(posts []*domain.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	return out
}

func toItemResponse(i *domain.Item) itemResponse {
	return itemResponse{
		ID:          i.ID,
		OwnerID:     i.OwnerID,
		Name:        i.Name,
		Description: i.Description,
		CreatedAt:   i.CreatedAt,
	}
}

func toItemList(items []*domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toItemResponse(i))
	}
	return out
}
