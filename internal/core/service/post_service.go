package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/core/auth"
	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/internal/core/validation"
)

type PostService struct {
	posts     ports.PostRepository
	validator *validation.Engine
	idem      idempotentCreate[domain.Post]
	log       zerolog.Logger
}

// NewPostService wires a PostService. idem may be nil, in which case
// Idempotency-Key is ignored.
func NewPostService(posts ports.PostRepository, validator *validation.Engine, idem ports.IdempotencyStore, log zerolog.Logger) *PostService {
	return &PostService{
		posts:     posts,
		validator: validator,
		idem:      idempotentCreate[domain.Post]{store: idem, kind: domain.KindPost, find: posts.FindByID, log: log},
		log:       log,
	}
}

func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.posts.List(ctx)
}

func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "post not found")
	}
	return post, nil
}

func (s *PostService) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Post, error) {
	return s.posts.ListByOwner(ctx, ownerID)
}

// Create stores a new post owned by principal. A repeated IdempotencyKey from
// the same owner returns the post created the first time.
func (s *PostService) Create(ctx context.Context, principal *domain.Account, in ports.CreatePostInput) (*domain.Post, error) {
	if err := auth.Authorize(principal, nil, auth.RequireActive); err != nil {
		return nil, err
	}
	if existing := s.idem.replay(ctx, principal.ID, in.IdempotencyKey); existing != nil {
		return existing, nil
	}

	fields := ports.Fields{"content": in.Content}
	if err := s.validator.ValidateCreate(ctx, domain.KindPost, principal.ID, fields); err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, &domain.Post{
		OwnerID:   principal.ID,
		Content:   in.Content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.idem.remember(ctx, principal.ID, in.IdempotencyKey, post.ID)

	s.log.Info().Int64("post_id", post.ID).Int64("owner_id", post.OwnerID).Msg("post created")
	return post, nil
}

// Update applies a partial change to a post owned by principal.
func (s *PostService) Update(ctx context.Context, principal *domain.Account, id int64, update ports.PostUpdate) (*domain.Post, error) {
	fields := update.Fields()
	if err := validation.RequireChanges(fields); err != nil {
		return nil, err
	}

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "post not found")
	}
	if err := auth.Authorize(principal, post, auth.RequireActive, auth.RequireOwner); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateChange(ctx, domain.KindPost, validation.Subject{ID: post.ID, OwnerID: post.OwnerID}, fields); err != nil {
		return nil, err
	}

	return s.posts.Update(ctx, post.ID, fields)
}

func (s *PostService) Delete(ctx context.Context, principal *domain.Account, id int64) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return notFoundAs(err, "post not found")
	}
	if err := auth.Authorize(principal, post, auth.RequireActive, auth.RequireOwner); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.log.Info().Int64("post_id", post.ID).Int64("owner_id", post.OwnerID).Msg("post deleted")
	return nil
}
