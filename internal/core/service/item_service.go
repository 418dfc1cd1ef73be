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

type ItemService struct {
	items     ports.ItemRepository
	validator *validation.Engine
	idem      idempotentCreate[domain.Item]
	log       zerolog.Logger
}

func NewItemService(items ports.ItemRepository, validator *validation.Engine, idem ports.IdempotencyStore, log zerolog.Logger) *ItemService {
	return &ItemService{
		items:     items,
		validator: validator,
		idem:      idempotentCreate[domain.Item]{store: idem, kind: domain.KindItem, find: items.FindByID, log: log},
		log:       log,
	}
}

func (s *ItemService) ListMine(ctx context.Context, principal *domain.Account) ([]*domain.Item, error) {
	if err := auth.Authorize(principal, nil, auth.RequireActive); err != nil {
		return nil, err
	}
	return s.items.ListByOwner(ctx, principal.ID)
}

// Get returns an item only to its owner.
func (s *ItemService) Get(ctx context.Context, principal *domain.Account, id int64) (*domain.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "item not found")
	}
	if err := auth.Authorize(principal, item, auth.RequireOwner); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Create(ctx context.Context, principal *domain.Account, in ports.CreateItemInput) (*domain.Item, error) {
	if err := auth.Authorize(principal, nil, auth.RequireActive); err != nil {
		return nil, err
	}
	name, err := validation.ItemName(in.Name)
	if err != nil {
		return nil, err
	}
	if existing := s.idem.replay(ctx, principal.ID, in.IdempotencyKey); existing != nil {
		return existing, nil
	}

	fields := ports.Fields{"name": name}
	if err := s.validator.ValidateCreate(ctx, domain.KindItem, principal.ID, fields); err != nil {
		return nil, err
	}

	description := in.Description
	if description == "" {
		description = domain.DefaultItemDescription
	}
	item, err := s.items.Create(ctx, &domain.Item{
		OwnerID:     principal.ID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.idem.remember(ctx, principal.ID, in.IdempotencyKey, item.ID)

	s.log.Info().Int64("item_id", item.ID).Int64("owner_id", item.OwnerID).Msg("item created")
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, principal *domain.Account, id int64, update ports.ItemUpdate) (*domain.Item, error) {
	fields := update.Fields()
	if err := validation.RequireChanges(fields); err != nil {
		return nil, err
	}
	if v, ok := fields["name"].(string); ok {
		name, err := validation.ItemName(v)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}

	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "item not found")
	}
	if err := auth.Authorize(principal, item, auth.RequireActive, auth.RequireOwner); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateChange(ctx, domain.KindItem, validation.Subject{ID: item.ID, OwnerID: item.OwnerID}, fields); err != nil {
		return nil, err
	}

	return s.items.Update(ctx, item.ID, fields)
}

func (s *ItemService) Delete(ctx context.Context, principal *domain.Account, id int64) error {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return notFoundAs(err, "item not found")
	}
	if err := auth.Authorize(principal, item, auth.RequireActive, auth.RequireOwner); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}
	s.log.Info().Int64("item_id", item.ID).Int64("owner_id", item.OwnerID).Msg("item deleted")
	return nil
}
