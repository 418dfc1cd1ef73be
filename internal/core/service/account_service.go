package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/core/auth"
	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/lifecycle"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/internal/core/validation"
)

// AccountService implements profile reads, self-service updates and
// self deletion.
type AccountService struct {
	accounts  ports.AccountRepository
	validator *validation.Engine
	lifecycle *lifecycle.Manager
	log       zerolog.Logger
}

func NewAccountService(accounts ports.AccountRepository, validator *validation.Engine, lm *lifecycle.Manager, log zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, validator: validator, lifecycle: lm, log: log}
}

func (s *AccountService) Get(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	return account, nil
}

func (s *AccountService) ListActive(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.List(ctx, true)
}

// Update applies a partial profile change to targetID, which must be the
// principal's own account.
func (s *AccountService) Update(ctx context.Context, principal *domain.Account, targetID int64, update ports.AccountUpdate) (*domain.Account, error) {
	if err := auth.Authorize(principal, nil, auth.RequireSelf(targetID)); err != nil {
		return nil, err
	}

	fields := update.Fields()
	if err := validation.RequireChanges(fields); err != nil {
		return nil, err
	}
	if v, ok := fields["email"].(string); ok {
		fields["email"] = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := fields["name"].(string); ok {
		name, err := validation.AccountName(v)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}

	current, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}

	if err := s.validator.ValidateChange(ctx, domain.KindAccount, validation.Subject{ID: current.ID}, fields); err != nil {
		return nil, err
	}

	updated, err := s.accounts.Update(ctx, current.ID, fields)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("account_id", updated.ID).Msg("profile updated")
	return updated, nil
}

func (s *AccountService) DeleteSelf(ctx context.Context, principal *domain.Account) (*domain.DeletionResult, error) {
	if principal == nil {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "authentication required")
	}
	return s.lifecycle.SelfDelete(ctx, principal)
}

// notFoundAs replaces a repository not-found error with a client message.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Errorf(domain.ErrNotFound, "%s", msg)
	}
	return err
}
