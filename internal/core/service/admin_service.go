package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/core/auth"
	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/lifecycle"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/pkg/metrics"
)

// AdminService implements role changes, admin deletions and the deleted
// account listing.
type AdminService struct {
	accounts  ports.AccountRepository
	lifecycle *lifecycle.Manager
	log       zerolog.Logger
}

func NewAdminService(accounts ports.AccountRepository, lm *lifecycle.Manager, log zerolog.Logger) *AdminService {
	return &AdminService{accounts: accounts, lifecycle: lm, log: log}
}

// SetAdmin promotes or demotes targetID.
func (s *AdminService) SetAdmin(ctx context.Context, admin *domain.Account, targetID int64, makeAdmin bool) (*domain.Account, error) {
	if err := auth.Authorize(admin, nil, auth.RequireAdmin); err != nil {
		return nil, err
	}

	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	if err := auth.CheckRoleChange(admin, target, makeAdmin); err != nil {
		return nil, err
	}

	updated, err := s.accounts.SetAdmin(ctx, targetID, makeAdmin)
	if err != nil {
		return nil, err
	}

	action := "demote"
	if makeAdmin {
		action = "promote"
	}
	metrics.AdminRoleChangesTotal.WithLabelValues(action).Inc()
	s.log.Info().
		Int64("admin_id", admin.ID).
		Int64("account_id", targetID).
		Str("action", action).
		Msg("admin role changed")

	return updated, nil
}

func (s *AdminService) DeleteAccount(ctx context.Context, admin *domain.Account, targetID int64, reason *string) (*domain.DeletionResult, error) {
	return s.lifecycle.AdminDelete(ctx, admin, targetID, reason)
}

// ListDeleted returns deactivated accounts, most recently deleted first.
func (s *AdminService) ListDeleted(ctx context.Context, admin *domain.Account) ([]*domain.Account, error) {
	if err := auth.Authorize(admin, nil, auth.RequireAdmin); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx, false)
}
