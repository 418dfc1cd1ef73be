// Package lifecycle implements account deletion: the terminal
// Active -> Deactivated transition plus hard deletion of every record the
// account owns, applied as one atomic unit.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/core/auth"
	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/pkg/metrics"
)

// MinReasonLength is the minimum length of an admin deletion reason.
const MinReasonLength = 5

// Manager deactivates accounts and cascades removal of their records.
type Manager struct {
	accounts ports.AccountRepository
	posts    ports.PostRepository
	items    ports.ItemRepository
	tx       ports.Transactor
	now      func() time.Time
	log      zerolog.Logger
}

func NewManager(store ports.Store, log zerolog.Logger) *Manager {
	return &Manager{
		accounts: store.Accounts,
		posts:    store.Posts,
		items:    store.Items,
		tx:       store.Tx,
		now:      time.Now,
		log:      log,
	}
}

// SelfDelete deactivates account on its own request.
func (m *Manager) SelfDelete(ctx context.Context, account *domain.Account) (*domain.DeletionResult, error) {
	if !account.IsActive {
		return nil, domain.Errorf(domain.ErrBadRequest, "account is already deleted")
	}
	return m.deactivate(ctx, account.ID, domain.Deactivation{At: m.now().UTC()})
}

// AdminDelete deactivates targetID on behalf of admin with a mandatory reason.
func (m *Manager) AdminDelete(ctx context.Context, admin *domain.Account, targetID int64, reason *string) (*domain.DeletionResult, error) {
	if err := auth.Authorize(admin, nil, auth.RequireAdmin); err != nil {
		return nil, err
	}
	if admin.ID == targetID {
		return nil, domain.Errorf(domain.ErrBadRequest, "admins cannot delete themselves here, use self-delete")
	}

	target, err := m.accounts.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrNotFound, "user not found")
		}
		return nil, err
	}
	if !target.IsActive {
		return nil, domain.Errorf(domain.ErrBadRequest, "user %s is already deleted", target.Name)
	}

	trimmed, err := checkReason(reason)
	if err != nil {
		return nil, err
	}

	return m.deactivate(ctx, targetID, domain.Deactivation{
		ByAdmin: true,
		Reason:  &trimmed,
		At:      m.now().UTC(),
	})
}

func checkReason(reason *string) (string, error) {
	if reason == nil {
		return "", domain.Errorf(domain.ErrBadRequest, "deletion reason is required")
	}
	trimmed := strings.TrimSpace(*reason)
	if utf8.RuneCountInString(trimmed) < MinReasonLength {
		return "", domain.Errorf(domain.ErrBadRequest, "deletion reason must be at least %d characters", MinReasonLength)
	}
	return trimmed, nil
}

// deactivate flips the account flag and deletes owned records in one unit.
// The flag write is conditional, so a concurrent second deletion loses and
// reports BadRequest instead of cascading twice.
func (m *Manager) deactivate(ctx context.Context, accountID int64, d domain.Deactivation) (*domain.DeletionResult, error) {
	result := &domain.DeletionResult{
		AccountID:      accountID,
		DeletedByAdmin: d.ByAdmin,
		Reason:         d.Reason,
		DeletedAt:      d.At,
	}

	err := m.tx.WithinTx(ctx, func(ctx context.Context) error {
		changed, err := m.accounts.Deactivate(ctx, accountID, d)
		if err != nil {
			return fmt.Errorf("deactivate account: %w", err)
		}
		if !changed {
			return domain.Errorf(domain.ErrBadRequest, "account is already deleted")
		}

		posts, err := m.posts.DeleteByOwner(ctx, accountID)
		if err != nil {
			return fmt.Errorf("delete posts: %w", err)
		}
		items, err := m.items.DeleteByOwner(ctx, accountID)
		if err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		result.PostsDeleted = posts
		result.ItemsDeleted = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	provenance := string(domain.ProvenanceSelfDeleted)
	if d.ByAdmin {
		provenance = string(domain.ProvenanceAdminDeleted)
	}
	metrics.AccountsDeletedTotal.WithLabelValues(provenance).Inc()
	metrics.CascadeDeletedRecordsTotal.WithLabelValues(string(domain.KindPost)).Add(float64(result.PostsDeleted))
	metrics.CascadeDeletedRecordsTotal.WithLabelValues(string(domain.KindItem)).Add(float64(result.ItemsDeleted))

	m.log.Info().
		Int64("account_id", accountID).
		Str("provenance", provenance).
		Int64("posts_deleted", result.PostsDeleted).
		Int64("items_deleted", result.ItemsDeleted).
		Msg("account deleted")

	return result, nil
}
