package postgres

import (
	"context"
	"database/sql"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

const accountColumns = `id, name, email, password_hash, bio, location, created_at,
	is_admin, is_active, deleted_by_admin, deletion_reason, deleted_at`

type AccountRepository struct {
	s *Store
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Bio, &a.Location, &a.CreatedAt,
		&a.IsAdmin, &a.IsActive, &a.DeletedByAdmin, &a.DeletionReason, &a.DeletedAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `INSERT INTO users (name, email, password_hash, bio, location, created_at, is_admin, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + accountColumns

	created, err := scanAccount(r.s.conn(ctx).QueryRowContext(ctx, query,
		a.Name, a.Email, a.PasswordHash, a.Bio, a.Location, a.CreatedAt.UTC(), a.IsAdmin, a.IsActive))
	if err != nil {
		return nil, mapErr("insert account", err)
	}
	return created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM users WHERE email = $1`, email)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a, err := scanAccount(r.s.conn(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, mapErr("find account", err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context, active bool) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	order := "id ASC"
	if !active {
		order = "deleted_at DESC NULLS LAST, id ASC"
	}
	rows, err := r.s.conn(ctx).QueryContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE is_active = $1 ORDER BY `+order, active)
	if err != nil {
		return nil, mapErr("list accounts", err)
	}
	defer rows.Close()

	out := []*domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, mapErr("list accounts", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list accounts", err)
	}
	return out, nil
}

func (r *AccountRepository) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Account, error) {
	query, args, err := buildUpdate(domain.KindAccount, id, fields)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a, err := scanAccount(r.s.conn(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapErr("update account", err)
	}
	return a, nil
}

func (r *AccountRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a, err := scanAccount(r.s.conn(ctx).QueryRowContext(ctx,
		`UPDATE users SET is_admin = $1 WHERE id = $2 RETURNING `+accountColumns, isAdmin, id))
	if err != nil {
		return nil, mapErr("set admin", err)
	}
	return a, nil
}

// Deactivate only matches active rows, so a concurrent second call reports
// false.
func (r *AccountRepository) Deactivate(ctx context.Context, id int64, d domain.Deactivation) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var reason sql.NullString
	if d.Reason != nil {
		reason = sql.NullString{String: *d.Reason, Valid: true}
	}

	res, err := r.s.conn(ctx).ExecContext(ctx,
		`UPDATE users
		 SET is_active = FALSE, deleted_by_admin = $2, deletion_reason = $3, deleted_at = $4
		 WHERE id = $1 AND is_active`,
		id, d.ByAdmin, reason, d.At.UTC())
	if err != nil {
		return false, mapErr("deactivate account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapErr("deactivate account", err)
	}
	if n == 1 {
		return true, nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
