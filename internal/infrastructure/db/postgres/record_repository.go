package postgres

import (
	"context"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

const (
	postColumns = `id, owner_id, content, created_at`
	itemColumns = `id, owner_id, name, description, created_at`
)

type PostRepository struct {
	s *Store
}

func scanPost(row scanner) (*domain.Post, error) {
	p := &domain.Post{}
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Content, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created, err := scanPost(r.s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO posts (owner_id, content, created_at) VALUES ($1, $2, $3) RETURNING `+postColumns,
		p.OwnerID, p.Content, p.CreatedAt.UTC()))
	if err != nil {
		return nil, mapErr("insert post", err)
	}
	return created, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	p, err := scanPost(r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("find post", err)
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY id`)
}

func (r *PostRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (r *PostRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.s.conn(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr("list posts", err)
	}
	defer rows.Close()

	out := []*domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, mapErr("list posts", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list posts", err)
	}
	return out, nil
}

func (r *PostRepository) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Post, error) {
	query, args, err := buildUpdate(domain.KindPost, id, fields)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	p, err := scanPost(r.s.conn(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapErr("update post", err)
	}
	return p, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return execDelete(ctx, r.s.conn(ctx), `DELETE FROM posts WHERE id = $1`, id)
}

func (r *PostRepository) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	return execDeleteMany(ctx, r.s.conn(ctx), `DELETE FROM posts WHERE owner_id = $1`, ownerID)
}

type ItemRepository struct {
	s *Store
}

func scanItem(row scanner) (*domain.Item, error) {
	i := &domain.Item{}
	if err := row.Scan(&i.ID, &i.OwnerID, &i.Name, &i.Description, &i.CreatedAt); err != nil {
		return nil, err
	}
	i.CreatedAt = i.CreatedAt.UTC()
	return i, nil
}

func (r *ItemRepository) Create(ctx context.Context, i *domain.Item) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created, err := scanItem(r.s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO items (owner_id, name, description, created_at) VALUES ($1, $2, $3, $4) RETURNING `+itemColumns,
		i.OwnerID, i.Name, i.Description, i.CreatedAt.UTC()))
	if err != nil {
		return nil, mapErr("insert item", err)
	}
	return created, nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	i, err := scanItem(r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("find item", err)
	}
	return i, nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.s.conn(ctx).QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, mapErr("list items", err)
	}
	defer rows.Close()

	out := []*domain.Item{}
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, mapErr("list items", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list items", err)
	}
	return out, nil
}

func (r *ItemRepository) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Item, error) {
	query, args, err := buildUpdate(domain.KindItem, id, fields)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	i, err := scanItem(r.s.conn(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapErr("update item", err)
	}
	return i, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	return execDelete(ctx, r.s.conn(ctx), `DELETE FROM items WHERE id = $1`, id)
}

func (r *ItemRepository) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	return execDeleteMany(ctx, r.s.conn(ctx), `DELETE FROM items WHERE owner_id = $1`, ownerID)
}

func execDelete(ctx context.Context, db DBTX, query string, id int64) error {
	n, err := execDeleteMany(ctx, db, query, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func execDeleteMany(ctx context.Context, db DBTX, query string, arg int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, mapErr("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapErr("delete", err)
	}
	return n, nil
}
