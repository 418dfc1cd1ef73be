package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

// table describes the columns a kind exposes to updates and existence checks.
type table struct {
	name      string
	updatable []string
	returning string
}

var tables = map[domain.Kind]table{
	domain.KindAccount: {
		name:      "users",
		updatable: []string{"name", "email", "bio", "location"},
		returning: accountColumns,
	},
	domain.KindPost: {
		name:      "posts",
		updatable: []string{"content"},
		returning: postColumns,
	},
	domain.KindItem: {
		name:      "items",
		updatable: []string{"name", "description"},
		returning: itemColumns,
	},
}

func (t table) allows(column string) bool {
	for _, c := range t.updatable {
		if c == column {
			return true
		}
	}
	return false
}

// buildUpdate renders an UPDATE ... RETURNING statement for the supplied
// fields. Columns are emitted in sorted order so the statement is stable.
func buildUpdate(kind domain.Kind, id int64, fields ports.Fields) (string, []any, error) {
	t, ok := tables[kind]
	if !ok {
		return "", nil, fmt.Errorf("unknown kind %q", kind)
	}

	cols := make([]string, 0, len(fields))
	for k := range fields {
		if !t.allows(k) {
			return "", nil, fmt.Errorf("%s field %q is not updatable", kind, k)
		}
		cols = append(cols, k)
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("%s update without fields", kind)
	}
	sort.Strings(cols)

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args = append(args, fields[c])
	}
	args = append(args, id)

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		t.name, strings.Join(sets, ", "), len(args), t.returning)
	return q, args, nil
}

// buildExists renders a SELECT EXISTS for an ExistsQuery. Only updatable
// columns may be probed.
func buildExists(kind domain.Kind, q ports.ExistsQuery) (string, []any, error) {
	t, ok := tables[kind]
	if !ok {
		return "", nil, fmt.Errorf("unknown kind %q", kind)
	}
	if !t.allows(q.Field) {
		return "", nil, fmt.Errorf("%s field %q cannot be checked", kind, q.Field)
	}

	where := []string{fmt.Sprintf("%s = $1", q.Field)}
	args := []any{q.Value}
	if q.ExcludeID != 0 {
		args = append(args, q.ExcludeID)
		where = append(where, fmt.Sprintf("id <> $%d", len(args)))
	}
	if q.OwnerID != nil {
		args = append(args, *q.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", t.name, strings.Join(where, " AND ")), args, nil
}

// Exists implements ports.ExistenceChecker.
func (s *Store) Exists(ctx context.Context, kind domain.Kind, q ports.ExistsQuery) (bool, error) {
	query, args, err := buildExists(kind, q)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var exists bool
	if err := s.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, mapErr("exists", err)
	}
	return exists, nil
}
