// Package memory is a process-local implementation of ports.Store. It keeps
// the same uniqueness and ordering guarantees as the database backends and is
// used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/pkg/metrics"
)

// Store holds every collection behind one mutex. Transactions are serialised
// against each other and, on failure, undo only the writes made through their
// own context.
type Store struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	seq    map[domain.Kind]int64
	users  map[int64]domain.Account
	posts  map[int64]domain.Post
	items  map[int64]domain.Item
	closed bool
}

func New() *Store {
	return &Store{
		seq:   map[domain.Kind]int64{},
		users: map[int64]domain.Account{},
		posts: map[int64]domain.Post{},
		items: map[int64]domain.Item{},
	}
}

// Ports exposes the store through the core interfaces.
func (s *Store) Ports() ports.Store {
	return ports.Store{
		Accounts: accountRepo{s},
		Posts:    postRepo{s},
		Items:    itemRepo{s},
		Exists:   s,
		Tx:       s,
		Ping:     s.Ping,
		Close:    s.Close,
	}
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("memory store closed: %w", domain.ErrStoreUnavailable)
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Store) next(kind domain.Kind) int64 {
	s.seq[kind]++
	return s.seq[kind]
}

type txKey struct{}

// undoLog keeps the value each key held before a transaction first touched
// it. A nil entry means the key did not exist.
type undoLog struct {
	store *Store
	users map[int64]*domain.Account
	posts map[int64]*domain.Post
	items map[int64]*domain.Item
}

// WithinTx runs fn; if fn fails the writes made through its ctx are undone.
// Writes made outside the unit are left alone.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{
		store: s,
		users: map[int64]*domain.Account{},
		posts: map[int64]*domain.Post{},
		items: map[int64]*domain.Item{},
	}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		s.mu.Lock()
		restore(log.users, s.users)
		restore(log.posts, s.posts)
		restore(log.items, s.items)
		s.mu.Unlock()
		return err
	}
	return nil
}

// undo returns the log of the transaction ctx belongs to, or nil.
func (s *Store) undo(ctx context.Context) *undoLog {
	log, _ := ctx.Value(txKey{}).(*undoLog)
	if log == nil || log.store != s {
		return nil
	}
	return log
}

// track records the current value of id before the first write to it inside
// a transaction. Callers hold s.mu.
func track[V any](undo map[int64]*V, m map[int64]V, id int64) {
	if _, seen := undo[id]; seen {
		return
	}
	if v, ok := m[id]; ok {
		undo[id] = &v
		return
	}
	undo[id] = nil
}

func restore[V any](undo map[int64]*V, m map[int64]V) {
	for id, v := range undo {
		if v == nil {
			delete(m, id)
			continue
		}
		m[id] = *v
	}
}

// trackUser, trackPost and trackItem are no-ops outside a transaction.
func (s *Store) trackUser(ctx context.Context, id int64) {
	if log := s.undo(ctx); log != nil {
		track(log.users, s.users, id)
	}
}

func (s *Store) trackPost(ctx context.Context, id int64) {
	if log := s.undo(ctx); log != nil {
		track(log.posts, s.posts, id)
	}
}

func (s *Store) trackItem(ctx context.Context, id int64) {
	if log := s.undo(ctx); log != nil {
		track(log.items, s.items, id)
	}
}

// Exists implements ports.ExistenceChecker.
func (s *Store) Exists(_ context.Context, kind domain.Kind, q ports.ExistsQuery) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := func(id, owner int64, fields map[string]any) bool {
		if id == q.ExcludeID {
			return false
		}
		if q.OwnerID != nil && owner != *q.OwnerID {
			return false
		}
		v, ok := fields[q.Field]
		return ok && v == q.Value
	}

	switch kind {
	case domain.KindAccount:
		for id, a := range s.users {
			if match(id, 0, accountFields(a)) {
				return true, nil
			}
		}
	case domain.KindPost:
		for id, p := range s.posts {
			if match(id, p.OwnerID, map[string]any{"content": p.Content}) {
				return true, nil
			}
		}
	case domain.KindItem:
		for id, i := range s.items {
			if match(id, i.OwnerID, map[string]any{"name": i.Name, "description": i.Description}) {
				return true, nil
			}
		}
	default:
		return false, fmt.Errorf("unknown kind %q", kind)
	}
	return false, nil
}

func accountFields(a domain.Account) map[string]any {
	return map[string]any{"name": a.Name, "email": a.Email, "bio": a.Bio, "location": a.Location}
}

func duplicate() error {
	metrics.StorageConflictsTotal.Inc()
	return domain.ErrDuplicateValue
}

// ── accounts ────────────────────────────────────────────────────────────────

type accountRepo struct{ s *Store }

func (r accountRepo) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if other.Name == a.Name || other.Email == a.Email {
			return nil, duplicate()
		}
	}
	stored := *a
	stored.ID = r.s.next(domain.KindAccount)
	r.s.trackUser(ctx, stored.ID)
	r.s.users[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r accountRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r accountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.users {
		if strings.EqualFold(a.Email, email) {
			out := a
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r accountRepo) List(_ context.Context, active bool) ([]*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.s.users))
	for _, a := range r.s.users {
		if a.IsActive == active {
			a := a
			out = append(out, &a)
		}
	}
	if active {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	} else {
		sort.Slice(out, func(i, j int) bool { return deletedAt(out[i]).After(deletedAt(out[j])) })
	}
	return out, nil
}

func deletedAt(a *domain.Account) time.Time {
	if a.DeletedAt == nil {
		return time.Time{}
	}
	return *a.DeletedAt
}

func (r accountRepo) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for k, v := range fields {
		str, _ := v.(string)
		switch k {
		case "name":
			a.Name = str
		case "email":
			a.Email = str
		case "bio":
			a.Bio = str
		case "location":
			a.Location = str
		default:
			return nil, fmt.Errorf("account field %q is not updatable", k)
		}
	}
	for oid, other := range r.s.users {
		if oid != id && (other.Name == a.Name || other.Email == a.Email) {
			return nil, duplicate()
		}
	}
	r.s.trackUser(ctx, id)
	r.s.users[id] = a
	return &a, nil
}

func (r accountRepo) SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.IsAdmin = isAdmin
	r.s.trackUser(ctx, id)
	r.s.users[id] = a
	return &a, nil
}

func (r accountRepo) Deactivate(ctx context.Context, id int64, d domain.Deactivation) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.users[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if !a.IsActive {
		return false, nil
	}
	at := d.At
	a.IsActive = false
	a.DeletedByAdmin = d.ByAdmin
	a.DeletionReason = d.Reason
	a.DeletedAt = &at
	r.s.trackUser(ctx, id)
	r.s.users[id] = a
	return true, nil
}

// ── posts ───────────────────────────────────────────────────────────────────

type postRepo struct{ s *Store }

func (r postRepo) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *p
	stored.ID = r.s.next(domain.KindPost)
	r.s.trackPost(ctx, stored.ID)
	r.s.posts[stored.ID] = stored
	return &stored, nil
}

func (r postRepo) FindByID(_ context.Context, id int64) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r postRepo) List(_ context.Context) ([]*domain.Post, error) {
	return r.filter(func(domain.Post) bool { return true }), nil
}

func (r postRepo) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Post, error) {
	return r.filter(func(p domain.Post) bool { return p.OwnerID == ownerID }), nil
}

func (r postRepo) filter(keep func(domain.Post) bool) []*domain.Post {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Post{}
	for _, p := range r.s.posts {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r postRepo) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for k, v := range fields {
		if k != "content" {
			return nil, fmt.Errorf("post field %q is not updatable", k)
		}
		p.Content, _ = v.(string)
	}
	r.s.trackPost(ctx, id)
	r.s.posts[id] = p
	return &p, nil
}

func (r postRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return domain.ErrNotFound
	}
	r.s.trackPost(ctx, id)
	delete(r.s.posts, id)
	return nil
}

func (r postRepo) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.posts {
		if p.OwnerID == ownerID {
			r.s.trackPost(ctx, id)
			delete(r.s.posts, id)
			n++
		}
	}
	return n, nil
}

// ── items ───────────────────────────────────────────────────────────────────

type itemRepo struct{ s *Store }

func (r itemRepo) Create(ctx context.Context, i *domain.Item) (*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.items {
		if other.OwnerID == i.OwnerID && other.Name == i.Name {
			return nil, duplicate()
		}
	}
	stored := *i
	stored.ID = r.s.next(domain.KindItem)
	r.s.trackItem(ctx, stored.ID)
	r.s.items[stored.ID] = stored
	return &stored, nil
}

func (r itemRepo) FindByID(_ context.Context, id int64) (*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &i, nil
}

func (r itemRepo) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Item{}
	for _, i := range r.s.items {
		if i.OwnerID == ownerID {
			i := i
			out = append(out, &i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r itemRepo) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for k, v := range fields {
		str, _ := v.(string)
		switch k {
		case "name":
			i.Name = str
		case "description":
			i.Description = str
		default:
			return nil, fmt.Errorf("item field %q is not updatable", k)
		}
	}
	for oid, other := range r.s.items {
		if oid != id && other.OwnerID == i.OwnerID && other.Name == i.Name {
			return nil, duplicate()
		}
	}
	r.s.trackItem(ctx, id)
	r.s.items[id] = i
	return &i, nil
}

func (r itemRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return domain.ErrNotFound
	}
	r.s.trackItem(ctx, id)
	delete(r.s.items, id)
	return nil
}

func (r itemRepo) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, i := range r.s.items {
		if i.OwnerID == ownerID {
			r.s.trackItem(ctx, id)
			delete(r.s.items, id)
			n++
		}
	}
	return n, nil
}
