package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

func TestStore_AccountUniquenessBackstop(t *testing.T) {
	ctx := context.Background()
	st := New().Ports()

	alice, err := st.Accounts.Create(ctx, &domain.Account{Name: "alice", Email: "a@x.io", IsActive: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), alice.ID)

	_, err = st.Accounts.Create(ctx, &domain.Account{Name: "alice", Email: "other@x.io"})
	require.ErrorIs(t, err, domain.ErrConflict)

	bob, err := st.Accounts.Create(ctx, &domain.Account{Name: "bob", Email: "b@x.io", IsActive: true})
	require.NoError(t, err)

	_, err = st.Accounts.Update(ctx, bob.ID, ports.Fields{"email": "a@x.io"})
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := st.Accounts.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "b@x.io", got.Email)
}

func TestStore_ExistsScopes(t *testing.T) {
	ctx := context.Background()
	st := New().Ports()

	box, err := st.Items.Create(ctx, &domain.Item{OwnerID: 1, Name: "box"})
	require.NoError(t, err)

	one, two := int64(1), int64(2)
	taken, err := st.Exists.Exists(ctx, domain.KindItem, ports.ExistsQuery{Field: "name", Value: "box", OwnerID: &one})
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = st.Exists.Exists(ctx, domain.KindItem, ports.ExistsQuery{Field: "name", Value: "box", OwnerID: &two})
	require.NoError(t, err)
	require.False(t, taken)

	taken, err = st.Exists.Exists(ctx, domain.KindItem, ports.ExistsQuery{Field: "name", Value: "box", OwnerID: &one, ExcludeID: box.ID})
	require.NoError(t, err)
	require.False(t, taken)
}

func TestStore_DeactivateIsConditional(t *testing.T) {
	ctx := context.Background()
	st := New().Ports()
	a, err := st.Accounts.Create(ctx, &domain.Account{Name: "carol", Email: "c@x.io", IsActive: true})
	require.NoError(t, err)

	changed, err := st.Accounts.Deactivate(ctx, a.ID, domain.Deactivation{At: time.Now()})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = st.Accounts.Deactivate(ctx, a.ID, domain.Deactivation{At: time.Now()})
	require.NoError(t, err)
	require.False(t, changed)
}

func TestStore_ListDeletedNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := New().Ports()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"a", "b", "c"} {
		acc, err := st.Accounts.Create(ctx, &domain.Account{Name: name, Email: name + "@x.io", IsActive: true})
		require.NoError(t, err)
		_, err = st.Accounts.Deactivate(ctx, acc.ID, domain.Deactivation{At: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	deleted, err := st.Accounts.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, deleted, 3)
	require.Equal(t, "c", deleted[0].Name)
	require.Equal(t, "a", deleted[2].Name)
}

func TestStore_TxRollback(t *testing.T) {
	ctx := context.Background()
	st := New().Ports()
	_, err := st.Posts.Create(ctx, &domain.Post{OwnerID: 1, Content: "hello"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = st.Tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := st.Posts.DeleteByOwner(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
		return boom
	})
	require.ErrorIs(t, err, boom)

	posts, err := st.Posts.ListByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
}

func TestStore_TxRollbackKeepsWritesOutsideTheUnit(t *testing.T) {
	ctx := context.Background()
	st := New().Ports()
	acc, err := st.Accounts.Create(ctx, &domain.Account{Name: "dana", Email: "d@x.io", IsActive: true})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = st.Tx.WithinTx(ctx, func(txCtx context.Context) error {
		changed, err := st.Accounts.Deactivate(txCtx, acc.ID, domain.Deactivation{At: time.Now()})
		require.NoError(t, err)
		require.True(t, changed)
		_, err = st.Posts.Create(txCtx, &domain.Post{OwnerID: acc.ID, Content: "inside"})
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := st.Posts.Create(ctx, &domain.Post{OwnerID: 7, Content: "outside"})
			done <- err
		}()
		require.NoError(t, <-done)
		return boom
	})
	require.ErrorIs(t, err, boom)

	outside, err := st.Posts.ListByOwner(ctx, 7)
	require.NoError(t, err)
	require.Len(t, outside, 1)

	inside, err := st.Posts.ListByOwner(ctx, acc.ID)
	require.NoError(t, err)
	require.Empty(t, inside)

	got, err := st.Accounts.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, got.IsActive)
	require.Nil(t, got.DeletedAt)
}

func TestStore_PingAfterClose(t *testing.T) {
	ctx := context.Background()
	st := New().Ports()
	require.NoError(t, st.Ping(ctx))
	require.NoError(t, st.Close(ctx))
	require.ErrorIs(t, st.Ping(ctx), domain.ErrStoreUnavailable)
}
