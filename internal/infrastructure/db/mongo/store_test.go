package mongo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

func TestExistsFilter(t *testing.T) {
	owner := int64(3)

	cases := []struct {
		name string
		q    ports.ExistsQuery
		want bson.M
	}{
		{
			name: "global new record",
			q:    ports.ExistsQuery{Field: "email", Value: "a@x.io"},
			want: bson.M{"email": "a@x.io"},
		},
		{
			name: "global excluding self",
			q:    ports.ExistsQuery{Field: "name", Value: "alice", ExcludeID: 9},
			want: bson.M{"name": "alice", "_id": bson.M{"$ne": int64(9)}},
		},
		{
			name: "per owner",
			q:    ports.ExistsQuery{Field: "name", Value: "box", ExcludeID: 2, OwnerID: &owner},
			want: bson.M{"name": "box", "_id": bson.M{"$ne": int64(2)}, "owner_id": int64(3)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, existsFilter(tc.q))
		})
	}
}

func TestUpdateDoc(t *testing.T) {
	doc, err := updateDoc(ports.Fields{"bio": "hi", "name": "bob"}, "name", "email", "bio", "location")
	require.NoError(t, err)
	require.Equal(t, bson.M{"$set": bson.M{"bio": "hi", "name": "bob"}}, doc)

	_, err = updateDoc(ports.Fields{"is_admin": true}, "name", "email", "bio", "location")
	require.Error(t, err)
}

func TestMapErr(t *testing.T) {
	require.ErrorIs(t, mapErr("find", mongo.ErrNoDocuments), domain.ErrNotFound)
	require.ErrorIs(t, mapErr("find", fmt.Errorf("wrapped: %w", mongo.ErrNoDocuments)), domain.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	err := mapErr("insert", dup)
	require.ErrorIs(t, err, domain.ErrConflict)
	require.Equal(t, domain.ErrDuplicateValue.Message, err.Error())

	boom := errors.New("server selection timeout")
	err = mapErr("insert", boom)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.ErrorIs(t, err, boom)
}

func TestCollectionFor(t *testing.T) {
	name, err := collectionFor(domain.KindItem)
	require.NoError(t, err)
	require.Equal(t, collectionItems, name)

	_, err = collectionFor(domain.Kind("widget"))
	require.Error(t, err)
}
