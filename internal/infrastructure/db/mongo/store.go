package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/pkg/metrics"
)

const (
	collectionUsers    = "users"
	collectionPosts    = "posts"
	collectionItems    = "items"
	collectionCounters = "counters"
)

// Store implements the core store ports on MongoDB. The cascade on account
// deletion needs a replica set for multi-document transactions.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

// Ports exposes the store through the core interfaces.
func (s *Store) Ports() ports.Store {
	seq := &sequences{col: s.db.Collection(collectionCounters)}
	return ports.Store{
		Accounts: &AccountRepository{col: s.db.Collection(collectionUsers), seq: seq},
		Posts:    &PostRepository{col: s.db.Collection(collectionPosts), seq: seq},
		Items:    &ItemRepository{col: s.db.Collection(collectionItems), seq: seq},
		Exists:   s,
		Tx:       s,
		Ping:     s.Ping,
		Close:    s.client.Disconnect,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx, nil); err != nil {
		return mapErr("ping", err)
	}
	return nil
}

// WithinTx runs fn inside a session transaction. Repositories join it through
// the session carried by ctx.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return mapErr("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the unique indexes that back the validation engine.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "deleted_at", Value: -1}}},
		},
		collectionPosts: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		collectionItems: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, models := range specs {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Exists implements ports.ExistenceChecker.
func (s *Store) Exists(ctx context.Context, kind domain.Kind, q ports.ExistsQuery) (bool, error) {
	name, err := collectionFor(kind)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.db.Collection(name).CountDocuments(ctx, existsFilter(q), options.Count().SetLimit(1))
	if err != nil {
		return false, mapErr("exists", err)
	}
	return n > 0, nil
}

func collectionFor(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindAccount:
		return collectionUsers, nil
	case domain.KindPost:
		return collectionPosts, nil
	case domain.KindItem:
		return collectionItems, nil
	}
	return "", fmt.Errorf("unknown kind %q", kind)
}

func existsFilter(q ports.ExistsQuery) bson.M {
	filter := bson.M{q.Field: q.Value}
	if q.ExcludeID != 0 {
		filter["_id"] = bson.M{"$ne": q.ExcludeID}
	}
	if q.OwnerID != nil {
		filter["owner_id"] = *q.OwnerID
	}
	return filter
}

// updateDoc builds a $set document from fields, rejecting any field not in
// allowed.
func updateDoc(fields ports.Fields, allowed ...string) (bson.M, error) {
	set := bson.M{}
	for k, v := range fields {
		ok := false
		for _, a := range allowed {
			if k == a {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("field %q is not updatable", k)
		}
		set[k] = v
	}
	return bson.M{"$set": set}, nil
}

// mapErr classifies driver errors into core error kinds.
func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		metrics.StorageConflictsTotal.Inc()
		return domain.ErrDuplicateValue
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
}

// sequences hands out int64 ids from a counters collection.
type sequences struct {
	col *mongo.Collection
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

func (s *sequences) next(ctx context.Context, kind domain.Kind) (int64, error) {
	var doc counterDoc
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": string(kind)},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, mapErr("next id", err)
	}
	return doc.Seq, nil
}
