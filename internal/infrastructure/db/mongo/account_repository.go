package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
)

type AccountRepository struct {
	col *mongo.Collection
	seq *sequences
}

type accountDoc struct {
	ID             int64      `bson:"_id"`
	Name           string     `bson:"name"`
	Email          string     `bson:"email"`
	PasswordHash   string     `bson:"password_hash"`
	Bio            string     `bson:"bio"`
	Location       string     `bson:"location,omitempty"`
	CreatedAt      time.Time  `bson:"created_at"`
	IsAdmin        bool       `bson:"is_admin"`
	IsActive       bool       `bson:"is_active"`
	DeletedByAdmin bool       `bson:"deleted_by_admin"`
	DeletionReason *string    `bson:"deletion_reason,omitempty"`
	DeletedAt      *time.Time `bson:"deleted_at,omitempty"`
}

func (d *accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		Bio:            d.Bio,
		Location:       d.Location,
		CreatedAt:      d.CreatedAt.UTC(),
		IsAdmin:        d.IsAdmin,
		IsActive:       d.IsActive,
		DeletedByAdmin: d.DeletedByAdmin,
		DeletionReason: d.DeletionReason,
		DeletedAt:      d.DeletedAt,
	}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, domain.KindAccount)
	if err != nil {
		return nil, err
	}
	doc := accountDoc{
		ID:           id,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Bio:          a.Bio,
		Location:     a.Location,
		CreatedAt:    a.CreatedAt.UTC(),
		IsAdmin:      a.IsAdmin,
		IsActive:     a.IsActive,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, mapErr("insert account", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr("find account", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) List(ctx context.Context, active bool) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sort := bson.D{{Key: "_id", Value: 1}}
	if !active {
		sort = bson.D{{Key: "deleted_at", Value: -1}}
	}
	cur, err := r.col.Find(ctx, bson.M{"is_active": active}, options.Find().SetSort(sort))
	if err != nil {
		return nil, mapErr("list accounts", err)
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("list accounts", err)
	}

	out := make([]*domain.Account, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *AccountRepository) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Account, error) {
	update, err := updateDoc(fields, "name", "email", "bio", "location")
	if err != nil {
		return nil, err
	}
	return r.findAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *AccountRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.Account, error) {
	return r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_admin": isAdmin}})
}

func (r *AccountRepository) findAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr("update account", err)
	}
	return doc.toDomain(), nil
}

// Deactivate only matches active accounts, so a concurrent second call
// reports false.
func (r *AccountRepository) Deactivate(ctx context.Context, id int64, d domain.Deactivation) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	at := d.At.UTC()
	set := bson.M{
		"is_active":        false,
		"deleted_by_admin": d.ByAdmin,
		"deleted_at":       at,
	}
	if d.Reason != nil {
		set["deletion_reason"] = *d.Reason
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "is_active": true}, bson.M{"$set": set})
	if err != nil {
		return false, mapErr("deactivate account", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
