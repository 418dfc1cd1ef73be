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

var byID = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

// PostRepository implements ports.PostRepository using MongoDB.
type PostRepository struct {
	col *mongo.Collection
	seq *sequences
}

type postDoc struct {
	ID        int64     `bson:"_id"`
	OwnerID   int64     `bson:"owner_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d *postDoc) toDomain() *domain.Post {
	return &domain.Post{ID: d.ID, OwnerID: d.OwnerID, Content: d.Content, CreatedAt: d.CreatedAt.UTC()}
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, domain.KindPost)
	if err != nil {
		return nil, err
	}
	doc := postDoc{ID: id, OwnerID: p.OwnerID, Content: p.Content, CreatedAt: p.CreatedAt.UTC()}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, mapErr("insert post", err)
	}
	return doc.toDomain(), nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc postDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapErr("find post", err)
	}
	return doc.toDomain(), nil
}

func (r *PostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *PostRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Post, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

func (r *PostRepository) find(ctx context.Context, filter bson.M) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, byID)
	if err != nil {
		return nil, mapErr("list posts", err)
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("list posts", err)
	}
	out := make([]*domain.Post, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *PostRepository) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Post, error) {
	update, err := updateDoc(fields, "content")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc postDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr("update post", err)
	}
	return doc.toDomain(), nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return deleteOne(ctx, r.col, id, "delete post")
}

func (r *PostRepository) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	return deleteMany(ctx, r.col, ownerID, "delete posts")
}

// ItemRepository implements ports.ItemRepository using MongoDB.
type ItemRepository struct {
	col *mongo.Collection
	seq *sequences
}

type itemDoc struct {
	ID          int64     `bson:"_id"`
	OwnerID     int64     `bson:"owner_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d *itemDoc) toDomain() *domain.Item {
	return &domain.Item{ID: d.ID, OwnerID: d.OwnerID, Name: d.Name, Description: d.Description, CreatedAt: d.CreatedAt.UTC()}
}

func (r *ItemRepository) Create(ctx context.Context, i *domain.Item) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, domain.KindItem)
	if err != nil {
		return nil, err
	}
	doc := itemDoc{ID: id, OwnerID: i.OwnerID, Name: i.Name, Description: i.Description, CreatedAt: i.CreatedAt.UTC()}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, mapErr("insert item", err)
	}
	return doc.toDomain(), nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc itemDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapErr("find item", err)
	}
	return doc.toDomain(), nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, byID)
	if err != nil {
		return nil, mapErr("list items", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr("list items", err)
	}
	out := make([]*domain.Item, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ItemRepository) Update(ctx context.Context, id int64, fields ports.Fields) (*domain.Item, error) {
	update, err := updateDoc(fields, "name", "description")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc itemDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr("update item", err)
	}
	return doc.toDomain(), nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	return deleteOne(ctx, r.col, id, "delete item")
}

func (r *ItemRepository) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	return deleteMany(ctx, r.col, ownerID, "delete items")
}

func deleteOne(ctx context.Context, col *mongo.Collection, id int64, op string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func deleteMany(ctx context.Context, col *mongo.Collection, ownerID int64, op string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, mapErr(op, err)
	}
	return res.DeletedCount, nil
}
