// Package store is the typed repository layer over MongoDB collections. Every
// document is keyed by a string _id.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

// FindOptions narrows a Find call. Zero values mean "no limit" and "natural order".
type FindOptions struct {
	Skip  int64
	Limit int64
	Sort  bson.D
}

// Collection is a repository of T documents.
type Collection[T any] struct {
	coll *mongo.Collection
}

func NewCollection[T any](coll *mongo.Collection) *Collection[T] {
	return &Collection[T]{coll: coll}
}

// FindAndDecode runs filter against coll and decodes every match into T.
func FindAndDecode[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Collection[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	return c.FindWith(ctx, filter, FindOptions{})
}

func (c *Collection[T]) FindWith(ctx context.Context, filter bson.M, fo FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if fo.Skip > 0 {
		opts.SetSkip(fo.Skip)
	}
	if fo.Limit > 0 {
		opts.SetLimit(fo.Limit)
	}
	if len(fo.Sort) > 0 {
		opts.SetSort(fo.Sort)
	}
	docs, err := FindAndDecode[T](ctx, c.coll, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.coll.Name(), err)
	}
	return docs, nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("find %s %s: %w", c.coll.Name(), id, err)
	}
	return doc, nil
}

func (c *Collection[T]) Exists(ctx context.Context, id string) (bool, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}
	return n > 0, nil
}

func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert %s: %w", c.coll.Name(), ErrDuplicate)
		}
		return fmt.Errorf("insert %s: %w", c.coll.Name(), err)
	}
	return nil
}

// Replace overwrites the whole document stored under id.
func (c *Collection[T]) Replace(ctx context.Context, id string, doc T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("replace %s: %w", c.coll.Name(), ErrDuplicate)
		}
		return fmt.Errorf("replace %s %s: %w", c.coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete many %s: %w", c.coll.Name(), err)
	}
	return res.DeletedCount, nil
}
