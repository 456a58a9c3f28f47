package db

import (
	"context"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func collection(name string) *mongo.Collection {
	return devcamper.GetEnvironment().DB().Collection(name)
}

// Insert inserts the specified item into the specified collection.
func Insert(ctx context.Context, coll string, item any) error {
	_, err := collection(coll).InsertOne(ctx, item)
	return errors.Wrapf(errors.WithStack(err), "inserting document into '%s'", coll)
}

// InsertMany inserts all items into the collection in order.
func InsertMany(ctx context.Context, coll string, items ...any) error {
	if len(items) == 0 {
		return nil
	}

	_, err := collection(coll).InsertMany(ctx, items)
	return errors.Wrapf(errors.WithStack(err), "inserting documents into '%s'", coll)
}

// Remove removes one item matching the query from the specified collection.
func Remove(ctx context.Context, coll string, query any) error {
	_, err := collection(coll).DeleteOne(ctx, query)
	return errors.Wrapf(errors.WithStack(err), "deleting document from '%s'", coll)
}

// RemoveAll removes all items matching the query from the specified
// collection and returns how many were removed.
func RemoveAll(ctx context.Context, coll string, query any) (int, error) {
	res, err := collection(coll).DeleteMany(ctx, query)
	if err != nil {
		return 0, errors.Wrapf(errors.WithStack(err), "deleting documents from '%s'", coll)
	}
	return int(res.DeletedCount), nil
}

// UpdateId applies the update to the document with the given id. It returns
// a not found error if no document matched.
func UpdateId(ctx context.Context, coll string, id, update any) error {
	res, err := collection(coll).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrapf(errors.WithStack(err), "updating document in '%s'", coll)
	}
	if res.MatchedCount == 0 {
		return errors.WithStack(mongo.ErrNoDocuments)
	}
	return nil
}

// FindAndUpdateId applies the update to the document with the given id and
// decodes the document into out, as it was after the update when returnNew
// is set and before it otherwise. It returns a not found error if no
// document matched.
func FindAndUpdateId(ctx context.Context, coll string, id, update any, returnNew bool, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	if returnNew {
		opts.SetReturnDocument(options.After)
	}
	err := collection(coll).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.WithStack(err)
	}
	return errors.Wrapf(errors.WithStack(err), "updating document in '%s'", coll)
}

// ReplaceId replaces the document with the given id. It returns a not found
// error if no document matched.
func ReplaceId(ctx context.Context, coll string, id, replacement any) error {
	res, err := collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, replacement)
	if err != nil {
		return errors.Wrapf(errors.WithStack(err), "replacing document in '%s'", coll)
	}
	if res.MatchedCount == 0 {
		return errors.WithStack(mongo.ErrNoDocuments)
	}
	return nil
}

// Count runs a count command with the specified query against the collection.
func Count(ctx context.Context, coll string, query any) (int, error) {
	res, err := collection(coll).CountDocuments(ctx, query)
	return int(res), errors.Wrapf(errors.WithStack(err), "counting documents in '%s'", coll)
}

// FindOneQ runs a Q query against the given collection, applying the first
// result to "out".
func FindOneQ(ctx context.Context, coll string, q Q, out any) error {
	opts := options.FindOne().SetProjection(q.projection).SetSort(q.sortDoc())
	if q.skip > 0 {
		opts.SetSkip(int64(q.skip))
	}
	err := collection(coll).FindOne(ctx, q.filter, opts).Decode(out)
	return errors.WithStack(err)
}

// FindAllQ runs a Q query against the given collection, applying the results
// to "out".
func FindAllQ(ctx context.Context, coll string, q Q, out any) error {
	opts := options.Find().SetProjection(q.projection).SetSort(q.sortDoc())
	if q.skip > 0 {
		opts.SetSkip(int64(q.skip))
	}
	if q.limit > 0 {
		opts.SetLimit(int64(q.limit))
	}

	cur, err := collection(coll).Find(ctx, q.filter, opts)
	if err != nil {
		return errors.Wrapf(errors.WithStack(err), "finding documents in '%s'", coll)
	}
	return errors.Wrapf(cur.All(ctx, out), "decoding documents from '%s'", coll)
}

// CountQ runs a Q count query against the given collection.
func CountQ(ctx context.Context, coll string, q Q) (int, error) {
	return Count(ctx, coll, q.filter)
}

// Aggregate runs an aggregation pipeline on a collection and unmarshals the
// results to the given "out" interface, usually a pointer to a slice of
// structs or bson.M.
func Aggregate(ctx context.Context, coll string, pipeline any, out any) error {
	cur, err := collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		err = errors.Wrapf(err, "running aggregation on '%s'", coll)
		grip.Error(message.WrapError(err, message.Fields{
			"message":    "aggregation failed",
			"collection": coll,
		}))
		return err
	}
	return errors.Wrapf(cur.All(ctx, out), "decoding aggregation results from '%s'", coll)
}

// EnsureIndex creates the index if it does not already exist.
func EnsureIndex(ctx context.Context, coll string, index mongo.IndexModel) error {
	_, err := collection(coll).Indexes().CreateOne(ctx, index)
	return errors.Wrapf(errors.WithStack(err), "creating index on '%s'", coll)
}

// ClearCollections clears all documents from all the specified collections,
// returning an error immediately if clearing any one of them fails.
func ClearCollections(ctx context.Context, collections ...string) error {
	for _, coll := range collections {
		if _, err := collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			return errors.Wrapf(err, "clearing collection '%s'", coll)
		}
	}
	return nil
}
