package repositories

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourbook/internal/domain"
	"tourbook/internal/query"
)

// beforeInserter lets a document stamp its id and defaults before the write.
type beforeInserter interface {
	BeforeInsert()
}

// Repository is the generic document store behind the CRUD handler factory.
// Typed repositories embed it and add their aggregations on top.
type Repository[T any] struct {
	Coll     *mongo.Collection
	Resource string
	// BaseFilter is merged into every read; used e.g. to hide inactive users.
	BaseFilter bson.M
}

func NewRepository[T any](coll *mongo.Collection, resource string) *Repository[T] {
	return &Repository[T]{Coll: coll, Resource: resource}
}

func (r *Repository[T]) CreateOne(ctx context.Context, doc *T) error {
	if d, ok := any(doc).(beforeInserter); ok {
		d.BeforeInsert()
	}
	if _, err := r.Coll.InsertOne(ctx, doc); err != nil {
		return r.wrap(err)
	}
	return nil
}

func (r *Repository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := r.objectID(id)
	if err != nil {
		return nil, err
	}
	filter := r.withBase(bson.M{"_id": oid})

	var doc T
	if err := r.Coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, r.wrap(err)
	}
	return &doc, nil
}

// Find runs the refined query: base scoping filter, then the spec's filter,
// sort, projection and pagination window, in that order.
func (r *Repository[T]) Find(ctx context.Context, base bson.M, spec query.Spec) ([]T, error) {
	filter := r.withBase(bson.M{})
	for k, v := range base {
		filter[k] = v
	}
	for k, v := range spec.Filter {
		filter[k] = v
	}

	opts := options.Find().
		SetSort(spec.Sort).
		SetSkip(spec.Skip()).
		SetLimit(spec.Limit)
	if spec.Projection != nil {
		opts.SetProjection(spec.Projection)
	}

	cur, err := r.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, r.wrap(err)
	}
	defer cur.Close(ctx)

	docs := make([]T, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, r.wrap(err)
	}
	return docs, nil
}

func (r *Repository[T]) UpdateByID(ctx context.Context, id string, patch bson.M) (*T, error) {
	oid, err := r.objectID(id)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := r.withBase(bson.M{"_id": oid})

	var doc T
	err = r.Coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": patch}, opts).Decode(&doc)
	if err != nil {
		return nil, r.wrap(err)
	}
	return &doc, nil
}

func (r *Repository[T]) DeleteByID(ctx context.Context, id string) error {
	oid, err := r.objectID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.DeleteOne(ctx, r.withBase(bson.M{"_id": oid}))
	if err != nil {
		return r.wrap(err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFoundError{Resource: r.Resource}
	}
	return nil
}

func (r *Repository[T]) objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ValidationError{
			Field: "_id",
			Msg:   "invalid value " + id,
			Err:   err,
		}
	}
	return oid, nil
}

func (r *Repository[T]) withBase(filter bson.M) bson.M {
	for k, v := range r.BaseFilter {
		if _, set := filter[k]; !set {
			filter[k] = v
		}
	}
	return filter
}

// dupKey extracts the offending index field from a duplicate-key write error,
// e.g. `index: email_1 dup key: { email: "x@y.z" }`.
var dupKey = regexp.MustCompile(`index: ([a-zA-Z0-9_.]+?)_-?1`)

func (r *Repository[T]) wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.NotFoundError{Resource: r.Resource, Err: err}
	case mongo.IsDuplicateKeyError(err):
		field := ""
		if m := dupKey.FindStringSubmatch(err.Error()); m != nil {
			field = m[1]
		}
		return domain.ConflictError{Field: field, Err: err}
	default:
		return err
	}
}
