package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

type entity[T any] interface {
	*T
	models.Entity
}

type repo[T any, PT entity[T]] struct {
	coll  *mongo.Collection
	users *mongo.Collection
	now   func() time.Time
}

func newRepo[T any, PT entity[T]](db *mongo.Database) *repo[T, PT] {
	var zero T
	return &repo[T, PT]{
		coll:  db.Collection(PT(&zero).TableName()),
		users: db.Collection(models.User{}.TableName()),
		now:   time.Now,
	}
}

func (r *repo[T, PT]) Find(ctx context.Context, q store.Query) ([]T, error) {
	opts := options.Find()
	if sort := sortDoc(q); len(sort) > 0 {
		opts.SetSort(sort)
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	cur, err := r.coll.Find(ctx, filterDoc(q), opts)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo[T, PT]) FindOne(ctx context.Context, q store.Query) (*T, error) {
	opts := options.FindOne()
	if sort := sortDoc(q); len(sort) > 0 {
		opts.SetSort(sort)
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	var doc T
	if err := r.coll.FindOne(ctx, filterDoc(q), opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (r *repo[T, PT]) FindByID(ctx context.Context, id string) (*T, error) {
	return r.FindOne(ctx, store.Q().Where("id", id))
}

func (r *repo[T, PT]) FindByIDs(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	docs, err := r.Find(ctx, store.Q().WhereIn("id", ids))
	if err != nil {
		return nil, err
	}
	return store.OrderByIDs(ids, docs, func(d *T) string { return PT(d).Base().ID }), nil
}

func (r *repo[T, PT]) Count(ctx context.Context, q store.Query) (int64, error) {
	return r.coll.CountDocuments(ctx, filterDoc(q))
}

func (r *repo[T, PT]) Create(ctx context.Context, doc *T) error {
	base := PT(doc).Base()
	if base.ID == "" {
		base.ID = primitive.NewObjectID().Hex()
	}
	base.Touch(r.now())
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	if o, ok := any(doc).(models.Owned); ok {
		return r.syncRef(ctx, o.OwnerKey(), o.RefField(), base.ID, true)
	}
	return nil
}

func (r *repo[T, PT]) Update(ctx context.Context, doc *T) error {
	base := PT(doc).Base()
	var prev T
	if err := r.coll.FindOne(ctx, bson.M{"_id": base.ID}).Decode(&prev); err != nil {
		return translate(err)
	}
	base.CreatedAt = PT(&prev).Base().CreatedAt
	base.UpdatedAt = r.now()

	refs, holdsRefs := any(doc).(models.RefHolder)
	var (
		res *mongo.UpdateResult
		err error
	)
	if holdsRefs {
		res, err = r.setExcept(ctx, base.ID, doc, refs.RefFields())
	} else {
		res, err = r.coll.ReplaceOne(ctx, bson.M{"_id": base.ID}, doc)
	}
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	if holdsRefs {
		proj := bson.M{}
		for _, f := range refs.RefFields() {
			proj[f] = 1
		}
		err := r.coll.FindOne(ctx, bson.M{"_id": base.ID}, options.FindOne().SetProjection(proj)).Decode(doc)
		if err != nil {
			return translate(err)
		}
	}

	o, ok := any(doc).(models.Owned)
	if !ok {
		return nil
	}
	oldOwner := any(&prev).(models.Owned).OwnerKey()
	if oldOwner == o.OwnerKey() {
		return nil
	}
	if err := r.syncRef(ctx, oldOwner, o.RefField(), base.ID, false); err != nil {
		return err
	}
	return r.syncRef(ctx, o.OwnerKey(), o.RefField(), base.ID, true)
}

func (r *repo[T, PT]) Delete(ctx context.Context, id string) error {
	var prev T
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&prev); err != nil {
		return translate(err)
	}
	if o, ok := any(&prev).(models.Owned); ok {
		return r.syncRef(ctx, o.OwnerKey(), o.RefField(), id, false)
	}
	return nil
}

// setExcept writes every field of doc except skip with $set, so arrays
// maintained by atomic child updates are never overwritten.
func (r *repo[T, PT]) setExcept(ctx context.Context, id string, doc *T, skip []string) (*mongo.UpdateResult, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "_id")
	for _, f := range skip {
		delete(fields, f)
	}
	return r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
}

// syncRef is the post-save/post-delete hook keeping the owner's
// back-reference array in step with the child collection.
func (r *repo[T, PT]) syncRef(ctx context.Context, ownerID, field, id string, add bool) error {
	if ownerID == "" {
		return nil
	}
	op := "$pull"
	if add {
		op = "$addToSet"
	}
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": ownerID}, bson.M{op: bson.M{field: id}})
	if err != nil {
		return fmt.Errorf("mongostore: sync %s on owner %s: %w", field, ownerID, err)
	}
	return nil
}

func key(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func filterDoc(q store.Query) bson.D {
	f := bson.D{}
	for _, c := range q.Filters {
		switch c.Op {
		case store.OpIn:
			f = append(f, bson.E{Key: key(c.Field), Value: bson.M{"$in": c.Value}})
		default:
			f = append(f, bson.E{Key: key(c.Field), Value: c.Value})
		}
	}
	return f
}

func sortDoc(q store.Query) bson.D {
	var s bson.D
	for _, o := range q.Sorts {
		dir := 1
		if o.Desc {
			dir = -1
		}
		s = append(s, bson.E{Key: key(o.Field), Value: dir})
	}
	return s
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
