package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

type entity[T any] interface {
	*T
	models.Entity
}

type repo[T any, PT entity[T]] struct {
	db  *gorm.DB
	now func() time.Time
}

func newRepo[T any, PT entity[T]](db *gorm.DB) *repo[T, PT] {
	return &repo[T, PT]{db: db, now: time.Now}
}

func (r *repo[T, PT]) Find(ctx context.Context, q store.Query) ([]T, error) {
	var out []T
	if err := apply(r.db.WithContext(ctx), q).Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *repo[T, PT]) FindOne(ctx context.Context, q store.Query) (*T, error) {
	var doc T
	if err := apply(r.db.WithContext(ctx), q).Take(&doc).Error; err != nil {
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
	var n int64
	q.Sorts, q.Limit, q.Skip = nil, 0, 0
	if err := apply(r.db.WithContext(ctx).Model(new(T)), q).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *repo[T, PT]) Create(ctx context.Context, doc *T) error {
	base := PT(doc).Base()
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	base.Touch(r.now())
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return translate(err)
		}
		if o, ok := any(doc).(models.Owned); ok {
			return syncRef(tx, o.OwnerKey(), o.RefField(), base.ID, true)
		}
		return nil
	})
}

func (r *repo[T, PT]) Update(ctx context.Context, doc *T) error {
	base := PT(doc).Base()
	if base.ID == "" {
		return store.ErrNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev T
		if err := tx.Take(&prev, "id = ?", base.ID).Error; err != nil {
			return translate(err)
		}
		base.CreatedAt = PT(&prev).Base().CreatedAt
		base.UpdatedAt = r.now()
		upd := tx.Model(doc).Select("*")
		refs, holdsRefs := any(doc).(models.RefHolder)
		if holdsRefs {
			upd = upd.Omit(refs.RefFields()...)
		}
		if err := upd.Updates(doc).Error; err != nil {
			return translate(err)
		}
		if holdsRefs {
			// Hand back the stored arrays, not the caller's copy.
			if err := tx.Select(refs.RefFields()).Take(doc, "id = ?", base.ID).Error; err != nil {
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
		if err := syncRef(tx, oldOwner, o.RefField(), base.ID, false); err != nil {
			return err
		}
		return syncRef(tx, o.OwnerKey(), o.RefField(), base.ID, true)
	})
}

func (r *repo[T, PT]) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev T
		if err := tx.Take(&prev, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&prev).Error; err != nil {
			return translate(err)
		}
		if o, ok := any(&prev).(models.Owned); ok {
			return syncRef(tx, o.OwnerKey(), o.RefField(), id, false)
		}
		return nil
	})
}

// syncRef is the post-save/post-delete hook that keeps the owner's
// back-reference array in step with the child collection. The owner row is
// locked for the read-modify-write; sqlite ignores the lock and serializes
// writers on its single connection instead.
func syncRef(tx *gorm.DB, ownerID, field, id string, add bool) error {
	if ownerID == "" {
		return nil
	}
	var owner models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&owner, "id = ?", ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	refs := owner.Refs(field)
	if refs == nil {
		return fmt.Errorf("sqlstore: unknown reference field %q", field)
	}
	if add {
		*refs = store.AddRef(*refs, id)
	} else {
		*refs = store.RemoveRef(*refs, id)
	}
	return tx.Model(&owner).Select(field).Updates(&owner).Error
}

func apply(tx *gorm.DB, q store.Query) *gorm.DB {
	for _, f := range q.Filters {
		col := clause.Column{Name: f.Field}
		switch f.Op {
		case store.OpIn:
			ids, _ := f.Value.([]string)
			values := make([]interface{}, len(ids))
			for i, id := range ids {
				values[i] = id
			}
			tx = tx.Where(clause.IN{Column: col, Values: values})
		default:
			tx = tx.Where(clause.Eq{Column: col, Value: f.Value})
		}
	}
	for _, s := range q.Sorts {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Skip > 0 {
		tx = tx.Offset(q.Skip)
	}
	return tx
}
