package services

import (
	"context"
	"errors"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
	"github.com/aTrapDeer/portfolio-backend/internal/textutil"
)

// Record is a content record the admin can manage.
type Record[T any] interface {
	*T
	models.Entity
	OwnerKey() string
	SetOwner(id string)
}

// Collection is the admin CRUD surface for one content type. prepare
// normalizes and checks a record before it is written; prev is nil on
// create.
type Collection[T any, PT Record[T]] struct {
	what    string
	repo    store.Repository[T]
	owners  *owners
	inv     *invalidator
	list    store.Query
	paths   []string
	prepare func(ctx context.Context, doc, prev *T) error
}

func (c *Collection[T, PT]) List(ctx context.Context) ([]T, error) {
	return c.repo.Find(ctx, c.list)
}

func (c *Collection[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierr.FromStore(err, c.what)
	}
	return doc, nil
}

// Create stores doc on behalf of the site owner unless it names an owner.
func (c *Collection[T, PT]) Create(ctx context.Context, doc *T) error {
	p := PT(doc)
	p.Base().ID = ""
	if p.OwnerKey() == "" {
		ownerID, err := c.owners.ResolveID(ctx)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		p.SetOwner(ownerID)
	}
	if err := c.check(ctx, doc, nil); err != nil {
		return err
	}
	if err := c.repo.Create(ctx, doc); err != nil {
		return apierr.FromStore(err, c.what)
	}
	c.inv.Changed(ctx, c.paths...)
	return nil
}

// Update replaces the record with id by doc. An empty owner keeps the
// current one.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, doc *T) error {
	prev, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return apierr.FromStore(err, c.what)
	}
	p := PT(doc)
	p.Base().ID = id
	if p.OwnerKey() == "" {
		p.SetOwner(PT(prev).OwnerKey())
	}
	if err := c.check(ctx, doc, prev); err != nil {
		return err
	}
	if err := c.repo.Update(ctx, doc); err != nil {
		return apierr.FromStore(err, c.what)
	}
	c.inv.Changed(ctx, c.paths...)
	return nil
}

func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return apierr.FromStore(err, c.what)
	}
	c.inv.Changed(ctx, c.paths...)
	return nil
}

func (c *Collection[T, PT]) check(ctx context.Context, doc, prev *T) error {
	if c.prepare != nil {
		if err := c.prepare(ctx, doc, prev); err != nil {
			return err
		}
	}
	return apierr.Validate(doc)
}

// ensureSlug fills an empty slug from title, normalizes it and rejects it
// when another record in repo already uses it.
func ensureSlug[T any, PT Record[T]](ctx context.Context, repo store.Repository[T], what string, slug *string, title, selfID string) error {
	if *slug == "" {
		if title == "" {
			// Left to validation, which reports the missing title.
			return nil
		}
		*slug = title
	}
	*slug = textutil.Slugify(*slug)
	if *slug == "" {
		return apierr.Invalid(map[string]string{"slug": "slug must contain letters or digits"})
	}
	other, err := repo.FindOne(ctx, store.Q().Where("slug", *slug))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	case PT(other).Base().ID != selfID:
		return apierr.Conflict(what + " with slug " + *slug + " already exists")
	}
	return nil
}
