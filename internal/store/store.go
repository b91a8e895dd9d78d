// Package store defines the persistence contract shared by the SQL and
// document backends.
package store

import (
	"context"
	"errors"

	"github.com/aTrapDeer/portfolio-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Repository is a typed collection. Records that implement models.Owned
// keep their id on the owner's back-reference array: Create appends it,
// Delete removes it and Update moves it when the owner changes.
type Repository[T any] interface {
	Find(ctx context.Context, q Query) ([]T, error)
	FindOne(ctx context.Context, q Query) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	// FindByIDs returns the records in the order of ids, skipping ids that
	// no longer resolve.
	FindByIDs(ctx context.Context, ids []string) ([]T, error)
	Count(ctx context.Context, q Query) (int64, error)
	Create(ctx context.Context, doc *T) error
	Update(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id string) error
}

// Store bundles one repository per collection.
type Store struct {
	Users           Repository[models.User]
	Projects        Repository[models.Project]
	Blogs           Repository[models.Blog]
	SkillCategories Repository[models.SkillCategory]
	Skills          Repository[models.Skill]
	Services        Repository[models.Service]
	Education       Repository[models.Education]
	Experience      Repository[models.Experience]
	Testimonials    Repository[models.Testimonial]
	ContactMessages Repository[models.ContactMessage]
	ResetTokens     Repository[models.PasswordResetToken]

	Backend Backend
}

// Backend is the connection behind a Store.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error  { return s.Backend.Ping(ctx) }
func (s *Store) Close(ctx context.Context) error { return s.Backend.Close(ctx) }

// OrderByIDs reorders docs to follow ids, the way a populated reference
// array keeps its order. Missing ids are skipped.
func OrderByIDs[T any](ids []string, docs []T, id func(*T) string) []T {
	byID := make(map[string]int, len(docs))
	for i := range docs {
		byID[id(&docs[i])] = i
	}
	out := make([]T, 0, len(docs))
	for _, want := range ids {
		if i, ok := byID[want]; ok {
			out = append(out, docs[i])
		}
	}
	return out
}

// AddRef appends id to refs unless already present.
func AddRef(refs []string, id string) []string {
	for _, r := range refs {
		if r == id {
			return refs
		}
	}
	return append(refs, id)
}

// RemoveRef drops every occurrence of id from refs.
func RemoveRef(refs []string, id string) []string {
	out := refs[:0]
	for _, r := range refs {
		if r != id {
			out = append(out, r)
		}
	}
	return out
}
