package services

import (
	"context"
	"errors"
	"strings"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

type TestimonialService struct {
	*Collection[models.Testimonial, *models.Testimonial]
	store *store.Store
}

func newTestimonialService(st *store.Store, o *owners, inv *invalidator) *TestimonialService {
	c := &Collection[models.Testimonial, *models.Testimonial]{
		what:   "Testimonial",
		repo:   st.Testimonials,
		owners: o,
		inv:    inv,
		list:   newestFirst,
		paths:  aboutPaths,
	}
	c.prepare = func(_ context.Context, t, prev *models.Testimonial) error {
		switch {
		case t.Status != "":
		case prev != nil:
			t.Status = prev.Status
		default:
			// Written by an admin, so already moderated.
			t.Status = models.TestimonialApproved
		}
		return nil
	}
	return &TestimonialService{Collection: c, store: st}
}

// TestimonialInput is a public submission.
type TestimonialInput struct {
	AuthorName    string `json:"authorName" validate:"required,max=100"`
	AuthorRole    string `json:"authorRole" validate:"max=100"`
	AuthorCompany string `json:"authorCompany" validate:"max=100"`
	AvatarURL     string `json:"avatarUrl" validate:"omitempty,url"`
	Content       string `json:"content" validate:"required,min=10,max=2000"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
}

// Submit stores a visitor's testimonial as pending moderation.
func (s *TestimonialService) Submit(ctx context.Context, in TestimonialInput) (*models.Testimonial, error) {
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.Content = strings.TrimSpace(in.Content)
	if err := apierr.Validate(in); err != nil {
		return nil, err
	}
	ownerID, err := s.owners.ResolveID(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	t := &models.Testimonial{
		OwnerID:       ownerID,
		AuthorName:    in.AuthorName,
		AuthorRole:    in.AuthorRole,
		AuthorCompany: in.AuthorCompany,
		AvatarURL:     in.AvatarURL,
		Content:       in.Content,
		Rating:        in.Rating,
		Status:        models.TestimonialPending,
	}
	if err := s.store.Testimonials.Create(ctx, t); err != nil {
		return nil, apierr.FromStore(err, "Testimonial")
	}
	return t, nil
}

// ListApproved returns approved testimonials, newest first.
func (s *TestimonialService) ListApproved(ctx context.Context) ([]models.TestimonialCard, error) {
	ts, err := s.store.Testimonials.Find(ctx, store.Q().
		Where("status", string(models.TestimonialApproved)).
		SortBy("created_at", true))
	if err != nil {
		return nil, err
	}
	return testimonialCards(ts), nil
}

// SetStatus moderates a testimonial.
func (s *TestimonialService) SetStatus(ctx context.Context, id string, status models.TestimonialStatus) (*models.Testimonial, error) {
	if !status.Valid() {
		return nil, apierr.Invalid(map[string]string{"status": "must be one of: pending, approved, rejected"})
	}
	t, err := s.store.Testimonials.FindByID(ctx, id)
	if err != nil {
		return nil, apierr.FromStore(err, "Testimonial")
	}
	if t.Status == status {
		return t, nil
	}
	t.Status = status
	if err := s.store.Testimonials.Update(ctx, t); err != nil {
		return nil, apierr.FromStore(err, "Testimonial")
	}
	s.inv.Changed(ctx, aboutPaths...)
	return t, nil
}
