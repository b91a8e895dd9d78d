// Package services implements the portfolio's read models and admin
// write paths on top of a store.Store.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/cache"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/revalidate"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

type Options struct {
	// SiteOwnerEmail selects whose profile the public pages show. Empty
	// means the oldest admin.
	SiteOwnerEmail       string
	HomeTestimonialLimit int
}

type Services struct {
	Site            *SiteService
	Projects        *ProjectService
	Blogs           *BlogService
	SkillCategories *Collection[models.SkillCategory, *models.SkillCategory]
	Skills          *Collection[models.Skill, *models.Skill]
	ServiceOffers   *Collection[models.Service, *models.Service]
	Education       *Collection[models.Education, *models.Education]
	Experience      *Collection[models.Experience, *models.Experience]
	Testimonials    *TestimonialService
	Contact         *ContactService
	Auth            *AuthService
}

type Deps struct {
	Store       *store.Store
	Cache       cache.Cache
	Revalidator revalidate.Notifier
	Tokens      *auth.Tokens
	Notifier    OTPNotifier
	Log         *logger.Logger
}

func New(d Deps, opts Options) *Services {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Revalidator == nil {
		d.Revalidator = revalidate.Nop{}
	}
	if d.Notifier == nil {
		d.Notifier = LogNotifier{Log: d.Log}
	}
	if opts.HomeTestimonialLimit <= 0 {
		opts.HomeTestimonialLimit = 6
	}

	owners := &owners{store: d.Store, email: opts.SiteOwnerEmail}
	inv := &invalidator{cache: d.Cache, revalidator: d.Revalidator, log: d.Log}

	return &Services{
		Site: &SiteService{
			store:            d.Store,
			cache:            d.Cache,
			owners:           owners,
			inv:              inv,
			testimonialLimit: opts.HomeTestimonialLimit,
			log:              d.Log.With("service", "Site"),
		},
		Projects:        newProjectService(d.Store, owners, inv),
		Blogs:           newBlogService(d.Store, owners, inv),
		SkillCategories: newSkillCategories(d.Store, owners, inv),
		Skills:          newSkills(d.Store, owners, inv),
		ServiceOffers:   newServiceOffers(d.Store, owners, inv),
		Education:       newEducation(d.Store, owners, inv),
		Experience:      newExperience(d.Store, owners, inv),
		Testimonials:    newTestimonialService(d.Store, owners, inv),
		Contact:         &ContactService{store: d.Store, log: d.Log.With("service", "Contact")},
		Auth: &AuthService{
			store:    d.Store,
			tokens:   d.Tokens,
			notifier: d.Notifier,
			now:      time.Now,
			log:      d.Log.With("service", "Auth"),
		},
	}
}

// owners resolves the site owner: the user with the configured email, or
// the oldest admin when that is unset or unknown.
type owners struct {
	store *store.Store
	email string
}

func (o *owners) Resolve(ctx context.Context) (*models.User, error) {
	if o.email != "" {
		u, err := o.store.Users.FindOne(ctx, store.Q().Where("email", o.email))
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	return o.store.Users.FindOne(ctx, store.Q().
		Where("role", string(models.RoleAdmin)).
		SortBy("created_at", false))
}

func (o *owners) ResolveID(ctx context.Context) (string, error) {
	u, err := o.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// invalidator runs after every admin write that can change a public page.
type invalidator struct {
	cache       cache.Cache
	revalidator revalidate.Notifier
	log         *logger.Logger
}

func (i *invalidator) Changed(ctx context.Context, paths ...string) {
	if i.cache != nil {
		if err := i.cache.Flush(ctx); err != nil {
			i.log.Warn("cache flush failed", "error", err)
		}
	}
	i.revalidator.Trigger(paths...)
}
