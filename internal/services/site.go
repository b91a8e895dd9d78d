package services

import (
	"context"
	"errors"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/cache"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

const (
	keyHome    = "page:home"
	keyAbout   = "page:about"
	keyProfile = "page:profile"

	recentPostLimit = 3
	otherSkills     = "Other"
)

// SiteService assembles the public page view models from the owner's
// profile and the collections it references.
type SiteService struct {
	store            *store.Store
	cache            cache.Cache
	owners           *owners
	inv              *invalidator
	testimonialLimit int
	log              *logger.Logger
}

func (s *SiteService) Home(ctx context.Context) (models.HomePage, error) {
	return cache.GetOrLoad(ctx, s.cache, s.log, keyHome, s.loadHome)
}

func (s *SiteService) About(ctx context.Context) (models.AboutPage, error) {
	return cache.GetOrLoad(ctx, s.cache, s.log, keyAbout, s.loadAbout)
}

func (s *SiteService) Profile(ctx context.Context) (models.ProfilePage, error) {
	return cache.GetOrLoad(ctx, s.cache, s.log, keyProfile, s.loadProfile)
}

func (s *SiteService) loadHome(ctx context.Context) (models.HomePage, error) {
	owner, testimonials, err := s.ownerAndTestimonials(ctx)
	if err != nil {
		return models.HomePage{}, err
	}

	var (
		projects []models.Project
		services []models.Service
		blogs    []models.Blog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = s.store.Projects.FindByIDs(gctx, owner.ProjectIDs)
		return err
	})
	g.Go(func() (err error) {
		services, err = s.store.Services.FindByIDs(gctx, owner.ServiceIDs)
		return err
	})
	g.Go(func() (err error) {
		blogs, err = s.store.Blogs.FindByIDs(gctx, owner.BlogIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.HomePage{}, err
	}

	page := models.HomePage{
		Profile:          owner.Card(),
		FeaturedProjects: []models.ProjectCard{},
		Services:         serviceCards(services),
		RecentPosts:      []models.BlogCard{},
		Testimonials:     testimonialCards(testimonials),
	}

	slices.SortStableFunc(projects, func(a, b models.Project) int { return a.Order - b.Order })
	for i := range projects {
		if projects[i].Featured {
			page.FeaturedProjects = append(page.FeaturedProjects, projects[i].Card())
		}
	}

	blogs = slices.DeleteFunc(blogs, func(b models.Blog) bool { return !b.Published || b.PublishedAt == nil })
	slices.SortStableFunc(blogs, func(a, b models.Blog) int { return b.PublishedAt.Compare(*a.PublishedAt) })
	for i := range blogs[:min(recentPostLimit, len(blogs))] {
		page.RecentPosts = append(page.RecentPosts, blogs[i].Card())
	}
	return page, nil
}

func (s *SiteService) loadAbout(ctx context.Context) (models.AboutPage, error) {
	owner, testimonials, err := s.ownerAndTestimonials(ctx)
	if err != nil {
		return models.AboutPage{}, err
	}

	var (
		education  []models.Education
		experience []models.Experience
		skills     []models.Skill
		categories []models.SkillCategory
		services   []models.Service
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		education, err = s.store.Education.FindByIDs(gctx, owner.EducationIDs)
		return err
	})
	g.Go(func() (err error) {
		experience, err = s.store.Experience.FindByIDs(gctx, owner.ExperienceIDs)
		return err
	})
	g.Go(func() error {
		var err error
		if skills, err = s.store.Skills.FindByIDs(gctx, owner.SkillIDs); err != nil {
			return err
		}
		categories, err = s.store.SkillCategories.FindByIDs(gctx, categoryIDs(skills))
		return err
	})
	g.Go(func() (err error) {
		services, err = s.store.Services.FindByIDs(gctx, owner.ServiceIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AboutPage{}, err
	}

	slices.SortStableFunc(education, func(a, b models.Education) int {
		return b.StartDate.Compare(a.StartDate)
	})
	slices.SortStableFunc(experience, func(a, b models.Experience) int {
		if a.Current != b.Current {
			if a.Current {
				return -1
			}
			return 1
		}
		return b.StartDate.Compare(a.StartDate)
	})

	page := models.AboutPage{
		Profile:      owner.Card(),
		Education:    make([]models.TimelineItem, 0, len(education)),
		Experience:   make([]models.TimelineItem, 0, len(experience)),
		Skills:       groupSkills(skills, categories),
		Services:     serviceCards(services),
		Testimonials: testimonialCards(testimonials),
	}
	for i := range education {
		page.Education = append(page.Education, education[i].Timeline())
	}
	for i := range experience {
		page.Experience = append(page.Experience, experience[i].Timeline())
	}
	return page, nil
}

func (s *SiteService) loadProfile(ctx context.Context) (models.ProfilePage, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return models.ProfilePage{}, err
	}
	email := owner.ContactEmail
	if email == "" {
		email = owner.Email
	}
	return models.ProfilePage{
		ProfileCard: owner.Card(),
		Contact: models.ContactInfo{
			Email:    email,
			Phone:    owner.Phone,
			Location: owner.Location,
		},
		Counts: models.ProfileCounts{
			Projects:     len(owner.ProjectIDs),
			Blogs:        len(owner.BlogIDs),
			Skills:       len(owner.SkillIDs),
			Services:     len(owner.ServiceIDs),
			Education:    len(owner.EducationIDs),
			Experience:   len(owner.ExperienceIDs),
			Testimonials: len(owner.TestimonialIDs),
		},
	}, nil
}

// ownerAndTestimonials runs the two independent reads every page starts
// with.
func (s *SiteService) ownerAndTestimonials(ctx context.Context) (*models.User, []models.Testimonial, error) {
	var (
		owner        *models.User
		testimonials []models.Testimonial
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owner, err = s.owner(gctx)
		return err
	})
	g.Go(func() (err error) {
		testimonials, err = s.store.Testimonials.Find(gctx, store.Q().
			Where("status", string(models.TestimonialApproved)).
			SortBy("created_at", true).
			Take(s.testimonialLimit))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return owner, testimonials, nil
}

func (s *SiteService) owner(ctx context.Context) (*models.User, error) {
	u, err := s.owners.Resolve(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.NotFound("Profile")
	}
	return u, err
}

// ProfileInput is the editable part of the owner's profile.
type ProfileInput struct {
	Name         string         `json:"name" validate:"required,max=100"`
	Headline     string         `json:"headline" validate:"max=200"`
	Bio          string         `json:"bio" validate:"max=5000"`
	AvatarURL    string         `json:"avatarUrl" validate:"omitempty,url"`
	ResumeURL    string         `json:"resumeUrl" validate:"omitempty,url"`
	Location     string         `json:"location" validate:"max=100"`
	Phone        string         `json:"phone" validate:"max=40"`
	ContactEmail string         `json:"contactEmail" validate:"omitempty,email"`
	Socials      models.Socials `json:"socials"`
}

// UpdateProfile rewrites the site owner's public profile.
func (s *SiteService) UpdateProfile(ctx context.Context, in ProfileInput) (*models.User, error) {
	if err := apierr.Validate(in); err != nil {
		return nil, err
	}
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	owner.Name = strings.TrimSpace(in.Name)
	owner.Headline = in.Headline
	owner.Bio = in.Bio
	owner.AvatarURL = in.AvatarURL
	owner.ResumeURL = in.ResumeURL
	owner.Location = in.Location
	owner.Phone = in.Phone
	owner.ContactEmail = strings.ToLower(in.ContactEmail)
	owner.Socials = in.Socials
	if err := s.store.Users.Update(ctx, owner); err != nil {
		return nil, apierr.FromStore(err, "Profile")
	}
	s.inv.Changed(ctx, aboutPaths...)
	return owner, nil
}

func categoryIDs(skills []models.Skill) []string {
	var ids []string
	for _, sk := range skills {
		if sk.CategoryID != "" && !slices.Contains(ids, sk.CategoryID) {
			ids = append(ids, sk.CategoryID)
		}
	}
	return ids
}

// groupSkills buckets skills under their category, categories by order then
// name, skills by order then name. Skills without a resolvable category go
// to a trailing "Other" group.
func groupSkills(skills []models.Skill, categories []models.SkillCategory) []models.SkillGroup {
	slices.SortStableFunc(categories, func(a, b models.SkillCategory) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Name, b.Name)
	})
	slices.SortStableFunc(skills, func(a, b models.Skill) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Name, b.Name)
	})

	index := make(map[string]int, len(categories))
	groups := make([]models.SkillGroup, 0, len(categories)+1)
	for _, c := range categories {
		index[c.ID] = len(groups)
		groups = append(groups, models.SkillGroup{Category: c.Name, Slug: c.Slug, Skills: []models.SkillItem{}})
	}
	var other []models.SkillItem
	for i := range skills {
		if gi, ok := index[skills[i].CategoryID]; ok {
			groups[gi].Skills = append(groups[gi].Skills, skills[i].Item())
			continue
		}
		other = append(other, skills[i].Item())
	}
	groups = slices.DeleteFunc(groups, func(g models.SkillGroup) bool { return len(g.Skills) == 0 })
	if len(other) > 0 {
		groups = append(groups, models.SkillGroup{Category: otherSkills, Slug: "other", Skills: other})
	}
	return groups
}

func serviceCards(services []models.Service) []models.ServiceCard {
	slices.SortStableFunc(services, func(a, b models.Service) int { return a.Order - b.Order })
	out := make([]models.ServiceCard, 0, len(services))
	for i := range services {
		out = append(out, services[i].Card())
	}
	return out
}

func testimonialCards(testimonials []models.Testimonial) []models.TestimonialCard {
	out := make([]models.TestimonialCard, 0, len(testimonials))
	for i := range testimonials {
		out = append(out, testimonials[i].Card())
	}
	return out
}
