package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
	"github.com/aTrapDeer/portfolio-backend/internal/textutil"
)

const excerptLength = 160

var (
	homePaths     = []string{"/"}
	aboutPaths    = []string{"/", "/about"}
	projectPaths  = []string{"/", "/projects"}
	blogPaths     = []string{"/", "/blog"}
	orderAsc      = store.Q().SortBy("order", false)
	newestFirst   = store.Q().SortBy("created_at", true)
	startDateDesc = store.Q().SortBy("start_date", true)
)

type ProjectService struct {
	*Collection[models.Project, *models.Project]
	store *store.Store
}

func newProjectService(st *store.Store, o *owners, inv *invalidator) *ProjectService {
	c := &Collection[models.Project, *models.Project]{
		what:   "Project",
		repo:   st.Projects,
		owners: o,
		inv:    inv,
		list:   orderAsc,
		paths:  projectPaths,
	}
	c.prepare = func(ctx context.Context, p, _ *models.Project) error {
		return ensureSlug(ctx, st.Projects, "Project", &p.Slug, p.Title, p.ID)
	}
	return &ProjectService{Collection: c, store: st}
}

// ListPublic returns project cards by display order, optionally only
// featured ones or those tagged tag.
func (s *ProjectService) ListPublic(ctx context.Context, featuredOnly bool, tag string) ([]models.ProjectCard, error) {
	q := orderAsc
	if featuredOnly {
		q = q.Where("featured", true)
	}
	projects, err := s.store.Projects.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProjectCard, 0, len(projects))
	for i := range projects {
		if tag != "" && !slices.Contains(projects[i].Tags, tag) {
			continue
		}
		out = append(out, projects[i].Card())
	}
	return out, nil
}

func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	p, err := s.store.Projects.FindOne(ctx, store.Q().Where("slug", slug))
	if err != nil {
		return nil, apierr.FromStore(err, "Project")
	}
	return p, nil
}

type BlogService struct {
	*Collection[models.Blog, *models.Blog]
	store *store.Store
	now   func() time.Time
}

func newBlogService(st *store.Store, o *owners, inv *invalidator) *BlogService {
	s := &BlogService{store: st, now: time.Now}
	c := &Collection[models.Blog, *models.Blog]{
		what:   "Blog",
		repo:   st.Blogs,
		owners: o,
		inv:    inv,
		list:   newestFirst,
		paths:  blogPaths,
	}
	c.prepare = func(ctx context.Context, b, prev *models.Blog) error {
		if err := ensureSlug(ctx, st.Blogs, "Blog", &b.Slug, b.Title, b.ID); err != nil {
			return err
		}
		b.ReadingTime = textutil.ReadingTime(b.Content)
		if b.Excerpt == "" {
			b.Excerpt = textutil.Excerpt(b.Content, excerptLength)
		}
		if b.PublishedAt == nil && prev != nil {
			b.PublishedAt = prev.PublishedAt
		}
		if b.Published && b.PublishedAt == nil {
			now := s.now().UTC()
			b.PublishedAt = &now
		}
		return nil
	}
	s.Collection = c
	return s
}

const (
	maxPageSize = 100
	maxPage     = 10000
)

type BlogListOptions struct {
	Tag   string
	Limit int
	Page  int
}

// ListPublished returns published posts, newest publication first. Limit
// is capped at 100 per page; zero returns every post.
func (s *BlogService) ListPublished(ctx context.Context, opts BlogListOptions) ([]models.BlogCard, error) {
	q := store.Q().Where("published", true).SortBy("published_at", true).SortBy("created_at", true)
	opts.Page = max(1, min(opts.Page, maxPage))
	opts.Limit = min(opts.Limit, maxPageSize)
	if opts.Tag == "" && opts.Limit > 0 {
		q = q.Take(opts.Limit).Offset((opts.Page - 1) * opts.Limit)
	}
	blogs, err := s.store.Blogs.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]models.BlogCard, 0, len(blogs))
	for i := range blogs {
		if opts.Tag != "" && !slices.Contains(blogs[i].Tags, opts.Tag) {
			continue
		}
		out = append(out, blogs[i].Card())
	}
	if opts.Tag != "" && opts.Limit > 0 {
		out = page(out, opts.Page, opts.Limit)
	}
	return out, nil
}

// GetBySlug returns a post. Drafts are only visible when includeDrafts is
// set.
func (s *BlogService) GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*models.Blog, error) {
	b, err := s.store.Blogs.FindOne(ctx, store.Q().Where("slug", slug))
	if err != nil {
		return nil, apierr.FromStore(err, "Blog")
	}
	if !b.Published && !includeDrafts {
		return nil, apierr.NotFound("Blog")
	}
	return b, nil
}

func page[T any](items []T, n, size int) []T {
	start := (n - 1) * size
	if start < 0 || start >= len(items) {
		return items[:0]
	}
	end := min(start+size, len(items))
	return items[start:end]
}

func newSkillCategories(st *store.Store, o *owners, inv *invalidator) *Collection[models.SkillCategory, *models.SkillCategory] {
	c := &Collection[models.SkillCategory, *models.SkillCategory]{
		what:   "Skill category",
		repo:   st.SkillCategories,
		owners: o,
		inv:    inv,
		list:   orderAsc,
		paths:  aboutPaths,
	}
	c.prepare = func(ctx context.Context, sc, _ *models.SkillCategory) error {
		return ensureSlug(ctx, st.SkillCategories, "Skill category", &sc.Slug, sc.Name, sc.ID)
	}
	return c
}

func newSkills(st *store.Store, o *owners, inv *invalidator) *Collection[models.Skill, *models.Skill] {
	c := &Collection[models.Skill, *models.Skill]{
		what:   "Skill",
		repo:   st.Skills,
		owners: o,
		inv:    inv,
		list:   orderAsc,
		paths:  aboutPaths,
	}
	c.prepare = func(ctx context.Context, sk, _ *models.Skill) error {
		if sk.CategoryID == "" {
			return nil
		}
		_, err := st.SkillCategories.FindByID(ctx, sk.CategoryID)
		if errors.Is(err, store.ErrNotFound) {
			return apierr.Invalid(map[string]string{"categoryId": "unknown skill category"})
		}
		return err
	}
	return c
}

func newServiceOffers(st *store.Store, o *owners, inv *invalidator) *Collection[models.Service, *models.Service] {
	return &Collection[models.Service, *models.Service]{
		what:   "Service",
		repo:   st.Services,
		owners: o,
		inv:    inv,
		list:   orderAsc,
		paths:  homePaths,
	}
}

func newEducation(st *store.Store, o *owners, inv *invalidator) *Collection[models.Education, *models.Education] {
	return &Collection[models.Education, *models.Education]{
		what:   "Education",
		repo:   st.Education,
		owners: o,
		inv:    inv,
		list:   startDateDesc,
		paths:  aboutPaths,
		prepare: func(_ context.Context, e, _ *models.Education) error {
			return checkDates(e.StartDate, e.EndDate)
		},
	}
}

func newExperience(st *store.Store, o *owners, inv *invalidator) *Collection[models.Experience, *models.Experience] {
	return &Collection[models.Experience, *models.Experience]{
		what:   "Experience",
		repo:   st.Experience,
		owners: o,
		inv:    inv,
		list:   startDateDesc,
		paths:  aboutPaths,
		prepare: func(_ context.Context, e, _ *models.Experience) error {
			e.Current = e.EndDate == nil
			return checkDates(e.StartDate, e.EndDate)
		},
	}
}

func checkDates(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return apierr.Invalid(map[string]string{"endDate": "must not be before startDate"})
	}
	return nil
}
