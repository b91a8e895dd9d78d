// Package seed loads portfolio content from a YAML file through the
// services, so slugs, ownership and back-references are handled exactly as
// for admin writes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

type File struct {
	Owner           Owner           `yaml:"owner"`
	Projects        []Project       `yaml:"projects"`
	Blogs           []Blog          `yaml:"blogs"`
	SkillCategories []SkillCategory `yaml:"skillCategories"`
	Services        []Service       `yaml:"services"`
	Education       []Education     `yaml:"education"`
	Experience      []Experience    `yaml:"experience"`
	Testimonials    []Testimonial   `yaml:"testimonials"`
}

type Owner struct {
	Name         string         `yaml:"name"`
	Email        string         `yaml:"email"`
	Password     string         `yaml:"password"`
	Headline     string         `yaml:"headline"`
	Bio          string         `yaml:"bio"`
	AvatarURL    string         `yaml:"avatarUrl"`
	ResumeURL    string         `yaml:"resumeUrl"`
	Location     string         `yaml:"location"`
	Phone        string         `yaml:"phone"`
	ContactEmail string         `yaml:"contactEmail"`
	Socials      models.Socials `yaml:"socials"`
}

type Project struct {
	Title      string   `yaml:"title"`
	Slug       string   `yaml:"slug"`
	Summary    string   `yaml:"summary"`
	Content    string   `yaml:"content"`
	CoverImage string   `yaml:"coverImage"`
	Tags       []string `yaml:"tags"`
	TechStack  []string `yaml:"techStack"`
	LiveURL    string   `yaml:"liveUrl"`
	RepoURL    string   `yaml:"repoUrl"`
	Featured   bool     `yaml:"featured"`
	Order      int      `yaml:"order"`
}

type Blog struct {
	Title       string     `yaml:"title"`
	Slug        string     `yaml:"slug"`
	Excerpt     string     `yaml:"excerpt"`
	Content     string     `yaml:"content"`
	CoverImage  string     `yaml:"coverImage"`
	Tags        []string   `yaml:"tags"`
	Published   bool       `yaml:"published"`
	PublishedAt *time.Time `yaml:"publishedAt"`
}

type SkillCategory struct {
	Name   string  `yaml:"name"`
	Slug   string  `yaml:"slug"`
	Order  int     `yaml:"order"`
	Skills []Skill `yaml:"skills"`
}

type Skill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
	Icon  string `yaml:"icon"`
	Order int    `yaml:"order"`
}

type Service struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Order       int    `yaml:"order"`
}

type Education struct {
	Institution string     `yaml:"institution"`
	Degree      string     `yaml:"degree"`
	Field       string     `yaml:"field"`
	StartDate   time.Time  `yaml:"startDate"`
	EndDate     *time.Time `yaml:"endDate"`
	Description string     `yaml:"description"`
}

type Experience struct {
	Company     string     `yaml:"company"`
	Role        string     `yaml:"role"`
	Location    string     `yaml:"location"`
	StartDate   time.Time  `yaml:"startDate"`
	EndDate     *time.Time `yaml:"endDate"`
	Description string     `yaml:"description"`
	Highlights  []string   `yaml:"highlights"`
}

type Testimonial struct {
	AuthorName    string `yaml:"authorName"`
	AuthorRole    string `yaml:"authorRole"`
	AuthorCompany string `yaml:"authorCompany"`
	AvatarURL     string `yaml:"avatarUrl"`
	Content       string `yaml:"content"`
	Rating        int    `yaml:"rating"`
	Status        string `yaml:"status"`
}

// Load parses a seed file.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}
	return &f, nil
}

// Summary counts what Apply wrote and skipped.
type Summary struct {
	OwnerCreated bool
	Created      map[string]int
	Skipped      map[string]int
}

func (s *Summary) created(kind string) { s.Created[kind]++ }
func (s *Summary) skipped(kind string) { s.Skipped[kind]++ }

// Apply writes f. Records with a slug that already exists are skipped;
// collections without slugs are only seeded while empty, so Apply can be
// re-run against the same database.
func Apply(ctx context.Context, svc *services.Services, f *File, log *logger.Logger) (*Summary, error) {
	if log == nil {
		log = logger.Nop()
	}
	sum := &Summary{Created: map[string]int{}, Skipped: map[string]int{}}

	if f.Owner.Email != "" {
		created, err := ensureOwner(ctx, svc, f.Owner)
		if err != nil {
			return sum, err
		}
		sum.OwnerCreated = created
		if _, err := svc.Site.UpdateProfile(ctx, services.ProfileInput{
			Name:         f.Owner.Name,
			Headline:     f.Owner.Headline,
			Bio:          f.Owner.Bio,
			AvatarURL:    f.Owner.AvatarURL,
			ResumeURL:    f.Owner.ResumeURL,
			Location:     f.Owner.Location,
			Phone:        f.Owner.Phone,
			ContactEmail: f.Owner.ContactEmail,
			Socials:      f.Owner.Socials,
		}); err != nil {
			return sum, fmt.Errorf("seed: owner profile: %w", err)
		}
	}

	for _, p := range f.Projects {
		err := svc.Projects.Create(ctx, &models.Project{
			Title: p.Title, Slug: p.Slug, Summary: p.Summary, Content: p.Content,
			CoverImage: p.CoverImage, Tags: p.Tags, TechStack: p.TechStack,
			LiveURL: p.LiveURL, RepoURL: p.RepoURL, Featured: p.Featured, Order: p.Order,
		})
		if err := record(sum, "projects", err); err != nil {
			return sum, fmt.Errorf("seed: project %q: %w", p.Title, err)
		}
	}

	for _, b := range f.Blogs {
		err := svc.Blogs.Create(ctx, &models.Blog{
			Title: b.Title, Slug: b.Slug, Excerpt: b.Excerpt, Content: b.Content,
			CoverImage: b.CoverImage, Tags: b.Tags, Published: b.Published, PublishedAt: b.PublishedAt,
		})
		if err := record(sum, "blogs", err); err != nil {
			return sum, fmt.Errorf("seed: blog %q: %w", b.Title, err)
		}
	}

	if err := seedSkills(ctx, svc, f.SkillCategories, sum); err != nil {
		return sum, err
	}

	if err := seedIfEmpty(ctx, svc.ServiceOffers, sum, "services", f.Services, func(s Service) *models.Service {
		return &models.Service{Title: s.Title, Description: s.Description, Icon: s.Icon, Order: s.Order}
	}); err != nil {
		return sum, err
	}
	if err := seedIfEmpty(ctx, svc.Education, sum, "education", f.Education, func(e Education) *models.Education {
		return &models.Education{
			Institution: e.Institution, Degree: e.Degree, Field: e.Field,
			StartDate: e.StartDate, EndDate: e.EndDate, Description: e.Description,
		}
	}); err != nil {
		return sum, err
	}
	if err := seedIfEmpty(ctx, svc.Experience, sum, "experience", f.Experience, func(e Experience) *models.Experience {
		return &models.Experience{
			Company: e.Company, Role: e.Role, Location: e.Location,
			StartDate: e.StartDate, EndDate: e.EndDate, Description: e.Description, Highlights: e.Highlights,
		}
	}); err != nil {
		return sum, err
	}
	if err := seedIfEmpty(ctx, svc.Testimonials.Collection, sum, "testimonials", f.Testimonials, func(t Testimonial) *models.Testimonial {
		return &models.Testimonial{
			AuthorName: t.AuthorName, AuthorRole: t.AuthorRole, AuthorCompany: t.AuthorCompany,
			AvatarURL: t.AvatarURL, Content: t.Content, Rating: t.Rating,
			Status: models.TestimonialStatus(t.Status),
		}
	}); err != nil {
		return sum, err
	}

	log.Info("Seed applied", "created", sum.Created, "skipped", sum.Skipped, "ownerCreated", sum.OwnerCreated)
	return sum, nil
}

func ensureOwner(ctx context.Context, svc *services.Services, o Owner) (bool, error) {
	has, err := svc.Auth.HasAdmin(ctx)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}
	if o.Password == "" {
		return false, errors.New("seed: owner.password is required to create the first admin")
	}
	if _, err := svc.Auth.CreateUser(ctx, services.CreateUserInput{
		Name: o.Name, Email: o.Email, Password: o.Password, Role: models.RoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("seed: create owner: %w", err)
	}
	return true, nil
}

func seedSkills(ctx context.Context, svc *services.Services, cats []SkillCategory, sum *Summary) error {
	for _, c := range cats {
		cat := &models.SkillCategory{Name: c.Name, Slug: c.Slug, Order: c.Order}
		err := svc.SkillCategories.Create(ctx, cat)
		if isConflict(err) {
			// Already seeded; leave its skills alone.
			sum.skipped("skillCategories")
			continue
		}
		if err != nil {
			return fmt.Errorf("seed: skill category %q: %w", c.Name, err)
		}
		sum.created("skillCategories")
		for _, s := range c.Skills {
			if err := svc.Skills.Create(ctx, &models.Skill{
				CategoryID: cat.ID, Name: s.Name, Level: s.Level, Icon: s.Icon, Order: s.Order,
			}); err != nil {
				return fmt.Errorf("seed: skill %q: %w", s.Name, err)
			}
			sum.created("skills")
		}
	}
	return nil
}

func seedIfEmpty[S any, T any, PT services.Record[T]](ctx context.Context, coll *services.Collection[T, PT], sum *Summary, kind string, items []S, build func(S) *T) error {
	if len(items) == 0 {
		return nil
	}
	existing, err := coll.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		sum.Skipped[kind] += len(items)
		return nil
	}
	for _, item := range items {
		if err := coll.Create(ctx, build(item)); err != nil {
			return fmt.Errorf("seed: %s: %w", kind, err)
		}
		sum.created(kind)
	}
	return nil
}

func record(sum *Summary, kind string, err error) error {
	switch {
	case err == nil:
		sum.created(kind)
	case isConflict(err):
		sum.skipped(kind)
	default:
		return err
	}
	return nil
}

func isConflict(err error) bool {
	if errors.Is(err, store.ErrDuplicate) {
		return true
	}
	e, ok := apierr.As(err)
	return ok && e.Status == http.StatusConflict
}
