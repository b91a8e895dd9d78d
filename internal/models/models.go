// Package models holds the content records persisted by the store backends.
// Field keys are snake_case and shared by gorm columns and bson keys so the
// same store.Query runs against either backend.
package models

import "time"

// Document is embedded by every record.
type Document struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Base exposes the embedded Document to generic code.
func (d *Document) Base() *Document { return d }

// Touch stamps UpdatedAt and, for new records, CreatedAt.
func (d *Document) Touch(now time.Time) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
}

// Entity is what the generic repositories require of a record.
type Entity interface {
	Base() *Document
	TableName() string
}

// Owned records keep a back-reference to themselves on the owning user.
// RefField names the user array that lists them.
type Owned interface {
	OwnerKey() string
	RefField() string
}

// Back-reference arrays on User.
const (
	RefProjects     = "project_ids"
	RefBlogs        = "blog_ids"
	RefSkills       = "skill_ids"
	RefServices     = "service_ids"
	RefEducation    = "education_ids"
	RefExperience   = "experience_ids"
	RefTestimonials = "testimonial_ids"
)

// RefHolder is a record carrying back-reference arrays. Repositories leave
// the named fields out of whole-record updates; only child writes move them.
type RefHolder interface {
	RefFields() []string
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type Socials struct {
	GitHub   string `json:"github,omitempty" bson:"github,omitempty" yaml:"github"`
	LinkedIn string `json:"linkedin,omitempty" bson:"linkedin,omitempty" yaml:"linkedin"`
	Twitter  string `json:"twitter,omitempty" bson:"twitter,omitempty" yaml:"twitter"`
	Website  string `json:"website,omitempty" bson:"website,omitempty" yaml:"website"`
}

type User struct {
	Document     `bson:",inline"`
	Name         string  `json:"name" bson:"name"`
	Email        string  `json:"email" bson:"email" gorm:"uniqueIndex;size:255"`
	PasswordHash string  `json:"-" bson:"password_hash"`
	Role         Role    `json:"role" bson:"role" gorm:"size:16;default:user"`
	Headline     string  `json:"headline" bson:"headline"`
	Bio          string  `json:"bio" bson:"bio"`
	AvatarURL    string  `json:"avatarUrl" bson:"avatar_url"`
	ResumeURL    string  `json:"resumeUrl" bson:"resume_url"`
	Location     string  `json:"location" bson:"location"`
	Phone        string  `json:"phone" bson:"phone"`
	ContactEmail string  `json:"contactEmail" bson:"contact_email"`
	Socials      Socials `json:"socials" bson:"socials" gorm:"embedded;embeddedPrefix:social_"`

	ProjectIDs     []string `json:"projectIds" bson:"project_ids,omitempty" gorm:"serializer:json"`
	BlogIDs        []string `json:"blogIds" bson:"blog_ids,omitempty" gorm:"serializer:json"`
	SkillIDs       []string `json:"skillIds" bson:"skill_ids,omitempty" gorm:"serializer:json"`
	ServiceIDs     []string `json:"serviceIds" bson:"service_ids,omitempty" gorm:"serializer:json"`
	EducationIDs   []string `json:"educationIds" bson:"education_ids,omitempty" gorm:"serializer:json"`
	ExperienceIDs  []string `json:"experienceIds" bson:"experience_ids,omitempty" gorm:"serializer:json"`
	TestimonialIDs []string `json:"testimonialIds" bson:"testimonial_ids,omitempty" gorm:"serializer:json"`
}

func (User) TableName() string { return "users" }

func (*User) RefFields() []string {
	return []string{RefProjects, RefBlogs, RefSkills, RefServices, RefEducation, RefExperience, RefTestimonials}
}

// Refs returns a pointer to the back-reference array named by field.
func (u *User) Refs(field string) *[]string {
	switch field {
	case RefProjects:
		return &u.ProjectIDs
	case RefBlogs:
		return &u.BlogIDs
	case RefSkills:
		return &u.SkillIDs
	case RefServices:
		return &u.ServiceIDs
	case RefEducation:
		return &u.EducationIDs
	case RefExperience:
		return &u.ExperienceIDs
	case RefTestimonials:
		return &u.TestimonialIDs
	}
	return nil
}

type Project struct {
	Document   `bson:",inline"`
	OwnerID    string   `json:"ownerId" bson:"owner_id" gorm:"index;size:36"`
	Title      string   `json:"title" bson:"title" validate:"required,max=200"`
	Slug       string   `json:"slug" bson:"slug" gorm:"uniqueIndex;size:191" validate:"max=100"`
	Summary    string   `json:"summary" bson:"summary" validate:"max=500"`
	Content    string   `json:"content" bson:"content"`
	CoverImage string   `json:"coverImage" bson:"cover_image"`
	Tags       []string `json:"tags" bson:"tags" gorm:"serializer:json"`
	TechStack  []string `json:"techStack" bson:"tech_stack" gorm:"serializer:json"`
	LiveURL    string   `json:"liveUrl" bson:"live_url" validate:"omitempty,url"`
	RepoURL    string   `json:"repoUrl" bson:"repo_url" validate:"omitempty,url"`
	Featured   bool     `json:"featured" bson:"featured"`
	Order      int      `json:"order" bson:"order"`
}

func (Project) TableName() string   { return "projects" }
func (p *Project) OwnerKey() string { return p.OwnerID }
func (p *Project) RefField() string { return RefProjects }

type Blog struct {
	Document    `bson:",inline"`
	OwnerID     string     `json:"ownerId" bson:"owner_id" gorm:"index;size:36"`
	Title       string     `json:"title" bson:"title" validate:"required,max=200"`
	Slug        string     `json:"slug" bson:"slug" gorm:"uniqueIndex;size:191" validate:"max=100"`
	Excerpt     string     `json:"excerpt" bson:"excerpt" validate:"max=500"`
	Content     string     `json:"content" bson:"content" validate:"required"`
	CoverImage  string     `json:"coverImage" bson:"cover_image"`
	Tags        []string   `json:"tags" bson:"tags" gorm:"serializer:json"`
	Published   bool       `json:"published" bson:"published" gorm:"index"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" bson:"published_at,omitempty"`
	ReadingTime int        `json:"readingTime" bson:"reading_time"`
}

func (Blog) TableName() string   { return "blogs" }
func (b *Blog) OwnerKey() string { return b.OwnerID }
func (b *Blog) RefField() string { return RefBlogs }

type SkillCategory struct {
	Document `bson:",inline"`
	OwnerID  string `json:"ownerId" bson:"owner_id" gorm:"index;size:36"`
	Name     string `json:"name" bson:"name" validate:"required,max=100"`
	Slug     string `json:"slug" bson:"slug" gorm:"uniqueIndex;size:191" validate:"max=100"`
	Order    int    `json:"order" bson:"order"`
}

func (SkillCategory) TableName() string { return "skill_categories" }

type Skill struct {
	Document   `bson:",inline"`
	OwnerID    string `json:"ownerId" bson:"owner_id" gorm:"index;size:36"`
	CategoryID string `json:"categoryId" bson:"category_id" gorm:"index;size:36"`
	Name       string `json:"name" bson:"name" validate:"required,max=100"`
	Level      int    `json:"level" bson:"level" validate:"min=0,max=100"`
	Icon       string `json:"icon" bson:"icon"`
	Order      int    `json:"order" bson:"order"`
}

func (Skill) TableName() string   { return "skills" }
func (s *Skill) OwnerKey() string { return s.OwnerID }
func (s *Skill) RefField() string { return RefSkills }

type Service struct {
	Document    `bson:",inline"`
	OwnerID     string `json:"ownerId" bson:"owner_id" gorm:"index;size:36"`
	Title       string `json:"title" bson:"title" validate:"required,max=200"`
	Description string `json:"description" bson:"description"`
	Icon        string `json:"icon" bson:"icon"`
	Order       int    `json:"order" bson:"order"`
}

func (Service) TableName() string   { return "services" }
func (s *Service) OwnerKey() string { return s.OwnerID }
func (s *Service) RefField() string { return RefServices }

type Education struct {
	Document    `bson:",inline"`
	OwnerID     string     `json:"ownerId" bson:"owner_id" gorm:"index;size:36"`
	Institution string     `json:"institution" bson:"institution" validate:"required"`
	Degree      string     `json:"degree" bson:"degree" validate:"required"`
	Field       string     `json:"field" bson:"field"`
	StartDate   time.Time  `json:"startDate" bson:"start_date" validate:"required"`
	EndDate     *time.Time `json:"endDate,omitempty" bson:"end_date,omitempty"`
	Description string     `json:"description" bson:"description"`
}

func (Education) TableName() string   { return "education" }
func (e *Education) OwnerKey() string { return e.OwnerID }
func (e *Education) RefField() string { return RefEducation }

type Experience struct {
	Document    `bson:",inline"`
	OwnerID     string     `json:"ownerId" bson:"owner_id" gorm:"index;size:36"`
	Company     string     `json:"company" bson:"company" validate:"required"`
	Role        string     `json:"role" bson:"role" validate:"required"`
	Location    string     `json:"location" bson:"location"`
	StartDate   time.Time  `json:"startDate" bson:"start_date" validate:"required"`
	EndDate     *time.Time `json:"endDate,omitempty" bson:"end_date,omitempty"`
	Current     bool       `json:"current" bson:"current"`
	Description string     `json:"description" bson:"description"`
	Highlights  []string   `json:"highlights" bson:"highlights" gorm:"serializer:json"`
}

func (Experience) TableName() string   { return "experiences" }
func (e *Experience) OwnerKey() string { return e.OwnerID }
func (e *Experience) RefField() string { return RefExperience }

type TestimonialStatus string

const (
	TestimonialPending  TestimonialStatus = "pending"
	TestimonialApproved TestimonialStatus = "approved"
	TestimonialRejected TestimonialStatus = "rejected"
)

func (s TestimonialStatus) Valid() bool {
	switch s {
	case TestimonialPending, TestimonialApproved, TestimonialRejected:
		return true
	}
	return false
}

type Testimonial struct {
	Document      `bson:",inline"`
	OwnerID       string            `json:"ownerId" bson:"owner_id" gorm:"index;size:36"`
	AuthorName    string            `json:"authorName" bson:"author_name" validate:"required,max=100"`
	AuthorRole    string            `json:"authorRole" bson:"author_role" validate:"max=100"`
	AuthorCompany string            `json:"authorCompany" bson:"author_company" validate:"max=100"`
	AvatarURL     string            `json:"avatarUrl" bson:"avatar_url" validate:"omitempty,url"`
	Content       string            `json:"content" bson:"content" validate:"required,min=10,max=2000"`
	Rating        int               `json:"rating" bson:"rating" validate:"min=1,max=5"`
	Status        TestimonialStatus `json:"status" bson:"status" gorm:"index;size:16;default:pending" validate:"oneof=pending approved rejected"`
}

func (Testimonial) TableName() string   { return "testimonials" }
func (t *Testimonial) OwnerKey() string { return t.OwnerID }
func (t *Testimonial) RefField() string { return RefTestimonials }

type ContactMessage struct {
	Document `bson:",inline"`
	Name     string `json:"name" bson:"name" validate:"required,max=100"`
	Email    string `json:"email" bson:"email" validate:"required,email"`
	Subject  string `json:"subject" bson:"subject" validate:"max=200"`
	Message  string `json:"message" bson:"message" validate:"required,min=10,max=5000"`
	Read     bool   `json:"read" bson:"read"`
}

func (ContactMessage) TableName() string { return "contact_messages" }

// PasswordResetToken holds a hashed one-time password. Tokens are valid for
// ResetTokenTTL and can be redeemed once.
type PasswordResetToken struct {
	Document  `bson:",inline"`
	UserID    string    `json:"userId" bson:"user_id" gorm:"index;size:36"`
	Email     string    `json:"email" bson:"email" gorm:"index;size:255"`
	OTPHash   string    `json:"-" bson:"otp_hash"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expires_at"`
	Used      bool      `json:"used" bson:"used"`
	Attempts  int       `json:"attempts" bson:"attempts"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

const (
	ResetTokenTTL = 15 * time.Minute
	// MaxOTPAttempts wrong codes burn a reset token.
	MaxOTPAttempts = 5
)

func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
