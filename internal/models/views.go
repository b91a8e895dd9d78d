package models

import "time"

// Page view models returned by the aggregation endpoints.

type ProfileCard struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Headline  string  `json:"headline"`
	Bio       string  `json:"bio"`
	AvatarURL string  `json:"avatarUrl"`
	ResumeURL string  `json:"resumeUrl,omitempty"`
	Location  string  `json:"location,omitempty"`
	Socials   Socials `json:"socials"`
}

type ProjectCard struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Summary    string   `json:"summary"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	TechStack  []string `json:"techStack"`
	LiveURL    string   `json:"liveUrl,omitempty"`
	RepoURL    string   `json:"repoUrl,omitempty"`
}

type BlogCard struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	CoverImage  string     `json:"coverImage"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ReadingTime int        `json:"readingTime"`
}

type ServiceCard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type TestimonialCard struct {
	ID            string `json:"id"`
	AuthorName    string `json:"authorName"`
	AuthorRole    string `json:"authorRole,omitempty"`
	AuthorCompany string `json:"authorCompany,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	Content       string `json:"content"`
	Rating        int    `json:"rating"`
}

type SkillItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	Icon  string `json:"icon,omitempty"`
}

type SkillGroup struct {
	Category string      `json:"category"`
	Slug     string      `json:"slug"`
	Skills   []SkillItem `json:"skills"`
}

type TimelineItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Location    string     `json:"location,omitempty"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description"`
	Highlights  []string   `json:"highlights,omitempty"`
}

type HomePage struct {
	Profile          ProfileCard       `json:"profile"`
	FeaturedProjects []ProjectCard     `json:"featuredProjects"`
	Services         []ServiceCard     `json:"services"`
	RecentPosts      []BlogCard        `json:"recentPosts"`
	Testimonials     []TestimonialCard `json:"testimonials"`
}

type AboutPage struct {
	Profile      ProfileCard       `json:"profile"`
	Education    []TimelineItem    `json:"education"`
	Experience   []TimelineItem    `json:"experience"`
	Skills       []SkillGroup      `json:"skills"`
	Services     []ServiceCard     `json:"services"`
	Testimonials []TestimonialCard `json:"testimonials"`
}

type ContactInfo struct {
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

type ProfileCounts struct {
	Projects     int `json:"projects"`
	Blogs        int `json:"blogs"`
	Skills       int `json:"skills"`
	Services     int `json:"services"`
	Education    int `json:"education"`
	Experience   int `json:"experience"`
	Testimonials int `json:"testimonials"`
}

type ProfilePage struct {
	ProfileCard
	Contact ContactInfo   `json:"contact"`
	Counts  ProfileCounts `json:"counts"`
}
