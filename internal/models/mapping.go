package models

func (u *User) Card() ProfileCard {
	return ProfileCard{
		ID:        u.ID,
		Name:      u.Name,
		Headline:  u.Headline,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		ResumeURL: u.ResumeURL,
		Location:  u.Location,
		Socials:   u.Socials,
	}
}

func (p *Project) Card() ProjectCard {
	return ProjectCard{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Summary:    p.Summary,
		CoverImage: p.CoverImage,
		Tags:       nonNil(p.Tags),
		TechStack:  nonNil(p.TechStack),
		LiveURL:    p.LiveURL,
		RepoURL:    p.RepoURL,
	}
}

func (b *Blog) Card() BlogCard {
	return BlogCard{
		ID:          b.ID,
		Title:       b.Title,
		Slug:        b.Slug,
		Excerpt:     b.Excerpt,
		CoverImage:  b.CoverImage,
		Tags:        nonNil(b.Tags),
		PublishedAt: b.PublishedAt,
		ReadingTime: b.ReadingTime,
	}
}

func (s *Service) Card() ServiceCard {
	return ServiceCard{ID: s.ID, Title: s.Title, Description: s.Description, Icon: s.Icon}
}

func (t *Testimonial) Card() TestimonialCard {
	return TestimonialCard{
		ID:            t.ID,
		AuthorName:    t.AuthorName,
		AuthorRole:    t.AuthorRole,
		AuthorCompany: t.AuthorCompany,
		AvatarURL:     t.AvatarURL,
		Content:       t.Content,
		Rating:        t.Rating,
	}
}

func (s *Skill) Item() SkillItem {
	return SkillItem{ID: s.ID, Name: s.Name, Level: s.Level, Icon: s.Icon}
}

func (e *Education) Timeline() TimelineItem {
	return TimelineItem{
		ID:          e.ID,
		Title:       e.Degree,
		Subtitle:    e.Institution,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Current:     e.EndDate == nil,
		Description: e.Description,
		Highlights:  fieldHighlight(e.Field),
	}
}

func (e *Experience) Timeline() TimelineItem {
	return TimelineItem{
		ID:          e.ID,
		Title:       e.Role,
		Subtitle:    e.Company,
		Location:    e.Location,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Current:     e.Current,
		Description: e.Description,
		Highlights:  e.Highlights,
	}
}

func fieldHighlight(field string) []string {
	if field == "" {
		return nil
	}
	return []string{field}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
