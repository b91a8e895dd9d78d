package models

// SetOwner assigns the owning user. Content records are created on behalf
// of the site owner.
func (p *Project) SetOwner(id string)       { p.OwnerID = id }
func (b *Blog) SetOwner(id string)          { b.OwnerID = id }
func (c *SkillCategory) SetOwner(id string) { c.OwnerID = id }
func (s *Skill) SetOwner(id string)         { s.OwnerID = id }
func (s *Service) SetOwner(id string)       { s.OwnerID = id }
func (e *Education) SetOwner(id string)     { e.OwnerID = id }
func (e *Experience) SetOwner(id string)    { e.OwnerID = id }
func (t *Testimonial) SetOwner(id string)   { t.OwnerID = id }

func (c *SkillCategory) OwnerKey() string { return c.OwnerID }
