package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
	"github.com/aTrapDeer/portfolio-backend/internal/store/sqlstore"
)

const content = `
owner:
  name: Jane Doe
  email: jane@example.dev
  password: seeded-password
  headline: Backend engineer
  socials:
    github: https://github.com/jane
projects:
  - title: Portfolio API
    featured: true
    tags: [go, api]
blogs:
  - title: Hello World
    content: "<p>First post</p>"
    published: true
    publishedAt: 2024-02-01T09:00:00Z
skillCategories:
  - name: Backend
    order: 1
    skills:
      - name: Go
        level: 90
      - name: PostgreSQL
        level: 75
services:
  - title: API design
experience:
  - company: Acme
    role: Engineer
    startDate: 2022-03-01
testimonials:
  - authorName: Client
    content: Reliable and fast to deliver.
    rating: 5
`

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("owner:\n  nickname: jd\n"))
	assert.Error(t, err)
}

func TestApplyIsRepeatable(t *testing.T) {
	ctx := context.Background()
	st, err := sqlstore.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(ctx) })
	svc := services.New(services.Deps{Store: st, Tokens: auth.NewTokens("s", time.Hour)}, services.Options{})

	f, err := Load(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 2022, f.Experience[0].StartDate.Year())

	sum, err := Apply(ctx, svc, f, nil)
	require.NoError(t, err)
	assert.True(t, sum.OwnerCreated)
	assert.Equal(t, 1, sum.Created["projects"])
	assert.Equal(t, 2, sum.Created["skills"])
	assert.Equal(t, 1, sum.Created["testimonials"])

	home, err := svc.Site.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", home.Profile.Name)
	assert.Equal(t, "https://github.com/jane", home.Profile.Socials.GitHub)
	require.Len(t, home.FeaturedProjects, 1)
	require.Len(t, home.RecentPosts, 1)
	require.Len(t, home.Testimonials, 1)

	about, err := svc.Site.About(ctx)
	require.NoError(t, err)
	require.Len(t, about.Skills, 1)
	assert.Len(t, about.Skills[0].Skills, 2)

	sum, err = Apply(ctx, svc, f, nil)
	require.NoError(t, err)
	assert.False(t, sum.OwnerCreated)
	assert.Zero(t, sum.Created["projects"])
	assert.Equal(t, 1, sum.Skipped["projects"])
	assert.Equal(t, 1, sum.Skipped["services"])

	_, err = svc.Auth.Login(ctx, services.LoginInput{Email: "jane@example.dev", Password: "seeded-password"})
	assert.NoError(t, err)
}
