package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/cache"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
	"github.com/aTrapDeer/portfolio-backend/internal/store/sqlstore"
)

type capturedOTP struct {
	mu   sync.Mutex
	last map[string]string
}

func (c *capturedOTP) SendOTP(_ context.Context, email, otp string, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		c.last = map[string]string{}
	}
	c.last[email] = otp
	return nil
}

func (c *capturedOTP) For(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last[email]
}

type fixture struct {
	svc   *Services
	store *store.Store
	otp   *capturedOTP
	owner *models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	st, err := sqlstore.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	otp := &capturedOTP{}
	svc := New(Deps{
		Store:    st,
		Cache:    cache.NewMemory(time.Minute),
		Tokens:   auth.NewTokens("test-secret", time.Hour),
		Notifier: otp,
	}, Options{HomeTestimonialLimit: 2})

	owner, err := svc.Auth.CreateUser(context.Background(), CreateUserInput{
		Name:     "Site Owner",
		Email:    "Owner@Example.dev",
		Password: "correct-horse",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	return &fixture{svc: svc, store: st, otp: otp, owner: owner}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	e, ok := apierr.As(err)
	require.True(t, ok, "expected *apierr.Error, got %v", err)
	return e.Status
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 12, 0, 0, 0, time.UTC)
}

func TestContentIsOwnedBySiteOwner(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	p := &models.Project{Title: "Portfolio API"}
	require.NoError(t, f.svc.Projects.Create(ctx, p))
	assert.Equal(t, f.owner.ID, p.OwnerID)
	assert.Equal(t, "portfolio-api", p.Slug)

	owner, err := f.store.Users.FindByID(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, owner.ProjectIDs)

	require.NoError(t, f.svc.Projects.Delete(ctx, p.ID))
	owner, err = f.store.Users.FindByID(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, owner.ProjectIDs)
}

func TestDuplicateSlugConflicts(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	require.NoError(t, f.svc.Blogs.Create(ctx, &models.Blog{Title: "Hello World", Content: "body"}))
	err := f.svc.Blogs.Create(ctx, &models.Blog{Title: "Hello, world!", Content: "other body"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	// Updating a post keeps its own slug.
	b, err := f.svc.Blogs.GetBySlug(ctx, "hello-world", true)
	require.NoError(t, err)
	b.Content = "edited"
	require.NoError(t, f.svc.Blogs.Update(ctx, b.ID, b))
}

func TestBlogPublishing(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.svc.Blogs.now = func() time.Time { return day(10) }

	b := &models.Blog{Title: "Draft", Content: "<p>Some words here.</p>"}
	require.NoError(t, f.svc.Blogs.Create(ctx, b))
	assert.Nil(t, b.PublishedAt)
	assert.Equal(t, 1, b.ReadingTime)
	assert.Equal(t, "Some words here.", b.Excerpt)

	_, err := f.svc.Blogs.GetBySlug(ctx, "draft", false)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	b.Published = true
	require.NoError(t, f.svc.Blogs.Update(ctx, b.ID, b))
	require.NotNil(t, b.PublishedAt)
	assert.True(t, b.PublishedAt.Equal(day(10)))

	// A later edit keeps the first publication time.
	f.svc.Blogs.now = func() time.Time { return day(20) }
	edit := *b
	edit.PublishedAt = nil
	edit.Title = "Published"
	require.NoError(t, f.svc.Blogs.Update(ctx, b.ID, &edit))
	assert.True(t, edit.PublishedAt.Equal(day(10)))
}

func TestListPublishedSortedByPublishedAt(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for _, b := range []models.Blog{
		{Title: "Old", Published: true, PublishedAt: ptr(day(1))},
		{Title: "New", Published: true, PublishedAt: ptr(day(5)), Tags: []string{"go"}},
		{Title: "Middle", Published: true, PublishedAt: ptr(day(3)), Tags: []string{"go"}},
		{Title: "Draft"},
	} {
		b.Content = "content"
		require.NoError(t, f.svc.Blogs.Create(ctx, &b))
	}

	got, err := f.svc.Blogs.ListPublished(ctx, BlogListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"new", "middle", "old"}, slugs(got))

	got, err = f.svc.Blogs.ListPublished(ctx, BlogListOptions{Tag: "go", Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"middle"}, slugs(got))

	got, err = f.svc.Blogs.ListPublished(ctx, BlogListOptions{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, slugs(got))
}

func TestTestimonialSubmission(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Testimonials.Submit(ctx, TestimonialInput{AuthorName: "Ann", Content: "Too short", Rating: 5})
	require.Error(t, err)
	e, _ := apierr.As(err)
	assert.Equal(t, http.StatusUnprocessableEntity, e.Status)
	assert.Equal(t, "must be at least 10 characters", e.Fields["content"])

	_, err = f.svc.Testimonials.Submit(ctx, TestimonialInput{AuthorName: "Ann", Content: "Great to work with.", Rating: 6})
	e, _ = apierr.As(err)
	require.NotNil(t, e)
	assert.Contains(t, e.Fields, "rating")

	tm, err := f.svc.Testimonials.Submit(ctx, TestimonialInput{AuthorName: "Ann", Content: "Great to work with.", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, models.TestimonialPending, tm.Status)
	assert.Equal(t, f.owner.ID, tm.OwnerID)

	listed, err := f.svc.Testimonials.ListApproved(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = f.svc.Testimonials.SetStatus(ctx, tm.ID, "published")
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	_, err = f.svc.Testimonials.SetStatus(ctx, tm.ID, models.TestimonialApproved)
	require.NoError(t, err)
	listed, err = f.svc.Testimonials.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Ann", listed[0].AuthorName)
}

func TestHomeAggregation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	require.NoError(t, f.svc.Projects.Create(ctx, &models.Project{Title: "Second", Featured: true, Order: 2}))
	require.NoError(t, f.svc.Projects.Create(ctx, &models.Project{Title: "Hidden"}))
	require.NoError(t, f.svc.Projects.Create(ctx, &models.Project{Title: "First", Featured: true, Order: 1}))
	require.NoError(t, f.svc.ServiceOffers.Create(ctx, &models.Service{Title: "Backend", Order: 1}))
	for i := 1; i <= 5; i++ {
		published := i != 5
		require.NoError(t, f.svc.Blogs.Create(ctx, &models.Blog{
			Title:       "Post " + string(rune('A'+i-1)),
			Content:     "content",
			Published:   published,
			PublishedAt: ptr(day(i)),
		}))
	}
	for i, status := range []models.TestimonialStatus{
		models.TestimonialApproved, models.TestimonialPending, models.TestimonialApproved,
		models.TestimonialRejected, models.TestimonialApproved,
	} {
		require.NoError(t, f.svc.Testimonials.Create(ctx, &models.Testimonial{
			AuthorName: string(rune('a' + i)),
			Content:    "A long enough testimonial.",
			Rating:     5,
			Status:     status,
		}))
	}

	home, err := f.svc.Site.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Site Owner", home.Profile.Name)

	var titles []string
	for _, p := range home.FeaturedProjects {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"First", "Second"}, titles)
	require.Len(t, home.Services, 1)

	var posts []string
	for _, b := range home.RecentPosts {
		posts = append(posts, b.Title)
	}
	assert.Equal(t, []string{"Post D", "Post C", "Post B"}, posts)

	// Limit of 2, approved only.
	require.Len(t, home.Testimonials, 2)
	for _, tc := range home.Testimonials {
		assert.NotEqual(t, "b", tc.AuthorName)
		assert.NotEqual(t, "d", tc.AuthorName)
	}

	// Admin writes flush the cached page.
	require.NoError(t, f.svc.Projects.Create(ctx, &models.Project{Title: "Third", Featured: true, Order: 3}))
	home, err = f.svc.Site.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, home.FeaturedProjects, 3)
}

func TestAboutGroupsSkillsAndOrdersTimeline(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	backend := &models.SkillCategory{Name: "Backend", Order: 1}
	frontend := &models.SkillCategory{Name: "Frontend", Order: 2}
	require.NoError(t, f.svc.SkillCategories.Create(ctx, frontend))
	require.NoError(t, f.svc.SkillCategories.Create(ctx, backend))
	require.NoError(t, f.svc.Skills.Create(ctx, &models.Skill{Name: "React", CategoryID: frontend.ID, Level: 70}))
	require.NoError(t, f.svc.Skills.Create(ctx, &models.Skill{Name: "Postgres", CategoryID: backend.ID, Order: 2}))
	require.NoError(t, f.svc.Skills.Create(ctx, &models.Skill{Name: "Go", CategoryID: backend.ID, Order: 1}))
	require.NoError(t, f.svc.Skills.Create(ctx, &models.Skill{Name: "Writing"}))

	err := f.svc.Skills.Create(ctx, &models.Skill{Name: "Ghost", CategoryID: "missing"})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	require.NoError(t, f.svc.Experience.Create(ctx, &models.Experience{Company: "Old Co", Role: "Dev", StartDate: day(1), EndDate: ptr(day(2))}))
	require.NoError(t, f.svc.Experience.Create(ctx, &models.Experience{Company: "Now Co", Role: "Lead", StartDate: day(1)}))
	require.NoError(t, f.svc.Experience.Create(ctx, &models.Experience{Company: "Mid Co", Role: "Dev", StartDate: day(3), EndDate: ptr(day(4))}))
	require.NoError(t, f.svc.Education.Create(ctx, &models.Education{Institution: "Uni", Degree: "BSc", StartDate: day(1), EndDate: ptr(day(2))}))
	require.NoError(t, f.svc.Education.Create(ctx, &models.Education{Institution: "Grad", Degree: "MSc", StartDate: day(5)}))

	err = f.svc.Education.Create(ctx, &models.Education{Institution: "Bad", Degree: "X", StartDate: day(5), EndDate: ptr(day(1))})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	about, err := f.svc.Site.About(ctx)
	require.NoError(t, err)

	require.Len(t, about.Skills, 3)
	assert.Equal(t, "Backend", about.Skills[0].Category)
	assert.Equal(t, "Go", about.Skills[0].Skills[0].Name)
	assert.Equal(t, "Postgres", about.Skills[0].Skills[1].Name)
	assert.Equal(t, "Frontend", about.Skills[1].Category)
	assert.Equal(t, "Other", about.Skills[2].Category)

	var companies []string
	for _, e := range about.Experience {
		companies = append(companies, e.Subtitle)
	}
	assert.Equal(t, []string{"Now Co", "Mid Co", "Old Co"}, companies)
	assert.True(t, about.Experience[0].Current)

	require.Len(t, about.Education, 2)
	assert.Equal(t, "Grad", about.Education[0].Subtitle)
}

func TestProfileCountsAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	require.NoError(t, f.svc.Projects.Create(ctx, &models.Project{Title: "One"}))
	require.NoError(t, f.svc.ServiceOffers.Create(ctx, &models.Service{Title: "Consulting"}))

	_, err := f.svc.Site.UpdateProfile(ctx, ProfileInput{Name: "Owner", ContactEmail: "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	_, err = f.svc.Site.UpdateProfile(ctx, ProfileInput{
		Name:         "Renamed Owner",
		Headline:     "Go developer",
		Location:     "Remote",
		ContactEmail: "Hello@Example.dev",
		Socials:      models.Socials{GitHub: "https://github.com/owner"},
	})
	require.NoError(t, err)

	profile, err := f.svc.Site.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Owner", profile.Name)
	assert.Equal(t, "hello@example.dev", profile.Contact.Email)
	assert.Equal(t, "https://github.com/owner", profile.Socials.GitHub)
	assert.Equal(t, 1, profile.Counts.Projects)
	assert.Equal(t, 1, profile.Counts.Services)
	assert.Equal(t, 0, profile.Counts.Blogs)
}

func TestSiteOwnerByEmail(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	other, err := f.svc.Auth.CreateUser(ctx, CreateUserInput{
		Name: "Second Admin", Email: "second@example.dev", Password: "long-password", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	o := &owners{store: f.store}
	u, err := o.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, u.ID, "oldest admin")

	o.email = "second@example.dev"
	u, err = o.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, other.ID, u.ID)

	o.email = "nobody@example.dev"
	u, err = o.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, u.ID)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	sess, err := f.svc.Auth.Login(ctx, LoginInput{Email: " owner@example.dev ", Password: "correct-horse"})
	require.NoError(t, err)
	claims, err := f.svc.Auth.Authenticate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: "owner@example.dev", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: "ghost@example.dev", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	const email = "owner@example.dev"

	require.NoError(t, f.svc.Auth.RequestPasswordReset(ctx, ResetRequestInput{Email: "ghost@example.dev"}))
	assert.Empty(t, f.otp.For("ghost@example.dev"))

	err := f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: "123456", NewPassword: "new-password"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	require.NoError(t, f.svc.Auth.RequestPasswordReset(ctx, ResetRequestInput{Email: email}))
	first := f.otp.For(email)
	require.Len(t, first, auth.OTPLength)

	t.Run("new request invalidates the previous code", func(t *testing.T) {
		require.NoError(t, f.svc.Auth.RequestPasswordReset(ctx, ResetRequestInput{Email: email}))
		open, err := f.store.ResetTokens.Count(ctx, store.Q().Where("email", email).Where("used", false))
		require.NoError(t, err)
		assert.EqualValues(t, 1, open)
	})
	otp := f.otp.For(email)

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if otp == wrong {
			wrong = "111111"
		}
		err := f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: wrong, NewPassword: "new-password"})
		e, ok := apierr.As(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid OTP", e.Message)
	})

	t.Run("short password", func(t *testing.T) {
		err := f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: otp, NewPassword: "short"})
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
	})

	t.Run("expired", func(t *testing.T) {
		f.svc.Auth.now = func() time.Time { return time.Now().Add(models.ResetTokenTTL + time.Second) }
		defer func() { f.svc.Auth.now = time.Now }()
		err := f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: otp, NewPassword: "new-password"})
		e, ok := apierr.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, e.Status)
		assert.Equal(t, "OTP has expired", e.Message)
	})

	require.NoError(t, f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: otp, NewPassword: "new-password"}))

	t.Run("reused", func(t *testing.T) {
		err := f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: otp, NewPassword: "another-password"})
		e, ok := apierr.As(err)
		require.True(t, ok)
		assert.Equal(t, "OTP has already been used", e.Message)
	})

	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: email, Password: "correct-horse"})
	assert.Error(t, err)
	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: email, Password: "new-password"})
	assert.NoError(t, err)
}

func TestPasswordResetLocksAfterFailedAttempts(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	const email = "owner@example.dev"

	require.NoError(t, f.svc.Auth.RequestPasswordReset(ctx, ResetRequestInput{Email: email}))
	otp := f.otp.For(email)
	wrong := "000000"
	if otp == wrong {
		wrong = "111111"
	}

	for i := 1; i < models.MaxOTPAttempts; i++ {
		err := f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: wrong, NewPassword: "new-password"})
		e, ok := apierr.As(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid OTP", e.Message, "attempt %d", i)
	}
	err := f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: wrong, NewPassword: "new-password"})
	assert.Equal(t, errTooManyAttempts, err)

	err = f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: otp, NewPassword: "new-password"})
	assert.Equal(t, errTooManyAttempts, err)

	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: email, Password: "correct-horse"})
	assert.NoError(t, err)

	// A fresh code starts a new count.
	require.NoError(t, f.svc.Auth.RequestPasswordReset(ctx, ResetRequestInput{Email: email}))
	require.NoError(t, f.svc.Auth.ResetPassword(ctx, ResetPasswordInput{Email: email, OTP: f.otp.For(email), NewPassword: "new-password"}))
}

func TestContactMessages(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Contact.Submit(ctx, ContactInput{Name: "Visitor", Email: "nope", Message: "Hello there, let's talk."})
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email address", e.Fields["email"])

	msg, err := f.svc.Contact.Submit(ctx, ContactInput{Name: "Visitor", Email: "Visitor@Example.dev", Message: "Hello there, let's talk."})
	require.NoError(t, err)
	assert.Equal(t, "visitor@example.dev", msg.Email)

	unread, err := f.svc.Contact.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	_, err = f.svc.Contact.MarkRead(ctx, msg.ID)
	require.NoError(t, err)
	unread, err = f.svc.Contact.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, f.svc.Contact.Delete(ctx, msg.ID))
	assert.Equal(t, http.StatusNotFound, statusOf(t, f.svc.Contact.Delete(ctx, msg.ID)))
}

func ptr[T any](v T) *T { return &v }

func slugs(cards []models.BlogCard) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Slug)
	}
	return out
}
