package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestCreateAndDeleteSyncOwnerRefs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	owner := &models.User{Name: "Owner", Email: "owner@example.dev", Role: models.RoleAdmin}
	require.NoError(t, s.Users.Create(ctx, owner))
	require.NotEmpty(t, owner.ID)

	p1 := &models.Project{OwnerID: owner.ID, Title: "One", Slug: "one", Tags: []string{"go"}}
	p2 := &models.Project{OwnerID: owner.ID, Title: "Two", Slug: "two"}
	require.NoError(t, s.Projects.Create(ctx, p1))
	require.NoError(t, s.Projects.Create(ctx, p2))

	got, err := s.Users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID, p2.ID}, got.ProjectIDs)

	require.NoError(t, s.Projects.Delete(ctx, p1.ID))
	got, err = s.Users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID}, got.ProjectIDs)

	_, err = s.Projects.FindByID(ctx, p1.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Projects.Delete(ctx, p1.ID), store.ErrNotFound)
}

func TestUpdateMovesRefBetweenOwners(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a := &models.User{Name: "A", Email: "a@example.dev"}
	b := &models.User{Name: "B", Email: "b@example.dev"}
	require.NoError(t, s.Users.Create(ctx, a))
	require.NoError(t, s.Users.Create(ctx, b))

	svc := &models.Service{OwnerID: a.ID, Title: "Consulting"}
	require.NoError(t, s.Services.Create(ctx, svc))
	created := svc.CreatedAt

	svc.OwnerID = b.ID
	svc.Title = "Consulting+"
	require.NoError(t, s.Services.Update(ctx, svc))
	assert.True(t, svc.CreatedAt.Equal(created))

	gotA, err := s.Users.FindByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := s.Users.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, gotA.ServiceIDs)
	assert.Equal(t, []string{svc.ID}, gotB.ServiceIDs)

	reloaded, err := s.Services.FindByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Consulting+", reloaded.Title)
}

func TestUserUpdateKeepsChildRefs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	owner := &models.User{Name: "Owner", Email: "owner@example.dev", Role: models.RoleAdmin}
	require.NoError(t, s.Users.Create(ctx, owner))

	stale, err := s.Users.FindByID(ctx, owner.ID)
	require.NoError(t, err)

	p := &models.Project{OwnerID: owner.ID, Title: "Late", Slug: "late"}
	require.NoError(t, s.Projects.Create(ctx, p))

	stale.Headline = "Backend engineer"
	require.NoError(t, s.Users.Update(ctx, stale))
	assert.Equal(t, []string{p.ID}, stale.ProjectIDs)

	got, err := s.Users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer", got.Headline)
	assert.Equal(t, []string{p.ID}, got.ProjectIDs)
}

func TestDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Blogs.Create(ctx, &models.Blog{Title: "Hello", Slug: "hello"}))
	err := s.Blogs.Create(ctx, &models.Blog{Title: "Hello again", Slug: "hello"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestFindQueryAndFindByIDsOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i, status := range []models.TestimonialStatus{models.TestimonialApproved, models.TestimonialPending, models.TestimonialApproved} {
		tm := &models.Testimonial{AuthorName: "T", Content: "great work, truly", Rating: 5, Status: status}
		tm.Document.ID = []string{"t1", "t2", "t3"}[i]
		require.NoError(t, s.Testimonials.Create(ctx, tm))
	}

	approved, err := s.Testimonials.Find(ctx, store.Q().Where("status", string(models.TestimonialApproved)).SortBy("id", true))
	require.NoError(t, err)
	require.Len(t, approved, 2)
	assert.Equal(t, "t3", approved[0].ID)

	n, err := s.Testimonials.Count(ctx, store.Q().Where("status", string(models.TestimonialPending)).Take(1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	byIDs, err := s.Testimonials.FindByIDs(ctx, []string{"t3", "nope", "t1"})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, "t3", byIDs[0].ID)
	assert.Equal(t, "t1", byIDs[1].ID)

	empty, err := s.Testimonials.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "", nil)
	assert.Error(t, err)

	_, err = Open("postgres", "", nil)
	assert.Error(t, err)
}
