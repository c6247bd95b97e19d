package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/config"
	"blog-backend/internal/metadata"
	"blog-backend/internal/query"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := New(ctx, config.DatabaseConfig{Driver: "sqlite", Path: t.TempDir(), Name: "blog"})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Bootstrap(ctx))
	return s
}

func TestPostgresMapError(t *testing.T) {
	d := &PostgresDialect{}

	assert.Nil(t, d.MapError(nil))

	err := d.MapError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	err = d.MapError(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503"}))
	assert.ErrorIs(t, err, ErrForeignKeyViolation)

	plain := errors.New("boom")
	assert.Equal(t, plain, d.MapError(plain))
}

func TestSQLiteMapError(t *testing.T) {
	d := &SQLiteDialect{}
	assert.ErrorIs(t, d.MapError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")), ErrUniqueViolation)
	assert.ErrorIs(t, d.MapError(errors.New("FOREIGN KEY constraint failed (787)")), ErrForeignKeyViolation)
}

func TestBootstrap_SeedsAccountsOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Bootstrap(ctx))

	admin, err := s.GetUserByEmail(ctx, "admin@internal.com")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", admin.Role)

	user, err := s.GetUserByUsername(ctx, "user-test")
	require.NoError(t, err)
	assert.Equal(t, "USER", user.Role)

	profile, err := s.GetProfile(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin App", profile.FullName)

	n, err := s.Count(ctx, s.DB, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestUsers_UniqueAndUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, &User{Username: "admin", Email: "x@y.z", PasswordHash: "h"}, Profile{FullName: "X"})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	id, err := s.CreateUser(ctx, &User{Username: "bob", Email: "bob@dev.com", PasswordHash: "h"}, Profile{FullName: "Bob"})
	require.NoError(t, err)

	email := "robert@dev.com"
	u, err := s.UpdateUser(ctx, id, UserUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, email, u.Email)
	assert.Equal(t, "USER", u.Role)

	bio := "hello"
	p, err := s.UpdateProfile(ctx, id, nil, &bio)
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.FullName)
	require.NotNil(t, p.Bio)
	assert.Equal(t, "hello", *p.Bio)

	require.NoError(t, s.DeleteUser(ctx, id))
	_, err = s.GetUserByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetProfile(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, id), ErrNotFound)
}

func TestRefreshTokens_ConsumedOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user, err := s.GetUserByUsername(ctx, "user-test")
	require.NoError(t, err)

	exp := now().Add(24 * time.Hour)
	require.NoError(t, s.CreateRefreshToken(ctx, user.ID, "tok", exp))

	owner, gotExp, err := s.ConsumeRefreshToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner)
	assert.True(t, exp.Equal(gotExp))

	_, _, err = s.ConsumeRefreshToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)
}

func seedPosts(t *testing.T, s *Store) (adminID, userID int64, cats []Category) {
	t.Helper()
	ctx := context.Background()

	admin, err := s.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	user, err := s.GetUserByUsername(ctx, "user-test")
	require.NoError(t, err)

	for _, name := range []string{"go", "sql"} {
		c := &Category{Name: name, Description: name + " posts"}
		require.NoError(t, s.CreateCategory(ctx, c))
		cats = append(cats, *c)
	}

	for i := 1; i <= 6; i++ {
		owner := admin.ID
		if i%2 == 0 {
			owner = user.ID
		}
		_, err := s.CreatePost(ctx, &Post{
			UserID:      owner,
			Title:       fmt.Sprintf("post %d", i),
			Content:     "content",
			IsPublished: i <= 4,
		}, []int64{cats[i%2].ID})
		require.NoError(t, err)
	}
	return admin.ID, user.ID, cats
}

func TestListPosts_FiltersAndPages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	adminID, userID, _ := seedPosts(t, s)

	spec, err := query.Compile(metadata.PostAllowList, []query.Param{
		{Key: "rows", Value: "2"},
		{Key: "isPublished", Value: "1"},
		{Key: "sort", Value: "id"},
	})
	require.NoError(t, err)

	page, err := s.ListPosts(ctx, spec)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "post 1", page.Items[0].Title)
	assert.Equal(t, "admin", page.Items[0].Username)
	assert.NotNil(t, page.Items[0].PublishedAt)
	assert.Len(t, page.Items[0].Categories, 1)

	mine, err := s.ListPosts(ctx, spec.WithEquality("userId", query.Int(userID)))
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Total)
	for _, p := range mine.Items {
		assert.Equal(t, userID, p.UserID)
	}

	search, err := query.Compile(metadata.PostAllowList, []query.Param{
		{Key: "search.email", Value: "internal"},
		{Key: "rows", Value: "10"},
	})
	require.NoError(t, err)
	page, err = s.ListPosts(ctx, search)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	for _, p := range page.Items {
		assert.Equal(t, adminID, p.UserID)
	}
}

func TestListPosts_DateRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPosts(t, s)

	spec, err := query.Compile(metadata.PostAllowList, []query.Param{
		{Key: "createdAt.gte", Value: "2000-01-01"},
		{Key: "createdAt.lt", Value: "2999-01-01"},
		{Key: "rows", Value: "50"},
	})
	require.NoError(t, err)
	page, err := s.ListPosts(ctx, spec)
	require.NoError(t, err)
	assert.EqualValues(t, 6, page.Total)

	spec, err = query.Compile(metadata.PostAllowList, []query.Param{{Key: "createdAt.lt", Value: "2000-01-01"}})
	require.NoError(t, err)
	page, err = s.ListPosts(ctx, spec)
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
	assert.Empty(t, page.Items)
}

func TestUpdatePost_PublishAndCategories(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, userID, cats := seedPosts(t, s)

	p, err := s.CreatePost(ctx, &Post{UserID: userID, Title: "draft", Content: "c"}, []int64{cats[0].ID})
	require.NoError(t, err)
	assert.False(t, p.IsPublished)
	assert.Nil(t, p.PublishedAt)

	yes := true
	p, err = s.UpdatePost(ctx, p.ID, PostUpdate{IsPublished: &yes, CategoryIDs: []int64{cats[1].ID}})
	require.NoError(t, err)
	assert.True(t, p.IsPublished)
	assert.NotNil(t, p.PublishedAt)
	require.Len(t, p.Categories, 1)
	assert.Equal(t, cats[1].ID, p.Categories[0].ID)

	no := false
	title := "renamed"
	p, err = s.UpdatePost(ctx, p.ID, PostUpdate{IsPublished: &no, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", p.Title)
	assert.Nil(t, p.PublishedAt)
	assert.Len(t, p.Categories, 1)

	require.NoError(t, s.DeletePost(ctx, p.ID))
	_, err = s.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComments_ScopedToPost(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, userID, cats := seedPosts(t, s)

	a, err := s.CreatePost(ctx, &Post{UserID: userID, Title: "a", Content: "c"}, []int64{cats[0].ID})
	require.NoError(t, err)
	b, err := s.CreatePost(ctx, &Post{UserID: userID, Title: "b", Content: "c"}, []int64{cats[0].ID})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := s.CreateComment(ctx, &Comment{PostID: a.ID, UserID: userID, Content: fmt.Sprintf("c%d", i)})
		require.NoError(t, err)
	}
	other, err := s.CreateComment(ctx, &Comment{PostID: b.ID, UserID: userID, Content: "other"})
	require.NoError(t, err)

	spec := (&query.Spec{Page: 1, Rows: 5}).WithEquality("postId", query.Int(a.ID))
	page, err := s.ListComments(ctx, spec)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, "c0", page.Items[0].Content)

	_, err = s.GetComment(ctx, a.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := s.UpdateComment(ctx, b.ID, other.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", c.Content)

	require.NoError(t, s.DeleteComment(ctx, b.ID, other.ID))
	assert.ErrorIs(t, s.DeleteComment(ctx, b.ID, other.ID), ErrNotFound)
}

func TestCategories_DuplicateName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCategory(ctx, &Category{Name: "go", Description: "d"}))
	err := s.CreateCategory(ctx, &Category{Name: "go", Description: "d"})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	missing, err := s.MissingCategories(ctx, []int64{1, 99})
	require.NoError(t, err)
	assert.Equal(t, []int64{99}, missing)
}
